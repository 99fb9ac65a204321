package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/sevigo/merge-warden/internal/core"
	"github.com/sevigo/merge-warden/internal/webhook"
)

var (
	replayPlatform string
	replayEvent    string
)

var replayCmd = &cobra.Command{
	Use:   "replay <payload-file>",
	Short: "Normalize a saved webhook payload and print the resulting event",
	Long:  `Runs a saved delivery through the normalizer without signature verification. Useful for debugging payloads exported from the platform's webhook delivery log.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		platform, err := parsePlatform(replayPlatform)
		if err != nil {
			return err
		}
		if replayEvent == "" {
			return fmt.Errorf("--event is required (e.g. pull_request or \"Merge Request Hook\")")
		}

		body, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read payload file: %w", err)
		}

		header := http.Header{}
		switch platform {
		case core.PlatformGitHub:
			header.Set("X-GitHub-Event", replayEvent)
			header.Set("X-GitHub-Delivery", "replay")
		case core.PlatformGitLab:
			header.Set(webhook.GitLabEventHeader, replayEvent)
			header.Set(webhook.GitLabUUIDHeader, "replay")
		}

		ev, err := webhook.NewNormalizer().Normalize(platform, body, header)
		if err != nil {
			return fmt.Errorf("normalization failed: %w", err)
		}

		out, err := json.MarshalIndent(ev, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	},
}

func init() { //nolint:gochecknoinits // Cobra's init function for command registration
	replayCmd.Flags().StringVar(&replayPlatform, "platform", "github", "platform (github or gitlab)")
	replayCmd.Flags().StringVar(&replayEvent, "event", "", "event type header value")
	rootCmd.AddCommand(replayCmd)
}
