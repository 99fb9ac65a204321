package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	gitlabapi "gitlab.com/gitlab-org/api/client-go"

	"github.com/sevigo/merge-warden/internal/config"
	"github.com/sevigo/merge-warden/internal/core"
	"github.com/sevigo/merge-warden/internal/db"
	"github.com/sevigo/merge-warden/internal/github"
	"github.com/sevigo/merge-warden/internal/policy"
	"github.com/sevigo/merge-warden/internal/provision"
)

var (
	hookURL     string
	githubToken string
)

var provisionCmd = &cobra.Command{
	Use:   "provision",
	Short: "Register webhooks on all onboarded repositories",
	RunE: func(cmd *cobra.Command, args []string) error {
		if hookURL == "" {
			return fmt.Errorf("--hook-url is required")
		}

		ctx := context.Background()
		logger := slog.Default()

		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		dbConn, cleanup, err := db.NewDatabase(&cfg.Database)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer cleanup()
		store := policy.NewStore(dbConn.DB)

		registrars := make(map[core.Platform]provision.Registrar)
		if githubToken != "" {
			ghClient := github.NewPATClient(ctx, githubToken, logger)
			registrars[core.PlatformGitHub] = provision.NewGitHubRegistrar(
				ghClient.Raw(), hookURL+"/api/v1/webhook/github", cfg.GitHub.WebhookSecret, logger)
		}
		if cfg.GitLab.Enabled() {
			glClient, err := gitlabapi.NewClient(cfg.GitLab.Token, gitlabapi.WithBaseURL(cfg.GitLab.BaseURL))
			if err != nil {
				return fmt.Errorf("failed to create GitLab client: %w", err)
			}
			registrars[core.PlatformGitLab] = provision.NewGitLabRegistrar(
				glClient, hookURL+"/api/v1/webhook/gitlab", cfg.GitLab.WebhookToken, logger)
		}
		if len(registrars) == 0 {
			return fmt.Errorf("no platform available: pass --github-token or configure GitLab")
		}

		return provision.NewProvisioner(store, registrars, logger).Provision(ctx)
	},
}

func init() { //nolint:gochecknoinits // Cobra's init function for command registration
	provisionCmd.Flags().StringVar(&hookURL, "hook-url", "", "public base URL of the merge-warden server")
	provisionCmd.Flags().StringVarP(&githubToken, "github-token", "t", "", "GitHub token for webhook administration")
	rootCmd.AddCommand(provisionCmd)
}
