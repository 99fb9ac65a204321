package main

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/sevigo/merge-warden/internal/config"
	"github.com/sevigo/merge-warden/internal/core"
	"github.com/sevigo/merge-warden/internal/db"
	"github.com/sevigo/merge-warden/internal/policy"
)

var (
	policyPlatform string
	policyRepo     string
)

var policyCmd = &cobra.Command{
	Use:   "policy",
	Short: "Manage repository policies",
}

var policyLintCmd = &cobra.Command{
	Use:   "lint <policy-file>",
	Short: "Validate a policy document without applying it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pol, err := loadPolicyFile(args[0])
		if err != nil {
			return err
		}
		fmt.Printf("policy is valid: %d check(s) enabled\n", len(pol.EnabledChecks))
		return nil
	},
}

var policyApplyCmd = &cobra.Command{
	Use:   "apply <policy-file>",
	Short: "Register or replace a repository's policy",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		platform, err := parsePlatform(policyPlatform)
		if err != nil {
			return err
		}
		if policyRepo == "" {
			return fmt.Errorf("--repo is required")
		}

		pol, err := loadPolicyFile(args[0])
		if err != nil {
			return err
		}

		store, cleanup, err := openStore()
		if err != nil {
			return err
		}
		defer cleanup()

		if err := store.UpsertPolicy(context.Background(), platform, policyRepo, pol); err != nil {
			return fmt.Errorf("failed to apply policy: %w", err)
		}
		fmt.Printf("policy applied for %s/%s\n", platform, policyRepo)
		return nil
	},
}

var policyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List onboarded repositories",
	RunE: func(cmd *cobra.Command, args []string) error {
		platform, err := parsePlatform(policyPlatform)
		if err != nil {
			return err
		}

		store, cleanup, err := openStore()
		if err != nil {
			return err
		}
		defer cleanup()

		repos, err := store.ListRepositories(context.Background(), platform)
		if err != nil {
			return fmt.Errorf("failed to list repositories: %w", err)
		}
		for _, repo := range repos {
			fmt.Println(repo)
		}
		return nil
	},
}

func init() { //nolint:gochecknoinits // Cobra's init function for command registration
	policyCmd.PersistentFlags().StringVar(&policyPlatform, "platform", "github", "platform (github or gitlab)")
	policyApplyCmd.Flags().StringVar(&policyRepo, "repo", "", "repository full name (owner/name)")

	policyCmd.AddCommand(policyLintCmd, policyApplyCmd, policyListCmd)
	rootCmd.AddCommand(policyCmd)
}

// loadPolicyFile reads and strictly decodes a policy document. Unknown keys
// are an error so typos do not silently disable checks.
func loadPolicyFile(path string) (*core.RepoPolicy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read policy file: %w", err)
	}

	var pol core.RepoPolicy
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&pol); err != nil {
		return nil, fmt.Errorf("invalid policy document: %w", err)
	}
	return &pol, nil
}

func parsePlatform(s string) (core.Platform, error) {
	switch s {
	case "github":
		return core.PlatformGitHub, nil
	case "gitlab":
		return core.PlatformGitLab, nil
	default:
		return "", fmt.Errorf("unknown platform %q", s)
	}
}

// openStore connects to the policy database using the server configuration.
func openStore() (*policy.Store, func(), error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	dbConn, cleanup, err := db.NewDatabase(&cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return policy.NewStore(dbConn.DB), cleanup, nil
}
