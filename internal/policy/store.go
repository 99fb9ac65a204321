// Package policy resolves per-repository policies: a PostgreSQL-backed store,
// an LRU cache in front of it, and a LISTEN/NOTIFY subscription that evicts
// cache entries when a policy document changes.
package policy

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"gopkg.in/yaml.v3"

	"github.com/sevigo/merge-warden/internal/core"
)

// Store reads and writes policy documents in PostgreSQL. Documents are YAML,
// unmarshalled into core.RepoPolicy on read.
type Store struct {
	db *sqlx.DB
}

// NewStore creates a policy store on top of an open connection pool.
func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// GetPolicy loads the policy for a repository. Unregistered repositories
// yield core.ErrNotOnboarded; backend failures yield core.ErrStoreUnavailable.
func (s *Store) GetPolicy(ctx context.Context, platform core.Platform, repoFullName string) (*core.RepoPolicy, error) {
	const query = `SELECT document FROM policies WHERE platform = $1 AND repo_full_name = $2`

	var document string
	err := s.db.QueryRowContext(ctx, query, string(platform), repoFullName).Scan(&document)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, core.ErrNotOnboarded
		}
		return nil, fmt.Errorf("%w: %v", core.ErrStoreUnavailable, err)
	}

	var pol core.RepoPolicy
	if err := yaml.Unmarshal([]byte(document), &pol); err != nil {
		return nil, fmt.Errorf("invalid policy document for %s/%s: %w", platform, repoFullName, err)
	}
	return &pol, nil
}

// UpsertPolicy registers or replaces a repository's policy document. The
// policies_changed trigger notifies listeners, which evict the cached entry.
func (s *Store) UpsertPolicy(ctx context.Context, platform core.Platform, repoFullName string, pol *core.RepoPolicy) error {
	document, err := yaml.Marshal(pol)
	if err != nil {
		return fmt.Errorf("failed to encode policy document: %w", err)
	}

	const query = `
		INSERT INTO policies (platform, repo_full_name, document, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (platform, repo_full_name)
		DO UPDATE SET document = EXCLUDED.document, updated_at = now()`

	if _, err := s.db.ExecContext(ctx, query, string(platform), repoFullName, string(document)); err != nil {
		return fmt.Errorf("%w: %v", core.ErrStoreUnavailable, err)
	}
	return nil
}

// ListRepositories returns all onboarded repositories for a platform. Used by
// webhook provisioning at startup.
func (s *Store) ListRepositories(ctx context.Context, platform core.Platform) ([]string, error) {
	const query = `SELECT repo_full_name FROM policies WHERE platform = $1 ORDER BY repo_full_name`

	var repos []string
	if err := s.db.SelectContext(ctx, &repos, query, string(platform)); err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrStoreUnavailable, err)
	}
	return repos, nil
}
