package policy

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/sevigo/merge-warden/internal/core"
)

// CachedResolver fronts the policy store with an LRU cache. Entries are
// replaced whole on invalidation; readers never observe a partially updated
// policy.
type CachedResolver struct {
	store  core.PolicyStore
	cache  *lru.Cache[string, *core.RepoPolicy]
	logger *slog.Logger
}

// NewResolver creates a resolver caching up to size policies.
func NewResolver(store core.PolicyStore, size int, logger *slog.Logger) (*CachedResolver, error) {
	if size <= 0 {
		size = 256
	}
	cache, err := lru.New[string, *core.RepoPolicy](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create policy cache: %w", err)
	}
	return &CachedResolver{store: store, cache: cache, logger: logger}, nil
}

func cacheKey(platform core.Platform, repoFullName string) string {
	return string(platform) + ":" + repoFullName
}

// Resolve returns the cached policy or fetches it from the store. Misses for
// repositories without a policy are not cached: ErrNotOnboarded is cheap for
// the store and negative entries would survive onboarding.
func (r *CachedResolver) Resolve(ctx context.Context, platform core.Platform, repoFullName string) (*core.RepoPolicy, error) {
	key := cacheKey(platform, repoFullName)
	if pol, ok := r.cache.Get(key); ok {
		return pol, nil
	}

	pol, err := r.store.GetPolicy(ctx, platform, repoFullName)
	if err != nil {
		if !errors.Is(err, core.ErrNotOnboarded) {
			r.logger.Warn("policy lookup failed", "repo", repoFullName, "error", err)
		}
		return nil, err
	}

	r.cache.Add(key, pol)
	return pol, nil
}

// Invalidate evicts a repository's cached policy. The next Resolve call
// fetches a fresh document.
func (r *CachedResolver) Invalidate(platform core.Platform, repoFullName string) {
	if r.cache.Remove(cacheKey(platform, repoFullName)) {
		r.logger.Info("policy cache invalidated", "platform", platform, "repo", repoFullName)
	}
}
