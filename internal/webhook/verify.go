// Package webhook authenticates and normalizes inbound webhook deliveries.
// Verification always happens on the exact raw bytes before any parsing; an
// unauthenticated payload is never decoded.
package webhook

import (
	"crypto/hmac"
	"fmt"
	"net/http"

	"github.com/google/go-github/v73/github"

	"github.com/sevigo/merge-warden/internal/core"
)

// GitLabTokenHeader carries the shared secret on GitLab deliveries.
const GitLabTokenHeader = "X-Gitlab-Token"

// Verifier checks that a delivery genuinely originated from the claimed
// platform.
type Verifier struct {
	githubSecret []byte
	gitlabToken  []byte
}

// NewVerifier creates a Verifier with the per-platform shared secrets.
func NewVerifier(githubSecret, gitlabToken string) *Verifier {
	return &Verifier{
		githubSecret: []byte(githubSecret),
		gitlabToken:  []byte(gitlabToken),
	}
}

// Verify validates the delivery signature for the given platform. It returns
// core.ErrMissingSignature when the expected header is absent and
// core.ErrSignatureMismatch when verification fails.
func (v *Verifier) Verify(platform core.Platform, body []byte, header http.Header) error {
	switch platform {
	case core.PlatformGitHub:
		return v.verifyGitHub(body, header)
	case core.PlatformGitLab:
		return v.verifyGitLab(header)
	default:
		return fmt.Errorf("unknown platform %q", platform)
	}
}

// verifyGitHub computes an HMAC over the raw body and compares it against the
// signature header in constant time, preferring SHA-256 over the legacy SHA-1.
func (v *Verifier) verifyGitHub(body []byte, header http.Header) error {
	sig := header.Get(github.SHA256SignatureHeader)
	if sig == "" {
		sig = header.Get(github.SHA1SignatureHeader)
	}
	if sig == "" {
		return core.ErrMissingSignature
	}
	if err := github.ValidateSignature(sig, body, v.githubSecret); err != nil {
		return fmt.Errorf("%w: %v", core.ErrSignatureMismatch, err)
	}
	return nil
}

// verifyGitLab compares the plain shared token header in constant time.
func (v *Verifier) verifyGitLab(header http.Header) error {
	token := header.Get(GitLabTokenHeader)
	if token == "" {
		return core.ErrMissingSignature
	}
	if !hmac.Equal([]byte(token), v.gitlabToken) {
		return core.ErrSignatureMismatch
	}
	return nil
}
