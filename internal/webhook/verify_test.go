package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sevigo/merge-warden/internal/core"
)

func githubSignature(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

func TestVerifyGitHub(t *testing.T) {
	body := []byte(`{"action":"opened"}`)
	v := NewVerifier("s3cr3t", "")

	tests := []struct {
		name    string
		header  http.Header
		wantErr error
	}{
		{
			name:   "valid sha256 signature",
			header: http.Header{"X-Hub-Signature-256": {githubSignature("s3cr3t", body)}},
		},
		{
			name:    "missing signature header",
			header:  http.Header{},
			wantErr: core.ErrMissingSignature,
		},
		{
			name:    "signature over different body",
			header:  http.Header{"X-Hub-Signature-256": {githubSignature("s3cr3t", []byte("tampered"))}},
			wantErr: core.ErrSignatureMismatch,
		},
		{
			name:    "signature with wrong secret",
			header:  http.Header{"X-Hub-Signature-256": {githubSignature("other", body)}},
			wantErr: core.ErrSignatureMismatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Verify(core.PlatformGitHub, body, tt.header)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestVerifyGitLab(t *testing.T) {
	v := NewVerifier("", "gl-token")

	tests := []struct {
		name    string
		token   string
		wantErr error
	}{
		{name: "valid token", token: "gl-token"},
		{name: "missing token", token: "", wantErr: core.ErrMissingSignature},
		{name: "wrong token", token: "nope", wantErr: core.ErrSignatureMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			header := http.Header{}
			if tt.token != "" {
				header.Set(GitLabTokenHeader, tt.token)
			}
			err := v.Verify(core.PlatformGitLab, []byte(`{}`), header)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}
