package webhook

import (
	"fmt"
	"net/http"

	"github.com/sevigo/merge-warden/internal/core"
)

// Normalizer parses platform-specific payloads into the internal Event model.
// Normalization is pure: the same body and headers always yield the same
// Event, with timestamps taken from the delivery rather than the wall clock.
type Normalizer struct{}

func NewNormalizer() *Normalizer {
	return &Normalizer{}
}

// Normalize decodes a verified payload. Unknown event types return
// core.ErrUnsupportedEvent (routine, to be logged and dropped); structurally
// broken payloads return core.ErrMalformedPayload.
func (n *Normalizer) Normalize(platform core.Platform, body []byte, header http.Header) (*core.Event, error) {
	var (
		ev  *core.Event
		err error
	)
	switch platform {
	case core.PlatformGitHub:
		ev, err = n.normalizeGitHub(body, header)
	case core.PlatformGitLab:
		ev, err = n.normalizeGitLab(body, header)
	default:
		return nil, fmt.Errorf("unknown platform %q", platform)
	}
	if err != nil {
		return nil, err
	}
	if err := ev.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrMalformedPayload, err)
	}
	return ev, nil
}
