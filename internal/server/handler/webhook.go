// Package handler provides the HTTP handlers for webhook ingestion.
package handler

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/sevigo/merge-warden/internal/core"
	"github.com/sevigo/merge-warden/internal/webhook"
)

// maxPayloadBytes bounds webhook bodies; platform payloads stay well below
// this.
const maxPayloadBytes = 10 << 20

// Admitter accepts a normalized event for asynchronous processing. Admission
// never blocks the HTTP handler.
type Admitter interface {
	Admit(ev *core.Event)
}

// WebhookHandler verifies, normalizes and admits webhook deliveries. The
// response only acknowledges receipt; all processing happens after the
// request completes.
type WebhookHandler struct {
	verifier   *webhook.Verifier
	normalizer *webhook.Normalizer
	serializer Admitter
	logger     *slog.Logger
}

// NewWebhookHandler creates a webhook handler over the given verifier and
// serializer.
func NewWebhookHandler(verifier *webhook.Verifier, normalizer *webhook.Normalizer, serializer Admitter, logger *slog.Logger) *WebhookHandler {
	return &WebhookHandler{
		verifier:   verifier,
		normalizer: normalizer,
		serializer: serializer,
		logger:     logger,
	}
}

// Handle returns the handler for the given platform's webhook endpoint.
func (h *WebhookHandler) Handle(platform core.Platform) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(io.LimitReader(r.Body, maxPayloadBytes))
		if err != nil {
			http.Error(w, "failed to read body", http.StatusBadRequest)
			return
		}

		if err := h.verifier.Verify(platform, body, r.Header); err != nil {
			h.logger.Warn("rejected webhook delivery",
				"platform", platform,
				"remote", r.RemoteAddr,
				"error", err,
			)
			http.Error(w, "invalid signature", http.StatusUnauthorized)
			return
		}

		ev, err := h.normalizer.Normalize(platform, body, r.Header)
		switch {
		case errors.Is(err, core.ErrUnsupportedEvent):
			// Acknowledged so the platform does not retry deliveries we will
			// never handle.
			h.logger.Debug("ignoring unsupported event", "platform", platform, "error", err)
			w.WriteHeader(http.StatusAccepted)
			_, _ = fmt.Fprint(w, "event not handled")
			return
		case err != nil:
			h.logger.Error("could not normalize webhook", "platform", platform, "error", err)
			http.Error(w, "malformed payload", http.StatusBadRequest)
			return
		}

		h.serializer.Admit(ev)

		h.logger.Info("event admitted",
			"unit", ev.UnitKey(),
			"kind", ev.Kind,
			"delivery", ev.DeliveryID,
		)
		w.WriteHeader(http.StatusAccepted)
		_, _ = fmt.Fprint(w, "accepted")
	}
}
