// AngelaMos | 2026
// handler.go

package webhook

import (
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelamos/questledger/internal/config"
	"github.com/angelamos/questledger/internal/core"
)

type Handler struct {
	service *Service
	cfg     config.WebhookConfig
}

func NewHandler(service *Service, cfg config.WebhookConfig) *Handler {
	return &Handler{service: service, cfg: cfg}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/webhooks/payments", h.HandlePayments)
}

// HandlePayments reads the raw body before anything can re-serialize
// it; the signature covers these exact bytes.
func (h *Handler) HandlePayments(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, h.cfg.MaxBodyBytes))
	if err != nil {
		core.BadRequest(w, "unreadable request body")
		return
	}

	signature := r.Header.Get(h.cfg.SignatureHeader)

	result, err := h.service.Process(r.Context(), body, signature)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrSignatureRequired):
			core.JSONError(w, core.SignatureRequiredError())
		case errors.Is(err, core.ErrInvalidSignature):
			core.JSONError(w, core.InvalidSignatureError())
		case errors.Is(err, core.ErrMalformedPayload):
			core.JSONError(w, core.MalformedPayloadError("malformed webhook payload"))
		case errors.Is(err, core.ErrInvalidInput):
			core.BadRequest(w, "webhook payload rejected")
		case errors.Is(err, core.ErrNotFound):
			core.NotFound(w, "checkout session")
		case errors.Is(err, core.ErrRateLimited):
			core.JSONError(w, err)
		default:
			// Storage failures are retryable: nothing was committed.
			core.InternalServerError(w, err)
		}
		return
	}

	core.OK(w, result)
}
