// AngelaMos | 2026
// handler.go

package referral

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/angelamos/questledger/internal/core"
)

type Handler struct {
	service   *Service
	validator *validator.Validate
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/referrals", func(r chi.Router) {
		r.Post("/bind", h.Bind)
		r.Get("/{wallet}", h.Stats)
	})
}

func (h *Handler) Bind(w http.ResponseWriter, r *http.Request) {
	var req BindRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	result, err := h.service.Bind(r.Context(), req.Wallet, req.Code)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrInvalidInput):
			core.BadRequest(w, "invalid wallet or referral code")
		case errors.Is(err, core.ErrNotFound):
			core.NotFound(w, "referral code")
		default:
			core.InternalServerError(w, err)
		}
		return
	}

	core.OK(w, result)
}

func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	wallet := chi.URLParam(r, "wallet")

	stats, err := h.service.Stats(r.Context(), wallet)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrInvalidInput):
			core.BadRequest(w, "invalid wallet")
		default:
			core.InternalServerError(w, err)
		}
		return
	}

	core.OK(w, stats)
}
