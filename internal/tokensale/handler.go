// AngelaMos | 2026
// handler.go

package tokensale

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
	r.Route("/tokensale", func(r chi.Router) {
		r.Post("/purchase", h.Purchase)
		r.Get("/contributions/{wallet}", h.ListContributions)
	})
}

func (h *Handler) Purchase(w http.ResponseWriter, r *http.Request) {
	var req PurchaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	contribution, err := h.service.InitiatePurchase(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrInvalidInput):
			core.BadRequest(w, "invalid purchase request")
		default:
			core.InternalServerError(w, err)
		}
		return
	}

	core.Created(w, ToContributionResponse(contribution))
}

func (h *Handler) ListContributions(w http.ResponseWriter, r *http.Request) {
	wallet := chi.URLParam(r, "wallet")

	contributions, err := h.service.ListByWallet(r.Context(), wallet)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrInvalidInput):
			core.BadRequest(w, "invalid wallet")
		default:
			core.InternalServerError(w, err)
		}
		return
	}

	core.OK(w, ToContributionResponseList(contributions))
}
