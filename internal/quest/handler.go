// AngelaMos | 2026
// handler.go

package quest

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
	r.Route("/quests", func(r chi.Router) {
		r.Get("/", h.ListQuests)
		r.Post("/{identifier}/claim", h.Claim)
	})
}

func (h *Handler) ListQuests(w http.ResponseWriter, r *http.Request) {
	quests, err := h.service.ListActive(r.Context())
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ToQuestResponseList(quests))
}

func (h *Handler) Claim(w http.ResponseWriter, r *http.Request) {
	identifier := chi.URLParam(r, "identifier")

	var req ClaimRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	result, err := h.service.Award(r.Context(), req.Wallet, identifier)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrInvalidInput):
			core.BadRequest(w, "invalid wallet or quest identifier")
		case errors.Is(err, core.ErrNotFound):
			core.NotFound(w, "quest")
		case errors.Is(err, core.ErrRateLimited):
			core.JSONError(w, err)
		default:
			core.InternalServerError(w, err)
		}
		return
	}

	core.OK(w, result)
}
