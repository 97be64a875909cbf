// AngelaMos | 2026
// handler.go

package user

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelamos/questledger/internal/core"
	"github.com/angelamos/questledger/internal/progression"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/levels", h.ListLevels)

	r.Route("/users", func(r chi.Router) {
		r.Get("/{wallet}", h.GetProfile)
		r.Get("/{wallet}/level", h.GetLevel)
	})
}

// ListLevels exposes the progression threshold table for clients that
// render the ladder.
func (h *Handler) ListLevels(w http.ResponseWriter, r *http.Request) {
	core.OK(w, ToLevelThresholds(progression.Levels()))
}

func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	wallet := chi.URLParam(r, "wallet")

	u, err := h.service.GetProfile(r.Context(), wallet)
	if err != nil {
		writeUserError(w, err)
		return
	}

	core.OK(w, ToProfileResponse(u))
}

func (h *Handler) GetLevel(w http.ResponseWriter, r *http.Request) {
	wallet := chi.URLParam(r, "wallet")

	u, err := h.service.GetProfile(r.Context(), wallet)
	if err != nil {
		writeUserError(w, err)
		return
	}

	resp := ToProfileResponse(u)
	core.OK(w, LevelResponse{
		Wallet:  resp.Wallet,
		TotalXP: resp.TotalXP,
		Level:   resp.Level,
	})
}

func writeUserError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, core.ErrInvalidInput):
		core.BadRequest(w, "invalid wallet")
	case errors.Is(err, core.ErrNotFound):
		core.NotFound(w, "user")
	default:
		core.InternalServerError(w, err)
	}
}
