// AngelaMos | 2026
// handler.go

package purchase

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/carterperez-dev/coursehub/internal/core"
	"github.com/carterperez-dev/coursehub/internal/middleware"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	r.Group(func(r chi.Router) {
		r.Use(authenticator)

		r.Post("/purchase/{courseID}", h.Purchase)
		r.Get("/my-courses", h.ListMyCourses)
	})
}

func (h *Handler) Purchase(w http.ResponseWriter, r *http.Request) {
	courseID := chi.URLParam(r, "courseID")
	if !core.IsUUID(courseID) {
		core.NotFound(w, "course")
		return
	}

	p, err := h.service.Purchase(
		r.Context(),
		middleware.GetIdentity(r.Context()),
		courseID,
	)
	if err != nil {
		switch {
		case core.IsAppError(err):
			core.JSONError(w, err)
		case errors.Is(err, core.ErrNotFound):
			core.NotFound(w, "course")
		default:
			core.InternalServerError(w, err)
		}
		return
	}

	core.Created(w, ToPurchaseResponse(p))
}

func (h *Handler) ListMyCourses(w http.ResponseWriter, r *http.Request) {
	courses, err := h.service.ListMyCourses(
		r.Context(),
		middleware.GetIdentity(r.Context()),
	)
	if err != nil {
		if core.IsAppError(err) {
			core.JSONError(w, err)
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, courses)
}
