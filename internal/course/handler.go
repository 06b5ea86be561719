// AngelaMos | 2026
// handler.go

package course

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/carterperez-dev/coursehub/internal/core"
	"github.com/carterperez-dev/coursehub/internal/middleware"
)

type Handler struct {
	service   *Service
	validator *validator.Validate
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: core.NewValidator(),
	}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	optionalAuth func(http.Handler) http.Handler,
) {
	r.Get("/courses", h.ListPublic)
	r.With(optionalAuth).Get("/course/{courseID}", h.GetCourse)
}

// RegisterAdminRoutes expects r to be mounted behind admin authentication.
func (h *Handler) RegisterAdminRoutes(r chi.Router) {
	r.Route("/courses", func(r chi.Router) {
		r.Get("/", h.ListAll)
		r.Post("/", h.Create)
		r.Put("/{courseID}", h.Update)
		r.Delete("/{courseID}", h.Delete)
	})
}

func (h *Handler) ListPublic(w http.ResponseWriter, r *http.Request) {
	courses, err := h.service.ListPublic(r.Context())
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, courses)
}

func (h *Handler) GetCourse(w http.ResponseWriter, r *http.Request) {
	courseID := chi.URLParam(r, "courseID")
	if !core.IsUUID(courseID) {
		core.NotFound(w, "course")
		return
	}

	course, err := h.service.GetCourse(
		r.Context(),
		middleware.GetIdentity(r.Context()),
		courseID,
	)
	if err != nil {
		writeError(w, err)
		return
	}

	core.OK(w, course)
}

func (h *Handler) ListAll(w http.ResponseWriter, r *http.Request) {
	courses, err := h.service.ListAll(
		r.Context(),
		middleware.GetIdentity(r.Context()),
	)
	if err != nil {
		writeError(w, err)
		return
	}

	core.OK(w, courses)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}

	course, err := h.service.Create(
		r.Context(),
		middleware.GetIdentity(r.Context()),
		req,
	)
	if err != nil {
		writeError(w, err)
		return
	}

	core.Created(w, course)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	courseID := chi.URLParam(r, "courseID")
	if !core.IsUUID(courseID) {
		core.NotFound(w, "course")
		return
	}

	req, ok := h.decode(w, r)
	if !ok {
		return
	}

	course, err := h.service.Update(
		r.Context(),
		middleware.GetIdentity(r.Context()),
		courseID,
		req,
	)
	if err != nil {
		writeError(w, err)
		return
	}

	core.OK(w, course)
}

type deleteResponse struct {
	ID       string `json:"id"`
	IsActive bool   `json:"is_active"`
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	courseID := chi.URLParam(r, "courseID")
	if !core.IsUUID(courseID) {
		core.NotFound(w, "course")
		return
	}

	err := h.service.Delete(
		r.Context(),
		middleware.GetIdentity(r.Context()),
		courseID,
	)
	if err != nil {
		writeError(w, err)
		return
	}

	core.OK(w, deleteResponse{ID: courseID, IsActive: false})
}

func (h *Handler) decode(
	w http.ResponseWriter,
	r *http.Request,
) (CourseRequest, bool) {
	var req CourseRequest
	if err := core.DecodeJSON(w, r, &req); err != nil {
		core.BadRequest(w, "invalid request body")
		return req, false
	}

	req.normalize()
	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return req, false
	}

	return req, true
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case core.IsAppError(err):
		core.JSONError(w, err)
	case errors.Is(err, core.ErrNotFound):
		core.NotFound(w, "course")
	default:
		core.InternalServerError(w, err)
	}
}
