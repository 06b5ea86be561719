// AngelaMos | 2026
// routes.go

package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/carterperez-dev/coursehub/internal/admin"
	"github.com/carterperez-dev/coursehub/internal/auth"
	"github.com/carterperez-dev/coursehub/internal/course"
	"github.com/carterperez-dev/coursehub/internal/middleware"
	"github.com/carterperez-dev/coursehub/internal/purchase"
	"github.com/carterperez-dev/coursehub/internal/user"
)

// APIHandlers is everything mounted under /api.
type APIHandlers struct {
	Auth      *auth.Handler
	Users     *user.Handler
	Courses   *course.Handler
	Purchases *purchase.Handler
	Admin     *admin.Handler

	Verifier middleware.TokenVerifier

	// AuthLimiter guards register and login. UserLimiter runs after
	// authentication on the caller's own routes. Nil disables either.
	AuthLimiter func(http.Handler) http.Handler
	UserLimiter func(http.Handler) http.Handler
}

func RegisterAPIRoutes(r chi.Router, h APIHandlers) {
	authenticator := middleware.Authenticator(h.Verifier)
	optionalAuth := middleware.OptionalAuth(h.Verifier)

	limitedAuth := authenticator
	if h.UserLimiter != nil {
		limitedAuth = func(next http.Handler) http.Handler {
			return authenticator(h.UserLimiter(next))
		}
	}

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			if h.AuthLimiter != nil {
				r.Use(h.AuthLimiter)
			}
			h.Auth.RegisterRoutes(r)
		})

		h.Users.RegisterRoutes(r, limitedAuth)
		h.Courses.RegisterRoutes(r, optionalAuth)
		h.Purchases.RegisterRoutes(r, limitedAuth)

		r.Route("/admin", func(r chi.Router) {
			r.Use(authenticator)
			r.Use(middleware.RequireAdmin)

			h.Courses.RegisterAdminRoutes(r)
			h.Users.RegisterAdminRoutes(r)
			if h.Admin != nil {
				h.Admin.RegisterRoutes(r)
			}
		})
	})
}
