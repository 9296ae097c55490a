// Package api exposes the editorial engine over HTTP: anonymous reads under
// /api/v1/public and JWT-protected editorial routes under /api/v1/admin.
package api

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth"
	"github.com/go-chi/render"
	"github.com/tendant/simple-editorial/pkg/editorial"
)

// NewRouter mounts the public and admin routes. Transport middleware (logging,
// recovery, CORS) is left to the caller.
func NewRouter(service editorial.Service, auth *jwtauth.JWTAuth, logger *slog.Logger) chi.Router {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "api")

	taxonomy := NewTaxonomyHandler(service, logger)
	moderators := RequireRole(editorial.RoleAdmin, editorial.RoleEditor)

	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Route("/api/v1", func(r chi.Router) {
		r.Mount("/public", NewPublicHandler(service, logger).Routes())

		r.Route("/admin", func(r chi.Router) {
			r.Use(jwtauth.Verifier(auth))
			r.Use(jwtauth.Authenticator)
			r.Use(PrincipalMiddleware)

			r.Mount("/posts", NewPostsHandler(service, logger).Routes())
			r.Group(func(r chi.Router) {
				r.Use(moderators)
				r.Mount("/comments", NewCommentsHandler(service, logger).Routes())
			})
			r.Mount("/categories", taxonomy.CategoryRoutes())
			r.Mount("/tags", taxonomy.TagRoutes())
			r.Mount("/media", NewMediaHandler(service, logger).Routes())
			r.Mount("/profiles", NewProfilesHandler(service, logger).Routes())
		})
	})

	return r
}
