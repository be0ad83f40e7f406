package wire

import (
	"admin-backend/internal/adaptor"
	"admin-backend/internal/usecase"
	"admin-backend/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireAuth(r chi.Router, authHandler *adaptor.AuthHandler, guard usecase.AccessGuard, log *zap.Logger) {
	r.Route("/api/auth", func(r chi.Router) {
		// ==================== PUBLIC ROUTES ====================
		r.Post("/login", authHandler.Login)
		r.Post("/refresh", authHandler.Refresh)

		// ==================== PROTECTED ROUTES ====================
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(guard, log))
			r.Post("/logout", authHandler.Logout)
			r.Get("/profile", authHandler.Profile)
		})
	})
}
