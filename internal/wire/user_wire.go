package wire

import (
	"admin-backend/internal/adaptor"
	"admin-backend/internal/usecase"
	"admin-backend/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// wireUser configures user management routes with role-based access control
func wireUser(r chi.Router, userHandler *adaptor.UserHandler, guard usecase.AccessGuard, log *zap.Logger) {
	r.Route("/api/users", func(r chi.Router) {
		// Any authenticated caller on its bound device
		r.With(middleware.Auth(guard, log)).Get("/{id}", userHandler.GetUser)

		// ==================== ADMIN ROUTES ====================
		r.Group(func(r chi.Router) {
			r.Use(middleware.Admin(guard, log))
			r.Post("/", userHandler.CreateUser)
			r.Get("/", userHandler.ListUsers) // GET /api/users?filter=[...]&sort=field:asc&page=1&pageSize=20
			r.Put("/{id}", userHandler.UpdateUser)
			r.Delete("/{id}", userHandler.DeleteUser)
			r.Delete("/{id}/device", userHandler.ReleaseDevice)
		})
	})
}
