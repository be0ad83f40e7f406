package middleware

import (
	"net/http"

	"admin-backend/internal/data/entity"
	"admin-backend/internal/usecase"
	"admin-backend/pkg/utils"

	"go.uber.org/zap"
)

// Auth middleware: bearer token, device header dan binding di server harus cocok
func Auth(guard usecase.AccessGuard, logger *zap.Logger) func(http.Handler) http.Handler {
	return authorize(guard, "", logger)
}

// Admin - seperti Auth, plus role admin di token
func Admin(guard usecase.AccessGuard, logger *zap.Logger) func(http.Handler) http.Handler {
	return authorize(guard, entity.RoleAdmin, logger)
}

func authorize(guard usecase.AccessGuard, role entity.UserRole, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, err := guard.Authorize(r.Context(),
				r.Header.Get("Authorization"),
				r.Header.Get(utils.DeviceIDHeader),
				role,
			)
			if err != nil {
				logger.Debug("Authorization failed",
					zap.String("path", r.URL.Path),
					zap.Error(err))
				utils.ResponseError(w, err)
				return
			}

			ctx := utils.SetIdentityContext(r.Context(), identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
