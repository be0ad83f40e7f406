package adaptor

import (
	"encoding/json"
	"net/http"

	"admin-backend/internal/usecase"
	"admin-backend/pkg/apperror"
	"admin-backend/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Handler struct {
	Auth *AuthHandler
	User *UserHandler
}

func NewHandler(service *usecase.Service, config *utils.Config, log *zap.Logger) *Handler {
	return &Handler{
		Auth: NewAuthHandler(service.Auth, service.User, log),
		User: NewUserHandler(service.User, config.Query, log),
	}
}

// maxBodyBytes caps request bodies; every payload here is a small JSON object.
const maxBodyBytes = 1 << 20

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return false
	}
	return true
}

func pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		utils.ResponseBadRequest(w, "Invalid user ID", nil)
		return uuid.Nil, false
	}
	return id, true
}

// handleServiceError logs by kind and writes the kind's status and message.
func handleServiceError(log *zap.Logger, w http.ResponseWriter, err error, operation string) {
	appErr := apperror.From(err)

	switch appErr.Kind {
	case apperror.KindInternal:
		log.Error("Failed to "+operation, zap.Error(err), zap.String("operation", operation))
	case apperror.KindValidationFailed:
		log.Warn(operation+" validation failed", zap.String("message", appErr.Message))
	default:
		log.Warn(operation+" failed",
			zap.String("kind", string(appErr.Kind)),
			zap.String("reason", appErr.Reason))
	}

	utils.ResponseError(w, err)
}
