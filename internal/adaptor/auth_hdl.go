package adaptor

import (
	"net/http"

	"admin-backend/internal/dto/request"
	"admin-backend/internal/usecase"
	"admin-backend/pkg/apperror"
	"admin-backend/pkg/utils"

	"go.uber.org/zap"
)

type AuthHandler struct {
	service usecase.AuthService
	users   usecase.UserService
	log     *zap.Logger
}

func NewAuthHandler(service usecase.AuthService, users usecase.UserService, log *zap.Logger) *AuthHandler {
	return &AuthHandler{
		service: service,
		users:   users,
		log:     log.With(zap.String("handler", "auth")),
	}
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req request.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	tokens, err := h.service.Login(r.Context(), &req, r.Header.Get(utils.DeviceIDHeader))
	if err != nil {
		handleServiceError(h.log, w, err, "login")
		return
	}

	utils.ResponseSuccess(w, "Login successful", tokens)
}

// Refresh handles POST /api/auth/refresh
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req request.RefreshRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	tokens, err := h.service.Refresh(r.Context(), &req, r.Header.Get(utils.DeviceIDHeader))
	if err != nil {
		handleServiceError(h.log, w, err, "refresh")
		return
	}

	utils.ResponseSuccess(w, "Token refreshed", tokens)
}

// Logout handles POST /api/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	identity, ok := utils.GetIdentityFromContext(r.Context())
	if !ok {
		utils.ResponseError(w, apperror.Unauthorized(""))
		return
	}

	resp, err := h.service.Logout(r.Context(), identity)
	if err != nil {
		handleServiceError(h.log, w, err, "logout")
		return
	}

	utils.ResponseSuccess(w, resp.Message, nil)
}

// Profile handles GET /api/auth/profile
func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseError(w, apperror.Unauthorized(""))
		return
	}

	profile, err := h.users.GetProfile(r.Context(), userID)
	if err != nil {
		handleServiceError(h.log, w, err, "get profile")
		return
	}

	utils.ResponseSuccess(w, "Profile retrieved successfully", profile)
}
