package adaptor

import (
	"net/http"

	"admin-backend/internal/dto/request"
	"admin-backend/internal/usecase"
	"admin-backend/pkg/utils"

	"go.uber.org/zap"
)

type UserHandler struct {
	service usecase.UserService
	query   utils.QueryConfig
	log     *zap.Logger
}

func NewUserHandler(service usecase.UserService, query utils.QueryConfig, log *zap.Logger) *UserHandler {
	return &UserHandler{
		service: service,
		query:   query,
		log:     log.With(zap.String("handler", "user")),
	}
}

// CreateUser handles POST /api/users (admin only)
func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req request.CreateUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	// Validate request
	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	user, err := h.service.CreateUser(r.Context(), &req)
	if err != nil {
		handleServiceError(h.log, w, err, "create user")
		return
	}

	utils.ResponseCreated(w, "User created successfully", user)
}

// ListUsers handles GET /api/users (admin only)
// ?filter=["field:op:value"]&sort=field:dir&page=1&pageSize=20
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	req, err := request.ParseListRequest(r.URL.Query(), h.query.DefaultPageSize, h.query.MaxPageSize)
	if err != nil {
		utils.ResponseBadRequest(w, err.Error(), nil)
		return
	}

	users, err := h.service.ListUsers(r.Context(), req)
	if err != nil {
		handleServiceError(h.log, w, err, "list users")
		return
	}

	utils.ResponseSuccess(w, "Users retrieved successfully", users)
}

// GetUser handles GET /api/users/{id}
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	user, err := h.service.GetUser(r.Context(), id)
	if err != nil {
		handleServiceError(h.log, w, err, "get user")
		return
	}

	utils.ResponseSuccess(w, "User retrieved successfully", user)
}

// UpdateUser handles PUT /api/users/{id} (admin only)
func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req request.UpdateUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	user, err := h.service.UpdateUser(r.Context(), id, &req)
	if err != nil {
		handleServiceError(h.log, w, err, "update user")
		return
	}

	utils.ResponseSuccess(w, "User updated successfully", user)
}

// DeleteUser handles DELETE /api/users/{id} (admin only)
func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	user, err := h.service.DeleteUser(r.Context(), id)
	if err != nil {
		handleServiceError(h.log, w, err, "delete user")
		return
	}

	utils.ResponseSuccess(w, "User deleted successfully", user)
}

// ReleaseDevice handles DELETE /api/users/{id}/device (admin only)
func (h *UserHandler) ReleaseDevice(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	user, err := h.service.ReleaseDevice(r.Context(), id)
	if err != nil {
		handleServiceError(h.log, w, err, "release device")
		return
	}

	utils.ResponseSuccess(w, "Device binding released", user)
}
