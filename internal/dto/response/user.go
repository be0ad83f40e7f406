package response

import (
	"time"

	"admin-backend/internal/data/entity"
)

type UserResponse struct {
	ID          string          `json:"id"`
	Role        entity.UserRole `json:"role"`
	AccountName string          `json:"accountName"`
	Username    string          `json:"username"`
	Phone       *string         `json:"phone,omitempty"`
	IsActive    bool            `json:"isActive"`
	Description *string         `json:"description,omitempty"`
	DeviceID    *string         `json:"deviceId,omitempty"`
	RequestedAt *time.Time      `json:"requestedAt,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// UserToResponse never carries the password hash.
func UserToResponse(user *entity.User) UserResponse {
	return UserResponse{
		ID:          user.ID.String(),
		Role:        user.Role,
		AccountName: user.AccountName,
		Username:    user.Username,
		Phone:       user.Phone,
		IsActive:    user.IsActive,
		Description: user.Description,
		DeviceID:    user.DeviceID,
		RequestedAt: user.RequestedAt,
		CreatedAt:   user.CreatedAt,
		UpdatedAt:   user.UpdatedAt,
	}
}

func UsersToResponse(users []*entity.User) []UserResponse {
	out := make([]UserResponse, len(users))
	for i, u := range users {
		out[i] = UserToResponse(u)
	}
	return out
}
