package request

type CreateUserRequest struct {
	Role        string  `json:"role" validate:"required,oneof=admin user"`
	AccountName string  `json:"accountName" validate:"required,max=100"`
	Username    string  `json:"username" validate:"required,min=3,max=50,username"`
	Password    string  `json:"password" validate:"required,min=6"`
	Phone       *string `json:"phone,omitempty" validate:"omitempty,min=8,max=15"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=500"`
	IsActive    *bool   `json:"isActive,omitempty"`
}

// UpdateUserRequest only touches the fields that are present.
type UpdateUserRequest struct {
	Role        *string `json:"role,omitempty" validate:"omitempty,oneof=admin user"`
	AccountName *string `json:"accountName,omitempty" validate:"omitempty,min=1,max=100"`
	Username    *string `json:"username,omitempty" validate:"omitempty,min=3,max=50,username"`
	Password    *string `json:"password,omitempty" validate:"omitempty,min=6"`
	Phone       *string `json:"phone,omitempty" validate:"omitempty,min=8,max=15"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=500"`
	IsActive    *bool   `json:"isActive,omitempty"`
}

func (r UpdateUserRequest) IsEmpty() bool {
	return r.Role == nil && r.AccountName == nil && r.Username == nil && r.Password == nil &&
		r.Phone == nil && r.Description == nil && r.IsActive == nil
}
