package entity

import "time"

type UserRole string

const (
	RoleAdmin UserRole = "admin"
	RoleUser  UserRole = "user"
)

func (r UserRole) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}

type User struct {
	Base
	Role         UserRole   `db:"role" json:"role"`
	AccountName  string     `db:"account_name" json:"accountName"`
	Username     string     `db:"username" json:"username"`
	PasswordHash string     `db:"password" json:"-"`
	Phone        *string    `db:"phone" json:"phone,omitempty"`
	IsActive     bool       `db:"is_active" json:"isActive"`
	RequestedAt  *time.Time `db:"requested_at" json:"requestedAt,omitempty"`
	Description  *string    `db:"description" json:"description,omitempty"`
	DeviceID     *string    `db:"device_id" json:"deviceId,omitempty"`
}

const (
	UserFieldRole        = "role"
	UserFieldAccountName = "accountName"
	UserFieldUsername    = "username"
	UserFieldPassword    = "password"
	UserFieldPhone       = "phone"
	UserFieldIsActive    = "isActive"
	UserFieldRequestedAt = "requestedAt"
	UserFieldDescription = "description"
	UserFieldDeviceID    = "deviceId"
)

var userSchema = NewSchema("users", FieldID, append(baseFields(),
	Field{Name: UserFieldRole, Column: "role", Kind: KindString},
	Field{Name: UserFieldAccountName, Column: "account_name", Kind: KindString},
	Field{Name: UserFieldUsername, Column: "username", Kind: KindString, Unique: true},
	Field{Name: UserFieldPassword, Column: "password", Kind: KindString, Private: true},
	Field{Name: UserFieldPhone, Column: "phone", Kind: KindString, Nullable: true},
	Field{Name: UserFieldIsActive, Column: "is_active", Kind: KindBool},
	Field{Name: UserFieldRequestedAt, Column: "requested_at", Kind: KindTime, Nullable: true},
	Field{Name: UserFieldDescription, Column: "description", Kind: KindString, Nullable: true},
	Field{Name: UserFieldDeviceID, Column: "device_id", Kind: KindString, Nullable: true},
)...)

// PublicUser hides the password hash from outward reads.
var PublicUser = Projection{Exclude: []string{UserFieldPassword}}

func (u *User) Schema() *Schema {
	return userSchema
}

func (u *User) FieldPtr(name string) any {
	switch name {
	case UserFieldRole:
		return (*string)(&u.Role)
	case UserFieldAccountName:
		return &u.AccountName
	case UserFieldUsername:
		return &u.Username
	case UserFieldPassword:
		return &u.PasswordHash
	case UserFieldPhone:
		return &u.Phone
	case UserFieldIsActive:
		return &u.IsActive
	case UserFieldRequestedAt:
		return &u.RequestedAt
	case UserFieldDescription:
		return &u.Description
	case UserFieldDeviceID:
		return &u.DeviceID
	}
	return u.baseFieldPtr(name)
}

// BoundTo reports whether the account is currently bound to deviceID.
func (u *User) BoundTo(deviceID string) bool {
	return u.DeviceID != nil && *u.DeviceID == deviceID
}

// BoundElsewhere reports whether a different device holds the binding.
func (u *User) BoundElsewhere(deviceID string) bool {
	return u.DeviceID != nil && *u.DeviceID != "" && *u.DeviceID != deviceID
}
