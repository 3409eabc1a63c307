package domain

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// Role is a closed set; anything outside it is rejected at the boundary.
type Role string

const (
	RoleUser    Role = "user"
	RoleManager Role = "manager"
	RoleAdmin   Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleManager, RoleAdmin:
		return true
	}
	return false
}

type Status string

const (
	StatusPending     Status = "pending"
	StatusActive      Status = "active"
	StatusInactive    Status = "inactive"
	StatusBlocked     Status = "blocked"
	StatusSoftDeleted Status = "soft_deleted"
	StatusDeleted     Status = "deleted"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusActive, StatusInactive, StatusBlocked, StatusSoftDeleted, StatusDeleted:
		return true
	}
	return false
}

// CanLogin gates token issuance. Blocked is reported separately so callers
// can tell it apart from a plain credential failure.
func (s Status) CanLogin() bool {
	return s == StatusActive || s == StatusPending
}

type User struct {
	ID           string         `gorm:"primaryKey;size:36" json:"id"`
	Email        string         `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Name         string         `gorm:"size:64" json:"name"`
	PasswordHash string         `gorm:"size:100;not null" json:"-"`
	Role         Role           `gorm:"size:16;not null;default:user" json:"role"`
	Status       Status         `gorm:"size:16;not null;default:active" json:"status"`
	CreatedAt    time.Time      `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime" json:"updatedAt"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string { return "users" }

type UserRepository interface {
	Create(ctx context.Context, u *User) error
	FindByID(ctx context.Context, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context, offset, limit int) ([]User, int64, error)
	Update(ctx context.Context, u *User) error
	SoftDelete(ctx context.Context, id string) error
	HardDelete(ctx context.Context, id string) error
}
