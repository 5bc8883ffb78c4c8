package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/servex-app/servex-backend/pkg/enums"
)

// StaffUser is a dashboard account (admin or kitchen).
type StaffUser struct {
	ID           uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Email        string          `gorm:"column:email;not null;uniqueIndex" json:"email"`
	Name         string          `gorm:"column:name;not null" json:"name"`
	PasswordHash string          `gorm:"column:password_hash;not null" json:"-"`
	Role         enums.StaffRole `gorm:"column:role;type:text;not null" json:"role"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt    time.Time       `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

// TableName overrides the default pluralization.
func (StaffUser) TableName() string {
	return "staff_users"
}
