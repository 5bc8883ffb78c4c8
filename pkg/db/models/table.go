package models

import (
	"time"

	"github.com/google/uuid"
)

// Table is a physical restaurant table identified by the QR code placed on it.
type Table struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	TableNumber int       `gorm:"column:table_number;not null;uniqueIndex" json:"tableNumber"`
	IsActive    bool      `gorm:"column:is_active;not null;default:true" json:"isActive"`
	Capacity    int       `gorm:"column:capacity;not null;default:4" json:"capacity"`
	QRCodeData  string    `gorm:"column:qr_code_data" json:"qrCodeData,omitempty"`
	QRCodeURL   string    `gorm:"column:qr_code_url" json:"qrCodeUrl,omitempty"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

// TableName overrides the default pluralization.
func (Table) TableName() string {
	return "tables"
}
