package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/servex-app/servex-backend/pkg/enums"
)

// MenuItem is the catalog record customers order from. Prices here are the
// authoritative source; orders snapshot them at creation time.
type MenuItem struct {
	ID          uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name        string             `gorm:"column:name;not null" json:"name"`
	Description *string            `gorm:"column:description" json:"description,omitempty"`
	Category    enums.MenuCategory `gorm:"column:category;type:text;not null" json:"category"`
	Price       decimal.Decimal    `gorm:"column:price;type:numeric(10,2);not null" json:"price"`
	IsAvailable bool               `gorm:"column:is_available;not null;default:true" json:"isAvailable"`
	Tags        []string           `gorm:"column:tags;type:jsonb;serializer:json" json:"tags,omitempty"`
	ImageURL    *string            `gorm:"column:image_url" json:"imageUrl,omitempty"`
	CreatedAt   time.Time          `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time          `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

// TableName overrides the default pluralization.
func (MenuItem) TableName() string {
	return "menu_items"
}
