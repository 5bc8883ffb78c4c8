package catalog

import (
	"github.com/shopspring/decimal"

	"github.com/servex-app/servex-backend/pkg/db/models"
)

// CreateMenuItemInput is the admin payload for adding a menu item.
type CreateMenuItemInput struct {
	Name        string          `json:"name" validate:"required,max=120"`
	Description *string         `json:"description,omitempty" validate:"omitempty,max=1000"`
	Category    string          `json:"category" validate:"required"`
	Price       decimal.Decimal `json:"price" validate:"required"`
	IsAvailable *bool           `json:"isAvailable,omitempty"`
	Tags        []string        `json:"tags,omitempty" validate:"omitempty,max=10,dive,max=40"`
	ImageURL    *string         `json:"imageUrl,omitempty" validate:"omitempty,url"`
}

// UpdateMenuItemInput patches an existing menu item. Nil fields are
// left untouched.
type UpdateMenuItemInput struct {
	Name        *string          `json:"name,omitempty" validate:"omitempty,max=120"`
	Description *string          `json:"description,omitempty" validate:"omitempty,max=1000"`
	Category    *string          `json:"category,omitempty"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	IsAvailable *bool            `json:"isAvailable,omitempty"`
	Tags        []string         `json:"tags,omitempty" validate:"omitempty,max=10,dive,max=40"`
	ImageURL    *string          `json:"imageUrl,omitempty" validate:"omitempty,url"`
}

// MenuFilter narrows the public menu listing.
type MenuFilter struct {
	Category      *string
	AvailableOnly bool
}

// CreateTableInput is the admin payload for registering a table.
type CreateTableInput struct {
	TableNumber int  `json:"tableNumber" validate:"required,min=1,max=9999"`
	Capacity    int  `json:"capacity" validate:"omitempty,min=1,max=40"`
	IsActive    bool `json:"isActive"`
}

// TableSessionResponse is returned when a diner resolves a scanned QR
// code. The token authorizes order creation for this table only.
type TableSessionResponse struct {
	Table        *models.Table `json:"table"`
	SessionToken string        `json:"sessionToken"`
}
