package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/servex-app/servex-backend/pkg/enums"
)

// Payment records one payment intent against an order. It is created PENDING
// and moved exactly once to a terminal status during verification.
type Payment struct {
	ID               uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderID          uuid.UUID           `gorm:"column:order_id;type:uuid;not null" json:"orderId"`
	GatewayOrderID   string              `gorm:"column:gateway_order_id;not null;uniqueIndex" json:"gatewayOrderId"`
	GatewayPaymentID *string             `gorm:"column:gateway_payment_id" json:"gatewayPaymentId,omitempty"`
	Signature        *string             `gorm:"column:signature" json:"-"`
	Amount           decimal.Decimal     `gorm:"column:amount;type:numeric(10,2);not null" json:"amount"`
	Currency         string              `gorm:"column:currency;not null;default:'INR'" json:"currency"`
	Status           enums.PaymentStatus `gorm:"column:status;type:text;not null;default:'PENDING'" json:"status"`
	CreatedAt        time.Time           `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt        time.Time           `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

// TableName overrides the default pluralization.
func (Payment) TableName() string {
	return "payments"
}
