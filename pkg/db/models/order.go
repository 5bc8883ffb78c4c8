package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/servex-app/servex-backend/pkg/enums"
)

// Order is the system of record for one table visit's order. Rows are never
// deleted; the lifecycle advances only through status transitions.
type Order struct {
	ID            uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	TableID       uuid.UUID         `gorm:"column:table_id;type:uuid;not null" json:"tableId"`
	Table         *Table            `gorm:"foreignKey:TableID" json:"table,omitempty"`
	Items         []OrderItem       `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	Subtotal      decimal.Decimal   `gorm:"column:subtotal;type:numeric(10,2);not null" json:"subtotal"`
	Tax           decimal.Decimal   `gorm:"column:tax;type:numeric(10,2);not null" json:"tax"`
	ServiceCharge decimal.Decimal   `gorm:"column:service_charge;type:numeric(10,2);not null" json:"serviceCharge"`
	TotalAmount   decimal.Decimal   `gorm:"column:total_amount;type:numeric(10,2);not null" json:"totalAmount"`
	Status        enums.OrderStatus `gorm:"column:status;type:text;not null;default:'CREATED'" json:"status"`
	SessionID     string            `gorm:"column:session_id;not null" json:"sessionId"`
	CustomerName  *string           `gorm:"column:customer_name" json:"customerName,omitempty"`
	CustomerPhone *string           `gorm:"column:customer_phone" json:"customerPhone,omitempty"`
	PaymentID     *uuid.UUID        `gorm:"column:payment_id;type:uuid" json:"paymentId,omitempty"`
	CreatedAt     time.Time         `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt     time.Time         `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

// TableName overrides the default pluralization.
func (Order) TableName() string {
	return "orders"
}

// OrderItem snapshots the ordered menu item's name and unit price so later
// catalog edits never alter historical orders.
type OrderItem struct {
	ID           uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderID      uuid.UUID       `gorm:"column:order_id;type:uuid;not null" json:"orderId"`
	MenuItemID   uuid.UUID       `gorm:"column:menu_item_id;type:uuid;not null" json:"menuItemId"`
	Name         string          `gorm:"column:name;not null" json:"name"`
	Price        decimal.Decimal `gorm:"column:price;type:numeric(10,2);not null" json:"price"`
	Quantity     int             `gorm:"column:quantity;not null" json:"quantity"`
	Instructions *string         `gorm:"column:instructions" json:"instructions,omitempty"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
}

// TableName overrides the default pluralization.
func (OrderItem) TableName() string {
	return "order_items"
}
