package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/servex-app/servex-backend/pkg/enums"
)

// CreateOrderItemInput is one requested line of a new order.
type CreateOrderItemInput struct {
	MenuItemID   uuid.UUID `json:"menuItemId" validate:"required"`
	Quantity     int       `json:"quantity" validate:"required,min=1,max=50"`
	Instructions *string   `json:"instructions,omitempty" validate:"omitempty,max=500"`
}

// CreateOrderInput is the payload accepted by order creation. SessionID
// comes from the table session token, never from the body.
type CreateOrderInput struct {
	TableID       uuid.UUID              `json:"tableId" validate:"required"`
	SessionID     string                 `json:"-"`
	CustomerName  *string                `json:"customerName,omitempty" validate:"omitempty,max=120"`
	CustomerPhone *string                `json:"customerPhone,omitempty" validate:"omitempty,max=20"`
	Items         []CreateOrderItemInput `json:"items" validate:"required,min=1,max=50,dive"`
}

// UpdateStatusInput carries a requested lifecycle transition.
type UpdateStatusInput struct {
	Status string `json:"status" validate:"required"`
}

// ListParams pages and filters the admin order listing.
type ListParams struct {
	Status   *enums.OrderStatus
	TableID  *uuid.UUID
	Page     int
	PageSize int
}

func (p *ListParams) normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 || p.PageSize > 100 {
		p.PageSize = 20
	}
}

// ListResult is one page of orders plus the total row count.
type ListResult struct {
	Orders   []OrderResponse `json:"orders"`
	Total    int64           `json:"total"`
	Page     int             `json:"page"`
	PageSize int             `json:"pageSize"`
}

// AnalyticsParams scopes the analytics window.
type AnalyticsParams struct {
	Since time.Time
}

// AnalyticsSummary aggregates revenue and volume for the admin dashboard.
// Revenue counts only orders that reached PAID or later.
type AnalyticsSummary struct {
	TotalOrders    int64                       `json:"totalOrders"`
	TotalRevenue   decimal.Decimal             `json:"totalRevenue"`
	AvgOrderValue  decimal.Decimal             `json:"avgOrderValue"`
	OrdersByStatus map[enums.OrderStatus]int64 `json:"ordersByStatus"`
	TopItems       []TopItem                   `json:"topItems"`
	Since          time.Time                   `json:"since"`
}

// TopItem ranks a menu item by quantity sold, using the snapshotted
// name so renamed or deleted items keep their history.
type TopItem struct {
	Name     string `json:"name"`
	Quantity int64  `json:"quantity"`
}

// OrderItemResponse is the public shape of an order line.
type OrderItemResponse struct {
	ID           uuid.UUID       `json:"id"`
	MenuItemID   uuid.UUID       `json:"menuItemId"`
	Name         string          `json:"name"`
	Price        decimal.Decimal `json:"price"`
	Quantity     int             `json:"quantity"`
	Instructions *string         `json:"instructions,omitempty"`
}

// OrderResponse is the public shape of an order, also used as the bus
// payload for order events.
type OrderResponse struct {
	ID            uuid.UUID           `json:"id"`
	TableID       uuid.UUID           `json:"tableId"`
	TableNumber   *int                `json:"tableNumber,omitempty"`
	Items         []OrderItemResponse `json:"items"`
	Subtotal      decimal.Decimal     `json:"subtotal"`
	Tax           decimal.Decimal     `json:"tax"`
	ServiceCharge decimal.Decimal     `json:"serviceCharge"`
	TotalAmount   decimal.Decimal     `json:"totalAmount"`
	Status        enums.OrderStatus   `json:"status"`
	CustomerName  *string             `json:"customerName,omitempty"`
	CreatedAt     time.Time           `json:"createdAt"`
	UpdatedAt     time.Time           `json:"updatedAt"`
}

// StatusUpdatePayload is the bus payload for order:statusUpdate events.
type StatusUpdatePayload struct {
	OrderID   uuid.UUID         `json:"orderId"`
	Status    enums.OrderStatus `json:"status"`
	UpdatedAt time.Time         `json:"updatedAt"`
}
