package payments

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// IntentResponse is what the browser checkout needs to open the payment
// widget. Amount is in minor currency units as the gateway expects.
type IntentResponse struct {
	PaymentID      uuid.UUID       `json:"paymentId"`
	OrderID        uuid.UUID       `json:"orderId"`
	GatewayOrderID string          `json:"gatewayOrderId"`
	Amount         int64           `json:"amount"`
	AmountDecimal  decimal.Decimal `json:"amountDecimal"`
	Currency       string          `json:"currency"`
	KeyID          string          `json:"keyId"`
}

// VerifyInput carries the gateway callback fields the client relays
// after checkout completes.
type VerifyInput struct {
	GatewayOrderID   string `json:"razorpayOrderId" validate:"required"`
	GatewayPaymentID string `json:"razorpayPaymentId" validate:"required"`
	Signature        string `json:"razorpaySignature" validate:"required"`
}

// VerifyResponse reports the settled payment and the order it paid for.
type VerifyResponse struct {
	PaymentID uuid.UUID `json:"paymentId"`
	OrderID   uuid.UUID `json:"orderId"`
	Status    string    `json:"status"`
}

// KeyResponse exposes the public key id for checkout initialization.
type KeyResponse struct {
	KeyID string `json:"keyId"`
}
