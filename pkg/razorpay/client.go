package razorpay

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	razorpaysdk "github.com/razorpay/razorpay-go"

	"github.com/servex-app/servex-backend/pkg/config"
	"github.com/servex-app/servex-backend/pkg/logger"
)

var (
	errKeyIDRequired     = errors.New("razorpay key id is required")
	errKeySecretRequired = errors.New("razorpay key secret is required")
)

// Client wraps the Razorpay SDK with centralized credentials, a bounded
// request timeout, and local signature verification.
type Client struct {
	sdk       *razorpaysdk.Client
	keyID     string
	keySecret string
	currency  string
}

// GatewayOrder is the remote payment intent opened for one of our orders.
type GatewayOrder struct {
	ID       string
	Amount   int64
	Currency string
}

// NewClient initializes the Razorpay wrapper and validates the credentials.
func NewClient(ctx context.Context, cfg config.RazorpayConfig, logg *logger.Logger) (*Client, error) {
	keyID := strings.TrimSpace(cfg.KeyID)
	if keyID == "" {
		return nil, errKeyIDRequired
	}
	keySecret := strings.TrimSpace(cfg.KeySecret)
	if keySecret == "" {
		return nil, errKeySecretRequired
	}

	currency := strings.ToUpper(strings.TrimSpace(cfg.Currency))
	if currency == "" {
		currency = "INR"
	}

	sdk := razorpaysdk.NewClient(keyID, keySecret)
	if cfg.Timeout > 0 {
		// The SDK takes the per-call timeout as whole seconds.
		sdk.SetTimeout(int16(cfg.Timeout.Seconds()))
	}

	if logg != nil {
		logg.Info(ctx, "razorpay client initialized")
	}

	return &Client{
		sdk:       sdk,
		keyID:     keyID,
		keySecret: keySecret,
		currency:  currency,
	}, nil
}

// KeyID returns the public key material the browser checkout needs.
func (c *Client) KeyID() string {
	if c == nil {
		return ""
	}
	return c.keyID
}

// Currency returns the configured settlement currency.
func (c *Client) Currency() string {
	if c == nil {
		return ""
	}
	return c.currency
}

// CreateOrder opens a remote payment intent for the given amount in minor
// currency units (paise). The receipt ties the gateway order back to ours.
func (c *Client) CreateOrder(ctx context.Context, amountMinor int64, receipt string) (*GatewayOrder, error) {
	if amountMinor <= 0 {
		return nil, fmt.Errorf("amount must be positive, got %d", amountMinor)
	}

	data := map[string]interface{}{
		"amount":   amountMinor,
		"currency": c.currency,
		"receipt":  receipt,
	}

	body, err := c.sdk.Order.Create(data, nil)
	if err != nil {
		return nil, fmt.Errorf("creating razorpay order: %w", err)
	}

	id, _ := body["id"].(string)
	if id == "" {
		return nil, fmt.Errorf("razorpay order response missing id")
	}

	amount := amountMinor
	if raw, ok := body["amount"].(float64); ok {
		amount = int64(raw)
	}
	currency := c.currency
	if raw, ok := body["currency"].(string); ok && raw != "" {
		currency = raw
	}

	return &GatewayOrder{ID: id, Amount: amount, Currency: currency}, nil
}

// VerifySignature recomputes the callback signature from the gateway order id
// and payment id using the key secret and compares it in constant time. This
// is the only proof a payment actually succeeded; client claims are ignored.
func (c *Client) VerifySignature(gatewayOrderID, gatewayPaymentID, signature string) bool {
	return VerifySignature(c.keySecret, gatewayOrderID, gatewayPaymentID, signature)
}

// VerifySignature checks an HMAC-SHA256 hex signature over "orderID|paymentID".
func VerifySignature(secret, gatewayOrderID, gatewayPaymentID, signature string) bool {
	if secret == "" || gatewayOrderID == "" || gatewayPaymentID == "" || signature == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(gatewayOrderID + "|" + gatewayPaymentID))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
