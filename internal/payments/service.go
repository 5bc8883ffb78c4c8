// Package payments opens payment intents against the gateway and
// reconciles the callbacks that settle them. The signature check is the
// only trusted proof of payment; everything else in the callback is
// treated as client input.
package payments

import (
	"context"

	"github.com/google/uuid"

	"github.com/servex-app/servex-backend/internal/notify"
	"github.com/servex-app/servex-backend/internal/orders"
	"github.com/servex-app/servex-backend/internal/pricing"
	"github.com/servex-app/servex-backend/pkg/db/models"
	"github.com/servex-app/servex-backend/pkg/enums"
	"github.com/servex-app/servex-backend/pkg/errors"
	"github.com/servex-app/servex-backend/pkg/logger"
	"github.com/servex-app/servex-backend/pkg/metrics"
	"github.com/servex-app/servex-backend/pkg/razorpay"
)

const (
	outcomeSuccess          = "success"
	outcomeInvalidSignature = "invalid_signature"
	outcomeStateConflict    = "state_conflict"
	outcomeIdempotentReplay = "idempotent_replay"
)

// Gateway is the payment provider surface the service needs.
type Gateway interface {
	CreateOrder(ctx context.Context, amountMinor int64, receipt string) (*razorpay.GatewayOrder, error)
	VerifySignature(gatewayOrderID, gatewayPaymentID, signature string) bool
	KeyID() string
	Currency() string
}

// OrderStore is the slice of the order repository payments needs.
type OrderStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	MarkPaid(ctx context.Context, id, paymentID uuid.UUID) (bool, error)
}

// Service implements payment intent creation and verification.
type Service struct {
	repo    Repository
	orders  OrderStore
	gateway Gateway
	bus     notify.Publisher
	metrics *metrics.PaymentMetrics
	log     *logger.Logger
}

func NewService(
	repo Repository,
	orderStore OrderStore,
	gateway Gateway,
	bus notify.Publisher,
	paymentMetrics *metrics.PaymentMetrics,
	log *logger.Logger,
) *Service {
	return &Service{
		repo:    repo,
		orders:  orderStore,
		gateway: gateway,
		bus:     bus,
		metrics: paymentMetrics,
		log:     log,
	}
}

// CreateIntent opens a gateway order for an order still in CREATED and
// records it as a PENDING payment. The amount always comes from the
// persisted order total, never from the request.
func (s *Service) CreateIntent(ctx context.Context, orderID uuid.UUID) (*IntentResponse, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status != enums.OrderStatusCreated {
		return nil, errors.New(errors.CodeStateConflict, "order is not awaiting payment").
			WithDetails(map[string]any{"status": order.Status})
	}

	amountMinor := pricing.AmountMinor(order.TotalAmount)
	gatewayOrder, err := s.gateway.CreateOrder(ctx, amountMinor, order.ID.String())
	if err != nil {
		return nil, errors.Wrap(errors.CodeDependency, err, "opening gateway order")
	}

	payment := &models.Payment{
		OrderID:        order.ID,
		GatewayOrderID: gatewayOrder.ID,
		Amount:         order.TotalAmount,
		Currency:       gatewayOrder.Currency,
		Status:         enums.PaymentStatusPending,
	}
	if err := s.repo.Create(ctx, payment); err != nil {
		return nil, err
	}

	ctx = s.log.WithFields(ctx, map[string]any{
		"order_id":   order.ID.String(),
		"payment_id": payment.ID.String(),
	})
	s.log.Info(ctx, "payment intent created")

	return &IntentResponse{
		PaymentID:      payment.ID,
		OrderID:        order.ID,
		GatewayOrderID: gatewayOrder.ID,
		Amount:         gatewayOrder.Amount,
		AmountDecimal:  order.TotalAmount,
		Currency:       gatewayOrder.Currency,
		KeyID:          s.gateway.KeyID(),
	}, nil
}

// Verify settles a payment from the gateway callback. The signature is
// recomputed locally; a mismatch rejects the call without touching any
// state, so a forged attempt cannot block the genuine callback that
// follows. Settlement is a conditional PENDING update, so exactly one
// verifier wins the race and only the winner marks the order PAID and
// emits bus events. Replaying a callback that already settled this
// payment is accepted as a no-op.
func (s *Service) Verify(ctx context.Context, input VerifyInput) (*VerifyResponse, error) {
	payment, err := s.repo.GetByGatewayOrderID(ctx, input.GatewayOrderID)
	if err != nil {
		return nil, err
	}
	ctx = s.log.WithFields(ctx, map[string]any{
		"order_id":   payment.OrderID.String(),
		"payment_id": payment.ID.String(),
	})

	if !s.gateway.VerifySignature(input.GatewayOrderID, input.GatewayPaymentID, input.Signature) {
		s.metrics.IncVerification(outcomeInvalidSignature)
		s.log.Warn(ctx, "payment signature mismatch")
		return nil, errors.New(errors.CodeUnauthorized, "payment signature verification failed")
	}

	switch payment.Status {
	case enums.PaymentStatusSuccess:
		if payment.GatewayPaymentID != nil && *payment.GatewayPaymentID == input.GatewayPaymentID {
			s.metrics.IncVerification(outcomeIdempotentReplay)
			return s.verified(payment), nil
		}
		s.metrics.IncVerification(outcomeStateConflict)
		return nil, errors.New(errors.CodeStateConflict, "payment already settled")
	case enums.PaymentStatusFailed:
		s.metrics.IncVerification(outcomeStateConflict)
		return nil, errors.New(errors.CodeStateConflict, "payment already failed")
	}

	won, err := s.repo.MarkSuccessIf(ctx, payment.ID, input.GatewayPaymentID, input.Signature)
	if err != nil {
		return nil, err
	}
	if !won {
		current, reloadErr := s.repo.GetByGatewayOrderID(ctx, input.GatewayOrderID)
		if reloadErr == nil &&
			current.Status == enums.PaymentStatusSuccess &&
			current.GatewayPaymentID != nil &&
			*current.GatewayPaymentID == input.GatewayPaymentID {
			s.metrics.IncVerification(outcomeIdempotentReplay)
			return s.verified(current), nil
		}
		s.metrics.IncVerification(outcomeStateConflict)
		return nil, errors.New(errors.CodeStateConflict, "payment settled concurrently")
	}

	orderPaid, err := s.orders.MarkPaid(ctx, payment.OrderID, payment.ID)
	if err != nil {
		return nil, err
	}
	if !orderPaid {
		// The payment settled but the order left CREATED, most likely
		// cancelled by the cleanup worker in the meantime.
		s.metrics.IncVerification(outcomeStateConflict)
		s.log.Warn(ctx, "payment settled for an order no longer awaiting payment")
		return nil, errors.New(errors.CodeStateConflict, "order is no longer awaiting payment")
	}

	s.metrics.IncVerification(outcomeSuccess)
	s.log.Info(ctx, "payment verified")
	s.publishPaid(ctx, payment.OrderID)

	payment.Status = enums.PaymentStatusSuccess
	payment.GatewayPaymentID = &input.GatewayPaymentID
	return s.verified(payment), nil
}

// Key returns the public key id for checkout initialization.
func (s *Service) Key() KeyResponse {
	return KeyResponse{KeyID: s.gateway.KeyID()}
}

func (s *Service) verified(payment *models.Payment) *VerifyResponse {
	return &VerifyResponse{
		PaymentID: payment.ID,
		OrderID:   payment.OrderID,
		Status:    payment.Status.String(),
	}
}

// publishPaid announces the freshly paid order. The kitchen gets
// order:new carrying the order's public shape; both the kitchen and the
// order's own topic get the status update.
func (s *Service) publishPaid(ctx context.Context, orderID uuid.UUID) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		s.log.Error(ctx, "loading order for paid events", err)
		return
	}

	newMsg, err := notify.NewMessage(notify.EventOrderNew, orders.NewOrderResponse(order))
	if err != nil {
		s.log.Error(ctx, "building order:new event", err)
	} else if err := s.bus.Publish(ctx, notify.TopicKitchen, newMsg); err != nil {
		s.log.Error(ctx, "publishing order:new", err)
	}

	statusMsg, err := notify.NewMessage(notify.EventOrderStatusUpdate, orders.StatusUpdatePayload{
		OrderID:   order.ID,
		Status:    order.Status,
		UpdatedAt: order.UpdatedAt,
	})
	if err != nil {
		s.log.Error(ctx, "building status update event", err)
		return
	}
	for _, topic := range []string{notify.TopicKitchen, notify.OrderTopic(order.ID)} {
		if err := s.bus.Publish(ctx, topic, statusMsg); err != nil {
			s.log.Error(ctx, "publishing status update", err)
		}
	}
}
