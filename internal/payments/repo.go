package payments

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/servex-app/servex-backend/pkg/db"
	"github.com/servex-app/servex-backend/pkg/db/models"
	"github.com/servex-app/servex-backend/pkg/enums"
	"github.com/servex-app/servex-backend/pkg/errors"
)

// Repository persists payment intents. Terminal transitions are
// conditional updates keyed on PENDING so a payment settles exactly once.
type Repository interface {
	Create(ctx context.Context, payment *models.Payment) error
	GetByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*models.Payment, error)
	MarkSuccessIf(ctx context.Context, id uuid.UUID, gatewayPaymentID, signature string) (bool, error)
}

type gormRepository struct {
	client *db.Client
}

// NewRepository builds the GORM-backed payment repository.
func NewRepository(client *db.Client) Repository {
	return &gormRepository{client: client}
}

func (r *gormRepository) Create(ctx context.Context, payment *models.Payment) error {
	if err := r.client.DB().WithContext(ctx).Create(payment).Error; err != nil {
		return errors.Wrap(errors.CodeDependency, err, "creating payment")
	}
	return nil
}

func (r *gormRepository) GetByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*models.Payment, error) {
	var payment models.Payment
	err := r.client.DB().WithContext(ctx).
		First(&payment, "gateway_order_id = ?", gatewayOrderID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New(errors.CodeNotFound, "payment not found")
		}
		return nil, errors.Wrap(errors.CodeDependency, err, "loading payment")
	}
	return &payment, nil
}

// MarkSuccessIf settles a PENDING payment, recording the gateway payment
// id and the verified signature. False means another verifier won.
func (r *gormRepository) MarkSuccessIf(ctx context.Context, id uuid.UUID, gatewayPaymentID, signature string) (bool, error) {
	res := r.client.DB().WithContext(ctx).
		Model(&models.Payment{}).
		Where("id = ? AND status = ?", id, enums.PaymentStatusPending).
		Updates(map[string]any{
			"status":             enums.PaymentStatusSuccess,
			"gateway_payment_id": gatewayPaymentID,
			"signature":          signature,
			"updated_at":         time.Now().UTC(),
		})
	if res.Error != nil {
		return false, errors.Wrap(errors.CodeDependency, res.Error, "settling payment")
	}
	return res.RowsAffected == 1, nil
}

