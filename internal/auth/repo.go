package auth

import (
	"context"

	"gorm.io/gorm"

	"github.com/servex-app/servex-backend/pkg/db"
	"github.com/servex-app/servex-backend/pkg/db/models"
	"github.com/servex-app/servex-backend/pkg/errors"
)

// Repository loads staff accounts for authentication.
type Repository interface {
	GetByEmail(ctx context.Context, email string) (*models.StaffUser, error)
	Create(ctx context.Context, user *models.StaffUser) error
}

type gormRepository struct {
	client *db.Client
}

// NewRepository builds the GORM-backed staff repository.
func NewRepository(client *db.Client) Repository {
	return &gormRepository{client: client}
}

func (r *gormRepository) GetByEmail(ctx context.Context, email string) (*models.StaffUser, error) {
	var user models.StaffUser
	err := r.client.DB().WithContext(ctx).First(&user, "email = ?", email).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New(errors.CodeNotFound, "staff user not found")
		}
		return nil, errors.Wrap(errors.CodeDependency, err, "loading staff user")
	}
	return &user, nil
}

func (r *gormRepository) Create(ctx context.Context, user *models.StaffUser) error {
	if err := r.client.DB().WithContext(ctx).Create(user).Error; err != nil {
		return errors.Wrap(errors.CodeDependency, err, "creating staff user")
	}
	return nil
}
