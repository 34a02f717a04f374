package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lumastack/billing-service/internal/domain/entity"
	"github.com/lumastack/billing-service/internal/domain/model"
	"github.com/lumastack/billing-service/internal/domain/repository"
)

type customerRepository struct {
	db *gorm.DB
}

func NewCustomerRepository(db *gorm.DB) repository.CustomerRepository {
	return &customerRepository{
		db: db,
	}
}

func (r *customerRepository) modelToEntity(m *model.Customer) *entity.Customer {
	if m == nil {
		return nil
	}
	return &entity.Customer{
		ID:               m.ID,
		UserID:           m.UserID.String(),
		StripeCustomerID: m.StripeCustomerID,
		Email:            m.Email,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
}

func (r *customerRepository) entityToModel(e *entity.Customer) (*model.Customer, error) {
	if e == nil {
		return nil, nil
	}

	userUUID, err := uuid.Parse(e.UserID)
	if err != nil {
		return nil, err
	}

	return &model.Customer{
		ID:               e.ID,
		UserID:           userUUID,
		StripeCustomerID: e.StripeCustomerID,
		Email:            e.Email,
		CreatedAt:        e.CreatedAt,
		UpdatedAt:        e.UpdatedAt,
	}, nil
}

func (r *customerRepository) Create(ctx context.Context, customer *entity.Customer) error {
	m, err := r.entityToModel(customer)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *customerRepository) GetByUserID(ctx context.Context, userID string) (*entity.Customer, error) {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return nil, err
	}

	var m model.Customer
	err = r.db.WithContext(ctx).Where("user_id = ?", userUUID).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.modelToEntity(&m), nil
}

func (r *customerRepository) UpdateEmail(ctx context.Context, userID, email string) error {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return err
	}

	return r.db.WithContext(ctx).
		Model(&model.Customer{}).
		Where("user_id = ?", userUUID).
		Update("email", email).Error
}
