package emails

import (
	"context"

	"gorm.io/gorm"

	"github.com/mzielinski/usermgmt-backend/pkg/db/models"
)

// Repository exposes persistence for the nested email collection.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	UserExists(ctx context.Context, userID uint64) (bool, error)
	AddressExists(ctx context.Context, address string) (bool, error)
	Create(ctx context.Context, email *models.Email) error
	FindByID(ctx context.Context, id uint64) (*models.Email, error)
	ListForUser(ctx context.Context, userID uint64, limit, offset int) ([]models.Email, int64, error)
	Update(ctx context.Context, email *models.Email) error
	Delete(ctx context.Context, id uint64) error
	DemoteOthers(ctx context.Context, userID, keepID uint64) error
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns an emails repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) UserExists(ctx context.Context, userID uint64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", userID).
		Count(&count).Error
	return count > 0, err
}

func (r *repositoryImpl) AddressExists(ctx context.Context, address string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Email{}).
		Where("email = ?", address).
		Count(&count).Error
	return count > 0, err
}

func (r *repositoryImpl) Create(ctx context.Context, email *models.Email) error {
	return r.db.WithContext(ctx).Create(email).Error
}

func (r *repositoryImpl) FindByID(ctx context.Context, id uint64) (*models.Email, error) {
	var email models.Email
	err := r.db.WithContext(ctx).First(&email, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &email, nil
}

func (r *repositoryImpl) ListForUser(ctx context.Context, userID uint64, limit, offset int) ([]models.Email, int64, error) {
	base := r.db.WithContext(ctx).
		Model(&models.Email{}).
		Where("user_id = ?", userID)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.Email
	err := base.
		Order("id ASC").
		Limit(limit).
		Offset(offset).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (r *repositoryImpl) Update(ctx context.Context, email *models.Email) error {
	return r.db.WithContext(ctx).
		Model(&models.Email{}).
		Where("id = ?", email.ID).
		Updates(map[string]any{
			"email":      email.Address,
			"is_primary": email.IsPrimary,
		}).Error
}

func (r *repositoryImpl) Delete(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).
		Delete(&models.Email{}, "id = ?", id).Error
}

func (r *repositoryImpl) DemoteOthers(ctx context.Context, userID, keepID uint64) error {
	return r.db.WithContext(ctx).
		Model(&models.Email{}).
		Where("user_id = ? AND id <> ? AND is_primary = ?", userID, keepID, true).
		Update("is_primary", false).Error
}
