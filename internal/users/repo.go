package users

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/mzielinski/usermgmt-backend/pkg/db/models"
	"github.com/mzielinski/usermgmt-backend/pkg/pagination"
)

// Repository exposes persistence for users and their email rows. Email
// operations live here rather than behind implicit model hooks so the
// lifecycle service controls cascade ordering explicitly.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id uint64) (*models.User, error)
	List(ctx context.Context, query ListQuery) ([]models.User, int64, error)
	UpdateAttributes(ctx context.Context, id uint64, attrs map[string]any) error
	SoftDelete(ctx context.Context, id uint64) error

	CreateEmail(ctx context.Context, email *models.Email) error
	FindUserEmail(ctx context.Context, userID, emailID uint64) (*models.Email, error)
	FindUserEmails(ctx context.Context, userID uint64) ([]models.Email, error)
	UpdateEmail(ctx context.Context, email *models.Email) error
	DeleteUserEmail(ctx context.Context, userID, emailID uint64) (int64, error)
	DeleteEmailsForUser(ctx context.Context, userID uint64) error
}

// ListQuery carries normalized listing inputs to the repository.
type ListQuery struct {
	Search string
	Sort   string
	Order  string
	Page   pagination.Params
}

// sortableColumns is the whitelist for the sort query parameter.
var sortableColumns = map[string]bool{
	"id":           true,
	"first_name":   true,
	"last_name":    true,
	"phone_number": true,
	"created_at":   true,
	"updated_at":   true,
}

// SortableColumn reports whether the column may be used for ordering.
func SortableColumn(name string) bool {
	return sortableColumns[name]
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a users repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *repositoryImpl) FindByID(ctx context.Context, id uint64) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Preload("Emails", func(db *gorm.DB) *gorm.DB {
			return db.Order("emails.id ASC")
		}).
		First(&user, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *repositoryImpl) List(ctx context.Context, query ListQuery) ([]models.User, int64, error) {
	base := r.db.WithContext(ctx).Model(&models.User{})

	if search := strings.TrimSpace(query.Search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		base = base.Where(
			"LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ? OR LOWER(phone_number) LIKE ?",
			pattern, pattern, pattern,
		)
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	sort := query.Sort
	if !SortableColumn(sort) {
		sort = "created_at"
	}
	order := "DESC"
	if strings.EqualFold(query.Order, "asc") {
		order = "ASC"
	}

	page := query.Page.Normalize()

	var rows []models.User
	err := base.
		Preload("Emails", func(db *gorm.DB) *gorm.DB {
			return db.Order("emails.id ASC")
		}).
		Order(sort + " " + order).
		Limit(page.PerPage).
		Offset(query.Page.Offset()).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (r *repositoryImpl) UpdateAttributes(ctx context.Context, id uint64, attrs map[string]any) error {
	if len(attrs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Updates(attrs).Error
}

func (r *repositoryImpl) SoftDelete(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).
		Delete(&models.User{}, "id = ?", id).Error
}

func (r *repositoryImpl) CreateEmail(ctx context.Context, email *models.Email) error {
	return r.db.WithContext(ctx).Create(email).Error
}

func (r *repositoryImpl) FindUserEmail(ctx context.Context, userID, emailID uint64) (*models.Email, error) {
	var email models.Email
	err := r.db.WithContext(ctx).
		First(&email, "id = ? AND user_id = ?", emailID, userID).Error
	if err != nil {
		return nil, err
	}
	return &email, nil
}

func (r *repositoryImpl) FindUserEmails(ctx context.Context, userID uint64) ([]models.Email, error) {
	var emails []models.Email
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id ASC").
		Find(&emails).Error
	if err != nil {
		return nil, err
	}
	return emails, nil
}

func (r *repositoryImpl) UpdateEmail(ctx context.Context, email *models.Email) error {
	return r.db.WithContext(ctx).
		Model(&models.Email{}).
		Where("id = ?", email.ID).
		Updates(map[string]any{
			"email":      email.Address,
			"is_primary": email.IsPrimary,
		}).Error
}

func (r *repositoryImpl) DeleteUserEmail(ctx context.Context, userID, emailID uint64) (int64, error) {
	result := r.db.WithContext(ctx).
		Delete(&models.Email{}, "id = ? AND user_id = ?", emailID, userID)
	return result.RowsAffected, result.Error
}

func (r *repositoryImpl) DeleteEmailsForUser(ctx context.Context, userID uint64) error {
	return r.db.WithContext(ctx).
		Delete(&models.Email{}, "user_id = ?", userID).Error
}
