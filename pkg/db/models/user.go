package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents a managed user record. Deleting a user is a soft delete;
// the deleted_at marker keeps the row for audit while excluding it from
// normal queries.
type User struct {
	ID          uint64         `gorm:"primaryKey;autoIncrement"`
	FirstName   string         `gorm:"column:first_name;not null"`
	LastName    string         `gorm:"column:last_name;not null"`
	PhoneNumber string         `gorm:"column:phone_number;not null"`
	Emails      []Email        `gorm:"foreignKey:UserID"`
	CreatedAt   time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time      `gorm:"column:updated_at;autoUpdateTime"`
	DeletedAt   gorm.DeletedAt `gorm:"column:deleted_at;index"`
}

// FullName concatenates the user's first and last name.
func (u User) FullName() string {
	return u.FirstName + " " + u.LastName
}
