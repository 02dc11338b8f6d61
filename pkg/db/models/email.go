package models

import "time"

// Email is an address owned by exactly one user. An address may repeat across
// users but is unique within its owner. A non-nil VerifiedAt means verified.
type Email struct {
	ID         uint64     `gorm:"primaryKey;autoIncrement"`
	UserID     uint64     `gorm:"column:user_id;not null;index;uniqueIndex:idx_emails_user_address,priority:1"`
	Address    string     `gorm:"column:email;not null;uniqueIndex:idx_emails_user_address,priority:2"`
	IsPrimary  bool       `gorm:"column:is_primary;not null;default:false"`
	VerifiedAt *time.Time `gorm:"column:verified_at"`
	CreatedAt  time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

// IsVerified reports whether the address has a verification timestamp.
func (e Email) IsVerified() bool {
	return e.VerifiedAt != nil
}
