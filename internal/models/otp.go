package models

import "time"

// OTP is a one-time login code. Rows are append-only: issuance always creates
// a new row and verification only ever reads the most recent one per user.
type OTP struct {
	ID        uint64    `gorm:"primarykey" json:"id"`
	UserID    uint64    `gorm:"not null;index" json:"user_id"`
	Code      string    `gorm:"type:char(6);not null" json:"-"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `gorm:"not null;index" json:"expires_at"`

	// Relations
	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// IsValid reports whether the code is still usable at time now.
func (o *OTP) IsValid(now time.Time) bool {
	return now.Before(o.ExpiresAt)
}
