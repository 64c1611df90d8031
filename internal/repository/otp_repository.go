package repository

import (
	"time"

	"github.com/rsawada/project-management-api/internal/models"
	"gorm.io/gorm"
)

// GormOTPRepository is a GORM implementation of OTPRepository
type GormOTPRepository struct {
	db *gorm.DB
}

// NewOTPRepository creates a new OTPRepository
func NewOTPRepository(db *gorm.DB) OTPRepository {
	return &GormOTPRepository{db: db}
}

// Create persists a new OTP row
func (r *GormOTPRepository) Create(otp *models.OTP) error {
	return r.db.Create(otp).Error
}

// FindLatestByUserID returns the most recently created OTP row for a user.
// created_at has second precision on some backends, so id breaks ties.
func (r *GormOTPRepository) FindLatestByUserID(userID uint64) (*models.OTP, error) {
	var otp models.OTP
	if err := r.db.
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		First(&otp).Error; err != nil {
		return nil, err
	}
	return &otp, nil
}

// Delete removes an OTP row by id
func (r *GormOTPRepository) Delete(id uint64) error {
	return r.db.Delete(&models.OTP{}, id).Error
}

// PurgeExpired hard-deletes rows that expired before the cutoff
func (r *GormOTPRepository) PurgeExpired(cutoff time.Time) (int64, error) {
	result := r.db.
		Where("expires_at < ?", cutoff).
		Delete(&models.OTP{})
	return result.RowsAffected, result.Error
}
