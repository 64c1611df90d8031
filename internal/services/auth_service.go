package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rsawada/project-management-api/internal/constants"
	"github.com/rsawada/project-management-api/internal/mailer"
	"github.com/rsawada/project-management-api/internal/models"
	"github.com/rsawada/project-management-api/internal/repository"
	"github.com/rsawada/project-management-api/internal/token"
	"github.com/rsawada/project-management-api/internal/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrUsernameTaken        = errors.New("username already exists")
	ErrEmailTaken           = errors.New("email already exists")
	ErrInvalidCredentials   = errors.New("invalid username or password")
	ErrUserNotFound         = errors.New("user not found")
	ErrFailedToHashPassword = errors.New("failed to hash password")
	ErrFailedToCreateUser   = errors.New("failed to create user")

	ErrOTPNotFound       = errors.New("no OTP issued for user")
	ErrInvalidOTP        = errors.New("invalid OTP")
	ErrOTPExpired        = errors.New("OTP expired")
	ErrOTPDeliveryFailed = errors.New("failed to deliver OTP")
)

// AuthService implements the two-step login protocol. Neither step keeps any
// in-process state: Login is resolved from the users table and VerifyOTP from
// the otps table, correlated only by the user id passed between calls.
type AuthService struct {
	userRepo repository.UserRepository
	otpRepo  repository.OTPRepository
	sender   mailer.Sender
	issuer   *token.Issuer
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repository.UserRepository, otpRepo repository.OTPRepository, sender mailer.Sender, issuer *token.Issuer) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		otpRepo:  otpRepo,
		sender:   sender,
		issuer:   issuer,
	}
}

// RegisterInput represents the required information to create a new user.
type RegisterInput struct {
	Username    string
	Email       string
	Password    string
	PhoneNumber string
}

// Register creates a new user account.
func (s *AuthService) Register(input RegisterInput) (*models.User, error) {
	username := strings.TrimSpace(input.Username)
	if username == "" {
		return nil, errors.New("username is required")
	}
	email := strings.TrimSpace(input.Email)
	if email == "" {
		return nil, errors.New("email is required")
	}
	if err := utils.ValidatePassword(input.Password); err != nil {
		return nil, err
	}

	if _, err := s.userRepo.FindByUsername(username); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}

	if _, err := s.userRepo.FindByEmail(email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, ErrFailedToHashPassword
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PhoneNumber:  strings.TrimSpace(input.PhoneNumber),
		PasswordHash: string(hashedPassword),
	}

	if err := s.userRepo.Create(user); err != nil {
		return nil, ErrFailedToCreateUser
	}

	return user, nil
}

// LoginInput holds the credentials for the first login step.
type LoginInput struct {
	Username string
	Password string
}

// LoginResult is returned after a successful first step; no tokens yet.
type LoginResult struct {
	UserID  uint64
	Message string
}

// Login verifies credentials and, on success, issues a fresh OTP and sends
// it to the user's registered email. Earlier unexpired codes are not
// invalidated here, but only the newest row is ever checked by VerifyOTP, so
// concurrent logins leave exactly one verifiable code.
func (s *AuthService) Login(input LoginInput) (*LoginResult, error) {
	user, err := s.userRepo.FindByUsername(input.Username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	if err := s.issueOTP(user); err != nil {
		return nil, err
	}

	return &LoginResult{
		UserID:  user.ID,
		Message: "OTP sent to your registered email.",
	}, nil
}

// issueOTP persists a new code row and dispatches it. Issuance and dispatch
// form one failable unit: if the send fails the row is removed again so no
// code exists that was never delivered.
func (s *AuthService) issueOTP(user *models.User) error {
	code, err := utils.GenerateOTPCode()
	if err != nil {
		return fmt.Errorf("failed to generate OTP: %w", err)
	}

	now := time.Now()
	otp := &models.OTP{
		UserID:    user.ID,
		Code:      code,
		CreatedAt: now,
		ExpiresAt: now.Add(constants.OTPExpiryMinutes * time.Minute),
	}

	if err := s.otpRepo.Create(otp); err != nil {
		return fmt.Errorf("failed to persist OTP: %w", err)
	}

	if err := s.sender.SendOTP(user.Email, code); err != nil {
		// Best effort rollback; a leftover row is harmless since it can
		// never be delivered or verified ahead of a newer one.
		_ = s.otpRepo.Delete(otp.ID)
		return fmt.Errorf("%w: %v", ErrOTPDeliveryFailed, err)
	}

	return nil
}

// VerifyOTP is the second login step. Only the most recently issued code for
// the user is ever compared; earlier rows are dead even while unexpired.
// Verification does not consume the row, so a repeat call before expiry
// succeeds again and mints a fresh pair.
func (s *AuthService) VerifyOTP(userID uint64, code string) (*token.Pair, error) {
	otp, err := s.otpRepo.FindLatestByUserID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOTPNotFound
		}
		return nil, fmt.Errorf("failed to find OTP: %w", err)
	}

	if otp.Code != code {
		return nil, ErrInvalidOTP
	}

	if !otp.IsValid(time.Now()) {
		return nil, ErrOTPExpired
	}

	pair, err := s.issuer.IssuePair(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to issue tokens: %w", err)
	}

	return pair, nil
}

// Refresh exchanges a refresh token for a new token pair.
func (s *AuthService) Refresh(refreshToken string) (*token.Pair, error) {
	pair, err := s.issuer.Refresh(refreshToken)
	if err != nil {
		return nil, err
	}
	return pair, nil
}

// GetUser retrieves a user by ID.
func (s *AuthService) GetUser(id uint64) (*models.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return user, nil
}
