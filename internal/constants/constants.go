package constants

// ContextKeyUser is the gin context key under which RequireAuth stores the
// acting user for handlers.
const ContextKeyUser = "current_user"

// Password policy.
const MinPasswordLength = 8

// OTP policy.
const (
	OTPCodeLength    = 6
	OTPExpiryMinutes = 5
)

// Pagination bounds.
const (
	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)
