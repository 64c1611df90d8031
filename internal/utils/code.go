package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/rsawada/project-management-api/internal/constants"
)

// GenerateOTPCode returns a uniformly random numeric code of fixed width,
// leading zeros included ("000000" through "999999").
func GenerateOTPCode() (string, error) {
	max := big.NewInt(1)
	for i := 0; i < constants.OTPCodeLength; i++ {
		max.Mul(max, big.NewInt(10))
	}

	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", fmt.Errorf("failed to generate random code: %w", err)
	}

	return fmt.Sprintf("%0*d", constants.OTPCodeLength, n), nil
}
