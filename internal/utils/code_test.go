package utils

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateOTPCode(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		code, err := GenerateOTPCode()
		require.NoError(t, err)
		require.Len(t, code, 6)
		for _, r := range code {
			require.True(t, r >= '0' && r <= '9', "code %q contains non-digit", code)
		}
		seen[code] = true
	}
	require.Greater(t, len(seen), 1, "expected some variety across generated codes")
}

func TestValidatePasswordErrors(t *testing.T) {
	require.NoError(t, ValidatePassword("Str0ng!pass"))
	require.ErrorIs(t, ValidatePassword("Sh0rt!"), ErrPasswordTooShort)
	require.ErrorIs(t, ValidatePassword("alllower1!"), ErrPasswordNoUpper)
	require.ErrorIs(t, ValidatePassword("ALLUPPER1!"), ErrPasswordNoLower)
	require.ErrorIs(t, ValidatePassword("NoDigits!!"), ErrPasswordNoDigit)
	require.ErrorIs(t, ValidatePassword("NoSpecial1"), ErrPasswordNoSpecial)
}
