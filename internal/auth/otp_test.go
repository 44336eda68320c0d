package auth

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sixDigits = regexp.MustCompile(`^\d{6}$`)

func TestOTPIssue(t *testing.T) {
	issuedAt := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	otps := NewOTPManager(10 * time.Minute)
	otps.now = func() time.Time { return issuedAt }

	code, record, err := otps.Issue()
	require.NoError(t, err)
	assert.Regexp(t, sixDigits, code)
	assert.Equal(t, issuedAt.Add(10*time.Minute), record.ExpiresAt)
	assert.NotContains(t, record.CodeHash, code)
	assert.Zero(t, record.Attempts)
}

func TestOTPIssueVaries(t *testing.T) {
	otps := NewOTPManager(10 * time.Minute)
	seen := map[string]struct{}{}
	for i := 0; i < 50; i++ {
		code, _, err := otps.Issue()
		require.NoError(t, err)
		seen[code] = struct{}{}
	}
	assert.Greater(t, len(seen), 1)
}

func TestOTPVerify(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	otps := NewOTPManager(10 * time.Minute)
	otps.now = func() time.Time { return now }

	code, record, err := otps.Issue()
	require.NoError(t, err)

	wrong := "000000"
	if code == wrong {
		wrong = "111111"
	}

	assert.Equal(t, OTPAbsent, otps.Verify(nil, code))
	assert.Equal(t, OTPMismatch, otps.Verify(record, wrong))
	assert.Equal(t, OTPValid, otps.Verify(record, code))

	now = now.Add(10 * time.Minute)
	assert.Equal(t, OTPValid, otps.Verify(record, code), "boundary is inclusive")

	now = now.Add(time.Second)
	assert.Equal(t, OTPExpired, otps.Verify(record, code))
	assert.Equal(t, OTPExpired, otps.Verify(record, wrong))
}
