package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"math/big"
	"time"

	"github.com/hongminglow/marketplace-auth/internal/models"
)

// OTPDigits is the length of every issued passcode.
const OTPDigits = 6

// OTPResult is the outcome of checking a supplied passcode.
type OTPResult int

const (
	OTPValid OTPResult = iota
	OTPExpired
	OTPMismatch
	OTPAbsent
)

func (r OTPResult) String() string {
	switch r {
	case OTPValid:
		return "valid"
	case OTPExpired:
		return "expired"
	case OTPMismatch:
		return "mismatch"
	default:
		return "absent"
	}
}

var otpSpace = big.NewInt(1_000_000)

// OTPManager issues and verifies single-use numeric passcodes.
type OTPManager struct {
	ttl time.Duration
	now func() time.Time
}

// NewOTPManager creates a manager whose codes expire after ttl.
func NewOTPManager(ttl time.Duration) *OTPManager {
	return &OTPManager{ttl: ttl, now: time.Now}
}

// Issue returns a fresh zero-padded code and the record to persist for it.
func (m *OTPManager) Issue() (string, *models.OTP, error) {
	n, err := rand.Int(rand.Reader, otpSpace)
	if err != nil {
		return "", nil, fmt.Errorf("generate otp: %w", err)
	}
	code := fmt.Sprintf("%0*d", OTPDigits, n.Int64())
	return code, &models.OTP{
		CodeHash:  digestOTP(code),
		ExpiresAt: m.now().Add(m.ttl),
	}, nil
}

// Verify checks code against the stored record. Expiry is judged before the
// code itself so that stale codes never report a match.
func (m *OTPManager) Verify(stored *models.OTP, code string) OTPResult {
	if stored == nil {
		return OTPAbsent
	}
	if m.now().After(stored.ExpiresAt) {
		return OTPExpired
	}
	if subtle.ConstantTimeCompare([]byte(stored.CodeHash), []byte(digestOTP(code))) != 1 {
		return OTPMismatch
	}
	return OTPValid
}

func digestOTP(code string) string {
	sum := sha256.Sum256([]byte(code))
	return hex.EncodeToString(sum[:])
}
