package service

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/hongminglow/marketplace-auth/internal/auth"
)

const (
	minPasswordLength = 8
	// bcrypt rejects longer inputs.
	maxPasswordBytes = 72
)

var (
	emailPattern = regexp.MustCompile(`^\S+@\S+\.\S+$`)
	pinPattern   = regexp.MustCompile(`^\d{4}$`)
	otpPattern   = regexp.MustCompile(fmt.Sprintf(`^\d{%d}$`, auth.OTPDigits))
)

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateEmail(email string) *Error {
	if email == "" {
		return validationError("email is required")
	}
	if !emailPattern.MatchString(email) {
		return validationError("email is invalid")
	}
	return nil
}

func validatePassword(password string) *Error {
	if len(strings.TrimSpace(password)) < minPasswordLength || !utf8.ValidString(password) {
		return validationError("password must be at least 8 characters")
	}
	if len(password) > maxPasswordBytes {
		return validationError("password must be at most 72 bytes")
	}
	return nil
}
