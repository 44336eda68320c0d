package service

import (
	"context"
	"errors"
	"strings"

	"github.com/hongminglow/marketplace-auth/internal/auth"
	"github.com/hongminglow/marketplace-auth/internal/mail"
	"github.com/hongminglow/marketplace-auth/internal/models"
	"github.com/hongminglow/marketplace-auth/internal/storage"
)

// Responses for the OTP flows. Request messages are identical whether or not
// the account exists.
const (
	MsgResetOTPSent        = "If this email exists, an OTP has been sent"
	MsgVerificationOTPSent = "If this email exists, a verification code has been sent"
	MsgPasswordReset       = "Password has been reset successfully"
	MsgEmailVerified       = "Email verified successfully"
)

// ForgotPassword issues a password reset OTP and emails it.
func (s *AuthService) ForgotPassword(ctx context.Context, roleTag, email string) (string, error) {
	return s.requestOTP(ctx, roleTag, email, models.PurposePasswordReset)
}

// SendVerificationOTP issues an email verification OTP unless the address is
// already verified.
func (s *AuthService) SendVerificationOTP(ctx context.Context, roleTag, email string) (string, error) {
	return s.requestOTP(ctx, roleTag, email, models.PurposeEmailVerification)
}

// ResetPassword consumes a reset OTP and replaces the password. No session is
// opened; the caller logs in afterwards.
func (s *AuthService) ResetPassword(ctx context.Context, roleTag, email, code, newPassword string) (string, error) {
	if _, _, rerr := s.otpRole(roleTag); rerr != nil {
		return "", rerr
	}
	if verr := validatePassword(newPassword); verr != nil {
		return "", verr
	}
	account, store, err := s.consumeOTP(ctx, roleTag, email, code, models.PurposePasswordReset)
	if err != nil {
		return "", err
	}

	passwordHash, herr := s.hasher.Hash(newPassword)
	if herr != nil {
		return "", unexpected("reset password hash", herr)
	}
	account.Base().PasswordHash = passwordHash
	if serr := store.Save(ctx, account); serr != nil {
		return "", unexpected("reset password save", serr)
	}
	return MsgPasswordReset, nil
}

// VerifyEmailOTP consumes a verification OTP and marks the email verified.
func (s *AuthService) VerifyEmailOTP(ctx context.Context, roleTag, email, code string) (string, error) {
	account, store, err := s.consumeOTP(ctx, roleTag, email, code, models.PurposeEmailVerification)
	if err != nil {
		return "", err
	}
	account.Base().IsEmailVerified = true
	if serr := store.Save(ctx, account); serr != nil {
		return "", unexpected("verify email save", serr)
	}
	return MsgEmailVerified, nil
}

func (s *AuthService) requestOTP(ctx context.Context, roleTag, email string, purpose models.OTPPurpose) (string, error) {
	role, store, rerr := s.otpRole(roleTag)
	if rerr != nil {
		return "", rerr
	}
	email = normalizeEmail(email)
	if verr := validateEmail(email); verr != nil {
		return "", verr
	}
	sent := MsgResetOTPSent
	if purpose == models.PurposeEmailVerification {
		sent = MsgVerificationOTPSent
	}
	if s.throttle != nil {
		if terr := throttled("otp throttle", s.throttle.AllowOTPRequest(ctx, string(purpose), role.String(), email)); terr != nil {
			return "", terr
		}
	}

	account, err := findActive(ctx, store, email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return sent, nil
		}
		return "", unexpected("otp request lookup "+role.String(), err)
	}
	base := account.Base()
	if purpose == models.PurposeEmailVerification && base.IsEmailVerified {
		return sent, nil
	}

	code, otp, err := s.otps.Issue()
	if err != nil {
		return "", unexpected("otp issue", err)
	}
	// Replacing the slot makes any earlier code for this purpose unusable.
	base.SetPendingOTP(purpose, otp)
	if err := store.Save(ctx, account); err != nil {
		return "", unexpected("otp request save "+role.String(), err)
	}

	if purpose == models.PurposeEmailVerification {
		s.mailer.Dispatch(mail.EmailVerification(base.Email, base.Name, code, s.otpTTL))
	} else {
		s.mailer.Dispatch(mail.PasswordReset(base.Email, base.Name, code, s.otpTTL))
	}
	return sent, nil
}

// consumeOTP verifies code against the pending OTP. On success the OTP is
// cleared on the returned account, which the caller must save. Expired and
// exhausted OTPs are cleared here.
func (s *AuthService) consumeOTP(ctx context.Context, roleTag, email, code string, purpose models.OTPPurpose) (models.Authenticatable, storage.AccountStore, error) {
	role, store, rerr := s.otpRole(roleTag)
	if rerr != nil {
		return nil, nil, rerr
	}
	email = normalizeEmail(email)
	code = strings.TrimSpace(code)
	if email == "" || code == "" {
		return nil, nil, validationError("email and otp are required")
	}
	if !otpPattern.MatchString(code) {
		return nil, nil, ErrInvalidOTP
	}

	account, err := findActive(ctx, store, email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil, ErrInvalidOTP
		}
		return nil, nil, unexpected("otp confirm lookup "+role.String(), err)
	}
	base := account.Base()
	pending := base.PendingOTP(purpose)

	switch s.otps.Verify(pending, code) {
	case auth.OTPValid:
		base.SetPendingOTP(purpose, nil)
		return account, store, nil
	case auth.OTPExpired:
		base.SetPendingOTP(purpose, nil)
	case auth.OTPMismatch:
		pending.Attempts++
		if pending.Attempts >= s.maxOTPAttempts {
			base.SetPendingOTP(purpose, nil)
		}
	default:
		return nil, nil, ErrInvalidOTP
	}
	if err := store.Save(ctx, account); err != nil {
		return nil, nil, unexpected("otp confirm save "+role.String(), err)
	}
	return nil, nil, ErrInvalidOTP
}

func (s *AuthService) otpRole(roleTag string) (models.Role, storage.AccountStore, *Error) {
	role, store, rerr := s.resolve(roleTag)
	if rerr != nil {
		return "", nil, rerr
	}
	if !role.SupportsOTPFlows() {
		return "", nil, ErrRoleNotSupported
	}
	return role, store, nil
}
