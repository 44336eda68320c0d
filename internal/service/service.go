package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/hongminglow/marketplace-auth/internal/auth"
	"github.com/hongminglow/marketplace-auth/internal/mail"
	"github.com/hongminglow/marketplace-auth/internal/models"
	"github.com/hongminglow/marketplace-auth/internal/ratelimit"
	"github.com/hongminglow/marketplace-auth/internal/storage"
)

// SyntheticAdminID is the subject of tokens issued by admin PIN login.
const SyntheticAdminID = "pin-admin"

const defaultMaxOTPAttempts = 5

// Mailer hands messages to the email channel without waiting for delivery.
type Mailer interface {
	Dispatch(msg mail.Message)
}

// Throttle limits repeated logins and OTP requests. A nil Throttle disables it.
type Throttle interface {
	CheckLogin(ctx context.Context, role, email string) error
	RecordLoginFailure(ctx context.Context, role, email string) error
	ResetLogin(ctx context.Context, role, email string) error
	AllowOTPRequest(ctx context.Context, purpose, role, email string) error
}

// Deps lists the collaborators of AuthService.
type Deps struct {
	Registry *storage.Registry
	Hasher   *auth.PasswordHasher
	OTPs     *auth.OTPManager
	Tokens   *auth.TokenManager
	Mailer   Mailer
	Throttle Throttle

	// AdminPIN enables admin PIN login when non-empty.
	AdminPIN       string
	OTPTTL         time.Duration
	MaxOTPAttempts int
}

// AuthService implements registration, login and the OTP flows for every role.
type AuthService struct {
	registry *storage.Registry
	hasher   *auth.PasswordHasher
	otps     *auth.OTPManager
	tokens   *auth.TokenManager
	mailer   Mailer
	throttle Throttle

	adminPIN       string
	otpTTL         time.Duration
	maxOTPAttempts int
	now            func() time.Time
}

// NewAuthService constructs the service.
func NewAuthService(deps Deps) *AuthService {
	maxAttempts := deps.MaxOTPAttempts
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxOTPAttempts
	}
	return &AuthService{
		registry:       deps.Registry,
		hasher:         deps.Hasher,
		otps:           deps.OTPs,
		tokens:         deps.Tokens,
		mailer:         deps.Mailer,
		throttle:       deps.Throttle,
		adminPIN:       deps.AdminPIN,
		otpTTL:         deps.OTPTTL,
		maxOTPAttempts: maxAttempts,
		now:            time.Now,
	}
}

// AuthResult is returned by every operation that opens a session.
type AuthResult struct {
	Token   string
	Profile models.Authenticatable
}

// SessionResult describes the account behind a valid token.
type SessionResult struct {
	Profile models.Authenticatable
	Role    models.Role
}

func (s *AuthService) resolve(roleTag string) (models.Role, storage.AccountStore, *Error) {
	role, ok := models.ParseRole(roleTag)
	if !ok {
		return "", nil, ErrInvalidRole
	}
	store, ok := s.registry.Resolve(role)
	if !ok {
		return "", nil, ErrInvalidRole
	}
	return role, store, nil
}

// findActive loads an account by email, treating inactive accounts as absent.
func findActive(ctx context.Context, store storage.AccountStore, email string) (models.Authenticatable, error) {
	account, err := store.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if !account.Base().IsActive {
		return nil, storage.ErrNotFound
	}
	return account, nil
}

func (s *AuthService) issue(op string, account models.Authenticatable) (AuthResult, error) {
	base := account.Base()
	token, err := s.tokens.Generate(base.ID, base.Role)
	if err != nil {
		return AuthResult{}, unexpected(op, err)
	}
	return AuthResult{Token: token, Profile: account}, nil
}

// throttled converts limiter results. Limiter outages are logged and ignored.
func throttled(op string, err error) *Error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ratelimit.ErrRateLimited):
		return ErrRateLimited
	default:
		log.Printf("%s: throttle unavailable, continuing: %v", op, err)
		return nil
	}
}
