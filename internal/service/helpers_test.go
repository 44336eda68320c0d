package service

import (
	"context"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/hongminglow/marketplace-auth/internal/auth"
	"github.com/hongminglow/marketplace-auth/internal/mail"
	"github.com/hongminglow/marketplace-auth/internal/models"
	"github.com/hongminglow/marketplace-auth/internal/models/dto"
	"github.com/hongminglow/marketplace-auth/internal/storage/memory"
)

const testPassword = "correct-horse"

var codePattern = regexp.MustCompile(`\b\d{6}\b`)

type captureMailer struct {
	mu   sync.Mutex
	msgs []mail.Message
}

func (m *captureMailer) Dispatch(msg mail.Message) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.msgs = append(m.msgs, msg)
}

func (m *captureMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.msgs)
}

func (m *captureMailer) lastCode(t *testing.T) string {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	require.NotEmpty(t, m.msgs, "no mail was dispatched")
	code := codePattern.FindString(m.msgs[len(m.msgs)-1].Body)
	require.NotEmpty(t, code, "mail body carries no code")
	return code
}

type fixture struct {
	svc    *AuthService
	stores *memory.Stores
	mailer *captureMailer
}

func newFixture(t *testing.T, opts ...func(*Deps)) *fixture {
	t.Helper()
	hasher, err := auth.NewPasswordHasher(bcrypt.MinCost)
	require.NoError(t, err)

	stores := memory.NewStores()
	mailer := &captureMailer{}
	deps := Deps{
		Registry: stores.Registry(),
		Hasher:   hasher,
		OTPs:     auth.NewOTPManager(10 * time.Minute),
		Tokens:   auth.NewTokenManager("test-secret", "marketplace-auth-test", 7*24*time.Hour),
		Mailer:   mailer,
		OTPTTL:   10 * time.Minute,
	}
	for _, opt := range opts {
		opt(&deps)
	}
	return &fixture{svc: NewAuthService(deps), stores: stores, mailer: mailer}
}

func withAdminPIN(pin string) func(*Deps) {
	return func(d *Deps) { d.AdminPIN = pin }
}

func customerRequest(email, phone string) dto.RegisterRequest {
	return dto.RegisterRequest{Role: "customer", Name: "Ada", Email: email, Phone: phone, Password: testPassword}
}

func vendorRequest(email, phone, pin string) dto.RegisterRequest {
	return dto.RegisterRequest{
		Role:              "vendor",
		Name:              "Vee",
		Email:             email,
		Phone:             phone,
		Password:          testPassword,
		PIN:               pin,
		StorefrontName:    "Vee's Noodles",
		StorefrontAddress: "1 Market St",
	}
}

func (f *fixture) register(t *testing.T, req dto.RegisterRequest) AuthResult {
	t.Helper()
	res, err := f.svc.Register(context.Background(), req)
	require.NoError(t, err)
	return res
}

// update loads the account by email, applies fn and saves it back.
func (f *fixture) update(t *testing.T, role models.Role, email string, fn func(*models.Account)) {
	t.Helper()
	store, ok := f.stores.Registry().Resolve(role)
	require.True(t, ok)
	acc, err := store.FindByEmail(context.Background(), email)
	require.NoError(t, err)
	fn(acc.Base())
	require.NoError(t, store.Save(context.Background(), acc))
}

func (f *fixture) load(t *testing.T, role models.Role, email string) *models.Account {
	t.Helper()
	store, ok := f.stores.Registry().Resolve(role)
	require.True(t, ok)
	acc, err := store.FindByEmail(context.Background(), email)
	require.NoError(t, err)
	return acc.Base()
}
