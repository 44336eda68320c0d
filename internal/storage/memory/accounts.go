package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hongminglow/marketplace-auth/internal/models"
	"github.com/hongminglow/marketplace-auth/internal/storage"
)

var _ storage.AccountStore = (*AccountStore)(nil)

// AccountStore keeps one role's accounts in memory. Records are copied on the
// way in and out so callers only observe changes after Save.
type AccountStore struct {
	role  models.Role
	mu    sync.RWMutex
	byID  map[string]models.Authenticatable
	order []string
}

// NewAccountStore returns an empty store for role.
func NewAccountStore(role models.Role) *AccountStore {
	return &AccountStore{role: role, byID: map[string]models.Authenticatable{}}
}

// FindByEmail fetches an account by email address.
func (s *AccountStore) FindByEmail(ctx context.Context, email string) (models.Authenticatable, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, id := range s.order {
		if acc := s.byID[id]; strings.EqualFold(acc.Base().Email, email) {
			return cloneAccount(acc), nil
		}
	}
	return nil, storage.ErrNotFound
}

// FindByEmailOrPhone fetches the first account matching either identifier.
func (s *AccountStore) FindByEmailOrPhone(ctx context.Context, email, phone string) (models.Authenticatable, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if acc := s.conflictLocked("", email, phone); acc != nil {
		return cloneAccount(acc), nil
	}
	return nil, storage.ErrNotFound
}

// FindByID fetches an account by id.
func (s *AccountStore) FindByID(ctx context.Context, id string) (models.Authenticatable, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	acc, ok := s.byID[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return cloneAccount(acc), nil
}

// Create inserts a new account, assigning an id when none was reserved.
func (s *AccountStore) Create(ctx context.Context, account models.Authenticatable) (models.Authenticatable, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insertLocked(account)
}

// Save replaces the stored copy of an existing account.
func (s *AccountStore) Save(ctx context.Context, account models.Authenticatable) error {
	if !ownsType(s.role, account) {
		return storage.ErrWrongAccountType
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	base := account.Base()
	if _, ok := s.byID[base.ID]; !ok {
		return storage.ErrNotFound
	}
	if s.conflictLocked(base.ID, base.Email, base.Phone) != nil {
		return storage.ErrAlreadyExists
	}
	s.byID[base.ID] = cloneAccount(account)
	return nil
}

func (s *AccountStore) insertLocked(account models.Authenticatable) (models.Authenticatable, error) {
	if !ownsType(s.role, account) {
		return nil, storage.ErrWrongAccountType
	}
	stored := cloneAccount(account)
	base := stored.Base()
	if s.conflictLocked("", base.Email, base.Phone) != nil {
		return nil, storage.ErrAlreadyExists
	}
	if base.ID == "" {
		base.ID = uuid.NewString()
	}
	if _, taken := s.byID[base.ID]; taken {
		return nil, storage.ErrAlreadyExists
	}
	if base.CreatedAt.IsZero() {
		base.CreatedAt = time.Now().UTC()
	}
	s.byID[base.ID] = stored
	s.order = append(s.order, base.ID)
	return cloneAccount(stored), nil
}

// conflictLocked returns an account other than skipID sharing email or phone.
func (s *AccountStore) conflictLocked(skipID, email, phone string) models.Authenticatable {
	for _, id := range s.order {
		if id == skipID {
			continue
		}
		base := s.byID[id].Base()
		if (email != "" && strings.EqualFold(base.Email, email)) || (phone != "" && base.Phone == phone) {
			return s.byID[id]
		}
	}
	return nil
}

func ownsType(role models.Role, account models.Authenticatable) bool {
	owner, ok := models.RoleOf(account)
	return ok && owner == role
}

func cloneAccount(account models.Authenticatable) models.Authenticatable {
	switch acc := account.(type) {
	case *models.Customer:
		out := *acc
		out.Account = cloneBase(acc.Account)
		return &out
	case *models.Vendor:
		out := *acc
		out.Account = cloneBase(acc.Account)
		if acc.Storefront != nil {
			sf := *acc.Storefront
			out.Storefront = &sf
		}
		return &out
	case *models.DeliveryAgent:
		out := *acc
		out.Account = cloneBase(acc.Account)
		return &out
	case *models.Admin:
		out := *acc
		out.Account = cloneBase(acc.Account)
		out.Permissions = append([]string(nil), acc.Permissions...)
		return &out
	}
	return account
}

func cloneBase(base models.Account) models.Account {
	if base.ResetPasswordOTP != nil {
		otp := *base.ResetPasswordOTP
		base.ResetPasswordOTP = &otp
	}
	if base.EmailVerificationOTP != nil {
		otp := *base.EmailVerificationOTP
		base.EmailVerificationOTP = &otp
	}
	if base.LastLoginAt != nil {
		at := *base.LastLoginAt
		base.LastLoginAt = &at
	}
	return base
}
