package accounts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Error(format string, args ...any)
}

// RequestContext carries client attributes that accompany every
// operation. It replaces the ambient session context of the web layer:
// callers pass it explicitly.
type RequestContext struct {
	RemoteIP  string
	UserAgent string
}

// ErrAccountNotFound is returned by AccountStore lookups when no account
// matches. Store implementations must return it (or wrap it) so the
// engine can tell absence apart from infrastructure failure.
var ErrAccountNotFound = errors.New("account not found")

// ErrDuplicateAccount is returned by AccountStore.Register when the
// username or email address is already taken at write time.
var ErrDuplicateAccount = errors.New("account already exists")

// AccountStore is the persistence contract the engine mutates through.
// Implementations must enforce username/email uniqueness at write time
// (the engine's read-side duplicate checks only close the common case)
// and must make each mutating call all-or-nothing.
type AccountStore interface {
	GetOne(ctx context.Context, username string) (*Account, error)
	GetOneByEmailAddress(ctx context.Context, email string) (*Account, error)
	GetOneByKey(ctx context.Context, kind KeyKind, key string) (*Account, error)

	Register(ctx context.Context, account *Account) error
	Activate(ctx context.Context, account *Account) error
	Authenticate(ctx context.Context, account *Account) (*Account, error)
	ChangePassword(ctx context.Context, account *Account) error
	ReinitiateActivation(ctx context.Context, account *Account) error
	InitiatePasswordResetRequest(ctx context.Context, account *Account) error

	// ExchangeKey atomically consumes oldKey and installs newKey with the
	// given expiry for the same account. It must fail when oldKey is no
	// longer the account's current key of that kind.
	ExchangeKey(ctx context.Context, kind KeyKind, oldKey, newKey string, expiry time.Time) error

	TrackAttemptedLogin(ctx context.Context, account *Account) error
	TrackSuccessfulLogin(ctx context.Context, account *Account) error
}

// BotProtectionResult is the provider verdict for one challenge token.
type BotProtectionResult struct {
	Success    bool
	Score      float64
	ErrorCodes []string
}

// BotProtectionGateway verifies a client challenge token against the
// action it was minted for.
type BotProtectionGateway interface {
	Validate(ctx context.Context, action string, rc RequestContext, token string) (*BotProtectionResult, error)
}

// MetadataProvider supplies the enumerated code sets used by field
// validation. Implementations are read-only and expected to cache.
type MetadataProvider interface {
	PhoneNumberTypes(ctx context.Context) ([]string, error)
	LeadTypes(ctx context.Context) ([]string, error)
}

// IsAccountNotFound reports whether err means the store had no matching
// record.
func IsAccountNotFound(err error) bool {
	return errors.Is(err, ErrAccountNotFound)
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] ACCOUNTS "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] ACCOUNTS "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] ACCOUNTS "+newline(format), args...)
}

func newline(format string) string {
	if strings.HasSuffix(format, "\n") {
		return format
	}
	return format + "\n"
}
