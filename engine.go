package accounts

import (
	"context"
	"slices"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

// Bot-protection action names, one per sensitive operation.
const (
	ActionRegister       = "register"
	ActionLogin          = "login"
	ActionChangePassword = "change_password"
	ActionPasswordReset  = "password_reset"
)

// Engine orchestrates the account lifecycle workflows over an
// AccountStore, a BotProtectionGateway, and a MetadataProvider. It is
// stateless and safe for concurrent use across distinct accounts.
type Engine struct {
	store    AccountStore
	gateway  BotProtectionGateway
	metadata MetadataProvider
	logger   Logger
	activity ActivitySink
	now      func() time.Time

	keyLength        int
	activationWindow time.Duration
	resetWindow      time.Duration
	exchangeWindow   time.Duration

	// maxLoginAttempts locks the account out ahead of the password
	// comparison once reached; zero disables the check.
	maxLoginAttempts int

	// lockoutCooldown lets a lockout lapse once the last failed attempt
	// is older than the window; zero keeps lockouts until a successful
	// login clears the counters.
	lockoutCooldown time.Duration

	deterministicIDs bool
}

// NewEngine returns an Engine with default policy values.
func NewEngine(store AccountStore, gateway BotProtectionGateway, metadata MetadataProvider) *Engine {
	return &Engine{
		store:            store,
		gateway:          gateway,
		metadata:         metadata,
		logger:           defLogger{},
		activity:         noopActivitySink{},
		now:              time.Now,
		keyLength:        DefaultKeyLength,
		activationWindow: DefaultActivationWindow,
		resetWindow:      DefaultResetWindow,
		exchangeWindow:   DefaultExchangeWindow,
	}
}

// WithLogger overrides the logger used by the engine.
func (e *Engine) WithLogger(logger Logger) *Engine {
	if logger != nil {
		e.logger = logger
	}
	return e
}

// WithActivitySink sets the sink used to emit audit events.
func (e *Engine) WithActivitySink(sink ActivitySink) *Engine {
	e.activity = normalizeActivitySink(sink)
	return e
}

// WithClock overrides the engine's time source.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	if now != nil {
		e.now = now
	}
	return e
}

// WithKeyLength sets the issued key length; it is clamped by
// GenerateKey.
func (e *Engine) WithKeyLength(length int) *Engine {
	e.keyLength = length
	return e
}

// WithActivationWindow sets how long activation keys stay valid.
func (e *Engine) WithActivationWindow(window time.Duration) *Engine {
	if window > 0 {
		e.activationWindow = window
	}
	return e
}

// WithResetWindow sets how long password-reset keys stay valid.
func (e *Engine) WithResetWindow(window time.Duration) *Engine {
	if window > 0 {
		e.resetWindow = window
	}
	return e
}

// WithExchangeWindow sets the validity of the short-lived key issued
// when a reset link is exchanged for a reset session.
func (e *Engine) WithExchangeWindow(window time.Duration) *Engine {
	if window > 0 {
		e.exchangeWindow = window
	}
	return e
}

// WithMaxLoginAttempts enables lockout once an account accumulates the
// given number of failed logins without a success in between.
func (e *Engine) WithMaxLoginAttempts(max int) *Engine {
	e.maxLoginAttempts = max
	return e
}

// WithLockoutCooldown sets how long a lockout holds after the last
// failed attempt.
func (e *Engine) WithLockoutCooldown(window time.Duration) *Engine {
	if window > 0 {
		e.lockoutCooldown = window
	}
	return e
}

// WithDeterministicIDs derives new account IDs from the email address
// instead of generating random ones.
func (e *Engine) WithDeterministicIDs(enabled bool) *Engine {
	e.deterministicIDs = enabled
	return e
}

// check is one step of an operation's validation pipeline. A non-empty
// code fails the operation with that code; a non-nil error aborts it.
type check func(ctx context.Context) (string, error)

// runChecks evaluates checks in order and stops at the first failure.
// The ordering of the slice is the operation's contract: later checks
// may assume everything before them passed, and side-effecting checks
// (store reads, the bot gate) never run after a failure.
func runChecks(ctx context.Context, checks []check) (string, error) {
	for _, c := range checks {
		code, err := c(ctx)
		if err != nil {
			return "", err
		}
		if code != CodeOK {
			return code, nil
		}
	}
	return CodeOK, nil
}

// gate runs the bot-protection check for an action. Provider error
// codes pass through verbatim so the UI can show provider-specific
// guidance.
func (e *Engine) gate(action string, rc RequestContext, token string) check {
	return func(ctx context.Context) (string, error) {
		result, err := e.gateway.Validate(ctx, action, rc, token)
		if err != nil {
			return "", goerrors.Wrap(err, goerrors.CategoryExternal, "bot protection gateway call failed").
				WithMetadata(map[string]any{"action": action})
		}
		if result == nil || !result.Success {
			if result != nil && len(result.ErrorCodes) > 0 {
				return result.ErrorCodes[0], nil
			}
			return CodeBotCheckFailed, nil
		}
		return CodeOK, nil
	}
}

func (e *Engine) hasMetadataCode(ctx context.Context, codes func(context.Context) ([]string, error), code string) (bool, error) {
	known, err := codes(ctx)
	if err != nil {
		return false, goerrors.Wrap(err, goerrors.CategoryInternal, "metadata provider lookup failed")
	}
	return slices.Contains(known, code), nil
}

func (e *Engine) record(ctx context.Context, eventType ActivityEventType, username string, rc RequestContext, metadata map[string]any) {
	event := ActivityEvent{
		EventType:  eventType,
		Username:   username,
		RemoteIP:   rc.RemoteIP,
		Metadata:   metadata,
		OccurredAt: e.now(),
	}
	if err := e.activity.Record(ctx, event); err != nil {
		e.logger.Error("activity sink error for %s: %v", string(eventType), err)
	}
}
