package accounts_test

import (
	"context"
	"time"

	accounts "github.com/arunpune/whladmin2-sub003"
	"github.com/stretchr/testify/mock"
)

// MockAccountStore implements accounts.AccountStore
type MockAccountStore struct {
	mock.Mock
}

func (m *MockAccountStore) GetOne(ctx context.Context, username string) (*accounts.Account, error) {
	args := m.Called(ctx, username)
	if acc := args.Get(0); acc != nil {
		return acc.(*accounts.Account), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAccountStore) GetOneByEmailAddress(ctx context.Context, email string) (*accounts.Account, error) {
	args := m.Called(ctx, email)
	if acc := args.Get(0); acc != nil {
		return acc.(*accounts.Account), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAccountStore) GetOneByKey(ctx context.Context, kind accounts.KeyKind, key string) (*accounts.Account, error) {
	args := m.Called(ctx, kind, key)
	if acc := args.Get(0); acc != nil {
		return acc.(*accounts.Account), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAccountStore) Register(ctx context.Context, account *accounts.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountStore) Activate(ctx context.Context, account *accounts.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountStore) Authenticate(ctx context.Context, account *accounts.Account) (*accounts.Account, error) {
	args := m.Called(ctx, account)
	if acc := args.Get(0); acc != nil {
		return acc.(*accounts.Account), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAccountStore) ChangePassword(ctx context.Context, account *accounts.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountStore) ReinitiateActivation(ctx context.Context, account *accounts.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountStore) InitiatePasswordResetRequest(ctx context.Context, account *accounts.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountStore) ExchangeKey(ctx context.Context, kind accounts.KeyKind, oldKey, newKey string, expiry time.Time) error {
	args := m.Called(ctx, kind, oldKey, newKey, expiry)
	return args.Error(0)
}

func (m *MockAccountStore) TrackAttemptedLogin(ctx context.Context, account *accounts.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountStore) TrackSuccessfulLogin(ctx context.Context, account *accounts.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

// stubGateway is an allow-by-default bot-protection gateway that records
// how it was called.
type stubGateway struct {
	result     *accounts.BotProtectionResult
	err        error
	calls      int
	lastAction string
	lastToken  string
}

func (g *stubGateway) Validate(ctx context.Context, action string, rc accounts.RequestContext, token string) (*accounts.BotProtectionResult, error) {
	g.calls++
	g.lastAction = action
	g.lastToken = token

	if g.err != nil {
		return nil, g.err
	}
	if g.result != nil {
		return g.result, nil
	}
	return &accounts.BotProtectionResult{Success: true, Score: 0.9}, nil
}

// capturingSink collects activity events for assertions.
type capturingSink struct {
	events []accounts.ActivityEvent
}

func (c *capturingSink) Record(ctx context.Context, event accounts.ActivityEvent) error {
	c.events = append(c.events, event)
	return nil
}

const (
	testUsername = "applicant42x"
	testEmail    = "applicant@example.com"
	testPassword = "Abc!23Abc!23Abc!23"
)

func validRegisterForm() *accounts.RegisterForm {
	return &accounts.RegisterForm{
		Username:        testUsername,
		EmailAddress:    testEmail,
		Password:        testPassword,
		ConfirmPassword: testPassword,
		FirstName:       "Jamie",
		LastName:        "Smith-Roe",
		PhoneNumber:     "9145550100",
		PhoneNumberType: "CELL",
		LeadType:        "WEBSITE",
		ConsentToShare:  true,
		AcceptedTerms:   true,
		CaptchaToken:    "token-ok",
	}
}

// newTestEngine wires an engine over the in-memory store with an
// allow-all gateway and the stock metadata.
func newTestEngine() (*accounts.Engine, *accounts.InMemoryAccountStore, *stubGateway) {
	store := accounts.NewInMemoryAccountStore()
	gateway := &stubGateway{}
	engine := accounts.NewEngine(store, gateway, accounts.DefaultMetadata())
	return engine, store, gateway
}

// registeredAccount registers (and optionally activates) the stock test
// account, returning the issued activation key.
func registeredAccount(ctx context.Context, engine *accounts.Engine, store *accounts.InMemoryAccountStore, activate bool) (*accounts.Account, string, error) {
	code, err := engine.Register(ctx, accounts.RequestContext{}, validRegisterForm())
	if err != nil {
		return nil, code, err
	}
	if code != accounts.CodeOK {
		return nil, code, nil
	}

	account, err := store.GetOne(ctx, testUsername)
	if err != nil {
		return nil, "", err
	}
	key := account.ActivationKey

	if activate {
		code, err = engine.Activate(ctx, accounts.RequestContext{}, key)
		if err != nil || code != accounts.CodeOK {
			return nil, code, err
		}
		account, err = store.GetOne(ctx, testUsername)
		if err != nil {
			return nil, "", err
		}
	}

	return account, key, nil
}
