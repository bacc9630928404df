package accounts_test

import (
	"context"
	"testing"

	accounts "github.com/arunpune/whladmin2-sub003"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestRegisterFieldValidationOrder(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(form *accounts.RegisterForm)
		expected string
	}{
		{
			name:     "Invalid username",
			mutate:   func(f *accounts.RegisterForm) { f.Username = "abc" },
			expected: accounts.CodeInvalidUsername,
		},
		{
			name:     "Invalid email",
			mutate:   func(f *accounts.RegisterForm) { f.EmailAddress = "not-an-email" },
			expected: accounts.CodeInvalidEmail,
		},
		{
			name:     "Invalid password",
			mutate:   func(f *accounts.RegisterForm) { f.Password = "short" },
			expected: accounts.CodeInvalidPassword,
		},
		{
			name:     "Invalid confirmation",
			mutate:   func(f *accounts.RegisterForm) { f.ConfirmPassword = "short" },
			expected: accounts.CodeInvalidConfirmation,
		},
		{
			name: "Password mismatch",
			mutate: func(f *accounts.RegisterForm) {
				f.ConfirmPassword = "Other!23Other!23Ok"
			},
			expected: accounts.CodePasswordMismatch,
		},
		{
			name:     "Invalid first name",
			mutate:   func(f *accounts.RegisterForm) { f.FirstName = "Jam1e" },
			expected: accounts.CodeInvalidFirstName,
		},
		{
			name:     "Invalid last name",
			mutate:   func(f *accounts.RegisterForm) { f.LastName = "Smith_Roe" },
			expected: accounts.CodeInvalidLastName,
		},
		{
			name:     "Invalid phone",
			mutate:   func(f *accounts.RegisterForm) { f.PhoneNumber = "1234" },
			expected: accounts.CodeInvalidPhone,
		},
		{
			name:     "Unknown phone type",
			mutate:   func(f *accounts.RegisterForm) { f.PhoneNumberType = "PAGER" },
			expected: accounts.CodeInvalidPhoneType,
		},
		{
			name:     "Unknown lead type",
			mutate:   func(f *accounts.RegisterForm) { f.LeadType = "CARRIER_PIGEON" },
			expected: accounts.CodeInvalidLeadType,
		},
		{
			name: "Other lead without free text",
			mutate: func(f *accounts.RegisterForm) {
				f.LeadType = accounts.LeadTypeOther
				f.LeadTypeText = ""
			},
			expected: accounts.CodeInvalidLeadType,
		},
		{
			name:     "Consent not given",
			mutate:   func(f *accounts.RegisterForm) { f.ConsentToShare = false },
			expected: accounts.CodeConsentRequired,
		},
		{
			name:     "Terms not accepted",
			mutate:   func(f *accounts.RegisterForm) { f.AcceptedTerms = false },
			expected: accounts.CodeConsentRequired,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine, _, gateway := newTestEngine()

			form := validRegisterForm()
			tt.mutate(form)

			code, err := engine.Register(context.Background(), accounts.RequestContext{}, form)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, code)

			// field failures short-circuit before the bot gate runs
			assert.Zero(t, gateway.calls)
		})
	}
}

func TestRegisterMissingForm(t *testing.T) {
	engine, _, gateway := newTestEngine()

	code, err := engine.Register(context.Background(), accounts.RequestContext{}, nil)
	require.NoError(t, err)
	assert.Equal(t, accounts.CodeFormMissing, code)
	assert.Zero(t, gateway.calls)
}

func TestRegisterSuccess(t *testing.T) {
	engine, store, gateway := newTestEngine()
	ctx := context.Background()

	code, err := engine.Register(ctx, accounts.RequestContext{}, validRegisterForm())
	require.NoError(t, err)
	assert.Equal(t, accounts.CodeOK, code)
	assert.Equal(t, 1, gateway.calls)
	assert.Equal(t, accounts.ActionRegister, gateway.lastAction)

	account, err := store.GetOne(ctx, testUsername)
	require.NoError(t, err)

	assert.False(t, account.UsernameVerified)
	assert.Len(t, account.ActivationKey, accounts.DefaultKeyLength)
	require.NotNil(t, account.ActivationKeyExpiry)
	assert.NotEqual(t, testPassword, account.PasswordHash)
	assert.NoError(t, accounts.ComparePasswordAndHash(testPassword, account.PasswordHash))
}

func TestRegisterDuplicateUsername(t *testing.T) {
	engine, _, _ := newTestEngine()
	ctx := context.Background()

	code, err := engine.Register(ctx, accounts.RequestContext{}, validRegisterForm())
	require.NoError(t, err)
	require.Equal(t, accounts.CodeOK, code)

	form := validRegisterForm()
	form.EmailAddress = "someone.else@example.com"
	code, err = engine.Register(ctx, accounts.RequestContext{}, form)
	require.NoError(t, err)
	assert.Equal(t, accounts.CodeDuplicateUsername, code)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	engine, _, _ := newTestEngine()
	ctx := context.Background()

	code, err := engine.Register(ctx, accounts.RequestContext{}, validRegisterForm())
	require.NoError(t, err)
	require.Equal(t, accounts.CodeOK, code)

	form := validRegisterForm()
	form.Username = "someoneelse9"
	code, err = engine.Register(ctx, accounts.RequestContext{}, form)
	require.NoError(t, err)
	assert.Equal(t, accounts.CodeDuplicateEmail, code)
}

func TestRegisterGatewayCodeSurfacedVerbatim(t *testing.T) {
	store := accounts.NewInMemoryAccountStore()
	gateway := &stubGateway{
		result: &accounts.BotProtectionResult{
			Success:    false,
			ErrorCodes: []string{"timeout-or-duplicate"},
		},
	}
	engine := accounts.NewEngine(store, gateway, accounts.DefaultMetadata())

	code, err := engine.Register(context.Background(), accounts.RequestContext{}, validRegisterForm())
	require.NoError(t, err)
	assert.Equal(t, "timeout-or-duplicate", code)

	// nothing was written
	_, err = store.GetOne(context.Background(), testUsername)
	assert.True(t, accounts.IsAccountNotFound(err))
}

func TestRegisterStoreWriteFailure(t *testing.T) {
	store := new(MockAccountStore)
	store.On("GetOne", mock.Anything, testUsername).Return(nil, accounts.ErrAccountNotFound)
	store.On("GetOneByEmailAddress", mock.Anything, testEmail).Return(nil, accounts.ErrAccountNotFound)
	store.On("Register", mock.Anything, mock.Anything).Return(accounts.ErrDuplicateAccount)

	engine := accounts.NewEngine(store, &stubGateway{}, accounts.DefaultMetadata())

	code, err := engine.Register(context.Background(), accounts.RequestContext{}, validRegisterForm())
	require.NoError(t, err)
	assert.Equal(t, accounts.CodeRegistrationFailed, code)
	store.AssertExpectations(t)
}

func TestRegisterEmitsActivity(t *testing.T) {
	store := accounts.NewInMemoryAccountStore()
	sink := &capturingSink{}
	engine := accounts.NewEngine(store, &stubGateway{}, accounts.DefaultMetadata()).
		WithActivitySink(sink)

	code, err := engine.Register(context.Background(), accounts.RequestContext{RemoteIP: "203.0.113.9"}, validRegisterForm())
	require.NoError(t, err)
	require.Equal(t, accounts.CodeOK, code)

	require.Len(t, sink.events, 1)
	assert.Equal(t, accounts.ActivityEventRegistered, sink.events[0].EventType)
	assert.Equal(t, testUsername, sink.events[0].Username)
	assert.Equal(t, "203.0.113.9", sink.events[0].RemoteIP)
}
