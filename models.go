package accounts

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// KeyKind selects which of the two security keys an operation targets.
type KeyKind = string

const (
	// KeyKindActivation proves control of the registered email address.
	KeyKindActivation KeyKind = "activation"
	// KeyKindPasswordReset authorizes a password change without the
	// current password.
	KeyKindPasswordReset KeyKind = "password_reset"
)

// LeadTypeOther is the lead-source code that requires free text.
const LeadTypeOther = "OTHER"

// Account is the registrant model
type Account struct {
	bun.BaseModel `bun:"table:accounts,alias:acc"`

	ID           uuid.UUID `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Username     string    `bun:"username,notnull,unique" json:"username,omitempty"`
	EmailAddress string    `bun:"email_address,notnull,unique" json:"email_address,omitempty"`
	PasswordHash string    `bun:"password_hash,notnull" json:"-"`

	UsernameVerified bool `bun:"username_verified" json:"username_verified,omitempty"`

	ActivationKey          string     `bun:"activation_key" json:"-"`
	ActivationKeyExpiry    *time.Time `bun:"activation_key_expiry,nullzero" json:"-"`
	PasswordResetKey       string     `bun:"password_reset_key" json:"-"`
	PasswordResetKeyExpiry *time.Time `bun:"password_reset_key_expiry,nullzero" json:"-"`

	FirstName       string `bun:"first_name" json:"first_name,omitempty"`
	LastName        string `bun:"last_name" json:"last_name,omitempty"`
	PhoneNumber     string `bun:"phone_number" json:"phone_number,omitempty"`
	PhoneNumberType string `bun:"phone_number_type_cd" json:"phone_number_type_cd,omitempty"`
	LeadType        string `bun:"lead_type_cd" json:"lead_type_cd,omitempty"`
	LeadTypeText    string `bun:"lead_type_other" json:"lead_type_other,omitempty"`
	ConsentToShare  bool   `bun:"consent_to_share" json:"consent_to_share,omitempty"`
	AcceptedTerms   bool   `bun:"accepted_terms" json:"accepted_terms,omitempty"`

	LoginAttempts  int        `bun:"login_attempts" json:"login_attempts,omitempty"`
	LoginAttemptAt *time.Time `bun:"login_attempt_at,nullzero" json:"login_attempt_at,omitempty"`
	LoggedInAt     *time.Time `bun:"loggedin_at,nullzero" json:"loggedin_at,omitempty"`

	CreatedAt *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt *time.Time `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

// Key returns the account's key of the given kind with its expiry.
func (a *Account) Key(kind KeyKind) (string, *time.Time) {
	if kind == KeyKindPasswordReset {
		return a.PasswordResetKey, a.PasswordResetKeyExpiry
	}
	return a.ActivationKey, a.ActivationKeyExpiry
}

// SetKey installs a key of the given kind, replacing any prior key of
// the same kind.
func (a *Account) SetKey(kind KeyKind, key string, expiry time.Time) {
	if kind == KeyKindPasswordReset {
		a.PasswordResetKey = key
		a.PasswordResetKeyExpiry = &expiry
		return
	}
	a.ActivationKey = key
	a.ActivationKeyExpiry = &expiry
}

// ClearKey drops a key of the given kind.
func (a *Account) ClearKey(kind KeyKind) {
	if kind == KeyKindPasswordReset {
		a.PasswordResetKey = ""
		a.PasswordResetKeyExpiry = nil
		return
	}
	a.ActivationKey = ""
	a.ActivationKeyExpiry = nil
}

// HasValidKey reports whether the account carries a key of the given
// kind that is still usable at instant now. An expiry exactly equal to
// now counts as expired.
func (a *Account) HasValidKey(kind KeyKind, now time.Time) bool {
	key, expiry := a.Key(kind)
	if key == "" || expiry == nil {
		return false
	}
	return expiry.After(now)
}
