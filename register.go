package accounts

import (
	"context"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

// RegisterForm is the registration request. CaptchaToken is the client's
// bot-protection challenge response.
type RegisterForm struct {
	Username        string `json:"username"`
	EmailAddress    string `json:"email_address"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	PhoneNumber     string `json:"phone_number"`
	PhoneNumberType string `json:"phone_number_type_cd"`
	LeadType        string `json:"lead_type_cd"`
	LeadTypeText    string `json:"lead_type_other"`
	ConsentToShare  bool   `json:"consent_to_share"`
	AcceptedTerms   bool   `json:"accepted_terms"`
	CaptchaToken    string `json:"captcha_token"`
}

// Register creates a new unverified account with a fresh activation key.
// Checks run in a fixed order and the first failure decides the code;
// the bot gate and the store write only happen once every field check
// passed.
func (e *Engine) Register(ctx context.Context, rc RequestContext, form *RegisterForm) (string, error) {
	if form == nil {
		return CodeFormMissing, nil
	}

	checks := []check{
		func(ctx context.Context) (string, error) {
			if !IsValidUsername(form.Username) {
				return CodeInvalidUsername, nil
			}
			return CodeOK, nil
		},
		func(ctx context.Context) (string, error) {
			return e.usernameAvailable(ctx, form.Username)
		},
		func(ctx context.Context) (string, error) {
			if !IsValidEmail(form.EmailAddress) {
				return CodeInvalidEmail, nil
			}
			return CodeOK, nil
		},
		func(ctx context.Context) (string, error) {
			return e.emailAvailable(ctx, form.EmailAddress)
		},
		func(ctx context.Context) (string, error) {
			if !IsValidPassword(form.Password) {
				return CodeInvalidPassword, nil
			}
			return CodeOK, nil
		},
		func(ctx context.Context) (string, error) {
			if !IsValidPassword(form.ConfirmPassword) {
				return CodeInvalidConfirmation, nil
			}
			return CodeOK, nil
		},
		func(ctx context.Context) (string, error) {
			if form.Password != form.ConfirmPassword {
				return CodePasswordMismatch, nil
			}
			return CodeOK, nil
		},
		func(ctx context.Context) (string, error) {
			if form.FirstName != "" && !IsValidNameWithSpecialCharacters(form.FirstName) {
				return CodeInvalidFirstName, nil
			}
			return CodeOK, nil
		},
		func(ctx context.Context) (string, error) {
			if form.LastName != "" && !IsValidNameWithSpecialCharacters(form.LastName) {
				return CodeInvalidLastName, nil
			}
			return CodeOK, nil
		},
		func(ctx context.Context) (string, error) {
			if !IsValidPhone(form.PhoneNumber) {
				return CodeInvalidPhone, nil
			}
			return CodeOK, nil
		},
		func(ctx context.Context) (string, error) {
			known, err := e.hasMetadataCode(ctx, e.metadata.PhoneNumberTypes, form.PhoneNumberType)
			if err != nil {
				return "", err
			}
			if !known {
				return CodeInvalidPhoneType, nil
			}
			return CodeOK, nil
		},
		func(ctx context.Context) (string, error) {
			known, err := e.hasMetadataCode(ctx, e.metadata.LeadTypes, form.LeadType)
			if err != nil {
				return "", err
			}
			if !known {
				return CodeInvalidLeadType, nil
			}
			if form.LeadType == LeadTypeOther && form.LeadTypeText == "" {
				return CodeInvalidLeadType, nil
			}
			return CodeOK, nil
		},
		func(ctx context.Context) (string, error) {
			if !form.ConsentToShare || !form.AcceptedTerms {
				return CodeConsentRequired, nil
			}
			return CodeOK, nil
		},
		e.gate(ActionRegister, rc, form.CaptchaToken),
	}

	if code, err := runChecks(ctx, checks); code != CodeOK || err != nil {
		return code, err
	}

	account, err := e.buildAccount(form)
	if err != nil {
		return "", err
	}

	if err := e.store.Register(ctx, account); err != nil {
		// Writes can still lose a uniqueness race to a concurrent
		// registration; the store is the authoritative guard.
		e.logger.Error("register store write failed for %s: %v", form.Username, err)
		return CodeRegistrationFailed, nil
	}

	e.record(ctx, ActivityEventRegistered, account.Username, rc, nil)

	return CodeOK, nil
}

func (e *Engine) usernameAvailable(ctx context.Context, username string) (string, error) {
	_, err := e.store.GetOne(ctx, username)
	if err == nil {
		return CodeDuplicateUsername, nil
	}
	if IsAccountNotFound(err) {
		return CodeOK, nil
	}
	return "", goerrors.Wrap(err, goerrors.CategoryInternal, "username lookup failed")
}

func (e *Engine) emailAvailable(ctx context.Context, email string) (string, error) {
	_, err := e.store.GetOneByEmailAddress(ctx, email)
	if err == nil {
		return CodeDuplicateEmail, nil
	}
	if IsAccountNotFound(err) {
		return CodeOK, nil
	}
	return "", goerrors.Wrap(err, goerrors.CategoryInternal, "email lookup failed")
}

func (e *Engine) buildAccount(form *RegisterForm) (*Account, error) {
	hash, err := HashPassword(form.Password)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
	}

	key, err := GenerateKey(e.keyLength)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to generate activation key")
	}

	account := &Account{
		Username:        form.Username,
		EmailAddress:    form.EmailAddress,
		PasswordHash:    hash,
		FirstName:       form.FirstName,
		LastName:        form.LastName,
		PhoneNumber:     form.PhoneNumber,
		PhoneNumberType: form.PhoneNumberType,
		LeadType:        form.LeadType,
		LeadTypeText:    form.LeadTypeText,
		ConsentToShare:  form.ConsentToShare,
		AcceptedTerms:   form.AcceptedTerms,
	}
	account.SetKey(KeyKindActivation, key, e.now().Add(e.activationWindow))

	if e.deterministicIDs {
		if id, err := hashid.NewUUID(form.EmailAddress); err == nil {
			account.ID = id
		}
	}
	if account.ID == uuid.Nil {
		account.ID = uuid.New()
	}

	return account, nil
}
