package accounts

import (
	"context"

	goerrors "github.com/goliatone/go-errors"
)

// Activate marks the account bearing key as verified and consumes the
// key. An unknown key and an already-verified account both produce
// CodeAccountNotFound so the response does not reveal which happened.
func (e *Engine) Activate(ctx context.Context, rc RequestContext, key string) (string, error) {
	account, err := e.store.GetOneByKey(ctx, KeyKindActivation, key)
	if err != nil {
		if IsAccountNotFound(err) {
			return CodeAccountNotFound, nil
		}
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "activation key lookup failed")
	}

	if account.UsernameVerified {
		return CodeAccountNotFound, nil
	}

	if !account.HasValidKey(KeyKindActivation, e.now()) {
		return CodeKeyExpired, nil
	}

	// the store performs the transition: verified flag up, key cleared,
	// in one write keyed on the current activation key
	if err := e.store.Activate(ctx, account); err != nil {
		e.logger.Error("activation store write failed for %s: %v", account.Username, err)
		return CodeActivationFailed, nil
	}

	e.record(ctx, ActivityEventActivated, account.Username, rc, nil)

	return CodeOK, nil
}

// ResendActivationForm requests a fresh activation link. Identifier may
// be the username or the email address.
type ResendActivationForm struct {
	Identifier   string `json:"identifier"`
	CaptchaToken string `json:"captcha_token"`
}

// ResendActivationLink issues a new activation key, invalidating any
// prior one. When no account matches, or the account is already
// verified, it still returns success so callers cannot probe for
// account existence. The bot gate runs before the lookup for the same
// reason: its outcome must not depend on whether the account exists.
func (e *Engine) ResendActivationLink(ctx context.Context, rc RequestContext, form *ResendActivationForm) (string, error) {
	if form == nil {
		return CodeFormMissing, nil
	}

	if code, err := e.gate(ActionRegister, rc, form.CaptchaToken)(ctx); code != CodeOK || err != nil {
		return code, err
	}

	account, err := e.findByIdentifier(ctx, form.Identifier)
	if err != nil {
		if IsAccountNotFound(err) {
			return CodeOK, nil
		}
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "account lookup failed")
	}

	if account.UsernameVerified {
		return CodeOK, nil
	}

	key, err := GenerateKey(e.keyLength)
	if err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to generate activation key")
	}
	account.SetKey(KeyKindActivation, key, e.now().Add(e.activationWindow))

	if err := e.store.ReinitiateActivation(ctx, account); err != nil {
		e.logger.Error("activation resend store write failed for %s: %v", account.Username, err)
		return CodeResendFailed, nil
	}

	e.record(ctx, ActivityEventActivationResent, account.Username, rc, nil)

	return CodeOK, nil
}

func (e *Engine) findByIdentifier(ctx context.Context, identifier string) (*Account, error) {
	account, err := e.store.GetOne(ctx, identifier)
	if err == nil {
		return account, nil
	}
	if !IsAccountNotFound(err) {
		return nil, err
	}
	return e.store.GetOneByEmailAddress(ctx, identifier)
}
