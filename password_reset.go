package accounts

import (
	"context"

	goerrors "github.com/goliatone/go-errors"
)

// RequestPasswordResetForm asks for a reset link. Identifier may be the
// username or the email address.
type RequestPasswordResetForm struct {
	Identifier   string `json:"identifier"`
	CaptchaToken string `json:"captcha_token"`
}

// RequestPasswordReset issues a password-reset key, replacing any prior
// one. An unknown identifier still returns success so callers cannot
// probe for account existence; the bot gate runs before the lookup so
// its outcome is independent of the account existing.
func (e *Engine) RequestPasswordReset(ctx context.Context, rc RequestContext, form *RequestPasswordResetForm) (string, error) {
	if form == nil {
		return CodeFormMissing, nil
	}

	if code, err := e.gate(ActionPasswordReset, rc, form.CaptchaToken)(ctx); code != CodeOK || err != nil {
		return code, err
	}

	account, err := e.findByIdentifier(ctx, form.Identifier)
	if err != nil {
		if IsAccountNotFound(err) {
			return CodeOK, nil
		}
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "account lookup failed")
	}

	key, err := GenerateKey(e.keyLength)
	if err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to generate reset key")
	}
	account.SetKey(KeyKindPasswordReset, key, e.now().Add(e.resetWindow))

	if err := e.store.InitiatePasswordResetRequest(ctx, account); err != nil {
		e.logger.Error("reset request store write failed for %s: %v", account.Username, err)
		return CodeResetRequestFailed, nil
	}

	e.record(ctx, ActivityEventPasswordResetRequest, account.Username, rc, nil)

	return CodeOK, nil
}

// GetForPasswordResetRequest resolves a reset link's key to its account
// and performs the one-time key exchange: the inbound key is consumed
// and a fresh short-lived key, bound to the reset session, takes its
// place. The emailed link therefore stops working the moment the reset
// form is first presented.
func (e *Engine) GetForPasswordResetRequest(ctx context.Context, rc RequestContext, key string) (*Account, string, error) {
	account, err := e.store.GetOneByKey(ctx, KeyKindPasswordReset, key)
	if err != nil {
		if IsAccountNotFound(err) {
			return nil, CodeAccountNotFound, nil
		}
		return nil, "", goerrors.Wrap(err, goerrors.CategoryInternal, "reset key lookup failed")
	}

	if !account.HasValidKey(KeyKindPasswordReset, e.now()) {
		return nil, CodeKeyExpired, nil
	}

	sessionKey, err := GenerateKey(e.keyLength)
	if err != nil {
		return nil, "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to generate session key")
	}
	expiry := e.now().Add(e.exchangeWindow)

	if err := e.store.ExchangeKey(ctx, KeyKindPasswordReset, key, sessionKey, expiry); err != nil {
		if IsAccountNotFound(err) {
			// the key was consumed concurrently; treat like any spent key
			return nil, CodeKeyExpired, nil
		}
		e.logger.Error("reset key exchange failed for %s: %v", account.Username, err)
		return nil, CodeResetRequestFailed, nil
	}

	account.SetKey(KeyKindPasswordReset, sessionKey, expiry)

	return account, CodeOK, nil
}

// ResetPasswordForm sets a new password using a valid reset-session
// key in place of the current password.
type ResetPasswordForm struct {
	Key             string `json:"key"`
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
	CaptchaToken    string `json:"captcha_token"`
}

// ResetPassword replaces the stored hash for the account bearing the
// reset key. A key that is unknown, spent, or past its expiry fails
// with CodeKeyExpired; a spent key and an expired key are
// indistinguishable on purpose.
func (e *Engine) ResetPassword(ctx context.Context, rc RequestContext, form *ResetPasswordForm) (string, error) {
	if form == nil {
		return CodeFormMissing, nil
	}

	account, err := e.store.GetOneByKey(ctx, KeyKindPasswordReset, form.Key)
	if err != nil {
		if IsAccountNotFound(err) {
			return CodeKeyExpired, nil
		}
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "reset key lookup failed")
	}

	if !account.HasValidKey(KeyKindPasswordReset, e.now()) {
		return CodeKeyExpired, nil
	}

	checks := []check{
		func(ctx context.Context) (string, error) {
			if !IsValidPassword(form.NewPassword) {
				return CodeInvalidNewPassword, nil
			}
			return CodeOK, nil
		},
		func(ctx context.Context) (string, error) {
			if ComparePasswordAndHash(form.NewPassword, account.PasswordHash) == nil {
				return CodePasswordUnchanged, nil
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
			if form.NewPassword != form.ConfirmPassword {
				return CodePasswordMismatch, nil
			}
			return CodeOK, nil
		},
		e.gate(ActionPasswordReset, rc, form.CaptchaToken),
	}

	if code, err := runChecks(ctx, checks); code != CodeOK || err != nil {
		return code, err
	}

	hash, err := HashPassword(form.NewPassword)
	if err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash new password")
	}
	account.PasswordHash = hash
	account.ClearKey(KeyKindPasswordReset)

	if err := e.store.ChangePassword(ctx, account); err != nil {
		e.logger.Error("password reset store write failed for %s: %v", account.Username, err)
		return CodePasswordResetFailed, nil
	}

	e.record(ctx, ActivityEventPasswordReset, account.Username, rc, nil)

	return CodeOK, nil
}
