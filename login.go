package accounts

import (
	"context"

	goerrors "github.com/goliatone/go-errors"
)

// LoginForm is the credential check request.
type LoginForm struct {
	Username     string `json:"username"`
	Password     string `json:"password"`
	CaptchaToken string `json:"captcha_token"`
}

// Login verifies the supplied credentials. It returns CodeOK when the
// caller may establish a session; session issuance itself lives in the
// web layer. Failed password comparisons are tracked against the
// account so repeated failures can trip the lockout threshold.
func (e *Engine) Login(ctx context.Context, rc RequestContext, form *LoginForm) (string, error) {
	if form == nil {
		return CodeFormMissing, nil
	}

	account, err := e.store.GetOne(ctx, form.Username)
	if err != nil {
		if IsAccountNotFound(err) {
			return CodeAccountNotFound, nil
		}
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "account lookup failed")
	}

	if !account.UsernameVerified {
		return CodeNotActivated, nil
	}

	if e.maxLoginAttempts > 0 && account.LoginAttempts >= e.maxLoginAttempts {
		if e.lockoutCooldown <= 0 || account.LoginAttemptAt == nil ||
			isWithinWindow(e.now(), *account.LoginAttemptAt, e.lockoutCooldown) {
			return CodeAccountLocked, nil
		}
	}

	if err := ComparePasswordAndHash(form.Password, account.PasswordHash); err != nil {
		if trackErr := e.store.TrackAttemptedLogin(ctx, account); trackErr != nil {
			e.logger.Error("failed to track login attempt for %s: %v", account.Username, trackErr)
		}
		e.record(ctx, ActivityEventLoginFailure, account.Username, rc, map[string]any{
			"reason": CodeIncorrectPassword,
		})
		return CodeIncorrectPassword, nil
	}

	if code, err := e.gate(ActionLogin, rc, form.CaptchaToken)(ctx); code != CodeOK || err != nil {
		return code, err
	}

	matched, err := e.store.Authenticate(ctx, account)
	if err != nil || matched == nil {
		if err != nil && !IsAccountNotFound(err) {
			return "", goerrors.Wrap(err, goerrors.CategoryInternal, "authenticate store call failed")
		}
		return CodeAuthenticationFailed, nil
	}

	if err := e.store.TrackSuccessfulLogin(ctx, matched); err != nil {
		e.logger.Error("failed to track successful login for %s: %v", matched.Username, err)
	}

	e.record(ctx, ActivityEventLoginSuccess, matched.Username, rc, nil)

	return CodeOK, nil
}
