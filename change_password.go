package accounts

import (
	"context"

	goerrors "github.com/goliatone/go-errors"
)

// ChangePasswordForm changes the password of an authenticated account.
// Username comes from the established session, not from user input.
type ChangePasswordForm struct {
	Username        string `json:"username"`
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
	CaptchaToken    string `json:"captcha_token"`
}

// ChangePassword replaces the stored hash after revalidating the
// current password and the new password pair in order.
func (e *Engine) ChangePassword(ctx context.Context, rc RequestContext, form *ChangePasswordForm) (string, error) {
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

	checks := []check{
		func(ctx context.Context) (string, error) {
			if !IsValidPassword(form.CurrentPassword) {
				return CodeInvalidCurrentPassword, nil
			}
			return CodeOK, nil
		},
		func(ctx context.Context) (string, error) {
			if ComparePasswordAndHash(form.CurrentPassword, account.PasswordHash) != nil {
				return CodeCurrentPasswordIncorrect, nil
			}
			return CodeOK, nil
		},
		func(ctx context.Context) (string, error) {
			if !IsValidPassword(form.NewPassword) {
				return CodeInvalidNewPassword, nil
			}
			return CodeOK, nil
		},
		func(ctx context.Context) (string, error) {
			// same value as the current password is a no-op, rejected
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
		e.gate(ActionChangePassword, rc, form.CaptchaToken),
	}

	if code, err := runChecks(ctx, checks); code != CodeOK || err != nil {
		return code, err
	}

	hash, err := HashPassword(form.NewPassword)
	if err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash new password")
	}
	account.PasswordHash = hash

	if err := e.store.ChangePassword(ctx, account); err != nil {
		e.logger.Error("password change store write failed for %s: %v", account.Username, err)
		return CodePasswordChangeFailed, nil
	}

	e.record(ctx, ActivityEventPasswordChanged, account.Username, rc, nil)

	return CodeOK, nil
}
