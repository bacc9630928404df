package accounts

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

var activateAccountSQL = `UPDATE "accounts" AS "acc"
SET
	"username_verified" = TRUE,
	"activation_key" = '',
	"activation_key_expiry" = NULL,
	"updated_at" = CURRENT_TIMESTAMP
WHERE
	"acc"."deleted_at" IS NULL
AND "acc"."id" = ?
AND "acc"."username_verified" = FALSE
AND "acc"."activation_key" = ?
RETURNING *;`

var changePasswordSQL = `UPDATE "accounts" AS "acc"
SET
	"password_hash" = ?,
	"password_reset_key" = '',
	"password_reset_key_expiry" = NULL,
	"updated_at" = CURRENT_TIMESTAMP
WHERE
	"acc"."deleted_at" IS NULL
AND "acc"."id" = ?
RETURNING *;`

// Accounts is the bun-backed account repository. It layers the
// AccountStore contract on top of the generic repository so callers
// that need criteria-based access still have it.
type Accounts interface {
	repository.Repository[*Account]
	AccountStore
}

type accountsRepo struct {
	repository.Repository[*Account]
	db *bun.DB
}

var (
	_ Accounts     = (*accountsRepo)(nil)
	_ AccountStore = (*accountsRepo)(nil)
)

// NewAccountsRepository builds the production AccountStore over a bun
// database handle.
func NewAccountsRepository(db *bun.DB) Accounts {
	repo := repository.NewRepository[*Account](db, repository.ModelHandlers[*Account]{
		NewRecord: func() *Account { return &Account{} },
		GetID: func(a *Account) uuid.UUID {
			if a == nil {
				return uuid.Nil
			}
			return a.ID
		},
		SetID: func(a *Account, id uuid.UUID) {
			if a != nil {
				a.ID = id
			}
		},
		GetIdentifier: func() string {
			return "username"
		},
	})

	return &accountsRepo{
		Repository: repo,
		db:         db,
	}
}

func keyColumns(kind KeyKind) (keyCol, expiryCol string) {
	if kind == KeyKindPasswordReset {
		return "password_reset_key", "password_reset_key_expiry"
	}
	return "activation_key", "activation_key_expiry"
}

func (r *accountsRepo) GetOne(ctx context.Context, username string) (*Account, error) {
	return r.getWhere(ctx, "?TableAlias.username = ?", strings.TrimSpace(username))
}

func (r *accountsRepo) GetOneByEmailAddress(ctx context.Context, email string) (*Account, error) {
	// the alias placeholder has to sit inside LOWER(), not in front of it
	return r.getWhere(ctx, "LOWER(?TableAlias.email_address) = LOWER(?)", strings.TrimSpace(email))
}

func (r *accountsRepo) GetOneByKey(ctx context.Context, kind KeyKind, key string) (*Account, error) {
	if key == "" {
		return nil, ErrAccountNotFound
	}
	keyCol, _ := keyColumns(kind)
	return r.getWhere(ctx, fmt.Sprintf("?TableAlias.%s = ?", keyCol), key)
}

func (r *accountsRepo) getWhere(ctx context.Context, where string, arg any) (*Account, error) {
	record := &Account{}
	err := r.db.NewSelect().
		Model(record).
		Where(where, arg).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return record, nil
}

func (r *accountsRepo) Register(ctx context.Context, account *Account) error {
	// The unique indexes on username and email_address are the
	// authoritative guard; a race lost here surfaces as a constraint
	// violation.
	_, err := r.Repository.CreateTx(ctx, r.db, account)
	return err
}

func (r *accountsRepo) Activate(ctx context.Context, account *Account) error {
	res, err := r.Repository.RawTx(ctx, r.db, activateAccountSQL, account.ID.String(), account.ActivationKey)
	if err != nil {
		return err
	}
	if len(res) == 0 {
		return ErrAccountNotFound
	}
	return nil
}

func (r *accountsRepo) Authenticate(ctx context.Context, account *Account) (*Account, error) {
	record := &Account{}
	err := r.db.NewSelect().
		Model(record).
		Where("?TableAlias.username = ?", account.Username).
		Where("?TableAlias.password_hash = ?", account.PasswordHash).
		Where("?TableAlias.username_verified = TRUE").
		Limit(1).
		Scan(ctx)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return record, nil
}

func (r *accountsRepo) ChangePassword(ctx context.Context, account *Account) error {
	res, err := r.Repository.RawTx(ctx, r.db, changePasswordSQL, account.PasswordHash, account.ID.String())
	if err != nil {
		return err
	}
	if len(res) == 0 {
		return ErrAccountNotFound
	}
	return nil
}

func (r *accountsRepo) ReinitiateActivation(ctx context.Context, account *Account) error {
	return r.overwriteKey(ctx, account, KeyKindActivation, "AND \"acc\".\"username_verified\" = FALSE")
}

func (r *accountsRepo) InitiatePasswordResetRequest(ctx context.Context, account *Account) error {
	return r.overwriteKey(ctx, account, KeyKindPasswordReset, "")
}

// overwriteKey installs the account's in-memory key of the given kind
// as the single current key, replacing whatever was there.
func (r *accountsRepo) overwriteKey(ctx context.Context, account *Account, kind KeyKind, extraWhere string) error {
	keyCol, expiryCol := keyColumns(kind)
	key, expiry := account.Key(kind)

	sql := fmt.Sprintf(`UPDATE "accounts" AS "acc"
SET
	"%s" = ?,
	"%s" = ?,
	"updated_at" = CURRENT_TIMESTAMP
WHERE
	"acc"."deleted_at" IS NULL
AND "acc"."id" = ?
%s
RETURNING *;`, keyCol, expiryCol, extraWhere)

	res, err := r.Repository.RawTx(ctx, r.db, sql, key, expiry, account.ID.String())
	if err != nil {
		return err
	}
	if len(res) == 0 {
		return ErrAccountNotFound
	}
	return nil
}

func (r *accountsRepo) ExchangeKey(ctx context.Context, kind KeyKind, oldKey, newKey string, expiry time.Time) error {
	keyCol, expiryCol := keyColumns(kind)

	sql := fmt.Sprintf(`UPDATE "accounts" AS "acc"
SET
	"%s" = ?,
	"%s" = ?,
	"updated_at" = CURRENT_TIMESTAMP
WHERE
	"acc"."deleted_at" IS NULL
AND "acc"."%s" = ?
AND "acc"."%s" > ?
RETURNING *;`, keyCol, expiryCol, keyCol, expiryCol)

	res, err := r.Repository.RawTx(ctx, r.db, sql, newKey, expiry, oldKey, time.Now())
	if err != nil {
		return err
	}
	if len(res) == 0 {
		return ErrAccountNotFound
	}
	return nil
}

func (r *accountsRepo) TrackSuccessfulLogin(ctx context.Context, account *Account) error {
	// NOTE: the ORM update path will not null out login_attempt_at, so
	// this stays raw.
	loggedInAt := time.Now()
	_, err := r.db.NewRaw(`
		UPDATE "accounts" AS "acc"
		SET
			"loggedin_at" = ?,
			"login_attempt_at" = NULL,
			"login_attempts" = 0
		WHERE
			("acc".id = ?)
			AND "acc"."deleted_at" IS NULL;
	`, loggedInAt, account.ID).Exec(ctx)

	return err
}

func (r *accountsRepo) TrackAttemptedLogin(ctx context.Context, account *Account) error {
	criteria := []repository.UpdateCriteria{
		repository.UpdateByID(account.ID.String()),
	}

	record := &Account{}
	record.ID = account.ID
	record.LoginAttempts = account.LoginAttempts + 1
	now := time.Now()
	record.LoginAttemptAt = &now

	_, err := r.Repository.UpdateTx(ctx, r.db, record, criteria...)

	return err
}
