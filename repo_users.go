package calc

import (
	"context"
	"database/sql"

	"github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

// Users is the credential store
type Users interface {
	Register(ctx context.Context, user *User) (*User, error)
	GetByIdentifier(ctx context.Context, identifier string) (*User, error)
}

type users struct {
	db *bun.DB
}

var _ Users = (*users)(nil)

// NewUsersRepository returns a Users repository backed by bun
func NewUsersRepository(db *bun.DB) Users {
	return &users{db: db}
}

// Register inserts a new user. The unique constraint on username is the
// atomic check-then-insert, so two concurrent registrations of the same
// name produce exactly one ErrDuplicateUser.
func (a *users) Register(ctx context.Context, user *User) (*User, error) {
	if _, err := a.db.NewInsert().
		Model(user).
		Returning("id").
		Exec(ctx); err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateUser
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, wrapStoreError(err, "user insert timed out")
		}
		return nil, wrapStoreError(err, "failed to register user")
	}

	return user, nil
}

// GetByIdentifier looks a user up by username.
func (a *users) GetByIdentifier(ctx context.Context, identifier string) (*User, error) {
	user := &User{}

	err := a.db.NewSelect().
		Model(user).
		Where("?TableAlias.username = ?", identifier).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrIdentityNotFound
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, wrapStoreError(err, "user lookup timed out")
		}
		return nil, wrapStoreError(err, "failed to retrieve user")
	}

	return user, nil
}

func wrapStoreError(err error, msg string) error {
	return errors.Wrap(err, ErrStoreUnavailable.Category, msg).
		WithTextCode(ErrStoreUnavailable.TextCode).
		WithCode(ErrStoreUnavailable.Code)
}
