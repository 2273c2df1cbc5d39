package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"codeberg.org/lunos/server/internal/storage"
)

// Adapter backed by the auth_* tables in postgres
type PostgresAdapter struct {
	db storage.DBTX
}

// creates a new postgres adapter
func NewPostgresAdapter(db storage.DBTX) *PostgresAdapter {
	return &PostgresAdapter{db: db}
}

// inserts a user, generating an id when none is given
func (a *PostgresAdapter) CreateUser(ctx context.Context, user NewUser) (*User, error) {
	id := user.ID
	if id == "" {
		id = uuid.NewString()
	}

	created, err := scanUser(a.db.QueryRow(
		ctx,
		queryCreateUser,
		id,
		user.Name,
		user.Email,
		user.EmailVerified,
		user.Image,
	))
	if err != nil {
		return nil, mapWriteError(err, "create user")
	}

	return created, nil
}

// finds a user by id
func (a *PostgresAdapter) GetUser(ctx context.Context, id string) (*User, error) {
	user, err := scanUser(a.db.QueryRow(ctx, queryGetUser, id))
	if err != nil {
		return nil, mapReadError(err, "get user")
	}

	return user, nil
}

// finds a user by exact email, together with every linked account
func (a *PostgresAdapter) GetUserByEmail(ctx context.Context, email string) (*UserWithAccounts, error) {
	user, err := scanUser(a.db.QueryRow(ctx, queryGetUserByEmail, email))
	if err != nil {
		return nil, mapReadError(err, "get user by email")
	}

	rows, err := a.db.Query(ctx, queryListAccountsByUser, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	accounts := []Account{}
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}

		accounts = append(accounts, *account)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}

	return &UserWithAccounts{User: *user, Accounts: accounts}, nil
}

// finds the user owning the given provider account
func (a *PostgresAdapter) GetUserByAccount(ctx context.Context, provider, providerAccountID string) (*User, error) {
	user, err := scanUser(a.db.QueryRow(ctx, queryGetUserByAccount, provider, providerAccountID))
	if err != nil {
		return nil, mapReadError(err, "get user by account")
	}

	return user, nil
}

// applies the non-nil fields of update and returns the stored user
func (a *PostgresAdapter) UpdateUser(ctx context.Context, update UserUpdate) (*User, error) {
	user, err := scanUser(a.db.QueryRow(
		ctx,
		queryUpdateUser,
		update.ID,
		update.Name,
		update.Email,
		update.EmailVerified,
		update.Image,
		update.OnboardingCompleted,
	))
	if err != nil {
		if isNoRows(err) || isInvalidID(err) {
			return nil, ErrNotFound
		}

		return nil, mapWriteError(err, "update user")
	}

	return user, nil
}

// removes a user; accounts, sessions and app data cascade
func (a *PostgresAdapter) DeleteUser(ctx context.Context, id string) error {
	if _, err := a.db.Exec(ctx, queryDeleteUser, id); err != nil {
		// an id that isn't a uuid names no row
		if isInvalidID(err) {
			return nil
		}

		return fmt.Errorf("failed to delete user: %w", err)
	}

	return nil
}

// stores a linked account, keeping the password hash for credentials accounts
func (a *PostgresAdapter) LinkAccount(ctx context.Context, account *Account) (*Account, error) {
	linked, err := scanAccount(a.db.QueryRow(
		ctx,
		queryLinkAccount,
		account.UserID,
		account.Type,
		account.Provider,
		account.ProviderAccountID,
		account.AccessToken,
		account.ExpiresAt,
		account.RefreshToken,
		account.IDToken,
		account.Scope,
		account.SessionState,
		account.TokenType,
		account.Password,
	))
	if err != nil {
		return nil, mapWriteError(err, "link account")
	}

	return linked, nil
}

// removes a linked account
func (a *PostgresAdapter) UnlinkAccount(ctx context.Context, provider, providerAccountID string) error {
	if _, err := a.db.Exec(ctx, queryUnlinkAccount, provider, providerAccountID); err != nil {
		return fmt.Errorf("failed to unlink account: %w", err)
	}

	return nil
}

// replaces the hash on the user's credentials account
func (a *PostgresAdapter) UpdateAccountPassword(ctx context.Context, userID, passwordHash string) error {
	tag, err := a.db.Exec(ctx, queryUpdateAccountPassword, userID, passwordHash)
	if err != nil {
		if isInvalidID(err) {
			return ErrNotFound
		}

		return fmt.Errorf("failed to update password: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// inserts a session; panics when the session has no owner
func (a *PostgresAdapter) CreateSession(ctx context.Context, session Session) (*Session, error) {
	if session.UserID == "" {
		panic("identity: CreateSession called without a user id")
	}

	created, err := scanSession(a.db.QueryRow(
		ctx,
		queryCreateSession,
		session.SessionToken,
		session.UserID,
		session.Expires,
	))
	if err != nil {
		return nil, mapWriteError(err, "create session")
	}

	return created, nil
}

// resolves a session token to its session and owning user
func (a *PostgresAdapter) GetSessionAndUser(ctx context.Context, sessionToken string) (*Session, *User, error) {
	if sessionToken == "" {
		return nil, nil, ErrNotFound
	}

	session, err := scanSession(a.db.QueryRow(ctx, queryGetSession, sessionToken))
	if err != nil {
		return nil, nil, mapReadError(err, "get session")
	}

	user, err := a.GetUser(ctx, session.UserID)
	if err != nil {
		return nil, nil, err
	}

	return session, user, nil
}

// moves the expiry of an existing session; never inserts
func (a *PostgresAdapter) UpdateSession(ctx context.Context, session Session) (*Session, error) {
	updated, err := scanSession(a.db.QueryRow(ctx, queryUpdateSession, session.SessionToken, session.Expires))
	if err != nil {
		return nil, mapReadError(err, "update session")
	}

	return updated, nil
}

// removes a session; deleting an unknown token is not an error
func (a *PostgresAdapter) DeleteSession(ctx context.Context, sessionToken string) error {
	if _, err := a.db.Exec(ctx, queryDeleteSession, sessionToken); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	return nil
}

// removes every session that expired before the given time
func (a *PostgresAdapter) DeleteExpiredSessions(ctx context.Context, before time.Time) (int64, error) {
	tag, err := a.db.Exec(ctx, queryDeleteExpiredSessions, before)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}

	return tag.RowsAffected(), nil
}

// stores a verification token
func (a *PostgresAdapter) CreateVerificationToken(ctx context.Context, token VerificationToken) (*VerificationToken, error) {
	if _, err := a.db.Exec(ctx, queryCreateVerificationToken, token.Identifier, token.Token, token.Expires); err != nil {
		return nil, mapWriteError(err, "create verification token")
	}

	return &token, nil
}

// atomically consumes a verification token so it can never be used twice
func (a *PostgresAdapter) UseVerificationToken(ctx context.Context, identifier, token string) (*VerificationToken, error) {
	var used VerificationToken

	err := a.db.QueryRow(ctx, queryUseVerificationToken, identifier, token).Scan(
		&used.Identifier,
		&used.Token,
		&used.Expires,
	)
	if err != nil {
		return nil, mapReadError(err, "use verification token")
	}

	return &used, nil
}

func scanUser(row pgx.Row) (*User, error) {
	var user User

	err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.EmailVerified,
		&user.Image,
		&user.OnboardingCompleted,
	)
	if err != nil {
		return nil, err
	}

	return &user, nil
}

func scanAccount(row pgx.Row) (*Account, error) {
	var account Account

	err := row.Scan(
		&account.UserID,
		&account.Type,
		&account.Provider,
		&account.ProviderAccountID,
		&account.AccessToken,
		&account.ExpiresAt,
		&account.RefreshToken,
		&account.IDToken,
		&account.Scope,
		&account.SessionState,
		&account.TokenType,
		&account.Password,
	)
	if err != nil {
		return nil, err
	}

	return &account, nil
}

func scanSession(row pgx.Row) (*Session, error) {
	var session Session

	if err := row.Scan(&session.SessionToken, &session.UserID, &session.Expires); err != nil {
		return nil, err
	}

	return &session, nil
}

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// a malformed uuid can never match a row
func isInvalidID(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.InvalidTextRepresentation
}

func mapReadError(err error, op string) error {
	if isNoRows(err) || isInvalidID(err) {
		return ErrNotFound
	}

	return fmt.Errorf("failed to %s: %w", op, err)
}

// unique constraints with a dedicated sentinel
const (
	constraintUserEmail      = "auth_users_email_key"
	constraintAccountKey     = "auth_accounts_pkey"
	constraintOneCredentials = "auth_accounts_one_credentials_per_user"
)

func mapWriteError(err error, op string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.UniqueViolation:
			switch pgErr.ConstraintName {
			case constraintUserEmail:
				return ErrEmailTaken
			case constraintAccountKey, constraintOneCredentials:
				return ErrAccountExists
			}

			return ErrDuplicate
		case pgerrcode.ForeignKeyViolation, pgerrcode.InvalidTextRepresentation:
			return ErrNotFound
		}
	}

	return fmt.Errorf("failed to %s: %w", op, err)
}
