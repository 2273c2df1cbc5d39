package preferences

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"codeberg.org/lunos/server/internal/storage"
)

var ErrUserNotFound = errors.New("user not found")

type Repository struct {
	db storage.Pool
}

// creates a new preferences repository
func NewRepository(db storage.Pool) *Repository {
	return &Repository{db: db}
}

// returns the stored preferences, or the defaults when none were saved
func (r *Repository) Get(ctx context.Context, userID string) (*Preferences, error) {
	prefs, err := scanPreferences(r.db.QueryRow(ctx, queryGet, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Defaults(), nil
		}

		return nil, fmt.Errorf("failed to get preferences: %w", err)
	}

	return prefs, nil
}

// creates or updates the preferences row
func (r *Repository) Upsert(ctx context.Context, userID string, update Update) (*Preferences, error) {
	return upsert(ctx, r.db, userID, update)
}

// sets the user's name and onboarding flag and saves their first preferences atomically
func (r *Repository) CompleteOnboarding(ctx context.Context, userID string, name *string, update Update) (*Preferences, error) {
	var prefs *Preferences

	err := storage.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, queryCompleteOnboarding, userID, name)
		if err != nil {
			return err
		}

		if tag.RowsAffected() == 0 {
			return ErrUserNotFound
		}

		prefs, err = upsert(ctx, tx, userID, update)
		return err
	})
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrUserNotFound
		}

		return nil, err
	}

	return prefs, nil
}

// reports today's usage without consuming anything
func (r *Repository) Usage(ctx context.Context, userID string, now time.Time) (*Usage, error) {
	prefs, err := r.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	today := Day(now)
	used := 0

	if prefs.LastMessageDate != nil && *prefs.LastMessageDate == today {
		used = prefs.MessagesUsedToday
	}

	return newUsage(prefs.PlanType, today, used), nil
}

// consumes one message from today's allowance
//
// The check and the increment are one statement, so concurrent requests can
// never push the free plan past its limit.
func (r *Repository) RecordMessage(ctx context.Context, userID string, now time.Time) (*Usage, error) {
	today := Day(now)

	var (
		plan string
		used int
	)

	err := r.db.QueryRow(ctx, queryRecordMessage, userID, today, OrbitDailyLimit).Scan(&plan, &used)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrQuotaExceeded
		}

		if isForeignKeyViolation(err) {
			return nil, ErrUserNotFound
		}

		return nil, fmt.Errorf("failed to record message: %w", err)
	}

	return newUsage(PlanType(plan), today, used), nil
}

func upsert(ctx context.Context, db storage.DBTX, userID string, update Update) (*Preferences, error) {
	if update.PlanType != nil && !update.PlanType.Valid() {
		return nil, ErrInvalidPlan
	}

	var subjects *string
	if update.Subjects != nil {
		list := *update.Subjects
		if list == nil {
			list = []Subject{}
		}

		encoded, err := json.Marshal(list)
		if err != nil {
			return nil, fmt.Errorf("failed to encode subjects: %w", err)
		}

		s := string(encoded)
		subjects = &s
	}

	var plan *string
	if update.PlanType != nil {
		p := string(*update.PlanType)
		plan = &p
	}

	prefs, err := scanPreferences(db.QueryRow(ctx, queryUpsert, userID, subjects, plan))
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, ErrUserNotFound
		}

		return nil, fmt.Errorf("failed to save preferences: %w", err)
	}

	return prefs, nil
}

func scanPreferences(row pgx.Row) (*Preferences, error) {
	var (
		prefs    Preferences
		subjects []byte
		plan     string
	)

	if err := row.Scan(&subjects, &plan, &prefs.MessagesUsedToday, &prefs.LastMessageDate); err != nil {
		return nil, err
	}

	prefs.PlanType = PlanType(plan)
	prefs.Subjects = []Subject{}

	if len(subjects) > 0 {
		if err := json.Unmarshal(subjects, &prefs.Subjects); err != nil {
			return nil, fmt.Errorf("failed to decode subjects: %w", err)
		}
	}

	return &prefs, nil
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation
}
