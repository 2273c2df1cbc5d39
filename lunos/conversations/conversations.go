package conversations

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"codeberg.org/lunos/server/internal/storage"
)

var (
	ErrConversationNotFound = errors.New("conversation not found")
	ErrUserNotFound         = errors.New("user not found")
)

type Repository struct {
	db storage.Pool
}

// creates a new conversations repository
func NewRepository(db storage.Pool) *Repository {
	return &Repository{db: db}
}

// returns a page of the user's conversations, most recently updated first, plus the total count
func (r *Repository) List(ctx context.Context, userID string, limit, offset int) ([]Conversation, int, error) {
	var total int
	if err := r.db.QueryRow(ctx, queryCountByUser, userID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count conversations: %w", err)
	}

	rows, err := r.db.Query(ctx, queryList, userID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list conversations: %w", err)
	}
	defer rows.Close()

	conversations := []Conversation{}
	for rows.Next() {
		var c Conversation
		if err := rows.Scan(&c.ID, &c.UserID, &c.Title, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("failed to scan conversation: %w", err)
		}

		conversations = append(conversations, c)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to list conversations: %w", err)
	}

	return conversations, total, nil
}

// creates a conversation with its initial messages in one transaction
func (r *Repository) Create(ctx context.Context, userID, title string, messages []NewMessage) (*Conversation, error) {
	var conversation Conversation

	err := storage.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, queryCreate, userID, title).Scan(
			&conversation.ID,
			&conversation.UserID,
			&conversation.Title,
			&conversation.CreatedAt,
			&conversation.UpdatedAt,
		)
		if err != nil {
			return err
		}

		return insertMessages(ctx, tx, conversation.ID, userID, messages)
	})
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, ErrUserNotFound
		}

		return nil, err
	}

	return &conversation, nil
}

// returns the conversation's messages oldest first
func (r *Repository) Messages(ctx context.Context, userID, conversationID string) ([]Message, error) {
	var owned bool
	if err := r.db.QueryRow(ctx, queryOwned, conversationID, userID).Scan(&owned); err != nil {
		if isInvalidID(err) {
			return nil, ErrConversationNotFound
		}

		return nil, fmt.Errorf("failed to check conversation: %w", err)
	}

	if !owned {
		return nil, ErrConversationNotFound
	}

	rows, err := r.db.Query(ctx, queryListMessages, conversationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer rows.Close()

	messages := []Message{}
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.Content, &m.Sender, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}

		m.Role = SenderFor(m.Sender)

		messages = append(messages, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}

	return messages, nil
}

// swaps the conversation's messages for the given ones and bumps updated_at
func (r *Repository) ReplaceMessages(ctx context.Context, userID, conversationID string, messages []NewMessage) error {
	err := storage.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, queryTouch, conversationID, userID)
		if err != nil {
			return err
		}

		if tag.RowsAffected() == 0 {
			return ErrConversationNotFound
		}

		if _, err := tx.Exec(ctx, queryDeleteMessages, conversationID); err != nil {
			return err
		}

		return insertMessages(ctx, tx, conversationID, userID, messages)
	})

	if errors.Is(err, ErrConversationNotFound) || isInvalidID(err) {
		return ErrConversationNotFound
	}

	return err
}

// inserts in order; created_at uses clock_timestamp so order survives a single transaction
func insertMessages(ctx context.Context, db storage.DBTX, conversationID, userID string, messages []NewMessage) error {
	for _, m := range messages {
		if _, err := db.Exec(ctx, queryInsertMessage, conversationID, userID, m.Content, SenderFor(m.Role)); err != nil {
			return fmt.Errorf("failed to insert message: %w", err)
		}
	}

	return nil
}

func isInvalidID(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.InvalidTextRepresentation
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation
}
