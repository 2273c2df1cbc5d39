package conversations

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockRepo(t *testing.T) (pgxmock.PgxPoolIface, *Repository) {
	t.Helper()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err, "failed to create mock")
	t.Cleanup(mock.Close)

	return mock, NewRepository(mock)
}

func TestSenderFor(t *testing.T) {
	assert.Equal(t, SenderUser, SenderFor("user"))
	assert.Equal(t, SenderAssistant, SenderFor("assistant"))
	assert.Equal(t, SenderAssistant, SenderFor("system"))
	assert.Equal(t, SenderAssistant, SenderFor(""))
}

func TestRepository_List(t *testing.T) {
	mock, repo := newMockRepo(t)
	now := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM conversations`).
		WithArgs("u1").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectQuery(`ORDER BY updated_at DESC`).
		WithArgs("u1", 2, 0).
		WillReturnRows(pgxmock.NewRows([]string{"id", "user_id", "title", "created_at", "updated_at"}).
			AddRow("c2", "u1", "Photosynthesis", now, now).
			AddRow("c1", "u1", "Algebra", now.Add(-time.Hour), now.Add(-time.Hour)))

	list, total, err := repo.List(context.Background(), "u1", 2, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, list, 2)
	assert.Equal(t, "c2", list[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_ListEmpty(t *testing.T) {
	mock, repo := newMockRepo(t)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM conversations`).
		WithArgs("u1").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`ORDER BY updated_at DESC`).
		WithArgs("u1", 20, 0).
		WillReturnRows(pgxmock.NewRows([]string{"id", "user_id", "title", "created_at", "updated_at"}))

	list, total, err := repo.List(context.Background(), "u1", 20, 0)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.NotNil(t, list, "empty list must encode as []")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_Create(t *testing.T) {
	mock, repo := newMockRepo(t)
	now := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO conversations`).
		WithArgs("u1", "Algebra").
		WillReturnRows(pgxmock.NewRows([]string{"id", "user_id", "title", "created_at", "updated_at"}).
			AddRow("c1", "u1", "Algebra", now, now))
	mock.ExpectExec(`INSERT INTO messages`).
		WithArgs("c1", "u1", "What is x?", SenderUser).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(`INSERT INTO messages`).
		WithArgs("c1", "u1", "x is 2", SenderAssistant).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	conversation, err := repo.Create(context.Background(), "u1", "Algebra", []NewMessage{
		{Role: "user", Content: "What is x?"},
		{Role: "assistant", Content: "x is 2"},
	})
	require.NoError(t, err)
	assert.Equal(t, "c1", conversation.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_CreateForDeletedUser(t *testing.T) {
	mock, repo := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO conversations`).
		WithArgs("gone", "Algebra").
		WillReturnError(&pgconn.PgError{Code: pgerrcode.ForeignKeyViolation})
	mock.ExpectRollback()

	_, err := repo.Create(context.Background(), "gone", "Algebra", nil)
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_CreateRollsBack(t *testing.T) {
	mock, repo := newMockRepo(t)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO conversations`).
		WithArgs("u1", "Algebra").
		WillReturnRows(pgxmock.NewRows([]string{"id", "user_id", "title", "created_at", "updated_at"}).
			AddRow("c1", "u1", "Algebra", now, now))
	mock.ExpectExec(`INSERT INTO messages`).
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	_, err := repo.Create(context.Background(), "u1", "Algebra", []NewMessage{{Role: "user", Content: "hi"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_Messages(t *testing.T) {
	t.Run("owner sees messages in order", func(t *testing.T) {
		mock, repo := newMockRepo(t)
		now := time.Now()

		mock.ExpectQuery(`SELECT EXISTS`).
			WithArgs("c1", "u1").
			WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))
		mock.ExpectQuery(`ORDER BY created_at ASC`).
			WithArgs("c1").
			WillReturnRows(pgxmock.NewRows([]string{"id", "conversation_id", "content", "sender", "created_at"}).
				AddRow("m1", "c1", "hi", "user", now).
				AddRow("m2", "c1", "hello", "assistant", now.Add(time.Millisecond)))

		messages, err := repo.Messages(context.Background(), "u1", "c1")
		require.NoError(t, err)
		require.Len(t, messages, 2)
		assert.Equal(t, "user", messages[0].Role)
		assert.Equal(t, "user", messages[0].Sender)
		assert.Equal(t, "assistant", messages[1].Role)
		assert.Equal(t, "assistant", messages[1].Sender)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("someone else's conversation", func(t *testing.T) {
		mock, repo := newMockRepo(t)

		mock.ExpectQuery(`SELECT EXISTS`).
			WithArgs("c1", "u2").
			WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))

		_, err := repo.Messages(context.Background(), "u2", "c1")
		assert.ErrorIs(t, err, ErrConversationNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRepository_ReplaceMessages(t *testing.T) {
	t.Run("replaces and bumps", func(t *testing.T) {
		mock, repo := newMockRepo(t)

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE conversations`).
			WithArgs("c1", "u1").
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))
		mock.ExpectExec(`DELETE FROM messages`).
			WithArgs("c1").
			WillReturnResult(pgxmock.NewResult("DELETE", 4))
		mock.ExpectExec(`INSERT INTO messages`).
			WithArgs("c1", "u1", "only one now", SenderUser).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
		mock.ExpectCommit()

		err := repo.ReplaceMessages(context.Background(), "u1", "c1", []NewMessage{{Role: "user", Content: "only one now"}})
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not the owner", func(t *testing.T) {
		mock, repo := newMockRepo(t)

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE conversations`).
			WithArgs("c1", "u2").
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))
		mock.ExpectRollback()

		err := repo.ReplaceMessages(context.Background(), "u2", "c1", nil)
		assert.ErrorIs(t, err, ErrConversationNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
