package conversations

const (
	queryCountByUser = `
		SELECT COUNT(*) FROM conversations WHERE user_id = $1
	`

	queryList = `
		SELECT id, user_id, title, created_at, updated_at
		FROM conversations
		WHERE user_id = $1
		ORDER BY updated_at DESC
		LIMIT $2 OFFSET $3
	`

	queryCreate = `
		INSERT INTO conversations (user_id, title)
		VALUES ($1, $2)
		RETURNING id, user_id, title, created_at, updated_at
	`

	queryOwned = `
		SELECT EXISTS (SELECT 1 FROM conversations WHERE id = $1 AND user_id = $2)
	`

	queryTouch = `
		UPDATE conversations
		SET updated_at = NOW()
		WHERE id = $1 AND user_id = $2
	`

	queryListMessages = `
		SELECT id, conversation_id, content, sender, created_at
		FROM messages
		WHERE conversation_id = $1
		ORDER BY created_at ASC
	`

	queryInsertMessage = `
		INSERT INTO messages (conversation_id, user_id, content, sender)
		VALUES ($1, $2, $3, $4)
	`

	queryDeleteMessages = `
		DELETE FROM messages WHERE conversation_id = $1
	`
)
