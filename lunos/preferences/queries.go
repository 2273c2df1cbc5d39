package preferences

const preferenceColumns = `subjects, plan_type, messages_used_today, to_char(last_message_date, 'YYYY-MM-DD')`

const (
	queryGet = `
		SELECT ` + preferenceColumns + `
		FROM user_preferences
		WHERE user_id = $1
	`

	queryUpsert = `
		INSERT INTO user_preferences (user_id, subjects, plan_type)
		VALUES ($1, COALESCE($2::jsonb, '[]'::jsonb), COALESCE($3, 'orbit'))
		ON CONFLICT (user_id) DO UPDATE
		SET subjects = COALESCE($2::jsonb, user_preferences.subjects),
			plan_type = COALESCE($3, user_preferences.plan_type),
			updated_at = NOW()
		RETURNING ` + preferenceColumns

	queryCompleteOnboarding = `
		UPDATE auth_users
		SET name = COALESCE($2, name),
			onboarding_completed = TRUE
		WHERE id = $1
	`

	// counts one message unless the free plan already used its allowance today
	queryRecordMessage = `
		INSERT INTO user_preferences (user_id, messages_used_today, last_message_date)
		VALUES ($1, 1, $2::date)
		ON CONFLICT (user_id) DO UPDATE
		SET messages_used_today = CASE
				WHEN user_preferences.last_message_date = $2::date THEN user_preferences.messages_used_today + 1
				ELSE 1
			END,
			last_message_date = $2::date,
			updated_at = NOW()
		WHERE user_preferences.plan_type <> 'orbit'
			OR user_preferences.last_message_date IS DISTINCT FROM $2::date
			OR user_preferences.messages_used_today < $3
		RETURNING plan_type, messages_used_today
	`
)
