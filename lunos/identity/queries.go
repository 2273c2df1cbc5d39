package identity

const userColumns = `id, name, email, "emailVerified", image, onboarding_completed`

const accountColumns = `"userId", type, provider, "providerAccountId", access_token, expires_at,
	refresh_token, id_token, scope, session_state, token_type, password`

const (
	queryCreateUser = `
		INSERT INTO auth_users (id, name, email, "emailVerified", image)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + userColumns

	queryGetUser = `
		SELECT ` + userColumns + `
		FROM auth_users
		WHERE id = $1
	`

	queryGetUserByEmail = `
		SELECT ` + userColumns + `
		FROM auth_users
		WHERE email = $1
	`

	queryGetUserByAccount = `
		SELECT u.id, u.name, u.email, u."emailVerified", u.image, u.onboarding_completed
		FROM auth_users u
		JOIN auth_accounts a ON a."userId" = u.id
		WHERE a.provider = $1 AND a."providerAccountId" = $2
	`

	queryUpdateUser = `
		UPDATE auth_users
		SET name = COALESCE($2, name),
			email = COALESCE($3, email),
			"emailVerified" = COALESCE($4, "emailVerified"),
			image = COALESCE($5, image),
			onboarding_completed = COALESCE($6, onboarding_completed)
		WHERE id = $1
		RETURNING ` + userColumns

	queryDeleteUser = `
		DELETE FROM auth_users WHERE id = $1
	`

	queryListAccountsByUser = `
		SELECT ` + accountColumns + `
		FROM auth_accounts
		WHERE "userId" = $1
	`

	queryLinkAccount = `
		INSERT INTO auth_accounts ("userId", type, provider, "providerAccountId", access_token, expires_at,
			refresh_token, id_token, scope, session_state, token_type, password)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING ` + accountColumns

	queryUnlinkAccount = `
		DELETE FROM auth_accounts WHERE provider = $1 AND "providerAccountId" = $2
	`

	queryUpdateAccountPassword = `
		UPDATE auth_accounts
		SET password = $2
		WHERE "userId" = $1 AND provider = 'credentials'
	`

	queryCreateSession = `
		INSERT INTO auth_sessions ("sessionToken", "userId", expires)
		VALUES ($1, $2, $3)
		RETURNING "sessionToken", "userId", expires
	`

	queryGetSession = `
		SELECT "sessionToken", "userId", expires
		FROM auth_sessions
		WHERE "sessionToken" = $1
	`

	queryUpdateSession = `
		UPDATE auth_sessions
		SET expires = $2
		WHERE "sessionToken" = $1
		RETURNING "sessionToken", "userId", expires
	`

	queryDeleteSession = `
		DELETE FROM auth_sessions WHERE "sessionToken" = $1
	`

	queryDeleteExpiredSessions = `
		DELETE FROM auth_sessions WHERE expires < $1
	`

	queryCreateVerificationToken = `
		INSERT INTO auth_verification_token (identifier, token, expires)
		VALUES ($1, $2, $3)
	`

	queryUseVerificationToken = `
		DELETE FROM auth_verification_token
		WHERE identifier = $1 AND token = $2
		RETURNING identifier, token, expires
	`
)
