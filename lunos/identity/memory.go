package identity

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// in-process Adapter used by tests and local runs without a database
//
// It mirrors the postgres schema: unique emails, one credentials account per
// user, and cascading deletes from users to accounts and sessions.
type MemoryAdapter struct {
	mu       sync.RWMutex
	users    map[string]User
	accounts map[accountKey]Account
	sessions map[string]Session
	tokens   map[tokenKey]VerificationToken
}

type accountKey struct {
	provider          string
	providerAccountID string
}

type tokenKey struct {
	identifier string
	token      string
}

// creates an empty memory adapter
func NewMemoryAdapter() *MemoryAdapter {
	return &MemoryAdapter{
		users:    make(map[string]User),
		accounts: make(map[accountKey]Account),
		sessions: make(map[string]Session),
		tokens:   make(map[tokenKey]VerificationToken),
	}
}

func (m *MemoryAdapter) CreateUser(_ context.Context, user NewUser) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.userByEmail(user.Email) != nil {
		return nil, ErrEmailTaken
	}

	id := user.ID
	if id == "" {
		id = uuid.NewString()
	}

	if _, exists := m.users[id]; exists {
		return nil, ErrDuplicate
	}

	created := User{
		ID:            id,
		Name:          user.Name,
		Email:         user.Email,
		EmailVerified: user.EmailVerified,
		Image:         user.Image,
	}
	m.users[id] = created

	return &created, nil
}

func (m *MemoryAdapter) GetUser(_ context.Context, id string) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	user, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}

	return &user, nil
}

func (m *MemoryAdapter) GetUserByEmail(_ context.Context, email string) (*UserWithAccounts, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	user := m.userByEmail(email)
	if user == nil {
		return nil, ErrNotFound
	}

	accounts := []Account{}
	for _, account := range m.accounts {
		if account.UserID == user.ID {
			accounts = append(accounts, account)
		}
	}

	return &UserWithAccounts{User: *user, Accounts: accounts}, nil
}

func (m *MemoryAdapter) GetUserByAccount(_ context.Context, provider, providerAccountID string) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	account, ok := m.accounts[accountKey{provider, providerAccountID}]
	if !ok {
		return nil, ErrNotFound
	}

	user, ok := m.users[account.UserID]
	if !ok {
		return nil, ErrNotFound
	}

	return &user, nil
}

func (m *MemoryAdapter) UpdateUser(_ context.Context, update UserUpdate) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	user, ok := m.users[update.ID]
	if !ok {
		return nil, ErrNotFound
	}

	if update.Email != nil && *update.Email != user.Email {
		if m.userByEmail(*update.Email) != nil {
			return nil, ErrEmailTaken
		}
		user.Email = *update.Email
	}

	if update.Name != nil {
		user.Name = update.Name
	}
	if update.EmailVerified != nil {
		user.EmailVerified = update.EmailVerified
	}
	if update.Image != nil {
		user.Image = update.Image
	}
	if update.OnboardingCompleted != nil {
		user.OnboardingCompleted = *update.OnboardingCompleted
	}

	m.users[user.ID] = user

	return &user, nil
}

func (m *MemoryAdapter) DeleteUser(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.users, id)

	for key, account := range m.accounts {
		if account.UserID == id {
			delete(m.accounts, key)
		}
	}

	for token, session := range m.sessions {
		if session.UserID == id {
			delete(m.sessions, token)
		}
	}

	return nil
}

func (m *MemoryAdapter) LinkAccount(_ context.Context, account *Account) (*Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[account.UserID]; !ok {
		return nil, ErrNotFound
	}

	key := accountKey{account.Provider, account.ProviderAccountID}
	if _, exists := m.accounts[key]; exists {
		return nil, ErrAccountExists
	}

	if account.Provider == ProviderCredentials {
		for _, existing := range m.accounts {
			if existing.UserID == account.UserID && existing.Provider == ProviderCredentials {
				return nil, ErrAccountExists
			}
		}
	}

	linked := *account
	m.accounts[key] = linked

	return &linked, nil
}

func (m *MemoryAdapter) UnlinkAccount(_ context.Context, provider, providerAccountID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.accounts, accountKey{provider, providerAccountID})

	return nil
}

func (m *MemoryAdapter) UpdateAccountPassword(_ context.Context, userID, passwordHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for key, account := range m.accounts {
		if account.UserID == userID && account.Provider == ProviderCredentials {
			hash := passwordHash
			account.Password = &hash
			m.accounts[key] = account
			return nil
		}
	}

	return ErrNotFound
}

func (m *MemoryAdapter) CreateSession(_ context.Context, session Session) (*Session, error) {
	if session.UserID == "" {
		panic("identity: CreateSession called without a user id")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[session.UserID]; !ok {
		return nil, ErrNotFound
	}

	if _, exists := m.sessions[session.SessionToken]; exists {
		return nil, ErrDuplicate
	}

	m.sessions[session.SessionToken] = session

	return &session, nil
}

func (m *MemoryAdapter) GetSessionAndUser(_ context.Context, sessionToken string) (*Session, *User, error) {
	if sessionToken == "" {
		return nil, nil, ErrNotFound
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	session, ok := m.sessions[sessionToken]
	if !ok {
		return nil, nil, ErrNotFound
	}

	user, ok := m.users[session.UserID]
	if !ok {
		return nil, nil, ErrNotFound
	}

	return &session, &user, nil
}

func (m *MemoryAdapter) UpdateSession(_ context.Context, session Session) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.sessions[session.SessionToken]
	if !ok {
		return nil, ErrNotFound
	}

	existing.Expires = session.Expires
	m.sessions[session.SessionToken] = existing

	return &existing, nil
}

func (m *MemoryAdapter) DeleteSession(_ context.Context, sessionToken string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, sessionToken)

	return nil
}

func (m *MemoryAdapter) DeleteExpiredSessions(_ context.Context, before time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var removed int64
	for token, session := range m.sessions {
		if session.Expires.Before(before) {
			delete(m.sessions, token)
			removed++
		}
	}

	return removed, nil
}

func (m *MemoryAdapter) CreateVerificationToken(_ context.Context, token VerificationToken) (*VerificationToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := tokenKey{token.Identifier, token.Token}
	if _, exists := m.tokens[key]; exists {
		return nil, ErrDuplicate
	}

	m.tokens[key] = token

	return &token, nil
}

func (m *MemoryAdapter) UseVerificationToken(_ context.Context, identifier, token string) (*VerificationToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := tokenKey{identifier, token}
	used, ok := m.tokens[key]
	if !ok {
		return nil, ErrNotFound
	}

	delete(m.tokens, key)

	return &used, nil
}

// caller must hold the lock
func (m *MemoryAdapter) userByEmail(email string) *User {
	for _, user := range m.users {
		if user.Email == email {
			return &user
		}
	}

	return nil
}
