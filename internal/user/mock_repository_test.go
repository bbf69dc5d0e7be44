package user

import (
	"context"
	"errors"
	"sync"
)

type mockRepository struct {
	mu        sync.Mutex
	users     map[string]*User
	createErr error
	findErr   error
}

func newMockRepository() *mockRepository {
	return &mockRepository{users: make(map[string]*User)}
}

func (m *mockRepository) CreateUser(ctx context.Context, user *User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	copied := *user
	m.users[user.ID] = &copied
	return nil
}

func (m *mockRepository) GetUserByID(ctx context.Context, id string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, ErrUserNotFound
}

func (m *mockRepository) GetUserByLoginOrEmail(ctx context.Context, loginOrEmail string) (*User, error) {
	return m.FindByLoginOrEmail(ctx, loginOrEmail, loginOrEmail)
}

func (m *mockRepository) FindByLoginOrEmail(ctx context.Context, login, email string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.findErr != nil {
		return nil, m.findErr
	}
	for _, u := range m.users {
		if u.Login == login || u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, ErrUserNotFound
}

func (m *mockRepository) UpdatePasswordAndHashToken(ctx context.Context, userID, passwordHash, hashToken string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return ErrUserNotFound
	}
	u.PasswordHash = passwordHash
	u.HashToken = hashToken
	return nil
}

var errDatabaseDown = errors.New("database down")
