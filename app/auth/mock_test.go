package auth

import (
	"context"
	"sync"
	"time"

	"github.com/littlelemon/ordering-api/models"
)

// --- Mock user store ---

type MockUserStore struct {
	mu     sync.Mutex
	users  []models.User
	tokens map[uint]models.Token
	roles  map[uint][]models.Role
	Err    error
}

func NewMockUserStore() *MockUserStore {
	return &MockUserStore{
		tokens: map[uint]models.Token{},
		roles:  map[uint][]models.Role{},
	}
}

func (m *MockUserStore) CreateUser(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	for _, u := range m.users {
		if u.Username == user.Username {
			return models.Conflict("a user with username %q already exists", user.Username)
		}
	}
	user.ID = uint(len(m.users) + 1)
	m.users = append(m.users, *user)
	return nil
}

func (m *MockUserStore) GetUserByID(_ context.Context, id uint) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.ID == id {
			user := u
			return &user, nil
		}
	}
	return nil, models.ErrUserNotFound
}

func (m *MockUserStore) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	for _, u := range m.users {
		if u.Username == username {
			user := u
			return &user, nil
		}
	}
	return nil, models.ErrUserNotFound
}

func (m *MockUserStore) SetSuperuser(_ context.Context, id uint, superuser bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.users {
		if m.users[i].ID == id {
			m.users[i].IsSuperuser = superuser
		}
	}
	return nil
}

func (m *MockUserStore) GetOrCreateToken(_ context.Context, candidate *models.Token) (*models.Token, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.tokens[candidate.UserID]; ok {
		return &t, nil
	}
	m.tokens[candidate.UserID] = *candidate
	t := *candidate
	return &t, nil
}

func (m *MockUserStore) ListRoles(_ context.Context, userID uint) ([]models.Role, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.roles[userID], nil
}

func (m *MockUserStore) GetUserByToken(_ context.Context, key string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	for userID, t := range m.tokens {
		if t.Key == key {
			for _, u := range m.users {
				if u.ID == userID {
					user := u
					return &user, nil
				}
			}
		}
	}
	return nil, models.ErrUserNotFound
}

// --- Mock throttle ---

type MockThrottle struct {
	Cooldown  time.Duration
	WaitErr   error
	Failures  int
	Successes int
}

func (m *MockThrottle) Wait(context.Context, string) (time.Duration, error) {
	return m.Cooldown, m.WaitErr
}

func (m *MockThrottle) Failed(context.Context, string) error {
	m.Failures++
	return nil
}

func (m *MockThrottle) Succeeded(context.Context, string) error {
	m.Successes++
	return nil
}
