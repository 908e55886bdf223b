package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/dayplanhq/dayplan/internal/domain"
	"github.com/dayplanhq/dayplan/internal/domain/task"
	"github.com/dayplanhq/dayplan/internal/domain/user"
	"github.com/dayplanhq/dayplan/internal/port/messagequeue"
)

// mockStore is an in-memory database.Store for testing. It enforces the
// same user scoping the postgres adapter does.
type mockStore struct {
	mu    sync.Mutex
	tasks []task.Task
	users []user.User

	createTaskErr error
	updateTaskErr error
}

func (s *mockStore) CreateTask(_ context.Context, t *task.Task) error {
	if s.createTaskErr != nil {
		return s.createTaskErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = append(s.tasks, *t)
	return nil
}

func (s *mockStore) GetTask(_ context.Context, id, userID string) (*task.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.tasks {
		if t.ID == id && t.UserID == userID {
			cp := t
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *mockStore) ListTasks(_ context.Context, userID string, state *task.State) ([]task.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []task.Task
	for _, t := range s.tasks {
		if t.UserID != userID {
			continue
		}
		if state != nil && t.State != *state {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

func (s *mockStore) UpdateTask(_ context.Context, t *task.Task) error {
	if s.updateTaskErr != nil {
		return s.updateTaskErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.tasks {
		if s.tasks[i].ID == t.ID && s.tasks[i].UserID == t.UserID {
			s.tasks[i] = *t
			return nil
		}
	}
	return domain.ErrNotFound
}

func (s *mockStore) DeleteTask(_ context.Context, id, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.tasks {
		if s.tasks[i].ID == id && s.tasks[i].UserID == userID {
			s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

func (s *mockStore) SearchTasksByTitle(_ context.Context, pattern, userID string) ([]task.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	needle := strings.ToLower(pattern)
	var out []task.Task
	for _, t := range s.tasks {
		if t.UserID == userID && strings.Contains(strings.ToLower(t.Title), needle) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *mockStore) CreateUser(_ context.Context, u *user.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Username == u.Username {
			return domain.ErrConflict
		}
	}
	s.users = append(s.users, *u)
	return nil
}

func (s *mockStore) GetUser(_ context.Context, id string) (*user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.ID == id {
			cp := u
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *mockStore) GetUserByUsername(_ context.Context, username string) (*user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == username {
			cp := u
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *mockStore) ListUsers(_ context.Context) ([]user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]user.User(nil), s.users...), nil
}

func (s *mockStore) UpdateUserPassword(_ context.Context, id, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.users {
		if s.users[i].ID == id {
			s.users[i].PasswordHash = passwordHash
			return nil
		}
	}
	return domain.ErrNotFound
}

// mockQueue implements messagequeue.Queue for testing.
type mockQueue struct {
	published []struct {
		subject string
		data    []byte
	}
	publishErr error
}

func (q *mockQueue) Publish(_ context.Context, subject string, data []byte) error {
	if q.publishErr != nil {
		return q.publishErr
	}
	q.published = append(q.published, struct {
		subject string
		data    []byte
	}{subject, data})
	return nil
}

func (q *mockQueue) Subscribe(_ context.Context, _ string, _ messagequeue.Handler) (func(), error) {
	return func() {}, nil
}

func (q *mockQueue) Close() error { return nil }

// mockCache is a TTL-less in-memory cache.Cache for testing.
type mockCache struct {
	mu      sync.Mutex
	entries map[string][]byte
}

func newMockCache() *mockCache {
	return &mockCache{entries: map[string][]byte{}}
}

func (c *mockCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.entries[key]
	return v, ok, nil
}

func (c *mockCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = value
	return nil
}

func (c *mockCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	return nil
}
