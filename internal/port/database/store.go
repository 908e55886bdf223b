// Package database defines the database store port (interface).
package database

import (
	"context"

	"github.com/dayplanhq/dayplan/internal/domain/task"
	"github.com/dayplanhq/dayplan/internal/domain/user"
)

// Store is the port interface for database operations.
//
// Every task operation is scoped to a user ID: implementations must never
// return or mutate a task belonging to a different user, even when the task
// ID or title matches.
type Store interface {
	// Tasks
	CreateTask(ctx context.Context, t *task.Task) error
	GetTask(ctx context.Context, id, userID string) (*task.Task, error)
	ListTasks(ctx context.Context, userID string, state *task.State) ([]task.Task, error)
	UpdateTask(ctx context.Context, t *task.Task) error
	DeleteTask(ctx context.Context, id, userID string) error
	// SearchTasksByTitle returns the user's tasks whose title contains
	// pattern (case-insensitive substring, no ranking).
	SearchTasksByTitle(ctx context.Context, pattern, userID string) ([]task.Task, error)

	// Users
	CreateUser(ctx context.Context, u *user.User) error
	GetUser(ctx context.Context, id string) (*user.User, error)
	GetUserByUsername(ctx context.Context, username string) (*user.User, error)
	ListUsers(ctx context.Context) ([]user.User, error)
	UpdateUserPassword(ctx context.Context, id, passwordHash string) error
}
