package service

import "context"

// AccountStore owns the user directory and the current session.
type AccountStore interface {
	// Register creates a user and makes it the current session.
	// Fails with ErrDuplicateEmail if the email is taken.
	Register(ctx context.Context, name, email, password string) (User, error)

	// Login verifies the credentials and makes the user the current session.
	// Fails with ErrInvalidCredentials.
	Login(ctx context.Context, email, password string) (User, error)

	// Logout clears the current session. Logging out twice is not an error.
	Logout(ctx context.Context) error

	// CurrentUser returns the session user, or nil if nobody is logged in.
	CurrentUser(ctx context.Context) (*User, error)
}

// TaskStore owns every user's tasks. Reads are always scoped by user id.
type TaskStore interface {
	// ListTasks returns the user's tasks in insertion order, with past-due
	// todo tasks presented as overdue.
	ListTasks(ctx context.Context, userID string) ([]Task, error)

	// GetTask returns a task by id as stored. Fails with ErrNotFound.
	GetTask(ctx context.Context, taskID string) (Task, error)

	// CreateTask assigns an id and creation time and stores the task.
	CreateTask(ctx context.Context, userID string, in NewTask) (Task, error)

	// UpdateTask shallow-merges patch over the stored task. Fails with ErrNotFound.
	UpdateTask(ctx context.Context, taskID string, patch TaskPatch) (Task, error)

	// DeleteTask removes a task. Deleting an unknown id is not an error.
	DeleteTask(ctx context.Context, taskID string) error

	// SweepOverdue persists todo -> overdue for the user's past-due tasks and
	// returns how many changed.
	SweepOverdue(ctx context.Context, userID string) (int, error)
}

// Service is everything a command can operate on.
// Commands never import a storage backend directly.
type Service interface {
	AccountStore
	TaskStore
}

type composite struct {
	AccountStore
	TaskStore
}

// Compose joins an account store and a task store into a Service.
func Compose(accounts AccountStore, tasks TaskStore) Service {
	return composite{AccountStore: accounts, TaskStore: tasks}
}
