// Package tasks implements service.TaskStore over a storage.Repository.
// Every user's tasks share one persisted collection, todo_app_tasks, in
// insertion order; reads filter by owner.
package tasks

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"todo/internal/logging"
	"todo/internal/service"
	"todo/internal/storage"
)

// Store is the task store. Safe for concurrent use. An operation runs to
// completion once issued; cancelling its context does not abort the write.
type Store struct {
	repo   storage.Repository
	logger *log.Logger

	// Now is the clock used for creation times and the overdue rule.
	Now func() time.Time

	// NewID generates task ids. Defaults to uuid.NewString.
	NewID func() string

	mu sync.Mutex
}

var _ service.TaskStore = (*Store)(nil)

// New creates a task store. A nil logger discards output.
func New(repo storage.Repository, logger *log.Logger) *Store {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Store{
		repo:   repo,
		logger: logger,
		Now:    time.Now,
		NewID:  uuid.NewString,
	}
}

// ValidateTitle trims title and checks it is 1..MaxTitleLength runes.
func ValidateTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", &service.ValidationError{Field: "title", Msg: "required"}
	}
	if n := utf8.RuneCountInString(title); n > service.MaxTitleLength {
		return "", &service.ValidationError{
			Field: "title",
			Msg:   fmt.Sprintf("too long (%d characters, max %d)", n, service.MaxTitleLength),
		}
	}
	return title, nil
}

func validateStatus(s service.Status) error {
	if !s.Valid() {
		return &service.ValidationError{Field: "status", Msg: fmt.Sprintf("unknown status %q", s)}
	}
	return nil
}

// ListTasks implements service.TaskStore.
func (s *Store) ListTasks(ctx context.Context, userID string) ([]service.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ctx = context.WithoutCancel(ctx)

	all, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	owned := make([]service.Task, 0, len(all))
	for _, t := range all {
		if t.UserID == userID {
			owned = append(owned, t)
		}
	}
	return service.Present(owned, s.Now()), nil
}

// GetTask implements service.TaskStore. The task is returned as stored,
// without the overdue presentation.
func (s *Store) GetTask(ctx context.Context, taskID string) (service.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ctx = context.WithoutCancel(ctx)

	all, err := s.load(ctx)
	if err != nil {
		return service.Task{}, err
	}
	i := indexOf(all, taskID)
	if i < 0 {
		return service.Task{}, service.ErrNotFound
	}
	return all[i], nil
}

// CreateTask implements service.TaskStore.
func (s *Store) CreateTask(ctx context.Context, userID string, in service.NewTask) (service.Task, error) {
	if userID == "" {
		return service.Task{}, &service.ValidationError{Field: "userId", Msg: "required"}
	}
	title, err := ValidateTitle(in.Title)
	if err != nil {
		return service.Task{}, err
	}
	status := in.Status
	if status == "" {
		status = service.StatusTodo
	}
	if err := validateStatus(status); err != nil {
		return service.Task{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	ctx = context.WithoutCancel(ctx)

	all, err := s.load(ctx)
	if err != nil {
		return service.Task{}, err
	}

	task := service.Task{
		ID:          s.NewID(),
		Title:       title,
		Description: strings.TrimSpace(in.Description),
		Status:      status,
		CreatedAt:   s.Now(),
		UserID:      userID,
	}
	if in.ExpectedCompletionDate != nil {
		due := *in.ExpectedCompletionDate
		task.ExpectedCompletionDate = &due
	}

	if err := s.save(ctx, append(all, task)); err != nil {
		return service.Task{}, err
	}
	s.logger.Debug("created task", "id", task.ID, "user", userID, "status", task.Status)
	return task, nil
}

// UpdateTask implements service.TaskStore. An empty patch returns the stored
// task without writing.
func (s *Store) UpdateTask(ctx context.Context, taskID string, patch service.TaskPatch) (service.Task, error) {
	if patch.Title != nil {
		title, err := ValidateTitle(*patch.Title)
		if err != nil {
			return service.Task{}, err
		}
		patch.Title = &title
	}
	if patch.Status != nil {
		if err := validateStatus(*patch.Status); err != nil {
			return service.Task{}, err
		}
	}
	if patch.Description != nil {
		desc := strings.TrimSpace(*patch.Description)
		patch.Description = &desc
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	ctx = context.WithoutCancel(ctx)

	all, err := s.load(ctx)
	if err != nil {
		return service.Task{}, err
	}
	i := indexOf(all, taskID)
	if i < 0 {
		return service.Task{}, service.ErrNotFound
	}
	if patch.IsEmpty() {
		return all[i], nil
	}

	all[i] = patch.Apply(all[i])
	if err := s.save(ctx, all); err != nil {
		return service.Task{}, err
	}
	s.logger.Debug("updated task", "id", taskID, "status", all[i].Status)
	return all[i], nil
}

// DeleteTask implements service.TaskStore.
func (s *Store) DeleteTask(ctx context.Context, taskID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ctx = context.WithoutCancel(ctx)

	all, err := s.load(ctx)
	if err != nil {
		return err
	}
	i := indexOf(all, taskID)
	if i < 0 {
		s.logger.Debug("delete: no such task", "id", taskID)
		return nil
	}
	all = append(all[:i], all[i+1:]...)
	if err := s.save(ctx, all); err != nil {
		return err
	}
	s.logger.Debug("deleted task", "id", taskID)
	return nil
}

// SweepOverdue implements service.TaskStore. Nothing is written when no
// task changes, so repeated sweeps on the same day are no-ops.
func (s *Store) SweepOverdue(ctx context.Context, userID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ctx = context.WithoutCancel(ctx)

	all, err := s.load(ctx)
	if err != nil {
		return 0, err
	}
	now := s.Now()
	changed := 0
	for i := range all {
		if all[i].UserID == userID && service.IsPastDue(all[i], now) {
			all[i].Status = service.StatusOverdue
			changed++
		}
	}
	if changed == 0 {
		return 0, nil
	}
	if err := s.save(ctx, all); err != nil {
		return 0, err
	}
	s.logger.Debug("swept overdue tasks", "user", userID, "changed", changed)
	return changed, nil
}

func (s *Store) load(ctx context.Context) ([]service.Task, error) {
	var all []service.Task
	if _, err := storage.LoadJSON(ctx, s.repo, storage.KeyTasks, &all); err != nil {
		return nil, err
	}
	return all, nil
}

func (s *Store) save(ctx context.Context, all []service.Task) error {
	if all == nil {
		all = []service.Task{}
	}
	return storage.SaveJSON(ctx, s.repo, storage.KeyTasks, all)
}

func indexOf(all []service.Task, taskID string) int {
	for i, t := range all {
		if t.ID == taskID {
			return i
		}
	}
	return -1
}
