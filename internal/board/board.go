// Package board holds the in-memory kanban view of one user's tasks and keeps
// it in step with the task store.
//
// Mutations go to the store first and only then touch the view, except Move,
// which applies the new status tentatively and resynchronizes from the store
// if the commit fails.
package board

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"todo/internal/logging"
	"todo/internal/service"
)

// DefaultInterval is how often Watch sweeps for overdue tasks.
const DefaultInterval = time.Hour

// Columns is the view split by status, each in storage order.
type Columns struct {
	Todo    []service.Task
	Overdue []service.Task
	Done    []service.Task
}

// Get returns the column for status.
func (c Columns) Get(status service.Status) []service.Task {
	switch status {
	case service.StatusTodo:
		return c.Todo
	case service.StatusOverdue:
		return c.Overdue
	case service.StatusDone:
		return c.Done
	}
	return nil
}

// Len returns the total number of tasks across columns.
func (c Columns) Len() int {
	return len(c.Todo) + len(c.Overdue) + len(c.Done)
}

// Board is one user's view state. Safe for concurrent use.
type Board struct {
	store  service.TaskStore
	userID string
	logger *log.Logger

	// Now is the clock for the overdue rule.
	Now func() time.Time

	mu    sync.Mutex
	tasks []service.Task
}

// New creates an empty board for userID. Call Refresh to load it.
func New(store service.TaskStore, userID string, logger *log.Logger) *Board {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Board{store: store, userID: userID, logger: logger, Now: time.Now}
}

// UserID returns the board owner.
func (b *Board) UserID() string {
	return b.userID
}

// Refresh replaces the view with the store's authoritative list.
func (b *Board) Refresh(ctx context.Context) error {
	tasks, err := b.store.ListTasks(ctx, b.userID)
	if err != nil {
		return err
	}
	b.mu.Lock()
	b.tasks = tasks
	b.mu.Unlock()
	return nil
}

// Tasks returns a copy of the view in storage order.
func (b *Board) Tasks() []service.Task {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]service.Task(nil), b.tasks...)
}

// Columns splits the view by status.
func (b *Board) Columns() Columns {
	b.mu.Lock()
	defer b.mu.Unlock()
	var c Columns
	for _, t := range b.tasks {
		switch t.Status {
		case service.StatusTodo:
			c.Todo = append(c.Todo, t)
		case service.StatusOverdue:
			c.Overdue = append(c.Overdue, t)
		case service.StatusDone:
			c.Done = append(c.Done, t)
		}
	}
	return c
}

// Create adds a task through the store and appends it to the view.
func (b *Board) Create(ctx context.Context, in service.NewTask) (service.Task, error) {
	task, err := b.store.CreateTask(ctx, b.userID, in)
	if err != nil {
		return service.Task{}, err
	}
	task = b.present(task)
	b.mu.Lock()
	b.tasks = append(b.tasks, task)
	b.mu.Unlock()
	return task, nil
}

// Update patches a task through the store and replaces it in the view.
func (b *Board) Update(ctx context.Context, taskID string, patch service.TaskPatch) (service.Task, error) {
	task, err := b.store.UpdateTask(ctx, taskID, patch)
	if err != nil {
		return service.Task{}, err
	}
	task = b.present(task)
	b.replace(task)
	return task, nil
}

// Delete removes a task through the store and drops it from the view.
func (b *Board) Delete(ctx context.Context, taskID string) error {
	if err := b.store.DeleteTask(ctx, taskID); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if i := b.index(taskID); i >= 0 {
		b.tasks = append(b.tasks[:i], b.tasks[i+1:]...)
	}
	return nil
}

// Move changes a task's status in two phases. The new status is applied to
// the view immediately, then committed to the store. If the commit fails the
// tentative state is discarded by reloading the view from the store, and the
// commit error is returned.
//
// Moving a task to todo while its due date is already past also clears the
// due date, so the next sweep does not flip it straight back to overdue.
func (b *Board) Move(ctx context.Context, taskID string, to service.Status) (service.Task, error) {
	if !to.Valid() {
		return service.Task{}, &service.ValidationError{Field: "status", Msg: "unknown status " + string(to)}
	}

	b.mu.Lock()
	i := b.index(taskID)
	if i < 0 {
		b.mu.Unlock()
		return service.Task{}, service.ErrNotFound
	}
	current := b.tasks[i]
	if current.Status == to {
		b.mu.Unlock()
		return current, nil
	}

	patch := service.SettleDue(current, service.TaskPatch{Status: &to}, b.Now())
	b.tasks[i] = patch.Apply(current)
	b.mu.Unlock()

	updated, err := b.store.UpdateTask(ctx, taskID, patch)
	if err != nil {
		b.logger.Warn("move failed, resynchronizing", "id", taskID, "to", to, "err", err)
		if rerr := b.Refresh(ctx); rerr != nil {
			b.logger.Error("resynchronize after failed move", "err", rerr)
			b.replace(current)
		}
		return service.Task{}, err
	}

	updated = b.present(updated)
	b.replace(updated)
	b.logger.Debug("moved task", "id", taskID, "from", current.Status, "to", updated.Status)
	return updated, nil
}

// Tick runs one overdue sweep and reloads the view if anything changed.
// It reports whether the view changed.
func (b *Board) Tick(ctx context.Context) (bool, error) {
	n, err := b.store.SweepOverdue(ctx, b.userID)
	if err != nil {
		return false, err
	}
	if n == 0 {
		return false, nil
	}
	b.logger.Info("tasks became overdue", "count", n)
	if err := b.Refresh(ctx); err != nil {
		return false, err
	}
	return true, nil
}

// Watch calls Tick every interval until ctx is cancelled, invoking onChange
// after each tick that changed the view. Tick errors are logged and the loop
// keeps going. A non-positive interval uses DefaultInterval.
func (b *Board) Watch(ctx context.Context, interval time.Duration, onChange func()) {
	if interval <= 0 {
		interval = DefaultInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	b.logger.Debug("watch started", "interval", interval)

	for {
		select {
		case <-ctx.Done():
			b.logger.Debug("watch stopping", "reason", ctx.Err())
			return
		case <-ticker.C:
			changed, err := b.Tick(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				b.logger.Warn("overdue sweep failed", "err", err)
				continue
			}
			if changed && onChange != nil {
				onChange()
			}
		}
	}
}

// present applies the overdue rule to a single task fresh from the store.
func (b *Board) present(t service.Task) service.Task {
	return service.Present([]service.Task{t}, b.Now())[0]
}

func (b *Board) replace(t service.Task) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if i := b.index(t.ID); i >= 0 {
		b.tasks[i] = t
	}
}

// index must be called with mu held.
func (b *Board) index(taskID string) int {
	for i, t := range b.tasks {
		if t.ID == taskID {
			return i
		}
	}
	return -1
}
