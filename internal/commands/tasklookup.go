package commands

import (
	"context"
	"fmt"

	"todo/internal/service"
)

// findTask loads the user's tasks and resolves ref against them.
func findTask(ctx context.Context, svc service.Service, userID string, ref TaskRef) (service.Task, error) {
	tasks, err := svc.ListTasks(ctx, userID)
	if err != nil {
		return service.Task{}, err
	}
	return ResolveTaskRef(ref, tasks)
}

// ResolveTaskRef picks the referenced task from a presented task list.
// Bare numbers index the whole list; lettered references index one column.
// Both keep storage order, matching what list prints.
func ResolveTaskRef(ref TaskRef, tasks []service.Task) (service.Task, error) {
	candidates := tasks
	if ref.HasLetter {
		candidates = nil
		for _, t := range tasks {
			if t.Status == ref.Column {
				candidates = append(candidates, t)
			}
		}
	}
	if ref.TaskNum < 1 || ref.TaskNum > len(candidates) {
		return service.Task{}, fmt.Errorf("%w: %s", ErrTaskOutOfRange, ref)
	}
	return candidates[ref.TaskNum-1], nil
}
