package service

import "time"

// StartOfDay returns midnight of t's calendar day in t's location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// IsPastDue reports whether a todo task's due date falls strictly before
// the start of now's day. Time of day is ignored; done and overdue tasks
// are never past due.
func IsPastDue(t Task, now time.Time) bool {
	if t.Status != StatusTodo || t.ExpectedCompletionDate == nil {
		return false
	}
	return t.ExpectedCompletionDate.Before(StartOfDay(now))
}

// Present returns a copy of tasks with past-due todo tasks shown as overdue.
// The input slice is not modified.
func Present(tasks []Task, now time.Time) []Task {
	out := make([]Task, len(tasks))
	for i, t := range tasks {
		if IsPastDue(t, now) {
			t.Status = StatusOverdue
		}
		out[i] = t
	}
	return out
}

// SettleDue returns p with ClearDue set when p moves t back to todo while
// t's due date is already past, so the next sweep does not flip it straight
// back to overdue. A patch that sets its own due date is left alone.
func SettleDue(t Task, p TaskPatch, now time.Time) TaskPatch {
	if p.Status == nil || *p.Status != StatusTodo || p.ExpectedCompletionDate != nil {
		return p
	}
	if IsPastDue(p.Apply(t), now) {
		p.ClearDue = true
	}
	return p
}
