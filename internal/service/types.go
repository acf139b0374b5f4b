// Package service defines the backend-agnostic types and interfaces for accounts and tasks.
package service

import (
	"fmt"
	"strings"
	"time"
)

// MaxTitleLength is the maximum task title length in runes.
const MaxTitleLength = 100

// User is an account record. Immutable after registration.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Status is the column a task lives in.
type Status string

const (
	StatusTodo    Status = "todo"
	StatusOverdue Status = "overdue"
	StatusDone    Status = "done"
)

// Statuses lists every status in board column order.
var Statuses = []Status{StatusTodo, StatusOverdue, StatusDone}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusTodo, StatusOverdue, StatusDone:
		return true
	}
	return false
}

// ParseStatus parses a status name (case-insensitive, trimmed).
func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	if !st.Valid() {
		return "", &ValidationError{Field: "status", Msg: fmt.Sprintf("unknown status %q (want todo, overdue or done)", s)}
	}
	return st, nil
}

// Task is a single to-do item owned by one user.
type Task struct {
	ID                     string     `json:"id"`
	Title                  string     `json:"title"`
	Description            string     `json:"description,omitempty"`
	Status                 Status     `json:"status"`
	CreatedAt              time.Time  `json:"createdAt"`
	UserID                 string     `json:"userId"`
	ExpectedCompletionDate *time.Time `json:"expectedCompletionDate,omitempty"`
}

// NewTask holds the caller-supplied fields of a task being created.
// Status defaults to todo when empty.
type NewTask struct {
	Title                  string
	Description            string
	Status                 Status
	ExpectedCompletionDate *time.Time
}

// TaskPatch is a partial update. Nil fields keep their stored value.
// ClearDue removes the due date and wins over ExpectedCompletionDate.
type TaskPatch struct {
	Title                  *string
	Description            *string
	Status                 *Status
	ExpectedCompletionDate *time.Time
	ClearDue               bool
}

// IsEmpty reports whether the patch changes nothing.
func (p TaskPatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.Status == nil &&
		p.ExpectedCompletionDate == nil && !p.ClearDue
}

// Apply returns t with the patch merged over it.
func (p TaskPatch) Apply(t Task) Task {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.ExpectedCompletionDate != nil {
		due := *p.ExpectedCompletionDate
		t.ExpectedCompletionDate = &due
	}
	if p.ClearDue {
		t.ExpectedCompletionDate = nil
	}
	return t
}
