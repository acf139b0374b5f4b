// Package output provides formatters for CLI output.
package output

import (
	"fmt"
	"io"
	"strings"
	"time"

	"todo/internal/service"
)

const (
	// ListSeparator is the separator line for column sections.
	ListSeparator = "------------"

	// DateLayout is how due dates are read and printed.
	DateLayout = "2006-01-02"

	timeLayout = "2006-01-02 15:04"
)

// ColumnTitle returns the board heading for a status.
func ColumnTitle(status service.Status) string {
	switch status {
	case service.StatusTodo:
		return "To Do"
	case service.StatusOverdue:
		return "Overdue"
	case service.StatusDone:
		return "Done"
	}
	return string(status)
}

// ColumnLetter returns the task reference letter for a status column.
func ColumnLetter(status service.Status) rune {
	switch status {
	case service.StatusOverdue:
		return 'o'
	case service.StatusDone:
		return 'd'
	}
	return 't'
}

// FormatTask formats a task line for the flat list.
// Format: "{N:>4}  {STATUS:<8} {TITLE}[  due {DATE}]\n"
func FormatTask(w io.Writer, num int, task service.Task) {
	fmt.Fprintf(w, "%4d  %-8s %s%s\n", num, task.Status, normalizeTitle(task.Title), dueSuffix(task))
}

// FormatTaskWithLetter formats a task line inside a column section.
// Format: "  {L}{N:<3} {TITLE}[  due {DATE}]\n"
func FormatTaskWithLetter(w io.Writer, letter rune, num int, task service.Task) {
	fmt.Fprintf(w, "  %c%-3d %s%s\n", letter, num, normalizeTitle(task.Title), dueSuffix(task))
}

// FormatColumnHeader formats a column section header.
func FormatColumnHeader(w io.Writer, status service.Status, count int) {
	fmt.Fprintln(w, ListSeparator)
	fmt.Fprintf(w, "%s (%d)\n", ColumnTitle(status), count)
	fmt.Fprintln(w, ListSeparator)
}

// FormatTaskDetail prints every field of a task.
func FormatTaskDetail(w io.Writer, task service.Task) {
	fmt.Fprintf(w, "Title:       %s\n", normalizeTitle(task.Title))
	fmt.Fprintf(w, "Status:      %s\n", task.Status)
	if due := FormatDue(task.ExpectedCompletionDate); due != "" {
		fmt.Fprintf(w, "Due:         %s\n", due)
	}
	fmt.Fprintf(w, "Created:     %s\n", task.CreatedAt.Local().Format(timeLayout))
	if task.Description != "" {
		fmt.Fprintf(w, "Description: %s\n", task.Description)
	}
	fmt.Fprintf(w, "ID:          %s\n", task.ID)
}

// FormatUser formats the session user.
func FormatUser(w io.Writer, u service.User) {
	fmt.Fprintf(w, "%s <%s>\n", u.Name, u.Email)
}

// FormatDue returns the due date as YYYY-MM-DD, or "" if unset.
func FormatDue(due *time.Time) string {
	if due == nil {
		return ""
	}
	return due.Format(DateLayout)
}

// ParseDue parses a YYYY-MM-DD date as local midnight.
func ParseDue(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, strings.TrimSpace(s), time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD)", s)
	}
	return t, nil
}

func dueSuffix(task service.Task) string {
	if due := FormatDue(task.ExpectedCompletionDate); due != "" {
		return "  due " + due
	}
	return ""
}

// normalizeTitle normalizes a task title for display.
// - Empty or whitespace-only titles become "(untitled)"
// - Newlines are replaced with spaces
func normalizeTitle(title string) string {
	// Replace newlines with spaces
	title = strings.ReplaceAll(title, "\r", " ")
	title = strings.ReplaceAll(title, "\n", " ")

	// Trim and check for empty
	if strings.TrimSpace(title) == "" {
		return "(untitled)"
	}
	return title
}
