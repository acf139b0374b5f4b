package output

import (
	"bytes"
	"testing"
	"time"

	"todo/internal/service"
)

func TestFormatTask(t *testing.T) {
	due := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		task service.Task
		want string
	}{
		{"plain", service.Task{Title: "Buy milk", Status: service.StatusTodo}, "   3  todo     Buy milk\n"},
		{"with due", service.Task{Title: "Pay rent", Status: service.StatusOverdue, ExpectedCompletionDate: &due}, "   3  overdue  Pay rent  due 2024-01-01\n"},
		{"newline", service.Task{Title: "a\nb", Status: service.StatusDone}, "   3  done     a b\n"},
		{"blank", service.Task{Title: "  ", Status: service.StatusTodo}, "   3  todo     (untitled)\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			FormatTask(&buf, 3, tt.task)
			if buf.String() != tt.want {
				t.Errorf("expected %q, got %q", tt.want, buf.String())
			}
		})
	}
}

func TestFormatColumn(t *testing.T) {
	var buf bytes.Buffer
	FormatColumnHeader(&buf, service.StatusOverdue, 1)
	FormatTaskWithLetter(&buf, ColumnLetter(service.StatusOverdue), 1, service.Task{Title: "Pay rent"})
	FormatTaskWithLetter(&buf, ColumnLetter(service.StatusOverdue), 12, service.Task{Title: "Call bank"})

	want := "------------\nOverdue (1)\n------------\n  o1   Pay rent\n  o12  Call bank\n"
	if buf.String() != want {
		t.Errorf("expected %q, got %q", want, buf.String())
	}
}

func TestParseDue(t *testing.T) {
	got, err := ParseDue(" 2024-06-01 ")
	if err != nil {
		t.Fatal(err)
	}
	if got.Year() != 2024 || got.Month() != time.June || got.Day() != 1 || got.Hour() != 0 {
		t.Errorf("unexpected date %v", got)
	}
	if got.Location() != time.Local {
		t.Errorf("expected local time, got %v", got.Location())
	}

	for _, bad := range []string{"", "06/01/2024", "2024-13-01", "tomorrow"} {
		if _, err := ParseDue(bad); err == nil {
			t.Errorf("ParseDue(%q) expected error", bad)
		}
	}
}
