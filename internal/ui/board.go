// Package ui provides the interactive terminal board.
package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"todo/internal/board"
	"todo/internal/output"
	"todo/internal/service"
)

const columnWidth = 30

// Run starts the board program and blocks until the user quits or ctx ends.
func Run(ctx context.Context, b *board.Board, sweepInterval time.Duration, out io.Writer) error {
	if !IsTTY(out) {
		return errors.New("board requires a terminal")
	}
	program := tea.NewProgram(NewModel(ctx, b, sweepInterval), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := program.Run()
	return err
}

// Model is the bubbletea model for the kanban board.
type Model struct {
	ctx      context.Context
	board    *board.Board
	interval time.Duration

	col      int
	row      [3]int
	status   string
	err      error
	busy     bool
	showHelp bool
}

type sweepTickMsg time.Time

// resultMsg reports the outcome of a store call run as a command.
type resultMsg struct {
	status string
	err    error
}

// NewModel creates a board model. ctx bounds every store call.
func NewModel(ctx context.Context, b *board.Board, sweepInterval time.Duration) *Model {
	if sweepInterval <= 0 {
		sweepInterval = board.DefaultInterval
	}
	return &Model{ctx: ctx, board: b, interval: sweepInterval}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	m.busy = true
	return tea.Batch(m.refreshCmd(), sweepTickCmd(m.interval))
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m, m.handleKey(msg)
	case sweepTickMsg:
		return m, tea.Batch(m.sweepCmd(), sweepTickCmd(m.interval))
	case resultMsg:
		m.busy = false
		m.err = msg.err
		if msg.err == nil && msg.status != "" {
			m.status = msg.status
		}
		m.clamp()
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "ctrl+c", "q":
		return tea.Quit
	case "?":
		m.showHelp = !m.showHelp
		return nil
	case "left", "h":
		m.col = (m.col + len(service.Statuses) - 1) % len(service.Statuses)
	case "right", "l":
		m.col = (m.col + 1) % len(service.Statuses)
	case "up", "k":
		if m.row[m.col] > 0 {
			m.row[m.col]--
		}
	case "down", "j":
		m.row[m.col]++
	case "r":
		m.busy = true
		return m.refreshCmd()
	case "[":
		if m.col > 0 {
			return m.moveCmd(service.Statuses[m.col-1])
		}
	case "]":
		if m.col < len(service.Statuses)-1 {
			return m.moveCmd(service.Statuses[m.col+1])
		}
	case "t":
		return m.moveCmd(service.StatusTodo)
	case "o":
		return m.moveCmd(service.StatusOverdue)
	case "d":
		return m.moveCmd(service.StatusDone)
	case "x":
		return m.deleteCmd()
	}
	m.clamp()
	return nil
}

// Selected returns the task under the cursor, if any.
func (m *Model) Selected() (service.Task, bool) {
	tasks := m.board.Columns().Get(service.Statuses[m.col])
	r := m.row[m.col]
	if r < 0 || r >= len(tasks) {
		return service.Task{}, false
	}
	return tasks[r], true
}

func (m *Model) clamp() {
	cols := m.board.Columns()
	for i, st := range service.Statuses {
		n := len(cols.Get(st))
		if m.row[i] >= n {
			m.row[i] = n - 1
		}
		if m.row[i] < 0 {
			m.row[i] = 0
		}
	}
}

func (m *Model) refreshCmd() tea.Cmd {
	return func() tea.Msg {
		if err := m.board.Refresh(m.ctx); err != nil {
			return resultMsg{err: err}
		}
		return resultMsg{status: "refreshed"}
	}
}

func (m *Model) sweepCmd() tea.Cmd {
	return func() tea.Msg {
		changed, err := m.board.Tick(m.ctx)
		if err != nil {
			return resultMsg{err: err}
		}
		if changed {
			return resultMsg{status: "some tasks became overdue"}
		}
		return resultMsg{}
	}
}

func (m *Model) moveCmd(to service.Status) tea.Cmd {
	task, ok := m.Selected()
	if !ok || task.Status == to {
		return nil
	}
	m.busy = true
	return func() tea.Msg {
		moved, err := m.board.Move(m.ctx, task.ID, to)
		if err != nil {
			return resultMsg{err: err}
		}
		return resultMsg{status: fmt.Sprintf("moved %q to %s", moved.Title, output.ColumnTitle(to))}
	}
}

func (m *Model) deleteCmd() tea.Cmd {
	task, ok := m.Selected()
	if !ok {
		return nil
	}
	m.busy = true
	return func() tea.Msg {
		if err := m.board.Delete(m.ctx, task.ID); err != nil {
			return resultMsg{err: err}
		}
		return resultMsg{status: fmt.Sprintf("deleted %q", task.Title)}
	}
}

func sweepTickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return sweepTickMsg(t)
	})
}

// View implements tea.Model.
func (m *Model) View() string {
	var b strings.Builder
	b.WriteString("todo board\n")
	b.WriteString(strings.Repeat("=", len("todo board")) + "\n\n")

	if m.showHelp {
		writeHelp(&b)
		return b.String()
	}

	writeColumns(&b, m.board.Columns(), m.col, m.row)
	b.WriteString("\n")

	switch {
	case m.err != nil:
		b.WriteString("error: " + m.err.Error() + "\n")
	case m.busy:
		b.WriteString("working...\n")
	case m.status != "":
		b.WriteString(m.status + "\n")
	default:
		b.WriteString("\n")
	}
	b.WriteString(fmt.Sprintf("? help | q quit | sweeping every %s\n", m.interval))
	return b.String()
}

func writeColumns(b *strings.Builder, cols board.Columns, selCol int, selRow [3]int) {
	height := 0
	for i, st := range service.Statuses {
		title := fmt.Sprintf("%s (%d)", output.ColumnTitle(st), len(cols.Get(st)))
		if i == selCol {
			title = "[" + title + "]"
		}
		b.WriteString(pad(title, columnWidth))
		if n := len(cols.Get(st)); n > height {
			height = n
		}
	}
	b.WriteString("\n")
	for range service.Statuses {
		b.WriteString(pad(strings.Repeat("-", columnWidth-2), columnWidth))
	}
	b.WriteString("\n")

	for r := 0; r < height; r++ {
		for i, st := range service.Statuses {
			tasks := cols.Get(st)
			cell := ""
			if r < len(tasks) {
				marker := "  "
				if i == selCol && r == selRow[i] {
					marker = "> "
				}
				cell = marker + truncate(tasks[r].Title, columnWidth-4)
			}
			b.WriteString(pad(cell, columnWidth))
		}
		b.WriteString("\n")
	}
	if height == 0 {
		b.WriteString("  No tasks. Add one with: todo add <title>\n")
	}
}

func writeHelp(b *strings.Builder) {
	b.WriteString("Keyboard Shortcuts\n\n")
	b.WriteString("  left/right, h/l   Select column\n")
	b.WriteString("  up/down, k/j      Select task\n")
	b.WriteString("  [ ]               Move task to previous/next column\n")
	b.WriteString("  t o d             Move task to To Do / Overdue / Done\n")
	b.WriteString("  x                 Delete task\n")
	b.WriteString("  r                 Reload from storage\n")
	b.WriteString("  ?                 Toggle this help screen\n")
	b.WriteString("  q, ctrl+c         Quit\n")
}

func pad(s string, width int) string {
	n := len([]rune(s))
	if n >= width {
		return s
	}
	return s + strings.Repeat(" ", width-n)
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}

// IsTTY returns true if w is a terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
