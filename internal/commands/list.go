package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"todo/internal/config"
	"todo/internal/exitcode"
	"todo/internal/output"
	"todo/internal/service"
)

func init() {
	Register(&ListCmd{})
}

// ListCmd implements the list command.
// Handles both `todo` (no args) and `todo list [--status s] [--flat]`.
type ListCmd struct {
	status string
	flat   bool
}

// SetStatus sets the status filter (for testing).
func (c *ListCmd) SetStatus(status string) {
	c.status = status
}

func (c *ListCmd) Name() string       { return "list" }
func (c *ListCmd) Aliases() []string  { return []string{"ls"} }
func (c *ListCmd) Synopsis() string   { return "List tasks by column" }
func (c *ListCmd) Usage() string      { return "todo list [--status <todo|overdue|done>] [--flat]" }
func (c *ListCmd) Needs() Requirement { return NeedsSession }

func (c *ListCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.status, "status", "", "")
	fs.StringVar(&c.status, "s", "", "")
	fs.BoolVar(&c.flat, "flat", false, "")
}

func (c *ListCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	user, ok := sessionUser(ctx, errOut)
	if !ok {
		return exitcode.AuthError
	}
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}

	columns := service.Statuses
	if c.status != "" {
		st, err := service.ParseStatus(c.status)
		if err != nil {
			return Fail(errOut, err)
		}
		columns = []service.Status{st}
	}

	tasks, err := svc.ListTasks(ctx, user.ID)
	if err != nil {
		return Fail(errOut, err)
	}

	if c.flat {
		return c.listFlat(cfg, tasks, columns, out)
	}

	if len(tasks) == 0 {
		if !cfg.Quiet {
			fmt.Fprintln(out, "no tasks found")
		}
		return exitcode.Success
	}

	for _, st := range columns {
		var col []service.Task
		for _, t := range tasks {
			if t.Status == st {
				col = append(col, t)
			}
		}
		output.FormatColumnHeader(out, st, len(col))
		letter := output.ColumnLetter(st)
		for i, t := range col {
			output.FormatTaskWithLetter(out, letter, i+1, t)
		}
	}
	return exitcode.Success
}

// listFlat prints tasks numbered by their position in the full list, so the
// numbers stay valid as bare references even when filtered.
func (c *ListCmd) listFlat(cfg *config.Config, tasks []service.Task, columns []service.Status, out io.Writer) int {
	want := make(map[service.Status]bool, len(columns))
	for _, st := range columns {
		want[st] = true
	}

	printed := 0
	for i, t := range tasks {
		if !want[t.Status] {
			continue
		}
		output.FormatTask(out, i+1, t)
		printed++
	}
	if printed == 0 && !cfg.Quiet {
		fmt.Fprintln(out, "no tasks found")
	}
	return exitcode.Success
}
