package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"time"

	"todo/internal/config"
	"todo/internal/exitcode"
	"todo/internal/output"
	"todo/internal/service"
)

func init() {
	Register(&AddCmd{})
}

// AddCmd implements the add command.
type AddCmd struct {
	desc   string
	due    string
	status string
}

func (c *AddCmd) Name() string      { return "add" }
func (c *AddCmd) Aliases() []string { return []string{"create"} }
func (c *AddCmd) Synopsis() string  { return "Create a task" }
func (c *AddCmd) Usage() string {
	return "todo add [--desc <text>] [--due YYYY-MM-DD] [--status <status>] <title...>"
}
func (c *AddCmd) Needs() Requirement { return NeedsSession }

func (c *AddCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.desc, "desc", "", "")
	fs.StringVar(&c.desc, "d", "", "")
	fs.StringVar(&c.due, "due", "", "")
	fs.StringVar(&c.status, "status", "", "")
}

func (c *AddCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	user, ok := sessionUser(ctx, errOut)
	if !ok {
		return exitcode.AuthError
	}

	// Check for title
	title := joinTitle(args)
	if title == "" {
		fmt.Fprintln(errOut, "error: title required")
		return exitcode.UserError
	}

	in := service.NewTask{Title: title, Description: c.desc}
	if c.status != "" {
		st, err := service.ParseStatus(c.status)
		if err != nil {
			return Fail(errOut, err)
		}
		in.Status = st
	}
	if c.due != "" {
		due, err := output.ParseDue(c.due)
		if err != nil {
			fmt.Fprintf(errOut, "error: due: %v\n", err)
			return exitcode.UserError
		}
		// New tasks may not start out past due.
		if due.Before(service.StartOfDay(time.Now())) {
			fmt.Fprintln(errOut, "error: due: date is in the past")
			return exitcode.UserError
		}
		in.ExpectedCompletionDate = &due
	}

	task, err := svc.CreateTask(ctx, user.ID, in)
	if err != nil {
		return Fail(errOut, err)
	}

	if !cfg.Quiet {
		fmt.Fprintf(out, "added %q\n", task.Title)
	}
	return exitcode.Success
}
