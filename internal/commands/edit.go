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
	Register(&EditCmd{})
}

// optString is a string flag that remembers whether it was given, so an
// explicit empty value can be told apart from an absent flag.
type optString struct {
	value string
	set   bool
}

func (o *optString) String() string { return o.value }

func (o *optString) Set(s string) error {
	o.value = s
	o.set = true
	return nil
}

// EditCmd implements the edit command.
type EditCmd struct {
	title    optString
	desc     optString
	due      optString
	status   optString
	clearDue bool
}

func (c *EditCmd) Name() string      { return "edit" }
func (c *EditCmd) Aliases() []string { return []string{"update"} }
func (c *EditCmd) Synopsis() string  { return "Change a task's fields" }
func (c *EditCmd) Usage() string {
	return "todo edit [--title <t>] [--desc <d>] [--due YYYY-MM-DD | --clear-due] [--status <s>] <ref>"
}
func (c *EditCmd) Needs() Requirement { return NeedsSession }

func (c *EditCmd) RegisterFlags(fs *flag.FlagSet) {
	c.title, c.desc, c.due, c.status = optString{}, optString{}, optString{}, optString{}
	fs.Var(&c.title, "title", "")
	fs.Var(&c.desc, "desc", "")
	fs.Var(&c.desc, "d", "")
	fs.Var(&c.due, "due", "")
	fs.Var(&c.status, "status", "")
	fs.BoolVar(&c.clearDue, "clear-due", false, "")
}

func (c *EditCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	user, ok := sessionUser(ctx, errOut)
	if !ok {
		return exitcode.AuthError
	}

	ref, rest, err := ParseTaskRef(args)
	if err != nil {
		return Fail(errOut, err)
	}
	if len(rest) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", rest[0])
		return exitcode.UserError
	}
	if c.due.set && c.clearDue {
		fmt.Fprintln(errOut, "error: cannot use both --due and --clear-due")
		return exitcode.UserError
	}

	patch, err := c.patch()
	if err != nil {
		return Fail(errOut, err)
	}
	if patch.IsEmpty() {
		fmt.Fprintln(errOut, "error: nothing to change")
		return exitcode.UserError
	}

	task, err := findTask(ctx, svc, user.ID, ref)
	if err != nil {
		return Fail(errOut, err)
	}
	// The listing shows presented statuses; patch against the stored record.
	stored, err := svc.GetTask(ctx, task.ID)
	if err != nil {
		return Fail(errOut, err)
	}
	patch = service.SettleDue(stored, patch, time.Now())
	if _, err := svc.UpdateTask(ctx, stored.ID, patch); err != nil {
		return Fail(errOut, err)
	}

	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}

func (c *EditCmd) patch() (service.TaskPatch, error) {
	var p service.TaskPatch
	if c.title.set {
		title := c.title.value
		p.Title = &title
	}
	if c.desc.set {
		desc := c.desc.value
		p.Description = &desc
	}
	if c.status.set {
		st, err := service.ParseStatus(c.status.value)
		if err != nil {
			return p, err
		}
		p.Status = &st
	}
	if c.due.set {
		due, err := output.ParseDue(c.due.value)
		if err != nil {
			return p, &service.ValidationError{Field: "due", Msg: err.Error()}
		}
		p.ExpectedCompletionDate = &due
	}
	p.ClearDue = c.clearDue
	return p, nil
}
