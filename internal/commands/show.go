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
	Register(&ShowCmd{})
}

// ShowCmd prints one task in full.
type ShowCmd struct{}

func (c *ShowCmd) Name() string       { return "show" }
func (c *ShowCmd) Aliases() []string  { return nil }
func (c *ShowCmd) Synopsis() string   { return "Show task details" }
func (c *ShowCmd) Usage() string      { return "todo show <ref>" }
func (c *ShowCmd) Needs() Requirement { return NeedsSession }

func (c *ShowCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *ShowCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
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

	task, err := findTask(ctx, svc, user.ID, ref)
	if err != nil {
		return Fail(errOut, err)
	}
	output.FormatTaskDetail(out, task)
	return exitcode.Success
}
