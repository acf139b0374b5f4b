package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"todo/internal/config"
	"todo/internal/exitcode"
	"todo/internal/service"
)

func init() {
	Register(&DoneCmd{})
}

// DoneCmd implements the done command.
type DoneCmd struct{}

func (c *DoneCmd) Name() string       { return "done" }
func (c *DoneCmd) Aliases() []string  { return nil }
func (c *DoneCmd) Synopsis() string   { return "Mark a task done" }
func (c *DoneCmd) Usage() string      { return "todo done <ref>" }
func (c *DoneCmd) Needs() Requirement { return NeedsSession }

func (c *DoneCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *DoneCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
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

	return moveTask(ctx, cfg, svc, user.ID, ref, service.StatusDone, out, errOut)
}
