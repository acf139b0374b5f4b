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
	Register(&SweepCmd{})
}

// SweepCmd persists the overdue status of past-due tasks.
type SweepCmd struct{}

func (c *SweepCmd) Name() string       { return "sweep" }
func (c *SweepCmd) Aliases() []string  { return nil }
func (c *SweepCmd) Synopsis() string   { return "Mark past-due tasks overdue" }
func (c *SweepCmd) Usage() string      { return "todo sweep" }
func (c *SweepCmd) Needs() Requirement { return NeedsSession }

func (c *SweepCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *SweepCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	user, ok := sessionUser(ctx, errOut)
	if !ok {
		return exitcode.AuthError
	}

	n, err := svc.SweepOverdue(ctx, user.ID)
	if err != nil {
		return Fail(errOut, err)
	}

	if !cfg.Quiet {
		fmt.Fprintf(out, "%s marked overdue\n", plural(n, "task"))
	}
	return exitcode.Success
}
