package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"todo/internal/board"
	"todo/internal/config"
	"todo/internal/exitcode"
	"todo/internal/service"
)

func init() {
	Register(&WatchCmd{})
}

// WatchCmd runs the overdue sweep periodically until interrupted.
type WatchCmd struct {
	interval time.Duration
}

func (c *WatchCmd) Name() string       { return "watch" }
func (c *WatchCmd) Aliases() []string  { return nil }
func (c *WatchCmd) Synopsis() string   { return "Sweep overdue tasks on an interval" }
func (c *WatchCmd) Usage() string      { return "todo watch [--interval <duration>]" }
func (c *WatchCmd) Needs() Requirement { return NeedsSession }

func (c *WatchCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.DurationVar(&c.interval, "interval", 0, "")
}

func (c *WatchCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	user, ok := sessionUser(ctx, errOut)
	if !ok {
		return exitcode.AuthError
	}

	interval := c.interval
	if interval == 0 {
		interval = cfg.SweepInterval
	}
	if interval <= 0 {
		fmt.Fprintln(errOut, "error: interval must be positive")
		return exitcode.UserError
	}

	logger := log.FromContext(ctx)
	b := board.New(svc, user.ID, logger)
	report := func() {
		if cfg.Quiet {
			return
		}
		cols := b.Columns()
		fmt.Fprintf(out, "todo %d, overdue %d, done %d\n", len(cols.Todo), len(cols.Overdue), len(cols.Done))
	}

	n, err := svc.SweepOverdue(ctx, user.ID)
	if err != nil {
		return Fail(errOut, err)
	}
	if err := b.Refresh(ctx); err != nil {
		return Fail(errOut, err)
	}
	logger.Debug("initial sweep", "marked", n)
	report()

	logger.Debug("watching", "interval", interval)
	b.Watch(ctx, interval, report)
	return exitcode.Success
}
