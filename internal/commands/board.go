package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"todo/internal/board"
	"todo/internal/config"
	"todo/internal/exitcode"
	"todo/internal/service"
	"todo/internal/ui"
)

func init() {
	Register(&BoardCmd{})
}

// BoardCmd opens the interactive board.
type BoardCmd struct{}

func (c *BoardCmd) Name() string       { return "board" }
func (c *BoardCmd) Aliases() []string  { return []string{"ui"} }
func (c *BoardCmd) Synopsis() string   { return "Open the interactive board" }
func (c *BoardCmd) Usage() string      { return "todo board" }
func (c *BoardCmd) Needs() Requirement { return NeedsSession }

func (c *BoardCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *BoardCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	user, ok := sessionUser(ctx, errOut)
	if !ok {
		return exitcode.AuthError
	}

	if !ui.IsTTY(out) {
		fmt.Fprintln(errOut, "error: board requires a terminal")
		return exitcode.UserError
	}

	b := board.New(svc, user.ID, log.FromContext(ctx))
	if err := ui.Run(ctx, b, cfg.SweepInterval, out); err != nil {
		return Fail(errOut, err)
	}
	return exitcode.Success
}
