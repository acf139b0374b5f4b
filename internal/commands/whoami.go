package commands

import (
	"context"
	"flag"
	"io"

	"todo/internal/config"
	"todo/internal/exitcode"
	"todo/internal/output"
	"todo/internal/service"
)

func init() {
	Register(&WhoamiCmd{})
}

// WhoamiCmd prints the logged-in user.
type WhoamiCmd struct{}

func (c *WhoamiCmd) Name() string       { return "whoami" }
func (c *WhoamiCmd) Aliases() []string  { return []string{"profile"} }
func (c *WhoamiCmd) Synopsis() string   { return "Show the logged-in user" }
func (c *WhoamiCmd) Usage() string      { return "todo whoami" }
func (c *WhoamiCmd) Needs() Requirement { return NeedsSession }

func (c *WhoamiCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *WhoamiCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	user, ok := sessionUser(ctx, errOut)
	if !ok {
		return exitcode.AuthError
	}
	output.FormatUser(out, user)
	return exitcode.Success
}
