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
	Register(&UnlinkCmd{})
}

// UnlinkCmd removes the stored Google token.
type UnlinkCmd struct{}

func (c *UnlinkCmd) Name() string       { return "unlink" }
func (c *UnlinkCmd) Aliases() []string  { return nil }
func (c *UnlinkCmd) Synopsis() string   { return "Forget the Google account" }
func (c *UnlinkCmd) Usage() string      { return "todo unlink [common flags]" }
func (c *UnlinkCmd) Needs() Requirement { return NeedsNothing }

func (c *UnlinkCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *UnlinkCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if !cfg.HasToken() {
		if !cfg.Quiet {
			fmt.Fprintln(out, "not linked")
		}
		return exitcode.Success
	}

	if err := cfg.RemoveToken(); err != nil {
		fmt.Fprintf(errOut, "error: failed to remove token: %v\n", err)
		return exitcode.UserError
	}

	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
