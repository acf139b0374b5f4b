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
	Register(&LoginCmd{})
}

// LoginCmd implements the login command.
type LoginCmd struct {
	email    string
	password string
}

func (c *LoginCmd) Name() string       { return "login" }
func (c *LoginCmd) Aliases() []string  { return nil }
func (c *LoginCmd) Synopsis() string   { return "Log in to an existing account" }
func (c *LoginCmd) Usage() string      { return "todo login --email <email> [--password <password>]" }
func (c *LoginCmd) Needs() Requirement { return NeedsStore }

func (c *LoginCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.email, "email", "", "")
	fs.StringVar(&c.password, "password", "", "")
}

func (c *LoginCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}
	if c.email == "" {
		fmt.Fprintln(errOut, "error: --email required")
		return exitcode.UserError
	}

	user, err := svc.Login(ctx, c.email, passwordOrEnv(c.password))
	if err != nil {
		return Fail(errOut, err)
	}

	if !cfg.Quiet {
		fmt.Fprintf(out, "logged in as %s\n", user.Email)
	}
	return exitcode.Success
}
