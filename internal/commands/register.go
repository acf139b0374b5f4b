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
	Register(&RegisterCmd{})
}

// RegisterCmd implements the register command.
type RegisterCmd struct {
	name     string
	email    string
	password string
}

func (c *RegisterCmd) Name() string      { return "register" }
func (c *RegisterCmd) Aliases() []string { return []string{"signup"} }
func (c *RegisterCmd) Synopsis() string  { return "Create an account and log in" }
func (c *RegisterCmd) Usage() string {
	return "todo register --name <name> --email <email> [--password <password>]"
}
func (c *RegisterCmd) Needs() Requirement { return NeedsStore }

func (c *RegisterCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.name, "name", "", "")
	fs.StringVar(&c.email, "email", "", "")
	fs.StringVar(&c.password, "password", "", "")
}

func (c *RegisterCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}

	user, err := svc.Register(ctx, c.name, c.email, passwordOrEnv(c.password))
	if err != nil {
		return Fail(errOut, err)
	}

	if !cfg.Quiet {
		fmt.Fprintf(out, "registered %s\n", user.Email)
	}
	return exitcode.Success
}
