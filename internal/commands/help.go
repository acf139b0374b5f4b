package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"todo/internal/config"
	"todo/internal/exitcode"
	"todo/internal/service"
)

func init() {
	Register(&HelpCmd{})
}

// HelpCmd implements the help command.
type HelpCmd struct{}

func (c *HelpCmd) Name() string       { return "help" }
func (c *HelpCmd) Aliases() []string  { return nil }
func (c *HelpCmd) Synopsis() string   { return "Print usage" }
func (c *HelpCmd) Usage() string      { return "todo help [command]" }
func (c *HelpCmd) Needs() Requirement { return NeedsNothing }

func (c *HelpCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *HelpCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) == 0 {
		fmt.Fprint(out, helpText)
		return exitcode.Success
	}

	cmd, ok := DefaultRegistry.Find(args[0])
	if !ok {
		fmt.Fprintf(errOut, "error: unknown command: %s\n", args[0])
		return exitcode.UserError
	}
	fmt.Fprintf(out, "%s\n\nUsage:\n  %s\n", cmd.Synopsis(), cmd.Usage())
	if aliases := cmd.Aliases(); len(aliases) > 0 {
		fmt.Fprintf(out, "\nAliases: %s\n", strings.Join(aliases, ", "))
	}
	return exitcode.Success
}

const helpText = `Usage:
  todo                                               Show the board as text
  todo list [common flags] [--status <s>] [--flat]
  todo add [common flags] [--desc <d>] [--due YYYY-MM-DD] [--status <s>] <title...>
  todo create [common flags] [--desc <d>] [--due YYYY-MM-DD] [--status <s>] <title...>
  todo show [common flags] <ref>
  todo edit [common flags] [--title <t>] [--desc <d>] [--due YYYY-MM-DD | --clear-due] [--status <s>] <ref>
  todo move [common flags] <ref> <todo|overdue|done>
  todo done [common flags] <ref>
  todo rm [common flags] <ref>
  todo sweep [common flags]
  todo watch [common flags] [--interval <duration>]
  todo board [common flags]
  todo register [common flags] --name <name> --email <email> [--password <pw>]
  todo login [common flags] --email <email> [--password <pw>]
  todo logout [common flags]
  todo whoami [common flags]
  todo link [common flags]
  todo unlink [common flags]
  todo export [common flags] [--list <list-name>]
  todo storage [common flags]
  todo help [command]
  todo version

References:
  3        third task in the flat list (todo list --flat)
  t2, o1   second To Do task, first Overdue task (also: t 2)

Common flags:
  --config <dir>   Override config directory
  --quiet          Suppress informational output
  --debug          Print debug logs to stderr

Passwords may also be given in TODO_PASSWORD.
`
