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
)

func init() {
	Register(&MoveCmd{})
}

// MoveCmd moves a task to another column.
type MoveCmd struct{}

func (c *MoveCmd) Name() string       { return "move" }
func (c *MoveCmd) Aliases() []string  { return []string{"mv"} }
func (c *MoveCmd) Synopsis() string   { return "Move a task to another column" }
func (c *MoveCmd) Usage() string      { return "todo move <ref> <todo|overdue|done>" }
func (c *MoveCmd) Needs() Requirement { return NeedsSession }

func (c *MoveCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *MoveCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	user, ok := sessionUser(ctx, errOut)
	if !ok {
		return exitcode.AuthError
	}

	ref, rest, err := ParseTaskRef(args)
	if err != nil {
		return Fail(errOut, err)
	}
	if len(rest) != 1 {
		fmt.Fprintln(errOut, "error: target status required")
		return exitcode.UserError
	}
	to, err := service.ParseStatus(rest[0])
	if err != nil {
		return Fail(errOut, err)
	}

	return moveTask(ctx, cfg, svc, user.ID, ref, to, out, errOut)
}

// moveTask resolves ref on a fresh board and moves it to the given column.
func moveTask(ctx context.Context, cfg *config.Config, svc service.Service, userID string, ref TaskRef, to service.Status, out, errOut io.Writer) int {
	b := board.New(svc, userID, log.FromContext(ctx))
	if err := b.Refresh(ctx); err != nil {
		return Fail(errOut, err)
	}

	task, err := ResolveTaskRef(ref, b.Tasks())
	if err != nil {
		return Fail(errOut, err)
	}
	if _, err := b.Move(ctx, task.ID, to); err != nil {
		return Fail(errOut, err)
	}

	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
