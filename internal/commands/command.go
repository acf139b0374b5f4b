// Package commands provides the command interface and implementations.
package commands

import (
	"context"
	"flag"
	"io"

	"todo/internal/config"
	"todo/internal/service"
)

// Requirement says what a command needs before it can run.
type Requirement int

const (
	// NeedsNothing commands get a nil service (help, version, link).
	NeedsNothing Requirement = iota

	// NeedsStore commands get an open service but no session check
	// (register, login, logout).
	NeedsStore

	// NeedsSession commands additionally require a logged-in user,
	// available through UserFrom.
	NeedsSession
)

// Command defines the interface for CLI commands.
type Command interface {
	// Name returns the primary command name.
	Name() string

	// Aliases returns alternative names for the command.
	Aliases() []string

	// Synopsis returns a short description for help output.
	Synopsis() string

	// Usage returns the usage string for help output.
	Usage() string

	// Needs reports what the dispatcher must set up before Run.
	Needs() Requirement

	// RegisterFlags registers command-specific flags.
	RegisterFlags(fs *flag.FlagSet)

	// Run executes the command.
	// cfg is always provided (config dir, paths, backend settings).
	// svc is nil if Needs() returns NeedsNothing.
	// args contains positional arguments after flag parsing.
	// Returns exit code.
	Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int
}

type userKey struct{}

// WithUser returns a context carrying the session user.
func WithUser(ctx context.Context, u service.User) context.Context {
	return context.WithValue(ctx, userKey{}, u)
}

// UserFrom returns the session user stored by WithUser.
func UserFrom(ctx context.Context) (service.User, bool) {
	u, ok := ctx.Value(userKey{}).(service.User)
	return u, ok
}
