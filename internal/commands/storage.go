package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"todo/internal/app"
	"todo/internal/config"
	"todo/internal/exitcode"
	"todo/internal/service"
	"todo/internal/storage"
)

func init() {
	Register(&StorageCmd{})
}

// StorageCmd reports the configured backend and the keys it holds.
type StorageCmd struct {
	check bool
}

func (c *StorageCmd) Name() string       { return "storage" }
func (c *StorageCmd) Aliases() []string  { return nil }
func (c *StorageCmd) Synopsis() string   { return "Show storage backend and keys" }
func (c *StorageCmd) Usage() string      { return "todo storage [--check]" }
func (c *StorageCmd) Needs() Requirement { return NeedsNothing }

func (c *StorageCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.check, "check", false, "")
}

func (c *StorageCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	repo, closer, err := app.OpenRepository(ctx, cfg, log.FromContext(ctx))
	if err != nil {
		return Fail(errOut, err)
	}
	defer closer.Close()

	fmt.Fprintf(out, "backend: %s\n", cfg.Backend)
	if cfg.Backend == config.BackendFile {
		fmt.Fprintf(out, "data:    %s\n", cfg.DataDir)
	}

	keys, err := repo.List(ctx)
	if err != nil {
		return Fail(errOut, &service.StorageError{Op: "list", Err: err})
	}

	invalid := 0
	for _, key := range keys {
		data, err := repo.Get(ctx, key)
		if err != nil {
			return Fail(errOut, &service.StorageError{Op: "read", Key: key, Err: err})
		}
		line := fmt.Sprintf("  %-22s %6d bytes", key, len(data))
		if c.check {
			if err := storage.Validate(key, data); err != nil {
				line += fmt.Sprintf("  invalid: %v", err)
				invalid++
			} else {
				line += "  ok"
			}
		}
		fmt.Fprintln(out, line)
	}

	if invalid > 0 {
		fmt.Fprintf(errOut, "error: %s failed validation\n", plural(invalid, "key"))
		return exitcode.BackendError
	}
	return exitcode.Success
}
