package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"todo/internal/backend/googletasks"
	"todo/internal/config"
	"todo/internal/exitcode"
	"todo/internal/service"
)

// DefaultExportList is the Google Tasks list export writes to.
const DefaultExportList = "todo"

// Exporter copies tasks to an external list.
type Exporter interface {
	Export(ctx context.Context, listName string, tasks []service.Task) (int, error)
}

// ExporterFactory builds an Exporter from config.
type ExporterFactory func(ctx context.Context, cfg *config.Config) (Exporter, error)

var newExporter ExporterFactory = func(ctx context.Context, cfg *config.Config) (Exporter, error) {
	return googletasks.New(ctx, cfg)
}

// SetExporterFactory replaces the exporter constructor and returns the
// previous one (for testing).
func SetExporterFactory(f ExporterFactory) ExporterFactory {
	prev := newExporter
	newExporter = f
	return prev
}

func init() {
	Register(&ExportCmd{})
}

// ExportCmd copies the user's tasks to Google Tasks.
type ExportCmd struct {
	listName string
}

func (c *ExportCmd) Name() string       { return "export" }
func (c *ExportCmd) Aliases() []string  { return nil }
func (c *ExportCmd) Synopsis() string   { return "Copy tasks to Google Tasks" }
func (c *ExportCmd) Usage() string      { return "todo export [--list <list-name>]" }
func (c *ExportCmd) Needs() Requirement { return NeedsSession }

func (c *ExportCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.listName, "list", DefaultExportList, "")
	fs.StringVar(&c.listName, "l", DefaultExportList, "")
}

func (c *ExportCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	user, ok := sessionUser(ctx, errOut)
	if !ok {
		return exitcode.AuthError
	}

	tasks, err := svc.ListTasks(ctx, user.ID)
	if err != nil {
		return Fail(errOut, err)
	}
	if len(tasks) == 0 {
		if !cfg.Quiet {
			fmt.Fprintln(out, "no tasks to export")
		}
		return exitcode.Success
	}

	exp, err := newExporter(ctx, cfg)
	if err != nil {
		return Fail(errOut, err)
	}

	n, err := exp.Export(ctx, c.listName, tasks)
	log.FromContext(ctx).Debug("export finished", "list", c.listName, "exported", n, "total", len(tasks))
	if err != nil {
		if errors.Is(err, googletasks.ErrAmbiguousList) {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return exitcode.UserError
		}
		return Fail(errOut, err)
	}

	if !cfg.Quiet {
		fmt.Fprintf(out, "exported %s to %q\n", plural(n, "task"), c.listName)
	}
	return exitcode.Success
}
