package cli_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"todo/internal/account"
	"todo/internal/cli"
	"todo/internal/commands"
	"todo/internal/config"
	"todo/internal/exitcode"
	"todo/internal/logging"
	"todo/internal/service"
	"todo/internal/storage/memstore"
	"todo/internal/tasks"
)

var envKeys = []string{
	"TODO_BACKEND", "TODO_DATA_DIR", "TODO_DATABASE_URL", "DATABASE_URL",
	"TODO_LATENCY", "TODO_SWEEP_INTERVAL", commands.PasswordEnv,
}

type countingCloser struct{ closed int }

func (c *countingCloser) Close() error {
	c.closed++
	return nil
}

// harness runs the dispatcher against one in-memory service shared by every
// call, so state carries over between commands like it would on disk.
type harness struct {
	t          *testing.T
	dispatcher *cli.Dispatcher
	configDir  string
	closer     *countingCloser
	opened     int
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}

	repo := memstore.New()
	accounts := account.New(repo, logging.Discard())
	accounts.HashCost = bcrypt.MinCost
	svc := service.Compose(accounts, tasks.New(repo, logging.Discard()))

	h := &harness{t: t, configDir: t.TempDir(), closer: &countingCloser{}}
	h.dispatcher = cli.NewDispatcher(commands.DefaultRegistry, func(ctx context.Context, cfg *config.Config) (service.Service, io.Closer, error) {
		h.opened++
		return svc, h.closer, nil
	})
	return h
}

func (h *harness) run(args ...string) (stdout, stderr string, code int) {
	h.t.Helper()
	var outBuf, errBuf bytes.Buffer
	args = append(args[:1:1], append([]string{"--config", h.configDir}, args[1:]...)...)
	code = h.dispatcher.Run(context.Background(), args, &outBuf, &errBuf)
	return outBuf.String(), errBuf.String(), code
}

func (h *harness) mustRun(args ...string) string {
	h.t.Helper()
	stdout, stderr, code := h.run(args...)
	if code != exitcode.Success {
		h.t.Fatalf("%v: exit %d, stderr %q", args, code, stderr)
	}
	return stdout
}

func TestDispatcher_UnknownCommand(t *testing.T) {
	h := newHarness(t)

	_, stderr, code := h.run("unknowncmd")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	expected := "error: unknown command: unknowncmd\n"
	if stderr != expected {
		t.Errorf("expected %q, got %q", expected, stderr)
	}
}

func TestDispatcher_FlagBeforeCommand(t *testing.T) {
	h := newHarness(t)

	var stdout, stderr bytes.Buffer
	code := h.dispatcher.Run(context.Background(), []string{"--quiet"}, &stdout, &stderr)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	expected := "error: unknown command: --quiet\n"
	if stderr.String() != expected {
		t.Errorf("expected %q, got %q", expected, stderr.String())
	}
}

func TestDispatcher_HelpCommand(t *testing.T) {
	h := newHarness(t)

	stdout, stderr, code := h.run("help")

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	if !strings.Contains(stdout, "Usage:") {
		t.Error("expected help output to contain 'Usage:'")
	}
}

func TestDispatcher_VersionDoesNotOpenStorage(t *testing.T) {
	h := newHarness(t)

	stdout := h.mustRun("version")

	if stdout != "todo 0.1.0\n" {
		t.Errorf("expected 'todo 0.1.0\\n', got %q", stdout)
	}
	if h.opened != 0 {
		t.Errorf("expected storage not opened, opened %d times", h.opened)
	}
}

func TestDispatcher_UnknownFlag(t *testing.T) {
	h := newHarness(t)

	_, stderr, code := h.run("help", "--unknown")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	expected := "error: unknown flag: -unknown\n"
	if stderr != expected {
		t.Errorf("expected %q, got %q", expected, stderr)
	}
}

func TestDispatcher_MissingFlagValue(t *testing.T) {
	h := newHarness(t)

	_, stderr, code := h.run("add", "--due")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	expected := "error: flag needs an argument: -due\n"
	if stderr != expected {
		t.Errorf("expected %q, got %q", expected, stderr)
	}
}

func TestDispatcher_NoArgsRequiresSession(t *testing.T) {
	h := newHarness(t)
	t.Setenv("XDG_CONFIG_HOME", h.configDir)

	var stdout, stderr bytes.Buffer
	code := h.dispatcher.Run(context.Background(), nil, &stdout, &stderr)

	if code != exitcode.AuthError {
		t.Errorf("expected exit code %d, got %d", exitcode.AuthError, code)
	}
	if stderr.String() != commands.NotLoggedInMsg+"\n" {
		t.Errorf("unexpected stderr %q", stderr.String())
	}
	if h.closer.closed != 1 {
		t.Errorf("expected storage closed once, got %d", h.closer.closed)
	}
}

func TestDispatcher_SessionFlow(t *testing.T) {
	h := newHarness(t)

	if out := h.mustRun("register", "--name", "Ada", "--email", "ada@example.com", "--password", "pw"); out != "registered ada@example.com\n" {
		t.Fatalf("register: %q", out)
	}
	h.mustRun("add", "--due", "2999-01-01", "Pay", "rent")
	h.mustRun("add", "Buy milk")

	flat := h.mustRun("list", "--flat")
	expected := "   1  todo     Pay rent  due 2999-01-01\n   2  todo     Buy milk\n"
	if flat != expected {
		t.Errorf("expected %q, got %q", expected, flat)
	}

	h.mustRun("done", "t2")
	board := h.mustRun("list", "--status", "done")
	if !strings.Contains(board, "  d1   Buy milk\n") {
		t.Errorf("expected Buy milk in done column, got %q", board)
	}

	if out := h.mustRun("whoami"); out != "Ada <ada@example.com>\n" {
		t.Errorf("whoami: %q", out)
	}
	h.mustRun("logout")

	_, stderr, code := h.run("list")
	if code != exitcode.AuthError || stderr != commands.NotLoggedInMsg+"\n" {
		t.Errorf("expected not-logged-in after logout, got %d %q", code, stderr)
	}

	if out := h.mustRun("login", "--email", "ada@example.com", "--password", "pw"); out != "logged in as ada@example.com\n" {
		t.Errorf("login: %q", out)
	}
	if h.closer.closed != h.opened {
		t.Errorf("expected every open to be closed: opened %d, closed %d", h.opened, h.closer.closed)
	}
}

func TestDispatcher_QuietFlag(t *testing.T) {
	h := newHarness(t)
	h.mustRun("register", "--name", "Ada", "--email", "ada@example.com", "--password", "pw")

	if out := h.mustRun("add", "--quiet", "x"); out != "" {
		t.Errorf("expected no output with --quiet, got %q", out)
	}
}

func TestDispatcher_DebugLogsToStderr(t *testing.T) {
	h := newHarness(t)

	_, stderr, code := h.run("version", "--debug")

	if code != exitcode.Success {
		t.Fatalf("expected success, got %d", code)
	}
	if !strings.Contains(stderr, "dispatch") || !strings.Contains(stderr, "command=version") {
		t.Errorf("expected debug log on stderr, got %q", stderr)
	}
}

func TestDispatcher_ConfigError(t *testing.T) {
	h := newHarness(t)
	path := filepath.Join(h.configDir, config.ConfigFile)
	if err := os.WriteFile(path, []byte(`backend = "nope"`), 0600); err != nil {
		t.Fatal(err)
	}

	_, stderr, code := h.run("version")

	if code != exitcode.AuthError {
		t.Errorf("expected exit code %d, got %d", exitcode.AuthError, code)
	}
	if !strings.HasPrefix(stderr, "error: unknown backend \"nope\"") {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestDispatcher_FactoryError(t *testing.T) {
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
	d := cli.NewDispatcher(commands.DefaultRegistry, func(ctx context.Context, cfg *config.Config) (service.Service, io.Closer, error) {
		return nil, nil, &service.StorageError{Op: "open", Err: errors.New("connection refused")}
	})

	var stdout, stderr bytes.Buffer
	code := d.Run(context.Background(), []string{"login", "--config", t.TempDir(), "--email", "a@b.co"}, &stdout, &stderr)

	if code != exitcode.BackendError {
		t.Errorf("expected exit code %d, got %d", exitcode.BackendError, code)
	}
	expected := "error: storage open: connection refused\n"
	if stderr.String() != expected {
		t.Errorf("expected %q, got %q", expected, stderr.String())
	}
}
