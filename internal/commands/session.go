package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"todo/internal/service"
)

// PasswordEnv supplies the password when --password is not given.
const PasswordEnv = "TODO_PASSWORD"

// NotLoggedInMsg is printed when a command needs a session and there is none.
const NotLoggedInMsg = "error: not logged in (run: todo login)"

// sessionUser returns the user the dispatcher resolved, printing the
// not-logged-in error if there is none.
func sessionUser(ctx context.Context, errOut io.Writer) (service.User, bool) {
	u, ok := UserFrom(ctx)
	if !ok {
		fmt.Fprintln(errOut, NotLoggedInMsg)
	}
	return u, ok
}

func passwordOrEnv(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	return os.Getenv(PasswordEnv)
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}

func joinTitle(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}
