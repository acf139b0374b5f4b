package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"todo/internal/backend/googletasks"
	"todo/internal/config"
	"todo/internal/exitcode"
	"todo/internal/service"
)

// linkTimeout bounds the wait for the browser to come back.
const linkTimeout = 5 * time.Minute

func init() {
	Register(&LinkCmd{})
}

// LinkCmd authorizes export to Google Tasks.
type LinkCmd struct{}

func (c *LinkCmd) Name() string       { return "link" }
func (c *LinkCmd) Aliases() []string  { return nil }
func (c *LinkCmd) Synopsis() string   { return "Link a Google account for export" }
func (c *LinkCmd) Usage() string      { return "todo link [common flags]" }
func (c *LinkCmd) Needs() Requirement { return NeedsNothing }

func (c *LinkCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *LinkCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if !cfg.HasOAuthClient() {
		printOAuthSetup(cfg, errOut)
		return exitcode.AuthError
	}
	if cfg.HasToken() && isTokenValid(ctx, cfg) {
		if !cfg.Quiet {
			fmt.Fprintln(out, "already linked")
		}
		return exitcode.Success
	}

	oauthConfig, err := googletasks.OAuthConfig(cfg)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.AuthError
	}

	// Desktop clients accept any loopback port.
	listener, err := net.Listen("tcp", "localhost:0")
	if err != nil {
		fmt.Fprintf(errOut, "error: callback listener: %v\n", err)
		return exitcode.AuthError
	}
	oauthConfig.RedirectURL = fmt.Sprintf("http://%s/callback", listener.Addr())

	state := uuid.NewString()
	verifier := oauth2.GenerateVerifier()
	fmt.Fprintln(errOut, "Open this URL in your browser:")
	fmt.Fprintln(errOut, oauthConfig.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.S256ChallengeOption(verifier)))

	waitCtx, cancel := context.WithTimeout(ctx, linkTimeout)
	defer cancel()
	code, err := awaitCallback(waitCtx, listener, state)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.AuthError
	}

	token, err := oauthConfig.Exchange(ctx, code, oauth2.VerifierOption(verifier))
	if err != nil {
		fmt.Fprintf(errOut, "error: token exchange: %v\n", err)
		return exitcode.AuthError
	}
	if err := cfg.EnsureDir(); err != nil {
		return Fail(errOut, err)
	}
	if err := googletasks.SaveToken(cfg.TokenPath(), token); err != nil {
		fmt.Fprintf(errOut, "error: save token: %v\n", err)
		return exitcode.AuthError
	}
	log.FromContext(ctx).Debug("linked google account", "token", cfg.TokenPath())

	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}

// awaitCallback serves /callback on listener until one request carrying state
// arrives, and returns its authorization code. The listener is closed on return.
func awaitCallback(ctx context.Context, listener net.Listener, state string) (string, error) {
	type result struct {
		code string
		err  error
	}
	done := make(chan result, 1)
	send := func(r result) {
		select {
		case done <- r:
		default:
		}
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/callback", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		switch {
		case q.Get("state") != state:
			http.Error(w, "state mismatch", http.StatusBadRequest)
			send(result{err: errors.New("oauth callback: state mismatch")})
		case q.Get("error") != "":
			http.Error(w, "authorization denied", http.StatusForbidden)
			send(result{err: fmt.Errorf("oauth callback: %s", q.Get("error"))})
		case q.Get("code") == "":
			http.Error(w, "missing code", http.StatusBadRequest)
			send(result{err: errors.New("oauth callback: no code")})
		default:
			fmt.Fprint(w, "Account linked. You may close this window.\n")
			send(result{code: q.Get("code")})
		}
	})

	server := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			send(result{err: err})
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	select {
	case r := <-done:
		return r.code, r.err
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", errors.New("oauth callback timed out")
		}
		return "", errors.New("cancelled")
	}
}

func printOAuthSetup(cfg *config.Config, errOut io.Writer) {
	fmt.Fprintf(errOut, "error: %s not found in %s\n\n", config.OAuthClientFile, cfg.Dir)
	fmt.Fprintf(errOut, `Export needs a Google OAuth client:

  1. Enable the Tasks API at https://console.cloud.google.com/apis/library/tasks.googleapis.com
  2. Create an OAuth client ID of type "Desktop app" and download its JSON
  3. Save it as %s/%s

Then run 'todo link' again.
`, cfg.Dir, config.OAuthClientFile)
}

// isTokenValid reports whether the stored token has a refresh token and
// still yields an access token.
func isTokenValid(ctx context.Context, cfg *config.Config) bool {
	token, err := googletasks.LoadToken(cfg.TokenPath())
	if err != nil || token.RefreshToken == "" {
		return false
	}
	oauthConfig, err := googletasks.OAuthConfig(cfg)
	if err != nil {
		return false
	}
	ctx, cancel := context.WithTimeout(ctx, googletasks.APITimeout)
	defer cancel()
	_, err = oauthConfig.TokenSource(ctx, token).Token()
	return err == nil
}
