// Package googletasks exports tasks to a Google Tasks list.
package googletasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	gtasks "google.golang.org/api/tasks/v1"

	"todo/internal/config"
	"todo/internal/service"
)

const (
	// APITimeout is the timeout for API calls.
	APITimeout = 5 * time.Second

	// Scope is the OAuth scope for Google Tasks.
	Scope = "https://www.googleapis.com/auth/tasks"

	statusCompleted   = "completed"
	statusNeedsAction = "needsAction"
)

var (
	// ErrNotLinked means no usable Google credentials are stored.
	ErrNotLinked = errors.New("google account not linked (run: todo link)")

	// ErrListNotFound means no list has the requested name.
	ErrListNotFound = errors.New("list not found")

	// ErrAmbiguousList means more than one list has the requested name.
	ErrAmbiguousList = errors.New("ambiguous list name")
)

// TaskList is a Google Tasks list.
type TaskList struct {
	ID    string
	Title string
}

// Client talks to the Google Tasks API.
type Client struct {
	svc *gtasks.Service
}

// OAuthConfig reads the OAuth client file from the config directory.
func OAuthConfig(cfg *config.Config) (*oauth2.Config, error) {
	clientJSON, err := os.ReadFile(cfg.OAuthClientPath())
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", config.OAuthClientFile, err)
	}
	oauthConfig, err := google.ConfigFromJSON(clientJSON, Scope)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", config.OAuthClientFile, err)
	}
	return oauthConfig, nil
}

// LoadToken reads the stored token.
func LoadToken(path string) (*oauth2.Token, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", config.TokenFile, err)
	}
	return &token, nil
}

// SaveToken saves an OAuth token to a file with mode 0600.
func SaveToken(path string, token *oauth2.Token) error {
	data, err := json.MarshalIndent(token, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

// New creates a client from the stored OAuth client and token.
// Returns ErrNotLinked if either is missing.
func New(ctx context.Context, cfg *config.Config) (*Client, error) {
	if !cfg.HasOAuthClient() || !cfg.HasToken() {
		return nil, ErrNotLinked
	}

	oauthConfig, err := OAuthConfig(cfg)
	if err != nil {
		return nil, err
	}
	token, err := LoadToken(cfg.TokenPath())
	if err != nil {
		return nil, err
	}

	// Token source refreshes the access token as needed.
	httpClient := oauth2.NewClient(ctx, oauthConfig.TokenSource(ctx, token))
	return NewWithHTTPClient(ctx, httpClient)
}

// NewWithHTTPClient creates a client with a custom HTTP client (for testing).
func NewWithHTTPClient(ctx context.Context, httpClient *http.Client, opts ...option.ClientOption) (*Client, error) {
	opts = append([]option.ClientOption{option.WithHTTPClient(httpClient)}, opts...)
	svc, err := gtasks.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create tasks service: %w", err)
	}
	return &Client{svc: svc}, nil
}

// ListLists returns all task lists in API order.
func (c *Client) ListLists(ctx context.Context) ([]TaskList, error) {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	var result []TaskList
	err := c.svc.Tasklists.List().MaxResults(100).Pages(ctx, func(resp *gtasks.TaskLists) error {
		for _, list := range resp.Items {
			result = append(result, TaskList{ID: list.Id, Title: list.Title})
		}
		return nil
	})
	if err != nil {
		return nil, wrapError(err)
	}
	return result, nil
}

// ResolveList finds a list by name (case-insensitive, trimmed).
func (c *Client) ResolveList(ctx context.Context, name string) (TaskList, error) {
	name = strings.TrimSpace(name)
	nameLower := strings.ToLower(name)

	lists, err := c.ListLists(ctx)
	if err != nil {
		return TaskList{}, err
	}

	var matches []TaskList
	for _, list := range lists {
		if strings.ToLower(strings.TrimSpace(list.Title)) == nameLower {
			matches = append(matches, list)
		}
	}

	switch len(matches) {
	case 0:
		return TaskList{}, fmt.Errorf("%w: %s", ErrListNotFound, name)
	case 1:
		return matches[0], nil
	default:
		return TaskList{}, fmt.Errorf("%w: %s", ErrAmbiguousList, name)
	}
}

// EnsureList returns the list called name, creating it if there is none.
func (c *Client) EnsureList(ctx context.Context, name string) (TaskList, error) {
	list, err := c.ResolveList(ctx, name)
	if err == nil || !errors.Is(err, ErrListNotFound) {
		return list, err
	}

	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	created, err := c.svc.Tasklists.Insert(&gtasks.TaskList{Title: strings.TrimSpace(name)}).Context(ctx).Do()
	if err != nil {
		return TaskList{}, wrapError(err)
	}
	return TaskList{ID: created.Id, Title: created.Title}, nil
}

// Export copies tasks into the list called listName, creating the list if
// needed. Tasks whose title and notes already appear in the list are
// skipped, so exporting twice does not duplicate the board. Returns how many
// tasks were inserted before any failure.
func (c *Client) Export(ctx context.Context, listName string, tasks []service.Task) (int, error) {
	list, err := c.EnsureList(ctx, listName)
	if err != nil {
		return 0, err
	}
	existing, err := c.exportedKeys(ctx, list.ID)
	if err != nil {
		return 0, err
	}

	n := 0
	for _, t := range tasks {
		if existing[exportKey(t.Title, t.Description)] {
			continue
		}
		if err := c.insert(ctx, list.ID, t); err != nil {
			return n, fmt.Errorf("export %q: %w", t.Title, err)
		}
		n++
	}
	return n, nil
}

func exportKey(title, notes string) string {
	return title + "\x00" + notes
}

// exportedKeys returns the title/notes keys of every task already in the list,
// completed and hidden ones included.
func (c *Client) exportedKeys(ctx context.Context, listID string) (map[string]bool, error) {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	keys := make(map[string]bool)
	err := c.svc.Tasks.List(listID).ShowCompleted(true).ShowHidden(true).MaxResults(100).Pages(ctx, func(resp *gtasks.Tasks) error {
		for _, t := range resp.Items {
			keys[exportKey(t.Title, t.Notes)] = true
		}
		return nil
	})
	if err != nil {
		return nil, wrapError(err)
	}
	return keys, nil
}

func (c *Client) insert(ctx context.Context, listID string, t service.Task) error {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	_, err := c.svc.Tasks.Insert(listID, ToAPITask(t)).Context(ctx).Do()
	return wrapError(err)
}

// ToAPITask converts a task to its Google Tasks form. Google keeps only the
// date part of due, so it is sent as midnight UTC of the task's day.
func ToAPITask(t service.Task) *gtasks.Task {
	out := &gtasks.Task{
		Title:  t.Title,
		Notes:  t.Description,
		Status: statusNeedsAction,
	}
	if t.Status == service.StatusDone {
		out.Status = statusCompleted
	}
	if t.ExpectedCompletionDate != nil {
		y, m, d := t.ExpectedCompletionDate.Date()
		out.Due = time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Format(time.RFC3339)
	}
	return out
}

// wrapError wraps API errors with user-friendly messages.
func wrapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("request timed out")
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Errorf("%w: token expired or revoked", ErrNotLinked)
		case http.StatusNotFound:
			return fmt.Errorf("not found")
		}
	}

	// oauth2 refresh failures arrive as *oauth2.RetrieveError.
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		return fmt.Errorf("%w: %v", ErrNotLinked, retrieveErr)
	}

	return err
}
