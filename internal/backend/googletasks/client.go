// Package googletasks implements storage.Storage on top of the Google Tasks
// API. Each key is a task in a dedicated list; the task notes hold the value.
package googletasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"
	"unicode/utf8"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	tasks "google.golang.org/api/tasks/v1"

	"mytasks/internal/config"
	"mytasks/internal/log"
	"mytasks/internal/storage"
)

const (
	// PageSize is the number of items requested per API page.
	PageSize = 100

	// APITimeout is the timeout for API calls.
	APITimeout = 5 * time.Second

	// Scope is the OAuth scope for Google Tasks.
	Scope = "https://www.googleapis.com/auth/tasks"

	// MaxValueLength is the API limit on task notes, in characters.
	MaxValueLength = 8192
)

// ErrValueTooLarge is returned when a value does not fit in task notes.
var ErrValueTooLarge = errors.New("value too large for google tasks")

// Client implements storage.Storage using the Google Tasks API.
type Client struct {
	svc       *tasks.Service
	listTitle string
	listID    string
}

// New creates a Google Tasks storage client from the OAuth client and token
// files in the config directory. Missing or unreadable credentials match
// storage.ErrUnauthorized.
func New(ctx context.Context, cfg *config.Config) (*Client, error) {
	oauthConfig, err := OAuthConfig(cfg)
	if err != nil {
		return nil, err
	}
	token, err := LoadToken(cfg.TokenPath())
	if err != nil {
		return nil, err
	}
	// The token source refreshes the access token as needed.
	httpClient := oauth2.NewClient(ctx, oauthConfig.TokenSource(ctx, token))
	return NewWithHTTPClient(ctx, httpClient, cfg.Storage.GTasksList)
}

// OAuthConfig reads oauth_client.json from the config directory.
func OAuthConfig(cfg *config.Config) (*oauth2.Config, error) {
	clientJSON, err := os.ReadFile(cfg.OAuthClientPath())
	if err != nil {
		return nil, fmt.Errorf("read oauth_client.json: %w", errors.Join(storage.ErrUnauthorized, err))
	}
	oauthConfig, err := google.ConfigFromJSON(clientJSON, Scope)
	if err != nil {
		return nil, fmt.Errorf("invalid oauth_client.json: %w", errors.Join(storage.ErrUnauthorized, err))
	}
	return oauthConfig, nil
}

// LoadToken reads a saved token. A token without a refresh token cannot
// outlive its access token and is rejected.
func LoadToken(path string) (*oauth2.Token, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("not logged in (run: mytasks login): %w", storage.ErrUnauthorized)
	}
	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("invalid token.json: %w", errors.Join(storage.ErrUnauthorized, err))
	}
	if token.RefreshToken == "" {
		return nil, fmt.Errorf("token.json has no refresh token (run: mytasks login): %w", storage.ErrUnauthorized)
	}
	return &token, nil
}

// SaveToken writes token to path with mode 0600.
func SaveToken(path string, token *oauth2.Token) error {
	data, err := json.MarshalIndent(token, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

// NewWithHTTPClient creates a client with a custom HTTP client and any extra
// API options (for testing).
func NewWithHTTPClient(ctx context.Context, httpClient *http.Client, listTitle string, opts ...option.ClientOption) (*Client, error) {
	opts = append([]option.ClientOption{option.WithHTTPClient(httpClient)}, opts...)
	svc, err := tasks.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create tasks service: %w", err)
	}
	return &Client{svc: svc, listTitle: listTitle}, nil
}

// GetItem implements storage.Storage.
func (c *Client) GetItem(ctx context.Context, key string) (string, bool, error) {
	listID, err := c.EnsureList(ctx)
	if err != nil {
		return "", false, err
	}
	item, err := c.find(ctx, listID, key)
	if err != nil {
		return "", false, err
	}
	if item == nil {
		return "", false, nil
	}
	return item.Notes, true, nil
}

// SetItem implements storage.Storage.
func (c *Client) SetItem(ctx context.Context, key, value string) error {
	if n := utf8.RuneCountInString(value); n > MaxValueLength {
		return fmt.Errorf("%w: %q is %d characters, the limit is %d", ErrValueTooLarge, key, n, MaxValueLength)
	}
	listID, err := c.EnsureList(ctx)
	if err != nil {
		return err
	}
	item, err := c.find(ctx, listID, key)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	if item == nil {
		_, err = c.svc.Tasks.Insert(listID, &tasks.Task{Title: key, Notes: value}).Context(ctx).Do()
	} else {
		// Notes is sent even when empty so a cleared value overwrites.
		patch := &tasks.Task{Notes: value, ForceSendFields: []string{"Notes"}}
		_, err = c.svc.Tasks.Patch(listID, item.Id, patch).Context(ctx).Do()
	}
	if err != nil {
		return wrapError(err)
	}
	log.Debug().Str("key", key).Msg("google tasks item written")
	return nil
}

// RemoveItem implements storage.Storage.
func (c *Client) RemoveItem(ctx context.Context, key string) error {
	listID, err := c.EnsureList(ctx)
	if err != nil {
		return err
	}
	item, err := c.find(ctx, listID, key)
	if err != nil || item == nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	if err := c.svc.Tasks.Delete(listID, item.Id).Context(ctx).Do(); err != nil {
		return wrapError(err)
	}
	return nil
}

// Close implements storage.Storage.
func (c *Client) Close() error { return nil }

// EnsureList resolves the storage list by title, creating it on first use,
// and returns its ID.
func (c *Client) EnsureList(ctx context.Context) (string, error) {
	if c.listID != "" {
		return c.listID, nil
	}

	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	var found string
	err := c.svc.Tasklists.List().MaxResults(PageSize).Pages(ctx, func(resp *tasks.TaskLists) error {
		for _, list := range resp.Items {
			if found == "" && list.Title == c.listTitle {
				found = list.Id
			}
		}
		return nil
	})
	if err != nil {
		return "", wrapError(err)
	}

	if found == "" {
		created, err := c.svc.Tasklists.Insert(&tasks.TaskList{Title: c.listTitle}).Context(ctx).Do()
		if err != nil {
			return "", wrapError(err)
		}
		found = created.Id
		log.Info().Str("list", c.listTitle).Msg("created google tasks storage list")
	}

	c.listID = found
	return found, nil
}

// find returns the task holding key, or nil if there is none.
func (c *Client) find(ctx context.Context, listID, key string) (*tasks.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	var found *tasks.Task
	err := c.svc.Tasks.List(listID).
		MaxResults(PageSize).
		ShowCompleted(true).
		ShowHidden(true).
		Pages(ctx, func(resp *tasks.Tasks) error {
			for _, item := range resp.Items {
				if found == nil && item.Title == key {
					found = item
				}
			}
			return nil
		})
	if err != nil {
		return nil, wrapError(err)
	}
	return found, nil
}

// wrapError maps API errors onto storage errors.
func wrapError(err error) error {
	if err == nil {
		return nil
	}

	// Check for timeout
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("request timed out")
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Errorf("token expired or revoked (run: mytasks login): %w", storage.ErrUnauthorized)
		case http.StatusNotFound:
			return fmt.Errorf("not found")
		}
	}

	return err
}
