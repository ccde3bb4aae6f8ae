package directory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrNoMorePages is returned when the remote signals the end of the listing.
	ErrNoMorePages = errors.New("no more pages")
	// ErrRemoteAuth is returned when the remote rejects our credentials.
	ErrRemoteAuth = errors.New("directory API rejected credentials")
)

// RemoteUser is one user as listed by the directory API.
type RemoteUser struct {
	ID     string
	Email  string
	Name   string
	Groups []string
}

// UserLister lists one page of remote users.
type UserLister interface {
	ListUsers(ctx context.Context, page, perPage int) ([]RemoteUser, error)
}

// Client talks to the student directory API with a bearer token.
type Client struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
}

// NewClient creates a directory client from cfg.
func NewClient(cfg *Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		BaseURL:    cfg.BaseURL,
		Token:      cfg.Token,
		HTTPClient: &http.Client{Timeout: timeout},
	}
}

type listResponse struct {
	Users []remoteUserJSON `json:"users"`
	Data  []remoteUserJSON `json:"data"`
}

type remoteUserJSON struct {
	ID     json.RawMessage   `json:"id"`
	Email  string            `json:"email"`
	Name   string            `json:"name"`
	Groups []json.RawMessage `json:"groups"`
}

// ListUsers fetches one page. Status 400, 404 and 422 mean the listing has
// ended and yield ErrNoMorePages; 401 and 403 yield ErrRemoteAuth.
func (c *Client) ListUsers(ctx context.Context, page, perPage int) ([]RemoteUser, error) {
	u, err := url.Parse(c.BaseURL + "/users")
	if err != nil {
		return nil, fmt.Errorf("invalid DIRECTORY_API_BASE_URL: %w", err)
	}
	q := u.Query()
	q.Set("page", strconv.Itoa(page))
	q.Set("per_page", strconv.Itoa(perPage))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.Token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("directory request page %d: %w", page, err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	switch {
	case resp.StatusCode == http.StatusNotFound,
		resp.StatusCode == http.StatusBadRequest,
		resp.StatusCode == http.StatusUnprocessableEntity:
		return nil, ErrNoMorePages
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("%w: status=%d", ErrRemoteAuth, resp.StatusCode)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, fmt.Errorf("directory list users failed: status=%d body=%s", resp.StatusCode, truncate(string(body), 256))
	}

	var out listResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("decode directory page %d: %w", page, err)
	}
	raw := out.Users
	if raw == nil {
		raw = out.Data
	}

	users := make([]RemoteUser, 0, len(raw))
	for _, r := range raw {
		users = append(users, RemoteUser{
			ID:     scalarString(r.ID),
			Email:  strings.ToLower(strings.TrimSpace(r.Email)),
			Name:   strings.TrimSpace(r.Name),
			Groups: groupNames(r.Groups),
		})
	}
	return users, nil
}

// groupNames accepts both ["beta"] and [{"name":"beta"}].
func groupNames(raw []json.RawMessage) []string {
	names := make([]string, 0, len(raw))
	for _, g := range raw {
		var name string
		if err := json.Unmarshal(g, &name); err != nil {
			var obj struct {
				Name string `json:"name"`
			}
			if err := json.Unmarshal(g, &obj); err != nil {
				continue
			}
			name = obj.Name
		}
		if name = strings.TrimSpace(name); name != "" {
			names = append(names, name)
		}
	}
	return names
}

func scalarString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
