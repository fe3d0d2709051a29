package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	httputil "github.com/tripweaver/server/pkg/infrastructure/http"
)

const DefaultBaseURL = "https://identitytoolkit.googleapis.com/v1"

// HTTPDoer is the subset of *http.Client the lookup client needs.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// TokenProvider supplies the bearer token attached to each request.
type TokenProvider interface {
	AccessToken(ctx context.Context) (string, error)
}

// Client looks up user accounts through the Identity Toolkit REST API.
type Client struct {
	ProjectID  string
	BaseURL    string
	HTTPClient HTTPDoer
	Tokens     TokenProvider
}

func NewClient(projectID string, tokens TokenProvider) *Client {
	return &Client{
		ProjectID:  projectID,
		BaseURL:    DefaultBaseURL,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
		Tokens:     tokens,
	}
}

type lookupRequest struct {
	Email []string `json:"email"`
}

type lookupResponse struct {
	Users []struct {
		LocalID string `json:"localId"`
	} `json:"users"`
}

// UserIDByEmail resolves a normalized address to the matching account's
// local id. The lookup endpoint takes a batch of addresses; the first
// returned account wins. Returns "" without error when no account
// matches. An unregistered sender is a data condition, not a fault.
func (c *Client) UserIDByEmail(ctx context.Context, email string) (string, error) {
	token, err := c.Tokens.AccessToken(ctx)
	if err != nil {
		return "", fmt.Errorf("get access token: %w", err)
	}

	body, err := json.Marshal(lookupRequest{Email: []string{email}})
	if err != nil {
		return "", fmt.Errorf("marshal lookup request: %w", err)
	}

	url := fmt.Sprintf("%s/projects/%s/accounts:lookup", c.BaseURL, c.ProjectID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if err := httputil.ParseErrorResponse(resp); err != nil {
		return "", fmt.Errorf("accounts lookup: %w", err)
	}

	var result lookupResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decode lookup response: %w", err)
	}

	if len(result.Users) == 0 {
		return "", nil
	}
	return result.Users[0].LocalID, nil
}
