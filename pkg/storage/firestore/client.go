package firestore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const DefaultBaseURL = "https://firestore.googleapis.com/v1"

// HTTPDoer is the subset of *http.Client the REST client needs.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// TokenProvider supplies the bearer token attached to each request.
type TokenProvider interface {
	AccessToken(ctx context.Context) (string, error)
}

// Client issues document operations against the Firestore REST API for a
// single project's default database.
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

func (c *Client) documentsURL(collectionPath string) string {
	return fmt.Sprintf("%s/projects/%s/databases/(default)/documents/%s",
		c.BaseURL, c.ProjectID, collectionPath)
}

// CreateDocument POSTs doc under collectionPath (relative to the
// database root, e.g. "users/uid123/trips") and returns the stored
// document, including the server-assigned resource name. On a
// non-success status the store's response body is carried in the error
// verbatim so the log trail shows exactly what Firestore rejected.
func (c *Client) CreateDocument(ctx context.Context, collectionPath string, doc *Document) (*Document, error) {
	token, err := c.Tokens.AccessToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("get access token: %w", err)
	}

	body, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshal document: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.documentsURL(collectionPath), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("firestore create failed (status %d): %s", resp.StatusCode, string(respBody))
	}

	var created Document
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &created, nil
}
