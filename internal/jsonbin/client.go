// Package jsonbin stores the team document in a JSONBin bin.
package jsonbin

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/teamfolio/teamfolio/internal/roster"
)

// DefaultBaseURL is the JSONBin v3 API root.
const DefaultBaseURL = "https://api.jsonbin.io/v3"

// DefaultTimeout bounds every JSONBin call.
const DefaultTimeout = 15 * time.Second

// ErrNotConfigured is returned when no bin id has been configured.
var ErrNotConfigured = errors.New("jsonbin bin id is not configured")

// ErrUpstream wraps non-2xx responses from JSONBin.
var ErrUpstream = errors.New("jsonbin request failed")

// Client implements roster.Store against a single JSONBin bin.
//
// JSONBin has no conditional write, so Put re-reads the latest revision
// before replacing the bin. That narrows the lost-update window between
// processes but cannot close it.
type Client struct {
	httpClient *http.Client
	baseURL    string
	binID      string
	masterKey  string
}

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithBaseURL overrides the JSONBin API root.
func WithBaseURL(u string) ClientOption {
	return func(c *Client) {
		if u != "" {
			c.baseURL = u
		}
	}
}

// WithHTTPClient overrides the HTTP client used for requests.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient creates a JSONBin client for the given bin.
func NewClient(binID, masterKey string, opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		baseURL:    DefaultBaseURL,
		binID:      binID,
		masterKey:  masterKey,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var _ roster.Store = (*Client)(nil)

// latestResponse is the envelope returned by GET /b/{id}/latest.
type latestResponse struct {
	Record roster.Document `json:"record"`
}

// Get fetches the latest version of the bin.
func (c *Client) Get(ctx context.Context) (*roster.Document, error) {
	endpoint, err := c.binURL("latest")
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("X-Master-Key", c.masterKey)
	req.Header.Set("Accept", "application/json")

	body, err := c.do(req)
	if err != nil {
		return nil, err
	}

	var resp latestResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decoding jsonbin record: %w", err)
	}
	doc := resp.Record
	if doc.Members == nil {
		doc.Members = []roster.Member{}
	}
	doc.TotalMembers = len(doc.Members)

	return &doc, nil
}

// Put replaces the bin with doc after checking that the stored revision
// still equals doc.Revision.
func (c *Client) Put(ctx context.Context, doc *roster.Document) error {
	current, err := c.Get(ctx)
	if err != nil {
		return err
	}
	if current.Revision != doc.Revision {
		return roster.ErrConflict
	}

	next := doc.Clone()
	next.Revision = doc.Revision + 1

	payload, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("encoding team document: %w", err)
	}

	endpoint, err := c.binURL()
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Master-Key", c.masterKey)

	if _, err := c.do(req); err != nil {
		return err
	}

	doc.Revision = next.Revision
	return nil
}

func (c *Client) binURL(extra ...string) (string, error) {
	if c.binID == "" {
		return "", ErrNotConfigured
	}
	parts := append([]string{"b", c.binID}, extra...)
	u, err := url.JoinPath(c.baseURL, parts...)
	if err != nil {
		return "", fmt.Errorf("building jsonbin URL: %w", err)
	}
	return u, nil
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling jsonbin: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading jsonbin response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		slog.Error("jsonbin returned error",
			"method", req.Method,
			"status", resp.StatusCode,
			"body", string(body))
		return nil, fmt.Errorf("%w: %s %s returned status %d", ErrUpstream, req.Method, req.URL.Path, resp.StatusCode)
	}

	return body, nil
}
