// Package imgbb uploads member photos to ImgBB.
package imgbb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultBaseURL is the ImgBB v1 API root.
const DefaultBaseURL = "https://api.imgbb.com/1"

// DefaultTimeout bounds every upload.
const DefaultTimeout = 15 * time.Second

// ErrUpload is returned when ImgBB rejects an upload or cannot be reached.
var ErrUpload = errors.New("imgbb upload failed")

// Client uploads base64 images to ImgBB.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithBaseURL overrides the ImgBB API root.
func WithBaseURL(u string) ClientOption {
	return func(c *Client) {
		if u != "" {
			c.baseURL = u
		}
	}
}

// WithHTTPClient overrides the HTTP client used for uploads.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient creates an ImgBB client authenticated with apiKey.
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		baseURL:    DefaultBaseURL,
		apiKey:     apiKey,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type uploadResponse struct {
	Success bool `json:"success"`
	Data    struct {
		URL string `json:"url"`
	} `json:"data"`
}

// Upload posts the image and returns its hosted URL. A data URL prefix such
// as "data:image/png;base64," is stripped first.
func (c *Client) Upload(ctx context.Context, imageBase64 string) (string, error) {
	endpoint, err := url.JoinPath(c.baseURL, "upload")
	if err != nil {
		return "", fmt.Errorf("building imgbb URL: %w", err)
	}
	endpoint += "?" + url.Values{"key": {c.apiKey}}.Encode()

	form := url.Values{"image": {StripDataURL(imageBase64)}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpload, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: reading response: %v", ErrUpload, err)
	}

	var out uploadResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("%w: status %d: decoding response: %v", ErrUpload, resp.StatusCode, err)
	}
	if !out.Success || out.Data.URL == "" {
		return "", fmt.Errorf("%w: status %d", ErrUpload, resp.StatusCode)
	}

	return out.Data.URL, nil
}

// StripDataURL returns the base64 payload of a data URL, or s unchanged when
// it has no prefix.
func StripDataURL(s string) string {
	if _, payload, ok := strings.Cut(s, ","); ok {
		return payload
	}
	return s
}
