package imgur

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/custodia-labs/imgscout/internal/core/domain"
	"github.com/custodia-labs/imgscout/internal/core/ports/driven"
	"github.com/custodia-labs/imgscout/internal/logger"
)

const (
	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// maxBodyBytes bounds how much of a response is read.
	maxBodyBytes = 8 << 20

	searchPath = "/3/gallery/search/"
)

// Ensure Client implements the interface.
var _ driven.ImageCatalog = (*Client)(nil)

// Config configures a Client.
type Config struct {
	// BaseURL is the API root. Defaults to domain.DefaultCatalogBaseURL.
	BaseURL string

	// AccessToken, when set, authenticates every request as a user.
	AccessToken string

	// RequestsPerSecond is the proactive request rate. Zero disables it.
	RequestsPerSecond float64

	// Timeout bounds each request. Defaults to DefaultTimeout.
	Timeout time.Duration

	// HTTPClient overrides the underlying client. Its Timeout is left as is.
	HTTPClient *http.Client
}

// Client searches the Imgur gallery.
type Client struct {
	baseURL     string
	http        *http.Client
	rateLimiter *RateLimiter
}

// NewClient creates a new Imgur API client.
func NewClient(cfg Config) *Client {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = domain.DefaultCatalogBaseURL
	}

	hc := cfg.HTTPClient
	if hc == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		hc = &http.Client{Timeout: timeout}
	}

	if cfg.AccessToken != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.AccessToken})
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, hc)
		tc := oauth2.NewClient(ctx, ts)
		tc.Timeout = hc.Timeout
		hc = tc
	}

	return &Client{
		baseURL:     baseURL,
		http:        hc,
		rateLimiter: NewRateLimiter(cfg.RequestsPerSecond),
	}
}

// RateLimiter returns the client's rate limiter.
func (c *Client) RateLimiter() *RateLimiter {
	return c.rateLimiter
}

// envelope is the wrapper around every Imgur response body.
type envelope struct {
	Data    json.RawMessage `json:"data"`
	Success bool            `json:"success"`
	Status  int             `json:"status"`
}

// apiError is the data payload of a failed request.
type apiError struct {
	Error json.RawMessage `json:"error"`
}

// FetchPage fetches one page of gallery search results for keyword.
// Non-2xx responses and envelopes with success=false yield a
// *domain.StatusError; undecodable bodies yield domain.ErrDecode.
func (c *Client) FetchPage(
	ctx context.Context, page int, keyword string, headers map[string]string,
) (domain.ResultPage, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, err
	}

	endpoint := c.baseURL + searchPath + strconv.Itoa(page) + "?" + url.Values{"q": {keyword}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("imgur: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("imgur: search %q page %d: %w", keyword, page, err)
	}
	defer resp.Body.Close()
	c.rateLimiter.UpdateFromResponse(resp)
	logger.Debug("imgur: GET %s -> %d in %s", req.URL.Path, resp.StatusCode, time.Since(start).Round(time.Millisecond))

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("imgur: read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &domain.StatusError{
			StatusCode: resp.StatusCode,
			Message:    errorMessage(body),
		}
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("imgur: %w: %v", domain.ErrDecode, err)
	}
	if !env.Success {
		status := env.Status
		if status == 0 {
			status = resp.StatusCode
		}
		return nil, &domain.StatusError{StatusCode: status, Message: errorMessage(body)}
	}

	var items []domain.ImageRecord
	if len(env.Data) > 0 && string(env.Data) != "null" {
		if err := json.Unmarshal(env.Data, &items); err != nil {
			return nil, fmt.Errorf("imgur: %w: %v", domain.ErrDecode, err)
		}
	}

	result := make(domain.ResultPage, 0, len(items))
	for _, item := range items {
		if item.CoverPath == "" && !item.IsAlbum {
			item.CoverPath = item.ID
		}
		result = append(result, item)
	}
	return result, nil
}

// errorMessage extracts the error text from an Imgur error envelope.
// The error field is either a string or an object with a message.
func errorMessage(body []byte) string {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil || len(env.Data) == 0 {
		return ""
	}
	var payload apiError
	if err := json.Unmarshal(env.Data, &payload); err != nil || len(payload.Error) == 0 {
		return ""
	}

	var text string
	if err := json.Unmarshal(payload.Error, &text); err == nil {
		return text
	}
	var detail struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(payload.Error, &detail); err == nil {
		return detail.Message
	}
	return ""
}
