// Package client talks to the product description completion endpoint.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/mlorentedev/productai/internal/completion"
)

const (
	// DefaultPath is the admin mount of the completion endpoint.
	DefaultPath = "/admin/completion/product-descriptions"

	requestIDHeader     = "X-Request-ID"
	streamStatusTrailer = "X-Stream-Status"
	streamComplete      = "complete"
	readSize            = 4096
)

// ErrTruncated means the response body ended before the server marked the
// stream complete.
var ErrTruncated = errors.New("client: completion stream truncated")

// StatusError is a non-2xx response from the backend.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("client: HTTP %d", e.Code)
	}
	return fmt.Sprintf("client: HTTP %d: %s", e.Code, e.Message)
}

// ModelInfo mirrors an entry of GET /models.
type ModelInfo struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Provider string `json:"provider"`
	Active   bool   `json:"active"`
}

// Client calls the backend. The zero HTTPClient means a client without an
// overall timeout, so long streams are bounded only by the context.
type Client struct {
	BaseURL    string
	APIKey     string
	Path       string
	HTTPClient *http.Client
}

// New returns a Client for baseURL using the admin endpoint path.
func New(baseURL, apiKey string) *Client {
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		APIKey:     apiKey,
		Path:       DefaultPath,
		HTTPClient: &http.Client{},
	}
}

// Stream posts req and returns the response body as a chunk stream. Errors
// reported before the body starts come back as *StatusError.
func (c *Client) Stream(ctx context.Context, req completion.Request) (completion.Stream, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("client: marshal request: %w", err)
	}

	path := c.Path
	if path == "" {
		path = DefaultPath
	}
	httpReq, err := c.newRequest(ctx, http.MethodPost, path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient().Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("client: request: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, statusError(resp)
	}

	bs := &bodyStream{resp: resp, buf: make([]byte, readSize)}
	return completion.NewStream(bs.pull, resp.Body.Close), nil
}

// Models lists the backend's configured providers.
func (c *Client) Models(ctx context.Context) ([]ModelInfo, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/models", nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, fmt.Errorf("client: request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp)
	}

	var models []ModelInfo
	if err := json.NewDecoder(resp.Body).Decode(&models); err != nil {
		return nil, fmt.Errorf("client: decode models: %w", err)
	}
	return models, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, strings.TrimRight(c.BaseURL, "/")+path, body)
	if err != nil {
		return nil, fmt.Errorf("client: create request: %w", err)
	}
	if c.APIKey != "" {
		req.Header.Set("X-API-Key", c.APIKey)
	}
	req.Header.Set(requestIDHeader, uuid.NewString())
	return req, nil
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}

func statusError(resp *http.Response) error {
	se := &StatusError{Code: resp.StatusCode}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	var body struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(data, &body) == nil && body.Error != "" {
		se.Message = body.Error
	} else {
		se.Message = strings.TrimSpace(string(data))
	}
	return se
}

// bodyStream turns raw body reads into chunks that never split a UTF-8
// sequence; an incomplete trailing rune is held back for the next read.
type bodyStream struct {
	resp    *http.Response
	buf     []byte
	pending []byte
	eof     bool
}

func (b *bodyStream) pull() (string, bool, error) {
	for !b.eof {
		n, err := b.resp.Body.Read(b.buf)
		if n > 0 {
			data := append(b.pending, b.buf[:n]...)
			cut := completePrefix(data)
			chunk := string(data[:cut])
			b.pending = append([]byte(nil), data[cut:]...)
			if err == io.EOF {
				b.eof = true
			} else if err != nil {
				return "", false, readError(err)
			}
			if chunk != "" {
				return chunk, true, nil
			}
			continue
		}
		if err == io.EOF {
			b.eof = true
			break
		}
		if err != nil {
			return "", false, readError(err)
		}
	}

	if len(b.pending) > 0 {
		rest := string(b.pending)
		b.pending = nil
		return rest, true, nil
	}
	if b.resp.Trailer.Get(streamStatusTrailer) != streamComplete {
		return "", false, ErrTruncated
	}
	return "", false, nil
}

// readError reports a broken body as truncation unless the caller gave up.
func readError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("client: read stream: %w", err)
	}
	return fmt.Errorf("%w: %w", ErrTruncated, err)
}

// completePrefix returns the length of the longest prefix of b that does not
// end inside a multi-byte UTF-8 sequence.
func completePrefix(b []byte) int {
	for i := len(b) - 1; i >= 0 && i >= len(b)-utf8.UTFMax; i-- {
		if utf8.RuneStart(b[i]) {
			if !utf8.FullRune(b[i:]) {
				return i
			}
			break
		}
	}
	return len(b)
}
