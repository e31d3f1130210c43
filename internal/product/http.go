package product

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// HTTPStore talks to the host platform's admin product API:
//
//	GET  {BaseURL}/admin/products/{id}  -> {"product": {...}}
//	POST {BaseURL}/admin/products/{id}  <- {"description": "..."}
type HTTPStore struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

// NewHTTPStore returns an HTTPStore with a 30s client timeout.
func NewHTTPStore(baseURL, apiKey string) *HTTPStore {
	return &HTTPStore{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		APIKey:     apiKey,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

type productEnvelope struct {
	Product Product `json:"product"`
}

func (s *HTTPStore) Get(ctx context.Context, id string) (Product, error) {
	resp, err := s.do(ctx, http.MethodGet, id, nil)
	if err != nil {
		return Product{}, err
	}
	defer resp.Body.Close()

	var env productEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return Product{}, fmt.Errorf("product: decode %s: %w", id, err)
	}
	if env.Product.ID == "" {
		env.Product.ID = id
	}
	return env.Product, nil
}

func (s *HTTPStore) Update(ctx context.Context, id string, u Update) error {
	body, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("product: marshal update: %w", err)
	}
	resp, err := s.do(ctx, http.MethodPost, id, bytes.NewReader(body))
	if err != nil {
		return err
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return nil
}

func (s *HTTPStore) do(ctx context.Context, method, id string, body io.Reader) (*http.Response, error) {
	endpoint := strings.TrimRight(s.BaseURL, "/") + "/admin/products/" + url.PathEscape(id)
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("product: create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if s.APIKey != "" {
		req.Header.Set("X-API-Key", s.APIKey)
	}

	client := s.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("product: %s %s: %w", method, id, err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		resp.Body.Close()
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		defer resp.Body.Close()
		return nil, statusError(resp)
	}
	return resp, nil
}

func statusError(resp *http.Response) error {
	se := &StatusError{Code: resp.StatusCode}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	switch {
	case json.Unmarshal(data, &body) == nil && body.Error != "":
		se.Message = body.Error
	case body.Message != "":
		se.Message = body.Message
	default:
		se.Message = strings.TrimSpace(string(data))
	}
	return se
}
