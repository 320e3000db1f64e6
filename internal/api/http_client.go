package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/freightdesk/freight-terminal/internal/models"
)

// HTTPClient implements Client against the REST backend.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewHTTPClient creates a client for the given API base URL, e.g.
// "http://localhost:3000/api".
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// ListQuotes retrieves all quotes.
func (c *HTTPClient) ListQuotes(ctx context.Context, token string) ([]models.Quote, error) {
	var quotes []models.Quote
	if err := c.do(ctx, token, http.MethodGet, "/quote", nil, &quotes); err != nil {
		return nil, err
	}
	return quotes, nil
}

// CreateQuote posts a draft and returns the created record.
func (c *HTTPClient) CreateQuote(ctx context.Context, token string, draft models.Quote) (*models.Quote, error) {
	draft.ID = 0
	var created models.Quote
	if err := c.do(ctx, token, http.MethodPost, "/quote", draft, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateQuote puts the full record keyed by its id.
func (c *HTTPClient) UpdateQuote(ctx context.Context, token string, quote models.Quote) (*models.Quote, error) {
	if quote.ID == 0 {
		return nil, fmt.Errorf("cannot update a quote without an id")
	}
	var updated models.Quote
	path := fmt.Sprintf("/quote/%d", quote.ID)
	if err := c.do(ctx, token, http.MethodPut, path, quote, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteQuote removes one record.
func (c *HTTPClient) DeleteQuote(ctx context.Context, token string, id int) error {
	return c.do(ctx, token, http.MethodDelete, fmt.Sprintf("/quote/%d", id), nil, nil)
}

// ListCustomers retrieves the customer reference rows.
func (c *HTTPClient) ListCustomers(ctx context.Context, token string) ([]models.Customer, error) {
	var customers []models.Customer
	if err := c.do(ctx, token, http.MethodGet, "/customer", nil, &customers); err != nil {
		return nil, err
	}
	return customers, nil
}

// SendEmail posts the selected ids plus subject and content.
func (c *HTTPClient) SendEmail(ctx context.Context, token string, req EmailRequest) error {
	req.Module = "quotes"
	return c.do(ctx, token, http.MethodPost, "/email", req, nil)
}

// do executes one authenticated JSON request. A missing token fails
// before any I/O; a 401 maps to ErrUnauthorized.
func (c *HTTPClient) do(ctx context.Context, token, method, path string, body, out interface{}) error {
	if token == "" {
		return ErrUnauthorized
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("API returned status %d", resp.StatusCode)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}
	return nil
}
