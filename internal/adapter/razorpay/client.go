package razorpay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"marketplace-payments/config"
	"marketplace-payments/internal/core/ports"
)

// HTTPClient interface for testability.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client implements ports.GatewayClient against the Razorpay REST API.
// It is stateless: every call is one authenticated round trip.
type Client struct {
	keyID      string
	keySecret  string
	baseURL    string
	httpClient HTTPClient
}

// NewClient creates a Razorpay API client.
func NewClient(cfg config.RazorpayConfig, httpClient HTTPClient) *Client {
	return &Client{
		keyID:      cfg.KeyID,
		keySecret:  cfg.KeySecret,
		baseURL:    cfg.BaseURL,
		httpClient: httpClient,
	}
}

type orderPayload struct {
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Receipt  string            `json:"receipt"`
	Notes    map[string]string `json:"notes"`
}

// CreateOrder registers a new order with the processor. The owner fields are
// attached as opaque notes so the webhook for the eventual payment can
// recover the target account without a session.
func (c *Client) CreateOrder(ctx context.Context, req ports.OrderRequest) (*ports.GatewayOrder, error) {
	payload := orderPayload{
		Amount:   req.Amount,
		Currency: req.Currency,
		Receipt:  req.Receipt,
		Notes: map[string]string{
			"ownerId":   req.OwnerID,
			"ownerType": string(req.OwnerType),
		},
	}

	raw, err := c.post(ctx, "/orders", payload)
	if err != nil {
		return nil, err
	}

	order := &ports.GatewayOrder{Raw: raw}
	if err := json.Unmarshal(raw, order); err != nil {
		return nil, fmt.Errorf("decoding order response: %w", err)
	}
	return order, nil
}

// FetchPayment returns the processor's payment object verbatim.
func (c *Client) FetchPayment(ctx context.Context, paymentID string) (json.RawMessage, error) {
	return c.get(ctx, "/payments/"+paymentID)
}

// CapturePayment captures an authorized payment for the given amount.
func (c *Client) CapturePayment(ctx context.Context, paymentID string, amount int64, currency string) (json.RawMessage, error) {
	payload := map[string]any{"amount": amount, "currency": currency}
	return c.post(ctx, "/payments/"+paymentID+"/capture", payload)
}

func (c *Client) post(ctx context.Context, path string, payload any) (json.RawMessage, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req)
}

func (c *Client) get(ctx context.Context, path string) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	return c.do(req)
}

func (c *Client) do(req *http.Request) (json.RawMessage, error) {
	req.SetBasicAuth(c.keyID, c.keySecret)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("razorpay request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("reading razorpay response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("razorpay %s %s: status %d: %s", req.Method, req.URL.Path, resp.StatusCode, truncate(raw, 256))
	}
	return raw, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
