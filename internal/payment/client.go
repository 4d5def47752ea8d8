package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client talks to the hosted-checkout payment provider's HTTP API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	secretKey  string
}

func NewClient(baseURL, secretKey string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    baseURL,
		secretKey:  secretKey,
	}
}

func (c *Client) post(ctx context.Context, path string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("http new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http client do: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("gateway %s returned %d: %s", path, resp.StatusCode, detail)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) CreateCheckoutSession(ctx context.Context, req SessionRequest) (*Session, error) {
	var s Session
	if err := c.post(ctx, "/v1/checkout/sessions", req, &s); err != nil {
		return nil, fmt.Errorf("create checkout session: %w", err)
	}
	if s.ID == "" || s.URL == "" {
		return nil, fmt.Errorf("create checkout session: gateway returned empty session")
	}
	return &s, nil
}

func (c *Client) RefundSession(ctx context.Context, sessionID string, amountCents int64) error {
	payload := map[string]any{
		"session_id":   sessionID,
		"amount_cents": amountCents,
	}
	if err := c.post(ctx, "/v1/refunds", payload, nil); err != nil {
		return fmt.Errorf("refund session %s: %w", sessionID, err)
	}
	return nil
}
