package collab

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"dealdesk/internal/store"
)

// WebhookCRM pushes deals to a CRM over a JSON webhook. Authentication
// is a bearer token owned by the CRM integration; the token is sent on
// the wire and never echoed into error strings or logs.
type WebhookCRM struct {
	baseURL string
	token   string
	client  *http.Client
	log     *zap.Logger
}

// NewWebhookCRM builds a CRM client with a bounded per-call timeout.
// A zero timeout falls back to DefaultTimeout.
func NewWebhookCRM(baseURL, token string, timeout time.Duration, log *zap.Logger) *WebhookCRM {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &WebhookCRM{
		baseURL: baseURL,
		token:   token,
		client:  &http.Client{Timeout: timeout},
		log:     log,
	}
}

type crmPushResponse struct {
	ID    string `json:"id"`
	Error string `json:"error,omitempty"`
}

// PushDeal sends the deal to the CRM and returns the CRM-side record id.
func (c *WebhookCRM) PushDeal(ctx context.Context, deal store.Deal) (string, error) {
	payload, err := json.Marshal(deal)
	if err != nil {
		return "", fmt.Errorf("failed to encode deal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/deals", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to build CRM request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		// err may wrap the URL but never the Authorization header.
		return "", fmt.Errorf("CRM request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("failed to read CRM response: %w", err)
	}

	c.log.Debug("crm push completed",
		zap.String("deal_id", deal.ID),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("CRM returned status %d", resp.StatusCode)
	}

	var out crmPushResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("failed to decode CRM response: %w", err)
	}
	if out.Error != "" {
		return "", fmt.Errorf("CRM rejected deal: %s", out.Error)
	}
	return out.ID, nil
}
