package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"billing-be/internal/logger"

	"go.uber.org/zap"
)

const defaultBaseURL = "https://api.commerce.coinbase.com"

// Client talks to the Coinbase Commerce charges API. Every call is a single
// synchronous attempt with a bounded timeout; retries are the caller's
// problem.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

func NewClient(apiKey string) *Client {
	if apiKey == "" {
		logger.L().Warn("Coinbase Commerce API key is empty")
	}

	return &Client{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// GetCharge fetches a charge by id, used for the reuse-eligibility check.
func (c *Client) GetCharge(ctx context.Context, chargeID string) (*Charge, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/charges/"+chargeID, nil)
	if err != nil {
		return nil, err
	}

	return c.doCharge(req)
}

// CreateCharge creates a fixed-price charge and returns it.
func (c *Client) CreateCharge(ctx context.Context, body CreateChargeRequest) (*Charge, error) {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/charges", bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, err
	}

	return c.doCharge(req)
}

func (c *Client) doCharge(req *http.Request) (*Charge, error) {
	req.Header.Set("X-CC-Api-Key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.L().Error("Coinbase Commerce request failed",
			zap.String("method", req.Method),
			zap.String("url", req.URL.String()),
			zap.Error(err),
		)
		return nil, err
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read coinbase response: %w", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		logger.L().Error("Coinbase Commerce returned non-success status",
			zap.String("method", req.Method),
			zap.String("url", req.URL.String()),
			zap.Int("status", resp.StatusCode),
			zap.ByteString("response", bodyBytes),
		)
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(bodyBytes)}
	}

	var envelope chargeEnvelope
	if err := json.Unmarshal(bodyBytes, &envelope); err != nil {
		return nil, fmt.Errorf("failed decoding coinbase response: %w", err)
	}

	return &envelope.Data, nil
}
