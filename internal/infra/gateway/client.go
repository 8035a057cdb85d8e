package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"shopcore/internal/pkg/config"
	"shopcore/internal/pkg/errs"
	"shopcore/internal/usecase/shared"
)

// Client talks to the payment gateway's order API. Amounts are sent in minor
// units, matching what the rest of the system stores.
type Client struct {
	baseURL   string
	keyID     string
	keySecret string
	http      *http.Client
}

func NewClient(cfg config.GatewayConfig) *Client {
	return &Client{
		baseURL:   cfg.BaseURL,
		keyID:     cfg.KeyID,
		keySecret: cfg.KeySecret,
		http:      &http.Client{Timeout: cfg.Timeout},
	}
}

type createOrderRequest struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
}

type createOrderResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

func (c *Client) CreateOrder(ctx context.Context, amountPaise int64, currency, receipt string) (*shared.GatewayOrder, error) {
	body, err := json.Marshal(createOrderRequest{
		Amount:   amountPaise,
		Currency: currency,
		Receipt:  receipt,
	})
	if err != nil {
		return nil, errs.Wrap(err, "failed to encode gateway order request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/orders", bytes.NewReader(body))
	if err != nil {
		return nil, errs.Wrap(err, "failed to build gateway order request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.keyID, c.keySecret)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errs.WithSecondary(errs.ErrGatewayUnavailable, errs.Wrap(err, "gateway request failed"))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		// Keep the body out of the error; gateway responses can carry PII.
		return nil, errs.WithSecondary(
			errs.ErrGatewayUnavailable,
			errs.New(fmt.Sprintf("gateway returned status %d", resp.StatusCode)),
		)
	}

	var parsed createOrderResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&parsed); err != nil {
		return nil, errs.Wrap(err, "failed to decode gateway order response")
	}
	if parsed.ID == "" {
		return nil, errs.WithSecondary(errs.ErrGatewayUnavailable, errs.New("gateway order response missing id"))
	}

	return &shared.GatewayOrder{ID: parsed.ID}, nil
}
