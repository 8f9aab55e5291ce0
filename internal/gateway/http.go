package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"motorent-backend/internal/domain"
	"motorent-backend/internal/logger"
)

// HTTPGateway is a JSON-over-HTTP client for the payment processor's
// charge and refund endpoints.
type HTTPGateway struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewHTTPGateway(baseURL, apiKey string) *HTTPGateway {
	return &HTTPGateway{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

type chargeRequest struct {
	Amount         int64  `json:"amount"`
	Currency       string `json:"currency"`
	Source         string `json:"source"`
	Description    string `json:"description,omitempty"`
	IdempotencyKey string `json:"idempotency_key,omitempty"`
}

type chargeResponse struct {
	ID      string `json:"id"`
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

type refundRequest struct {
	ChargeID string `json:"charge_id"`
	Amount   int64  `json:"amount"`
	Reason   string `json:"reason,omitempty"`
}

type refundResponse struct {
	ID      string `json:"id"`
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

func (g *HTTPGateway) Capture(ctx context.Context, req CaptureRequest) (*CaptureResult, error) {
	logger.ExternalServiceCall("payment-gateway", "capture", "amount_yen", req.AmountYen)

	body, raw, err := g.post(ctx, "/v1/charges", chargeRequest{
		Amount:         req.AmountYen,
		Currency:       req.Currency,
		Source:         req.Source,
		Description:    req.Note,
		IdempotencyKey: req.IdempotencyKey,
	})
	if err != nil {
		logger.ExternalServiceResult("payment-gateway", "capture", err)
		return nil, domain.WrapE(domain.CodePaymentGateway, err, "capture failed")
	}

	var resp chargeResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		logger.ExternalServiceResult("payment-gateway", "capture", err)
		return nil, domain.WrapE(domain.CodePaymentGateway, err, "capture response malformed")
	}
	if resp.Status != "succeeded" {
		err := fmt.Errorf("gateway declined charge: %s", resp.Message)
		logger.ExternalServiceResult("payment-gateway", "capture", err)
		return nil, domain.WrapE(domain.CodePaymentGateway, err, "capture declined")
	}

	logger.ExternalServiceResult("payment-gateway", "capture", nil, "external_id", resp.ID)
	return &CaptureResult{ExternalID: resp.ID, RawResponse: raw}, nil
}

func (g *HTTPGateway) Refund(ctx context.Context, externalID string, amountYen int64, reason string) (*RefundResult, error) {
	logger.ExternalServiceCall("payment-gateway", "refund", "external_id", externalID, "amount_yen", amountYen)

	body, _, err := g.post(ctx, "/v1/refunds", refundRequest{
		ChargeID: externalID,
		Amount:   amountYen,
		Reason:   reason,
	})
	if err != nil {
		logger.ExternalServiceResult("payment-gateway", "refund", err)
		return nil, domain.WrapE(domain.CodePaymentGateway, err, "refund failed")
	}

	var resp refundResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		logger.ExternalServiceResult("payment-gateway", "refund", err)
		return nil, domain.WrapE(domain.CodePaymentGateway, err, "refund response malformed")
	}
	if resp.Status != "succeeded" {
		err := fmt.Errorf("gateway declined refund: %s", resp.Message)
		logger.ExternalServiceResult("payment-gateway", "refund", err)
		return nil, domain.WrapE(domain.CodePaymentGateway, err, "refund declined")
	}

	logger.ExternalServiceResult("payment-gateway", "refund", nil, "refund_id", resp.ID)
	return &RefundResult{RefundID: resp.ID}, nil
}

func (g *HTTPGateway) post(ctx context.Context, path string, payload interface{}) ([]byte, string, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.apiKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", err
	}
	if resp.StatusCode >= 400 {
		return nil, "", fmt.Errorf("gateway returned status %d: %s", resp.StatusCode, string(body))
	}
	return body, string(body), nil
}
