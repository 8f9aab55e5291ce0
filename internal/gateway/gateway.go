// Package gateway abstracts the external payment processor. The core is
// written once against the Gateway interface; an HTTP client talks to
// the real processor and a sandbox implementation backs dev and tests.
package gateway

import "context"

type CaptureRequest struct {
	AmountYen int64
	Currency  string
	// Source is the opaque payment source token collected client-side.
	Source string
	Note   string
	// IdempotencyKey lets the processor dedupe a retried capture.
	IdempotencyKey string
}

type CaptureResult struct {
	ExternalID  string
	RawResponse string
}

type RefundResult struct {
	RefundID string
}

// Gateway calls may fail at any point; retrying is always the caller's
// decision, never the gateway wrapper's.
type Gateway interface {
	Capture(ctx context.Context, req CaptureRequest) (*CaptureResult, error)
	Refund(ctx context.Context, externalID string, amountYen int64, reason string) (*RefundResult, error)
}
