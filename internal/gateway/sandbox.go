package gateway

import (
	"context"
	"fmt"
	"sync"

	"motorent-backend/internal/domain"

	"github.com/google/uuid"
)

// Sandbox is an in-memory gateway for dev and tests. It keeps a ledger
// of captured charges so refunds can be validated against them.
type Sandbox struct {
	mu      sync.Mutex
	charges map[string]int64 // external id -> remaining refundable yen

	// FailCapture / FailRefund force the next calls to fail, for
	// exercising the error paths.
	FailCapture bool
	FailRefund  bool
}

func NewSandbox() *Sandbox {
	return &Sandbox{charges: make(map[string]int64)}
}

func (s *Sandbox) Capture(ctx context.Context, req CaptureRequest) (*CaptureResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailCapture {
		return nil, domain.E(domain.CodePaymentGateway, "sandbox capture declined")
	}
	if req.AmountYen <= 0 {
		return nil, domain.E(domain.CodePaymentGateway, "capture amount must be positive")
	}

	id := "sbx_" + uuid.NewString()
	s.charges[id] = req.AmountYen
	return &CaptureResult{
		ExternalID:  id,
		RawResponse: fmt.Sprintf(`{"id":%q,"status":"succeeded"}`, id),
	}, nil
}

func (s *Sandbox) Refund(ctx context.Context, externalID string, amountYen int64, reason string) (*RefundResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailRefund {
		return nil, domain.E(domain.CodePaymentGateway, "sandbox refund declined")
	}
	remaining, ok := s.charges[externalID]
	if !ok {
		return nil, domain.E(domain.CodePaymentGateway, "unknown charge %s", externalID)
	}
	if amountYen <= 0 || amountYen > remaining {
		return nil, domain.E(domain.CodePaymentGateway, "refund of %d yen exceeds remaining %d on charge %s", amountYen, remaining, externalID)
	}

	s.charges[externalID] = remaining - amountYen
	return &RefundResult{RefundID: "re_" + uuid.NewString()}, nil
}

// Captured reports the remaining refundable amount for a charge.
func (s *Sandbox) Captured(externalID string) (int64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	amt, ok := s.charges[externalID]
	return amt, ok
}
