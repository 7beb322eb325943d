package payment

import (
	"context"
	"fmt"
	"sync"

	"spark/internal/money"

	"github.com/google/uuid"
)

// DeclineMethod is the payment method the sandbox always declines.
const DeclineMethod = "pm_card_chargeDeclined"

// SandboxGateway approves charges up to a limit without contacting a
// provider. It honours idempotency keys the way Stripe does.
type SandboxGateway struct {
	limit money.Amount

	mu       sync.Mutex
	receipts map[string]Receipt
	charges  int
}

func NewSandboxGateway(limit money.Amount) *SandboxGateway {
	return &SandboxGateway{
		limit:    limit,
		receipts: make(map[string]Receipt),
	}
}

func (g *SandboxGateway) Charge(_ context.Context, req ChargeRequest) (*Receipt, error) {
	if req.PaymentMethod == DeclineMethod {
		return nil, fmt.Errorf("%w: card declined", ErrDeclined)
	}
	if g.limit > 0 && req.Amount > g.limit {
		return nil, fmt.Errorf("%w: amount %s above sandbox limit", ErrDeclined, req.Amount)
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if req.IdempotencyKey != "" {
		if r, ok := g.receipts[req.IdempotencyKey]; ok {
			return &r, nil
		}
	}
	g.charges++
	r := Receipt{ProviderTransactionID: "sbx_" + uuid.NewString()}
	if req.IdempotencyKey != "" {
		g.receipts[req.IdempotencyKey] = r
	}
	return &r, nil
}

// Charges counts distinct charges made.
func (g *SandboxGateway) Charges() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.charges
}
