package premium

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Checkout is what the upgrade screen submits for a plan.
type Checkout struct {
	Plan     Plan
	Amount   int64
	Currency string
}

// Receipt is the simulated processor's answer.
type Receipt struct {
	Reference    string    `json:"reference"`
	Status       string    `json:"status"`
	Plan         Plan      `json:"plan"`
	Amount       int64     `json:"amount"`
	Currency     string    `json:"currency"`
	AuthorizedAt time.Time `json:"authorized_at"`
}

// Processor represents a connector to a payment provider.
type Processor interface {
	Authorize(ctx context.Context, checkout Checkout) (Receipt, error)
}

// StaticProcessor simulates a provider that approves every checkout.
type StaticProcessor struct{}

// Authorize approves the checkout with a synthetic reference.
func (StaticProcessor) Authorize(_ context.Context, checkout Checkout) (Receipt, error) {
	return Receipt{
		Reference:    uuid.NewString(),
		Status:       "approved",
		Plan:         checkout.Plan,
		Amount:       checkout.Amount,
		Currency:     checkout.Currency,
		AuthorizedAt: time.Now().UTC(),
	}, nil
}
