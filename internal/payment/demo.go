package payment

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"
)

// DemoGateway stands in for the payment provider when running without one.
// Sessions resolve straight to the success URL; refunds always succeed.
type DemoGateway struct{}

func (DemoGateway) CreateCheckoutSession(_ context.Context, req SessionRequest) (*Session, error) {
	id := "demo_cs_" + uuid.New().String()
	return &Session{
		ID:  id,
		URL: fmt.Sprintf("%s?demo=true&session_id=%s", req.SuccessURL, id),
	}, nil
}

func (DemoGateway) RefundSession(_ context.Context, sessionID string, amountCents int64) error {
	log.Printf("[payment] demo refund session=%s amount=%d", sessionID, amountCents)
	return nil
}
