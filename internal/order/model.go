package order

import (
	"errors"
	"time"
)

var (
	ErrNotFound          = errors.New("order not found")
	ErrValidation        = errors.New("invalid order input")
	ErrUnauthorized      = errors.New("not allowed on this order")
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrConflict is returned when a concurrent update won the status CAS
	// and the transition no longer applies after one re-check.
	ErrConflict = errors.New("order was updated concurrently")
)

// Order is the durable record of a purchased offer. It is created only from
// a verified payment event and never deleted. seller_id is snapshotted from
// the offer at purchase time.
type Order struct {
	ID                string     `json:"id"`
	OfferID           string     `json:"offer_id"`
	BuyerID           string     `json:"buyer_id"`
	SellerID          string     `json:"seller_id"`
	Status            Status     `json:"status"`
	AmountCents       int64      `json:"amount_cents"`
	PlatformFeeCents  int64      `json:"platform_fee_cents"`
	SellerAmountCents int64      `json:"seller_amount_cents"`
	PaymentSessionID  string     `json:"payment_session_id"`
	Content           string     `json:"content,omitempty"`
	MeetingLink       string     `json:"meeting_link,omitempty"`
	DeliveredAt       *time.Time `json:"delivered_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// Stats aggregates order counts and money flow for the admin dashboard.
type Stats struct {
	ByStatus         map[Status]int64 `json:"by_status"`
	GrossCents       int64            `json:"gross_cents"`
	PlatformFeeCents int64            `json:"platform_fee_cents"`
}

// EarningsSummary is a seller's money view derived from their orders.
type EarningsSummary struct {
	PendingCents  int64 `json:"pending_cents"`  // paid + delivered, not yet released
	ReleasedCents int64 `json:"released_cents"` // completed
}
