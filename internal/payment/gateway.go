package payment

import "context"

// SessionRequest asks the gateway for a hosted checkout page. Metadata is
// echoed back verbatim in the confirmation event, which lets the webhook
// rebuild the order without re-reading mutable offer state.
type SessionRequest struct {
	AmountCents int64             `json:"amount_cents"`
	Currency    string            `json:"currency"`
	Description string            `json:"description"`
	SuccessURL  string            `json:"success_url"`
	CancelURL   string            `json:"cancel_url"`
	Metadata    map[string]string `json:"metadata"`
}

// Session is the gateway's handle for a checkout in progress.
type Session struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// Gateway is the payment provider contract: hosted checkout sessions in,
// refunds out. Confirmations arrive asynchronously on the webhook.
type Gateway interface {
	CreateCheckoutSession(ctx context.Context, req SessionRequest) (*Session, error)
	RefundSession(ctx context.Context, sessionID string, amountCents int64) error
}

// Metadata keys carried on a checkout session.
const (
	MetaOfferID           = "offer_id"
	MetaBuyerID           = "buyer_id"
	MetaSellerID          = "seller_id"
	MetaPlatformFeeCents  = "platform_fee_cents"
	MetaSellerAmountCents = "seller_amount_cents"
)
