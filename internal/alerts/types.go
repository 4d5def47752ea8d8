package alerts

import "time"

// Task type constants
const (
	TaskWelcomeEmail   = "email:welcome"
	TaskPasswordReset  = "email:password_reset"
	TaskOrderPaid      = "email:order_paid"
	TaskOrderDelivered = "email:order_delivered"
	TaskOrderCompleted = "email:order_completed"
	TaskOrderCancelled = "email:order_cancelled"
	TaskOrderRefunded  = "email:order_refunded"
	TaskPaymentFailed  = "email:payment_failed"
)

// Common envelope for email-like notifications
type EmailEnvelope struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Welcome email payload
type WelcomeEmailPayload struct {
	UserID   string        `json:"user_id"`
	Name     string        `json:"name"`
	Email    string        `json:"email"`
	Envelope EmailEnvelope `json:"envelope"`
	SentAt   time.Time     `json:"sent_at"`
}

// Password reset payload
type PasswordResetPayload struct {
	UserID    string        `json:"user_id"`
	Email     string        `json:"email"`
	ResetURL  string        `json:"reset_url"`
	Envelope  EmailEnvelope `json:"envelope"`
	Requested time.Time     `json:"requested"`
}

// OrderEmailPayload covers the order lifecycle notifications. The task
// type carries which event it is.
type OrderEmailPayload struct {
	OrderID     string        `json:"order_id"`
	BuyerID     string        `json:"buyer_id"`
	SellerID    string        `json:"seller_id"`
	Email       string        `json:"email"`
	AmountCents int64         `json:"amount_cents"`
	Envelope    EmailEnvelope `json:"envelope"`
	SentAt      time.Time     `json:"sent_at"`
}

// Payment failed payload (sent to buyer)
type PaymentFailedPayload struct {
	BuyerID   string        `json:"buyer_id"`
	SessionID string        `json:"session_id"`
	Email     string        `json:"email"`
	Envelope  EmailEnvelope `json:"envelope"`
	SentAt    time.Time     `json:"sent_at"`
}
