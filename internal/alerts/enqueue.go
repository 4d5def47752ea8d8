package alerts

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/hibiken/asynq"
)

func enqueue(taskType string, payload any) error {
	if client == nil {
		return fmt.Errorf("alerts not initialized")
	}
	b, _ := json.Marshal(payload)
	_, err := client.Enqueue(asynq.NewTask(taskType, b), asynq.Queue("emails"))
	return err
}

func formatAmount(cents int64) string {
	return fmt.Sprintf("%.2f", float64(cents)/100)
}

// EnqueueWelcomeEmail schedules a welcome email to the user
func EnqueueWelcomeEmail(userID, email, name, appURL string) error {
	base := strings.TrimRight(appURL, "/")
	env := EmailEnvelope{
		To:      email,
		Subject: fmt.Sprintf("Welcome to AdmitLink, %s!", name),
		Body:    fmt.Sprintf("Hi %s, thanks for joining AdmitLink.\n\nOpen AdmitLink: %s", name, base),
	}
	return enqueue(TaskWelcomeEmail, WelcomeEmailPayload{
		UserID: userID, Name: name, Email: email, Envelope: env, SentAt: time.Now(),
	})
}

// EnqueuePasswordReset schedules a password reset notification
func EnqueuePasswordReset(userID, email, name, resetURL string) error {
	env := EmailEnvelope{
		To:      email,
		Subject: "Password reset instructions",
		Body: fmt.Sprintf("Hello %s,\n\nWe received a request to reset your AdmitLink password.\n\nTo proceed, open the link below:\n%s\n\nThis link expires in 15 minutes. If you did not request this, no action is required.\n\n— AdmitLink Team", name, resetURL),
	}
	return enqueue(TaskPasswordReset, PasswordResetPayload{
		UserID: userID, Email: email, ResetURL: resetURL, Envelope: env, Requested: time.Now(),
	})
}

// EnqueueOrderPaid notifies the seller that a new paid order arrived
func EnqueueOrderPaid(orderID, buyerID, sellerID, sellerEmail string, amountCents int64) error {
	env := EmailEnvelope{
		To:      sellerEmail,
		Subject: "You have a new order",
		Body:    fmt.Sprintf("Order %s has been paid (%s). Deliver your consultation to get paid.", orderID, formatAmount(amountCents)),
	}
	return enqueue(TaskOrderPaid, OrderEmailPayload{
		OrderID: orderID, BuyerID: buyerID, SellerID: sellerID, Email: sellerEmail,
		AmountCents: amountCents, Envelope: env, SentAt: time.Now(),
	})
}

// EnqueueOrderDelivered notifies the buyer that the seller delivered
func EnqueueOrderDelivered(orderID, buyerID, sellerID, buyerEmail string, amountCents int64) error {
	env := EmailEnvelope{
		To:      buyerEmail,
		Subject: "Your order has been delivered",
		Body:    fmt.Sprintf("Order %s is delivered. Please review it and mark it complete to release payment.", orderID),
	}
	return enqueue(TaskOrderDelivered, OrderEmailPayload{
		OrderID: orderID, BuyerID: buyerID, SellerID: sellerID, Email: buyerEmail,
		AmountCents: amountCents, Envelope: env, SentAt: time.Now(),
	})
}

// EnqueueOrderCompleted notifies the seller that earnings were released
func EnqueueOrderCompleted(orderID, buyerID, sellerID, sellerEmail string, amountCents int64) error {
	env := EmailEnvelope{
		To:      sellerEmail,
		Subject: "Order completed and paid",
		Body:    fmt.Sprintf("Order %s is completed. %s has been released to your earnings.", orderID, formatAmount(amountCents)),
	}
	return enqueue(TaskOrderCompleted, OrderEmailPayload{
		OrderID: orderID, BuyerID: buyerID, SellerID: sellerID, Email: sellerEmail,
		AmountCents: amountCents, Envelope: env, SentAt: time.Now(),
	})
}

// EnqueueOrderCancelled notifies the seller of a cancellation
func EnqueueOrderCancelled(orderID, buyerID, sellerID, sellerEmail string, amountCents int64) error {
	env := EmailEnvelope{
		To:      sellerEmail,
		Subject: "Order cancelled",
		Body:    fmt.Sprintf("Order %s was cancelled. %s will be refunded to the buyer if already paid.", orderID, formatAmount(amountCents)),
	}
	return enqueue(TaskOrderCancelled, OrderEmailPayload{
		OrderID: orderID, BuyerID: buyerID, SellerID: sellerID, Email: sellerEmail,
		AmountCents: amountCents, Envelope: env, SentAt: time.Now(),
	})
}

// EnqueueOrderRefunded notifies the buyer that their money is on its way back
func EnqueueOrderRefunded(orderID, buyerID, sellerID, buyerEmail string, amountCents int64) error {
	env := EmailEnvelope{
		To:      buyerEmail,
		Subject: "Your order has been refunded",
		Body:    fmt.Sprintf("Order %s was refunded. %s will be returned to your original payment method.", orderID, formatAmount(amountCents)),
	}
	return enqueue(TaskOrderRefunded, OrderEmailPayload{
		OrderID: orderID, BuyerID: buyerID, SellerID: sellerID, Email: buyerEmail,
		AmountCents: amountCents, Envelope: env, SentAt: time.Now(),
	})
}

// EnqueuePaymentFailed notifies the buyer that their checkout payment failed
func EnqueuePaymentFailed(buyerID, sessionID, buyerEmail string) error {
	env := EmailEnvelope{
		To:      buyerEmail,
		Subject: "Payment failed",
		Body:    "Your payment could not be processed. No order was created; you can try again from the offer page.",
	}
	return enqueue(TaskPaymentFailed, PaymentFailedPayload{
		BuyerID: buyerID, SessionID: sessionID, Email: buyerEmail, Envelope: env, SentAt: time.Now(),
	})
}
