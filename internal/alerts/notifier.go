package alerts

import (
	"context"
	"log"

	"github.com/admitlink/admitlink/internal/order"
	"github.com/admitlink/admitlink/internal/user"
)

// Notifier fans order lifecycle events out to email tasks. It satisfies
// order.Notifier, payment.FailureNotifier and auth.Notifier. Sends are
// best effort; failures are logged and never block the caller.
type Notifier struct {
	users  user.Repository
	appURL string
}

func NewNotifier(users user.Repository, appURL string) *Notifier {
	return &Notifier{users: users, appURL: appURL}
}

func (n *Notifier) email(userID string) string {
	u, err := n.users.GetByID(context.Background(), userID)
	if err != nil {
		log.Printf("[notify] lookup failed for user %s: %v", userID, err)
		return ""
	}
	return u.Email
}

func (n *Notifier) OrderPaid(o *order.Order) {
	if email := n.email(o.SellerID); email != "" {
		if err := EnqueueOrderPaid(o.ID, o.BuyerID, o.SellerID, email, o.AmountCents); err != nil {
			log.Printf("[notify] enqueue OrderPaid failed: %v", err)
		}
	}
}

func (n *Notifier) OrderDelivered(o *order.Order) {
	if email := n.email(o.BuyerID); email != "" {
		if err := EnqueueOrderDelivered(o.ID, o.BuyerID, o.SellerID, email, o.AmountCents); err != nil {
			log.Printf("[notify] enqueue OrderDelivered failed: %v", err)
		}
	}
}

func (n *Notifier) OrderCompleted(o *order.Order) {
	if email := n.email(o.SellerID); email != "" {
		if err := EnqueueOrderCompleted(o.ID, o.BuyerID, o.SellerID, email, o.SellerAmountCents); err != nil {
			log.Printf("[notify] enqueue OrderCompleted failed: %v", err)
		}
	}
}

func (n *Notifier) OrderCancelled(o *order.Order) {
	if email := n.email(o.SellerID); email != "" {
		if err := EnqueueOrderCancelled(o.ID, o.BuyerID, o.SellerID, email, o.AmountCents); err != nil {
			log.Printf("[notify] enqueue OrderCancelled failed: %v", err)
		}
	}
}

func (n *Notifier) OrderRefunded(o *order.Order) {
	if email := n.email(o.BuyerID); email != "" {
		if err := EnqueueOrderRefunded(o.ID, o.BuyerID, o.SellerID, email, o.AmountCents); err != nil {
			log.Printf("[notify] enqueue OrderRefunded failed: %v", err)
		}
	}
}

func (n *Notifier) PaymentFailed(buyerID, sessionID string) {
	if email := n.email(buyerID); email != "" {
		if err := EnqueuePaymentFailed(buyerID, sessionID, email); err != nil {
			log.Printf("[notify] enqueue PaymentFailed failed: %v", err)
		}
	}
}

func (n *Notifier) Welcome(u *user.User) {
	if err := EnqueueWelcomeEmail(u.ID, u.Email, u.Name, n.appURL); err != nil {
		log.Printf("[notify] enqueue WelcomeEmail failed: %v", err)
	}
}

func (n *Notifier) PasswordReset(u *user.User, resetURL string) {
	if err := EnqueuePasswordReset(u.ID, u.Email, u.Name, resetURL); err != nil {
		log.Printf("[notify] enqueue PasswordReset failed: %v", err)
	}
}
