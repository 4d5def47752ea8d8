package payment

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/admitlink/admitlink/internal/billing"
	"github.com/admitlink/admitlink/internal/order"
)

// Event kinds delivered by the gateway.
const (
	EventCheckoutCompleted = "checkout.session.completed"
	EventPaymentFailed     = "payment.failed"
)

// Event is the gateway's webhook envelope.
type Event struct {
	ID      string `json:"id"`
	Type    string `json:"type"`
	Created int64  `json:"created"`
	Data    struct {
		Object CheckoutSession `json:"object"`
	} `json:"data"`
}

// CheckoutSession is the event payload for checkout outcomes. AmountTotal is
// the gateway's captured amount and is the only amount trusted here.
type CheckoutSession struct {
	ID            string            `json:"id"`
	AmountTotal   int64             `json:"amount_total"`
	Currency      string            `json:"currency"`
	PaymentStatus string            `json:"payment_status"`
	Metadata      map[string]string `json:"metadata"`
}

// FailureNotifier is the best-effort channel for failed-payment notices.
type FailureNotifier interface {
	PaymentFailed(buyerID, sessionID string)
}

// WebhookHandler consumes signed gateway events and materializes orders.
type WebhookHandler struct {
	secret    []byte
	tolerance time.Duration
	events    EventStore
	orders    *order.Service
	calc      billing.Calculator
	onFailure FailureNotifier
	now       func() time.Time
}

func NewWebhookHandler(secret []byte, tolerance time.Duration, events EventStore, orders *order.Service, calc billing.Calculator, onFailure FailureNotifier) *WebhookHandler {
	return &WebhookHandler{
		secret:    secret,
		tolerance: tolerance,
		events:    events,
		orders:    orders,
		calc:      calc,
		onFailure: onFailure,
		now:       time.Now,
	}
}

// Handle is the webhook endpoint. 200 means processed or safe no-op; 400
// means the sender failed verification or sent garbage; anything else tells
// the gateway to redeliver. Response bodies stay generic.
func (h *WebhookHandler) Handle(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid payload"})
	}

	sig := c.Request().Header.Get(SignatureHeader)
	if err := VerifySignature(h.secret, body, sig, h.now(), h.tolerance); err != nil {
		log.Printf("[webhook] rejected: bad signature")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid signature"})
	}

	var evt Event
	if err := json.Unmarshal(body, &evt); err != nil || evt.ID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid payload"})
	}

	ctx := c.Request().Context()
	seen, err := h.events.Seen(ctx, evt.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "processing failed"})
	}
	if seen {
		// At-least-once delivery; replays are a safe no-op.
		return c.JSON(http.StatusOK, echo.Map{"received": true})
	}

	switch evt.Type {
	case EventCheckoutCompleted:
		if err := h.handleCheckoutCompleted(ctx, &evt, body); err != nil {
			log.Printf("[webhook] event %s failed: %v", evt.ID, err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "processing failed"})
		}
	case EventPaymentFailed:
		if buyerID := evt.Data.Object.Metadata[MetaBuyerID]; buyerID != "" && h.onFailure != nil {
			h.onFailure.PaymentFailed(buyerID, evt.Data.Object.ID)
		}
	default:
		log.Printf("[webhook] ignoring event type %s", evt.Type)
	}

	if err := h.events.MarkProcessed(ctx, evt.ID, evt.Type); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "processing failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"received": true})
}

func (h *WebhookHandler) handleCheckoutCompleted(ctx context.Context, evt *Event, raw []byte) error {
	sess := evt.Data.Object
	params, err := paidParamsFromSession(&sess, h.calc)
	if err != nil {
		// Verified but unusable: dead-letter for manual reconciliation and
		// ACK so the gateway stops redelivering an event we can never parse.
		log.Printf("[webhook] event %s dead-lettered: %v", evt.ID, err)
		return h.events.DeadLetter(ctx, evt.ID, evt.Type, raw, err.Error())
	}

	if _, err := h.orders.RecordPaid(ctx, *params); err != nil {
		if errors.Is(err, order.ErrValidation) {
			log.Printf("[webhook] event %s dead-lettered: %v", evt.ID, err)
			return h.events.DeadLetter(ctx, evt.ID, evt.Type, raw, err.Error())
		}
		return err
	}
	return nil
}

// paidParamsFromSession rebuilds the order parameters from session metadata.
// The captured amount wins over the metadata fee split: if they disagree the
// split is recomputed from the captured amount so the sum invariant holds.
func paidParamsFromSession(sess *CheckoutSession, calc billing.Calculator) (*order.PaidOrderParams, error) {
	if sess.ID == "" {
		return nil, errors.New("missing session id")
	}
	offerID := sess.Metadata[MetaOfferID]
	buyerID := sess.Metadata[MetaBuyerID]
	sellerID := sess.Metadata[MetaSellerID]
	if offerID == "" || buyerID == "" || sellerID == "" {
		return nil, errors.New("metadata missing offer/buyer/seller ids")
	}

	fee, feeErr := strconv.ParseInt(sess.Metadata[MetaPlatformFeeCents], 10, 64)
	sellerAmount, sellerErr := strconv.ParseInt(sess.Metadata[MetaSellerAmountCents], 10, 64)
	if feeErr != nil || sellerErr != nil || fee+sellerAmount != sess.AmountTotal {
		split, err := calc.ComputeFees(sess.AmountTotal)
		if err != nil {
			return nil, errors.New("captured amount is not a valid price")
		}
		log.Printf("[webhook] session %s: fee split recomputed from captured amount", sess.ID)
		fee, sellerAmount = split.PlatformFeeCents, split.SellerAmountCents
	}

	return &order.PaidOrderParams{
		OfferID:           offerID,
		BuyerID:           buyerID,
		SellerID:          sellerID,
		SessionID:         sess.ID,
		AmountCents:       sess.AmountTotal,
		PlatformFeeCents:  fee,
		SellerAmountCents: sellerAmount,
	}, nil
}
