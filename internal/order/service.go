package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Notifier delivers best-effort order notices. Implementations log and
// swallow their own failures; a lost notice never rolls back a transition.
type Notifier interface {
	OrderPaid(o *Order)
	OrderDelivered(o *Order)
	OrderCompleted(o *Order)
	OrderCancelled(o *Order)
	OrderRefunded(o *Order)
}

// EventSink receives lifecycle events for downstream consumers.
type EventSink interface {
	OrderEvent(eventType string, o *Order)
}

// RefundGateway is the slice of the payment gateway the order service needs:
// a confirmed refund of a captured checkout session.
type RefundGateway interface {
	RefundSession(ctx context.Context, sessionID string, amountCents int64) error
}

type nopNotifier struct{}

func (nopNotifier) OrderPaid(*Order)      {}
func (nopNotifier) OrderDelivered(*Order) {}
func (nopNotifier) OrderCompleted(*Order) {}
func (nopNotifier) OrderCancelled(*Order) {}
func (nopNotifier) OrderRefunded(*Order)  {}

type nopSink struct{}

func (nopSink) OrderEvent(string, *Order) {}

// Lifecycle event types emitted to the EventSink.
const (
	EventOrderPaid      = "OrderPaid"
	EventOrderDelivered = "OrderDelivered"
	EventOrderCompleted = "OrderCompleted"
	EventOrderCancelled = "OrderCancelled"
	EventOrderRefunded  = "OrderRefunded"
)

// Actor identifies who is asking for a transition. Operator covers admins
// and the auto-complete sweeper.
type Actor struct {
	ID       string
	Operator bool
}

type Service struct {
	repo              Repository
	gateway           RefundGateway
	notifier          Notifier
	events            EventSink
	autoCompleteAfter time.Duration
	now               func() time.Time
}

func NewService(repo Repository, gateway RefundGateway, notifier Notifier, events EventSink, autoCompleteAfter time.Duration) *Service {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	if events == nil {
		events = nopSink{}
	}
	return &Service{
		repo:              repo,
		gateway:           gateway,
		notifier:          notifier,
		events:            events,
		autoCompleteAfter: autoCompleteAfter,
		now:               time.Now,
	}
}

// PaidOrderParams carries everything needed to materialize an order from a
// confirmed payment event.
type PaidOrderParams struct {
	OfferID           string
	BuyerID           string
	SellerID          string
	SessionID         string
	AmountCents       int64
	PlatformFeeCents  int64
	SellerAmountCents int64
}

// RecordPaid creates an order in paid state from a confirmed payment event.
// Replays keyed on the same payment session return the existing order.
func (s *Service) RecordPaid(ctx context.Context, p PaidOrderParams) (*Order, error) {
	if p.OfferID == "" || p.BuyerID == "" || p.SellerID == "" || p.SessionID == "" {
		return nil, fmt.Errorf("%w: missing identifiers", ErrValidation)
	}
	if p.BuyerID == p.SellerID {
		return nil, fmt.Errorf("%w: buyer and seller are the same user", ErrValidation)
	}
	if p.AmountCents < 0 || p.PlatformFeeCents+p.SellerAmountCents != p.AmountCents {
		return nil, fmt.Errorf("%w: fee split does not sum to amount", ErrValidation)
	}

	if existing, err := s.repo.GetBySessionID(ctx, p.SessionID); err == nil {
		return existing, nil
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	now := s.now()
	o := &Order{
		ID:                uuid.New().String(),
		OfferID:           p.OfferID,
		BuyerID:           p.BuyerID,
		SellerID:          p.SellerID,
		Status:            StatusPaid,
		AmountCents:       p.AmountCents,
		PlatformFeeCents:  p.PlatformFeeCents,
		SellerAmountCents: p.SellerAmountCents,
		PaymentSessionID:  p.SessionID,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := s.repo.Create(ctx, o); err != nil {
		// A concurrent replay may have inserted the same session first.
		if existing, lookupErr := s.repo.GetBySessionID(ctx, p.SessionID); lookupErr == nil {
			return existing, nil
		}
		return nil, err
	}
	s.notifier.OrderPaid(o)
	s.events.OrderEvent(EventOrderPaid, o)
	return o, nil
}

// Get returns an order visible to the actor (buyer, seller, or operator).
func (s *Service) Get(ctx context.Context, id string, actor Actor) (*Order, error) {
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.Operator && actor.ID != o.BuyerID && actor.ID != o.SellerID {
		return nil, ErrUnauthorized
	}
	return o, nil
}

func (s *Service) ListForUser(ctx context.Context, userID string) ([]Order, error) {
	return s.repo.ListByUser(ctx, userID)
}

// transitionWithRetry applies guard + conditional swap, re-reading and
// retrying once if a concurrent update won the CAS. The guard re-check makes
// the retry safe; only a second loss surfaces as a conflict.
func (s *Service) transitionWithRetry(ctx context.Context, id string, guard func(*Order) error, swap func(*Order) (bool, error)) (*Order, error) {
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	for attempt := 0; ; attempt++ {
		if err := guard(o); err != nil {
			return nil, err
		}
		swapped, err := swap(o)
		if err != nil {
			return nil, err
		}
		if swapped {
			return s.repo.GetByID(ctx, id)
		}
		if attempt == 1 {
			return nil, ErrConflict
		}
		if o, err = s.repo.GetByID(ctx, id); err != nil {
			return nil, err
		}
	}
}

// Deliver moves a paid order to delivered. Only the order's seller may
// deliver, and the delivery payload must not be empty.
func (s *Service) Deliver(ctx context.Context, id, sellerID, content, meetingLink string) (*Order, error) {
	if content == "" && meetingLink == "" {
		return nil, fmt.Errorf("%w: delivery needs content or a meeting link", ErrValidation)
	}
	o, err := s.transitionWithRetry(ctx, id,
		func(cur *Order) error {
			if cur.SellerID != sellerID {
				return ErrUnauthorized
			}
			if !CanTransition(cur.Status, StatusDelivered) {
				return ErrInvalidTransition
			}
			return nil
		},
		func(cur *Order) (bool, error) {
			return s.repo.MarkDelivered(ctx, id, content, meetingLink, s.now())
		})
	if err != nil {
		return nil, err
	}
	s.notifier.OrderDelivered(o)
	s.events.OrderEvent(EventOrderDelivered, o)
	return o, nil
}

// Complete moves a delivered order to completed. Allowed for the buyer, for
// an operator, or for anyone once the delivery has aged past the
// auto-complete window.
func (s *Service) Complete(ctx context.Context, id string, actor Actor) (*Order, error) {
	o, err := s.transitionWithRetry(ctx, id,
		func(cur *Order) error {
			if !CanTransition(cur.Status, StatusCompleted) {
				return ErrInvalidTransition
			}
			if actor.Operator || actor.ID == cur.BuyerID {
				return nil
			}
			if cur.DeliveredAt != nil && s.now().Sub(*cur.DeliveredAt) >= s.autoCompleteAfter {
				return nil
			}
			return ErrUnauthorized
		},
		func(cur *Order) (bool, error) {
			return s.repo.Transition(ctx, id, cur.Status, StatusCompleted)
		})
	if err != nil {
		return nil, err
	}
	s.notifier.OrderCompleted(o)
	s.events.OrderEvent(EventOrderCompleted, o)
	return o, nil
}

// Cancel voids a paid order before anything was delivered. Operator only.
func (s *Service) Cancel(ctx context.Context, id string) (*Order, error) {
	o, err := s.transitionWithRetry(ctx, id,
		func(cur *Order) error {
			if !CanTransition(cur.Status, StatusCancelled) {
				return ErrInvalidTransition
			}
			return nil
		},
		func(cur *Order) (bool, error) {
			return s.repo.Transition(ctx, id, cur.Status, StatusCancelled)
		})
	if err != nil {
		return nil, err
	}
	s.notifier.OrderCancelled(o)
	s.events.OrderEvent(EventOrderCancelled, o)
	return o, nil
}

// Refund marks a paid or delivered order refunded after the gateway confirms
// the refund. The gateway call happens first; if the status then races to a
// terminal state the conflict is surfaced for manual resolution.
func (s *Service) Refund(ctx context.Context, id string) (*Order, error) {
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanTransition(o.Status, StatusRefunded) {
		return nil, ErrInvalidTransition
	}
	if err := s.gateway.RefundSession(ctx, o.PaymentSessionID, o.AmountCents); err != nil {
		return nil, fmt.Errorf("gateway refund: %w", err)
	}

	o, err = s.transitionWithRetry(ctx, id,
		func(cur *Order) error {
			if !CanTransition(cur.Status, StatusRefunded) {
				return ErrInvalidTransition
			}
			return nil
		},
		func(cur *Order) (bool, error) {
			return s.repo.Transition(ctx, id, cur.Status, StatusRefunded)
		})
	if err != nil {
		return nil, err
	}
	s.notifier.OrderRefunded(o)
	s.events.OrderEvent(EventOrderRefunded, o)
	return o, nil
}

// SweepAutoComplete completes orders stuck in delivered beyond the window.
// Returns how many orders were completed.
func (s *Service) SweepAutoComplete(ctx context.Context, batch int) (int, error) {
	cutoff := s.now().Add(-s.autoCompleteAfter)
	stale, err := s.repo.ListDeliveredBefore(ctx, cutoff, batch)
	if err != nil {
		return 0, err
	}
	done := 0
	for _, o := range stale {
		if _, err := s.Complete(ctx, o.ID, Actor{Operator: true}); err == nil {
			done++
		}
	}
	return done, nil
}

// SweepStalePaid cancels paid orders with no delivery after the given age.
func (s *Service) SweepStalePaid(ctx context.Context, age time.Duration, batch int) (int, error) {
	cutoff := s.now().Add(-age)
	stale, err := s.repo.ListPaidBefore(ctx, cutoff, batch)
	if err != nil {
		return 0, err
	}
	done := 0
	for _, o := range stale {
		if _, err := s.Cancel(ctx, o.ID); err == nil {
			done++
		}
	}
	return done, nil
}
