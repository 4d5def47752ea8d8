package order

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type recordingNotifier struct {
	mu    sync.Mutex
	calls []string
}

func (r *recordingNotifier) record(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, name)
}

func (r *recordingNotifier) OrderPaid(*Order)      { r.record("paid") }
func (r *recordingNotifier) OrderDelivered(*Order) { r.record("delivered") }
func (r *recordingNotifier) OrderCompleted(*Order) { r.record("completed") }
func (r *recordingNotifier) OrderCancelled(*Order) { r.record("cancelled") }
func (r *recordingNotifier) OrderRefunded(*Order)  { r.record("refunded") }

type fakeGateway struct {
	mu      sync.Mutex
	refunds []string
	fail    bool
}

func (f *fakeGateway) RefundSession(_ context.Context, sessionID string, _ int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("gateway down")
	}
	f.refunds = append(f.refunds, sessionID)
	return nil
}

func paidParams(session string) PaidOrderParams {
	return PaidOrderParams{
		OfferID:           "offer-1",
		BuyerID:           "buyer-1",
		SellerID:          "seller-1",
		SessionID:         session,
		AmountCents:       2500,
		PlatformFeeCents:  375,
		SellerAmountCents: 2125,
	}
}

func newTestService(repo Repository, gw RefundGateway, notifier Notifier) *Service {
	return NewService(repo, gw, notifier, nil, 14*24*time.Hour)
}

func TestRecordPaidCreatesPaidOrder(t *testing.T) {
	repo := NewMemoryRepository()
	notifier := &recordingNotifier{}
	svc := newTestService(repo, &fakeGateway{}, notifier)

	o, err := svc.RecordPaid(context.Background(), paidParams("cs_1"))
	if err != nil {
		t.Fatalf("RecordPaid: %v", err)
	}
	if o.Status != StatusPaid {
		t.Fatalf("expected status paid, got %s", o.Status)
	}
	if o.PlatformFeeCents+o.SellerAmountCents != o.AmountCents {
		t.Fatal("fee split does not sum to amount")
	}
	if len(notifier.calls) != 1 || notifier.calls[0] != "paid" {
		t.Fatalf("expected one paid notification, got %v", notifier.calls)
	}
}

func TestRecordPaidIsIdempotentPerSession(t *testing.T) {
	repo := NewMemoryRepository()
	svc := newTestService(repo, &fakeGateway{}, nil)

	first, err := svc.RecordPaid(context.Background(), paidParams("cs_dup"))
	if err != nil {
		t.Fatalf("first RecordPaid: %v", err)
	}
	second, err := svc.RecordPaid(context.Background(), paidParams("cs_dup"))
	if err != nil {
		t.Fatalf("second RecordPaid: %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("replay created a new order: %s vs %s", first.ID, second.ID)
	}
	all, _ := repo.ListAll(context.Background(), 10, 0)
	if len(all) != 1 {
		t.Fatalf("expected 1 order, got %d", len(all))
	}
}

func TestRecordPaidRejectsBadInput(t *testing.T) {
	svc := newTestService(NewMemoryRepository(), &fakeGateway{}, nil)

	p := paidParams("cs_self")
	p.SellerID = p.BuyerID
	if _, err := svc.RecordPaid(context.Background(), p); !errors.Is(err, ErrValidation) {
		t.Fatalf("self purchase: expected ErrValidation, got %v", err)
	}

	p = paidParams("cs_sum")
	p.PlatformFeeCents = 100
	if _, err := svc.RecordPaid(context.Background(), p); !errors.Is(err, ErrValidation) {
		t.Fatalf("broken fee sum: expected ErrValidation, got %v", err)
	}

	p = paidParams("")
	if _, err := svc.RecordPaid(context.Background(), p); !errors.Is(err, ErrValidation) {
		t.Fatalf("missing session: expected ErrValidation, got %v", err)
	}
}

func TestDeliverHappyPath(t *testing.T) {
	repo := NewMemoryRepository()
	svc := newTestService(repo, &fakeGateway{}, nil)
	o, _ := svc.RecordPaid(context.Background(), paidParams("cs_d"))

	got, err := svc.Deliver(context.Background(), o.ID, "seller-1", "here is your review", "")
	if err != nil {
		t.Fatalf("Deliver: %v", err)
	}
	if got.Status != StatusDelivered {
		t.Fatalf("expected delivered, got %s", got.Status)
	}
	if got.DeliveredAt == nil {
		t.Fatal("expected DeliveredAt to be set")
	}
}

func TestDeliverGuards(t *testing.T) {
	repo := NewMemoryRepository()
	svc := newTestService(repo, &fakeGateway{}, nil)
	o, _ := svc.RecordPaid(context.Background(), paidParams("cs_g"))

	if _, err := svc.Deliver(context.Background(), o.ID, "someone-else", "work", ""); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("wrong seller: expected ErrUnauthorized, got %v", err)
	}
	if _, err := svc.Deliver(context.Background(), o.ID, "seller-1", "", ""); !errors.Is(err, ErrValidation) {
		t.Fatalf("empty payload: expected ErrValidation, got %v", err)
	}

	if _, err := svc.Deliver(context.Background(), o.ID, "seller-1", "work", ""); err != nil {
		t.Fatalf("Deliver: %v", err)
	}
	if _, err := svc.Deliver(context.Background(), o.ID, "seller-1", "again", ""); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("double deliver: expected ErrInvalidTransition, got %v", err)
	}
}

func TestCompletePermissions(t *testing.T) {
	repo := NewMemoryRepository()
	svc := newTestService(repo, &fakeGateway{}, nil)
	o, _ := svc.RecordPaid(context.Background(), paidParams("cs_c"))
	if _, err := svc.Deliver(context.Background(), o.ID, "seller-1", "done", ""); err != nil {
		t.Fatalf("Deliver: %v", err)
	}

	if _, err := svc.Complete(context.Background(), o.ID, Actor{ID: "seller-1"}); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("seller complete: expected ErrUnauthorized, got %v", err)
	}
	got, err := svc.Complete(context.Background(), o.ID, Actor{ID: "buyer-1"})
	if err != nil {
		t.Fatalf("buyer complete: %v", err)
	}
	if got.Status != StatusCompleted {
		t.Fatalf("expected completed, got %s", got.Status)
	}
}

func TestCompleteAfterWindowAllowsAnyone(t *testing.T) {
	repo := NewMemoryRepository()
	svc := newTestService(repo, &fakeGateway{}, nil)
	o, _ := svc.RecordPaid(context.Background(), paidParams("cs_w"))
	if _, err := svc.Deliver(context.Background(), o.ID, "seller-1", "done", ""); err != nil {
		t.Fatalf("Deliver: %v", err)
	}

	// Within the window a random actor is rejected.
	if _, err := svc.Complete(context.Background(), o.ID, Actor{ID: "seller-1"}); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized inside window, got %v", err)
	}

	svc.now = func() time.Time { return time.Now().Add(15 * 24 * time.Hour) }
	if _, err := svc.Complete(context.Background(), o.ID, Actor{ID: "seller-1"}); err != nil {
		t.Fatalf("complete after window: %v", err)
	}
}

func TestRefundCallsGatewayFirst(t *testing.T) {
	repo := NewMemoryRepository()
	gw := &fakeGateway{}
	notifier := &recordingNotifier{}
	svc := newTestService(repo, gw, notifier)
	o, _ := svc.RecordPaid(context.Background(), paidParams("cs_r"))

	got, err := svc.Refund(context.Background(), o.ID)
	if err != nil {
		t.Fatalf("Refund: %v", err)
	}
	if got.Status != StatusRefunded {
		t.Fatalf("expected refunded, got %s", got.Status)
	}
	if len(gw.refunds) != 1 || gw.refunds[0] != "cs_r" {
		t.Fatalf("expected one gateway refund for cs_r, got %v", gw.refunds)
	}
}

func TestRefundGatewayFailureLeavesOrderAlone(t *testing.T) {
	repo := NewMemoryRepository()
	gw := &fakeGateway{fail: true}
	svc := newTestService(repo, gw, nil)
	o, _ := svc.RecordPaid(context.Background(), paidParams("cs_rf"))

	if _, err := svc.Refund(context.Background(), o.ID); err == nil {
		t.Fatal("expected refund to fail")
	}
	cur, _ := repo.GetByID(context.Background(), o.ID)
	if cur.Status != StatusPaid {
		t.Fatalf("order status changed despite gateway failure: %s", cur.Status)
	}
}

func TestRefundCompletedOrderRejected(t *testing.T) {
	repo := NewMemoryRepository()
	svc := newTestService(repo, &fakeGateway{}, nil)
	o, _ := svc.RecordPaid(context.Background(), paidParams("cs_done"))
	if _, err := svc.Deliver(context.Background(), o.ID, "seller-1", "done", ""); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Complete(context.Background(), o.ID, Actor{ID: "buyer-1"}); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Refund(context.Background(), o.ID); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestConcurrentCancelAndDeliverExactlyOneWins(t *testing.T) {
	for i := 0; i < 20; i++ {
		repo := NewMemoryRepository()
		svc := newTestService(repo, &fakeGateway{}, nil)
		o, _ := svc.RecordPaid(context.Background(), paidParams("cs_race"))

		var wg sync.WaitGroup
		var cancelErr, deliverErr error
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, cancelErr = svc.Cancel(context.Background(), o.ID)
		}()
		go func() {
			defer wg.Done()
			_, deliverErr = svc.Deliver(context.Background(), o.ID, "seller-1", "work", "")
		}()
		wg.Wait()

		cur, _ := repo.GetByID(context.Background(), o.ID)
		switch cur.Status {
		case StatusCancelled:
			if deliverErr == nil {
				t.Fatal("both cancel and deliver reported success")
			}
		case StatusDelivered:
			if cancelErr == nil {
				t.Fatal("both cancel and deliver reported success")
			}
		default:
			t.Fatalf("unexpected final status %s", cur.Status)
		}
	}
}

func TestSweepAutoComplete(t *testing.T) {
	repo := NewMemoryRepository()
	svc := newTestService(repo, &fakeGateway{}, nil)

	stale, _ := svc.RecordPaid(context.Background(), paidParams("cs_old"))
	if _, err := svc.Deliver(context.Background(), stale.ID, "seller-1", "work", ""); err != nil {
		t.Fatal(err)
	}
	fresh := paidParams("cs_new")
	fresh.BuyerID = "buyer-2"
	freshOrder, _ := svc.RecordPaid(context.Background(), fresh)
	if _, err := svc.Deliver(context.Background(), freshOrder.ID, "seller-1", "work", ""); err != nil {
		t.Fatal(err)
	}

	// Age only the first delivery.
	old := time.Now().Add(-15 * 24 * time.Hour)
	repo.mu.Lock()
	repo.orders[stale.ID].DeliveredAt = &old
	repo.mu.Unlock()

	n, err := svc.SweepAutoComplete(context.Background(), 10)
	if err != nil {
		t.Fatalf("SweepAutoComplete: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 auto-completion, got %d", n)
	}
	cur, _ := repo.GetByID(context.Background(), stale.ID)
	if cur.Status != StatusCompleted {
		t.Fatalf("stale order not completed: %s", cur.Status)
	}
	cur, _ = repo.GetByID(context.Background(), freshOrder.ID)
	if cur.Status != StatusDelivered {
		t.Fatalf("fresh order should stay delivered: %s", cur.Status)
	}
}

func TestGetVisibility(t *testing.T) {
	repo := NewMemoryRepository()
	svc := newTestService(repo, &fakeGateway{}, nil)
	o, _ := svc.RecordPaid(context.Background(), paidParams("cs_v"))

	if _, err := svc.Get(context.Background(), o.ID, Actor{ID: "buyer-1"}); err != nil {
		t.Fatalf("buyer: %v", err)
	}
	if _, err := svc.Get(context.Background(), o.ID, Actor{ID: "seller-1"}); err != nil {
		t.Fatalf("seller: %v", err)
	}
	if _, err := svc.Get(context.Background(), o.ID, Actor{Operator: true}); err != nil {
		t.Fatalf("operator: %v", err)
	}
	if _, err := svc.Get(context.Background(), o.ID, Actor{ID: "stranger"}); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("stranger: expected ErrUnauthorized, got %v", err)
	}
}
