package checkout

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/admitlink/admitlink/internal/billing"
	"github.com/admitlink/admitlink/internal/offer"
	"github.com/admitlink/admitlink/internal/payment"
)

type capturingGateway struct {
	lastReq *payment.SessionRequest
	fail    bool
}

func (g *capturingGateway) CreateCheckoutSession(_ context.Context, req payment.SessionRequest) (*payment.Session, error) {
	if g.fail {
		return nil, errors.New("gateway unavailable")
	}
	g.lastReq = &req
	return &payment.Session{ID: "cs_test", URL: "https://pay.example.com/cs_test"}, nil
}

func (g *capturingGateway) RefundSession(context.Context, string, int64) error { return nil }

func seedOffer(t *testing.T, repo *offer.MemoryRepository, active bool) *offer.Offer {
	t.Helper()
	o := &offer.Offer{
		ID:           "offer-1",
		OwnerID:      "seller-1",
		Title:        "Essay review",
		Description:  "Written feedback on your motivation letter.",
		Type:         offer.TypeWrittenReview,
		PriceCents:   2500,
		DeliveryDays: 3,
		IsActive:     active,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	if err := repo.Create(context.Background(), o); err != nil {
		t.Fatalf("seed offer: %v", err)
	}
	return o
}

func TestInitiateBuildsSessionWithSnapshot(t *testing.T) {
	repo := offer.NewMemoryRepository()
	o := seedOffer(t, repo, true)
	gw := &capturingGateway{}
	svc := NewService(repo, gw, billing.NewCalculator(0.15), "http://localhost:3000")

	sess, err := svc.Initiate(context.Background(), o.ID, "buyer-1")
	if err != nil {
		t.Fatalf("Initiate: %v", err)
	}
	if sess.ID != "cs_test" || sess.URL == "" {
		t.Fatalf("unexpected session: %+v", sess)
	}

	req := gw.lastReq
	if req == nil {
		t.Fatal("gateway never called")
	}
	if req.AmountCents != 2500 {
		t.Fatalf("expected amount 2500, got %d", req.AmountCents)
	}
	md := req.Metadata
	if md[payment.MetaOfferID] != "offer-1" || md[payment.MetaBuyerID] != "buyer-1" || md[payment.MetaSellerID] != "seller-1" {
		t.Fatalf("metadata ids wrong: %v", md)
	}
	if md[payment.MetaPlatformFeeCents] != "375" || md[payment.MetaSellerAmountCents] != "2125" {
		t.Fatalf("metadata fee split wrong: %v", md)
	}
}

func TestInitiateRejectsInactiveOffer(t *testing.T) {
	repo := offer.NewMemoryRepository()
	o := seedOffer(t, repo, false)
	gw := &capturingGateway{}
	svc := NewService(repo, gw, billing.NewCalculator(0.15), "http://localhost:3000")

	if _, err := svc.Initiate(context.Background(), o.ID, "buyer-1"); !errors.Is(err, ErrOfferInactive) {
		t.Fatalf("expected ErrOfferInactive, got %v", err)
	}
	if gw.lastReq != nil {
		t.Fatal("gateway called for inactive offer")
	}
}

func TestInitiateRejectsSelfPurchase(t *testing.T) {
	repo := offer.NewMemoryRepository()
	o := seedOffer(t, repo, true)
	gw := &capturingGateway{}
	svc := NewService(repo, gw, billing.NewCalculator(0.15), "http://localhost:3000")

	if _, err := svc.Initiate(context.Background(), o.ID, "seller-1"); !errors.Is(err, ErrSelfPurchase) {
		t.Fatalf("expected ErrSelfPurchase, got %v", err)
	}
	if gw.lastReq != nil {
		t.Fatal("gateway called for self purchase")
	}
}

func TestInitiateUnknownOffer(t *testing.T) {
	repo := offer.NewMemoryRepository()
	svc := NewService(repo, &capturingGateway{}, billing.NewCalculator(0.15), "http://localhost:3000")

	if _, err := svc.Initiate(context.Background(), "missing", "buyer-1"); !errors.Is(err, offer.ErrNotFound) {
		t.Fatalf("expected offer.ErrNotFound, got %v", err)
	}
}

func TestInitiateGatewayFailure(t *testing.T) {
	repo := offer.NewMemoryRepository()
	o := seedOffer(t, repo, true)
	svc := NewService(repo, &capturingGateway{fail: true}, billing.NewCalculator(0.15), "http://localhost:3000")

	if _, err := svc.Initiate(context.Background(), o.ID, "buyer-1"); err == nil {
		t.Fatal("expected error when gateway is down")
	}
}
