package checkout

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/admitlink/admitlink/internal/billing"
	"github.com/admitlink/admitlink/internal/offer"
	"github.com/admitlink/admitlink/internal/payment"
)

var (
	ErrOfferInactive = errors.New("offer is not active")
	ErrSelfPurchase  = errors.New("cannot purchase your own offer")
)

// Service builds payment sessions for offers. All preconditions are checked
// before the gateway is touched, so a rejected checkout leaves no side
// effect anywhere.
type Service struct {
	offers  offer.Repository
	gateway payment.Gateway
	calc    billing.Calculator
	appURL  string
}

func NewService(offers offer.Repository, gateway payment.Gateway, calc billing.Calculator, appURL string) *Service {
	return &Service{offers: offers, gateway: gateway, calc: calc, appURL: appURL}
}

// Initiate validates the purchase and opens a checkout session. The session
// metadata snapshots everything the webhook needs to build the order, so a
// later offer edit cannot change what the buyer pays for.
func (s *Service) Initiate(ctx context.Context, offerID, buyerID string) (*payment.Session, error) {
	o, err := s.offers.GetByID(ctx, offerID)
	if err != nil {
		return nil, err
	}
	if !o.IsActive {
		return nil, ErrOfferInactive
	}
	if o.OwnerID == buyerID {
		return nil, ErrSelfPurchase
	}

	split, err := s.calc.ComputeFees(o.PriceCents)
	if err != nil {
		return nil, err
	}

	sess, err := s.gateway.CreateCheckoutSession(ctx, payment.SessionRequest{
		AmountCents: o.PriceCents,
		Currency:    "usd",
		Description: fmt.Sprintf("%s (%s)", o.Title, o.Type),
		SuccessURL:  s.appURL + "/checkout/success",
		CancelURL:   s.appURL + "/offers/" + o.ID,
		Metadata: map[string]string{
			payment.MetaOfferID:           o.ID,
			payment.MetaBuyerID:           buyerID,
			payment.MetaSellerID:          o.OwnerID,
			payment.MetaPlatformFeeCents:  strconv.FormatInt(split.PlatformFeeCents, 10),
			payment.MetaSellerAmountCents: strconv.FormatInt(split.SellerAmountCents, 10),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create payment session: %w", err)
	}
	return sess, nil
}
