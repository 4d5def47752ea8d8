package offer

import (
	"errors"
	"testing"
)

func validOffer() Offer {
	return Offer{
		ID:           "offer-1",
		OwnerID:      "seller-1",
		Title:        "Essay review",
		Description:  "Detailed feedback",
		Type:         TypeWrittenReview,
		PriceCents:   2500,
		DeliveryDays: 3,
	}
}

func TestOfferValidate(t *testing.T) {
	o := validOffer()
	if err := o.Validate(); err != nil {
		t.Fatalf("valid offer rejected: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*Offer)
	}{
		{"empty title", func(o *Offer) { o.Title = "" }},
		{"empty description", func(o *Offer) { o.Description = "" }},
		{"unknown type", func(o *Offer) { o.Type = "phone_call" }},
		{"price too low", func(o *Offer) { o.PriceCents = MinPriceCents - 1 }},
		{"price too high", func(o *Offer) { o.PriceCents = MaxPriceCents + 1 }},
		{"zero delivery days", func(o *Offer) { o.DeliveryDays = 0 }},
		{"delivery too long", func(o *Offer) { o.DeliveryDays = MaxDeliveryDays + 1 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			o := validOffer()
			tc.mutate(&o)
			if err := o.Validate(); !errors.Is(err, ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
		})
	}
}

func TestOfferValidateBounds(t *testing.T) {
	o := validOffer()
	o.PriceCents = MinPriceCents
	o.DeliveryDays = MinDeliveryDays
	if err := o.Validate(); err != nil {
		t.Fatalf("lower bounds rejected: %v", err)
	}
	o.PriceCents = MaxPriceCents
	o.DeliveryDays = MaxDeliveryDays
	if err := o.Validate(); err != nil {
		t.Fatalf("upper bounds rejected: %v", err)
	}
}

func TestTypeValid(t *testing.T) {
	for _, typ := range []Type{TypeWrittenReview, TypeVideoCall, TypeChatSession} {
		if !typ.Valid() {
			t.Errorf("expected %s to be valid", typ)
		}
	}
	if Type("").Valid() || Type("mentoring").Valid() {
		t.Error("unknown types must not be valid")
	}
}
