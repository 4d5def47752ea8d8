package review

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/admitlink/admitlink/internal/order"
)

const testOrderID = "cccccccc-0000-0000-0000-000000000001"

func seedOrder(t *testing.T, repo *order.MemoryRepository, status order.Status) {
	t.Helper()
	now := time.Now()
	err := repo.Create(context.Background(), &order.Order{
		ID:                testOrderID,
		OfferID:           "offer-1",
		BuyerID:           "buyer-1",
		SellerID:          "seller-1",
		Status:            status,
		AmountCents:       2500,
		PlatformFeeCents:  375,
		SellerAmountCents: 2125,
		PaymentSessionID:  "cs_1",
		CreatedAt:         now,
		UpdatedAt:         now,
	})
	if err != nil {
		t.Fatalf("seed order: %v", err)
	}
}

func postReview(t *testing.T, h *Handler, userID, body string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/orders/"+testOrderID+"/review", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(testOrderID)
	c.Set("user_id", userID)
	if err := h.Create(c); err != nil {
		t.Fatalf("Create: %v", err)
	}
	return rec
}

func TestCreateReviewHappyPath(t *testing.T) {
	orders := order.NewMemoryRepository()
	seedOrder(t, orders, order.StatusCompleted)
	h := NewHandler(NewMemoryRepository(), orders)

	rec := postReview(t, h, "buyer-1", `{"rating":5,"comment":"Super helpful"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body)
	}

	rv, err := h.reviews.GetByOrder(context.Background(), testOrderID)
	if err != nil {
		t.Fatalf("review not stored: %v", err)
	}
	if rv.SellerID != "seller-1" || rv.Rating != 5 {
		t.Fatalf("unexpected review: %+v", rv)
	}
}

func TestCreateReviewOnlyOnceAndOnlyCompleted(t *testing.T) {
	orders := order.NewMemoryRepository()
	seedOrder(t, orders, order.StatusCompleted)
	h := NewHandler(NewMemoryRepository(), orders)

	postReview(t, h, "buyer-1", `{"rating":4,"comment":"good"}`)
	rec := postReview(t, h, "buyer-1", `{"rating":1,"comment":"changed my mind"}`)
	if rec.Code != http.StatusConflict {
		t.Fatalf("duplicate review: expected 409, got %d", rec.Code)
	}

	orders2 := order.NewMemoryRepository()
	seedOrder(t, orders2, order.StatusDelivered)
	h2 := NewHandler(NewMemoryRepository(), orders2)
	rec = postReview(t, h2, "buyer-1", `{"rating":4,"comment":"good"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("review before completion: expected 400, got %d", rec.Code)
	}
}

func TestCreateReviewGuards(t *testing.T) {
	orders := order.NewMemoryRepository()
	seedOrder(t, orders, order.StatusCompleted)
	h := NewHandler(NewMemoryRepository(), orders)

	rec := postReview(t, h, "seller-1", `{"rating":5,"comment":"I am great"}`)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("seller self-review: expected 403, got %d", rec.Code)
	}

	rec = postReview(t, h, "buyer-1", `{"rating":6,"comment":"too enthusiastic"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("rating out of range: expected 400, got %d", rec.Code)
	}
}

func TestSellerSummaryAverages(t *testing.T) {
	repo := NewMemoryRepository()
	now := time.Now()
	_ = repo.Create(context.Background(), &Review{ID: "r1", OrderID: "o1", BuyerID: "b1", SellerID: "s1", Rating: 5, CreatedAt: now})
	_ = repo.Create(context.Background(), &Review{ID: "r2", OrderID: "o2", BuyerID: "b2", SellerID: "s1", Rating: 3, CreatedAt: now})
	_ = repo.Create(context.Background(), &Review{ID: "r3", OrderID: "o3", BuyerID: "b3", SellerID: "other", Rating: 1, CreatedAt: now})

	sum, err := repo.SellerSummary(context.Background(), "s1")
	if err != nil {
		t.Fatalf("SellerSummary: %v", err)
	}
	if sum.TotalReviews != 2 {
		t.Fatalf("expected 2 reviews, got %d", sum.TotalReviews)
	}
	if sum.AverageRating != 4 {
		t.Fatalf("expected average 4, got %f", sum.AverageRating)
	}
}
