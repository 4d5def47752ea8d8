package review

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/admitlink/admitlink/internal/order"
)

type Handler struct {
	reviews Repository
	orders  order.Repository
}

func NewHandler(reviews Repository, orders order.Repository) *Handler {
	return &Handler{reviews: reviews, orders: orders}
}

type createRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

// Create lets the buyer of a completed order leave a single review.
func (h *Handler) Create(c echo.Context) error {
	buyerID, ok := c.Get("user_id").(string)
	if !ok || buyerID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	orderID := c.Param("id")
	if _, err := uuid.Parse(orderID); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid order id format"})
	}

	var req createRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	o, err := h.orders.GetByID(c.Request().Context(), orderID)
	if err != nil {
		if errors.Is(err, order.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "order not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch order"})
	}
	if o.BuyerID != buyerID {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "only the buyer can review an order"})
	}
	if o.Status != order.StatusCompleted {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "can only review completed orders"})
	}

	rv := &Review{
		ID:        uuid.New().String(),
		OrderID:   o.ID,
		BuyerID:   buyerID,
		SellerID:  o.SellerID,
		Rating:    req.Rating,
		Comment:   req.Comment,
		CreatedAt: time.Now(),
	}
	if err := rv.Validate(); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "rating must be 1-5 and comment at most 1000 characters"})
	}
	if err := h.reviews.Create(c.Request().Context(), rv); err != nil {
		if errors.Is(err, ErrExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "review already exists for this order"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create review"})
	}

	return c.JSON(http.StatusCreated, echo.Map{"review_id": rv.ID})
}

// GetForOrder returns the review on an order, visible to either party.
func (h *Handler) GetForOrder(c echo.Context) error {
	userID, ok := c.Get("user_id").(string)
	if !ok || userID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	orderID := c.Param("id")
	o, err := h.orders.GetByID(c.Request().Context(), orderID)
	if err != nil {
		if errors.Is(err, order.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "order not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch order"})
	}
	if userID != o.BuyerID && userID != o.SellerID {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "not authorized to view this order's review"})
	}

	rv, err := h.reviews.GetByOrder(c.Request().Context(), orderID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "no review found for this order"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch review"})
	}
	return c.JSON(http.StatusOK, echo.Map{"review": rv})
}

// ListForSeller returns a seller's reviews with a rating summary.
func (h *Handler) ListForSeller(c echo.Context) error {
	sellerID := c.Param("id")
	if sellerID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing seller id"})
	}

	page := 1
	limit := 10
	if p, err := strconv.Atoi(c.QueryParam("page")); err == nil && p > 0 {
		page = p
	}
	if l, err := strconv.Atoi(c.QueryParam("limit")); err == nil && l > 0 && l <= 50 {
		limit = l
	}
	offset := (page - 1) * limit

	summary, err := h.reviews.SellerSummary(c.Request().Context(), sellerID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch rating summary"})
	}
	reviews, err := h.reviews.ListBySeller(c.Request().Context(), sellerID, limit, offset)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch reviews"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"seller_summary": summary,
		"reviews":        reviews,
		"pagination": echo.Map{
			"page":  page,
			"limit": limit,
			"total": summary.TotalReviews,
		},
	})
}
