package earnings

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/admitlink/admitlink/internal/order"
)

// Source reports a seller's earnings. Satisfied by order.Repository.
type Source interface {
	SellerEarnings(ctx context.Context, sellerID string) (order.EarningsSummary, error)
}

type Handler struct {
	source Source
}

func NewHandler(source Source) *Handler {
	return &Handler{source: source}
}

// Mine returns the authenticated seller's pending and released balances.
// Pending covers paid and delivered orders; released covers completed ones.
func (h *Handler) Mine(c echo.Context) error {
	sellerID, ok := c.Get("user_id").(string)
	if !ok || sellerID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	summary, err := h.source.SellerEarnings(c.Request().Context(), sellerID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch earnings"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"pending_cents":  summary.PendingCents,
		"released_cents": summary.ReleasedCents,
	})
}
