package checkout

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/admitlink/admitlink/internal/offer"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Create starts a checkout for an offer and returns the redirect URL.
func (h *Handler) Create(c echo.Context) error {
	buyerID, ok := c.Get("user_id").(string)
	if !ok || buyerID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	var req struct {
		OfferID string `json:"offer_id"`
	}
	if err := c.Bind(&req); err != nil || req.OfferID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid offer_id"})
	}

	sess, err := h.svc.Initiate(c.Request().Context(), req.OfferID, buyerID)
	if err != nil {
		switch {
		case errors.Is(err, offer.ErrNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "offer not found"})
		case errors.Is(err, ErrOfferInactive):
			return c.JSON(http.StatusConflict, echo.Map{"error": "offer is not active"})
		case errors.Is(err, ErrSelfPurchase):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "you cannot purchase your own offer"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start checkout"})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"session_id": sess.ID, "url": sess.URL})
}
