package order

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func errStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, ErrInvalidTransition), errors.Is(err, ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// ListMine returns all orders where the requester is buyer or seller.
func (h *Handler) ListMine(c echo.Context) error {
	uid, ok := c.Get("user_id").(string)
	if !ok || uid == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	orders, err := h.svc.ListForUser(c.Request().Context(), uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch orders"})
	}
	if orders == nil {
		orders = []Order{}
	}
	return c.JSON(http.StatusOK, echo.Map{"orders": orders})
}

// Get returns a single order visible to the requester.
func (h *Handler) Get(c echo.Context) error {
	uid, ok := c.Get("user_id").(string)
	if !ok || uid == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	role, _ := c.Get("role").(string)
	o, err := h.svc.Get(c.Request().Context(), c.Param("id"), Actor{ID: uid, Operator: role == "admin"})
	if err != nil {
		return c.JSON(errStatus(err), echo.Map{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, o)
}

// Deliver lets the seller submit the work for a paid order.
func (h *Handler) Deliver(c echo.Context) error {
	uid, ok := c.Get("user_id").(string)
	if !ok || uid == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req struct {
		Content     string `json:"content"`
		MeetingLink string `json:"meeting_link"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	o, err := h.svc.Deliver(c.Request().Context(), c.Param("id"), uid, req.Content, req.MeetingLink)
	if err != nil {
		return c.JSON(errStatus(err), echo.Map{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Order delivered", "order": o})
}

// Complete lets the buyer confirm delivery and close the order.
func (h *Handler) Complete(c echo.Context) error {
	uid, ok := c.Get("user_id").(string)
	if !ok || uid == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	role, _ := c.Get("role").(string)
	o, err := h.svc.Complete(c.Request().Context(), c.Param("id"), Actor{ID: uid, Operator: role == "admin"})
	if err != nil {
		return c.JSON(errStatus(err), echo.Map{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Order completed", "order": o})
}
