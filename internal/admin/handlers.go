package admin

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/admitlink/admitlink/internal/order"
	"github.com/admitlink/admitlink/internal/user"
)

type Handler struct {
	users  user.Repository
	orders order.Repository
	svc    *order.Service
}

func NewHandler(users user.Repository, orders order.Repository, svc *order.Service) *Handler {
	return &Handler{users: users, orders: orders, svc: svc}
}

func operator(c echo.Context) order.Actor {
	uid, _ := c.Get("user_id").(string)
	return order.Actor{ID: uid, Operator: true}
}

func pagination(c echo.Context) (limit, offset int) {
	limit = 50
	if l, err := strconv.Atoi(c.QueryParam("limit")); err == nil && l > 0 && l <= 200 {
		limit = l
	}
	if o, err := strconv.Atoi(c.QueryParam("offset")); err == nil && o >= 0 {
		offset = o
	}
	return limit, offset
}

// GET /admin/orders
func (h *Handler) ListOrders(c echo.Context) error {
	limit, offset := pagination(c)
	orders, err := h.orders.ListAll(c.Request().Context(), limit, offset)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not fetch orders"})
	}
	if orders == nil {
		orders = []order.Order{}
	}
	return c.JSON(http.StatusOK, echo.Map{"orders": orders})
}

// GET /admin/stats
func (h *Handler) Stats(c echo.Context) error {
	ctx := c.Request().Context()

	stats, err := h.orders.Stats(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not fetch order stats"})
	}
	users, err := h.users.Count(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not fetch user count"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"total_users":        users,
		"orders_by_status":   stats.ByStatus,
		"gross_cents":        stats.GrossCents,
		"platform_fee_cents": stats.PlatformFeeCents,
	})
}

// GET /admin/users
func (h *Handler) ListUsers(c echo.Context) error {
	limit, offset := pagination(c)
	users, err := h.users.List(c.Request().Context(), limit, offset)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not fetch users"})
	}
	if users == nil {
		users = []user.User{}
	}
	return c.JSON(http.StatusOK, echo.Map{"users": users})
}

// POST /admin/users/:id/suspend
func (h *Handler) SuspendUser(c echo.Context) error {
	return h.setUserActive(c, false, "user suspended")
}

// POST /admin/users/:id/activate
func (h *Handler) ActivateUser(c echo.Context) error {
	return h.setUserActive(c, true, "user activated")
}

func (h *Handler) setUserActive(c echo.Context, active bool, msg string) error {
	id := c.Param("id")
	if id == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "user id required"})
	}
	if err := h.users.SetActive(c.Request().Context(), id, active); err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not update user"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": msg})
}

// POST /admin/orders/:id/cancel
func (h *Handler) CancelOrder(c echo.Context) error {
	o, err := h.svc.Cancel(c.Request().Context(), c.Param("id"))
	if err != nil {
		return h.orderError(c, err)
	}
	return c.JSON(http.StatusOK, o)
}

// POST /admin/orders/:id/refund
func (h *Handler) RefundOrder(c echo.Context) error {
	o, err := h.svc.Refund(c.Request().Context(), c.Param("id"))
	if err != nil {
		return h.orderError(c, err)
	}
	return c.JSON(http.StatusOK, o)
}

// POST /admin/orders/:id/complete
func (h *Handler) CompleteOrder(c echo.Context) error {
	o, err := h.svc.Complete(c.Request().Context(), c.Param("id"), operator(c))
	if err != nil {
		return h.orderError(c, err)
	}
	return c.JSON(http.StatusOK, o)
}

func (h *Handler) orderError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, order.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "order not found"})
	case errors.Is(err, order.ErrInvalidTransition), errors.Is(err, order.ErrConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	case errors.Is(err, order.ErrValidation):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "operation failed"})
	}
}
