package offer

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type Handler struct {
	repo  Repository
	cache *Cache
}

func NewHandler(repo Repository, cache *Cache) *Handler {
	return &Handler{repo: repo, cache: cache}
}

func errStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

type offerRequest struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	Type         Type   `json:"offer_type"`
	PriceCents   int64  `json:"price_cents"`
	DeliveryDays int    `json:"delivery_days"`
}

// List is the public discovery endpoint. The unfiltered listing is served
// from the Redis cache when one is configured.
func (h *Handler) List(c echo.Context) error {
	ctx := c.Request().Context()
	f := Filter{
		Type:    Type(c.QueryParam("type")),
		OwnerID: c.QueryParam("seller"),
	}
	if raw := c.QueryParam("max_price_cents"); raw != "" {
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || v < 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid max_price_cents"})
		}
		f.MaxPriceCents = v
	}
	if f.Type != "" && !f.Type.Valid() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid offer type"})
	}

	unfiltered := f == (Filter{})
	if unfiltered {
		if offers, ok := h.cache.Get(ctx); ok {
			return c.JSON(http.StatusOK, echo.Map{"offers": offers})
		}
	}
	offers, err := h.repo.ListActive(ctx, f)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch offers"})
	}
	if offers == nil {
		offers = []Offer{}
	}
	if unfiltered {
		h.cache.Set(ctx, offers)
	}
	return c.JSON(http.StatusOK, echo.Map{"offers": offers})
}

func (h *Handler) Get(c echo.Context) error {
	o, err := h.repo.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return c.JSON(errStatus(err), echo.Map{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, o)
}

// Create lists a new offer for the authenticated student.
func (h *Handler) Create(c echo.Context) error {
	uid, ok := c.Get("user_id").(string)
	if !ok || uid == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req offerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	now := time.Now()
	o := &Offer{
		ID:           uuid.New().String(),
		OwnerID:      uid,
		Title:        req.Title,
		Description:  req.Description,
		Type:         req.Type,
		PriceCents:   req.PriceCents,
		DeliveryDays: req.DeliveryDays,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := o.Validate(); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	if err := h.repo.Create(c.Request().Context(), o); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create offer"})
	}
	h.cache.Invalidate(c.Request().Context())
	return c.JSON(http.StatusCreated, o)
}

// Update edits an offer owned by the requester.
func (h *Handler) Update(c echo.Context) error {
	uid, ok := c.Get("user_id").(string)
	if !ok || uid == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req offerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	o := &Offer{
		ID:           c.Param("id"),
		OwnerID:      uid,
		Title:        req.Title,
		Description:  req.Description,
		Type:         req.Type,
		PriceCents:   req.PriceCents,
		DeliveryDays: req.DeliveryDays,
	}
	if err := o.Validate(); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	if err := h.repo.Update(c.Request().Context(), o); err != nil {
		return c.JSON(errStatus(err), echo.Map{"error": err.Error()})
	}
	h.cache.Invalidate(c.Request().Context())
	return c.JSON(http.StatusOK, echo.Map{"message": "Offer updated"})
}

// Pause hides an offer from discovery and checkout without deleting it.
func (h *Handler) Pause(c echo.Context) error {
	return h.setActive(c, false, "Offer paused")
}

// Resume reactivates a paused offer.
func (h *Handler) Resume(c echo.Context) error {
	return h.setActive(c, true, "Offer resumed")
}

func (h *Handler) setActive(c echo.Context, active bool, msg string) error {
	uid, ok := c.Get("user_id").(string)
	if !ok || uid == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	if err := h.repo.SetActive(c.Request().Context(), c.Param("id"), uid, active); err != nil {
		return c.JSON(errStatus(err), echo.Map{"error": err.Error()})
	}
	h.cache.Invalidate(c.Request().Context())
	return c.JSON(http.StatusOK, echo.Map{"message": msg})
}

// ListMine returns the requester's own offers, paused ones included.
func (h *Handler) ListMine(c echo.Context) error {
	uid, ok := c.Get("user_id").(string)
	if !ok || uid == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	offers, err := h.repo.ListByOwner(c.Request().Context(), uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch offers"})
	}
	if offers == nil {
		offers = []Offer{}
	}
	return c.JSON(http.StatusOK, echo.Map{"offers": offers})
}
