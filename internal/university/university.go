package university

import (
	"context"
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
)

var ErrNotFound = errors.New("university not found")

type University struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Country string `json:"country"`
	City    string `json:"city"`
	Website string `json:"website,omitempty"`
}

type Repository interface {
	List(ctx context.Context, country string) ([]University, error)
	GetByID(ctx context.Context, id string) (*University, error)
}

type pgRepo struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &pgRepo{pool: pool}
}

func (r *pgRepo) List(ctx context.Context, country string) ([]University, error) {
	q := `SELECT id, name, country, city, website FROM universities`
	args := []any{}
	if country != "" {
		q += ` WHERE country = $1`
		args = append(args, country)
	}
	q += ` ORDER BY name`

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []University
	for rows.Next() {
		var u University
		if err := rows.Scan(&u.ID, &u.Name, &u.Country, &u.City, &u.Website); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *pgRepo) GetByID(ctx context.Context, id string) (*University, error) {
	u := new(University)
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, country, city, website FROM universities WHERE id = $1`, id,
	).Scan(&u.ID, &u.Name, &u.Country, &u.City, &u.Website)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return u, nil
}

// MemoryRepository serves a fixed directory in demo mode.
type MemoryRepository struct {
	universities []University
}

func NewMemoryRepository(seed []University) *MemoryRepository {
	return &MemoryRepository{universities: seed}
}

func (m *MemoryRepository) List(_ context.Context, country string) ([]University, error) {
	if country == "" {
		return m.universities, nil
	}
	var out []University
	for _, u := range m.universities {
		if u.Country == country {
			out = append(out, u)
		}
	}
	return out, nil
}

func (m *MemoryRepository) GetByID(_ context.Context, id string) (*University, error) {
	for i := range m.universities {
		if m.universities[i].ID == id {
			return &m.universities[i], nil
		}
	}
	return nil, ErrNotFound
}

type Handler struct {
	repo Repository
}

func NewHandler(repo Repository) *Handler {
	return &Handler{repo: repo}
}

func (h *Handler) List(c echo.Context) error {
	list, err := h.repo.List(c.Request().Context(), c.QueryParam("country"))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch universities"})
	}
	if list == nil {
		list = []University{}
	}
	return c.JSON(http.StatusOK, echo.Map{"universities": list})
}

func (h *Handler) Get(c echo.Context) error {
	u, err := h.repo.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "university not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch university"})
	}
	return c.JSON(http.StatusOK, u)
}
