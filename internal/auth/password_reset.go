package auth

import (
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"
)

const resetTokenTTL = 15 * time.Minute

type ResetRequest struct {
	Email string `json:"email"`
}

type ResetConfirm struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

// RequestPasswordReset issues a short-lived reset token. The response is
// identical whether or not the email exists.
func (h *Handler) RequestPasswordReset(c echo.Context) error {
	req := new(ResetRequest)
	if err := c.Bind(req); err != nil || req.Email == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email is required"})
	}

	u, err := h.users.GetByEmail(c.Request().Context(), req.Email)
	if err == nil && u.IsActive {
		claims := jwt.MapClaims{
			"user_id": u.ID,
			"purpose": "password_reset",
			"exp":     time.Now().Add(resetTokenTTL).Unix(),
		}
		signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(h.secret)
		if err == nil && h.notifier != nil {
			h.notifier.PasswordReset(u, h.appURL+"/reset-password?token="+signed)
		}
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "if the email exists, a reset link has been sent"})
}

// ConfirmPasswordReset validates the reset token and sets a new password.
func (h *Handler) ConfirmPasswordReset(c echo.Context) error {
	req := new(ResetConfirm)
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if req.Token == "" || len(req.NewPassword) < 6 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "token and a password of at least 6 characters are required"})
	}

	token, err := jwt.Parse(req.Token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return h.secret, nil
	})
	if err != nil || !token.Valid {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired token"})
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || claims["purpose"] != "password_reset" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired token"})
	}
	uid, _ := claims["user_id"].(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired token"})
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "server error"})
	}
	if err := h.users.UpdatePassword(c.Request().Context(), uid, string(hashed)); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not update password"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "password updated"})
}
