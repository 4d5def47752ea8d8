package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/admitlink/admitlink/internal/user"
)

type stubNotifier struct {
	welcomes []string
	resets   []string
}

func (s *stubNotifier) Welcome(u *user.User)                       { s.welcomes = append(s.welcomes, u.Email) }
func (s *stubNotifier) PasswordReset(u *user.User, resetURL string) { s.resets = append(s.resets, resetURL) }

func newAuthFixture(n Notifier) (*Handler, *user.MemoryRepository) {
	repo := user.NewMemoryRepository()
	h := NewHandler(repo, []byte("test-secret"), time.Hour, "http://localhost:3000", n)
	return h, repo
}

func doJSON(t *testing.T, handler echo.HandlerFunc, method, path, body string, setup func(echo.Context)) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if setup != nil {
		setup(c)
	}
	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	return rec
}

func TestSignupIssuesToken(t *testing.T) {
	n := &stubNotifier{}
	h, repo := newAuthFixture(n)

	rec := doJSON(t, h.Signup, http.MethodPost, "/signup",
		`{"name":"Aisha","email":"aisha@example.com","password":"secret1","role":"applicant"}`, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body)
	}

	var resp TokenResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil || resp.Token == "" {
		t.Fatalf("no token in response: %s", rec.Body)
	}

	tok, err := jwt.Parse(resp.Token, func(*jwt.Token) (interface{}, error) { return []byte("test-secret"), nil })
	if err != nil || !tok.Valid {
		t.Fatalf("token does not verify: %v", err)
	}
	claims := tok.Claims.(jwt.MapClaims)
	if claims["role"] != user.RoleApplicant {
		t.Fatalf("expected applicant role claim, got %v", claims["role"])
	}

	u, err := repo.GetByEmail(context.Background(), "aisha@example.com")
	if err != nil {
		t.Fatalf("user not persisted: %v", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("secret1")); err != nil {
		t.Fatal("stored hash does not match password")
	}
	if len(n.welcomes) != 1 {
		t.Fatalf("expected 1 welcome email, got %d", len(n.welcomes))
	}
}

func TestSignupRejectsAdminRole(t *testing.T) {
	h, _ := newAuthFixture(nil)
	rec := doJSON(t, h.Signup, http.MethodPost, "/signup",
		`{"name":"X","email":"x@example.com","password":"secret1","role":"admin"}`, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for admin signup, got %d", rec.Code)
	}
}

func TestSignupDuplicateEmail(t *testing.T) {
	h, _ := newAuthFixture(nil)
	body := `{"name":"X","email":"dup@example.com","password":"secret1","role":"student"}`
	doJSON(t, h.Signup, http.MethodPost, "/signup", body, nil)
	rec := doJSON(t, h.Signup, http.MethodPost, "/signup", body, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for duplicate email, got %d", rec.Code)
	}
}

func TestLoginFlows(t *testing.T) {
	h, repo := newAuthFixture(nil)
	doJSON(t, h.Signup, http.MethodPost, "/signup",
		`{"name":"Mara","email":"mara@example.com","password":"secret1","role":"student"}`, nil)

	rec := doJSON(t, h.Login, http.MethodPost, "/login",
		`{"email":"mara@example.com","password":"secret1"}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("valid login: expected 200, got %d", rec.Code)
	}

	rec = doJSON(t, h.Login, http.MethodPost, "/login",
		`{"email":"mara@example.com","password":"wrong"}`, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("wrong password: expected 401, got %d", rec.Code)
	}

	rec = doJSON(t, h.Login, http.MethodPost, "/login",
		`{"email":"nobody@example.com","password":"secret1"}`, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("unknown email: expected 401, got %d", rec.Code)
	}

	u, _ := repo.GetByEmail(context.Background(), "mara@example.com")
	_ = repo.SetActive(context.Background(), u.ID, false)
	rec = doJSON(t, h.Login, http.MethodPost, "/login",
		`{"email":"mara@example.com","password":"secret1"}`, nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("suspended account: expected 403, got %d", rec.Code)
	}
}

func TestMe(t *testing.T) {
	h, repo := newAuthFixture(nil)
	u := &user.User{ID: "u-1", Email: "me@example.com", Name: "Me", Role: user.RoleApplicant, IsActive: true}
	_ = repo.Create(context.Background(), u)

	rec := doJSON(t, h.Me, http.MethodGet, "/me", "", func(c echo.Context) {
		c.Set("user_id", "u-1")
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "password") {
		t.Fatal("response leaks password material")
	}

	rec = doJSON(t, h.Me, http.MethodGet, "/me", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("missing identity: expected 401, got %d", rec.Code)
	}
}

func TestPasswordResetFlow(t *testing.T) {
	n := &stubNotifier{}
	h, repo := newAuthFixture(n)
	doJSON(t, h.Signup, http.MethodPost, "/signup",
		`{"name":"Tomas","email":"tomas@example.com","password":"oldpass1","role":"student"}`, nil)

	rec := doJSON(t, h.RequestPasswordReset, http.MethodPost, "/password-reset/request",
		`{"email":"tomas@example.com"}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("request: expected 200, got %d", rec.Code)
	}
	if len(n.resets) != 1 {
		t.Fatalf("expected 1 reset email, got %d", len(n.resets))
	}
	resetURL := n.resets[0]
	token := resetURL[strings.Index(resetURL, "token=")+len("token="):]

	body, _ := json.Marshal(map[string]string{"token": token, "new_password": "newpass1"})
	rec = doJSON(t, h.ConfirmPasswordReset, http.MethodPost, "/password-reset/confirm", string(body), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("confirm: expected 200, got %d: %s", rec.Code, rec.Body)
	}

	u, _ := repo.GetByEmail(context.Background(), "tomas@example.com")
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("newpass1")); err != nil {
		t.Fatal("password was not updated")
	}
}

func TestPasswordResetUnknownEmailLooksTheSame(t *testing.T) {
	n := &stubNotifier{}
	h, _ := newAuthFixture(n)

	rec := doJSON(t, h.RequestPasswordReset, http.MethodPost, "/password-reset/request",
		`{"email":"ghost@example.com"}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for unknown email, got %d", rec.Code)
	}
	if len(n.resets) != 0 {
		t.Fatal("reset email sent for unknown address")
	}
}

func TestConfirmRejectsWrongPurposeToken(t *testing.T) {
	h, _ := newAuthFixture(nil)

	// A login token must not work as a reset token.
	claims := jwt.MapClaims{"user_id": "u-1", "role": "student", "exp": time.Now().Add(time.Hour).Unix()}
	token, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))

	body, _ := json.Marshal(map[string]string{"token": token, "new_password": "newpass1"})
	rec := doJSON(t, h.ConfirmPasswordReset, http.MethodPost, "/password-reset/confirm", string(body), nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for wrong-purpose token, got %d", rec.Code)
	}
}
