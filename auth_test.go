package contentsync

import (
	"errors"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("s3cret-pass")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if hash == "s3cret-pass" {
		t.Fatal("hash must not equal the password")
	}
	if !CheckPassword(hash, "s3cret-pass") {
		t.Error("expected matching password to check")
	}
	if CheckPassword(hash, "wrong") {
		t.Error("expected wrong password to fail")
	}
}

func TestTokenRoundTrip(t *testing.T) {
	a := setupTestApp(t, nil)
	u := User{ID: "user-1", Email: "a@example.com"}

	token, expires, err := a.issueToken(u)
	if err != nil {
		t.Fatalf("issueToken failed: %v", err)
	}
	if d := time.Until(expires); d < 11*time.Hour || d > 12*time.Hour {
		t.Errorf("expiry in %s, want about 12h", d)
	}
	id, err := a.parseToken(token)
	if err != nil {
		t.Fatalf("parseToken failed: %v", err)
	}
	if id != u.ID {
		t.Errorf("subject = %q, want %q", id, u.ID)
	}
}

func TestParseTokenRejects(t *testing.T) {
	a := setupTestApp(t, nil)

	expired := setupTestApp(t, nil, func(c *Config) { c.TokenTTL = -time.Minute })
	old, _, err := expired.issueToken(User{ID: "u"})
	if err != nil {
		t.Fatalf("issueToken failed: %v", err)
	}

	other := setupTestApp(t, nil, func(c *Config) { c.JWTSecret = "another-secret" })
	forged, _, _ := other.issueToken(User{ID: "u"})

	none, _ := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject:   "u",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)

	noExpiry, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "u"}).
		SignedString([]byte(a.Config.JWTSecret))

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not-a-token"},
		{"expired", old},
		{"wrong secret", forged},
		{"alg none", none},
		{"no expiry", noExpiry},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := a.parseToken(tt.token); !errors.Is(err, ErrInvalidToken) {
				t.Errorf("parseToken err = %v, want ErrInvalidToken", err)
			}
		})
	}
}

func TestAPISignupValidation(t *testing.T) {
	a := setupTestApp(t, nil)

	tests := []struct {
		name string
		body map[string]string
		want int
	}{
		{"ok", map[string]string{"email": "new@example.com", "password": "longenough"}, http.StatusCreated},
		{"duplicate", map[string]string{"email": "NEW@example.com", "password": "longenough"}, http.StatusConflict},
		{"short password", map[string]string{"email": "short@example.com", "password": "short"}, http.StatusBadRequest},
		{"bad email", map[string]string{"email": "nobody", "password": "longenough"}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, a, http.MethodPost, "/api/auth/signup", "", tt.body)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d (body %s)", rec.Code, tt.want, rec.Body)
			}
		})
	}

	rec := doJSON(t, a, http.MethodPost, "/api/auth/signup", "", map[string]string{"email": "json@example.com", "password": "longenough"})
	if strings.Contains(rec.Body.String(), "password") {
		t.Errorf("signup response leaks password hash: %s", rec.Body)
	}
}

func TestAPITokenWrongPasswordIsLimited(t *testing.T) {
	a := setupTestApp(t, nil)
	signupToken(t, a, "limit@example.com")

	bad := map[string]string{"email": "limit@example.com", "password": "wrong-password"}
	for i := 0; i < 5; i++ {
		if rec := doJSON(t, a, http.MethodPost, "/api/auth/token", "", bad); rec.Code != http.StatusUnauthorized {
			t.Fatalf("attempt %d: status = %d, want 401", i+1, rec.Code)
		}
	}
	good := map[string]string{"email": "limit@example.com", "password": "correct-horse"}
	if rec := doJSON(t, a, http.MethodPost, "/api/auth/token", "", good); rec.Code != http.StatusTooManyRequests {
		t.Errorf("status after limit = %d, want 429", rec.Code)
	}
}

func TestAPIRequiresAuth(t *testing.T) {
	a := setupTestApp(t, nil)

	for _, token := range []string{"", "bogus"} {
		rec := doJSON(t, a, http.MethodGet, "/api/platforms", token, nil)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("token %q: status = %d, want 401", token, rec.Code)
		}
		if got := decode[errorBody](t, rec); got.Error != "Unauthorized" {
			t.Errorf("token %q: error = %q", token, got.Error)
		}
	}
}

func TestPagesRedirectToLogin(t *testing.T) {
	a := setupTestApp(t, nil)
	b := newBrowser(a)

	for _, path := range []string{"/", "/platforms/", "/content-gaps/", "/repurpose/", "/review-queue/"} {
		rec := b.get(path)
		if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/login/" {
			t.Errorf("GET %s: %d -> %q, want redirect to /login/", path, rec.Code, rec.Header().Get("Location"))
		}
	}
}

func TestLoginFlow(t *testing.T) {
	a := setupTestApp(t, nil)
	b := newBrowser(a)

	if rec := b.get("/signup/"); rec.Code != http.StatusOK {
		t.Fatalf("GET /signup/ = %d", rec.Code)
	}
	rec := b.post("/signup/", url.Values{"email": {"page@example.com"}, "password": {"pagepass1"}})
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/" {
		t.Fatalf("signup: %d -> %q (%s)", rec.Code, rec.Header().Get("Location"), rec.Body)
	}

	rec = b.get("/")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "page@example.com") {
		t.Fatalf("dashboard: %d %s", rec.Code, rec.Body)
	}

	if rec := b.post("/logout/", nil); rec.Code != http.StatusSeeOther {
		t.Fatalf("logout = %d", rec.Code)
	}
	if rec := b.get("/"); rec.Code != http.StatusSeeOther {
		t.Fatalf("dashboard after logout = %d, want redirect", rec.Code)
	}

	b.get("/login/")
	rec = b.post("/login/", url.Values{"email": {"page@example.com"}, "password": {"nope-nope"}})
	if rec.Code != http.StatusUnauthorized || !strings.Contains(rec.Body.String(), "Invalid email or password") {
		t.Fatalf("bad login: %d %s", rec.Code, rec.Body)
	}
	rec = b.post("/login/", url.Values{"email": {"page@example.com"}, "password": {"pagepass1"}})
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/" {
		t.Fatalf("login: %d -> %q", rec.Code, rec.Header().Get("Location"))
	}
	if rec := b.get("/"); rec.Code != http.StatusOK {
		t.Fatalf("dashboard after login = %d", rec.Code)
	}
}

func TestFormsRequireCSRF(t *testing.T) {
	a := setupTestApp(t, nil)
	b := newBrowser(a)
	b.get("/login/")
	delete(b.cookies, "_csrf")

	rec := b.post("/login/", url.Values{"email": {"x@example.com"}, "password": {"whatever1"}})
	if rec.Code != http.StatusForbidden {
		t.Errorf("POST without token = %d, want 403", rec.Code)
	}
}
