package contentsync

import (
	"errors"
	"fmt"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLen = 8

var (
	// ErrInvalidCredentials is returned when an email/password pair does not match.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrInvalidToken is returned for malformed, expired or forged API tokens.
	ErrInvalidToken = errors.New("invalid token")
	// ErrInvalidInput marks request validation failures.
	ErrInvalidInput = errors.New("invalid input")
)

// HashPassword hashes a plaintext password with bcrypt.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches the bcrypt hash.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

type tokenClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// issueToken signs an HS256 API token whose subject is the user ID.
func (a *App) issueToken(u User) (string, time.Time, error) {
	now := time.Now()
	expires := now.Add(a.Config.TokenTTL)
	claims := tokenClaims{
		Email: u.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			Issuer:    a.Config.Name,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(a.Config.JWTSecret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expires, nil
}

// parseToken validates an API token and returns its user ID.
func (a *App) parseToken(raw string) (string, error) {
	claims := &tokenClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		return []byte(a.Config.JWTSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil || !token.Valid || claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}

// authenticate returns the user matching the credentials.
func (a *App) authenticate(email, password string) (User, error) {
	u, err := a.Store.GetUserByEmail(email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return User{}, ErrInvalidCredentials
		}
		return User{}, err
	}
	if !CheckPassword(u.PasswordHash, password) {
		return User{}, ErrInvalidCredentials
	}
	return u, nil
}

// register validates and creates a new account.
func (a *App) register(email, password, fullName string) (User, error) {
	email = strings.TrimSpace(email)
	if _, err := mail.ParseAddress(email); err != nil || !strings.Contains(email, "@") {
		return User{}, fmt.Errorf("%w: a valid email is required", ErrInvalidInput)
	}
	if len(password) < minPasswordLen {
		return User{}, fmt.Errorf("%w: password must be at least %d characters", ErrInvalidInput, minPasswordLen)
	}
	hash, err := HashPassword(password)
	if err != nil {
		return User{}, err
	}
	return a.Store.CreateUser(email, fullName, hash)
}

// validationMessage strips the sentinel prefix from a validation error.
func validationMessage(err error) string {
	return strings.TrimPrefix(err.Error(), ErrInvalidInput.Error()+": ")
}

// --- pages ---

func (a *App) authPage(c echo.Context, errMsg, email string) AuthPage {
	return AuthPage{Site: a.Config.Name, Error: errMsg, Email: email, CSRFToken: CsrfToken(c)}
}

func (a *App) handleLoginPage(c echo.Context) error {
	if _, ok := a.resolveUser(c); ok {
		return c.Redirect(http.StatusSeeOther, "/")
	}
	return Render(c, a.Views.Login(a.authPage(c, "", "")))
}

func (a *App) handleLogin(c echo.Context) error {
	ip := c.RealIP()
	if !a.loginLimiter.Check(ip) {
		return RenderStatus(c, http.StatusTooManyRequests,
			a.Views.Login(a.authPage(c, "Too many login attempts. Try again later.", "")))
	}
	email := c.FormValue("email")
	u, err := a.authenticate(email, c.FormValue("password"))
	if err != nil {
		if !errors.Is(err, ErrInvalidCredentials) {
			return err
		}
		a.loginLimiter.Record(ip)
		return RenderStatus(c, http.StatusUnauthorized, a.Views.Login(a.authPage(c, "Invalid email or password.", email)))
	}
	if err := setUserSession(c, u.ID); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/")
}

func (a *App) handleSignupPage(c echo.Context) error {
	return Render(c, a.Views.Signup(a.authPage(c, "", "")))
}

func (a *App) handleSignup(c echo.Context) error {
	email := c.FormValue("email")
	u, err := a.register(email, c.FormValue("password"), c.FormValue("full_name"))
	switch {
	case errors.Is(err, ErrInvalidInput):
		return RenderStatus(c, http.StatusBadRequest, a.Views.Signup(a.authPage(c, validationMessage(err), email)))
	case errors.Is(err, ErrEmailTaken):
		return RenderStatus(c, http.StatusConflict, a.Views.Signup(a.authPage(c, "An account with that email already exists.", email)))
	case err != nil:
		return err
	}
	if err := setUserSession(c, u.ID); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/")
}

func handleLogout(c echo.Context) error {
	if err := clearUserSession(c); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/login/")
}

// --- API ---

type credentials struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
	FullName string `json:"full_name" form:"full_name"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
	ExpiresAt   string `json:"expires_at"`
}

func (a *App) handleAPISignup(c echo.Context) error {
	var req credentials
	if err := c.Bind(&req); err != nil {
		return apiError(c, http.StatusBadRequest, "Invalid request body")
	}
	u, err := a.register(req.Email, req.Password, req.FullName)
	switch {
	case errors.Is(err, ErrInvalidInput):
		return apiError(c, http.StatusBadRequest, validationMessage(err))
	case errors.Is(err, ErrEmailTaken):
		return apiError(c, http.StatusConflict, "Email already registered")
	case err != nil:
		return internalError(c, err)
	}
	return c.JSON(http.StatusCreated, u)
}

func (a *App) handleAPIToken(c echo.Context) error {
	ip := c.RealIP()
	if !a.loginLimiter.Check(ip) {
		return apiError(c, http.StatusTooManyRequests, "Too many login attempts")
	}
	var req credentials
	if err := c.Bind(&req); err != nil {
		return apiError(c, http.StatusBadRequest, "Invalid request body")
	}
	u, err := a.authenticate(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			a.loginLimiter.Record(ip)
			return apiError(c, http.StatusUnauthorized, "Invalid email or password")
		}
		return internalError(c, err)
	}
	token, expires, err := a.issueToken(u)
	if err != nil {
		return internalError(c, err)
	}
	return c.JSON(http.StatusOK, tokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(a.Config.TokenTTL.Seconds()),
		ExpiresAt:   expires.UTC().Format(time.RFC3339),
	})
}
