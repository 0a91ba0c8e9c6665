package handler

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ducnm/oto-dealer/internal/config"
	"github.com/ducnm/oto-dealer/internal/middleware"
	"github.com/ducnm/oto-dealer/internal/model"
	"github.com/ducnm/oto-dealer/internal/repository"
	"github.com/ducnm/oto-dealer/internal/utils"
)

func testCfg() config.Config {
	return config.Config{
		Env:          "test",
		JWTSecret:    "test-secret",
		TokenTTLDays: 7,
		BcryptCost:   4, // keep the tests fast
	}
}

func newAuthApp(t *testing.T) (*echo.Echo, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	cfg := testCfg()
	h := NewAuthHandler(cfg, repository.NewUserRepo(db))

	e := echo.New()
	e.POST("/api/auth/register", h.Register)
	e.POST("/api/auth/login", h.Login)
	e.POST("/api/auth/logout", h.Logout)
	e.POST("/api/auth/forgot-password", h.ForgotPassword)
	e.POST("/api/auth/reset-password", h.ResetPassword)
	e.GET("/api/auth/me", h.Me, middleware.CookieAuth(cfg.JWTSecret))

	return e, mock, func() { db.Close() }
}

func doJSON(e *echo.Echo, method, path string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func tokenCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == middleware.TokenCookie {
			return ck
		}
	}
	return nil
}

func userRow(t *testing.T, hash string, active bool) *sqlmock.Rows {
	t.Helper()
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "email", "password_hash", "name", "phone", "address", "avatar_url",
		"role", "is_active", "email_verified", "reset_token_hash", "reset_expires_at",
		"last_login_at", "created_at", "updated_at",
	}).AddRow(7, "alice@test.com", hash, "Alice", "", "", "", model.RoleUser, active, false, nil, nil, nil, now, now)
}

func TestRegisterSuccess(t *testing.T) {
	e, mock, done := newAuthApp(t)
	defer done()

	mock.ExpectExec("INSERT INTO users").WillReturnResult(sqlmock.NewResult(7, 1))

	rec := doJSON(e, http.MethodPost, "/api/auth/register",
		map[string]string{"name": "Alice", "email": "alice@test.com", "password": "secret1"})
	require.Equal(t, http.StatusCreated, rec.Code)

	ck := tokenCookie(rec)
	require.NotNil(t, ck, "register must set the session cookie")
	assert.True(t, ck.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, ck.SameSite)
	assert.Equal(t, 7*24*3600, ck.MaxAge)

	var body struct {
		User struct {
			Email string `json:"email"`
			Role  string `json:"role"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "alice@test.com", body.User.Email)
	assert.Equal(t, model.RoleUser, body.User.Role)
	assert.NotContains(t, rec.Body.String(), "password")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegisterShortPasswordNeverTouchesDB(t *testing.T) {
	e, mock, done := newAuthApp(t)
	defer done()

	rec := doJSON(e, http.MethodPost, "/api/auth/register",
		map[string]string{"name": "Alice", "email": "alice@test.com", "password": "12345"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	// No DB expectations were registered: rejection happens before
	// hashing or persistence.
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegisterMissingFields(t *testing.T) {
	e, _, done := newAuthApp(t)
	defer done()

	rec := doJSON(e, http.MethodPost, "/api/auth/register",
		map[string]string{"email": "alice@test.com", "password": "secret1"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRegisterDuplicateEmailCaseInsensitive(t *testing.T) {
	e, mock, done := newAuthApp(t)
	defer done()

	// The handler lowercases before the insert and the unique index
	// rejects the collision, so ALICE@test.com conflicts with the
	// existing alice@test.com row.
	mock.ExpectExec("INSERT INTO users").
		WithArgs("alice@test.com", sqlmock.AnyArg(), "Alice", "", "", model.RoleUser).
		WillReturnError(errors.New("Error 1062 (23000): Duplicate entry 'alice@test.com' for key 'users.uq_users_email'"))

	rec := doJSON(e, http.MethodPost, "/api/auth/register",
		map[string]string{"name": "Alice", "email": "ALICE@test.com", "password": "whatever"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoginWrongPasswordAndUnknownEmailIndistinguishable(t *testing.T) {
	e, mock, done := newAuthApp(t)
	defer done()

	hash, err := utils.HashPassword("secret1", 4)
	require.NoError(t, err)

	// Known email, wrong password.
	mock.ExpectQuery("SELECT .+ FROM users WHERE email=").
		WithArgs("alice@test.com").
		WillReturnRows(userRow(t, hash, true))
	recWrongPass := doJSON(e, http.MethodPost, "/api/auth/login",
		map[string]string{"email": "alice@test.com", "password": "wrong"})

	// Unknown email.
	mock.ExpectQuery("SELECT .+ FROM users WHERE email=").
		WithArgs("nobody@test.com").
		WillReturnError(sql.ErrNoRows)
	recNoUser := doJSON(e, http.MethodPost, "/api/auth/login",
		map[string]string{"email": "nobody@test.com", "password": "anything"})

	assert.Equal(t, http.StatusUnauthorized, recWrongPass.Code)
	assert.Equal(t, http.StatusUnauthorized, recNoUser.Code)
	assert.Equal(t, recWrongPass.Body.String(), recNoUser.Body.String(),
		"credential failures must be indistinguishable")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoginInactiveAccountRejectedWithCorrectPassword(t *testing.T) {
	e, mock, done := newAuthApp(t)
	defer done()

	hash, err := utils.HashPassword("secret1", 4)
	require.NoError(t, err)

	mock.ExpectQuery("SELECT .+ FROM users WHERE email=").
		WithArgs("alice@test.com").
		WillReturnRows(userRow(t, hash, false))

	rec := doJSON(e, http.MethodPost, "/api/auth/login",
		map[string]string{"email": "alice@test.com", "password": "secret1"})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "vô hiệu hóa")
	assert.Nil(t, tokenCookie(rec))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoginSuccessSetsCookieAndTouchesLastLogin(t *testing.T) {
	e, mock, done := newAuthApp(t)
	defer done()

	hash, err := utils.HashPassword("secret1", 4)
	require.NoError(t, err)

	mock.ExpectQuery("SELECT .+ FROM users WHERE email=").
		WithArgs("alice@test.com").
		WillReturnRows(userRow(t, hash, true))
	mock.ExpectExec("UPDATE users SET last_login_at=").
		WithArgs(uint64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	rec := doJSON(e, http.MethodPost, "/api/auth/login",
		map[string]string{"email": "alice@test.com", "password": "secret1"})
	require.Equal(t, http.StatusOK, rec.Code)

	ck := tokenCookie(rec)
	require.NotNil(t, ck)
	assert.NotEmpty(t, ck.Value)
	assert.NotContains(t, rec.Body.String(), hash)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMeWithValidCookie(t *testing.T) {
	e, mock, done := newAuthApp(t)
	defer done()

	tok, err := utils.NewSessionToken("test-secret", 7, "alice@test.com", model.RoleUser, 7)
	require.NoError(t, err)

	mock.ExpectQuery("SELECT .+ FROM users WHERE id=").
		WithArgs(uint64(7)).
		WillReturnRows(userRow(t, "hash", true))

	rec := doJSON(e, http.MethodGet, "/api/auth/me", nil,
		&http.Cookie{Name: middleware.TokenCookie, Value: tok.Token})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "alice@test.com")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMeDeactivatedAccountFailsDespiteValidToken(t *testing.T) {
	e, mock, done := newAuthApp(t)
	defer done()

	tok, err := utils.NewSessionToken("test-secret", 7, "alice@test.com", model.RoleUser, 7)
	require.NoError(t, err)

	mock.ExpectQuery("SELECT .+ FROM users WHERE id=").
		WithArgs(uint64(7)).
		WillReturnRows(userRow(t, "hash", false))

	rec := doJSON(e, http.MethodGet, "/api/auth/me", nil,
		&http.Cookie{Name: middleware.TokenCookie, Value: tok.Token})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMeWithoutCookie(t *testing.T) {
	e, _, done := newAuthApp(t)
	defer done()

	rec := doJSON(e, http.MethodGet, "/api/auth/me", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMeWithGarbageCookie(t *testing.T) {
	e, _, done := newAuthApp(t)
	defer done()

	rec := doJSON(e, http.MethodGet, "/api/auth/me", nil,
		&http.Cookie{Name: middleware.TokenCookie, Value: "not-a-jwt"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogoutClearsCookieThenMeFails(t *testing.T) {
	e, _, done := newAuthApp(t)
	defer done()

	rec := doJSON(e, http.MethodPost, "/api/auth/logout", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	ck := tokenCookie(rec)
	require.NotNil(t, ck)
	assert.Empty(t, ck.Value)
	assert.Equal(t, -1, ck.MaxAge)
	assert.Equal(t, http.SameSiteLaxMode, ck.SameSite)

	// The browser drops the cookie, so the next me call carries none.
	recMe := doJSON(e, http.MethodGet, "/api/auth/me", nil)
	assert.Equal(t, http.StatusUnauthorized, recMe.Code)
}

func TestLogoutIsIdempotent(t *testing.T) {
	e, _, done := newAuthApp(t)
	defer done()

	for i := 0; i < 2; i++ {
		rec := doJSON(e, http.MethodPost, "/api/auth/logout", nil)
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestForgotPasswordAntiEnumeration(t *testing.T) {
	e, mock, done := newAuthApp(t)
	defer done()

	hash, err := utils.HashPassword("secret1", 4)
	require.NoError(t, err)

	// Existing account: lookup, then the token write.
	mock.ExpectQuery("SELECT .+ FROM users WHERE email=").
		WithArgs("alice@test.com").
		WillReturnRows(userRow(t, hash, true))
	mock.ExpectExec("UPDATE users SET reset_token_hash=").
		WillReturnResult(sqlmock.NewResult(0, 1))
	recKnown := doJSON(e, http.MethodPost, "/api/auth/forgot-password",
		map[string]string{"email": "alice@test.com"})

	// Unknown account: lookup only.
	mock.ExpectQuery("SELECT .+ FROM users WHERE email=").
		WithArgs("nobody@test.com").
		WillReturnError(sql.ErrNoRows)
	recUnknown := doJSON(e, http.MethodPost, "/api/auth/forgot-password",
		map[string]string{"email": "nobody@test.com"})

	assert.Equal(t, http.StatusOK, recKnown.Code)
	assert.Equal(t, http.StatusOK, recUnknown.Code)
	assert.Equal(t, recKnown.Body.String(), recUnknown.Body.String(),
		"forgot-password must not reveal whether the email exists")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResetPasswordWithExpiredToken(t *testing.T) {
	e, mock, done := newAuthApp(t)
	defer done()

	now := time.Now()
	expired := now.Add(-time.Minute)
	mock.ExpectQuery("SELECT .+ FROM users WHERE reset_token_hash=").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "email", "password_hash", "name", "phone", "address", "avatar_url",
			"role", "is_active", "email_verified", "reset_token_hash", "reset_expires_at",
			"last_login_at", "created_at", "updated_at",
		}).AddRow(7, "alice@test.com", "hash", "Alice", "", "", "", model.RoleUser, true, false, "abc", expired, nil, now, now))

	rec := doJSON(e, http.MethodPost, "/api/auth/reset-password",
		map[string]string{"token": "sometoken", "password": "newsecret"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}
