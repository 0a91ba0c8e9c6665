package handler

import (
	"context"      // provides context with cancellation for DB calls
	"database/sql" // sentinel errors returned from the repository layer
	"log"          // server-side logging of reset links and failures
	"net/http"     // HTTP status codes and cookie primitives
	"strings"      // string manipulation utilities
	"time"         // timeouts for DB calls

	"github.com/labstack/echo/v4" // Echo framework for HTTP routing

	"github.com/ducnm/oto-dealer/internal/config"     // app configuration
	"github.com/ducnm/oto-dealer/internal/middleware" // cookie name shared with middleware
	"github.com/ducnm/oto-dealer/internal/model"      // domain models
	"github.com/ducnm/oto-dealer/internal/repository" // DB repositories
	"github.com/ducnm/oto-dealer/internal/utils"      // hashing and token issuing helpers
)

// Passwords shorter than this are rejected before any hashing happens.
const minPasswordLen = 6

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
	Cfg   config.Config
	Users *repository.UserRepo
}

func NewAuthHandler(cfg config.Config, u *repository.UserRepo) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: u}
}

// ----- DTOs -----

type registerReq struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
}
type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
type forgotReq struct {
	Email string `json:"email"`
}
type resetReq struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

// userPart is the sanitized account projection returned to clients.
// The password hash and reset token never appear here.
type userPart struct {
	ID            uint64 `json:"id"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	Phone         string `json:"phone,omitempty"`
	Address       string `json:"address,omitempty"`
	AvatarURL     string `json:"avatarUrl,omitempty"`
	Role          string `json:"role"`
	EmailVerified bool   `json:"emailVerified"`
}

func sanitize(u model.User) userPart {
	return userPart{
		ID:            u.ID,
		Name:          u.Name,
		Email:         u.Email,
		Phone:         u.Phone,
		Address:       u.Address,
		AvatarURL:     u.AvatarURL,
		Role:          u.Role,
		EmailVerified: u.EmailVerified,
	}
}

// ----- cookie helpers -----

// setSessionCookie writes the HTTP-only token cookie. SameSite is Lax
// on every path that touches the cookie, including logout.
func setSessionCookie(c echo.Context, cfg config.Config, token string) {
	c.SetCookie(&http.Cookie{
		Name:     middleware.TokenCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   cfg.TokenTTLDays * 24 * 3600,
		HttpOnly: true,
		Secure:   cfg.Env == "prod",
		SameSite: http.SameSiteLaxMode,
	})
}

func clearSessionCookie(c echo.Context, cfg config.Config) {
	c.SetCookie(&http.Cookie{
		Name:     middleware.TokenCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   cfg.Env == "prod",
		SameSite: http.SameSiteLaxMode,
	})
}

// Register: create the account, then log the user straight in by
// setting the session cookie.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Dữ liệu không hợp lệ"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" || req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Vui lòng nhập đầy đủ họ tên, email và mật khẩu"})
	}
	if len(req.Password) < minPasswordLen {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Mật khẩu phải có ít nhất 6 ký tự"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	uid, err := h.Users.Create(ctx, req.Email, req.Password, req.Name, req.Phone, req.Address, h.Cfg.BcryptCost)
	if err != nil {
		if err == repository.ErrEmailExists {
			return c.JSON(http.StatusConflict, echo.Map{"error": "Email đã được sử dụng"})
		}
		log.Printf("auth: create user failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Có lỗi xảy ra, vui lòng thử lại sau"})
	}

	token, err := utils.NewSessionToken(h.Cfg.JWTSecret, uid, req.Email, model.RoleUser, h.Cfg.TokenTTLDays)
	if err != nil {
		log.Printf("auth: issue token failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Có lỗi xảy ra, vui lòng thử lại sau"})
	}
	setSessionCookie(c, h.Cfg, token.Token)

	return c.JSON(http.StatusCreated, echo.Map{
		"user": userPart{ID: uid, Name: req.Name, Email: req.Email, Phone: req.Phone, Address: req.Address, Role: model.RoleUser},
	})
}

// Login: verify credentials and set the session cookie. A missing
// account and a wrong password answer with the exact same body so the
// response never reveals which half was wrong. Deactivated accounts
// get a distinct message.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Dữ liệu không hợp lệ"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Vui lòng nhập email và mật khẩu"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Email hoặc mật khẩu không chính xác"})
		}
		log.Printf("auth: lookup user failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Có lỗi xảy ra, vui lòng thử lại sau"})
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Email hoặc mật khẩu không chính xác"})
	}
	if !u.IsActive {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Tài khoản đã bị vô hiệu hóa"})
	}

	if err := h.Users.TouchLastLogin(ctx, u.ID); err != nil {
		// A failed audit write should not block the login itself.
		log.Printf("auth: touch last login failed: %v", err)
	}

	token, err := utils.NewSessionToken(h.Cfg.JWTSecret, u.ID, u.Email, u.Role, h.Cfg.TokenTTLDays)
	if err != nil {
		log.Printf("auth: issue token failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Có lỗi xảy ra, vui lòng thử lại sau"})
	}
	setSessionCookie(c, h.Cfg, token.Token)

	return c.JSON(http.StatusOK, echo.Map{"user": sanitize(u)})
}

// Logout: overwrite the cookie with an expired empty value. There is
// no server-side revocation list, so an already issued token stays
// valid until its natural expiry; logout only clears the client side.
// The operation is idempotent.
func (h *AuthHandler) Logout(c echo.Context) error {
	clearSessionCookie(c, h.Cfg)
	return c.JSON(http.StatusOK, echo.Map{"message": "Đăng xuất thành công"})
}

// Me: re-establish auth state from the HTTP-only cookie. CookieAuth
// has already verified the token; this handler additionally checks
// that the account still exists and is active, so a deactivated user
// is locked out even while holding an unexpired token.
func (h *AuthHandler) Me(c echo.Context) error {
	uid, ok := c.Get("user_id").(uint64)
	if !ok || uid == 0 {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Vui lòng đăng nhập"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Vui lòng đăng nhập"})
		}
		log.Printf("auth: load user failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Có lỗi xảy ra, vui lòng thử lại sau"})
	}
	if !u.IsActive {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Tài khoản đã bị vô hiệu hóa"})
	}
	return c.JSON(http.StatusOK, echo.Map{"user": sanitize(u)})
}

// ForgotPassword: always answer with the same generic message whether
// or not the email exists. When it does, a reset token is stored and
// the reset URL is logged; sending the email is a collaborator's job
// and out of scope here.
func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	var req forgotReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Dữ liệu không hợp lệ"})
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Vui lòng nhập email"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	generic := echo.Map{"message": "Nếu email tồn tại, hướng dẫn đặt lại mật khẩu đã được gửi"}

	if _, err := h.Users.GetByEmail(ctx, email); err != nil {
		if err != sql.ErrNoRows {
			log.Printf("auth: forgot-password lookup failed: %v", err)
		}
		return c.JSON(http.StatusOK, generic)
	}

	raw, exp, err := utils.NewResetToken()
	if err != nil {
		log.Printf("auth: generate reset token failed: %v", err)
		return c.JSON(http.StatusOK, generic)
	}
	if err := h.Users.SetResetToken(ctx, email, utils.HashResetRaw(raw), exp); err != nil {
		log.Printf("auth: store reset token failed: %v", err)
		return c.JSON(http.StatusOK, generic)
	}
	// TODO: hand this off to the mailer once the SMTP integration lands.
	log.Printf("auth: password reset link for %s: %s/reset-password?token=%s", email, h.Cfg.BaseURL, raw)

	return c.JSON(http.StatusOK, generic)
}

// ResetPassword: consume a reset token produced by ForgotPassword and
// replace the account password. The token is single-use; UpdatePassword
// clears it together with the expiry.
func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req resetReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Dữ liệu không hợp lệ"})
	}
	req.Token = strings.TrimSpace(req.Token)
	if req.Token == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Thiếu mã đặt lại mật khẩu"})
	}
	if len(req.Password) < minPasswordLen {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Mật khẩu phải có ít nhất 6 ký tự"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByResetToken(ctx, utils.HashResetRaw(req.Token))
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Mã đặt lại không hợp lệ hoặc đã hết hạn"})
		}
		log.Printf("auth: reset token lookup failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Có lỗi xảy ra, vui lòng thử lại sau"})
	}
	if err := h.Users.UpdatePassword(ctx, u.ID, req.Password, h.Cfg.BcryptCost); err != nil {
		log.Printf("auth: update password failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Có lỗi xảy ra, vui lòng thử lại sau"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Đặt lại mật khẩu thành công"})
}
