package utils // package utils provides helper functions for token creation and hashing

import (
	"crypto/rand"   // secure random number generation
	"crypto/sha256" // SHA-256 hashing for password reset tokens
	"encoding/hex"  // hex encoding functions
	"errors"        // sentinel error values
	"strconv"       // parsing numeric string claims
	"time"          // expiry computation

	"github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens
)

// SessionToken is a signed HS256 JWT carried in the `token` cookie.
// It is self-contained: the server keeps no session record, so a
// token stays valid until its natural expiry.
type SessionToken struct {
	Token string    // the serialized JWT string
	Exp   time.Time // the UTC expiration time
}

// SessionClaims is the verified payload of a session token.
type SessionClaims struct {
	UserID uint64
	Email  string
	Role   string
}

// ErrInvalidToken is returned by VerifySessionToken for any token that
// cannot be trusted: malformed, wrong signature, expired, or carrying
// claims in an unexpected shape. Callers treat all of these as "no
// session".
var ErrInvalidToken = errors.New("invalid session token")

// NewSessionToken builds and signs an HS256 JWT for a user. Claims are
// sub (user id), email, role, iat and exp; ttlDays controls the expiry.
func NewSessionToken(secret string, userID uint64, email, role string, ttlDays int) (SessionToken, error) {
	exp := time.Now().UTC().Add(time.Duration(ttlDays) * 24 * time.Hour)
	claims := jwt.MapClaims{
		"sub":   userID,
		"email": email,
		"role":  role,
		"exp":   exp.Unix(),
		"iat":   time.Now().UTC().Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return SessionToken{}, err
	}
	return SessionToken{Token: signed, Exp: exp}, nil
}

// VerifySessionToken validates the signature and expiry of a session
// token and extracts its claims. Any failure collapses into
// ErrInvalidToken; callers never learn why a token was rejected.
func VerifySessionToken(secret, raw string) (SessionClaims, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		// Reject tokens signed with anything but HMAC.
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid {
		return SessionClaims{}, ErrInvalidToken
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return SessionClaims{}, ErrInvalidToken
	}

	var sc SessionClaims
	// JWT numeric values decode as float64; some encoders emit strings.
	switch sub := claims["sub"].(type) {
	case float64:
		sc.UserID = uint64(sub)
	case string:
		n, err := strconv.ParseUint(sub, 10, 64)
		if err != nil {
			return SessionClaims{}, ErrInvalidToken
		}
		sc.UserID = n
	default:
		return SessionClaims{}, ErrInvalidToken
	}
	if sc.UserID == 0 {
		return SessionClaims{}, ErrInvalidToken
	}
	sc.Email, _ = claims["email"].(string)
	sc.Role, _ = claims["role"].(string)
	return sc, nil
}

// NewResetToken returns a high-entropy password reset token (32 random
// bytes, hex-encoded) and its expiry one hour from now. Only the
// SHA-256 hash of the raw value is persisted.
func NewResetToken() (raw string, exp time.Time, err error) {
	raw, err = randomHex(32) // 32 bytes -> 64 hex chars
	if err != nil {
		return "", time.Time{}, err
	}
	return raw, time.Now().UTC().Add(time.Hour), nil
}

// HashResetRaw returns the SHA-256 hash of the raw reset token as a
// hex string. Storing only the hash keeps a leaked database row from
// being replayed as a working reset link.
func HashResetRaw(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// randomHex returns a hex-encoded string generated from n bytes of
// cryptographically secure random data.
func randomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
