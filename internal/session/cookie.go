package session

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// CookieName is the name of the session cookie.
const CookieName = "elucidate_session"

// ErrInvalidCookie is returned when a session cookie fails signature
// verification or is structurally malformed.
var ErrInvalidCookie = errors.New("invalid session cookie")

// CookieCodec signs and verifies session identifiers carried in cookies.
// The cookie value is "<id>.<hex hmac-sha256(id)>" so a visitor cannot
// forge another visitor's session ID.
type CookieCodec struct {
	secret []byte
}

// NewCookieCodec creates a codec signing with the given secret. An empty
// secret gets a random per-process key, which invalidates all sessions on
// restart.
func NewCookieCodec(secret string) *CookieCodec {
	key := []byte(secret)
	if len(key) == 0 {
		key = make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			panic(err)
		}
	}

	return &CookieCodec{secret: key}
}

// sign returns the hex HMAC-SHA256 of the given ID.
func (c *CookieCodec) sign(id string) string {
	mac := hmac.New(sha256.New, c.secret)
	mac.Write([]byte(id))
	return hex.EncodeToString(mac.Sum(nil))
}

// Encode returns the signed cookie value for the given session ID.
func (c *CookieCodec) Encode(id string) string {
	return id + "." + c.sign(id)
}

// Decode verifies a signed cookie value and returns the session ID.
func (c *CookieCodec) Decode(value string) (string, error) {
	id, sig, ok := strings.Cut(value, ".")
	if !ok || id == "" {
		return "", ErrInvalidCookie
	}
	if !hmac.Equal([]byte(sig), []byte(c.sign(id))) {
		return "", ErrInvalidCookie
	}

	return id, nil
}

// SessionID extracts the verified session ID from the request cookie, or
// issues a new one and sets it on the response. The returned ID is always
// usable.
func (c *CookieCodec) SessionID(w http.ResponseWriter, r *http.Request) string {
	if cookie, err := r.Cookie(CookieName); err == nil {
		if id, err := c.Decode(cookie.Value); err == nil {
			return id
		}
	}

	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    c.Encode(id),
		Path:     "/",
		Expires:  time.Now().Add(DefaultSessionTTL),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	return id
}
