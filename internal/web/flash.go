package web

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// FlashKind selects how a flash message is styled.
type FlashKind string

const (
	FlashSuccess FlashKind = "success"
	FlashError   FlashKind = "error"
)

// Flash is a one-shot message carried across a redirect.
type Flash struct {
	Kind    FlashKind `json:"k"`
	Message string    `json:"m"`
}

// Blocking reports whether the message must be acknowledged before continuing.
func (f *Flash) Blocking() bool { return f != nil && f.Kind == FlashError }

var errInvalidFlash = errors.New("invalid flash cookie")

// FlashCodec signs flash cookies so visitors cannot forge messages.
type FlashCodec struct {
	Secret     []byte
	CookieName string
	Secure     bool
}

// NewFlashCodec returns a codec for the given HMAC secret.
func NewFlashCodec(secret []byte, cookieName string, secure bool) *FlashCodec {
	if cookieName == "" {
		cookieName = "flash"
	}
	return &FlashCodec{Secret: secret, CookieName: cookieName, Secure: secure}
}

// Encode renders f as base64(json).base64(hmac).
func (c *FlashCodec) Encode(f Flash) (string, error) {
	b, err := json.Marshal(f)
	if err != nil {
		return "", err
	}
	payload := base64.RawURLEncoding.EncodeToString(b)
	return payload + "." + c.sign(payload), nil
}

// Decode verifies and parses a cookie value produced by Encode.
func (c *FlashCodec) Decode(v string) (*Flash, error) {
	payload, sig, ok := strings.Cut(v, ".")
	if !ok || !hmac.Equal([]byte(c.sign(payload)), []byte(sig)) {
		return nil, errInvalidFlash
	}
	raw, err := base64.RawURLEncoding.DecodeString(payload)
	if err != nil {
		return nil, errInvalidFlash
	}
	var f Flash
	if err := json.Unmarshal(raw, &f); err != nil || strings.TrimSpace(f.Message) == "" {
		return nil, errInvalidFlash
	}
	return &f, nil
}

func (c *FlashCodec) sign(payload string) string {
	mac := hmac.New(sha256.New, c.Secret)
	mac.Write([]byte(payload))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

// Set stores f for the next request.
func (c *FlashCodec) Set(ctx *gin.Context, f Flash) {
	v, err := c.Encode(f)
	if err != nil {
		return
	}
	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie(c.CookieName, v, int((2 * time.Minute).Seconds()), "/", "", c.Secure, true)
}

// Pop reads and clears the pending flash, if any.
func (c *FlashCodec) Pop(ctx *gin.Context) *Flash {
	v, err := ctx.Cookie(c.CookieName)
	if err != nil || v == "" {
		return nil
	}
	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie(c.CookieName, "", -1, "/", "", c.Secure, true)
	f, err := c.Decode(v)
	if err != nil {
		return nil
	}
	return f
}
