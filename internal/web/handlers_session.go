package web

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"cafeStorefront/internal/apperr"
	"cafeStorefront/internal/auth"
)

type loginPage struct {
	Flash *Flash
	Error string
}

// LoginPage renders the session handoff form.
func (h *Handler) LoginPage(c *gin.Context) {
	h.render.HTML(c, http.StatusOK, "login", loginPage{Flash: h.deps.Flash.Pop(c)})
}

// CreateSession stores a backend-issued bearer token behind a session cookie.
func (h *Handler) CreateSession(c *gin.Context) {
	token := strings.TrimSpace(c.PostForm("token"))
	if token == "" {
		h.render.HTML(c, http.StatusUnprocessableEntity, "login", loginPage{Error: "Access token is required."})
		return
	}
	if old := auth.SessionFromContext(c.Request.Context()); old.ID != "" {
		_ = h.deps.Sessions.Delete(c.Request.Context(), old.ID)
	}
	s, err := h.deps.Sessions.Create(c.Request.Context(), token, h.deps.Cookie.TTL)
	if err != nil {
		fail(c, apperr.Wrap(err))
		return
	}
	h.setSessionCookie(c, s.ID, int(s.ExpiresAt.Sub(s.CreatedAt).Seconds()))
	c.Redirect(http.StatusFound, "/orders")
}

// Logout forgets the session.
func (h *Handler) Logout(c *gin.Context) {
	if s := auth.SessionFromContext(c.Request.Context()); s.ID != "" {
		if err := h.deps.Sessions.Delete(c.Request.Context(), s.ID); err != nil {
			fail(c, apperr.Wrap(err))
			return
		}
	}
	h.setSessionCookie(c, "", -1)
	c.Redirect(http.StatusFound, "/admin-login")
}

func (h *Handler) setSessionCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.deps.Cookie.Name, value, maxAge, "/", "", h.deps.Cookie.Secure, true)
}
