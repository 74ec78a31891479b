// Package web serves the storefront's admin signup and order dashboard pages.
package web

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"cafeStorefront/internal/auth"
	"cafeStorefront/internal/dashboard"
	"cafeStorefront/internal/signup"
	"cafeStorefront/repository"
)

// Backend is everything the pages need from the storefront API.
type Backend interface {
	signup.Registrar
	dashboard.OrdersAPI
}

// CookieConfig controls the session cookie.
type CookieConfig struct {
	Name   string
	TTL    time.Duration
	Secure bool
}

// Deps bundles the collaborators of the web layer.
type Deps struct {
	Logger   *slog.Logger
	Backend  Backend
	Decoder  auth.ClaimsDecoder
	Sessions repository.SessionRepositoryI
	Flash    *FlashCodec
	Cookie   CookieConfig
	// Ready reports whether local dependencies are usable; nil means always ready.
	Ready func(ctx context.Context) error
}

// Handler holds the page handlers.
type Handler struct {
	deps      Deps
	render    *Renderer
	submitter *signup.Submitter
}

// NewRouter wires middleware and routes.
func NewRouter(deps Deps) (*gin.Engine, error) {
	if deps.Backend == nil || deps.Sessions == nil || deps.Flash == nil {
		return nil, errors.New("web: backend, sessions and flash codec are required")
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Decoder == nil {
		deps.Decoder = auth.JWTDecoder{}
	}
	if deps.Cookie.Name == "" {
		deps.Cookie.Name = "session"
	}
	r, err := NewRenderer()
	if err != nil {
		return nil, err
	}
	h := &Handler{deps: deps, render: r, submitter: signup.NewSubmitter(deps.Backend)}

	e := gin.New()
	e.Use(requestID(), accessLog(deps.Logger), errorHandler(deps.Logger, r), recovery(deps.Logger))
	e.GET("/healthz", h.Healthz)

	pages := e.Group("/", loadSession(deps.Sessions, deps.Cookie.Name))
	{
		pages.GET("/", func(c *gin.Context) { c.Redirect(http.StatusFound, "/orders") })

		pages.GET("/admin-signup", h.SignupPage)
		pages.POST("/admin-signup", h.SignupSubmit)

		pages.GET("/admin-login", h.LoginPage)
		pages.POST("/session", h.CreateSession)
		pages.POST("/logout", h.Logout)

		pages.GET("/orders", h.OrdersPage)
		pages.POST("/orders/:tradeUUID/:action", h.OrderAction)
	}

	api := e.Group("/api", loadSession(deps.Sessions, deps.Cookie.Name))
	{
		api.GET("/orders", h.OrdersJSON)
		api.POST("/orders/:tradeUUID/:action", h.OrderActionJSON)
	}
	return e, nil
}

// Healthz reports liveness and local readiness.
func (h *Handler) Healthz(c *gin.Context) {
	if h.deps.Ready != nil {
		if err := h.deps.Ready(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
