package web

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"cafeStorefront/internal/apperr"
	"cafeStorefront/internal/auth"
	"cafeStorefront/repository"
)

const (
	headerRequestID = "X-Request-ID"
	ctxKeyRequestID = "request_id"
)

// requestID tags every request with an id, reusing the caller's when present.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(headerRequestID)
		if rid == "" {
			rid = newRequestID()
		}
		c.Set(ctxKeyRequestID, rid)
		c.Writer.Header().Set(headerRequestID, rid)
		c.Next()
	}
}

func getRequestID(c *gin.Context) string {
	return c.GetString(ctxKeyRequestID)
}

func newRequestID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "rid_fallback"
	}
	return hex.EncodeToString(b)
}

// accessLog writes one structured line per request.
func accessLog(l *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		if q := c.Request.URL.RawQuery; q != "" {
			path += "?" + q
		}

		c.Next()

		status := c.Writer.Status()
		level := slog.LevelInfo
		if status >= 500 {
			level = slog.LevelError
		} else if status >= 400 {
			level = slog.LevelWarn
		}
		attrs := []slog.Attr{
			slog.String("request_id", getRequestID(c)),
			slog.String("method", c.Request.Method),
			slog.String("path", path),
			slog.Int("status", status),
			slog.Duration("latency", time.Since(start)),
			slog.Int("bytes", c.Writer.Size()),
			slog.String("client_ip", c.ClientIP()),
		}
		if len(c.Errors) > 0 {
			attrs = append(attrs, slog.String("errors", c.Errors.String()))
		}
		l.LogAttrs(c.Request.Context(), level, "http_request", attrs...)
	}
}

// recovery logs panics with their stack and hands them to the error handler.
func recovery(l *slog.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		l.LogAttrs(c.Request.Context(), slog.LevelError, "panic_recovered",
			slog.String("request_id", getRequestID(c)),
			slog.Any("panic", recovered),
			slog.String("stack", string(debug.Stack())),
		)
		fail(c, apperr.Wrap(fmt.Errorf("panic: %v", recovered)))
	})
}

// wantsJSON reports whether the client expects a JSON error body.
func wantsJSON(c *gin.Context) bool {
	if strings.Contains(c.GetHeader("Accept"), "application/json") {
		return true
	}
	return strings.HasPrefix(c.Request.URL.Path, "/api/")
}

// fail records err and stops the handler chain.
func fail(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

// errorHandler renders the last recorded error when nothing was written yet.
func errorHandler(l *slog.Logger, r *Renderer) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() || len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last().Err
		status := apperr.HTTPStatus(err)
		msg := apperr.PublicMessage(err)
		rid := getRequestID(c)

		level := slog.LevelError
		if status < 500 {
			level = slog.LevelWarn
		}
		l.LogAttrs(c.Request.Context(), level, "request_failed",
			slog.String("request_id", rid),
			slog.Int("status", status),
			slog.Any("err", err),
		)

		if wantsJSON(c) {
			payload := gin.H{"error": msg, "request_id": rid}
			if ae, ok := apperr.As(err); ok && len(ae.Fields) > 0 {
				payload["fields"] = ae.Fields
			}
			c.AbortWithStatusJSON(status, payload)
			return
		}
		c.Abort()
		comp, perr := r.Page("error", errorPage{
			Status:     status,
			StatusText: http.StatusText(status),
			Message:    msg,
			RequestID:  rid,
		})
		if perr != nil {
			c.String(status, "%d %s", status, msg)
			return
		}
		Component(c, status, comp)
	}
}

type errorPage struct {
	Status     int
	StatusText string
	Message    string
	RequestID  string
}

// loadSession resolves the session cookie into an auth.Session on the request
// context. Unknown or expired cookies leave the visitor unauthenticated.
func loadSession(sessions repository.SessionRepositoryI, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var sess auth.Session
		if id, err := c.Cookie(cookieName); err == nil && id != "" {
			s, err := sessions.Get(c.Request.Context(), id)
			if err != nil {
				fail(c, apperr.Wrap(fmt.Errorf("load session: %w", err)))
				return
			}
			if s != nil {
				sess = auth.Session{ID: s.ID, Token: s.Token}
			}
		}
		c.Request = c.Request.WithContext(auth.WithSession(c.Request.Context(), sess))
		c.Next()
	}
}
