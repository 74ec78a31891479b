package apiclient

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// APIError is a non-2xx answer from the backend.
type APIError struct {
	Method string
	Path   string
	Status int
	Body   []byte
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s %s: backend returned %d", e.Method, e.Path, e.Status)
}

// Message returns the "msg" field of a JSON error body, or "".
func (e *APIError) Message() string {
	if e == nil || !gjson.ValidBytes(e.Body) {
		return ""
	}
	return strings.TrimSpace(gjson.GetBytes(e.Body, "msg").String())
}

// Text renders the body for display: a JSON string is unquoted, an object's
// "msg" field wins when present, and anything else is shown verbatim.
func (e *APIError) Text() string {
	if e == nil {
		return ""
	}
	if gjson.ValidBytes(e.Body) {
		v := gjson.ParseBytes(e.Body)
		switch {
		case v.Type == gjson.String:
			return strings.TrimSpace(v.String())
		case v.IsObject() && v.Get("msg").Exists():
			return strings.TrimSpace(v.Get("msg").String())
		}
	}
	return strings.TrimSpace(string(e.Body))
}

// MessageOr returns the backend "msg" of err, or fallback when there is none.
func MessageOr(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if m := apiErr.Message(); m != "" {
			return m
		}
	}
	return fallback
}

// TextOr returns the displayable body of err, or fallback when there is none.
func TextOr(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if t := apiErr.Text(); t != "" {
			return t
		}
	}
	return fallback
}
