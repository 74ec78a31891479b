package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestHTTPStatusAndMessage(t *testing.T) {
	cause := errors.New("db down")
	cases := []struct {
		err    error
		status int
		msg    string
	}{
		{InvalidErr("bad", nil), http.StatusBadRequest, "bad"},
		{UnauthorizedErr("login"), http.StatusUnauthorized, "login"},
		{ForbiddenErr("nope"), http.StatusForbidden, "nope"},
		{NotFoundErr("gone"), http.StatusNotFound, "gone"},
		{UpstreamErr("backend", cause), http.StatusBadGateway, "backend"},
		{Wrap(cause), http.StatusInternalServerError, DefaultPublicMsg},
		{cause, http.StatusInternalServerError, DefaultPublicMsg},
		{fmt.Errorf("handler: %w", ForbiddenErr("wrapped")), http.StatusForbidden, "wrapped"},
	}
	for _, tc := range cases {
		if got := HTTPStatus(tc.err); got != tc.status {
			t.Fatalf("HTTPStatus(%v) = %d, want %d", tc.err, got, tc.status)
		}
		if got := PublicMessage(tc.err); got != tc.msg {
			t.Fatalf("PublicMessage(%v) = %q, want %q", tc.err, got, tc.msg)
		}
	}
	if !errors.Is(Wrap(cause), cause) {
		t.Fatalf("Wrap must keep the cause")
	}
	if Wrap(nil) != nil {
		t.Fatalf("Wrap(nil) must be nil")
	}
}
