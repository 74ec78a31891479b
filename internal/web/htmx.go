package web

import (
	"net/http"
	"strings"
)

// htmxRequestHeader is set by htmx on every request it issues.
const htmxRequestHeader = "HX-Request"

// isHTMXRequest reports whether r was initiated by htmx and expects a fragment.
func isHTMXRequest(r *http.Request) bool {
	if r == nil {
		return false
	}
	return strings.EqualFold(r.Header.Get(htmxRequestHeader), "true")
}
