package web

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"cafeStorefront/internal/apiclient"
	"cafeStorefront/internal/auth"
	"cafeStorefront/internal/testutil"
	"cafeStorefront/models"
	"cafeStorefront/repository"
)

const testJWTSecret = "test-jwt-secret"

type harness struct {
	t        *testing.T
	router   *gin.Engine
	backend  *testutil.Backend
	sessions *repository.SessionRepository
	flash    *FlashCodec
}

func listing() models.OrdersResponse {
	g := func(id string) []models.OrderGroup {
		return []models.OrderGroup{{TradeUUID: id, Items: []models.OrderItem{{ItemID: 7, Quantity: 2, ItemName: "Latte"}}}}
	}
	return models.OrdersResponse{
		BuyList:             g("buy-1"),
		PayList:             g("pay-1"),
		PrepareDeliveryList: g("prep-1"),
		BeforeDeliveryList:  g("before-1"),
		InDeliveryList:      g("in-1"),
		PostDeliveryList:    g("post-1"),
		RefusedList:         g("refused-1"),
		RefundList:          g("refund-1"),
	}
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	gin.SetMode(gin.TestMode)

	b := testutil.NewBackend(t)
	orders := testutil.JSONReply(t, listing())
	b.Handle(http.MethodGet, "/order/show", orders)
	b.Handle(http.MethodGet, "/admin/trade/all-trades", orders)
	for _, a := range []string{"confirm", "prepare", "in-delivery", "post-delivery"} {
		b.Handle(http.MethodPost, "/admin/trade/"+a, testutil.Reply{Status: http.StatusOK})
	}
	client, err := apiclient.New(b.URL)
	if err != nil {
		t.Fatalf("client: %v", err)
	}

	sessions := repository.NewSessionRepository(testutil.OpenInMemoryDB(t, strings.ReplaceAll(t.Name(), "/", "_")))
	flash := NewFlashCodec([]byte("flash-secret"), "flash", false)
	r, err := NewRouter(Deps{
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		Backend:  client,
		Decoder:  auth.JWTDecoder{Secret: testJWTSecret},
		Sessions: sessions,
		Flash:    flash,
		Cookie:   CookieConfig{Name: "session", TTL: time.Hour},
	})
	if err != nil {
		t.Fatalf("router: %v", err)
	}
	return &harness{t: t, router: r, backend: b, sessions: sessions, flash: flash}
}

// login stores a session for a token with the given authority and returns its cookie.
func (h *harness) login(authority string) *http.Cookie {
	h.t.Helper()
	token := testutil.GenerateJWTHS256(h.t, testJWTSecret, 1, "a@cafe.test", authority)
	s, err := h.sessions.Create(context.Background(), token, time.Hour)
	if err != nil {
		h.t.Fatalf("create session: %v", err)
	}
	return &http.Cookie{Name: "session", Value: s.ID}
}

func (h *harness) do(req *http.Request, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	for _, c := range cookies {
		if c != nil {
			req.AddCookie(c)
		}
	}
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	return w
}

func form(path string, v url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(v.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func responseCookie(w *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func signupValues() url.Values {
	return url.Values{
		"email":     {"admin@cafe.test"},
		"password":  {"pw"},
		"address":   {"Main St 1"},
		"adminCode": {"CODE"},
	}
}

func TestSignupSuccessRedirectsToLogin(t *testing.T) {
	h := newHarness(t)
	h.backend.Handle(http.MethodPost, "/member/join/admin", testutil.Reply{Status: http.StatusOK, Body: `"ok"`})

	w := h.do(form("/admin-signup", signupValues()))
	if w.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/admin-login" {
		t.Fatalf("Location = %q", loc)
	}
	if n := h.backend.Count(http.MethodPost, "/member/join/admin"); n != 1 {
		t.Fatalf("join calls = %d, want 1", n)
	}
	var body models.AdminJoinRequest
	if err := json.Unmarshal([]byte(h.backend.Requests()[0].Body), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	want := models.AdminJoinRequest{Email: "admin@cafe.test", Password: "pw", Address: "Main St 1", AdminCode: "CODE"}
	if body != want {
		t.Fatalf("payload = %+v, want %+v", body, want)
	}
}

func TestSignupFailureShowsServerMessage(t *testing.T) {
	h := newHarness(t)
	h.backend.Handle(http.MethodPost, "/member/join/admin", testutil.Reply{Status: http.StatusBadRequest, Body: "Invalid admin code"})

	w := h.do(form("/admin-signup", signupValues()))
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, "Invalid admin code") {
		t.Fatalf("body lacks server message: %s", body)
	}
	if !strings.Contains(body, `value="admin@cafe.test"`) {
		t.Fatal("email not kept after failure")
	}
	if w.Header().Get("Location") != "" {
		t.Fatal("failure must not redirect")
	}
}

func TestSignupMissingFieldsSkipsBackend(t *testing.T) {
	h := newHarness(t)
	v := signupValues()
	v.Del("adminCode")

	w := h.do(form("/admin-signup", v))
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", w.Code)
	}
	if !strings.Contains(w.Body.String(), "This field is required.") {
		t.Fatal("missing field error not rendered")
	}
	if n := len(h.backend.Requests()); n != 0 {
		t.Fatalf("backend calls = %d, want 0", n)
	}
}

func TestOrdersWithoutSessionRequiresLogin(t *testing.T) {
	h := newHarness(t)

	w := h.do(httptest.NewRequest(http.MethodGet, "/orders", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Login required.") {
		t.Fatal("login message not shown")
	}
	if n := len(h.backend.Requests()); n != 0 {
		t.Fatalf("backend calls = %d, want 0", n)
	}
}

func TestOrdersMemberSeesOwnOrdersWithoutActions(t *testing.T) {
	h := newHarness(t)

	w := h.do(httptest.NewRequest(http.MethodGet, "/orders", nil), h.login("USER"))
	body := w.Body.String()
	if h.backend.Count(http.MethodGet, "/order/show") != 1 || h.backend.Count(http.MethodGet, "/admin/trade/all-trades") != 0 {
		t.Fatalf("unexpected fetches: %+v", h.backend.Requests())
	}
	if strings.Contains(body, "data-action") {
		t.Fatal("member view must not offer actions")
	}
	if strings.Contains(body, "(admin)") {
		t.Fatal("member view labelled as admin")
	}
	for _, label := range []string{"Order pending (BUY)", "Refunded (REFUND)", "Trade ID: pay-1", "Item: Latte", "Quantity: 2"} {
		if !strings.Contains(body, label) {
			t.Fatalf("body lacks %q", label)
		}
	}
}

func TestOrdersAdminSeesAllTradesWithFourActions(t *testing.T) {
	h := newHarness(t)

	w := h.do(httptest.NewRequest(http.MethodGet, "/orders", nil), h.login(auth.AuthorityAdmin))
	body := w.Body.String()
	if h.backend.Count(http.MethodGet, "/admin/trade/all-trades") != 1 || h.backend.Count(http.MethodGet, "/order/show") != 0 {
		t.Fatalf("unexpected fetches: %+v", h.backend.Requests())
	}
	if n := strings.Count(body, "data-action="); n != 4 {
		t.Fatalf("action buttons = %d, want 4", n)
	}
	for _, a := range []string{"/orders/pay-1/confirm", "/orders/prep-1/prepare", "/orders/before-1/in-delivery", "/orders/in-1/post-delivery"} {
		if !strings.Contains(body, a) {
			t.Fatalf("body lacks action %q", a)
		}
	}
	if !strings.Contains(body, "My orders (admin)") {
		t.Fatal("admin header missing")
	}
}

func TestOrdersLoadFailureShowsServerMessage(t *testing.T) {
	h := newHarness(t)
	h.backend.Handle(http.MethodGet, "/order/show", testutil.Reply{Status: http.StatusInternalServerError, Body: `{"msg":"orders unavailable"}`})

	w := h.do(httptest.NewRequest(http.MethodGet, "/orders", nil), h.login("USER"))
	if !strings.Contains(w.Body.String(), "orders unavailable") {
		t.Fatalf("body lacks server message: %s", w.Body.String())
	}
}

func TestOrderActionHTMXRefreshesPanel(t *testing.T) {
	h := newHarness(t)
	req := httptest.NewRequest(http.MethodPost, "/orders/pay-1/confirm", nil)
	req.Header.Set("HX-Request", "true")

	w := h.do(req, h.login(auth.AuthorityAdmin))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	reqs := h.backend.Requests()
	if len(reqs) != 2 {
		t.Fatalf("backend calls = %d, want 2", len(reqs))
	}
	if reqs[0].Path != "/admin/trade/confirm" || reqs[0].Query["tradeUUID"] != "pay-1" || reqs[0].Query["changeToDeliveryReady"] != "true" {
		t.Fatalf("transition request = %+v", reqs[0])
	}
	if reqs[1].Path != "/admin/trade/all-trades" {
		t.Fatalf("refetch = %+v", reqs[1])
	}
	body := w.Body.String()
	if strings.Contains(body, "<html") {
		t.Fatal("htmx response should be a fragment")
	}
	if !strings.Contains(body, "Order status updated.") {
		t.Fatal("success notice missing")
	}
}

func TestOrderActionHTMXFailureRetargetsNotifications(t *testing.T) {
	h := newHarness(t)
	h.backend.Handle(http.MethodPost, "/admin/trade/prepare", testutil.Reply{Status: http.StatusConflict, Body: "bad state"})
	req := httptest.NewRequest(http.MethodPost, "/orders/prep-1/prepare", nil)
	req.Header.Set("HX-Request", "true")

	w := h.do(req, h.login(auth.AuthorityAdmin))
	if got := w.Header().Get("HX-Retarget"); got != "#notifications" {
		t.Fatalf("HX-Retarget = %q", got)
	}
	if !strings.Contains(w.Body.String(), "<dialog open") || !strings.Contains(w.Body.String(), "Failed to update order status.") {
		t.Fatalf("blocking dialog missing: %s", w.Body.String())
	}
	if n := h.backend.Count(http.MethodGet, "/admin/trade/all-trades"); n != 0 {
		t.Fatalf("refetches after failure = %d, want 0", n)
	}
}

func TestOrderActionPlainPostRedirectsWithFlash(t *testing.T) {
	h := newHarness(t)
	sess := h.login(auth.AuthorityAdmin)

	w := h.do(httptest.NewRequest(http.MethodPost, "/orders/in-1/post-delivery", nil), sess)
	if w.Code != http.StatusFound || w.Header().Get("Location") != "/orders" {
		t.Fatalf("status = %d, Location = %q", w.Code, w.Header().Get("Location"))
	}
	if n := h.backend.Count(http.MethodPost, "/admin/trade/post-delivery"); n != 1 {
		t.Fatalf("transition calls = %d, want 1", n)
	}
	fc := responseCookie(w, "flash")
	if fc == nil {
		t.Fatal("flash cookie not set")
	}

	w = h.do(httptest.NewRequest(http.MethodGet, "/orders", nil), sess, fc)
	if !strings.Contains(w.Body.String(), "Order status updated.") {
		t.Fatal("flash not shown after redirect")
	}
}

func TestOrderActionMemberForbidden(t *testing.T) {
	h := newHarness(t)
	req := httptest.NewRequest(http.MethodPost, "/api/orders/pay-1/confirm", nil)

	w := h.do(req, h.login("USER"))
	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", w.Code)
	}
	if n := h.backend.Count(http.MethodPost, "/admin/trade/confirm"); n != 0 {
		t.Fatalf("transition calls = %d, want 0", n)
	}
}

func TestOrderActionUnknownActionRejected(t *testing.T) {
	h := newHarness(t)

	w := h.do(httptest.NewRequest(http.MethodPost, "/api/orders/pay-1/refund", nil), h.login(auth.AuthorityAdmin))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if len(h.backend.Requests()) != 0 {
		t.Fatal("unknown action reached the backend")
	}
}

func TestOrdersJSON(t *testing.T) {
	h := newHarness(t)

	w := h.do(httptest.NewRequest(http.MethodGet, "/api/orders", nil))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous status = %d, want 401", w.Code)
	}

	w = h.do(httptest.NewRequest(http.MethodGet, "/api/orders", nil), h.login(auth.AuthorityAdmin))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var got ordersJSON
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Phase != "loaded" || !got.Admin || got.Orders == nil || len(got.Orders.PayList) != 1 {
		t.Fatalf("unexpected payload: %+v", got)
	}
}

func TestSessionLoginAndLogout(t *testing.T) {
	h := newHarness(t)
	token := testutil.GenerateJWTHS256(t, testJWTSecret, 3, "a@cafe.test", auth.AuthorityAdmin)

	w := h.do(form("/session", url.Values{"token": {token}}))
	if w.Code != http.StatusFound || w.Header().Get("Location") != "/orders" {
		t.Fatalf("status = %d, Location = %q", w.Code, w.Header().Get("Location"))
	}
	sc := responseCookie(w, "session")
	if sc == nil || sc.Value == "" || !sc.HttpOnly {
		t.Fatalf("session cookie = %+v", sc)
	}
	s, err := h.sessions.Get(context.Background(), sc.Value)
	if err != nil || s == nil || s.Token != token {
		t.Fatalf("stored session = %+v, err = %v", s, err)
	}

	w = h.do(httptest.NewRequest(http.MethodPost, "/logout", nil), sc)
	if w.Code != http.StatusFound {
		t.Fatalf("logout status = %d", w.Code)
	}
	if s, _ := h.sessions.Get(context.Background(), sc.Value); s != nil {
		t.Fatal("session survived logout")
	}
}

func TestSessionEmptyTokenRejected(t *testing.T) {
	h := newHarness(t)

	w := h.do(form("/session", url.Values{"token": {"  "}}))
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Access token is required.") {
		t.Fatal("error not rendered")
	}
}

func TestRootRedirectsAndHealthz(t *testing.T) {
	h := newHarness(t)

	w := h.do(httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != http.StatusFound || w.Header().Get("Location") != "/orders" {
		t.Fatalf("root: status = %d, Location = %q", w.Code, w.Header().Get("Location"))
	}
	w = h.do(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if w.Code != http.StatusOK || w.Header().Get(headerRequestID) == "" {
		t.Fatalf("healthz: status = %d, request id = %q", w.Code, w.Header().Get(headerRequestID))
	}
}
