// Package apiclient talks to the storefront backend over HTTP.
//
// It owns the exact endpoint paths and parameters the frontend relies on and
// turns non-2xx answers into *APIError values that keep the raw body, so views
// can show the server's own message.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"cafeStorefront/models"
)

const (
	pathJoinAdmin = "/member/join/admin"
	pathShowOrder = "/order/show"
	pathAllTrades = "/admin/trade/all-trades"
	pathTradeBase = "/admin/trade/"

	tracerName = "cafeStorefront/internal/apiclient"

	// maxErrorBody caps how much of a failed response is kept for display.
	maxErrorBody = 64 << 10
)

// ErrUnknownAction is returned for trade actions the backend does not expose.
var ErrUnknownAction = errors.New("unknown trade action")

// Client is a thin wrapper over the backend REST API.
type Client struct {
	base   *url.URL
	http   *http.Client
	tracer trace.Tracer
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout sets the per-request timeout of the default http.Client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// New returns a Client for the backend rooted at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(strings.TrimSpace(baseURL), "/"))
	if err != nil {
		return nil, fmt.Errorf("parse api base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("api base url %q must be absolute", baseURL)
	}
	c := &Client{
		base:   u,
		http:   &http.Client{},
		tracer: otel.Tracer(tracerName),
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// JoinAdmin creates an administrator account.
func (c *Client) JoinAdmin(ctx context.Context, req models.AdminJoinRequest) error {
	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("encode join request: %w", err)
	}
	return c.do(ctx, http.MethodPost, pathJoinAdmin, nil, "", body, nil)
}

// ShowOrders lists the orders of the token's owner.
func (c *Client) ShowOrders(ctx context.Context, token string) (*models.OrdersResponse, error) {
	var out models.OrdersResponse
	if err := c.do(ctx, http.MethodGet, pathShowOrder, nil, token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AllTrades lists the orders of every member. The backend only allows administrators.
func (c *Client) AllTrades(ctx context.Context, token string) (*models.OrdersResponse, error) {
	var out models.OrdersResponse
	if err := c.do(ctx, http.MethodGet, pathAllTrades, nil, token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Transition asks the backend to advance a trade. The trade id travels as a
// query parameter; confirm additionally sets changeToDeliveryReady=true.
func (c *Client) Transition(ctx context.Context, token string, action models.TradeAction, tradeUUID string) error {
	if !action.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownAction, action)
	}
	q := url.Values{}
	q.Set("tradeUUID", tradeUUID)
	if action == models.TradeActionConfirm {
		q.Set("changeToDeliveryReady", "true")
	}
	return c.do(ctx, http.MethodPost, pathTradeBase+string(action), q, token, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, token string, body []byte, out any) error {
	ctx, span := c.tracer.Start(ctx, method+" "+path, trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", method),
			attribute.String("url.path", path),
		))
	defer span.End()

	u := *c.base
	u.Path = c.base.Path + path
	u.RawQuery = query.Encode()

	var rdr io.Reader
	if body != nil {
		rdr = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), rdr)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := c.http.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "transport")
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()
	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		apiErr := &APIError{Method: method, Path: path, Status: resp.StatusCode, Body: raw}
		span.RecordError(apiErr)
		span.SetStatus(codes.Error, http.StatusText(resp.StatusCode))
		return apiErr
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		span.RecordError(err)
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}
