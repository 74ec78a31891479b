// Package dashboard builds the order dashboard: it resolves the viewer's role
// from the session token, fetches the role-appropriate order listing and lets
// administrators advance trades, always re-reading server state afterwards.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"cafeStorefront/internal/apiclient"
	"cafeStorefront/internal/auth"
	"cafeStorefront/models"
)

// Messages shown to the viewer.
const (
	MsgLoginRequired = "Login required."
	MsgLoadFailed    = "Failed to load orders."
	MsgActionOK      = "Order status updated."
	MsgActionFailed  = "Failed to update order status."
	MsgEmptyBucket   = "No orders in this status."
)

var (
	// ErrLoginRequired means the session carries no token.
	ErrLoginRequired = errors.New("login required")
	// ErrForbidden means a non-admin attempted an admin action.
	ErrForbidden = errors.New("admin role required")
	// ErrUnknownAction means the action is not a known trade transition.
	ErrUnknownAction = errors.New("unknown trade action")
)

// ActionError wraps a failed transition request.
type ActionError struct {
	TradeUUID string
	Action    models.TradeAction
	Err       error
}

func (e *ActionError) Error() string {
	return fmt.Sprintf("%s trade %s: %v", e.Action, e.TradeUUID, e.Err)
}

func (e *ActionError) Unwrap() error { return e.Err }

// OrdersAPI is the subset of the backend the dashboard needs.
type OrdersAPI interface {
	ShowOrders(ctx context.Context, token string) (*models.OrdersResponse, error)
	AllTrades(ctx context.Context, token string) (*models.OrdersResponse, error)
	Transition(ctx context.Context, token string, action models.TradeAction, tradeUUID string) error
}

// bucketActions scopes each admin action to the bucket it advances.
var bucketActions = map[models.Bucket]models.TradeAction{
	models.BucketPay:             models.TradeActionConfirm,
	models.BucketPrepareDelivery: models.TradeActionPrepare,
	models.BucketBeforeDelivery:  models.TradeActionInDelivery,
	models.BucketInDelivery:      models.TradeActionPostDelivery,
}

// ActionFor returns the admin action offered for groups in b, if any.
func ActionFor(b models.Bucket) (models.TradeAction, bool) {
	a, ok := bucketActions[b]
	return a, ok
}

// Dashboard is one viewer's order dashboard.
type Dashboard struct {
	session auth.Session
	api     OrdersAPI
	log     *slog.Logger
	admin   bool
}

// New resolves the viewer's role from the session token. Decoding is best effort:
// failures are logged and the viewer is treated as a regular member.
func New(session auth.Session, decoder auth.ClaimsDecoder, api OrdersAPI, logger *slog.Logger) *Dashboard {
	if logger == nil {
		logger = slog.Default()
	}
	d := &Dashboard{session: session, api: api, log: logger}
	if session.Authenticated() && decoder != nil {
		claims, err := decoder.Decode(session.Token)
		if err != nil {
			logger.Warn("token_decode_failed", slog.String("session_id", session.ID), slog.Any("err", err))
		} else {
			d.admin = claims.IsAdmin()
		}
	}
	return d
}

// IsAdmin reports whether the viewer holds the admin role.
func (d *Dashboard) IsAdmin() bool { return d.admin }

// Load fetches the order listing once. Without a token it issues no request.
func (d *Dashboard) Load(ctx context.Context) View {
	v := View{Admin: d.admin}
	if !d.session.Authenticated() {
		v.Phase = PhaseError
		v.Error = MsgLoginRequired
		return v
	}

	var (
		orders *models.OrdersResponse
		err    error
	)
	if d.admin {
		orders, err = d.api.AllTrades(ctx, d.session.Token)
	} else {
		orders, err = d.api.ShowOrders(ctx, d.session.Token)
	}
	if err != nil {
		d.log.Error("orders_fetch_failed", slog.Bool("admin", d.admin), slog.Any("err", err))
		v.Phase = PhaseError
		v.Error = apiclient.MessageOr(err, MsgLoadFailed)
		return v
	}
	v.Phase = PhaseLoaded
	v.Orders = orders
	v.Buckets = buildBuckets(orders, d.admin)
	return v
}

// Advance posts one status transition for tradeUUID. It does not refetch.
func (d *Dashboard) Advance(ctx context.Context, tradeUUID string, action models.TradeAction) error {
	if !d.session.Authenticated() {
		return ErrLoginRequired
	}
	if !d.admin {
		return ErrForbidden
	}
	if !action.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownAction, action)
	}
	if err := d.api.Transition(ctx, d.session.Token, action, tradeUUID); err != nil {
		d.log.Error("trade_transition_failed",
			slog.String("trade_uuid", tradeUUID),
			slog.String("action", string(action)),
			slog.Any("err", err))
		return &ActionError{TradeUUID: tradeUUID, Action: action, Err: err}
	}
	d.log.Info("trade_transitioned", slog.String("trade_uuid", tradeUUID), slog.String("action", string(action)))
	return nil
}

// Act advances the trade and, only when that succeeds, reloads the whole dashboard.
// On failure the returned View is zero and nothing is refetched.
func (d *Dashboard) Act(ctx context.Context, tradeUUID string, action models.TradeAction) (View, error) {
	if err := d.Advance(ctx, tradeUUID, action); err != nil {
		return View{}, err
	}
	v := d.Load(ctx)
	v.Notice = MsgActionOK
	return v, nil
}
