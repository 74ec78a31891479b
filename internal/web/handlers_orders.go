package web

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"cafeStorefront/internal/apperr"
	"cafeStorefront/internal/auth"
	"cafeStorefront/internal/dashboard"
	"cafeStorefront/models"
)

type ordersPage struct {
	View     dashboard.View
	Flash    *Flash
	LoggedIn bool
}

// ordersJSON is the wire shape of a dashboard view.
type ordersJSON struct {
	Phase  string                 `json:"phase"`
	Admin  bool                   `json:"admin"`
	Error  string                 `json:"error,omitempty"`
	Notice string                 `json:"notice,omitempty"`
	Orders *models.OrdersResponse `json:"orders,omitempty"`
}

func toJSON(v dashboard.View) ordersJSON {
	return ordersJSON{
		Phase:  v.Phase.String(),
		Admin:  v.Admin,
		Error:  v.Error,
		Notice: v.Notice,
		Orders: v.Orders,
	}
}

func (h *Handler) dashboardFor(c *gin.Context) (*dashboard.Dashboard, auth.Session) {
	s := auth.SessionFromContext(c.Request.Context())
	return dashboard.New(s, h.deps.Decoder, h.deps.Backend, h.deps.Logger), s
}

// OrdersPage renders the dashboard. htmx requests receive only the panel.
func (h *Handler) OrdersPage(c *gin.Context) {
	d, s := h.dashboardFor(c)
	view := d.Load(c.Request.Context())
	page := ordersPage{View: view, LoggedIn: s.Authenticated()}
	if isHTMXRequest(c.Request) {
		h.render.HTML(c, http.StatusOK, "orders_panel", page)
		return
	}
	page.Flash = h.deps.Flash.Pop(c)
	h.render.HTML(c, http.StatusOK, "orders", page)
}

// OrderAction advances a trade. htmx callers get the refreshed panel, or a
// blocking notice swapped into #notifications; plain form posts redirect back.
func (h *Handler) OrderAction(c *gin.Context) {
	d, s := h.dashboardFor(c)
	trade, action := c.Param("tradeUUID"), models.TradeAction(c.Param("action"))

	if !isHTMXRequest(c.Request) {
		if err := d.Advance(c.Request.Context(), trade, action); err != nil {
			h.logActionFailure(c, trade, action, err)
			h.deps.Flash.Set(c, Flash{Kind: FlashError, Message: actionMessage(err)})
		} else {
			h.deps.Flash.Set(c, Flash{Kind: FlashSuccess, Message: dashboard.MsgActionOK})
		}
		c.Redirect(http.StatusFound, "/orders")
		return
	}

	view, err := d.Act(c.Request.Context(), trade, action)
	if err != nil {
		h.logActionFailure(c, trade, action, err)
		c.Header("HX-Retarget", "#notifications")
		c.Header("HX-Reswap", "innerHTML")
		h.render.HTML(c, http.StatusOK, "notice_dialog", &Flash{Kind: FlashError, Message: actionMessage(err)})
		return
	}
	h.render.HTML(c, http.StatusOK, "orders_panel", ordersPage{View: view, LoggedIn: s.Authenticated()})
}

// OrdersJSON returns the dashboard view as JSON.
func (h *Handler) OrdersJSON(c *gin.Context) {
	d, _ := h.dashboardFor(c)
	view := d.Load(c.Request.Context())
	status := http.StatusOK
	if view.Failed() {
		status = http.StatusBadGateway
		if view.Error == dashboard.MsgLoginRequired {
			status = http.StatusUnauthorized
		}
	}
	c.JSON(status, toJSON(view))
}

// OrderActionJSON advances a trade and returns the refreshed view.
func (h *Handler) OrderActionJSON(c *gin.Context) {
	d, _ := h.dashboardFor(c)
	trade, action := c.Param("tradeUUID"), models.TradeAction(c.Param("action"))
	view, err := d.Act(c.Request.Context(), trade, action)
	if err != nil {
		h.logActionFailure(c, trade, action, err)
		fail(c, actionAppErr(err))
		return
	}
	c.JSON(http.StatusOK, toJSON(view))
}

func (h *Handler) logActionFailure(c *gin.Context, trade string, action models.TradeAction, err error) {
	h.deps.Logger.Warn("order_action_failed",
		"request_id", getRequestID(c),
		"trade_uuid", trade,
		"action", string(action),
		"err", err)
}

// actionAppErr maps dashboard action errors onto HTTP-facing errors.
func actionAppErr(err error) *apperr.AppError {
	var ae *dashboard.ActionError
	switch {
	case errors.Is(err, dashboard.ErrLoginRequired):
		return apperr.UnauthorizedErr(dashboard.MsgLoginRequired)
	case errors.Is(err, dashboard.ErrForbidden):
		return apperr.ForbiddenErr("Only administrators can change order status.")
	case errors.Is(err, dashboard.ErrUnknownAction):
		return apperr.InvalidErr("Unknown order action.", nil)
	case errors.As(err, &ae):
		return apperr.UpstreamErr(dashboard.MsgActionFailed, err)
	default:
		return apperr.Wrap(err)
	}
}

func actionMessage(err error) string {
	return apperr.PublicMessage(actionAppErr(err))
}
