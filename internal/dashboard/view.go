package dashboard

import "cafeStorefront/models"

// Phase is the lifecycle stage of a dashboard view.
type Phase int

const (
	PhaseLoading Phase = iota
	PhaseError
	PhaseLoaded
)

func (p Phase) String() string {
	switch p {
	case PhaseError:
		return "error"
	case PhaseLoaded:
		return "loaded"
	}
	return "loading"
}

// View is everything the dashboard template needs. The zero View is loading.
type View struct {
	Phase   Phase
	Admin   bool
	Error   string
	Notice  string
	Orders  *models.OrdersResponse
	Buckets []BucketView
}

// Loading reports whether the first fetch has not settled yet.
func (v View) Loading() bool { return v.Phase == PhaseLoading }

// Failed reports whether the view ended in the error phase.
func (v View) Failed() bool { return v.Phase == PhaseError }

// BucketView is one rendered status section.
type BucketView struct {
	Bucket models.Bucket
	Label  string
	Groups []GroupView
}

// Empty reports whether the bucket has no order groups.
func (b BucketView) Empty() bool { return len(b.Groups) == 0 }

// GroupView is one trade with its optional admin action.
type GroupView struct {
	models.OrderGroup
	Action models.TradeAction
}

// HasAction reports whether a status-advance button is rendered for the group.
func (g GroupView) HasAction() bool { return g.Action != "" }

// ActionLabel is the button caption for the group's action.
func (g GroupView) ActionLabel() string {
	switch g.Action {
	case models.TradeActionConfirm:
		return "Confirm"
	case models.TradeActionPrepare:
		return "Prepare delivery"
	case models.TradeActionInDelivery:
		return "Start delivery"
	case models.TradeActionPostDelivery:
		return "Complete delivery"
	}
	return ""
}

// ActionCount returns the number of action buttons the view renders.
func (v View) ActionCount() int {
	n := 0
	for _, b := range v.Buckets {
		for _, g := range b.Groups {
			if g.HasAction() {
				n++
			}
		}
	}
	return n
}

func buildBuckets(orders *models.OrdersResponse, admin bool) []BucketView {
	out := make([]BucketView, 0, len(models.Buckets))
	for _, b := range models.Buckets {
		bv := BucketView{Bucket: b, Label: b.Label()}
		action, scoped := ActionFor(b)
		for _, g := range orders.Groups(b) {
			gv := GroupView{OrderGroup: g}
			if admin && scoped {
				gv.Action = action
			}
			bv.Groups = append(bv.Groups, gv)
		}
		out = append(out, bv)
	}
	return out
}
