package models

// Bucket names one of the fulfillment-status lists returned by the backend.
// The value is the JSON key of the list in OrdersResponse.
type Bucket string

const (
	BucketBuy             Bucket = "buyList"
	BucketPay             Bucket = "payList"
	BucketPrepareDelivery Bucket = "prepareDeliveryList"
	BucketBeforeDelivery  Bucket = "beforeDeliveryList"
	BucketInDelivery      Bucket = "inDeliveryList"
	BucketPostDelivery    Bucket = "postDeliveryList"
	BucketRefused         Bucket = "refusedList"
	BucketRefund          Bucket = "refundList"
)

// Buckets lists every bucket in display order.
var Buckets = []Bucket{
	BucketBuy,
	BucketPay,
	BucketPrepareDelivery,
	BucketBeforeDelivery,
	BucketInDelivery,
	BucketPostDelivery,
	BucketRefused,
	BucketRefund,
}

var bucketLabels = map[Bucket]string{
	BucketBuy:             "Order pending (BUY)",
	BucketPay:             "Paid (PAY)",
	BucketPrepareDelivery: "Preparing delivery (PREPARE_DELIVERY)",
	BucketBeforeDelivery:  "Before delivery (BEFORE_DELIVERY)",
	BucketInDelivery:      "In delivery (IN_DELIVERY)",
	BucketPostDelivery:    "Delivered (POST_DELIVERY)",
	BucketRefused:         "Refused (REFUSED)",
	BucketRefund:          "Refunded (REFUND)",
}

// Label returns the heading shown above the bucket.
func (b Bucket) Label() string {
	if l, ok := bucketLabels[b]; ok {
		return l
	}
	return string(b)
}

// TradeAction is a status-advance request understood by /admin/trade/{action}.
type TradeAction string

const (
	TradeActionConfirm      TradeAction = "confirm"
	TradeActionPrepare      TradeAction = "prepare"
	TradeActionInDelivery   TradeAction = "in-delivery"
	TradeActionPostDelivery TradeAction = "post-delivery"
)

// Valid reports whether a is one of the known trade actions.
func (a TradeAction) Valid() bool {
	switch a {
	case TradeActionConfirm, TradeActionPrepare, TradeActionInDelivery, TradeActionPostDelivery:
		return true
	}
	return false
}

// OrderItem is a single line item of a trade.
type OrderItem struct {
	ItemID   int64  `json:"itemId"`
	Quantity int    `json:"quantity"`
	ItemName string `json:"itemName"`
}

// OrderGroup pairs a trade identifier with its line items.
type OrderGroup struct {
	TradeUUID string      `json:"tradeUUID"`
	Items     []OrderItem `json:"orderItemDtoList"`
}

// OrdersResponse is the bucketed order listing owned by the backend.
// It is read-only for the lifetime of one fetch.
type OrdersResponse struct {
	BuyList             []OrderGroup `json:"buyList"`
	PayList             []OrderGroup `json:"payList"`
	PrepareDeliveryList []OrderGroup `json:"prepareDeliveryList"`
	BeforeDeliveryList  []OrderGroup `json:"beforeDeliveryList"`
	InDeliveryList      []OrderGroup `json:"inDeliveryList"`
	PostDeliveryList    []OrderGroup `json:"postDeliveryList"`
	RefusedList         []OrderGroup `json:"refusedList"`
	RefundList          []OrderGroup `json:"refundList"`
}

// Groups returns the order groups held in bucket b. Unknown buckets yield nil.
func (o *OrdersResponse) Groups(b Bucket) []OrderGroup {
	if o == nil {
		return nil
	}
	switch b {
	case BucketBuy:
		return o.BuyList
	case BucketPay:
		return o.PayList
	case BucketPrepareDelivery:
		return o.PrepareDeliveryList
	case BucketBeforeDelivery:
		return o.BeforeDeliveryList
	case BucketInDelivery:
		return o.InDeliveryList
	case BucketPostDelivery:
		return o.PostDeliveryList
	case BucketRefused:
		return o.RefusedList
	case BucketRefund:
		return o.RefundList
	}
	return nil
}
