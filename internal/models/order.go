package models

// OrderSide represents the direction of an order (BUY or SELL)
type OrderSide string

const (
	SideBuy     OrderSide = "BUY"
	SideSell    OrderSide = "SELL"
	SideUnknown OrderSide = "UNKNOWN"
)

// OrderType represents how the order was priced
type OrderType string

const (
	TypeMarket      OrderType = "MARKET"
	TypeLimit       OrderType = "LIMIT"
	TypeLiquidation OrderType = "LIQUIDATION"
)

// OrderStatus represents the terminal state of an order
type OrderStatus string

const (
	StatusFilled     OrderStatus = "FILLED"
	StatusLiquidated OrderStatus = "LIQUIDATED"
	StatusRejected   OrderStatus = "REJECTED"
)

// Order is the canonical order record derived from one execution outcome.
// Exactly one Order exists per outcome; quantities are unsigned magnitudes
// with direction carried by Side.
type Order struct {
	ID        string      `json:"id"`
	Symbol    string      `json:"symbol"`
	Side      OrderSide   `json:"side"`
	Type      OrderType   `json:"type"`
	Status    OrderStatus `json:"status"`
	Quantity  float64     `json:"quantity"`
	Price     float64     `json:"price"`
	Fee       float64     `json:"fee"`
	Timestamp Timestamp   `json:"timestamp"`
	Reason    string      `json:"reason,omitempty"`
}

// CountsAsTrade reports whether the order represents money actually moving:
// rejected orders never contribute to fees, trade counts, or positions.
func (o Order) CountsAsTrade() bool {
	return o.Status == StatusFilled || o.Status == StatusLiquidated
}

// SignedQuantity returns the order quantity signed by side: BUY positive,
// SELL negative.
func (o Order) SignedQuantity() float64 {
	if o.Side == SideSell {
		return -o.Quantity
	}
	return o.Quantity
}

// Position is a derived point-in-time holding. Quantity is signed: SHORT
// positions are negative.
type Position struct {
	Symbol   string  `json:"symbol"`
	Quantity float64 `json:"quantity"`
}
