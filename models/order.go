package models

import (
	"time"

	"github.com/yeremiapane/restaurant-dashboard/utils"
)

type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderAccepted  OrderStatus = "accepted"
	OrderDeclined  OrderStatus = "declined"
	OrderCompleted OrderStatus = "completed"
)

// orderTransitions lists every allowed edge. pending -> completed is
// deliberately absent: an order has to be accepted first.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderPending:  {OrderAccepted, OrderDeclined},
	OrderAccepted: {OrderCompleted},
}

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderAccepted, OrderDeclined, OrderCompleted:
		return true
	}
	return false
}

// Terminal reports whether no transition leaves s.
func (s OrderStatus) Terminal() bool {
	return s.Valid() && len(orderTransitions[s]) == 0
}

// CanTransition reports whether from -> to is an edge of the order lifecycle.
func CanTransition(from, to OrderStatus) bool {
	for _, next := range orderTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// NextStatuses returns the statuses reachable from s in one step.
func NextStatuses(s OrderStatus) []OrderStatus {
	next := orderTransitions[s]
	out := make([]OrderStatus, len(next))
	copy(out, next)
	return out
}

type Order struct {
	ID            string      `json:"id"`
	RestaurantID  string      `json:"restaurantId" validate:"required"`
	CustomerID    string      `json:"customerId" validate:"required"`
	CustomerName  string      `json:"customerName" validate:"required"`
	CustomerPhone string      `json:"customerPhone" validate:"required"`
	Items         []OrderItem `json:"items" validate:"required,min=1,dive"`
	Total         float64     `json:"total" validate:"gte=0"`
	Status        OrderStatus `json:"status" validate:"required,oneof=pending accepted declined completed"`
	CreatedAt     time.Time   `json:"createdAt"`
	UpdatedAt     time.Time   `json:"updatedAt"`
	Version       int         `json:"version"`
}

// ComputeTotal sums price x quantity over items, rounded to cents.
func ComputeTotal(items []OrderItem) float64 {
	var cents int64
	for _, item := range items {
		cents += utils.ToCents(item.Subtotal())
	}
	return float64(cents) / 100
}

// TotalMatches reports whether the stored total equals the sum of its lines.
func (o Order) TotalMatches() bool {
	return utils.ToCents(o.Total) == utils.ToCents(ComputeTotal(o.Items))
}

// OrderBoard is the three-column view the dashboard renders.
type OrderBoard struct {
	Pending  []Order `json:"pending"`
	Accepted []Order `json:"accepted"`
	Closed   []Order `json:"closed"`
}

// PartitionOrders splits orders by status, keeping their relative order.
func PartitionOrders(orders []Order) OrderBoard {
	board := OrderBoard{Pending: []Order{}, Accepted: []Order{}, Closed: []Order{}}
	for _, o := range orders {
		switch o.Status {
		case OrderPending:
			board.Pending = append(board.Pending, o)
		case OrderAccepted:
			board.Accepted = append(board.Accepted, o)
		case OrderDeclined, OrderCompleted:
			board.Closed = append(board.Closed, o)
		}
	}
	return board
}
