package models

// MaxLineQuantity caps one order line so totals stay far from overflow.
const MaxLineQuantity = 10000

// OrderItem captures the menu item's name and price at the time of ordering,
// so later menu edits never change an existing order.
type OrderItem struct {
	MenuItemID string  `json:"menuItemId" validate:"required"`
	Name       string  `json:"name" validate:"required"`
	Price      float64 `json:"price" validate:"gte=0"`
	Quantity   int     `json:"quantity" validate:"min=1,max=10000"`
}

func (i OrderItem) Subtotal() float64 {
	return i.Price * float64(i.Quantity)
}
