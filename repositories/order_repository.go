package repositories

import (
	"context"
	"fmt"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/yeremiapane/restaurant-dashboard/models"
	"github.com/yeremiapane/restaurant-dashboard/store"
	"github.com/yeremiapane/restaurant-dashboard/utils"
)

// OrderRepository stores one order collection per restaurant.
type OrderRepository struct {
	store       store.Store
	locks       *partitionLocks
	restaurants *RestaurantRepository
	menuItems   *MenuItemRepository
}

// OrderLine is one requested menu item in a new order.
type OrderLine struct {
	MenuItemID string `json:"menuItemId"`
	Quantity   int    `json:"quantity"`
}

// PlaceOrder is a customer's order before prices are captured. Total is
// optional; when sent it has to match what the menu prices add up to.
type PlaceOrder struct {
	CustomerID    string      `json:"customerId" binding:"required"`
	CustomerName  string      `json:"customerName" binding:"required"`
	CustomerPhone string      `json:"customerPhone" binding:"required"`
	Items         []OrderLine `json:"items" binding:"required"`
	Total         *float64    `json:"total"`
}

// ListByRestaurant returns the whole order partition in stored order.
func (r *OrderRepository) ListByRestaurant(ctx context.Context, restaurantID string) ([]models.Order, error) {
	return loadCollection[models.Order](ctx, r.store, store.OrdersKey(restaurantID))
}

func (r *OrderRepository) Get(ctx context.Context, restaurantID, id string) (models.Order, error) {
	orders, err := r.ListByRestaurant(ctx, restaurantID)
	if err != nil {
		return models.Order{}, err
	}
	for _, o := range orders {
		if o.ID == id {
			return o, nil
		}
	}
	return models.Order{}, utils.NotFound("order %s not found", id)
}

// Create prices req against the restaurant's current menu and stores it as a
// pending order.
func (r *OrderRepository) Create(ctx context.Context, restaurantID string, req PlaceOrder) (models.Order, error) {
	if _, err := r.restaurants.Get(ctx, restaurantID); err != nil {
		return models.Order{}, err
	}
	if len(req.Items) == 0 {
		return models.Order{}, utils.FieldError("items", "must contain at least one item")
	}
	menu, err := r.menuItems.List(ctx, restaurantID)
	if err != nil {
		return models.Order{}, err
	}
	byID := make(map[string]models.MenuItem, len(menu))
	for _, item := range menu {
		byID[item.ID] = item
	}

	fields := map[string]string{}
	lines := make([]models.OrderItem, 0, len(req.Items))
	for i, line := range req.Items {
		path := fmt.Sprintf("items[%d]", i)
		item, ok := byID[line.MenuItemID]
		switch {
		case !ok:
			fields[path+".menuItemId"] = "does not reference a menu item of this restaurant"
			continue
		case !item.IsAvailable:
			fields[path+".menuItemId"] = item.Name + " is not available"
			continue
		case line.Quantity < 1:
			fields[path+".quantity"] = "must be at least 1"
			continue
		case line.Quantity > models.MaxLineQuantity:
			fields[path+".quantity"] = fmt.Sprintf("must be at most %d", models.MaxLineQuantity)
			continue
		}
		lines = append(lines, models.OrderItem{
			MenuItemID: item.ID,
			Name:       item.Name,
			Price:      item.Price,
			Quantity:   line.Quantity,
		})
	}
	if len(fields) > 0 {
		return models.Order{}, utils.Validation(fields)
	}

	total := models.ComputeTotal(lines)
	if req.Total != nil && math.Round(*req.Total*100) != math.Round(total*100) {
		return models.Order{}, utils.FieldError("total", fmt.Sprintf("does not match item prices (%.2f)", total))
	}

	return r.Insert(ctx, models.Order{
		RestaurantID:  restaurantID,
		CustomerID:    req.CustomerID,
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
		Items:         lines,
		Total:         total,
		Status:        models.OrderPending,
	})
}

// Insert stores a fully formed order, e.g. one imported from another
// channel. It rejects orders whose total disagrees with their lines.
func (r *OrderRepository) Insert(ctx context.Context, order models.Order) (models.Order, error) {
	if order.Status == "" {
		order.Status = models.OrderPending
	}
	if err := utils.ValidateStruct(order); err != nil {
		return models.Order{}, err
	}
	if !order.TotalMatches() {
		return models.Order{}, utils.FieldError("total",
			fmt.Sprintf("must equal the sum of item price x quantity (%.2f)", models.ComputeTotal(order.Items)))
	}

	key := store.OrdersKey(order.RestaurantID)
	unlock := r.locks.lock(key)
	defer unlock()

	if _, err := r.restaurants.Get(ctx, order.RestaurantID); err != nil {
		return models.Order{}, err
	}

	orders, err := loadCollection[models.Order](ctx, r.store, key)
	if err != nil {
		return models.Order{}, err
	}

	now := nowFunc()
	if order.ID == "" {
		order.ID = mintID("order", func(id string) bool {
			return indexOfOrder(orders, id) >= 0
		})
	} else if indexOfOrder(orders, order.ID) >= 0 {
		return models.Order{}, utils.Conflict("order %s already exists", order.ID)
	}
	if order.CreatedAt.IsZero() {
		order.CreatedAt = now
	}
	order.UpdatedAt = now
	order.Version = 1

	if err := saveCollection(ctx, r.store, key, append(orders, order)); err != nil {
		return models.Order{}, err
	}
	utils.InfoLogger.WithFields(logrus.Fields{
		"restaurant_id": order.RestaurantID,
		"order_id":      order.ID,
		"total":         utils.FormatRupees(order.Total),
	}).Info("order received")
	return order, nil
}

// Transition moves one order along the lifecycle. It returns the order as it
// was before and after the change.
func (r *OrderRepository) Transition(ctx context.Context, restaurantID, orderID string, next models.OrderStatus) (before, after models.Order, err error) {
	if !next.Valid() {
		return before, after, utils.FieldError("status", "must be one of: pending accepted declined completed")
	}

	key := store.OrdersKey(restaurantID)
	unlock := r.locks.lock(key)
	defer unlock()

	orders, err := loadCollection[models.Order](ctx, r.store, key)
	if err != nil {
		return before, after, err
	}
	idx := indexOfOrder(orders, orderID)
	if idx < 0 {
		return before, after, utils.NotFound("order %s not found", orderID)
	}

	before = orders[idx]
	if !models.CanTransition(before.Status, next) {
		return before, after, utils.IllegalTransition(string(before.Status), string(next))
	}

	orders[idx].Status = next
	orders[idx].UpdatedAt = nowFunc()
	orders[idx].Version++
	if err := saveCollection(ctx, r.store, key, orders); err != nil {
		return before, after, err
	}
	return before, orders[idx], nil
}

func indexOfOrder(orders []models.Order, id string) int {
	for i, o := range orders {
		if o.ID == id {
			return i
		}
	}
	return -1
}
