package services

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yeremiapane/restaurant-dashboard/models"
	"github.com/yeremiapane/restaurant-dashboard/repositories"
	"github.com/yeremiapane/restaurant-dashboard/utils"
)

// Broadcaster pushes order changes to live dashboards.
type Broadcaster interface {
	BroadcastOrderCreated(order models.Order)
	BroadcastOrderUpdate(order models.Order)
}

// OrderStore is the part of the order repository the lifecycle drives.
type OrderStore interface {
	Create(ctx context.Context, restaurantID string, req repositories.PlaceOrder) (models.Order, error)
	Transition(ctx context.Context, restaurantID, orderID string, next models.OrderStatus) (models.Order, models.Order, error)
}

// OrderLifecycle applies order changes and fans them out. Only the stored
// change decides success; broadcast and publish failures are logged.
type OrderLifecycle struct {
	Orders    OrderStore
	Feed      Broadcaster
	Publisher OrderEventPublisher
	Now       func() time.Time
}

func NewOrderLifecycle(orders OrderStore, feed Broadcaster, publisher OrderEventPublisher) *OrderLifecycle {
	if publisher == nil {
		publisher = NoopPublisher{}
	}
	return &OrderLifecycle{
		Orders:    orders,
		Feed:      feed,
		Publisher: publisher,
		Now:       func() time.Time { return time.Now().UTC() },
	}
}

// Place stores a customer's order as pending.
func (l *OrderLifecycle) Place(ctx context.Context, restaurantID string, req repositories.PlaceOrder) (models.Order, error) {
	order, err := l.Orders.Create(ctx, restaurantID, req)
	if err != nil {
		return models.Order{}, err
	}
	if l.Feed != nil {
		l.Feed.BroadcastOrderCreated(order)
	}
	l.publish(ctx, OrderEvent{
		Event:        EventOrderCreated,
		OrderID:      order.ID,
		RestaurantID: order.RestaurantID,
		To:           order.Status,
		Total:        order.Total,
		OccurredAt:   l.Now(),
	})
	return order, nil
}

func (l *OrderLifecycle) Transition(ctx context.Context, restaurantID, orderID string, next models.OrderStatus) (models.Order, error) {
	before, after, err := l.Orders.Transition(ctx, restaurantID, orderID, next)
	if err != nil {
		return models.Order{}, err
	}
	utils.InfoLogger.WithFields(logrus.Fields{
		"restaurant_id": restaurantID,
		"order_id":      orderID,
		"from":          before.Status,
		"to":            after.Status,
	}).Info("order status changed")

	if l.Feed != nil {
		l.Feed.BroadcastOrderUpdate(after)
	}
	l.publish(ctx, OrderEvent{
		Event:        EventOrderStatusChanged,
		OrderID:      after.ID,
		RestaurantID: after.RestaurantID,
		From:         before.Status,
		To:           after.Status,
		Total:        after.Total,
		OccurredAt:   l.Now(),
	})
	return after, nil
}

func (l *OrderLifecycle) Accept(ctx context.Context, restaurantID, orderID string) (models.Order, error) {
	return l.Transition(ctx, restaurantID, orderID, models.OrderAccepted)
}

func (l *OrderLifecycle) Decline(ctx context.Context, restaurantID, orderID string) (models.Order, error) {
	return l.Transition(ctx, restaurantID, orderID, models.OrderDeclined)
}

func (l *OrderLifecycle) Complete(ctx context.Context, restaurantID, orderID string) (models.Order, error) {
	return l.Transition(ctx, restaurantID, orderID, models.OrderCompleted)
}

func (l *OrderLifecycle) publish(ctx context.Context, event OrderEvent) {
	if err := l.Publisher.PublishOrderEvent(ctx, event); err != nil {
		utils.ErrorLogger.WithFields(logrus.Fields{
			"order_id":      event.OrderID,
			"restaurant_id": event.RestaurantID,
			"event":         event.Event,
		}).Errorf("Failed to publish order event: %v", err)
	}
}
