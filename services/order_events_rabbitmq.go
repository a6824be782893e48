package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// AMQPChannel is the part of *amqp.Channel the publisher uses.
type AMQPChannel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// RabbitPublisher sends order events to a durable topic exchange. The routing
// key is "orders.{restaurantId}.{event}" so consumers can bind per restaurant.
type RabbitPublisher struct {
	Conn     *amqp.Connection
	Ch       AMQPChannel
	Exchange string
}

// NewRabbitPublisher dials url, opens a channel and declares the exchange.
func NewRabbitPublisher(url, exchange string) (*RabbitPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open rabbitmq channel: %w", err)
	}
	p := &RabbitPublisher{Conn: conn, Ch: ch, Exchange: exchange}
	if err := p.Setup(); err != nil {
		p.Close()
		return nil, err
	}
	return p, nil
}

// Setup declares the topic exchange events are published to.
func (p *RabbitPublisher) Setup() error {
	if err := p.Ch.ExchangeDeclare(
		p.Exchange, // name
		"topic",    // type
		true,       // durable
		false,      // auto-deleted
		false,      // internal
		false,      // no-wait
		nil,        // args
	); err != nil {
		return fmt.Errorf("declare exchange %s: %w", p.Exchange, err)
	}
	return nil
}

func RoutingKey(event OrderEvent) string {
	return fmt.Sprintf("orders.%s.%s", event.RestaurantID, event.Event)
}

func (p *RabbitPublisher) PublishOrderEvent(ctx context.Context, event OrderEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", event.Event, err)
	}
	err = p.Ch.PublishWithContext(ctx, p.Exchange, RoutingKey(event), false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    event.OrderID,
		Timestamp:    event.OccurredAt,
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("publish %s event: %w", event.Event, err)
	}
	return nil
}

func (p *RabbitPublisher) Close() error {
	var errs []error
	if p.Ch != nil {
		errs = append(errs, p.Ch.Close())
	}
	if p.Conn != nil {
		errs = append(errs, p.Conn.Close())
	}
	return errors.Join(errs...)
}

// MultiPublisher fans every event out to all publishers and joins their
// errors.
type MultiPublisher []OrderEventPublisher

func (m MultiPublisher) PublishOrderEvent(ctx context.Context, event OrderEvent) error {
	var errs []error
	for _, p := range m {
		if err := p.PublishOrderEvent(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m MultiPublisher) Close() error {
	var errs []error
	for _, p := range m {
		errs = append(errs, p.Close())
	}
	return errors.Join(errs...)
}
