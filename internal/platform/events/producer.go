// Copyright (c) 2026 Coope San Ramón R.L. All rights reserved.
// Author: plataforma.movil@coopesanramon.fi.cr

/*
Package events publishes domain events to a RabbitMQ topic exchange.

Settled and failed transfers are announced so downstream consumers
(notifications, back-office reconciliation) can react without polling the
journal.

Core Responsibilities:

  - Delivery: Publishes JSON payloads to a durable topic exchange.
  - Resilience: One-shot channel reopen on publish failure.
  - Optionality: A no-op publisher keeps the flow working when no broker
    is configured.
*/
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"github.com/S77VEN31/coopesanramon-mobile-sub001/internal/platform/constants"
)

const dialTimeout = 10 * time.Second

// Publisher is the outbound event port used by the transfer service.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, payload any) error
	Close()
}

// # AMQP Producer

// Producer publishes events to the application topic exchange.
type Producer struct {
	conn    *amqp091.Connection
	channel *amqp091.Channel
	logger  *slog.Logger
}

// NewProducer dials the broker and declares the durable topic exchange.
func NewProducer(amqpURL string, logger *slog.Logger) (*Producer, error) {
	conn, err := amqp091.DialConfig(amqpURL, amqp091.Config{
		Dial: amqp091.DefaultDial(dialTimeout),
	})
	if err != nil {
		return nil, fmt.Errorf("events: failed to dial broker: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("events: failed to open channel: %w", err)
	}

	if err := declareExchange(channel); err != nil {
		_ = channel.Close()
		_ = conn.Close()
		return nil, err
	}

	logger.Info("event producer connected",
		slog.String("exchange", constants.EventExchange),
	)

	return &Producer{conn: conn, channel: channel, logger: logger}, nil
}

// Publish marshals the payload and sends it with the given routing key.
// On a channel-level failure it reopens the channel and retries once.
func (p *Producer) Publish(ctx context.Context, routingKey string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("events: failed to marshal payload: %w", err)
	}

	publishing := amqp091.Publishing{
		ContentType: "application/json",
		Timestamp:   time.Now(),
		Body:        body,
	}

	err = p.channel.PublishWithContext(ctx, constants.EventExchange, routingKey, false, false, publishing)
	if err == nil {
		return nil
	}

	// One-shot retry: reopen the channel and try again.
	p.logger.Warn("event_publish_retrying",
		slog.String("routing_key", routingKey),
		slog.Any("error", err),
	)

	channel, chanErr := p.conn.Channel()
	if chanErr != nil {
		return fmt.Errorf("events: failed to reopen channel: %w", chanErr)
	}
	p.channel = channel

	if err := declareExchange(p.channel); err != nil {
		return err
	}

	if err := p.channel.PublishWithContext(ctx, constants.EventExchange, routingKey, false, false, publishing); err != nil {
		return fmt.Errorf("events: publish failed after retry: %w", err)
	}

	return nil
}

// Close gracefully closes the channel and connection.
func (p *Producer) Close() {
	if p.channel != nil {
		_ = p.channel.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
}

func declareExchange(channel *amqp091.Channel) error {
	err := channel.ExchangeDeclare(
		constants.EventExchange, // name
		"topic",                 // type
		true,                    // durable
		false,                   // autoDelete
		false,                   // internal
		false,                   // noWait
		nil,                     // args
	)
	if err != nil {
		return fmt.Errorf("events: failed to declare exchange: %w", err)
	}
	return nil
}

// # No-op Publisher

// NoopPublisher discards all events. Used when AMQP_URL is not configured.
type NoopPublisher struct{}

// Publish implements [Publisher] by doing nothing.
func (NoopPublisher) Publish(context.Context, string, any) error { return nil }

// Close implements [Publisher] by doing nothing.
func (NoopPublisher) Close() {}
