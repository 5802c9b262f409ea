// Package ingest consumes webhook-originated inventory change events from a
// message queue and appends them to the history log. Delivery is
// fire-and-forget: a failed write is logged and the consumer moves on, it
// never blocks or replays.
package ingest

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/stocksentinel/alerts-core/backend/internal/domain"
	"github.com/stocksentinel/alerts-core/backend/internal/service"
)

// changeMessage is the wire shape of one inventory change event
type changeMessage struct {
	Shop          string `json:"shop"`
	ProductID     string `json:"product_id"`
	ProductTitle  string `json:"product_title"`
	VariantID     string `json:"variant_id,omitempty"`
	VariantTitle  string `json:"variant_title,omitempty"`
	ChangeType    string `json:"change_type"`
	PreviousStock int    `json:"previous_stock"`
	NewStock      int    `json:"new_stock"`
	Quantity      int    `json:"quantity"`
	OrderID       string `json:"order_id,omitempty"`
	OrderNumber   string `json:"order_number,omitempty"`
	Notes         string `json:"notes,omitempty"`
}

// Consumer reads inventory change events off a queue and records them
type Consumer struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   string
	history *service.HistoryService
	logger  *logrus.Logger
}

// NewConsumer connects to the broker and declares the durable event queue
func NewConsumer(url, queue string, history *service.HistoryService, logger *logrus.Logger) (*Consumer, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	_, err = channel.QueueDeclare(
		queue,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}

	return &Consumer{
		conn:    conn,
		channel: channel,
		queue:   queue,
		history: history,
		logger:  logger,
	}, nil
}

// Start consumes deliveries until the context is cancelled. Malformed or
// unrecordable messages are logged and dropped; consumption never stalls.
func (c *Consumer) Start(ctx context.Context) error {
	deliveries, err := c.channel.Consume(
		c.queue,
		"",    // consumer tag
		true,  // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,   // args
	)
	if err != nil {
		return fmt.Errorf("failed to start consuming: %w", err)
	}

	c.logger.WithField("queue", c.queue).Info("inventory change consumer started")

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case delivery, ok := <-deliveries:
				if !ok {
					c.logger.Warn("delivery channel closed, consumer stopping")
					return
				}
				c.handle(ctx, delivery.Body)
			}
		}
	}()

	return nil
}

func (c *Consumer) handle(ctx context.Context, body []byte) {
	var msg changeMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		c.logger.WithError(err).Warn("dropping malformed inventory change message")
		return
	}

	entry := &domain.InventoryLogEntry{
		Shop:          msg.Shop,
		ProductID:     msg.ProductID,
		ProductTitle:  msg.ProductTitle,
		VariantID:     msg.VariantID,
		VariantTitle:  msg.VariantTitle,
		ChangeType:    domain.ChangeType(msg.ChangeType),
		PreviousStock: msg.PreviousStock,
		NewStock:      msg.NewStock,
		Quantity:      msg.Quantity,
		OrderID:       msg.OrderID,
		OrderNumber:   msg.OrderNumber,
		Notes:         msg.Notes,
		Source:        domain.SourceWebhook,
	}

	if _, err := c.history.Record(ctx, entry); err != nil {
		c.logger.WithError(err).WithFields(logrus.Fields{
			"shop":       msg.Shop,
			"product_id": msg.ProductID,
		}).Warn("failed to record webhook inventory change")
	}
}

// Close tears down the channel and connection
func (c *Consumer) Close() error {
	if err := c.channel.Close(); err != nil {
		c.conn.Close()
		return err
	}
	return c.conn.Close()
}
