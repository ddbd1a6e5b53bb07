package events

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"github.com/sebuszqo/FinanceLedger/internal/finance/domain"
	"github.com/sebuszqo/FinanceLedger/internal/log"
)

const publishTimeout = 5 * time.Second

// channel is the part of *amqp091.Channel the publisher needs.
type channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp091.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
	Close() error
}

// Publisher sends balance-changed messages to a durable topic exchange.
type Publisher struct {
	conn         *amqp091.Connection
	mu           sync.Mutex
	channel      channel
	exchangeName string
	routingKey   string
	logger       *log.Logger
}

func NewPublisher(url, exchangeName, routingKey string, logger *log.Logger) (*Publisher, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	publisher, err := newPublisher(ch, exchangeName, routingKey, logger)
	if err != nil {
		conn.Close()
		return nil, err
	}
	publisher.conn = conn
	return publisher, nil
}

func newPublisher(ch channel, exchangeName, routingKey string, logger *log.Logger) (*Publisher, error) {
	p := &Publisher{
		channel:      ch,
		exchangeName: exchangeName,
		routingKey:   routingKey,
		logger:       logger.WithComponent(log.ComponentEvents),
	}

	err := ch.ExchangeDeclare(
		exchangeName, // name
		"topic",      // type
		true,         // durable
		false,        // auto-deleted
		false,        // internal
		false,        // no-wait
		nil,          // arguments
	)
	if err != nil {
		ch.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}
	return p, nil
}

func (p *Publisher) PublishBalanceChanged(ctx context.Context, change domain.BalanceChange) error {
	msg := NewBalanceChangedMessage(change)
	body, err := msg.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	// amqp091 channels are not safe for concurrent publishing.
	p.mu.Lock()
	err = p.channel.PublishWithContext(
		ctx,
		p.exchangeName,
		p.routingKey,
		false, // mandatory
		false, // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Timestamp:    msg.OccurredAt,
			MessageId:    msg.TransactionID + ":" + strconv.Itoa(msg.AccountID),
			Type:         "balance.changed",
			Body:         body,
		},
	)
	p.mu.Unlock()
	if err != nil {
		return fmt.Errorf("publish message: %w", err)
	}

	p.logger.DebugContext(ctx, "published balance change",
		log.FieldAccountID, msg.AccountID,
		log.FieldTransactionID, msg.TransactionID,
		"exchange", p.exchangeName,
		"routing_key", p.routingKey,
	)
	return nil
}

func (p *Publisher) Close() error {
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
