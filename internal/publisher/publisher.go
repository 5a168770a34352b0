package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"rental-service/internal/config"
	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

const (
	reconnectDelay       = 5 * time.Second
	maxReconnectAttempts = 10
)

// Event is the envelope for every message this service emits. EventID lets
// consumers deduplicate redeliveries.
type Event struct {
	EventID    string      `json:"event_id"`
	OccurredAt time.Time   `json:"occurred_at"`
	Payload    interface{} `json:"payload"`
}

// Publisher emits domain events to a RabbitMQ topic exchange. Publishing is
// best effort from the caller's point of view: a broken connection triggers
// background reconnects, and business operations never fail on publish
// errors.
type Publisher struct {
	cfg config.RabbitConfig
	log *logrus.Logger

	conn    *amqp.Connection
	channel *amqp.Channel
	mu      sync.RWMutex

	ctx    context.Context
	cancel context.CancelFunc
}

func New(cfg config.RabbitConfig, log *logrus.Logger) (*Publisher, error) {
	ctx, cancel := context.WithCancel(context.Background())

	p := &Publisher{
		cfg:    cfg,
		log:    log,
		ctx:    ctx,
		cancel: cancel,
	}

	if err := p.connect(); err != nil {
		cancel()
		return nil, fmt.Errorf("failed to connect: %w", err)
	}

	return p, nil
}

func (p *Publisher) connect() error {
	conn, err := amqp.Dial(p.cfg.URL())
	if err != nil {
		return fmt.Errorf("failed to dial RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to open channel: %w", err)
	}

	if err := ch.ExchangeDeclare(
		p.cfg.Exchange,
		"topic",
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,   // arguments
	); err != nil {
		ch.Close()
		conn.Close()
		return fmt.Errorf("failed to declare exchange: %w", err)
	}

	p.mu.Lock()
	p.conn = conn
	p.channel = ch
	p.mu.Unlock()

	p.log.WithFields(logrus.Fields{
		"host":     p.cfg.Host,
		"exchange": p.cfg.Exchange,
	}).Info("connected to RabbitMQ")

	go p.monitorConnection()

	return nil
}

func (p *Publisher) monitorConnection() {
	p.mu.RLock()
	conn := p.conn
	p.mu.RUnlock()

	if conn == nil {
		return
	}

	notifyClose := conn.NotifyClose(make(chan *amqp.Error))

	select {
	case err := <-notifyClose:
		if err != nil {
			p.log.WithError(err).Error("RabbitMQ connection closed unexpectedly")
			p.reconnect()
		}
	case <-p.ctx.Done():
		return
	}
}

func (p *Publisher) reconnect() {
	p.mu.Lock()
	if p.channel != nil {
		p.channel.Close()
		p.channel = nil
	}
	if p.conn != nil {
		p.conn.Close()
		p.conn = nil
	}
	p.mu.Unlock()

	for attempt := 1; attempt <= maxReconnectAttempts; attempt++ {
		p.log.WithField("attempt", attempt).Info("attempting to reconnect to RabbitMQ")

		if err := p.connect(); err == nil {
			p.log.Info("successfully reconnected to RabbitMQ")
			return
		}

		delay := reconnectDelay * time.Duration(attempt)
		p.log.WithFields(logrus.Fields{
			"attempt": attempt,
			"delay":   delay,
		}).Warn("reconnection failed, retrying")

		select {
		case <-time.After(delay):
		case <-p.ctx.Done():
			return
		}
	}

	p.log.Error("max reconnection attempts reached, giving up")
}

// Publish sends payload wrapped in an Event envelope under the given routing
// key, e.g. rental.approved or invoice.created.
func (p *Publisher) Publish(ctx context.Context, key string, payload interface{}) error {
	p.mu.RLock()
	channel := p.channel
	p.mu.RUnlock()

	if channel == nil {
		return fmt.Errorf("channel is not initialized")
	}

	body, err := json.Marshal(Event{
		EventID:    uuid.NewString(),
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	return channel.PublishWithContext(ctx, p.cfg.Exchange, key, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	})
}

func (p *Publisher) Close() {
	p.cancel()

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.channel != nil {
		p.channel.Close()
		p.channel = nil
	}
	if p.conn != nil {
		p.conn.Close()
		p.conn = nil
	}
}
