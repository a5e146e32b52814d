package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

const (
	// dialTimeout bounds connecting and the AMQP handshake when the caller's
	// context carries no deadline.
	dialTimeout = 5 * time.Second
	// redialDelay is how long a failed connect is remembered before the
	// next publish tries the broker again.
	redialDelay = 5 * time.Second
)

// ErrBrokerUnavailable is returned while a recent connect failure is being
// remembered; no dial is attempted.
var ErrBrokerUnavailable = errors.New("rabbitmq: broker unavailable")

// AMQPPublisher publishes persistent JSON messages to a durable queue on the
// default exchange.  The connection is opened on first use and reopened
// after the broker drops it.
type AMQPPublisher struct {
	url   string
	queue string
	now   func() time.Time // clock for the redial delay

	mu      sync.Mutex
	conn    *amqp.Connection
	ch      *amqp.Channel
	retryAt time.Time // no dial before this instant after a failure
}

// NewAMQPPublisher returns a publisher for queue on the broker at url.
// Nothing is dialed until the first Publish.
func NewAMQPPublisher(url, queue string) *AMQPPublisher {
	return &AMQPPublisher{url: url, queue: queue, now: time.Now}
}

// Publish sends ev, connecting first when needed.  Connecting never outlives
// ctx's deadline, so a broker that accepts TCP but never answers costs the
// caller at most that long.
func (p *AMQPPublisher) Publish(ctx context.Context, ev ListingEvent) error {
	msg, err := encode(ev)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err // gave up while waiting for the lock
	}
	if err := p.connect(ctx); err != nil {
		return err
	}
	if err := p.ch.PublishWithContext(ctx,
		"",      // default exchange
		p.queue, // routing key = queue name
		false,   // mandatory
		false,   // immediate
		msg,
	); err != nil {
		p.reset()
		return fmt.Errorf("publish %s: %w", ev.Type, err)
	}
	return nil
}

// connect opens the connection and channel and declares the queue.  Callers
// hold p.mu.
func (p *AMQPPublisher) connect(ctx context.Context) error {
	if p.ch != nil && !p.ch.IsClosed() && p.conn != nil && !p.conn.IsClosed() {
		return nil
	}
	p.reset()

	if p.now().Before(p.retryAt) {
		return ErrBrokerUnavailable
	}
	timeout := dialTimeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
		if timeout <= 0 {
			return ctx.Err()
		}
	}

	// DefaultDial sets a deadline covering the TCP connect and the handshake
	conn, err := amqp.DialConfig(p.url, amqp.Config{
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
		Dial:      amqp.DefaultDial(timeout),
	})
	if err != nil {
		p.retryAt = p.now().Add(redialDelay)
		return fmt.Errorf("rabbitmq dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("rabbitmq channel: %w", err)
	}
	// durable so messages survive broker restarts
	if _, err := ch.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return fmt.Errorf("rabbitmq queue declare: %w", err)
	}
	p.conn, p.ch = conn, ch
	logrus.WithField("queue", p.queue).Info("rabbitmq: publisher connected")
	return nil
}

// reset drops the current connection and channel, if any.
func (p *AMQPPublisher) reset() {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
	p.ch, p.conn = nil, nil
}

// Close releases the connection.  A later Publish reconnects.
func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reset()
	return nil
}

// encode wraps ev as a persistent JSON message.
func encode(ev ListingEvent) (amqp.Publishing, error) {
	body, err := json.Marshal(ev)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("marshal event: %w", err)
	}
	return amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    ev.ID,
		Type:         string(ev.Type),
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}, nil
}
