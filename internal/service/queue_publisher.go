// Package queue_publisher publishes reserve-attempt events to RabbitMQ.
// Errors are logged and returned so callers can ignore failures without
// interrupting the booking flow.
package queue_publisher

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/iliyamo/matchday-seat-client/internal/booking"
	q "github.com/iliyamo/matchday-seat-client/internal/queue"
)

// Publish sends one event to queueName on the default exchange.  Messages
// are persistent and the queue is declared durable.
func Publish(ctx context.Context, url, queueName string, event q.ReserveAttemptEvent) error {
	conn, err := amqp.Dial(url)
	if err != nil {
		log.Printf("rabbitmq: dial failed: %v", err)
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.Printf("rabbitmq: channel open failed: %v", err)
		return err
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(queueName, true, false, false, false, nil); err != nil {
		log.Printf("rabbitmq: queue declare failed: %v", err)
		return err
	}

	body, err := json.Marshal(event)
	if err != nil {
		log.Printf("rabbitmq: marshal event failed: %v", err)
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    event.EventID,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", queueName, false, false, pub); err != nil {
		log.Printf("rabbitmq: publish failed: %v", err)
		return err
	}
	return nil
}

// PublishFunc matches Publish; tests swap it out.
type PublishFunc func(ctx context.Context, url, queueName string, event q.ReserveAttemptEvent) error

// AttemptPublisher turns booking attempts into broker events.  Publishing
// runs in the background with its own timeout so a slow broker never delays
// the booking response.
type AttemptPublisher struct {
	URL     string
	Queue   string
	Timeout time.Duration
	publish PublishFunc
	now     func() time.Time
	done    chan struct{}
}

func NewAttemptPublisher(url, queueName string) *AttemptPublisher {
	return &AttemptPublisher{
		URL:     url,
		Queue:   queueName,
		Timeout: 5 * time.Second,
		publish: Publish,
		now:     time.Now,
	}
}

// RecordAttempt implements booking.AttemptRecorder.
func (p *AttemptPublisher) RecordAttempt(_ context.Context, a booking.Attempt) {
	ev := Event(a, p.now())
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), p.Timeout)
		defer cancel()
		if err := p.publish(ctx, p.URL, p.Queue, ev); err != nil {
			log.Printf("attempt-publisher: event %s for seat %d dropped: %v", ev.EventID, ev.SeatID, err)
		}
		if p.done != nil {
			p.done <- struct{}{}
		}
	}()
}

// Event builds the broker payload of an attempt.
func Event(a booking.Attempt, at time.Time) q.ReserveAttemptEvent {
	return q.ReserveAttemptEvent{
		EventID:       uuid.NewString(),
		SessionID:     a.SessionID,
		UserID:        a.UserID,
		MatchID:       a.MatchID,
		SeatID:        a.SeatID,
		Action:        q.ActionReserveAttempt,
		Success:       a.Success,
		FailReason:    a.Reason,
		ReservationID: a.ReservationID,
		IP:            a.ClientIP,
		UserAgent:     a.UserAgent,
		AttemptedAt:   at.UTC().Format(time.RFC3339),
	}
}

// LogRecorder writes attempts to the process log only.  It is used when no
// broker is configured.
type LogRecorder struct{}

func (LogRecorder) RecordAttempt(_ context.Context, a booking.Attempt) {
	if a.Success {
		log.Printf("reserve_attempt ok: user=%d match=%d seat=%d reservation=%d ip=%s", a.UserID, a.MatchID, a.SeatID, a.ReservationID, a.ClientIP)
		return
	}
	log.Printf("reserve_attempt failed: user=%d match=%d seat=%d reason=%q ip=%s", a.UserID, a.MatchID, a.SeatID, a.Reason, a.ClientIP)
}
