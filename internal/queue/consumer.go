package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/iliyamo/matchday-seat-client/internal/repository"
)

// Sink stores one client_attempt_log entry.
type Sink interface {
	Insert(ctx context.Context, e repository.AttemptLogEntry) error
}

// StartAttemptConsumer connects to RabbitMQ, declares the attempt queue
// (durable) and writes every event to sink.  It reconnects with backoff
// until ctx is cancelled, which is the only way it returns.
func StartAttemptConsumer(ctx context.Context, url, queueName string, sink Sink) error {
	backoff := time.Second
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		conn, err := amqp.Dial(url)
		if err != nil {
			log.Printf("attempt-consumer: failed to dial broker: %v; retrying in %s", err, backoff)
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = consumeLoop(ctx, conn, queueName, sink)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		log.Printf("attempt-consumer: consume loop ended: %v; reconnecting", err)
		if !sleep(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func consumeLoop(ctx context.Context, conn *amqp.Connection, queueName string, sink Sink) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		log.Printf("attempt-consumer: set QoS failed: %v", err)
	}
	if _, err := ch.QueueDeclare(queueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	msgs, err := ch.Consume(queueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			if err := HandleMessage(ctx, sink, d.Body); err != nil {
				log.Printf("attempt-consumer: handle message failed: %v", err)
				_ = d.Nack(false, false) // reject, do not requeue to avoid tight loops
				continue
			}
			_ = d.Ack(false)
		}
	}
}

// HandleMessage decodes one event and stores it.
func HandleMessage(ctx context.Context, sink Sink, body []byte) error {
	var ev ReserveAttemptEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if ev.EventID == "" || ev.MatchID == 0 || ev.SeatID == 0 {
		return fmt.Errorf("event %q: event_id, match_id and seat_id are required", ev.EventID)
	}
	at := time.Now().UTC()
	if ev.AttemptedAt != "" {
		t, err := time.Parse(time.RFC3339, ev.AttemptedAt)
		if err != nil {
			return fmt.Errorf("event %s: attempted_at: %w", ev.EventID, err)
		}
		at = t
	}
	entry := repository.AttemptLogEntry{
		EventID:       ev.EventID,
		SessionID:     ev.SessionID,
		UserID:        ev.UserID,
		MatchID:       ev.MatchID,
		SeatID:        ev.SeatID,
		Success:       ev.Success,
		FailReason:    ev.FailReason,
		ReservationID: ev.ReservationID,
		IP:            ev.IP,
		UserAgent:     ev.UserAgent,
		AttemptedAt:   at,
	}
	if err := sink.Insert(ctx, entry); err != nil {
		return fmt.Errorf("insert client_attempt_log: %w", err)
	}
	return nil
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
