package events

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/admitlink/admitlink/internal/order"
)

// Envelope is the wire format for order lifecycle events. Messages are
// keyed by order id so all events for one order land on the same partition.
type Envelope struct {
	EventID    string          `json:"event_id"`
	EventType  string          `json:"event_type"`
	OccurredAt time.Time       `json:"occurred_at"`
	Payload    json.RawMessage `json:"payload"`
}

// Producer publishes order events to Kafka. It satisfies order.EventSink.
type Producer struct {
	w     *kafka.Writer
	inbox chan kafka.Message
	done  chan struct{}
}

func NewProducer(brokers []string, topic string, buf int) *Producer {
	return &Producer{
		w: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
		},
		inbox: make(chan kafka.Message, buf),
		done:  make(chan struct{}),
	}
}

// Start runs the writer loop until ctx is cancelled, then flushes the
// remaining buffered messages.
func (p *Producer) Start(ctx context.Context) {
	go func() {
		defer close(p.done)
		for {
			select {
			case <-ctx.Done():
				close(p.inbox)
				for m := range p.inbox {
					if err := p.w.WriteMessages(context.Background(), m); err != nil {
						log.Printf("[events] flush write failed: %v", err)
					}
				}
				_ = p.w.Close()
				return
			case m, ok := <-p.inbox:
				if !ok {
					_ = p.w.Close()
					return
				}
				if err := p.w.WriteMessages(context.Background(), m); err != nil {
					log.Printf("[events] write failed: %v", err)
				}
			}
		}
	}()
}

// OrderEvent implements order.EventSink. Publishing is non-blocking; if
// the buffer is full the event is dropped with a log line rather than
// stalling the order flow.
func (p *Producer) OrderEvent(eventType string, o *order.Order) {
	payload, err := json.Marshal(o)
	if err != nil {
		log.Printf("[events] marshal order %s: %v", o.ID, err)
		return
	}
	env := Envelope{
		EventID:    uuid.New().String(),
		EventType:  eventType,
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	}
	b, err := json.Marshal(env)
	if err != nil {
		log.Printf("[events] marshal envelope: %v", err)
		return
	}
	msg := kafka.Message{Key: []byte(o.ID), Value: b, Time: time.Now()}
	select {
	case p.inbox <- msg:
	default:
		log.Printf("[events] buffer full, dropping %s for order %s", eventType, o.ID)
	}
}

// WaitClosed blocks until the writer loop has flushed and exited.
func (p *Producer) WaitClosed() { <-p.done }
