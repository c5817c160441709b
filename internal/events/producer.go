package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

// Publisher publishes event envelopes.
type Publisher interface {
	Publish(env Envelope) error
	Close() error
}

// Producer is a Kafka-backed Publisher. Writes are buffered through an
// inbox channel and flushed by a single goroutine so a slow broker never
// blocks request handling.
type Producer struct {
	w       *kafka.Writer
	inbox   chan kafka.Message
	closeCh chan struct{}
	logger  zerolog.Logger
}

// NewProducer creates a Kafka producer for the given topic.
func NewProducer(brokers []string, topic string, buf int, logger zerolog.Logger) *Producer {
	return &Producer{
		w: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
		},
		inbox:   make(chan kafka.Message, buf),
		closeCh: make(chan struct{}),
		logger:  logger.With().Str("component", "event-producer").Logger(),
	}
}

// Start runs the flush loop until ctx is cancelled, then drains the
// inbox and closes the writer.
func (p *Producer) Start(ctx context.Context) {
	go func() {
		defer close(p.closeCh)
		for {
			select {
			case <-ctx.Done():
				p.drain()
				return
			case m, ok := <-p.inbox:
				if !ok {
					p.closeWriter()
					return
				}
				p.write(m)
			}
		}
	}()
}

func (p *Producer) drain() {
	for {
		select {
		case m, ok := <-p.inbox:
			if !ok {
				p.closeWriter()
				return
			}
			p.write(m)
		default:
			p.closeWriter()
			return
		}
	}
}

func (p *Producer) write(m kafka.Message) {
	writeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := p.w.WriteMessages(writeCtx, m); err != nil {
		p.logger.Error().Err(err).Str("key", string(m.Key)).Msg("failed to write kafka message")
	}
}

func (p *Producer) closeWriter() {
	if err := p.w.Close(); err != nil {
		p.logger.Error().Err(err).Msg("failed to close kafka writer")
	}
}

// Publish enqueues an envelope. It never blocks: when the inbox is full
// the envelope is dropped and logged, keeping the checkout path fast.
func (p *Producer) Publish(env Envelope) error {
	value, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("failed to marshal event envelope: %w", err)
	}

	msg := kafka.Message{
		Key:   PartitionKey(env.CorrelationID),
		Value: value,
		Time:  time.Now(),
	}

	select {
	case p.inbox <- msg:
		return nil
	default:
		p.logger.Warn().
			Str("event_type", env.EventType).
			Str("correlation_id", env.CorrelationID).
			Msg("event dropped: producer inbox full")
		return nil
	}
}

// Close stops accepting messages and lets the flush loop exit after
// draining what was already queued.
func (p *Producer) Close() error {
	close(p.inbox)
	return nil
}

// WaitClosed blocks until the flush loop has exited.
func (p *Producer) WaitClosed() { <-p.closeCh }
