package events

import (
	"context"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"supportflow/internal/types"
	"supportflow/internal/util/jsonutil"
)

// KafkaPublisher writes OutcomeEvents keyed by ticket id so that every
// event for one ticket lands on the same partition.
type KafkaPublisher struct {
	writer *kafka.Writer
	now    func() time.Time
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
			BatchTimeout: 50 * time.Millisecond,
		},
		now: time.Now,
	}
}

func (p *KafkaPublisher) Publish(ctx context.Context, outcome types.WorkflowOutcome) error {
	data, err := jsonutil.MarshalNoEscape(NewOutcomeEvent(outcome, p.now()))
	if err != nil {
		return err
	}
	msg := kafka.Message{
		Key:   []byte(outcome.TicketID),
		Value: data,
		Headers: []kafka.Header{
			{Key: "status", Value: []byte(outcome.FinalStatus)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("kafka publish %s: %w", outcome.TicketID, err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error { return p.writer.Close() }
