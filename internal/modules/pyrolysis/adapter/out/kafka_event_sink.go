package out

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"biochar/internal/modules/pyrolysis/domain"
	pyrolysisout "biochar/internal/modules/pyrolysis/port/out"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaEventSink publishes lifecycle events keyed by coordinator id, so one
// coordinator's events stay ordered within a partition.
type KafkaEventSink struct {
	writer messageWriter
}

func NewKafkaEventSink(brokers []string, topic string) *KafkaEventSink {
	return &KafkaEventSink{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			RequiredAcks: kafka.RequireAll,
			Balancer:     &kafka.Hash{},
			WriteTimeout: 10 * time.Second,
		},
	}
}

func newKafkaEventSinkWithWriter(writer messageWriter) *KafkaEventSink {
	return &KafkaEventSink{writer: writer}
}

var _ pyrolysisout.EventSink = (*KafkaEventSink)(nil)

type eventMessage struct {
	Kind           string     `json:"kind"`
	At             time.Time  `json:"at"`
	BatchID        string     `json:"batch_id"`
	CoordinatorID  string     `json:"coordinator_id"`
	KilnID         string     `json:"kiln_id"`
	BiomassTypeID  string     `json:"biomass_type_id"`
	Status         string     `json:"status"`
	StartTime      time.Time  `json:"start_time"`
	InputQuantity  float64    `json:"input_quantity"`
	EndTime        *time.Time `json:"end_time,omitempty"`
	OutputQuantity *float64   `json:"output_quantity,omitempty"`
	PhotoRef       *string    `json:"photo_ref,omitempty"`
}

func (s *KafkaEventSink) Publish(ctx context.Context, event domain.Event) error {
	r := domain.Encode(event.Batch)
	data, err := json.Marshal(eventMessage{
		Kind:           string(event.Kind),
		At:             event.At,
		BatchID:        r.ID,
		CoordinatorID:  r.CoordinatorID,
		KilnID:         r.KilnID,
		BiomassTypeID:  r.BiomassTypeID,
		Status:         string(r.Status),
		StartTime:      r.StartTime,
		InputQuantity:  r.InputQuantity,
		EndTime:        r.EndTime,
		OutputQuantity: r.OutputQuantity,
		PhotoRef:       r.PhotoRef,
	})
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	if err := s.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(r.CoordinatorID),
		Value: data,
		Time:  event.At,
		Headers: []kafka.Header{
			{Key: "kind", Value: []byte(event.Kind)},
		},
	}); err != nil {
		return fmt.Errorf("kafka publish %s: %w", event.Kind, err)
	}
	return nil
}

func (s *KafkaEventSink) Close() error {
	return s.writer.Close()
}
