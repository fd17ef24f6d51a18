package audit

import (
	"context"
	"encoding/json"

	"github.com/Domenick1991/flightdata/internal/kafka"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Recorder writes flight change events to the audit log.
type Recorder struct {
	logger *zap.Logger
}

func NewRecorder(logger *zap.Logger) *Recorder {
	return &Recorder{logger: logger.Named("audit")}
}

func (r *Recorder) Record(ctx context.Context, event kafka.FlightEvent) error {
	fields := []zap.Field{
		zap.String("event_id", event.ID),
		zap.String("type", event.Type),
		zap.Time("occurred_at", event.OccurredAt),
	}
	if event.FlightID != 0 {
		fields = append(fields, zap.Int64("flight_id", event.FlightID))
	}
	if event.Origin != "" {
		fields = append(fields, zap.String("origin", event.Origin))
	}
	if event.Destination != "" {
		fields = append(fields, zap.String("destination", event.Destination))
	}
	if event.ScheduledAt != nil {
		fields = append(fields, zap.Time("scheduled_at", *event.ScheduledAt))
	}
	r.logger.Info("flight change", fields...)
	return nil
}

// HandleMessage decodes a raw kafka message and records it. Undecodable
// messages are logged and skipped so one bad payload does not stall the
// consumer group.
func (r *Recorder) HandleMessage(ctx context.Context, msg kafkago.Message) error {
	var event kafka.FlightEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		r.logger.Warn("decode flight event",
			zap.Error(err),
			zap.String("topic", msg.Topic),
			zap.Int("partition", msg.Partition),
			zap.Int64("offset", msg.Offset),
		)
		return nil
	}
	return r.Record(ctx, event)
}
