package wpool

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/compilepool/poold/sloghelper"
)

// EventAuditPublisher mirrors processed events for offline analytics. It is
// never load-bearing: a publish failure is logged and dropped, never
// surfaced to the event loop or a caller.
type EventAuditPublisher interface {
	Publish(ctx context.Context, eventName string, addr WorkerAddr)
}

type noopAuditPublisher struct{}

func (noopAuditPublisher) Publish(context.Context, string, WorkerAddr) {}

type auditRecord struct {
	EventName string    `json:"event_name"`
	Host      string    `json:"host"`
	Timestamp time.Time `json:"timestamp"`
}

// kafkaAuditPublisher is grounded on kafka_request_producer.go's
// kafka.Writer + uuid message-key shape, with protobuf framing (never
// retrieved into this pack, see DESIGN.md) dropped in favor of JSON since
// an audit record has no wire contract with any worker to stay compatible
// with.
type kafkaAuditPublisher struct {
	writer *kafka.Writer
}

func NewKafkaAuditPublisher(writer *kafka.Writer) EventAuditPublisher {
	return &kafkaAuditPublisher{writer: writer}
}

func (p *kafkaAuditPublisher) Publish(ctx context.Context, eventName string, addr WorkerAddr) {
	logger := sloghelper.FromContext(ctx, sloghelper.AuditLoggerKey)

	messageID, err := uuid.NewRandom()
	if err != nil {
		logger.WarnContext(ctx, "uuid.NewRandom", slog.Any("err", err))
		return
	}

	record := auditRecord{EventName: eventName, Host: addr.Host, Timestamp: time.Now()}
	body, err := json.Marshal(record)
	if err != nil {
		logger.WarnContext(ctx, "json.Marshal", slog.Any("err", err))
		return
	}

	msg := kafka.Message{Key: []byte(messageID.String()), Value: body}
	go func() {
		if err := p.writer.WriteMessages(ctx, msg); err != nil {
			logger.WarnContext(ctx, "writer.WriteMessages", slog.Any("err", err))
		}
	}()
}
