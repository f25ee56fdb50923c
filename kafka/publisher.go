package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/tair/stock-ledger/internal/stock/domain"
	"github.com/tair/stock-ledger/pkg/logger"
)

// Publisher wraps Kafka producer
type Publisher struct {
	producer sarama.SyncProducer
	origin   string
	breaker  *CircuitBreaker
}

// NewPublisher creates a new Kafka publisher. origin identifies this
// instance so its own events can be skipped on consume.
func NewPublisher(brokers []string, origin string) (*Publisher, error) {
	config := sarama.NewConfig()
	config.Producer.Return.Successes = true
	config.Producer.Retry.Max = 3
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Compression = sarama.CompressionSnappy
	config.Producer.MaxMessageBytes = 1000000

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}

	logger.Logger.Info().
		Strs("brokers", brokers).
		Str("origin", origin).
		Msg("Kafka publisher initialized")

	return NewPublisherWithProducer(producer, origin), nil
}

// NewPublisherWithProducer wraps an existing producer
func NewPublisherWithProducer(producer sarama.SyncProducer, origin string) *Publisher {
	return &Publisher{
		producer: producer,
		origin:   origin,
		breaker:  NewCircuitBreaker("kafka-publisher", 5, 30*time.Second),
	}
}

// PublishStockChanged publishes a stock change event with tracing
func (p *Publisher) PublishStockChanged(ctx context.Context, event StockChangedEvent) error {
	tracer := otel.Tracer("kafka-publisher")
	ctx, span := tracer.Start(ctx, "kafka.publish.stock_changed",
		trace.WithSpanKind(trace.SpanKindProducer),
		trace.WithAttributes(
			attribute.String("messaging.system", "kafka"),
			attribute.String("messaging.destination", TopicStockChanged),
			attribute.String("messaging.destination_kind", "topic"),
			attribute.String("event.type", EventTypeStockChanged),
			attribute.String("stock.entity", event.Entity),
			attribute.String("stock.action", event.Action),
			attribute.Int64("lot.id", int64(event.LotID)),
		),
	)
	defer span.End()

	if event.EventID == "" {
		event.EventID = uuid.NewString()
	}
	event.EventType = EventTypeStockChanged
	event.Origin = p.origin
	event.Timestamp = time.Now()

	span.SetAttributes(attribute.String("event.id", event.EventID))

	eventBytes, err := json.Marshal(event)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to marshal event")
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	// Inject trace context into Kafka headers
	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, carrier)

	headers := []sarama.RecordHeader{
		{Key: []byte("event_type"), Value: []byte(EventTypeStockChanged)},
		{Key: []byte("event_id"), Value: []byte(event.EventID)},
	}
	for key, value := range carrier {
		headers = append(headers, sarama.RecordHeader{
			Key:   []byte(key),
			Value: []byte(value),
		})
	}

	// keyed by lot so one lot's changes stay ordered within a partition
	msg := &sarama.ProducerMessage{
		Topic:   TopicStockChanged,
		Key:     sarama.StringEncoder(fmt.Sprintf("lot_%d", event.LotID)),
		Value:   sarama.ByteEncoder(eventBytes),
		Headers: headers,
	}

	var (
		partition int32
		offset    int64
	)
	err = p.breaker.Call(func() error {
		var sendErr error
		partition, offset, sendErr = p.producer.SendMessage(msg)
		return sendErr
	})
	if errors.Is(err, ErrCircuitOpen) {
		span.SetStatus(codes.Error, "Circuit open")
		return err
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to send message")
		logger.Error(ctx).
			Err(err).
			Str("topic", TopicStockChanged).
			Uint("lot_id", event.LotID).
			Msg("Failed to publish event")
		return fmt.Errorf("failed to send message to Kafka: %w", err)
	}

	span.SetAttributes(
		attribute.Int("messaging.kafka.partition", int(partition)),
		attribute.Int64("messaging.kafka.offset", offset),
	)
	span.SetStatus(codes.Ok, "Event published successfully")

	logger.Debug(ctx).
		Str("event_id", event.EventID).
		Str("entity", event.Entity).
		Str("action", event.Action).
		Int32("partition", partition).
		Int64("offset", offset).
		Uint("lot_id", event.LotID).
		Msg("Stock changed event published")

	return nil
}

// OnChange forwards a committed change to Kafka; it is a change bus subscriber
func (p *Publisher) OnChange(ctx context.Context, change domain.ChangeEvent) error {
	return p.PublishStockChanged(ctx, FromChange(change))
}

// Close closes the Kafka producer
func (p *Publisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}
