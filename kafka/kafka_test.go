package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"

	"github.com/tair/stock-ledger/internal/stock/domain"
)

func TestPublishStockChanged_SendsEvent(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		var event StockChangedEvent
		if err := json.Unmarshal(val, &event); err != nil {
			return err
		}
		if event.EventType != EventTypeStockChanged {
			return fmt.Errorf("event_type = %q", event.EventType)
		}
		if event.Origin != "instance-a" {
			return fmt.Errorf("origin = %q", event.Origin)
		}
		if event.LotID != 7 || event.Entity != "lot" {
			return fmt.Errorf("unexpected payload %+v", event)
		}
		if event.EventID == "" {
			return errors.New("event_id not set")
		}
		return nil
	})

	p := NewPublisherWithProducer(producer, "instance-a")
	err := p.PublishStockChanged(context.Background(), StockChangedEvent{
		Entity:   "lot",
		Action:   "updated",
		EntityID: 7,
		LotID:    7,
	})
	if err != nil {
		t.Fatalf("PublishStockChanged: %v", err)
	}
	if err := p.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestPublishStockChanged_ProducerFailure(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	p := NewPublisherWithProducer(producer, "instance-a")
	err := p.PublishStockChanged(context.Background(), StockChangedEvent{LotID: 1})
	if !errors.Is(err, sarama.ErrOutOfBrokers) {
		t.Fatalf("expected ErrOutOfBrokers, got %v", err)
	}
	_ = p.Close()
}

func TestOnChange_MapsChangeEvent(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		var event StockChangedEvent
		if err := json.Unmarshal(val, &event); err != nil {
			return err
		}
		if event.Entity != domain.EntitySale || event.Action != domain.ActionCreated {
			return fmt.Errorf("unexpected kind %s.%s", event.Entity, event.Action)
		}
		if event.EntityID != 12 || event.LotID != 3 || !event.ChangedAt.Equal(at) {
			return fmt.Errorf("unexpected payload %+v", event)
		}
		return nil
	})

	p := NewPublisherWithProducer(producer, "instance-a")
	err := p.OnChange(context.Background(), domain.ChangeEvent{
		Entity:   domain.EntitySale,
		Action:   domain.ActionCreated,
		EntityID: 12,
		LotID:    3,
		At:       at,
	})
	if err != nil {
		t.Fatalf("OnChange: %v", err)
	}
	_ = p.Close()
}

func stockMessage(t *testing.T, event StockChangedEvent) *sarama.ConsumerMessage {
	t.Helper()
	body, err := json.Marshal(event)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return &sarama.ConsumerMessage{
		Topic: TopicStockChanged,
		Value: body,
		Headers: []*sarama.RecordHeader{
			{Key: []byte("event_type"), Value: []byte(EventTypeStockChanged)},
		},
	}
}

func TestHandleMessage_DispatchesForeignEvents(t *testing.T) {
	c := newConsumer(nil, "group", "instance-a", []string{TopicStockChanged})

	var got []StockChangedEvent
	c.RegisterHandler(EventTypeStockChanged, func(_ context.Context, e StockChangedEvent) error {
		got = append(got, e)
		return nil
	})

	h := &consumerGroupHandler{consumer: c}
	ctx := context.Background()
	h.handleMessage(ctx, stockMessage(t, StockChangedEvent{Origin: "instance-b", LotID: 3}))
	h.handleMessage(ctx, stockMessage(t, StockChangedEvent{Origin: "instance-a", LotID: 4}))

	if len(got) != 1 || got[0].LotID != 3 {
		t.Fatalf("expected only the foreign event, got %+v", got)
	}
}

func TestHandleMessage_IgnoresMissingEventType(t *testing.T) {
	c := newConsumer(nil, "group", "instance-a", nil)
	called := false
	c.RegisterHandler(EventTypeStockChanged, func(context.Context, StockChangedEvent) error {
		called = true
		return nil
	})

	h := &consumerGroupHandler{consumer: c}
	h.handleMessage(context.Background(), &sarama.ConsumerMessage{Value: []byte(`{}`)})

	if called {
		t.Fatal("handler must not run without an event_type header")
	}
}
