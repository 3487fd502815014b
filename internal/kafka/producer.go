package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/slotbooking/internal/domain"
	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const (
	EventBookingCreated       = "booking_created"
	EventBookingUpdated       = "booking_updated"
	EventBookingCancelled     = "booking_cancelled"
	EventBookingStatusChanged = "booking_status_changed"
)

// BookingEvent is published after a booking change commits. Dates use
// domain.DateLayout and times are HH:MM in the booking time zone.
type BookingEvent struct {
	EventID       string    `json:"event_id"`
	Type          string    `json:"type"`
	BookingID     int64     `json:"booking_id"`
	TimeSlotID    int64     `json:"time_slot_id"`
	GuestID       string    `json:"guest_id"`
	HostID        string    `json:"host_id"`
	BookingDate   string    `json:"booking_date"`
	StartTime     string    `json:"start_time"`
	EndTime       string    `json:"end_time"`
	Topic         string    `json:"topic"`
	Description   string    `json:"description,omitempty"`
	Status        string    `json:"status"`
	GoogleEventID string    `json:"google_event_id,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}

func NewBookingEvent(eventType string, v *domain.BookingView, at time.Time) BookingEvent {
	e := BookingEvent{
		EventID:     uuid.NewString(),
		Type:        eventType,
		BookingID:   v.ID,
		TimeSlotID:  v.TimeSlotID,
		GuestID:     v.GuestID.String(),
		HostID:      v.HostID.String(),
		BookingDate: v.BookingDate.Format(domain.DateLayout),
		StartTime:   v.StartTime.String(),
		EndTime:     v.EndTime.String(),
		Topic:       v.Topic,
		Description: v.Description,
		Status:      string(v.AttendanceStatus),
		OccurredAt:  at.UTC(),
	}
	if v.GoogleEventID != nil {
		e.GoogleEventID = *v.GoogleEventID
	}
	return e
}

// Key keeps every event of one booking on the same partition.
func (e BookingEvent) Key() string {
	return fmt.Sprintf("booking-%d", e.BookingID)
}

func DecodeBookingEvent(data []byte) (BookingEvent, error) {
	var e BookingEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return BookingEvent{}, fmt.Errorf("decode booking event: %w", err)
	}
	if e.BookingID == 0 || e.Type == "" {
		return BookingEvent{}, errors.New("decode booking event: missing booking_id or type")
	}
	return e, nil
}

type Producer struct {
	brokers []string
	writer  *kafka.Writer
	log     *zap.Logger
}

func NewProducer(brokers []string, log *zap.Logger) *Producer {
	if log == nil {
		log = zap.NewNop()
	}
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Balancer:     &kafka.Hash{},
		BatchTimeout: 50 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
		Async:        false,
	}

	return &Producer{
		brokers: brokers,
		writer:  writer,
		log:     log.Named("kafka"),
	}
}

func (p *Producer) Publish(ctx context.Context, topic, key string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	message := kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: data,
		Time:  time.Now(),
	}
	if err := p.writer.WriteMessages(ctx, message); err != nil {
		return fmt.Errorf("failed to write message to Kafka: %w", err)
	}

	p.log.Debug("published", zap.String("topic", topic), zap.String("key", key))
	return nil
}

func (p *Producer) Close() error {
	if p.writer != nil {
		return p.writer.Close()
	}
	return nil
}

// CheckConnection dials the first broker and reads its partitions.
func (p *Producer) CheckConnection(ctx context.Context) error {
	if len(p.brokers) == 0 {
		return errors.New("no kafka brokers configured")
	}
	conn, err := kafka.DialContext(ctx, "tcp", p.brokers[0])
	if err != nil {
		return fmt.Errorf("failed to connect to Kafka: %w", err)
	}
	defer conn.Close()

	partitions, err := conn.ReadPartitions()
	if err != nil {
		return fmt.Errorf("failed to read partitions: %w", err)
	}

	p.log.Info("connected to kafka", zap.Int("partitions", len(partitions)))
	return nil
}
