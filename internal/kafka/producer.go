package kafka

import (
	"context"
	"encoding/json"
	"time"

	"ms-booking/internal/config"
	"ms-booking/internal/models"

	"github.com/segmentio/kafka-go"
)

// Producer streams booking lifecycle events. Publishing is best-effort:
// callers log failures and carry on, a booking never fails because the
// broker is down.
type Producer struct {
	writer *kafka.Writer
	topics config.TopicConfig
}

func NewProducer(brokers []string, topics config.TopicConfig) *Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Balancer:     &kafka.LeastBytes{},
		WriteTimeout: 10 * time.Second,
	}
	return &Producer{writer: writer, topics: topics}
}

type bookingEvent struct {
	Type      string          `json:"type"`
	Booking   models.Booking  `json:"booking"`
	Payment   *models.Payment `json:"payment,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

func (p *Producer) publish(topic, key string, payload interface{}) error {
	value, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(context.Background(), kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: value,
	})
}

func (p *Producer) PublishBookingCreated(booking models.Booking, payment models.Payment) error {
	return p.publish(p.topics.BookingCreated, booking.BookingID, bookingEvent{
		Type:      "booking.created",
		Booking:   booking,
		Payment:   &payment,
		Timestamp: time.Now().UTC(),
	})
}

func (p *Producer) PublishBookingCancelled(booking models.Booking) error {
	return p.publish(p.topics.BookingCancelled, booking.BookingID, bookingEvent{
		Type:      "booking.cancelled",
		Booking:   booking,
		Timestamp: time.Now().UTC(),
	})
}

func (p *Producer) PublishPaymentRecorded(payment models.Payment) error {
	return p.publish(p.topics.PaymentRecorded, payment.PaymentID, payment)
}

func (p *Producer) Close() error {
	return p.writer.Close()
}
