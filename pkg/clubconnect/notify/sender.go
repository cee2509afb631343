package notify

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"log"

	"github.com/segmentio/kafka-go"
	"github.com/zahidul-islam-khan/club-connect/pkg/clubconnect/models"
	"gopkg.in/gomail.v2"
)

// Sender delivers one notification to its recipient. The recipient's email
// is resolved by the relayer before the sender is invoked.
type Sender func(ctx context.Context, n *models.Notification, email string) error

// LogSender is the default sender used when no SMTP or Kafka configuration
// is present (development and tests). It only logs.
func LogSender(ctx context.Context, n *models.Notification, email string) error {
	log.Printf("NOTIFY type=%s user=%d email=%s title=%q", n.Type, n.UserID, email, n.Title)
	return nil
}

// SMTPConfig holds mail server settings
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// NewMailSender returns a Sender that delivers notifications as email
func NewMailSender(cfg SMTPConfig) Sender {
	return func(ctx context.Context, n *models.Notification, email string) error {
		m := gomail.NewMessage()
		m.SetHeader("From", cfg.From)
		m.SetHeader("To", email)
		m.SetHeader("Subject", n.Title)
		m.SetBody("text/html", fmt.Sprintf("<p>%s</p>", n.Message))

		d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
		d.TLSConfig = &tls.Config{InsecureSkipVerify: false}
		return d.DialAndSend(m)
	}
}

// KafkaConfig holds broker settings for the event stream
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// KafkaProducer wraps a kafka writer
type KafkaProducer struct {
	writer *kafka.Writer
}

// NewKafkaProducer creates a producer for notification events
func NewKafkaProducer(cfg KafkaConfig) *KafkaProducer {
	w := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
	}
	return &KafkaProducer{writer: w}
}

// Close closes the underlying writer
func (p *KafkaProducer) Close() error {
	if p == nil || p.writer == nil {
		return nil
	}
	return p.writer.Close()
}

// notificationEvent is the wire format published to Kafka
type notificationEvent struct {
	ID      uint   `json:"id"`
	UserID  uint   `json:"user_id"`
	Email   string `json:"email"`
	Type    string `json:"type"`
	Title   string `json:"title"`
	Message string `json:"message"`
}

// NewKafkaSender returns a Sender that publishes notifications as JSON events
func NewKafkaSender(p *KafkaProducer) Sender {
	return func(ctx context.Context, n *models.Notification, email string) error {
		payload, err := json.Marshal(notificationEvent{
			ID:      n.ID,
			UserID:  n.UserID,
			Email:   email,
			Type:    n.Type,
			Title:   n.Title,
			Message: n.Message,
		})
		if err != nil {
			return err
		}
		return p.writer.WriteMessages(ctx, kafka.Message{
			Key:   []byte(fmt.Sprintf("%d", n.UserID)),
			Value: payload,
		})
	}
}

// MultiSender fans a notification out to every sender, returning the first error
func MultiSender(senders ...Sender) Sender {
	return func(ctx context.Context, n *models.Notification, email string) error {
		var firstErr error
		for _, s := range senders {
			if err := s(ctx, n, email); err != nil && firstErr == nil {
				firstErr = err
			}
		}
		return firstErr
	}
}
