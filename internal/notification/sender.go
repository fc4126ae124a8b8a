package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

// Sender delivers a rendered message.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// LogSender writes messages to the log instead of delivering them.
type LogSender struct {
	log zerolog.Logger
}

func NewLogSender(log zerolog.Logger) *LogSender {
	return &LogSender{log: log}
}

func (s *LogSender) Send(_ context.Context, msg Message) error {
	s.log.Info().
		Str("kind", string(msg.Kind)).
		Str("to", msg.To).
		Strs("cc", msg.Cc).
		Str("subject", msg.Subject).
		Int64("ad_id", msg.AdID).
		Msg("notification")
	return nil
}

type kafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaSender publishes messages to a topic for a mail worker to pick up.
type KafkaSender struct {
	writer kafkaWriter
	topic  string
	log    zerolog.Logger
}

func NewKafkaSender(brokers []string, topic string, log zerolog.Logger) *KafkaSender {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Balancer:               &kafka.LeastBytes{},
		BatchTimeout:           10 * time.Millisecond,
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}

	log.Info().
		Strs("brokers", brokers).
		Str("topic", topic).
		Msg("Kafka notification producer initialized")

	return &KafkaSender{writer: writer, topic: topic, log: log}
}

func (s *KafkaSender) Send(ctx context.Context, msg Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	err = s.writer.WriteMessages(ctx, kafka.Message{
		Topic: s.topic,
		Key:   []byte("ad-" + strconv.FormatInt(msg.AdID, 10)),
		Value: data,
		Headers: []kafka.Header{
			{Key: "kind", Value: []byte(msg.Kind)},
		},
	})
	if err != nil {
		s.log.Error().Err(err).
			Str("kind", string(msg.Kind)).
			Int64("ad_id", msg.AdID).
			Msg("Failed to publish notification")
		return fmt.Errorf("failed to send message: %w", err)
	}

	s.log.Debug().
		Str("kind", string(msg.Kind)).
		Int64("ad_id", msg.AdID).
		Msg("Notification published")
	return nil
}

func (s *KafkaSender) Close() error {
	if s.writer != nil {
		return s.writer.Close()
	}
	return nil
}
