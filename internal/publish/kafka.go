package publish

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"healthreport/internal/config"
	"healthreport/internal/model"
)

// Message is the JSON value published per run. The rendered text travels
// alongside the figures.
type Message struct {
	model.Report
	Text string `json:"report"`
}

type KafkaPublisher struct {
	writer *kafka.Writer
}

func NewKafka(cfg config.KafkaConfig) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(cfg.Brokers...),
			Topic:        cfg.Topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			BatchTimeout: 10 * time.Millisecond,
		},
	}
}

func (p *KafkaPublisher) Publish(ctx context.Context, r model.Report) error {
	msg, err := EncodeMessage(r)
	if err != nil {
		return err
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("kafka write: %w", err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

func EncodeMessage(r model.Report) (kafka.Message, error) {
	value, err := json.Marshal(Message{Report: r, Text: r.Text})
	if err != nil {
		return kafka.Message{}, fmt.Errorf("encode report: %w", err)
	}
	return kafka.Message{
		Key:   []byte(r.RunID),
		Value: value,
		Time:  r.GeneratedAt,
		Headers: []kafka.Header{
			{Key: "content-type", Value: []byte("application/json")},
		},
	}, nil
}
