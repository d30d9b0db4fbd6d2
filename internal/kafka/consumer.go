package kafka

import (
	"context"
	"fmt"
	"time"

	"github.com/jmehdipour/overdue-notifier/internal/config"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Config describes one consumer group subscription.
type Config struct {
	Brokers        []string
	Topic          string
	GroupID        string
	MinBytes       int
	MaxBytes       int
	CommitInterval time.Duration
	MaxWait        time.Duration
}

// ConfigFrom builds a subscription to topic from the shared kafka block.
// The group id is suffixed so each worker kind keeps its own offsets.
func ConfigFrom(kc config.KafkaConfig, topic, groupSuffix string) Config {
	group := kc.GroupID
	if group == "" {
		group = "onotify"
	}
	if groupSuffix != "" {
		group += "-" + groupSuffix
	}
	return Config{
		Brokers:        kc.Brokers,
		Topic:          topic,
		GroupID:        group,
		MinBytes:       kc.MinBytes,
		MaxBytes:       kc.MaxBytes,
		CommitInterval: time.Duration(kc.CommitInterval) * time.Millisecond,
	}
}

func (c Config) withDefaults() Config {
	if c.MinBytes <= 0 {
		c.MinBytes = 1 << 10
	}
	if c.MaxBytes <= 0 {
		c.MaxBytes = 10 << 20
	}
	if c.CommitInterval <= 0 {
		c.CommitInterval = time.Second
	}
	if c.MaxWait <= 0 {
		c.MaxWait = 50 * time.Millisecond
	}
	return c
}

func (c Config) validate() error {
	if len(c.Brokers) == 0 {
		return fmt.Errorf("kafka: no brokers configured")
	}
	if c.Topic == "" || c.GroupID == "" {
		return fmt.Errorf("kafka: topic and group id are required")
	}
	return nil
}

type Message = kafka.Message

// Source is what workers read from; *Consumer satisfies it.
type Source interface {
	Fetch(ctx context.Context) (Message, error)
	Commit(ctx context.Context, m Message) error
	Close() error
}

// Consumer reads a topic as part of a consumer group. Offsets are committed
// explicitly by the caller after a message is handled.
type Consumer struct {
	r *kafka.Reader
}

var _ Source = (*Consumer)(nil)

// NewConsumer opens a group reader. Reader errors are logged at warn on log.
func NewConsumer(c Config, log *zap.Logger) (*Consumer, error) {
	c = c.withDefaults()
	if err := c.validate(); err != nil {
		return nil, err
	}

	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        c.Brokers,
		GroupID:        c.GroupID,
		Topic:          c.Topic,
		MinBytes:       c.MinBytes,
		MaxBytes:       c.MaxBytes,
		CommitInterval: c.CommitInterval,
		MaxWait:        c.MaxWait,
		StartOffset:    kafka.FirstOffset,
		ErrorLogger: kafka.LoggerFunc(func(msg string, args ...interface{}) {
			log.Warn(fmt.Sprintf(msg, args...), zap.String("topic", c.Topic))
		}),
	})

	return &Consumer{r: r}, nil
}

func (c *Consumer) Fetch(ctx context.Context) (Message, error) {
	return c.r.FetchMessage(ctx)
}

func (c *Consumer) Commit(ctx context.Context, m Message) error {
	return c.r.CommitMessages(ctx, m)
}

func (c *Consumer) Close() error { return c.r.Close() }
