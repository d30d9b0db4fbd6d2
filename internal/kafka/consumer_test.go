package kafka

import (
	"testing"
	"time"

	"github.com/jmehdipour/overdue-notifier/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestConfigFrom(t *testing.T) {
	kc := config.KafkaConfig{
		Brokers:        []string{"k1:9092"},
		GroupID:        "onotify",
		MinBytes:       10,
		CommitInterval: 250,
	}

	c := ConfigFrom(kc, "mail.outbound", "sender")

	assert.Equal(t, "onotify-sender", c.GroupID)
	assert.Equal(t, "mail.outbound", c.Topic)
	assert.Equal(t, 250*time.Millisecond, c.CommitInterval)

	assert.Equal(t, "onotify-events", ConfigFrom(config.KafkaConfig{}, "t", "events").GroupID)
}

func TestConfigDefaults(t *testing.T) {
	c := Config{MinBytes: 10}.withDefaults()

	assert.Equal(t, 10, c.MinBytes)
	assert.Equal(t, 10<<20, c.MaxBytes)
	assert.Equal(t, time.Second, c.CommitInterval)
	assert.Equal(t, 50*time.Millisecond, c.MaxWait)
}

func TestNewConsumerValidates(t *testing.T) {
	_, err := NewConsumer(Config{Topic: "t", GroupID: "g"}, zap.NewNop())
	require.Error(t, err)

	_, err = NewConsumer(Config{Brokers: []string{"k1:9092"}, GroupID: "g"}, zap.NewNop())
	require.Error(t, err)
}
