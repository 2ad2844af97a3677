package kafka

import (
	"context"
	"testing"

	kafkaGo "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crm/config"
	"crm/infras/otel/mocks"
)

type statusChanged struct {
	LeadID string `json:"lead_id"`
	From   string `json:"from"`
	To     string `json:"to"`
}

func TestMessageRoundTrip(t *testing.T) {
	in := Message{Key: "lead-1", Value: statusChanged{LeadID: "lead-1", From: "tentative", To: "confirmed"}}

	msg, err := in.ToKafkaMessage()
	require.NoError(t, err)
	assert.Equal(t, []byte("lead-1"), msg.Key)
	assert.JSONEq(t, `{"lead_id":"lead-1","from":"tentative","to":"confirmed"}`, string(msg.Value))

	out, err := DecodeKafkaMessage[statusChanged](msg)
	require.NoError(t, err)
	assert.Equal(t, in.Value, out)
}

func TestDecodeKafkaMessageInvalid(t *testing.T) {
	_, err := DecodeKafkaMessage[statusChanged](kafkaGo.Message{Value: []byte("{")})
	assert.Error(t, err)
}

func TestToKafkaMessageUnsupportedValue(t *testing.T) {
	in := Message{Key: "k", Value: make(chan int)}

	_, err := in.ToKafkaMessage()
	assert.Error(t, err)
}

func TestDisabledClientDropsMessages(t *testing.T) {
	cfg := &config.Config{}
	client := New(cfg, mocks.NewOtel())

	err := client.SendMessages(context.Background(), "lead.status_changed",
		Message{Key: "lead-1", Value: statusChanged{LeadID: "lead-1"}})
	require.NoError(t, err)
	assert.NoError(t, client.Close())
}
