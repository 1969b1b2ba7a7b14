package notifications

import (
	"context"
	"testing"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKafkaPublisherSendsKeyedMessage(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	event := configuredEvent()

	producer.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		key, err := msg.Key.Encode()
		require.NoError(t, err)
		assert.Equal(t, "booking_12", string(key))
		assert.Equal(t, "booking-split-events", msg.Topic)

		value, err := msg.Value.Encode()
		require.NoError(t, err)
		decoded, err := ParseSplitEvent(value)
		require.NoError(t, err)
		assert.Equal(t, EventSplitConfigured, decoded.Type)
		assert.Len(t, decoded.Participants, 3)
		return nil
	})

	publisher := NewKafkaPublisherWithProducer(producer, "booking-split-events")
	require.NoError(t, publisher.Publish(context.Background(), event))
	require.NoError(t, publisher.Close())
}

func TestKafkaPublisherSurfacesSendErrors(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	publisher := NewKafkaPublisherWithProducer(producer, "booking-split-events")
	err := publisher.Publish(context.Background(), configuredEvent())

	assert.ErrorIs(t, err, sarama.ErrOutOfBrokers)
	require.NoError(t, publisher.Close())
}

func TestSaramaProducerConfig(t *testing.T) {
	cfg := NewSaramaProducerConfig(DefaultKafkaProducerConfig())

	assert.True(t, cfg.Producer.Idempotent)
	assert.Equal(t, 1, cfg.Net.MaxOpenRequests)
	assert.Equal(t, sarama.WaitForAll, cfg.Producer.RequiredAcks)
}
