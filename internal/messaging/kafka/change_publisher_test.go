package kafka

import (
	"encoding/json"
	"testing"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/backoffice/internal/domain"
)

func TestChangePublisher_OrderCreated(t *testing.T) {
	t.Parallel()

	mockProducer := mocks.NewSyncProducer(t, nil)
	mockProducer.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		require.Equal(t, TopicStoreChanges, msg.Topic)
		value, err := msg.Value.Encode()
		require.NoError(t, err)

		var event OrderEvent
		require.NoError(t, json.Unmarshal(value, &event))
		require.Equal(t, EventTypeStoreOrderCreated, event.EventType)
		require.Equal(t, "42", event.OrderID)
		require.Equal(t, domain.OrderStatusPending, event.Status)
		require.Equal(t, int64(120), event.Total)
		return nil
	})

	publisher := NewChangePublisher(NewProducerFromSync(mockProducer), "")
	err := publisher.OrderCreated(domain.Order{ID: "42", Status: domain.OrderStatusPending, Total: 120})
	require.NoError(t, err)

	require.NoError(t, mockProducer.Close())
}

func TestChangePublisher_ProducerError(t *testing.T) {
	t.Parallel()

	mockProducer := mocks.NewSyncProducer(t, nil)
	mockProducer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	publisher := NewChangePublisher(NewProducerFromSync(mockProducer), TopicStoreChanges)
	require.Error(t, publisher.OrderDeleted("42"))

	require.NoError(t, mockProducer.Close())
}

func TestChangePublisher_NilPublisher(t *testing.T) {
	t.Parallel()

	publisher := NewChangePublisher(nil, "")
	require.Error(t, publisher.OrderDeleted("1"))
}
