package app

import (
	"context"
	"fmt"

	"github.com/IBM/sarama"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/backoffice/internal/events"
	"github.com/vladislavdragonenkov/backoffice/internal/messaging/kafka"
)

const consumerGroup = "backoffice"

// refresher перечитывает заказы из хранилища.
type refresher interface {
	Refresh(ctx context.Context) (int, error)
}

// kafkaRuntime — запущенные Kafka-компоненты; nil-поля означают, что компонент выключен.
type kafkaRuntime struct {
	producer *kafka.Producer
	bridge   *kafka.Bridge
	consumer *kafka.Consumer
}

// initKafka поднимает producer с мостом шины и consumer изменений витрины.
// Без брокеров возвращает пустой runtime. Ошибки Kafka не останавливают запуск.
func initKafka(ctx context.Context, cfg Config, bus *events.Bus, orders refresher, logger *log.Entry) *kafkaRuntime {
	rt := &kafkaRuntime{}
	if !cfg.KafkaEnabled() {
		logger.Info("kafka brokers not configured, kafka disabled")
		return rt
	}

	producer, err := kafka.NewProducer(cfg.KafkaBrokers)
	if err != nil {
		logger.WithError(err).Warn("failed to create kafka producer, continuing without kafka")
	} else {
		rt.producer = producer
		rt.bridge = kafka.NewBridge(bus, producer, cfg.KafkaTopic)
		rt.bridge.Start()
		logger.WithField("brokers", cfg.KafkaBrokers).Info("kafka producer initialized")
	}

	consumer, err := kafka.NewConsumer(cfg.KafkaBrokers, consumerGroup, []string{cfg.KafkaChangesTopic}, storeChangeHandler(orders, logger))
	if err != nil {
		logger.WithError(err).Warn("failed to create kafka consumer, store changes will not be tracked")
		return rt
	}
	if err := consumer.Start(ctx); err != nil {
		logger.WithError(err).Warn("failed to start kafka consumer")
		_ = consumer.Stop()
		return rt
	}
	rt.consumer = consumer
	return rt
}

// storeChangeHandler перечитывает кэш, когда витрина создала или удалила заказ.
func storeChangeHandler(orders refresher, logger *log.Entry) kafka.MessageHandler {
	return func(ctx context.Context, message *sarama.ConsumerMessage) error {
		event, err := kafka.ParseOrderEvent(message)
		if err != nil {
			return err
		}
		switch event.EventType {
		case kafka.EventTypeStoreOrderCreated, kafka.EventTypeStoreOrderDeleted:
		default:
			logger.WithField("event_type", event.EventType).Debug("ignoring store change")
			return nil
		}

		n, err := orders.Refresh(ctx)
		if err != nil {
			return fmt.Errorf("refresh after %s for order %s: %w", event.EventType, event.OrderID, err)
		}
		logger.WithFields(log.Fields{
			"order_id":   event.OrderID,
			"event_type": event.EventType,
			"orders":     n,
		}).Info("orders refreshed after store change")
		return nil
	}
}

// close останавливает consumer, затем мост и producer.
func (rt *kafkaRuntime) close(logger *log.Entry) {
	if rt == nil {
		return
	}
	if rt.consumer != nil {
		if err := rt.consumer.Stop(); err != nil {
			logger.WithError(err).Warn("failed to stop kafka consumer")
		}
	}
	if rt.bridge != nil {
		rt.bridge.Stop()
	}
	closeKafkaProducer(rt.producer, logger)
}

// closeKafkaProducer закрывает Kafka producer если он не nil.
func closeKafkaProducer(producer *kafka.Producer, logger *log.Entry) {
	if producer == nil {
		return
	}

	if err := producer.Close(); err != nil {
		logger.WithError(err).Warn("failed to close kafka producer")
	} else {
		logger.Info("kafka producer closed")
	}
}
