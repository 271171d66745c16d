package kafka

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"audiodb-backend/internal/entity"
	"audiodb-backend/internal/repo"

	"github.com/segmentio/kafka-go"
	"github.com/vmihailenco/msgpack/v5"
)

const (
	notificationTopic = "notification-events"
	numPartitions     = 3
)

// TopicConfig содержит настройки для создания топика
type TopicConfig struct {
	NumPartitions     int
	ReplicationFactor int
}

// NotificationEventKafkaRepository — шина уведомлений поверх Kafka.
// Подписчики всегда читают только новые сообщения (LastOffset), поэтому
// доставка событий at-most-once: всё, что случилось до подписки, потеряно.
type NotificationEventKafkaRepository struct {
	writer        *kafka.Writer
	readerFactory func() *kafka.Reader
	brokers       []string
	topicConfig   TopicConfig
}

// createTopicIfNotExists создает топик, если он не существует
func createTopicIfNotExists(brokers []string, topic string, config TopicConfig) error {
	conn, err := kafka.Dial("tcp", brokers[0])
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }()

	exists, err := checkIfTopicExists(conn, topic)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	controller, err := conn.Controller()
	if err != nil {
		return err
	}
	controllerConn, err := kafka.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	if err != nil {
		return err
	}
	defer func() { _ = controllerConn.Close() }()

	return controllerConn.CreateTopics(kafka.TopicConfig{
		Topic:             topic,
		NumPartitions:     config.NumPartitions,
		ReplicationFactor: config.ReplicationFactor,
	})
}

// checkIfTopicExists проверяет, существует ли топик
func checkIfTopicExists(conn *kafka.Conn, topic string) (bool, error) {
	partitions, err := conn.ReadPartitions(topic)
	if err != nil {
		if errors.Is(err, kafka.UnknownTopicOrPartition) {
			return false, nil
		}
		return false, err
	}
	return len(partitions) > 0, nil
}

// getMaxReplicationFactor определяет максимально возможный фактор репликации
// на основе количества доступных брокеров
func getMaxReplicationFactor(ctx context.Context, brokers []string, desiredFactor int) (int, error) {
	if len(brokers) == 0 {
		return 1, errors.New("пустой список брокеров")
	}

	dialCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	conn, err := kafka.DialContext(dialCtx, "tcp", brokers[0])
	if err != nil {
		actualFactor := min(len(brokers), desiredFactor)
		return actualFactor, fmt.Errorf("не удалось подключиться к брокеру для получения метаданных, используем безопасное значение %d: %w", actualFactor, err)
	}
	defer func() { _ = conn.Close() }()

	if err := conn.SetReadDeadline(time.Now().Add(5 * time.Second)); err != nil {
		actualFactor := min(len(brokers), desiredFactor)
		return actualFactor, fmt.Errorf("ошибка установки таймаута чтения: %w", err)
	}

	brokerMetadata, err := conn.Brokers()
	if err != nil || len(brokerMetadata) == 0 {
		actualFactor := min(len(brokers), desiredFactor)
		return actualFactor, fmt.Errorf("ошибка получения метаданных о брокерах, используем безопасное значение %d: %w", actualFactor, err)
	}

	return min(len(brokerMetadata), desiredFactor), nil
}

func NewNotificationEventKafkaRepository(brokers []string) (repo.NotificationEventRepository, error) {
	if len(brokers) == 0 {
		return nil, errors.New("не предоставлены брокеры Kafka")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// В идеале хотим фактор репликации 3 для надежности
	actualReplicationFactor, err := getMaxReplicationFactor(ctx, brokers, 3)
	if err != nil {
		return nil, fmt.Errorf("ошибка при определении фактора репликации: %w", err)
	}

	topicConfig := TopicConfig{
		NumPartitions:     numPartitions,
		ReplicationFactor: actualReplicationFactor,
	}
	if err := createTopicIfNotExists(brokers, notificationTopic, topicConfig); err != nil {
		return nil, fmt.Errorf("ошибка при создании топика уведомлений: %w", err)
	}

	return &NotificationEventKafkaRepository{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(brokers...),
			Topic:    notificationTopic,
			Balancer: &kafka.LeastBytes{},
		},
		readerFactory: func() *kafka.Reader {
			// GroupID уникален для каждого подключения: каждый подписчик
			// получает только новые сообщения
			groupID := fmt.Sprintf("notification-listener-%d", time.Now().UnixNano())
			return kafka.NewReader(kafka.ReaderConfig{
				Brokers:     brokers,
				Topic:       notificationTopic,
				GroupID:     groupID,
				MinBytes:    1,
				MaxBytes:    10e6,
				StartOffset: kafka.LastOffset,
			})
		},
		brokers:     brokers,
		topicConfig: topicConfig,
	}, nil
}

func (r *NotificationEventKafkaRepository) PublishNotificationEvent(ctx context.Context, event *entity.NotificationEvent) error {
	b, err := msgpack.Marshal(event)
	if err != nil {
		return err
	}
	// Ключ — айди получателя: события одного пользователя попадают в одну партицию
	return r.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.UserID),
		Value: b,
	})
}

func (r *NotificationEventKafkaRepository) SubscribeNotificationEvents(ctx context.Context) (<-chan *entity.NotificationEvent, error) {
	reader := r.readerFactory()
	ch := make(chan *entity.NotificationEvent)
	go func() {
		defer close(ch)
		defer func() { _ = reader.Close() }()
		for {
			m, err := reader.ReadMessage(ctx)
			if err != nil {
				return
			}
			var event entity.NotificationEvent
			if err := msgpack.Unmarshal(m.Value, &event); err == nil {
				ch <- &event
			}
		}
	}()
	return ch, nil
}
