package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/St1cky1/kanban-service/internal/entity"
	"github.com/St1cky1/kanban-service/internal/infrastructure/client"
	"github.com/St1cky1/kanban-service/internal/repository"
	"github.com/jackc/pgx/v5/pgconn"
	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	consumerTag    = "activity_worker"
	reconnectDelay = 5 * time.Second
)

var errMalformed = errors.New("malformed activity message")

// DeliverySource - откуда воркер берет сообщения
type DeliverySource interface {
	Consume(consumerTag string) (*client.Consumer, error)
}

// ActivityWorker читает события задач из очереди и пишет их в ленту активности
type ActivityWorker struct {
	source       DeliverySource
	activityRepo repository.IActivityRepository
}

func NewActivityWorker(source DeliverySource, activityRepo repository.IActivityRepository) *ActivityWorker {
	return &ActivityWorker{
		source:       source,
		activityRepo: activityRepo,
	}
}

// Start работает до отмены ctx, после обрыва соединения переподключается
func (w *ActivityWorker) Start(ctx context.Context) {
	log.Println("🔄 Activity Worker: подключаемся к RabbitMQ...")

	for {
		err := w.run(ctx)
		if ctx.Err() != nil {
			log.Println("🛑 Activity Worker остановлен")
			return
		}
		log.Printf("❌ Activity Worker ошибка: %v, переподключение через %s...", err, reconnectDelay)

		select {
		case <-ctx.Done():
			log.Println("🛑 Activity Worker остановлен")
			return
		case <-time.After(reconnectDelay):
		}
	}
}

func (w *ActivityWorker) run(ctx context.Context) error {
	consumer, err := w.source.Consume(consumerTag)
	if err != nil {
		return err
	}
	defer consumer.Close()

	log.Println("✅ Activity Worker запущен. Ожидаем сообщения...")

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-consumer.Messages:
			if !ok {
				return errors.New("канал сообщений закрыт")
			}
			w.processMessage(ctx, msg)
		}
	}
}

func (w *ActivityWorker) processMessage(ctx context.Context, msg amqp.Delivery) {
	log.Printf("📥 Получено сообщение: %s", msg.Body)

	activity, err := w.handle(ctx, msg.Body)
	if err != nil {
		requeue := shouldRequeue(err)
		if requeue {
			log.Printf("❌ Ошибка обработки события, вернем в очередь: %v", err)
		} else {
			log.Printf("⚠️  Событие отброшено: %v", err)
		}
		msg.Nack(false, requeue)
		return
	}

	msg.Ack(false)
	log.Printf("✅ Событие сохранено: %s задача %s", activity.Type, activity.TaskID)
}

// handle разбирает сообщение и сохраняет событие
func (w *ActivityWorker) handle(ctx context.Context, body []byte) (*entity.Activity, error) {
	var message entity.ActivityMessage
	if err := json.Unmarshal(body, &message); err != nil {
		return nil, fmt.Errorf("%w: %v", errMalformed, err)
	}
	if message.TaskID == "" || message.Type == "" {
		return nil, fmt.Errorf("%w: task_id and type are required", errMalformed)
	}

	activity := message.ToActivity()
	if err := w.activityRepo.Create(ctx, activity); err != nil {
		return nil, err
	}
	return activity, nil
}

// shouldRequeue - повторять имеет смысл только временные ошибки базы.
// Битое сообщение и нарушение ограничений (класс 23, например задача уже удалена) не исправятся повтором.
func shouldRequeue(err error) bool {
	if errors.Is(err, errMalformed) {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && strings.HasPrefix(pgErr.Code, "23") {
		return false
	}
	return true
}
