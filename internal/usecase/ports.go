package usecase

import (
	"context"

	"github.com/St1cky1/kanban-service/internal/entity"
)

// ActivityPublisher - шина событий по задачам (RabbitMQ)
type ActivityPublisher interface {
	PublishActivity(ctx context.Context, message *entity.ActivityMessage) error
}

// FileStore - бэкенд хранения файлов
type FileStore interface {
	Save(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
}

// BoardViewCache - общий кеш представлений досок. Get возвращает nil, nil если записи нет.
type BoardViewCache interface {
	Get(ctx context.Context, boardID string) (*entity.BoardView, error)
	Put(ctx context.Context, view *entity.BoardView) error
	PatchAttachments(ctx context.Context, boardID, taskID string, updater func([]entity.Attachment) []entity.Attachment) error
	Invalidate(ctx context.Context, boardID string) error
}
