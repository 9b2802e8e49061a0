package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/St1cky1/kanban-service/internal/entity"
	"github.com/redis/rueidis"
)

const boardKeyPrefix = "kanban:board_view:"

// RedisBoardCache - общий кеш представлений досок для всех инстансов сервиса
type RedisBoardCache struct {
	client rueidis.Client
	ttl    time.Duration
}

func NewRedisBoardCache(client rueidis.Client, ttl time.Duration) *RedisBoardCache {
	return &RedisBoardCache{client: client, ttl: ttl}
}

func boardKey(boardID string) string {
	return boardKeyPrefix + boardID
}

func (c *RedisBoardCache) Get(ctx context.Context, boardID string) (*entity.BoardView, error) {
	data, err := c.client.Do(ctx, c.client.B().Get().Key(boardKey(boardID)).Build()).AsBytes()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get board view: %w", err)
	}
	return decodeView(data)
}

func (c *RedisBoardCache) Put(ctx context.Context, view *entity.BoardView) error {
	data, err := json.Marshal(view)
	if err != nil {
		return err
	}

	cmd := c.client.B().Set().Key(boardKey(view.Board.ID)).Value(rueidis.BinaryString(data)).
		ExSeconds(int64(c.ttl / time.Second)).Build()
	if err := c.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("put board view: %w", err)
	}
	return nil
}

// PatchAttachments - read-modify-write без блокировки, последняя запись выигрывает.
// Рассинхрон исправится при следующей перезагрузке доски.
func (c *RedisBoardCache) PatchAttachments(ctx context.Context, boardID, taskID string, updater func([]entity.Attachment) []entity.Attachment) error {
	view, err := c.Get(ctx, boardID)
	if err != nil || view == nil {
		return err
	}
	if !view.PatchAttachments(taskID, updater) {
		return nil
	}
	return c.Put(ctx, view)
}

func (c *RedisBoardCache) Invalidate(ctx context.Context, boardID string) error {
	if err := c.client.Do(ctx, c.client.B().Del().Key(boardKey(boardID)).Build()).Error(); err != nil {
		return fmt.Errorf("invalidate board view: %w", err)
	}
	return nil
}
