package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/St1cky1/kanban-service/internal/entity"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

const memoryCacheSize = 512

// MemoryBoardCache - кеш представлений досок в памяти процесса.
// Хранит сериализованную копию, чтобы вызывающий не мог изменить запись по ссылке.
type MemoryBoardCache struct {
	// mu держит чтение-изменение-запись в PatchAttachments
	mu      sync.Mutex
	entries *expirable.LRU[string, []byte]
}

func NewMemoryBoardCache(ttl time.Duration) *MemoryBoardCache {
	return &MemoryBoardCache{
		entries: expirable.NewLRU[string, []byte](memoryCacheSize, nil, ttl),
	}
}

func (c *MemoryBoardCache) Get(ctx context.Context, boardID string) (*entity.BoardView, error) {
	data, ok := c.entries.Get(boardID)
	if !ok {
		return nil, nil
	}
	return decodeView(data)
}

func (c *MemoryBoardCache) Put(ctx context.Context, view *entity.BoardView) error {
	data, err := json.Marshal(view)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries.Add(view.Board.ID, data)
	return nil
}

// PatchAttachments правит вложения задачи в закешированной доске. Нет записи - нечего патчить.
// Патч продлевает жизнь записи на TTL, как и Put.
func (c *MemoryBoardCache) PatchAttachments(ctx context.Context, boardID, taskID string, updater func([]entity.Attachment) []entity.Attachment) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, ok := c.entries.Get(boardID)
	if !ok {
		return nil
	}

	view, err := decodeView(data)
	if err != nil {
		return err
	}
	if !view.PatchAttachments(taskID, updater) {
		return nil
	}

	data, err = json.Marshal(view)
	if err != nil {
		return err
	}
	c.entries.Add(boardID, data)
	return nil
}

func (c *MemoryBoardCache) Invalidate(ctx context.Context, boardID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries.Remove(boardID)
	return nil
}

func decodeView(data []byte) (*entity.BoardView, error) {
	var view entity.BoardView
	if err := json.Unmarshal(data, &view); err != nil {
		return nil, err
	}
	return &view, nil
}
