package usecase

import (
	"log"
	"sync"

	"github.com/St1cky1/kanban-service/internal/entity"
)

type NoticeLevel string

const (
	NoticeSuccess NoticeLevel = "success"
	NoticeError   NoticeLevel = "error"
	NoticeInfo    NoticeLevel = "info"
)

// Notice - сообщение пользователю, аналог toast
type Notice struct {
	Level   NoticeLevel `json:"level"`
	Message string      `json:"message"`
}

// Notifier принимает пользовательские уведомления
type Notifier interface {
	Notify(level NoticeLevel, message string)
}

// Notices собирает уведомления одного запроса
type Notices struct {
	mu    sync.Mutex
	items []Notice
}

func (n *Notices) Notify(level NoticeLevel, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.items = append(n.items, Notice{Level: level, Message: message})
}

func (n *Notices) List() []Notice {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]Notice, len(n.items))
	copy(out, n.items)
	return out
}

// Scope - контекст операции: workspace, пользователь сессии и куда слать уведомления.
// Передается явно в каждый вызов.
type Scope struct {
	WorkspaceID string
	User        entity.SessionUser
	Notices     Notifier
}

func (s Scope) notify(level NoticeLevel, message string) {
	if s.Notices != nil {
		s.Notices.Notify(level, message)
	}
}

// fail логирует ошибку удаленного вызова и превращает ее в уведомление
func (s Scope) fail(message string, err error) {
	log.Printf("❌ %s: %v", message, err)
	s.notify(NoticeError, message)
}
