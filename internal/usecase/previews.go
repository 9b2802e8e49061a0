package usecase

import (
	"sync"

	"github.com/google/uuid"
)

// PreviewStore выдает короткоживущие ссылки превью для несохраненных картинок.
// Каждую выданную ссылку нужно освободить через Revoke.
type PreviewStore interface {
	Create(file FileUpload) string
	Revoke(handle string)
}

// MemoryPreviews держит байты превью в памяти до Revoke
type MemoryPreviews struct {
	mu   sync.Mutex
	live map[string]FileUpload
}

func NewMemoryPreviews() *MemoryPreviews {
	return &MemoryPreviews{live: make(map[string]FileUpload)}
}

func (p *MemoryPreviews) Create(file FileUpload) string {
	handle := "blob:" + uuid.NewString()
	p.mu.Lock()
	p.live[handle] = file
	p.mu.Unlock()
	return handle
}

func (p *MemoryPreviews) Revoke(handle string) {
	p.mu.Lock()
	delete(p.live, handle)
	p.mu.Unlock()
}

func (p *MemoryPreviews) Get(handle string) (FileUpload, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	f, ok := p.live[handle]
	return f, ok
}

// Live - сколько превью еще не освобождено
func (p *MemoryPreviews) Live() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.live)
}
