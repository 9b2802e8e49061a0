package usecase

import (
	"sync"
	"time"

	"github.com/St1cky1/kanban-service/internal/entity"
	"github.com/jonboulle/clockwork"
)

// DragExpandDelay - через сколько свернутая колонка раскрывается под перетаскиваемой задачей
const DragExpandDelay = 500 * time.Millisecond

// CollapseState - свернутость колонок в списочном виде. Это состояние отображения,
// в доску не сохраняется. Пустая колонка по умолчанию свернута.
type CollapseState struct {
	mu        sync.Mutex
	clock     clockwork.Clock
	delay     time.Duration
	overrides map[string]bool
	pending   map[string]clockwork.Timer
}

func NewCollapseState(clk clockwork.Clock) *CollapseState {
	return &CollapseState{
		clock:     clk,
		delay:     DragExpandDelay,
		overrides: make(map[string]bool),
		pending:   make(map[string]clockwork.Timer),
	}
}

func (c *CollapseState) IsCollapsed(columnID string, taskCount int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.collapsedLocked(columnID, taskCount)
}

func (c *CollapseState) collapsedLocked(columnID string, taskCount int) bool {
	if v, ok := c.overrides[columnID]; ok {
		return v
	}
	return taskCount == 0
}

// Set - явное состояние, например из сохраненных настроек клиента
func (c *CollapseState) Set(columnID string, collapsed bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancelLocked(columnID)
	c.overrides[columnID] = collapsed
}

// Toggle переключает колонку и возвращает новое состояние
func (c *CollapseState) Toggle(columnID string, taskCount int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancelLocked(columnID)
	collapsed := !c.collapsedLocked(columnID, taskCount)
	c.overrides[columnID] = collapsed
	return collapsed
}

// DragEnter планирует раскрытие свернутой колонки. Обратно она сворачивается только через Toggle.
func (c *CollapseState) DragEnter(columnID string, taskCount int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.collapsedLocked(columnID, taskCount) {
		return
	}
	if _, ok := c.pending[columnID]; ok {
		return
	}

	var timer clockwork.Timer
	timer = c.clock.AfterFunc(c.delay, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.pending[columnID] != timer {
			return
		}
		delete(c.pending, columnID)
		c.overrides[columnID] = false
	})
	c.pending[columnID] = timer
}

func (c *CollapseState) DragLeave(columnID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancelLocked(columnID)
}

// Close останавливает все отложенные раскрытия
func (c *CollapseState) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for id := range c.pending {
		c.cancelLocked(id)
	}
}

func (c *CollapseState) cancelLocked(columnID string) {
	if t, ok := c.pending[columnID]; ok {
		t.Stop()
		delete(c.pending, columnID)
	}
}

// ColumnGroup - колонка списочного вида вместе с задачами
type ColumnGroup struct {
	Column    entity.Column `json:"column"`
	Tasks     []entity.Task `json:"tasks"`
	Count     int           `json:"count"`
	Collapsed bool          `json:"collapsed"`
}

// GroupByColumn раскладывает задачи по колонкам в порядке колонок доски
func GroupByColumn(view *entity.BoardView, state *CollapseState) []ColumnGroup {
	groups := make([]ColumnGroup, 0, len(view.Board.Columns))
	for _, col := range view.Board.Columns {
		tasks := view.TasksForColumn(col.ID)
		if tasks == nil {
			tasks = []entity.Task{}
		}
		groups = append(groups, ColumnGroup{
			Column:    col,
			Tasks:     tasks,
			Count:     len(tasks),
			Collapsed: state.IsCollapsed(col.ID, len(tasks)),
		})
	}
	return groups
}
