package entity

import (
	"strings"
	"time"
)

// DefaultColumnColor - цвет новой колонки, если клиент его не передал
const DefaultColumnColor = "#3b82f6"

// DefaultColumns - колонки новой доски
var DefaultColumns = []ColumnInput{
	{Title: "To do", Color: "#8b5cf6"},
	{Title: "In progress", Color: "#f59e0b"},
	{Title: "Waiting", Color: "#3b82f6"},
	{Title: "Done", Color: "#10b981"},
}

type Column struct {
	ID       string `json:"id"`
	BoardID  string `json:"board_id"`
	Title    string `json:"title"`
	Color    string `json:"color"`
	Position int    `json:"position"`
}

type Board struct {
	ID          string    `json:"id"`
	WorkspaceID string    `json:"workspace_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Columns     []Column  `json:"columns"`
	Members     []Member  `json:"members"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type CreateBoardInput struct {
	Title       string `json:"title" validate:"required,max=255"`
	Description string `json:"description" validate:"max=2000"`
}

type UpdateBoardInput struct {
	Title       *string `json:"title" validate:"omitempty,min=1,max=255"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
}

type ColumnInput struct {
	Title string `json:"title" validate:"required,max=100"`
	Color string `json:"color" validate:"omitempty,max=30"`
}

type UpdateColumnInput struct {
	Title *string `json:"title" validate:"omitempty,min=1,max=100"`
	Color *string `json:"color" validate:"omitempty,max=30"`
}

// Normalize обрезает пробелы и подставляет цвет по умолчанию
func (in *ColumnInput) Normalize() {
	in.Title = strings.TrimSpace(in.Title)
	in.Color = strings.TrimSpace(in.Color)
	if in.Color == "" {
		in.Color = DefaultColumnColor
	}
}

func (b *Board) Column(columnID string) (Column, bool) {
	for _, c := range b.Columns {
		if c.ID == columnID {
			return c, true
		}
	}
	return Column{}, false
}

// BoardView - доска вместе с задачами, то что кешируется и отдается UI.
// Задачи колонки не хранятся списком, а выводятся фильтром по column_id.
type BoardView struct {
	Board Board  `json:"board"`
	Tasks []Task `json:"tasks"`
}

// TasksForColumn возвращает задачи колонки в текущем порядке
func (v *BoardView) TasksForColumn(columnID string) []Task {
	var tasks []Task
	for _, t := range v.Tasks {
		if t.ColumnID == columnID {
			tasks = append(tasks, t)
		}
	}
	return tasks
}

func (v *BoardView) Task(taskID string) (*Task, bool) {
	for i := range v.Tasks {
		if v.Tasks[i].ID == taskID {
			return &v.Tasks[i], true
		}
	}
	return nil, false
}

// MoveTask переназначает колонку задачи и ставит ее в начало колонки.
// Перемещение в текущую колонку ничего не делает и возвращает false.
func (v *BoardView) MoveTask(taskID, columnID string) (bool, error) {
	if _, ok := v.Board.Column(columnID); !ok {
		return false, ErrColumnNotFound
	}

	idx := -1
	for i := range v.Tasks {
		if v.Tasks[i].ID == taskID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false, ErrTaskNotFound
	}
	if v.Tasks[idx].ColumnID == columnID {
		return false, nil
	}

	task := v.Tasks[idx]
	task.ColumnID = columnID
	task.Position = 0

	rest := make([]Task, 0, len(v.Tasks))
	rest = append(rest, task)
	rest = append(rest, v.Tasks[:idx]...)
	rest = append(rest, v.Tasks[idx+1:]...)
	v.Tasks = rest
	return true, nil
}

// Validate проверяет что каждая задача ссылается на существующую колонку
func (v *BoardView) Validate() error {
	for _, t := range v.Tasks {
		if _, ok := v.Board.Column(t.ColumnID); !ok {
			return ErrColumnNotFound
		}
	}
	return nil
}

// PatchAttachments применяет updater к вложениям задачи. false если задачи нет в представлении.
func (v *BoardView) PatchAttachments(taskID string, updater func([]Attachment) []Attachment) bool {
	task, ok := v.Task(taskID)
	if !ok {
		return false
	}
	task.Attachments = updater(task.Attachments)
	return true
}

// ColumnOrderValid - order это перестановка колонок доски: каждая ровно один раз
func (b *Board) ColumnOrderValid(order []string) bool {
	if len(order) != len(b.Columns) {
		return false
	}
	seen := make(map[string]bool, len(order))
	for _, id := range order {
		if _, ok := b.Column(id); !ok || seen[id] {
			return false
		}
		seen[id] = true
	}
	return true
}
