package entity

import (
	"strings"
	"time"
)

type Priority string

const (
	PriorityNone   Priority = ""
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// ParsePriority приводит приоритет к каноническому токену.
// "none" и пустая строка означают отсутствие приоритета.
func ParsePriority(raw string) (Priority, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "none":
		return PriorityNone, nil
	case "low":
		return PriorityLow, nil
	case "medium":
		return PriorityMedium, nil
	case "high":
		return PriorityHigh, nil
	default:
		return PriorityNone, ErrInvalidPriority
	}
}

type Tag struct {
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

type ChecklistItem struct {
	ID   string `json:"id,omitempty"`
	Text string `json:"text"`
	Done bool   `json:"done"`
}

type Task struct {
	ID              string          `json:"id"`
	WorkspaceID     string          `json:"workspace_id"`
	BoardID         string          `json:"board_id"`
	ColumnID        string          `json:"column_id"`
	Title           string          `json:"title"`
	Description     string          `json:"description"`
	Priority        Priority        `json:"priority"`
	Position        int             `json:"position"`
	StartDate       *time.Time      `json:"start_date,omitempty"`
	DueDate         *time.Time      `json:"due_date,omitempty"`
	AssignedMembers []string        `json:"assigned_members"`
	Tags            []Tag           `json:"tags"`
	Checklist       []ChecklistItem `json:"checklist"`
	Attachments     []Attachment    `json:"attachments"`
	Comments        []Comment       `json:"comments,omitempty"`
	Activity        []Activity      `json:"activity,omitempty"`
	TimeTracking    TimeTracking    `json:"time_tracking"`
	CreatedBy       string          `json:"created_by"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// валидация
type CreateTaskInput struct {
	BoardID         string          `json:"board_id" validate:"required"`
	ColumnID        string          `json:"column_id" validate:"required"`
	Title           string          `json:"title" validate:"required,max=255"`
	Description     string          `json:"description"`
	Priority        Priority        `json:"priority" validate:"omitempty,oneof=high medium low"`
	Position        int             `json:"position" validate:"min=0"`
	StartDate       *time.Time      `json:"start_date"`
	DueDate         *time.Time      `json:"due_date"`
	AssignedMembers []string        `json:"assigned_members"`
	Tags            []Tag           `json:"tags" validate:"dive"`
	Checklist       []ChecklistItem `json:"checklist" validate:"dive"`
}

// UpdateTaskInput - частичный патч, nil означает "не менять"
type UpdateTaskInput struct {
	Title           *string          `json:"title" validate:"omitempty,min=1,max=255"`
	Description     *string          `json:"description"`
	Priority        *Priority        `json:"priority"`
	StartDate       **time.Time      `json:"-"`
	DueDate         **time.Time      `json:"-"`
	AssignedMembers *[]string        `json:"assigned_members"`
	Tags            *[]Tag           `json:"tags"`
	Checklist       *[]ChecklistItem `json:"checklist"`
}

func (in UpdateTaskInput) IsEmpty() bool {
	return in.Title == nil && in.Description == nil && in.Priority == nil &&
		in.StartDate == nil && in.DueDate == nil && in.AssignedMembers == nil &&
		in.Tags == nil && in.Checklist == nil
}
