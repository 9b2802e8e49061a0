package entity

import (
	"fmt"
	"time"
)

type ActivityType string

const (
	ActivityCreated      ActivityType = "created"
	ActivityUpdated      ActivityType = "updated"
	ActivityMoved        ActivityType = "moved"
	ActivityAssigned     ActivityType = "assigned"
	ActivityUnassigned   ActivityType = "unassigned"
	ActivityCompleted    ActivityType = "completed"
	ActivityReopened     ActivityType = "reopened"
	ActivityCommentAdded ActivityType = "comment_added"
)

// Activity - системное событие по задаче.
// OldValue/NewValue хранятся как jsonb: строка для полей, список id для назначений.
type Activity struct {
	ID          string       `json:"id"`
	TaskID      string       `json:"task_id"`
	Type        ActivityType `json:"type"`
	Field       string       `json:"field,omitempty"`
	OldValue    any          `json:"old_value,omitempty"`
	NewValue    any          `json:"new_value,omitempty"`
	AuthorID    string       `json:"user_id"`
	AuthorName  string       `json:"user_name"`
	AuthorImage string       `json:"user_image,omitempty"`
	Description string       `json:"description,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
}

// ActivityMessage - то что уходит в RabbitMQ и потом сохраняется воркером
type ActivityMessage struct {
	TaskID      string       `json:"task_id"`
	Type        ActivityType `json:"type"`
	Field       string       `json:"field,omitempty"`
	OldValue    any          `json:"old_value,omitempty"`
	NewValue    any          `json:"new_value,omitempty"`
	AuthorID    string       `json:"user_id"`
	AuthorName  string       `json:"user_name"`
	AuthorImage string       `json:"user_image,omitempty"`
	Description string       `json:"description,omitempty"`
	Timestamp   time.Time    `json:"timestamp"`
}

func (m *ActivityMessage) ToActivity() *Activity {
	return &Activity{
		TaskID:      m.TaskID,
		Type:        m.Type,
		Field:       m.Field,
		OldValue:    m.OldValue,
		NewValue:    m.NewValue,
		AuthorID:    m.AuthorID,
		AuthorName:  m.AuthorName,
		AuthorImage: m.AuthorImage,
		Description: m.Description,
		CreatedAt:   m.Timestamp,
	}
}

// ValueIDs разворачивает значение события в список строк.
// После json-декодирования список приходит как []any.
func ValueIDs(v any) []string {
	switch val := v.(type) {
	case nil:
		return nil
	case string:
		if val == "" {
			return nil
		}
		return []string{val}
	case []string:
		return val
	case []any:
		ids := make([]string, 0, len(val))
		for _, item := range val {
			if s, ok := item.(string); ok && s != "" {
				ids = append(ids, s)
			}
		}
		return ids
	default:
		return []string{fmt.Sprint(val)}
	}
}

// ValueString возвращает скалярное значение события или "" для списков.
func ValueString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}
