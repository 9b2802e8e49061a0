package usecase

import (
	"context"
	"log"
	"slices"
	"time"

	"github.com/St1cky1/kanban-service/internal/entity"
)

// activityEvent - событие, которое еще не привязано к автору и времени
type activityEvent struct {
	Type     entity.ActivityType
	Field    string
	OldValue any
	NewValue any
}

// publishActivity асинхронно отправляет события в шину. Ошибка публикации не влияет на операцию.
func publishActivity(publisher ActivityPublisher, scope Scope, taskID string, at time.Time, events ...activityEvent) {
	if publisher == nil || len(events) == 0 {
		return
	}

	messages := make([]*entity.ActivityMessage, 0, len(events))
	for _, e := range events {
		messages = append(messages, &entity.ActivityMessage{
			TaskID:      taskID,
			Type:        e.Type,
			Field:       e.Field,
			OldValue:    e.OldValue,
			NewValue:    e.NewValue,
			AuthorID:    scope.User.ID,
			AuthorName:  scope.User.DisplayName(),
			AuthorImage: scope.User.Image,
			Timestamp:   at,
		})
	}

	// Асинхронная отправка в RabbitMQ
	go func() {
		for _, msg := range messages {
			if err := publisher.PublishActivity(context.Background(), msg); err != nil {
				log.Printf("❌ Ошибка отправки события в RabbitMQ: %v", err)
			} else {
				log.Printf("Событие отправлено в RabbitMQ: %s задача %s", msg.Type, taskID)
			}
		}
	}()
}

// taskChangeEvents - события по изменениям задачи
func taskChangeEvents(old, updated *entity.Task) []activityEvent {
	var events []activityEvent

	if old.Title != updated.Title {
		events = append(events, activityEvent{Type: entity.ActivityUpdated, Field: "title", OldValue: old.Title, NewValue: updated.Title})
	}
	if old.Description != updated.Description {
		events = append(events, activityEvent{Type: entity.ActivityUpdated, Field: "description"})
	}
	if old.Priority != updated.Priority {
		events = append(events, activityEvent{Type: entity.ActivityUpdated, Field: "priority", OldValue: string(old.Priority), NewValue: string(updated.Priority)})
	}
	if !sameTime(old.DueDate, updated.DueDate) {
		events = append(events, activityEvent{Type: entity.ActivityUpdated, Field: "dueDate", OldValue: timeValue(old.DueDate), NewValue: timeValue(updated.DueDate)})
	}
	if !sameTime(old.StartDate, updated.StartDate) {
		events = append(events, activityEvent{Type: entity.ActivityUpdated, Field: "startDate", OldValue: timeValue(old.StartDate), NewValue: timeValue(updated.StartDate)})
	}
	if !slices.Equal(old.Tags, updated.Tags) {
		events = append(events, activityEvent{Type: entity.ActivityUpdated, Field: "tags"})
	}

	added, removed := diffIDs(old.AssignedMembers, updated.AssignedMembers)
	if len(added) > 0 {
		events = append(events, activityEvent{Type: entity.ActivityAssigned, Field: "assignedTo", NewValue: added})
	}
	if len(removed) > 0 {
		events = append(events, activityEvent{Type: entity.ActivityUnassigned, Field: "assignedTo", OldValue: removed})
	}

	wasDone, isDone := checklistDone(old.Checklist), checklistDone(updated.Checklist)
	switch {
	case !wasDone && isDone:
		events = append(events, activityEvent{Type: entity.ActivityCompleted, Field: "checklist"})
	case wasDone && !isDone:
		events = append(events, activityEvent{Type: entity.ActivityReopened, Field: "checklist"})
	case !slices.Equal(old.Checklist, updated.Checklist):
		events = append(events, activityEvent{Type: entity.ActivityUpdated, Field: "checklist"})
	}

	return events
}

// checklistDone - непустой чек-лист, где отмечены все пункты
func checklistDone(items []entity.ChecklistItem) bool {
	if len(items) == 0 {
		return false
	}
	for _, item := range items {
		if !item.Done {
			return false
		}
	}
	return true
}

func diffIDs(old, updated []string) (added, removed []string) {
	oldSet := make(map[string]bool, len(old))
	for _, id := range old {
		oldSet[id] = true
	}
	newSet := make(map[string]bool, len(updated))
	for _, id := range updated {
		newSet[id] = true
		if !oldSet[id] {
			added = append(added, id)
		}
	}
	for _, id := range old {
		if !newSet[id] {
			removed = append(removed, id)
		}
	}
	return added, removed
}

func timeValue(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}
