package usecase

import (
	"strings"
	"time"

	"github.com/St1cky1/kanban-service/internal/entity"
)

// форматы дат, по которым ищется задача
var searchDateLayouts = []string{"2006-01-02", "02/01/2006"}

// FilterTasks оставляет задачи, в которых встречается каждое слово запроса.
// Ищется без учета регистра по названию, описанию, тегам, приоритету и датам.
// Пустой запрос возвращает задачи как есть.
func FilterTasks(tasks []entity.Task, query string) []entity.Task {
	terms := strings.Fields(strings.ToLower(query))
	if len(terms) == 0 {
		return tasks
	}

	filtered := make([]entity.Task, 0, len(tasks))
	for _, t := range tasks {
		if matchesAll(searchText(t), terms) {
			filtered = append(filtered, t)
		}
	}
	return filtered
}

func matchesAll(haystack string, terms []string) bool {
	for _, term := range terms {
		if !strings.Contains(haystack, term) {
			return false
		}
	}
	return true
}

func searchText(t entity.Task) string {
	parts := []string{t.Title, t.Description, string(t.Priority)}
	for _, tag := range t.Tags {
		parts = append(parts, tag.Name)
	}
	for _, date := range []*time.Time{t.StartDate, t.DueDate} {
		if date == nil {
			continue
		}
		for _, layout := range searchDateLayouts {
			parts = append(parts, date.Format(layout))
		}
	}
	return strings.ToLower(strings.Join(parts, "\n"))
}
