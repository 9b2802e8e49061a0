package usecase

import (
	"sort"
	"strings"
	"time"

	"github.com/St1cky1/kanban-service/internal/entity"
)

// FeedWindow - сколько последних записей видно в свернутой ленте
const FeedWindow = 3

type FeedKind string

const (
	FeedComment  FeedKind = "comment"
	FeedActivity FeedKind = "activity"
)

type DisplayIdentity struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Image string `json:"image,omitempty"`
}

type ColumnRef struct {
	Title string `json:"title"`
	Color string `json:"color"`
}

// MoveDetails - откуда и куда перенесена задача
type MoveDetails struct {
	From ColumnRef `json:"from"`
	To   ColumnRef `json:"to"`
}

type FeedEntry struct {
	Kind      FeedKind         `json:"kind"`
	Comment   *entity.Comment  `json:"comment,omitempty"`
	Activity  *entity.Activity `json:"activity,omitempty"`
	Author    DisplayIdentity  `json:"author"`
	Icon      string           `json:"icon,omitempty"`
	Text      string           `json:"text,omitempty"`
	Move      *MoveDetails     `json:"move,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
}

// Feed - три представления одной задачи: общее, только комментарии, только активность
type Feed struct {
	All      []FeedEntry `json:"all"`
	Comments []FeedEntry `json:"comments"`
	Activity []FeedEntry `json:"activity"`
}

// FeedContext - все, что нужно для обогащения записей
type FeedContext struct {
	Profiles map[string]entity.Member
	Session  entity.SessionUser
	Columns  []entity.Column
}

// BuildFeed сливает комментарии и активность в хронологическую ленту.
// События comment_added дублируют комментарии и отбрасываются.
func BuildFeed(comments []entity.Comment, activity []entity.Activity, fc FeedContext) Feed {
	var feed Feed

	for i := range comments {
		c := comments[i]
		feed.Comments = append(feed.Comments, FeedEntry{
			Kind:      FeedComment,
			Comment:   &c,
			Author:    ResolveAuthor(DisplayIdentity{ID: c.AuthorID, Name: c.AuthorName, Image: c.AuthorImage}, fc.Profiles, fc.Session),
			CreatedAt: c.CreatedAt,
		})
	}
	sortEntries(feed.Comments)

	for i := range activity {
		a := activity[i]
		if a.Type == entity.ActivityCommentAdded {
			continue
		}
		icon, text, move := DescribeActivity(a, fc.Columns, fc.Profiles)
		feed.Activity = append(feed.Activity, FeedEntry{
			Kind:      FeedActivity,
			Activity:  &a,
			Author:    ResolveAuthor(DisplayIdentity{ID: a.AuthorID, Name: a.AuthorName, Image: a.AuthorImage}, fc.Profiles, fc.Session),
			Icon:      icon,
			Text:      text,
			Move:      move,
			CreatedAt: a.CreatedAt,
		})
	}
	sortEntries(feed.Activity)

	feed.All = make([]FeedEntry, 0, len(feed.Comments)+len(feed.Activity))
	feed.All = append(feed.All, feed.Comments...)
	feed.All = append(feed.All, feed.Activity...)
	sortEntries(feed.All)

	return feed
}

func sortEntries(entries []FeedEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].CreatedAt.Before(entries[j].CreatedAt)
	})
}

// Window - последние FeedWindow записей, если лента не раскрыта.
// hidden - сколько записей скрыто.
func Window(entries []FeedEntry, expanded bool) (visible []FeedEntry, hidden int) {
	if expanded || len(entries) <= FeedWindow {
		return entries, 0
	}
	return entries[len(entries)-FeedWindow:], len(entries) - FeedWindow
}

// ResolveAuthor подбирает отображаемого автора: сырые данные, если они полные,
// иначе профиль из каталога, потом пользователь сессии, потом как есть.
func ResolveAuthor(raw DisplayIdentity, profiles map[string]entity.Member, session entity.SessionUser) DisplayIdentity {
	if complete(raw) {
		return raw
	}

	out := raw
	if p, ok := profiles[raw.ID]; ok {
		if p.Name != "" && (out.Name == "" || looksLikeEmail(out.Name) || out.Image == "") {
			out.Name = p.Name
		}
		if out.Image == "" {
			out.Image = p.Image
		}
		if complete(out) {
			return out
		}
	}

	if session.ID != "" && raw.ID == session.ID {
		if name := session.DisplayName(); name != "" && (out.Name == "" || looksLikeEmail(out.Name)) {
			out.Name = name
		}
		if out.Image == "" {
			out.Image = session.Image
		}
	}
	return out
}

func complete(id DisplayIdentity) bool {
	return id.Name != "" && !looksLikeEmail(id.Name) && id.Image != ""
}

func looksLikeEmail(s string) bool {
	at := strings.IndexByte(s, '@')
	return at > 0 && !strings.ContainsRune(s, ' ') && strings.Contains(s[at:], ".")
}

var activityIcons = map[entity.ActivityType]string{
	entity.ActivityCreated:    "✨",
	entity.ActivityUpdated:    "📝",
	entity.ActivityMoved:      "🔄",
	entity.ActivityAssigned:   "👤",
	entity.ActivityUnassigned: "👤",
	entity.ActivityCompleted:  "✅",
	entity.ActivityReopened:   "🔓",
}

var fieldIcons = map[string]string{
	"title":       "✏️",
	"description": "📄",
	"priority":    "🎯",
	"dueDate":     "📅",
	"tags":        "🏷️",
	"assignedTo":  "👤",
	"checklist":   "✅",
}

// DescribeActivity - иконка и текст события. Для moved колонки ищутся в живом
// списке, для assigned/unassigned id участников превращаются в имена.
func DescribeActivity(a entity.Activity, columns []entity.Column, profiles map[string]entity.Member) (string, string, *MoveDetails) {
	text := a.Description
	if text == "" {
		text = defaultActivityText(a)
	}

	var move *MoveDetails
	switch a.Type {
	case entity.ActivityMoved:
		from, okFrom := findColumn(columns, entity.ValueString(a.OldValue))
		to, okTo := findColumn(columns, entity.ValueString(a.NewValue))
		if okFrom && okTo {
			text = "moved the task"
			move = &MoveDetails{
				From: ColumnRef{Title: from.Title, Color: from.Color},
				To:   ColumnRef{Title: to.Title, Color: to.Color},
			}
		}

	case entity.ActivityAssigned, entity.ActivityUnassigned:
		ids := entity.ValueIDs(a.NewValue)
		verb := "assigned"
		if a.Type == entity.ActivityUnassigned {
			ids = entity.ValueIDs(a.OldValue)
			verb = "unassigned"
		}
		var names []string
		for _, id := range ids {
			if p, ok := profiles[id]; ok && p.Name != "" {
				names = append(names, p.Name)
			}
		}
		if len(names) > 0 {
			text = verb + " " + strings.Join(names, ", ")
		}
	}

	icon, ok := activityIcons[a.Type]
	if !ok {
		icon = "📝"
	}
	if a.Type != entity.ActivityMoved && a.Field != "" {
		if fi, ok := fieldIcons[a.Field]; ok {
			icon = fi
		}
	}

	return icon, text, move
}

func defaultActivityText(a entity.Activity) string {
	switch a.Type {
	case entity.ActivityCreated:
		return "created the task"
	case entity.ActivityMoved:
		return "moved the task"
	case entity.ActivityCompleted:
		return "completed the task"
	case entity.ActivityReopened:
		return "reopened the task"
	case entity.ActivityAssigned:
		return "assigned members"
	case entity.ActivityUnassigned:
		return "unassigned members"
	}
	if a.Field != "" {
		return "updated " + a.Field
	}
	return "updated the task"
}

func findColumn(columns []entity.Column, id string) (entity.Column, bool) {
	for _, c := range columns {
		if c.ID == id {
			return c, true
		}
	}
	return entity.Column{}, false
}
