package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/St1cky1/kanban-service/internal/entity"
	"github.com/St1cky1/kanban-service/internal/usecase"
	"github.com/go-chi/chi/v5"
	"github.com/jonboulle/clockwork"
)

// maxMultipartMemory - сколько multipart формы держим в памяти, остальное во временных файлах
const maxMultipartMemory = 32 << 20

type TaskHandler struct {
	taskService    *usecase.TaskService
	boardService   *usecase.BoardService
	draftService   *usecase.DraftService
	commentService *usecase.CommentService
	uploader       *usecase.AttachmentUploader
	limits         UploadLimits
	clock          clockwork.Clock
}

func NewTaskHandler(
	taskService *usecase.TaskService,
	boardService *usecase.BoardService,
	draftService *usecase.DraftService,
	commentService *usecase.CommentService,
	uploader *usecase.AttachmentUploader,
	limits UploadLimits,
	clk clockwork.Clock,
) *TaskHandler {
	return &TaskHandler{
		taskService:    taskService,
		boardService:   boardService,
		draftService:   draftService,
		commentService: commentService,
		uploader:       uploader,
		limits:         limits.withDefaults(),
		clock:          clk,
	}
}

type pendingCommentRequest struct {
	Content string `json:"content"`
}

// createTaskRequest - форма создания задачи вместе с отложенными комментариями
type createTaskRequest struct {
	BoardID         string                  `json:"board_id"`
	ColumnID        string                  `json:"column_id"`
	Title           string                  `json:"title"`
	Description     string                  `json:"description"`
	Priority        string                  `json:"priority"`
	StartDate       *time.Time              `json:"start_date"`
	DueDate         *time.Time              `json:"due_date"`
	DueTime         string                  `json:"due_time"`
	AssignedMembers []string                `json:"assigned_members"`
	Tags            []string                `json:"tags"`
	Checklist       []string                `json:"checklist"`
	Comments        []pendingCommentRequest `json:"comments"`
}

// CreateTask принимает JSON или multipart: часть draft с JSON формы, files с вложениями
// и comment_images_N с картинками N-го отложенного комментария
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	scope, ok := scopeOf(w, r)
	if !ok {
		return
	}

	var req createTaskRequest
	var files []usecase.FileUpload
	var rejected []usecase.FileError
	if isMultipart(r) {
		if !parseMultipart(w, r, h.limits) || tooManyFiles(w, r, h.limits) {
			return
		}
		if err := json.Unmarshal([]byte(r.FormValue("draft")), &req); err != nil {
			http.Error(w, "Invalid draft JSON", http.StatusBadRequest)
			return
		}
		var err error
		if files, rejected, err = readFiles(r, "files", h.limits); err != nil {
			http.Error(w, "Invalid file", http.StatusBadRequest)
			return
		}
	} else if err := decodeJSON(r, &req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	previews := usecase.NewMemoryPreviews()
	draft := usecase.NewDraft(req.BoardID, req.ColumnID, previews, h.clock)
	draft.Set(usecase.DraftPatch{
		Title:       &req.Title,
		Description: &req.Description,
		Priority:    &req.Priority,
		StartDate:   &req.StartDate,
		DueDate:     &req.DueDate,
	})
	oversized, err := h.fillDraft(r, scope, draft, req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	rejected = append(rejected, oversized...)
	announceRejected(scope, rejected)

	intake, err := h.draftIntake(r, scope, draft, files)
	if err != nil {
		writeError(w, r, err)
		return
	}

	result, err := h.draftService.Commit(r.Context(), scope, draft, logProgress)
	if err != nil {
		writeError(w, r, err)
		return
	}
	rejected = append(rejected, intake.Rejected...)
	result.Uploads.Rejected = append(rejected, result.Uploads.Rejected...)

	writeJSON(w, r, http.StatusCreated, result)
}

// fillDraft переносит форму в черновик и возвращает картинки комментариев, отклоненные по размеру
func (h *TaskHandler) fillDraft(r *http.Request, scope usecase.Scope, draft *usecase.Draft, req createTaskRequest) ([]usecase.FileError, error) {
	if req.DueTime != "" {
		if err := draft.SetDueTime(req.DueTime); err != nil {
			return nil, err
		}
	}
	for _, id := range req.AssignedMembers {
		draft.ToggleMember(id)
	}
	for _, text := range req.Checklist {
		draft.AddChecklistItem(text)
	}

	if len(req.Tags) > 0 {
		tags, err := h.boardTags(r, scope, req.BoardID)
		if err != nil {
			return nil, err
		}
		for _, name := range req.Tags {
			if err := draft.AddTag(name, tags); err != nil {
				return nil, err
			}
		}
	}

	var rejected []usecase.FileError
	for i, c := range req.Comments {
		images, oversized, err := readFiles(r, fmt.Sprintf("comment_images_%d", i), h.limits)
		if err != nil {
			return nil, err
		}
		rejected = append(rejected, oversized...)
		if _, err := draft.AddComment(c.Content, images); err != nil {
			return nil, err
		}
	}
	return rejected, nil
}

// draftIntake буферизует файлы формы в черновике тем же путем, что и drop
func (h *TaskHandler) draftIntake(r *http.Request, scope usecase.Scope, draft *usecase.Draft, files []usecase.FileUpload) (usecase.BatchResult, error) {
	if len(files) == 0 {
		return usecase.BatchResult{}, nil
	}
	return h.uploader.Intake(r.Context(), scope, usecase.IntakeTarget{Draft: draft}, files, logProgress)
}

// boardTags - теги, уже встречающиеся на доске, для подбора цвета
func (h *TaskHandler) boardTags(r *http.Request, scope usecase.Scope, boardID string) ([]entity.Tag, error) {
	view, err := h.boardService.GetView(r.Context(), scope, boardID)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	var tags []entity.Tag
	for _, task := range view.Tasks {
		for _, tag := range task.Tags {
			if !seen[tag.Name] {
				seen[tag.Name] = true
				tags = append(tags, tag)
			}
		}
	}
	return tags, nil
}

func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	scope, ok := scopeOf(w, r)
	if !ok {
		return
	}

	task, err := h.taskService.GetTask(r.Context(), scope, chi.URLParam(r, "taskID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, task)
}

// nullableTime различает отсутствие поля и явный null
type nullableTime struct {
	Set   bool
	Value *time.Time
}

func (n *nullableTime) UnmarshalJSON(data []byte) error {
	n.Set = true
	if string(data) == "null" {
		n.Value = nil
		return nil
	}
	var t time.Time
	if err := json.Unmarshal(data, &t); err != nil {
		return err
	}
	n.Value = &t
	return nil
}

type updateTaskRequest struct {
	Title           *string                 `json:"title"`
	Description     *string                 `json:"description"`
	Priority        *string                 `json:"priority"`
	StartDate       nullableTime            `json:"start_date"`
	DueDate         nullableTime            `json:"due_date"`
	DueTime         *string                 `json:"due_time"`
	AssignedMembers *[]string               `json:"assigned_members"`
	AddTags         []string                `json:"add_tags"`
	RemoveTags      []string                `json:"remove_tags"`
	Checklist       *[]entity.ChecklistItem `json:"checklist"`
}

// UpdateTask накладывает патч на форму редактирования и сохраняет только изменения
func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	scope, ok := scopeOf(w, r)
	if !ok {
		return
	}

	var req updateTaskRequest
	if err := decodeJSON(r, &req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	task, err := h.taskService.GetTask(r.Context(), scope, chi.URLParam(r, "taskID"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	draft := usecase.EditDraft(task, nil, h.clock)
	patch := usecase.DraftPatch{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
	}
	if req.StartDate.Set {
		patch.StartDate = &req.StartDate.Value
	}
	if req.DueDate.Set {
		patch.DueDate = &req.DueDate.Value
	}
	draft.Set(patch)

	if req.DueTime != nil {
		if err := draft.SetDueTime(*req.DueTime); err != nil {
			writeError(w, r, err)
			return
		}
	}
	if req.AssignedMembers != nil {
		draft.AssignedMembers = *req.AssignedMembers
	}
	if req.Checklist != nil {
		draft.Checklist = *req.Checklist
	}
	for _, name := range req.RemoveTags {
		draft.RemoveTag(name)
	}
	if len(req.AddTags) > 0 {
		tags, err := h.boardTags(r, scope, task.BoardID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		for _, name := range req.AddTags {
			if err := draft.AddTag(name, tags); err != nil {
				writeError(w, r, err)
				return
			}
		}
	}

	updated, err := h.draftService.Save(r.Context(), scope, draft)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, updated)
}

func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	scope, ok := scopeOf(w, r)
	if !ok {
		return
	}

	if err := h.taskService.DeleteTask(r.Context(), scope, chi.URLParam(r, "taskID")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type feedResponse struct {
	View    string              `json:"view"`
	Entries []usecase.FeedEntry `json:"entries"`
	Hidden  int                 `json:"hidden"`
	Total   int                 `json:"total"`
}

// Feed - лента задачи: view=all|comments|activity, expanded=true показывает все записи
func (h *TaskHandler) Feed(w http.ResponseWriter, r *http.Request) {
	scope, ok := scopeOf(w, r)
	if !ok {
		return
	}

	expanded := false
	if raw := r.URL.Query().Get("expanded"); raw != "" {
		var err error
		if expanded, err = strconv.ParseBool(raw); err != nil {
			http.Error(w, "Invalid expanded flag", http.StatusBadRequest)
			return
		}
	}

	view := strings.ToLower(r.URL.Query().Get("view"))
	if view == "" {
		view = "all"
	}

	feed, err := h.commentService.Feed(r.Context(), scope, chi.URLParam(r, "taskID"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	var entries []usecase.FeedEntry
	switch view {
	case "all":
		entries = feed.All
	case "comments":
		entries = feed.Comments
	case "activity":
		entries = feed.Activity
	default:
		writeError(w, r, fmt.Errorf("%w: unknown feed view %q", entity.ErrInvalidTaskData, view))
		return
	}

	// комментарии показываются всегда целиком, окно только у all и activity
	visible, hidden := entries, 0
	if view != "comments" {
		visible, hidden = usecase.Window(entries, expanded)
	}
	if visible == nil {
		visible = []usecase.FeedEntry{}
	}
	writeJSON(w, r, http.StatusOK, feedResponse{
		View:    view,
		Entries: visible,
		Hidden:  hidden,
		Total:   len(entries),
	})
}
