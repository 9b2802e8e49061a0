package handlers

import (
	"net/http"

	"github.com/St1cky1/kanban-service/internal/usecase"
	"github.com/go-chi/chi/v5"
)

const (
	sourceDrop  = "drop"
	sourcePaste = "paste"
)

type AttachmentHandler struct {
	taskService *usecase.TaskService
	uploader    *usecase.AttachmentUploader
	limits      UploadLimits
}

func NewAttachmentHandler(taskService *usecase.TaskService, uploader *usecase.AttachmentUploader, limits UploadLimits) *AttachmentHandler {
	return &AttachmentHandler{
		taskService: taskService,
		uploader:    uploader,
		limits:      limits.withDefaults(),
	}
}

// Upload принимает файлы перетаскивания или вставки из буфера.
// Из вставки берутся только картинки.
func (h *AttachmentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	scope, ok := scopeOf(w, r)
	if !ok {
		return
	}

	if !parseMultipart(w, r, h.limits) || tooManyFiles(w, r, h.limits) {
		return
	}
	files, rejected, err := readFiles(r, "files", h.limits)
	if err != nil {
		http.Error(w, "Invalid file", http.StatusBadRequest)
		return
	}

	policy := usecase.DocumentPolicy
	switch r.FormValue("source") {
	case "", sourceDrop:
	case sourcePaste:
		files = usecase.FromPaste(files)
		policy = usecase.ImagePolicy
	default:
		http.Error(w, "Invalid source", http.StatusBadRequest)
		return
	}
	if len(files) == 0 && len(rejected) == 0 {
		http.Error(w, "No files in request", http.StatusBadRequest)
		return
	}
	announceRejected(scope, rejected)

	task, err := h.taskService.GetTask(r.Context(), scope, chi.URLParam(r, "taskID"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	result, err := h.uploader.Intake(r.Context(), scope, usecase.IntakeTarget{Task: task, Policy: policy}, files, logProgress)
	if err != nil {
		writeError(w, r, err)
		return
	}
	result.Rejected = append(rejected, result.Rejected...)
	writeJSON(w, r, http.StatusOK, result)
}

func (h *AttachmentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	scope, ok := scopeOf(w, r)
	if !ok {
		return
	}

	task, err := h.taskService.GetTask(r.Context(), scope, chi.URLParam(r, "taskID"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.uploader.DeleteTaskAttachment(r.Context(), scope, task, chi.URLParam(r, "attachmentID")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
