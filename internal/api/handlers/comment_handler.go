package handlers

import (
	"net/http"

	"github.com/St1cky1/kanban-service/internal/entity"
	"github.com/St1cky1/kanban-service/internal/usecase"
	"github.com/go-chi/chi/v5"
)

type CommentHandler struct {
	commentService *usecase.CommentService
	limits         UploadLimits
}

func NewCommentHandler(commentService *usecase.CommentService, limits UploadLimits) *CommentHandler {
	return &CommentHandler{
		commentService: commentService,
		limits:         limits.withDefaults(),
	}
}

// CreateComment - multipart с полями content и images, либо JSON {content}
func (h *CommentHandler) CreateComment(w http.ResponseWriter, r *http.Request) {
	scope, ok := scopeOf(w, r)
	if !ok {
		return
	}

	var content string
	var images []usecase.FileUpload
	if isMultipart(r) {
		if !parseMultipart(w, r, h.limits) || tooManyFiles(w, r, h.limits) {
			return
		}
		content = r.FormValue("content")
		var rejected []usecase.FileError
		var err error
		if images, rejected, err = readFiles(r, "images", h.limits); err != nil {
			http.Error(w, "Invalid file", http.StatusBadRequest)
			return
		}
		announceRejected(scope, rejected)
	} else {
		var req commentRequest
		if err := decodeJSON(r, &req); err != nil {
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}
		content = req.Content
	}

	comment, err := h.commentService.Submit(r.Context(), scope, chi.URLParam(r, "taskID"), content, images, logProgress)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, comment)
}

type commentRequest struct {
	Content string `json:"content"`
}

func (h *CommentHandler) UpdateComment(w http.ResponseWriter, r *http.Request) {
	scope, ok := scopeOf(w, r)
	if !ok {
		return
	}

	var req commentRequest
	if err := decodeJSON(r, &req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	comment, err := h.commentService.Update(r.Context(), scope, chi.URLParam(r, "taskID"), chi.URLParam(r, "commentID"), req.Content)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, comment)
}

func (h *CommentHandler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	scope, ok := scopeOf(w, r)
	if !ok {
		return
	}

	if err := h.commentService.Delete(r.Context(), scope, chi.URLParam(r, "taskID"), chi.URLParam(r, "commentID")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type commentImagesResponse struct {
	Comment *entity.Comment     `json:"comment"`
	Result  usecase.BatchResult `json:"result"`
}

func (h *CommentHandler) AddImages(w http.ResponseWriter, r *http.Request) {
	scope, ok := scopeOf(w, r)
	if !ok {
		return
	}

	if !parseMultipart(w, r, h.limits) || tooManyFiles(w, r, h.limits) {
		return
	}
	images, rejected, err := readFiles(r, "images", h.limits)
	if err != nil || len(images)+len(rejected) == 0 {
		http.Error(w, "No images in request", http.StatusBadRequest)
		return
	}
	announceRejected(scope, rejected)

	comment, result, err := h.commentService.AddImages(r.Context(), scope, chi.URLParam(r, "taskID"), chi.URLParam(r, "commentID"), images, logProgress)
	if err != nil {
		writeError(w, r, err)
		return
	}
	result.Rejected = append(rejected, result.Rejected...)
	writeJSON(w, r, http.StatusOK, commentImagesResponse{Comment: comment, Result: result})
}

func (h *CommentHandler) DeleteImage(w http.ResponseWriter, r *http.Request) {
	scope, ok := scopeOf(w, r)
	if !ok {
		return
	}

	err := h.commentService.RemoveImage(r.Context(), scope,
		chi.URLParam(r, "taskID"), chi.URLParam(r, "commentID"), chi.URLParam(r, "imageID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
