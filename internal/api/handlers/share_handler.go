package handlers

import (
	"net/http"

	"github.com/St1cky1/kanban-service/internal/entity"
	"github.com/St1cky1/kanban-service/internal/usecase"
	"github.com/go-chi/chi/v5"
)

type ShareHandler struct {
	shareService *usecase.ShareService
}

func NewShareHandler(shareService *usecase.ShareService) *ShareHandler {
	return &ShareHandler{
		shareService: shareService,
	}
}

func (h *ShareHandler) ListShares(w http.ResponseWriter, r *http.Request) {
	scope, ok := scopeOf(w, r)
	if !ok {
		return
	}

	shares, err := h.shareService.ListShares(r.Context(), scope, chi.URLParam(r, "boardID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, shares)
}

func (h *ShareHandler) CreateShare(w http.ResponseWriter, r *http.Request) {
	scope, ok := scopeOf(w, r)
	if !ok {
		return
	}

	// тело необязательно, без него имя будет по дате
	var req entity.CreateShareInput
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &req); err != nil {
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}
	}

	share, err := h.shareService.CreateShare(r.Context(), scope, chi.URLParam(r, "boardID"), &req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, share)
}

func (h *ShareHandler) RevokeShare(w http.ResponseWriter, r *http.Request) {
	scope, ok := scopeOf(w, r)
	if !ok {
		return
	}

	share, err := h.shareService.RevokeShare(r.Context(), scope, chi.URLParam(r, "boardID"), chi.URLParam(r, "shareID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, share)
}

func (h *ShareHandler) DeleteShare(w http.ResponseWriter, r *http.Request) {
	scope, ok := scopeOf(w, r)
	if !ok {
		return
	}

	if err := h.shareService.DeleteShare(r.Context(), scope, chi.URLParam(r, "boardID"), chi.URLParam(r, "shareID")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// PublicBoard - доска по публичной ссылке, без сессии
func (h *ShareHandler) PublicBoard(w http.ResponseWriter, r *http.Request) {
	board, err := h.shareService.PublicView(r.Context(), chi.URLParam(r, "token"), r.URL.Query().Get("q"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, board)
}
