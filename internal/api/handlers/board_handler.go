package handlers

import (
	"net/http"

	"github.com/St1cky1/kanban-service/internal/entity"
	"github.com/St1cky1/kanban-service/internal/usecase"
	"github.com/go-chi/chi/v5"
	"github.com/jonboulle/clockwork"
)

type BoardHandler struct {
	boardService *usecase.BoardService
	clock        clockwork.Clock
}

func NewBoardHandler(boardService *usecase.BoardService, clk clockwork.Clock) *BoardHandler {
	return &BoardHandler{
		boardService: boardService,
		clock:        clk,
	}
}

type boardResponse struct {
	*entity.BoardView
	Groups []usecase.ColumnGroup `json:"groups"`
}

// GetBoard отдает доску и раскладку списочного вида.
// Свернутость колонок клиент передает в collapsed= и expanded=, поиск по задачам в q=.
func (h *BoardHandler) GetBoard(w http.ResponseWriter, r *http.Request) {
	scope, ok := scopeOf(w, r)
	if !ok {
		return
	}

	view, err := h.boardService.GetView(r.Context(), scope, chi.URLParam(r, "boardID"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	if q := r.URL.Query().Get("q"); q != "" {
		filtered := *view
		filtered.Tasks = usecase.FilterTasks(view.Tasks, q)
		view = &filtered
	}

	state := usecase.NewCollapseState(h.clock)
	defer state.Close()
	for _, id := range splitList(r.URL.Query().Get("collapsed")) {
		state.Set(id, true)
	}
	for _, id := range splitList(r.URL.Query().Get("expanded")) {
		state.Set(id, false)
	}

	writeJSON(w, r, http.StatusOK, boardResponse{
		BoardView: view,
		Groups:    usecase.GroupByColumn(view, state),
	})
}

type moveTaskRequest struct {
	ColumnID string `json:"columnId"`
}

func (h *BoardHandler) MoveTask(w http.ResponseWriter, r *http.Request) {
	scope, ok := scopeOf(w, r)
	if !ok {
		return
	}

	var req moveTaskRequest
	if err := decodeJSON(r, &req); err != nil || req.ColumnID == "" {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	view, err := h.boardService.MoveTask(r.Context(), scope, chi.URLParam(r, "boardID"), chi.URLParam(r, "taskID"), req.ColumnID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, view)
}

func (h *BoardHandler) ListBoards(w http.ResponseWriter, r *http.Request) {
	scope, ok := scopeOf(w, r)
	if !ok {
		return
	}

	boards, err := h.boardService.ListBoards(r.Context(), scope)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, boards)
}

func (h *BoardHandler) CreateBoard(w http.ResponseWriter, r *http.Request) {
	scope, ok := scopeOf(w, r)
	if !ok {
		return
	}

	var req entity.CreateBoardInput
	if err := decodeJSON(r, &req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	board, err := h.boardService.CreateBoard(r.Context(), scope, &req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, board)
}

func (h *BoardHandler) UpdateBoard(w http.ResponseWriter, r *http.Request) {
	scope, ok := scopeOf(w, r)
	if !ok {
		return
	}

	var req entity.UpdateBoardInput
	if err := decodeJSON(r, &req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	board, err := h.boardService.UpdateBoard(r.Context(), scope, chi.URLParam(r, "boardID"), &req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, board)
}

func (h *BoardHandler) DeleteBoard(w http.ResponseWriter, r *http.Request) {
	scope, ok := scopeOf(w, r)
	if !ok {
		return
	}

	if err := h.boardService.DeleteBoard(r.Context(), scope, chi.URLParam(r, "boardID")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *BoardHandler) CreateColumn(w http.ResponseWriter, r *http.Request) {
	scope, ok := scopeOf(w, r)
	if !ok {
		return
	}

	var req entity.ColumnInput
	if err := decodeJSON(r, &req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	column, err := h.boardService.CreateColumn(r.Context(), scope, chi.URLParam(r, "boardID"), &req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, column)
}

func (h *BoardHandler) UpdateColumn(w http.ResponseWriter, r *http.Request) {
	scope, ok := scopeOf(w, r)
	if !ok {
		return
	}

	var req entity.UpdateColumnInput
	if err := decodeJSON(r, &req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	column, err := h.boardService.UpdateColumn(r.Context(), scope, chi.URLParam(r, "boardID"), chi.URLParam(r, "columnID"), &req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, column)
}

// DeleteColumn - колонку с задачами удаляет только с move_to=<columnID>
func (h *BoardHandler) DeleteColumn(w http.ResponseWriter, r *http.Request) {
	scope, ok := scopeOf(w, r)
	if !ok {
		return
	}

	err := h.boardService.DeleteColumn(r.Context(), scope,
		chi.URLParam(r, "boardID"),
		chi.URLParam(r, "columnID"),
		r.URL.Query().Get("move_to"),
	)
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type reorderColumnsRequest struct {
	Order []string `json:"order"`
}

func (h *BoardHandler) ReorderColumns(w http.ResponseWriter, r *http.Request) {
	scope, ok := scopeOf(w, r)
	if !ok {
		return
	}

	var req reorderColumnsRequest
	if err := decodeJSON(r, &req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	board, err := h.boardService.ReorderColumns(r.Context(), scope, chi.URLParam(r, "boardID"), req.Order)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, board)
}
