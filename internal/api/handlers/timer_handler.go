package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/St1cky1/kanban-service/internal/entity"
	"github.com/St1cky1/kanban-service/internal/usecase"
	"github.com/go-chi/chi/v5"
	"github.com/jonboulle/clockwork"
	"github.com/tmaxmax/go-sse"
)

type TimerHandler struct {
	timerService *usecase.TimerService
	clock        clockwork.Clock
}

func NewTimerHandler(timerService *usecase.TimerService, clk clockwork.Clock) *TimerHandler {
	return &TimerHandler{
		timerService: timerService,
		clock:        clk,
	}
}

type timerResponse struct {
	TimeTracking *entity.TimeTracking  `json:"time_tracking"`
	Snapshot     usecase.TimerSnapshot `json:"snapshot"`
}

type timerAction func(ctx context.Context, scope usecase.Scope, taskID string) (*entity.TimeTracking, error)

func (h *TimerHandler) handle(action timerAction) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scope, ok := scopeOf(w, r)
		if !ok {
			return
		}

		taskID := chi.URLParam(r, "taskID")
		tracking, err := action(r.Context(), scope, taskID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		h.respond(w, r, taskID, tracking)
	}
}

func (h *TimerHandler) respond(w http.ResponseWriter, r *http.Request, taskID string, tracking *entity.TimeTracking) {
	writeJSON(w, r, http.StatusOK, timerResponse{
		TimeTracking: tracking,
		Snapshot:     usecase.Snapshot(taskID, *tracking, h.clock.Now()),
	})
}

func (h *TimerHandler) Start(w http.ResponseWriter, r *http.Request) {
	h.handle(h.timerService.Start)(w, r)
}

func (h *TimerHandler) Stop(w http.ResponseWriter, r *http.Request) {
	h.handle(h.timerService.Stop)(w, r)
}

func (h *TimerHandler) Reset(w http.ResponseWriter, r *http.Request) {
	h.handle(h.timerService.Reset)(w, r)
}

type timerSettingsRequest struct {
	HourlyRate *float64 `json:"hourly_rate"`
	Rounding   string   `json:"rounding"`
}

func (h *TimerHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	scope, ok := scopeOf(w, r)
	if !ok {
		return
	}

	var req timerSettingsRequest
	if err := decodeJSON(r, &req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	taskID := chi.URLParam(r, "taskID")
	tracking, err := h.timerService.UpdateSettings(r.Context(), scope, taskID, req.HourlyRate, req.Rounding)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.respond(w, r, taskID, tracking)
}

// Stream - SSE поток состояния таймера, событие tick раз в секунду пока таймер идет.
// Остановленный таймер отдает одно событие и закрывает поток.
func (h *TimerHandler) Stream(w http.ResponseWriter, r *http.Request) {
	scope, ok := scopeOf(w, r)
	if !ok {
		return
	}

	taskID := chi.URLParam(r, "taskID")
	tracking, err := h.timerService.Get(r.Context(), scope, taskID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	sess, err := sse.Upgrade(w, r)
	if err != nil {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Cache-Control", "no-cache")

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	h.timerService.Watch(ctx, taskID, *tracking, func(snap usecase.TimerSnapshot) {
		data, err := json.Marshal(snap)
		if err != nil {
			return
		}
		msg := &sse.Message{Type: tickEvent}
		msg.AppendData(string(data))
		if err := sess.Send(msg); err != nil {
			cancel()
			return
		}
		if err := sess.Flush(); err != nil {
			cancel()
		}
	})
}

var tickEvent = sse.Type("tick")
