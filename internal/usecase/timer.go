package usecase

import (
	"context"
	"log"
	"time"

	"github.com/St1cky1/kanban-service/internal/entity"
	"github.com/St1cky1/kanban-service/internal/repository"
	"github.com/jonboulle/clockwork"
)

// TickInterval - как часто обновляется отображение запущенного таймера
const TickInterval = time.Second

// TimerSnapshot - состояние таймера на момент тика
type TimerSnapshot struct {
	TaskID    string    `json:"task_id"`
	Elapsed   int64     `json:"elapsed_seconds"`
	Display   string    `json:"display"`
	IsRunning bool      `json:"is_running"`
	Amount    string    `json:"amount,omitempty"`
	At        time.Time `json:"at"`
}

func Snapshot(taskID string, t entity.TimeTracking, now time.Time) TimerSnapshot {
	elapsed := t.Elapsed(now)
	snap := TimerSnapshot{
		TaskID:    taskID,
		Elapsed:   elapsed,
		Display:   entity.FormatElapsed(elapsed),
		IsRunning: t.IsRunning,
		At:        now,
	}
	if amount, ok := t.BillableAmount(elapsed); ok {
		snap.Amount = entity.FormatAmount(amount)
	}
	return snap
}

type TimerService struct {
	taskRepo  repository.ITaskRepository
	timerRepo repository.ITimerRepository
	cache     BoardViewCache
	clock     clockwork.Clock
}

func NewTimerService(
	taskRepo repository.ITaskRepository,
	timerRepo repository.ITimerRepository,
	cache BoardViewCache,
	clk clockwork.Clock,
) *TimerService {
	return &TimerService{
		taskRepo:  taskRepo,
		timerRepo: timerRepo,
		cache:     cache,
		clock:     clk,
	}
}

func (s *TimerService) Get(ctx context.Context, scope Scope, taskID string) (*entity.TimeTracking, error) {
	_, tracking, err := s.load(ctx, scope, taskID)
	return tracking, err
}

// Start запускает таймер и запоминает, кто его запустил
func (s *TimerService) Start(ctx context.Context, scope Scope, taskID string) (*entity.TimeTracking, error) {
	task, current, err := s.load(ctx, scope, taskID)
	if err != nil {
		return nil, err
	}
	if current.IsRunning {
		return nil, entity.ErrTimerAlreadyRunning
	}

	now := s.clock.Now()
	next := *current
	next.IsRunning = true
	next.CurrentStartTime = &now
	next.StartedBy = &entity.Member{
		ID:    scope.User.ID,
		Name:  scope.User.DisplayName(),
		Image: scope.User.Image,
	}

	return s.save(ctx, scope, task, &next, "Failed to start timer")
}

// Stop прибавляет прошедшее время к накопленному
func (s *TimerService) Stop(ctx context.Context, scope Scope, taskID string) (*entity.TimeTracking, error) {
	task, current, err := s.load(ctx, scope, taskID)
	if err != nil {
		return nil, err
	}
	if !current.IsRunning {
		return nil, entity.ErrTimerNotRunning
	}

	next := *current
	next.TotalSeconds = current.Elapsed(s.clock.Now())
	next.IsRunning = false
	next.CurrentStartTime = nil
	next.StartedBy = nil

	return s.save(ctx, scope, task, &next, "Failed to stop timer")
}

// Reset обнуляет накопленное время. Запущенный таймер сначала надо остановить.
func (s *TimerService) Reset(ctx context.Context, scope Scope, taskID string) (*entity.TimeTracking, error) {
	task, current, err := s.load(ctx, scope, taskID)
	if err != nil {
		return nil, err
	}
	if current.IsRunning {
		return nil, entity.ErrTimerRunning
	}

	next := *current
	next.TotalSeconds = 0

	return s.save(ctx, scope, task, &next, "Failed to reset timer")
}

// UpdateSettings заменяет ставку и политику округления. nil ставка убирает расчет суммы.
func (s *TimerService) UpdateSettings(ctx context.Context, scope Scope, taskID string, rate *float64, rounding string) (*entity.TimeTracking, error) {
	if rate != nil && *rate < 0 {
		return nil, entity.ErrInvalidHourlyRate
	}
	policy, err := entity.ParseRounding(rounding)
	if err != nil {
		return nil, err
	}

	task, current, err := s.load(ctx, scope, taskID)
	if err != nil {
		return nil, err
	}

	next := *current
	next.HourlyRate = rate
	next.Rounding = policy

	return s.save(ctx, scope, task, &next, "Failed to update timer settings")
}

// Watch отдает снимок сразу и потом раз в секунду, пока таймер запущен.
// На каждом тике состояние перечитывается: если таймер остановили или перезапустили
// в другом месте, уходит последний снимок сохраненного состояния и Watch возвращается.
// Возвращается и при отмене ctx. Для остановленного таймера тиков нет.
func (s *TimerService) Watch(ctx context.Context, taskID string, tracking entity.TimeTracking, onTick func(TimerSnapshot)) {
	if !tracking.IsRunning {
		onTick(Snapshot(taskID, tracking, s.clock.Now()))
		return
	}

	ticker := s.clock.NewTicker(TickInterval)
	defer ticker.Stop()

	onTick(Snapshot(taskID, tracking, s.clock.Now()))

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			current, err := s.timerRepo.Get(ctx, taskID)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				log.Printf("⚠️  Не удалось перечитать таймер задачи %s: %v", taskID, err)
				continue
			}
			if current == nil {
				current = &entity.TimeTracking{}
			}
			if !sameRun(tracking, *current) {
				onTick(Snapshot(taskID, *current, s.clock.Now()))
				return
			}
			tracking = *current
			onTick(Snapshot(taskID, tracking, s.clock.Now()))
		}
	}
}

// sameRun - тот же самый запуск таймера, а не остановка или новый старт
func sameRun(watched, current entity.TimeTracking) bool {
	if !current.IsRunning || current.CurrentStartTime == nil || watched.CurrentStartTime == nil {
		return false
	}
	return current.CurrentStartTime.Equal(*watched.CurrentStartTime)
}

func (s *TimerService) load(ctx context.Context, scope Scope, taskID string) (*entity.Task, *entity.TimeTracking, error) {
	task, err := s.taskRepo.GetByID(ctx, scope.WorkspaceID, taskID)
	if err != nil {
		return nil, nil, err
	}
	if task == nil {
		return nil, nil, entity.ErrTaskNotFound
	}

	tracking, err := s.timerRepo.Get(ctx, taskID)
	if err != nil {
		return nil, nil, err
	}
	return task, tracking, nil
}

// save - при ошибке состояние не меняется, пользователь получает уведомление
func (s *TimerService) save(ctx context.Context, scope Scope, task *entity.Task, next *entity.TimeTracking, failure string) (*entity.TimeTracking, error) {
	saved, err := s.timerRepo.Save(ctx, task.ID, next)
	if err != nil {
		scope.fail(failure, err)
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, task.BoardID); err != nil {
			log.Printf("⚠️  Не удалось сбросить кеш доски %s: %v", task.BoardID, err)
		}
	}
	return saved, nil
}
