package repository

import (
	"context"

	"github.com/St1cky1/kanban-service/internal/entity"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type TimerRepository struct {
	db *pgxpool.Pool
}

func NewTimerRepository(db *pgxpool.Pool) *TimerRepository {
	return &TimerRepository{
		db: db,
	}
}

// Get - таймер задачи. Если записи еще нет, возвращается остановленный таймер с нулем.
func (r *TimerRepository) Get(ctx context.Context, taskID string) (*entity.TimeTracking, error) {
	query := `
	SELECT total_seconds, is_running, current_start_time, hourly_rate, rounding_option,
	       started_by_id, started_by_name, started_by_image
	FROM task_timers
	WHERE task_id = $1
	`

	tracking, err := scanTimer(r.db.QueryRow(ctx, query, taskID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return &entity.TimeTracking{Rounding: entity.RoundingNone}, nil
		}
		return nil, err
	}

	return tracking, nil
}

// Save - создает или обновляет таймер задачи
func (r *TimerRepository) Save(ctx context.Context, taskID string, tracking *entity.TimeTracking) (*entity.TimeTracking, error) {
	query := `
	INSERT INTO task_timers (task_id, total_seconds, is_running, current_start_time, hourly_rate,
	                         rounding_option, started_by_id, started_by_name, started_by_image)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	ON CONFLICT (task_id) DO UPDATE SET
	    total_seconds = $2,
	    is_running = $3,
	    current_start_time = $4,
	    hourly_rate = $5,
	    rounding_option = $6,
	    started_by_id = $7,
	    started_by_name = $8,
	    started_by_image = $9,
	    updated_at = CURRENT_TIMESTAMP
	RETURNING total_seconds, is_running, current_start_time, hourly_rate, rounding_option,
	          started_by_id, started_by_name, started_by_image
	`

	var startedByID, startedName, startedImg *string
	if tracking.StartedBy != nil {
		startedByID = &tracking.StartedBy.ID
		startedName = &tracking.StartedBy.Name
		startedImg = &tracking.StartedBy.Image
	}

	rounding := tracking.Rounding
	if rounding == "" {
		rounding = entity.RoundingNone
	}

	return scanTimer(r.db.QueryRow(ctx, query,
		taskID,
		tracking.TotalSeconds,
		tracking.IsRunning,
		tracking.CurrentStartTime,
		tracking.HourlyRate,
		string(rounding),
		startedByID,
		startedName,
		startedImg,
	))
}

func scanTimer(row rowScanner) (*entity.TimeTracking, error) {
	var (
		tracking    entity.TimeTracking
		total       *int64
		running     *bool
		rounding    *string
		startedByID *string
		startedName *string
		startedImg  *string
	)

	err := row.Scan(
		&total,
		&running,
		&tracking.CurrentStartTime,
		&tracking.HourlyRate,
		&rounding,
		&startedByID,
		&startedName,
		&startedImg,
	)
	if err != nil {
		return nil, err
	}

	fillTimeTracking(&tracking, total, running, rounding, startedByID, startedName, startedImg)
	return &tracking, nil
}
