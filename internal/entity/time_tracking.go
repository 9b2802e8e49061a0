package entity

import (
	"fmt"
	"math"
	"time"
)

type RoundingPolicy string

const (
	RoundingNone RoundingPolicy = "none"
	RoundingUp   RoundingPolicy = "up"
	RoundingDown RoundingPolicy = "down"
)

func ParseRounding(raw string) (RoundingPolicy, error) {
	switch RoundingPolicy(raw) {
	case "", RoundingNone:
		return RoundingNone, nil
	case RoundingUp:
		return RoundingUp, nil
	case RoundingDown:
		return RoundingDown, nil
	default:
		return RoundingNone, ErrInvalidRounding
	}
}

// TimeTracking - учет времени задачи.
// Пока таймер запущен: elapsed = TotalSeconds + (now - CurrentStartTime).
type TimeTracking struct {
	TotalSeconds     int64          `json:"total_seconds"`
	IsRunning        bool           `json:"is_running"`
	CurrentStartTime *time.Time     `json:"current_start_time,omitempty"`
	HourlyRate       *float64       `json:"hourly_rate,omitempty"`
	Rounding         RoundingPolicy `json:"rounding_option"`
	StartedBy        *Member        `json:"started_by,omitempty"`
}

// Elapsed считается от текущего времени каждый раз, не кешируется.
// Отрицательная разница (рассинхрон часов) отбрасывается.
func (t TimeTracking) Elapsed(now time.Time) int64 {
	total := t.TotalSeconds
	if t.IsRunning && t.CurrentStartTime != nil {
		if delta := int64(now.Sub(*t.CurrentStartTime) / time.Second); delta > 0 {
			total += delta
		}
	}
	if total < 0 {
		return 0
	}
	return total
}

// BillableAmount - сумма к оплате за elapsed секунд с учетом политики округления.
// false если ставка не задана или времени нет.
func (t TimeTracking) BillableAmount(elapsed int64) (float64, bool) {
	if t.HourlyRate == nil || elapsed <= 0 {
		return 0, false
	}

	hours := float64(elapsed) / 3600
	switch t.Rounding {
	case RoundingUp:
		hours = math.Ceil(hours)
	case RoundingDown:
		hours = math.Floor(hours)
	}

	rate := *t.HourlyRate
	return math.Round(hours*rate*100) / 100, true
}

func FormatAmount(amount float64) string {
	return fmt.Sprintf("%.2f", amount)
}

// FormatElapsed - формат H:MM:SS
func FormatElapsed(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d:%02d", seconds/3600, (seconds%3600)/60, seconds%60)
}
