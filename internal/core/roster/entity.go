package roster

import (
	"fmt"
	"time"
)

// timeOfDayLayout は start_time / end_time の "HH:MM" 形式です。
const timeOfDayLayout = "15:04"

// Roster は勤務シフトエンティティです。シフトの管理は外部コラボレータが
// 行い、本コアからは参照のみを行います。
type Roster struct {
	ID                      string
	Name                    string
	StartTime               string
	EndTime                 string
	BreakDurationMinutes    int
	GracePeriodMinutes      int
	EarlyDepartureThreshold int
	Active                  bool
	CreatedAt               time.Time
	UpdatedAt               time.Time
}

// Schedule は特定日の勤務予定を絶対時刻に解決したものです。
type Schedule struct {
	Start               time.Time
	End                 time.Time
	Grace               time.Duration
	EarlyDeparture      time.Duration
	BreakDuration       time.Duration
	ExpectedWorkMinutes int
}

// ScheduleFor はロスターの "HH:MM" 設定を指定日の絶対時刻へ解決します。
func (r *Roster) ScheduleFor(date time.Time) (*Schedule, error) {
	start, err := resolveTimeOfDay(r.StartTime, date)
	if err != nil {
		return nil, fmt.Errorf("roster %s: start_time: %w", r.ID, err)
	}

	end, err := resolveTimeOfDay(r.EndTime, date)
	if err != nil {
		return nil, fmt.Errorf("roster %s: end_time: %w", r.ID, err)
	}

	expected := int(end.Sub(start).Minutes()) - r.BreakDurationMinutes
	if expected < 0 {
		expected = 0
	}

	return &Schedule{
		Start:               start,
		End:                 end,
		Grace:               time.Duration(r.GracePeriodMinutes) * time.Minute,
		EarlyDeparture:      time.Duration(r.EarlyDepartureThreshold) * time.Minute,
		BreakDuration:       time.Duration(r.BreakDurationMinutes) * time.Minute,
		ExpectedWorkMinutes: expected,
	}, nil
}

// resolveTimeOfDay は "HH:MM" を date と同じ日・同じタイムゾーンの時刻にします。
func resolveTimeOfDay(value string, date time.Time) (time.Time, error) {
	parsed, err := time.Parse(timeOfDayLayout, value)
	if err != nil {
		return time.Time{}, ErrInvalidTimeOfDay
	}

	return time.Date(date.Year(), date.Month(), date.Day(), parsed.Hour(), parsed.Minute(), 0, 0, date.Location()), nil
}

// DefaultSchedule はロスター未割当の従業員に適用される組織既定の勤務予定です。
// 猶予時間ゼロ、既定の始業時刻のみを持ちます。
func DefaultSchedule(startTime string, date time.Time) (*Schedule, error) {
	start, err := resolveTimeOfDay(startTime, date)
	if err != nil {
		return nil, fmt.Errorf("default start_time: %w", err)
	}

	return &Schedule{Start: start}, nil
}
