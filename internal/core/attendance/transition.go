package attendance

import (
	"fmt"
	"time"
)

// transitionNone は遷移プリミティブが何も書き込めなかったことを示します。
const transitionNone = "none"

// TransitionResult は検証済みの遷移結果です。
type TransitionResult struct {
	Action       Action
	Record       *Record
	CheckInTime  *time.Time
	CheckOutTime *time.Time
	Sequence     int
}

// ParseTransition は遷移プリミティブの生の行を検証します。プリミティブが
// 申告したアクションに対応するスロットが now で埋まっていることを確認し、
// 矛盾があれば ErrTransitionFailed を返します。アクションが "none" の
// 場合、レコードが終端なら ErrMaxSequenceReached です。
func ParseTransition(row *TransitionRow, now time.Time) (*TransitionResult, error) {
	if row == nil {
		return nil, fmt.Errorf("%w: transition returned no data", ErrTransitionFailed)
	}

	rec, err := recordFromRow(row)
	if err != nil {
		return nil, err
	}

	if err := validateRecord(rec); err != nil {
		return nil, err
	}

	if row.Action == transitionNone || row.Action == "" {
		if rec.IsTerminal() {
			return nil, ErrMaxSequenceReached
		}
		return nil, fmt.Errorf("%w: no timestamp written for this scan", ErrTransitionFailed)
	}

	action := Action(row.Action)
	written := slotFor(rec, action)
	if written == nil {
		return nil, fmt.Errorf("%w: unknown action %q", ErrTransitionFailed, row.Action)
	}
	if !written.Equal(now) {
		return nil, fmt.Errorf("%w: %s slot does not match scan time", ErrTransitionFailed, action)
	}

	result := &TransitionResult{
		Action:   action,
		Record:   rec,
		Sequence: rec.SequenceNumber(),
	}

	switch action {
	case ActionFirstCheckIn, ActionFirstCheckOut:
		result.CheckInTime = rec.FirstCheckInTime
		result.CheckOutTime = rec.FirstCheckOutTime
	case ActionSecondCheckIn, ActionSecondCheckOut:
		result.CheckInTime = rec.SecondCheckInTime
		result.CheckOutTime = rec.SecondCheckOutTime
	}

	return result, nil
}

func recordFromRow(row *TransitionRow) (*Record, error) {
	status := RecordStatus(row.Status)
	switch status {
	case StatusPresent, StatusLate, StatusHalfDay:
	default:
		return nil, fmt.Errorf("%w: unknown status %q", ErrTransitionFailed, row.Status)
	}

	if row.MinutesLate < 0 || row.BreakDurationMinutes < 0 || row.WorkingDurationMinutes < 0 {
		return nil, fmt.Errorf("%w: negative duration", ErrTransitionFailed)
	}

	return &Record{
		ID:                     row.RecordID,
		EmployeeID:             row.EmployeeID,
		RecordDate:             row.RecordDate,
		FirstCheckInTime:       row.FirstCheckInTime,
		FirstCheckOutTime:      row.FirstCheckOutTime,
		SecondCheckInTime:      row.SecondCheckInTime,
		SecondCheckOutTime:     row.SecondCheckOutTime,
		Status:                 status,
		MinutesLate:            row.MinutesLate,
		BreakDurationMinutes:   row.BreakDurationMinutes,
		WorkingDurationMinutes: row.WorkingDurationMinutes,
		CreatedAt:              row.CreatedAt,
		UpdatedAt:              row.UpdatedAt,
	}, nil
}

// validateRecord はレコードの不変条件を確認します。タイムスタンプは
// 打刻順にのみ埋まり、各チェックアウトは対となるチェックインより
// 厳密に後でなければなりません。
func validateRecord(rec *Record) error {
	stamps := []*time.Time{rec.FirstCheckInTime, rec.FirstCheckOutTime, rec.SecondCheckInTime, rec.SecondCheckOutTime}

	seenNil := false
	for _, ts := range stamps {
		if ts == nil {
			seenNil = true
			continue
		}
		if seenNil {
			return fmt.Errorf("%w: timestamps populated out of order", ErrTransitionFailed)
		}
	}

	if rec.FirstCheckOutTime != nil && !rec.FirstCheckOutTime.After(*rec.FirstCheckInTime) {
		return fmt.Errorf("%w: first check-out not after check-in", ErrTransitionFailed)
	}
	if rec.SecondCheckInTime != nil && rec.SecondCheckInTime.Before(*rec.FirstCheckOutTime) {
		return fmt.Errorf("%w: second check-in before first check-out", ErrTransitionFailed)
	}
	if rec.SecondCheckOutTime != nil && !rec.SecondCheckOutTime.After(*rec.SecondCheckInTime) {
		return fmt.Errorf("%w: second check-out not after check-in", ErrTransitionFailed)
	}

	return nil
}

// slotFor は申告されたアクションに対応するタイムスタンプを返します。
func slotFor(rec *Record, action Action) *time.Time {
	switch action {
	case ActionFirstCheckIn:
		return rec.FirstCheckInTime
	case ActionFirstCheckOut:
		return rec.FirstCheckOutTime
	case ActionSecondCheckIn:
		return rec.SecondCheckInTime
	case ActionSecondCheckOut:
		return rec.SecondCheckOutTime
	default:
		return nil
	}
}
