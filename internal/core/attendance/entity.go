package attendance

import "time"

// State は1日の打刻レコードの進行状態を表します。
type State string

const (
	StateNotCheckedIn     State = "not_checked_in"
	StateFirstCheckedIn   State = "first_checked_in"
	StateFirstCheckedOut  State = "first_checked_out"
	StateSecondCheckedIn  State = "second_checked_in"
	StateSecondCheckedOut State = "second_checked_out"
)

// Action は1回のスキャンで実行される打刻操作を表します。
type Action string

const (
	ActionFirstCheckIn   Action = "first_check_in"
	ActionFirstCheckOut  Action = "first_check_out"
	ActionSecondCheckIn  Action = "second_check_in"
	ActionSecondCheckOut Action = "second_check_out"
)

// IsCheckIn はチェックイン系のアクションかどうかを返します。
func (a Action) IsCheckIn() bool {
	return a == ActionFirstCheckIn || a == ActionSecondCheckIn
}

// RecordStatus は当日の勤怠区分です。minutes_late を正とし、
// ここから一意に導出されます(独立に設定されることはありません)。
type RecordStatus string

const (
	StatusPresent RecordStatus = "present"
	StatusLate    RecordStatus = "late"
	StatusHalfDay RecordStatus = "half_day"
)

// StatusFor は遅刻分数から勤怠区分を導出する唯一の写像です。
// half_day は片セッションのまま締められたレコードに外部のレポート
// コラボレータが付与する区分で、本コアは境界の検証で受理するのみです。
func StatusFor(minutesLate int) RecordStatus {
	if minutesLate > 0 {
		return StatusLate
	}
	return StatusPresent
}

// maxSequence は1日に記録できる打刻数の上限です。
const maxSequence = 4

// Record は従業員・日付ごとに一意な勤怠レコードです。
// 4つのタイムスタンプは打刻順にのみ埋まり、埋まった数が
// シーケンス番号になります。
type Record struct {
	ID                     string
	EmployeeID             string
	RecordDate             time.Time
	FirstCheckInTime       *time.Time
	FirstCheckOutTime      *time.Time
	SecondCheckInTime      *time.Time
	SecondCheckOutTime     *time.Time
	Status                 RecordStatus
	MinutesLate            int
	BreakDurationMinutes   int
	WorkingDurationMinutes int
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

// SequenceNumber は埋まっているタイムスタンプの数(0〜4)を返します。
func (r *Record) SequenceNumber() int {
	if r == nil {
		return 0
	}

	count := 0
	for _, ts := range []*time.Time{r.FirstCheckInTime, r.FirstCheckOutTime, r.SecondCheckInTime, r.SecondCheckOutTime} {
		if ts != nil {
			count++
		}
	}
	return count
}

// CurrentState はシーケンス番号に対応する進行状態を返します。
// nil レシーバは当日未打刻として扱います。
func (r *Record) CurrentState() State {
	switch r.SequenceNumber() {
	case 1:
		return StateFirstCheckedIn
	case 2:
		return StateFirstCheckedOut
	case 3:
		return StateSecondCheckedIn
	case 4:
		return StateSecondCheckedOut
	default:
		return StateNotCheckedIn
	}
}

// NextAction は次のスキャンで実行されるアクションを返します。
// レコードが終端(シーケンス4)に達している場合は false を返します。
func (r *Record) NextAction() (Action, bool) {
	switch r.SequenceNumber() {
	case 0:
		return ActionFirstCheckIn, true
	case 1:
		return ActionFirstCheckOut, true
	case 2:
		return ActionSecondCheckIn, true
	case 3:
		return ActionSecondCheckOut, true
	default:
		return "", false
	}
}

// IsTerminal はレコードが当日の打刻を使い切ったかどうかを返します。
func (r *Record) IsTerminal() bool {
	return r.SequenceNumber() >= maxSequence
}
