package attendance

import (
	"context"
	"time"
)

// TransitionRow は遷移プリミティブが返す生の行です。信頼せず、
// ParseTransition による検証を経てからシーケンサが利用します。
// Action はプリミティブが更新前の行から決定した今回のアクションで、
// 何も書き込めなかった場合は "none" です。
type TransitionRow struct {
	Action                 string
	RecordID               string
	EmployeeID             string
	RecordDate             time.Time
	FirstCheckInTime       *time.Time
	FirstCheckOutTime      *time.Time
	SecondCheckInTime      *time.Time
	SecondCheckOutTime     *time.Time
	Status                 string
	MinutesLate            int
	BreakDurationMinutes   int
	WorkingDurationMinutes int
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

// Repository は勤怠レコード永続化の抽象です。
type Repository interface {
	// TransitionAttendance は当日のレコードを1段階だけ進めます。
	// 実装は従業員ごとに原子的であることが要求されます。同一従業員への
	// 同時呼び出しは直列化され、勝者のみがシーケンスを進めます。
	// minutesLate は最初のチェックインを記録する場合にのみ適用されます。
	TransitionAttendance(ctx context.Context, employeeID string, now time.Time, minutesLate int) (*TransitionRow, error)

	// FindByEmployeeAndDate は従業員の指定日のレコードを取得します。
	FindByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (*Record, error)
}
