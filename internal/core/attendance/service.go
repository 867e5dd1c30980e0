package attendance

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Kalpa111334/qr-with-dutch/internal/core/employee"
	"github.com/Kalpa111334/qr-with-dutch/internal/core/roster"
)

// Clock は現在時刻を提供します。
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now().UTC()
}

// TransactionManager はトランザクション制御の抽象化です。
type TransactionManager interface {
	WithinReadOnly(ctx context.Context, fn func(context.Context) error) error
	WithinReadWrite(ctx context.Context, fn func(context.Context) error) error
}

type noopTransactionManager struct{}

func (noopTransactionManager) WithinReadOnly(ctx context.Context, fn func(context.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

func (noopTransactionManager) WithinReadWrite(ctx context.Context, fn func(context.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

// defaultStartTime はロスター未割当の従業員に適用される組織既定の
// 始業時刻です(猶予ゼロ)。
const defaultStartTime = "09:00"

// Service は打刻シーケンサのユースケースをまとめます。当日レコードの
// 読み書きは遷移プリミティブへの1回の呼び出しに委譲し、自前の
// read-then-write は行いません。
type Service struct {
	employees employee.Repository
	rosters   roster.Repository
	records   Repository
	clock     Clock
	tx        TransactionManager
	startTime string
}

// UseCase はシーケンサの公開インターフェースです。
type UseCase interface {
	RecordAttendance(ctx context.Context, in RecordAttendanceInput) (*Result, error)
	GetCurrentState(ctx context.Context, employeeID string) (State, error)
	GetNextAction(ctx context.Context, employeeID string) (Action, bool, error)
	GetDailyRecord(ctx context.Context, employeeID string) (*DailySummary, error)
}

// NewService は Service を生成します。defaultStart が空の場合は
// 組織既定の "09:00" が使われます。
func NewService(employees employee.Repository, rosters roster.Repository, records Repository, clock Clock, tx TransactionManager, defaultStart string) *Service {
	if clock == nil {
		clock = realClock{}
	}
	if tx == nil {
		tx = noopTransactionManager{}
	}
	if strings.TrimSpace(defaultStart) == "" {
		defaultStart = defaultStartTime
	}
	return &Service{
		employees: employees,
		rosters:   rosters,
		records:   records,
		clock:     clock,
		tx:        tx,
		startTime: defaultStart,
	}
}

// RecordAttendanceInput は打刻記録時の入力です。
type RecordAttendanceInput struct {
	EmployeeID string
}

// Result は1回のスキャンの正規化済み結果です。duration 系の値は
// 実行されたアクションに応じて設定されます。
type Result struct {
	Action         Action
	EmployeeID     string
	EmployeeName   string
	Timestamp      time.Time
	CheckInTime    *time.Time
	CheckOutTime   *time.Time
	Sequence       int
	Status         RecordStatus
	MinutesLate    int
	BreakMinutes   int
	WorkingMinutes int
	ComplianceRate float64
	DurationLabel  string
	EarlyDeparture bool
}

// DailySummary は当日レコードの読み取り専用ビューです。勤務中の
// セッションは現在時刻まで計上されます。
type DailySummary struct {
	Record         *Record
	State          State
	WorkingMinutes int
	BreakMinutes   int
	WorkingLabel   string
	ComplianceRate float64
}

// RecordAttendance は1回のスキャンを処理します。従業員の検証後、
// 遷移プリミティブを1回だけ呼び出し、結果を検証・正規化して返します。
// 失敗した遷移を再試行することはありません。
func (s *Service) RecordAttendance(ctx context.Context, in RecordAttendanceInput) (*Result, error) {
	id := strings.TrimSpace(in.EmployeeID)
	if id == "" {
		return nil, fmt.Errorf("employee_id: %w", employee.ErrInvalidID)
	}

	var result *Result
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		emp, err := s.employees.FindByID(txCtx, id)
		if err != nil {
			return err
		}
		if !emp.IsActive() {
			return employee.ErrEmployeeInactive
		}

		// timestamptz はマイクロ秒精度のため、往復後の同値比較に備えて丸める。
		now := s.clock.Now().Truncate(time.Microsecond)

		sched, err := s.resolveSchedule(txCtx, emp, now)
		if err != nil {
			return err
		}

		lateCandidate := LateMinutes(now, sched.Start, sched.Grace)

		row, err := s.records.TransitionAttendance(txCtx, emp.ID, now, lateCandidate)
		if err != nil {
			return err
		}

		parsed, err := ParseTransition(row, now)
		if err != nil {
			return err
		}

		result = s.buildResult(emp, sched, parsed, now)
		return nil
	}); err != nil {
		return nil, err
	}

	return result, nil
}

// GetCurrentState は当日の進行状態を返します。読み取り専用です。
func (s *Service) GetCurrentState(ctx context.Context, employeeID string) (State, error) {
	rec, err := s.findToday(ctx, employeeID)
	if err != nil {
		return "", err
	}
	return rec.CurrentState(), nil
}

// GetNextAction は次のスキャンで実行されるアクションを予測します。
// 状態を変更しないため、クールダウン判定に安全に利用できます。
// レコードが終端の場合は false を返します。
func (s *Service) GetNextAction(ctx context.Context, employeeID string) (Action, bool, error) {
	rec, err := s.findToday(ctx, employeeID)
	if err != nil {
		return "", false, err
	}

	action, ok := rec.NextAction()
	return action, ok, nil
}

// GetDailyRecord は当日レコードのサマリを返します。未完了セッションの
// 実働は現在時刻まで計上されるため、勤務中の表示が逐次更新されます。
func (s *Service) GetDailyRecord(ctx context.Context, employeeID string) (*DailySummary, error) {
	id := strings.TrimSpace(employeeID)
	if id == "" {
		return nil, fmt.Errorf("employee_id: %w", employee.ErrInvalidID)
	}

	var summary *DailySummary
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		emp, err := s.employees.FindByID(txCtx, id)
		if err != nil {
			return err
		}

		now := s.clock.Now().Truncate(time.Microsecond)

		rec, err := s.records.FindByEmployeeAndDate(txCtx, emp.ID, now)
		if err != nil && !errors.Is(err, ErrRecordNotFound) {
			return err
		}

		working := WorkingMinutes(rec, now)

		expected := 0
		if sched, schedErr := s.resolveSchedule(txCtx, emp, now); schedErr == nil {
			expected = sched.ExpectedWorkMinutes
		}

		summary = &DailySummary{
			Record:         rec,
			State:          rec.CurrentState(),
			WorkingMinutes: working,
			BreakMinutes:   BreakMinutes(breakBoundaries(rec)),
			WorkingLabel:   FormatDuration(working),
			ComplianceRate: ComplianceRate(working, expected),
		}
		return nil
	}); err != nil {
		return nil, err
	}

	return summary, nil
}

func (s *Service) findToday(ctx context.Context, employeeID string) (*Record, error) {
	id := strings.TrimSpace(employeeID)
	if id == "" {
		return nil, fmt.Errorf("employee_id: %w", employee.ErrInvalidID)
	}

	var rec *Record
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		found, err := s.records.FindByEmployeeAndDate(txCtx, id, s.clock.Now())
		if err != nil {
			if errors.Is(err, ErrRecordNotFound) {
				return nil
			}
			return err
		}
		rec = found
		return nil
	}); err != nil {
		return nil, err
	}

	return rec, nil
}

// resolveSchedule は従業員の当日の勤務予定を解決します。ロスターが
// 割り当てられている場合は有効なロスターが必須で、見つからないか
// 無効なら ErrNoActiveRoster になります。未割当の場合は組織既定の
// 始業時刻(猶予ゼロ)に切り替わります。
func (s *Service) resolveSchedule(ctx context.Context, emp *employee.Employee, now time.Time) (*roster.Schedule, error) {
	if emp.RosterID == nil || strings.TrimSpace(*emp.RosterID) == "" {
		return roster.DefaultSchedule(s.startTime, now)
	}

	rst, err := s.rosters.FindByID(ctx, *emp.RosterID)
	if err != nil {
		if errors.Is(err, roster.ErrRosterNotFound) {
			return nil, ErrNoActiveRoster
		}
		return nil, err
	}
	if !rst.Active {
		return nil, ErrNoActiveRoster
	}

	return rst.ScheduleFor(now)
}

func (s *Service) buildResult(emp *employee.Employee, sched *roster.Schedule, parsed *TransitionResult, now time.Time) *Result {
	rec := parsed.Record
	res := &Result{
		Action:       parsed.Action,
		EmployeeID:   emp.ID,
		EmployeeName: emp.Name,
		Timestamp:    now,
		CheckInTime:  parsed.CheckInTime,
		CheckOutTime: parsed.CheckOutTime,
		Sequence:     parsed.Sequence,
		Status:       rec.Status,
	}

	switch parsed.Action {
	case ActionFirstCheckIn:
		res.MinutesLate = rec.MinutesLate
	case ActionFirstCheckOut:
		mins := sessionMinutes(rec.FirstCheckInTime, rec.FirstCheckOutTime, now)
		res.WorkingMinutes = mins
		res.DurationLabel = FormatDuration(mins)
	case ActionSecondCheckIn:
		res.BreakMinutes = rec.BreakDurationMinutes
		res.DurationLabel = FormatDuration(rec.BreakDurationMinutes)
	case ActionSecondCheckOut:
		working := WorkingMinutes(rec, now)
		res.WorkingMinutes = working
		res.DurationLabel = FormatDuration(working)
		res.ComplianceRate = ComplianceRate(working, sched.ExpectedWorkMinutes)
		if !sched.End.IsZero() && sched.EarlyDeparture > 0 && now.Before(sched.End.Add(-sched.EarlyDeparture)) {
			res.EarlyDeparture = true
		}
	}

	return res
}

func breakBoundaries(rec *Record) (*time.Time, *time.Time) {
	if rec == nil {
		return nil, nil
	}
	return rec.FirstCheckOutTime, rec.SecondCheckInTime
}
