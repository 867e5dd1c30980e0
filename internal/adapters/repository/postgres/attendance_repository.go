package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/Kalpa111334/qr-with-dutch/internal/core/attendance"
	"github.com/Kalpa111334/qr-with-dutch/internal/core/employee"
	pgdb "github.com/Kalpa111334/qr-with-dutch/internal/platform/db/postgres"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	foreignKeyViolationCode = "23503"
	checkViolationCode      = "23514"
)

// transitionQuery は当日のレコードを1段階だけ進める原子的な upsert です。
// ON CONFLICT の行ロックにより同一従業員の同時スキャンは直列化され、
// 各 CASE は更新前の行(a.*)を参照するため勝者だけがスロットを埋めます。
// last_action も更新前の行から決定されるので、敗者には 'none' が返ります。
// 終端レコード(second_check_out_time 記録済み)は WHERE 句で除外され、
// その場合は行が返らないため ErrMaxSequenceReached へ変換されます。
const transitionQuery = `
    INSERT INTO attendance_records AS a (
        id, employee_id, record_date, first_check_in_time,
        last_action, status, minutes_late, created_at, updated_at
    ) VALUES ($1, $2, $3, $4, 'first_check_in', $5, $6, $4, $4)
    ON CONFLICT (employee_id, record_date) DO UPDATE SET
        first_check_out_time = CASE
            WHEN a.first_check_out_time IS NULL THEN excluded.first_check_in_time
            ELSE a.first_check_out_time
        END,
        second_check_in_time = CASE
            WHEN a.first_check_out_time IS NOT NULL AND a.second_check_in_time IS NULL THEN excluded.first_check_in_time
            ELSE a.second_check_in_time
        END,
        second_check_out_time = CASE
            WHEN a.second_check_in_time IS NOT NULL AND a.second_check_out_time IS NULL THEN excluded.first_check_in_time
            ELSE a.second_check_out_time
        END,
        break_duration_minutes = CASE
            WHEN a.first_check_out_time IS NOT NULL AND a.second_check_in_time IS NULL
                THEN GREATEST(0, FLOOR(EXTRACT(EPOCH FROM (excluded.first_check_in_time - a.first_check_out_time)) / 60))::int
            ELSE a.break_duration_minutes
        END,
        working_duration_minutes = CASE
            WHEN a.second_check_in_time IS NOT NULL AND a.second_check_out_time IS NULL
                THEN a.working_duration_minutes
                     + GREATEST(0, FLOOR(EXTRACT(EPOCH FROM (excluded.first_check_in_time - a.second_check_in_time)) / 60))::int
            WHEN a.first_check_out_time IS NULL
                THEN GREATEST(0, FLOOR(EXTRACT(EPOCH FROM (excluded.first_check_in_time - a.first_check_in_time)) / 60))::int
            ELSE a.working_duration_minutes
        END,
        last_action = CASE
            WHEN a.first_check_out_time IS NULL THEN 'first_check_out'
            WHEN a.second_check_in_time IS NULL THEN 'second_check_in'
            WHEN a.second_check_out_time IS NULL THEN 'second_check_out'
            ELSE 'none'
        END,
        updated_at = excluded.updated_at
    WHERE a.second_check_out_time IS NULL
    RETURNING last_action, id, employee_id, record_date,
              first_check_in_time, first_check_out_time, second_check_in_time, second_check_out_time,
              status, minutes_late, break_duration_minutes, working_duration_minutes,
              created_at, updated_at
`

// AttendanceRepository は PostgreSQL を利用した勤怠レコード永続化の実装です。
type AttendanceRepository struct {
	pool pgdb.Queryer
}

// NewAttendanceRepository は AttendanceRepository を生成します。
func NewAttendanceRepository(pool pgdb.Queryer) *AttendanceRepository {
	return &AttendanceRepository{pool: pool}
}

// TransitionAttendance は当日のレコードを1段階だけ進め、更新後の行を返します。
func (r *AttendanceRepository) TransitionAttendance(ctx context.Context, employeeID string, now time.Time, minutesLate int) (*attendance.TransitionRow, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)

	recordDate := now.Truncate(24 * time.Hour)
	status := string(attendance.StatusFor(minutesLate))

	dbRow := exec.QueryRow(ctx, transitionQuery, uuid.NewString(), employeeID, recordDate, now, status, minutesLate)

	var row attendance.TransitionRow
	err := dbRow.Scan(
		&row.Action,
		&row.RecordID,
		&row.EmployeeID,
		&row.RecordDate,
		&row.FirstCheckInTime,
		&row.FirstCheckOutTime,
		&row.SecondCheckInTime,
		&row.SecondCheckOutTime,
		&row.Status,
		&row.MinutesLate,
		&row.BreakDurationMinutes,
		&row.WorkingDurationMinutes,
		&row.CreatedAt,
		&row.UpdatedAt,
	)
	if err != nil {
		return nil, translateAttendancePgError(err)
	}

	return &row, nil
}

// FindByEmployeeAndDate は従業員の指定日のレコードを取得します。
func (r *AttendanceRepository) FindByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (*attendance.Record, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT id, employee_id, record_date,
               first_check_in_time, first_check_out_time, second_check_in_time, second_check_out_time,
               status, minutes_late, break_duration_minutes, working_duration_minutes,
               created_at, updated_at
          FROM attendance_records
         WHERE employee_id = $1 AND record_date = $2
         LIMIT 1
    `, employeeID, date.Truncate(24*time.Hour))

	var (
		rec    attendance.Record
		status string
	)
	err := row.Scan(
		&rec.ID,
		&rec.EmployeeID,
		&rec.RecordDate,
		&rec.FirstCheckInTime,
		&rec.FirstCheckOutTime,
		&rec.SecondCheckInTime,
		&rec.SecondCheckOutTime,
		&status,
		&rec.MinutesLate,
		&rec.BreakDurationMinutes,
		&rec.WorkingDurationMinutes,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, attendance.ErrRecordNotFound
		}
		return nil, translateAttendancePgError(err)
	}

	rec.Status = attendance.RecordStatus(status)
	return &rec, nil
}

func translateAttendancePgError(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		// upsert が行を返さないのは終端レコードを WHERE 句が弾いた場合のみ。
		return attendance.ErrMaxSequenceReached
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case foreignKeyViolationCode:
			return employee.ErrEmployeeNotFound
		case checkViolationCode:
			return attendance.ErrTransitionFailed
		case invalidTextRepresentationCode:
			return employee.ErrEmployeeNotFound
		}
	}

	return err
}
