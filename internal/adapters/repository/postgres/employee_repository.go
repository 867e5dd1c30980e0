package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/Kalpa111334/qr-with-dutch/internal/core/employee"
	pgdb "github.com/Kalpa111334/qr-with-dutch/internal/platform/db/postgres"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const invalidTextRepresentationCode = "22P02"

// EmployeeRepository は PostgreSQL を利用した従業員参照の実装です。
type EmployeeRepository struct {
	pool pgdb.Queryer
}

// NewEmployeeRepository は EmployeeRepository を生成します。
func NewEmployeeRepository(pool pgdb.Queryer) *EmployeeRepository {
	return &EmployeeRepository{pool: pool}
}

// FindByID は ID で従業員を取得します。
func (r *EmployeeRepository) FindByID(ctx context.Context, id string) (*employee.Employee, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT id, name, department, position, roster_id, status, created_at, updated_at
          FROM employees
         WHERE id = $1
         LIMIT 1
    `, id)

	found, err := scanEmployee(row)
	if err != nil {
		return nil, translateEmployeePgError(err)
	}
	return found, nil
}

func scanEmployee(row pgx.Row) (*employee.Employee, error) {
	var (
		emp       employee.Employee
		rosterID  sql.NullString
		status    string
		createdAt time.Time
		updatedAt time.Time
	)

	if err := row.Scan(&emp.ID, &emp.Name, &emp.Department, &emp.Position, &rosterID, &status, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	if rosterID.Valid {
		value := rosterID.String
		emp.RosterID = &value
	}

	emp.Status = employee.Status(status)
	emp.CreatedAt = createdAt
	emp.UpdatedAt = updatedAt
	return &emp, nil
}

func translateEmployeePgError(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return employee.ErrEmployeeNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == invalidTextRepresentationCode {
		// UUID として解釈できないIDは存在しない従業員として扱う。
		return employee.ErrEmployeeNotFound
	}

	return err
}
