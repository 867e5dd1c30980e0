package postgres

import (
	"context"
	"errors"

	"github.com/Kalpa111334/qr-with-dutch/internal/core/roster"
	pgdb "github.com/Kalpa111334/qr-with-dutch/internal/platform/db/postgres"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// RosterRepository は PostgreSQL を利用したロスター参照の実装です。
type RosterRepository struct {
	pool pgdb.Queryer
}

// NewRosterRepository は RosterRepository を生成します。
func NewRosterRepository(pool pgdb.Queryer) *RosterRepository {
	return &RosterRepository{pool: pool}
}

// FindByID は ID でロスターを取得します。
func (r *RosterRepository) FindByID(ctx context.Context, id string) (*roster.Roster, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT id, name, start_time, end_time, break_duration, grace_period, early_departure_threshold, active, created_at, updated_at
          FROM rosters
         WHERE id = $1
         LIMIT 1
    `, id)

	var rst roster.Roster
	err := row.Scan(
		&rst.ID,
		&rst.Name,
		&rst.StartTime,
		&rst.EndTime,
		&rst.BreakDurationMinutes,
		&rst.GracePeriodMinutes,
		&rst.EarlyDepartureThreshold,
		&rst.Active,
		&rst.CreatedAt,
		&rst.UpdatedAt,
	)
	if err != nil {
		return nil, translateRosterPgError(err)
	}

	return &rst, nil
}

func translateRosterPgError(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return roster.ErrRosterNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == invalidTextRepresentationCode {
		return roster.ErrRosterNotFound
	}

	return err
}
