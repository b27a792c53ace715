package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/fekuna/omnipos-availability-service/internal/day"
	"github.com/fekuna/omnipos-availability-service/internal/model"
	"github.com/jmoiron/sqlx"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

const periodColumns = `id, shop_resource_id, quantity, quantity_is_shared, available_dates, paused_dates, start_date, end_date, created_at`

func (r *PGRepository) FindPeriods(ctx context.Context, shopResourceID string, from, to day.Date) ([]model.AvailabilityPeriod, error) {
	query := `
        SELECT ` + periodColumns + `
        FROM availability_periods
        WHERE shop_resource_id = $1
          AND start_date <= $3
          AND end_date >= $2
        ORDER BY start_date, created_at
    `
	periods := []model.AvailabilityPeriod{}
	err := r.DB.SelectContext(ctx, &periods, query, shopResourceID, from, to)
	return periods, err
}

func (r *PGRepository) FindByID(ctx context.Context, id string) (*model.AvailabilityPeriod, error) {
	var p model.AvailabilityPeriod
	query := `SELECT ` + periodColumns + ` FROM availability_periods WHERE id = $1`
	err := r.DB.GetContext(ctx, &p, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *PGRepository) Create(ctx context.Context, p *model.AvailabilityPeriod) error {
	query := `
        INSERT INTO availability_periods (
            id, shop_resource_id, quantity, quantity_is_shared,
            available_dates, paused_dates, start_date, end_date, created_at
        )
        VALUES (
            :id, :shop_resource_id, :quantity, :quantity_is_shared,
            :available_dates, :paused_dates, :start_date, :end_date, :created_at
        )
    `
	_, err := r.DB.NamedExecContext(ctx, query, p)
	return err
}

func (r *PGRepository) Update(ctx context.Context, p *model.AvailabilityPeriod) error {
	query := `
        UPDATE availability_periods
        SET quantity = :quantity,
            quantity_is_shared = :quantity_is_shared,
            available_dates = :available_dates,
            paused_dates = :paused_dates,
            start_date = :start_date,
            end_date = :end_date
        WHERE id = :id
    `
	_, err := r.DB.NamedExecContext(ctx, query, p)
	return err
}

func (r *PGRepository) Delete(ctx context.Context, id string) error {
	_, err := r.DB.ExecContext(ctx, "DELETE FROM availability_periods WHERE id = $1", id)
	return err
}
