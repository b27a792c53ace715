package repository

import (
	"context"

	"github.com/fekuna/omnipos-availability-service/internal/model"
	"github.com/jmoiron/sqlx"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) Upsert(ctx context.Context, ca *model.CurrentAvailability) error {
	query := `
        INSERT INTO current_availabilities (
            id, shop_resource_id, next_availability_date, last_availability_date,
            available_dates, sold_out_dates, updated_at
        ) VALUES (
            :id, :shop_resource_id, :next_availability_date, :last_availability_date,
            :available_dates, :sold_out_dates, :updated_at
        )
        ON CONFLICT (shop_resource_id) DO UPDATE SET
            next_availability_date = EXCLUDED.next_availability_date,
            last_availability_date = EXCLUDED.last_availability_date,
            available_dates = EXCLUDED.available_dates,
            sold_out_dates = EXCLUDED.sold_out_dates,
            updated_at = EXCLUDED.updated_at
        RETURNING id
    `
	rows, err := r.DB.NamedQueryContext(ctx, query, ca)
	if err != nil {
		return err
	}
	defer rows.Close()
	if rows.Next() {
		if err := rows.Scan(&ca.ID); err != nil {
			return err
		}
	}
	return rows.Err()
}

func (r *PGRepository) CreateInitial(ctx context.Context, ca *model.CurrentAvailability) error {
	query := `
        INSERT INTO current_availabilities (
            id, shop_resource_id, available_dates, sold_out_dates, updated_at
        ) VALUES (
            :id, :shop_resource_id, 0, 0, :updated_at
        )
        ON CONFLICT (shop_resource_id) DO NOTHING
    `
	_, err := r.DB.NamedExecContext(ctx, query, ca)
	return err
}
