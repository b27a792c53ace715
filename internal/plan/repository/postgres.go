package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/fekuna/omnipos-availability-service/internal/model"
	"github.com/fekuna/omnipos-availability-service/pkg/database/postgres"
	"github.com/jmoiron/sqlx"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) FindByShopID(ctx context.Context, shopID string) (*model.Plan, error) {
	var p model.Plan
	err := r.DB.GetContext(ctx, &p, `SELECT * FROM plans WHERE shop_id = $1`, shopID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *PGRepository) SumOrderQuantitiesSince(ctx context.Context, shopID string, since time.Time) (int, error) {
	query := `
        SELECT COALESCE(SUM(po.quantity), 0)
        FROM product_orders po
        JOIN shop_resources sr ON sr.id = po.shop_resource_id
        WHERE sr.shop_id = $1 AND po.created_at >= $2
    `
	var total int
	if err := r.DB.GetContext(ctx, &total, query, shopID, since); err != nil {
		return 0, err
	}
	return total, nil
}

func (r *PGRepository) ClaimNotification(ctx context.Context, n *model.Notification) (bool, error) {
	query := `
        INSERT INTO notifications (id, shop_id, type, period_start, sent_at)
        VALUES (:id, :shop_id, :type, :period_start, :sent_at)
    `
	if _, err := r.DB.NamedExecContext(ctx, query, n); err != nil {
		if postgres.IsUniqueViolation(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *PGRepository) ReleaseNotification(ctx context.Context, n *model.Notification) error {
	_, err := r.DB.ExecContext(ctx,
		`DELETE FROM notifications WHERE id = $1`,
		n.ID,
	)
	return err
}
