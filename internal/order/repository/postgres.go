package repository

import (
	"context"

	"github.com/fekuna/omnipos-availability-service/internal/day"
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

func (r *PGRepository) ReplaceOrderLines(ctx context.Context, orderID string, lines []model.ProductOrder) ([]string, error) {
	touched := []string{}
	seen := map[string]bool{}
	touch := func(id string) {
		if !seen[id] {
			seen[id] = true
			touched = append(touched, id)
		}
	}

	err := postgres.WithTx(ctx, r.DB, func(tx *sqlx.Tx) error {
		var deleted []string
		err := tx.SelectContext(ctx, &deleted,
			`DELETE FROM product_orders WHERE order_id = $1 RETURNING shop_resource_id`,
			orderID,
		)
		if err != nil {
			return err
		}
		for _, id := range deleted {
			touch(id)
		}

		// The delete above cleared this order, so a conflict can only come
		// from a concurrent delivery of the same order.
		query := `
            INSERT INTO product_orders (id, shop_resource_id, order_id, chosen_date, time_slot, quantity, created_at)
            VALUES (:id, :shop_resource_id, :order_id, :chosen_date, :time_slot, :quantity, :created_at)
            ON CONFLICT (shop_resource_id, order_id, chosen_date) DO NOTHING
        `
		for i := range lines {
			lines[i].OrderID = orderID
			if _, err := tx.NamedExecContext(ctx, query, &lines[i]); err != nil {
				return err
			}
			touch(lines[i].ShopResourceID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return touched, nil
}

func (r *PGRepository) OrdersPerDate(ctx context.Context, shopResourceID string, from, to day.Date) (model.OrdersPerDate, error) {
	var rows []struct {
		ChosenDate day.Date `db:"chosen_date"`
		Quantity   int      `db:"quantity"`
	}
	query := `
        SELECT chosen_date, SUM(quantity) AS quantity
        FROM product_orders
        WHERE shop_resource_id = $1
          AND chosen_date BETWEEN $2 AND $3
        GROUP BY chosen_date
    `
	if err := r.DB.SelectContext(ctx, &rows, query, shopResourceID, from, to); err != nil {
		return nil, err
	}

	out := make(model.OrdersPerDate, len(rows))
	for _, row := range rows {
		out[row.ChosenDate] = row.Quantity
	}
	return out, nil
}
