package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/fekuna/omnipos-availability-service/internal/model"
	"github.com/fekuna/omnipos-availability-service/internal/shop/dto"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) FindByDomain(ctx context.Context, domain string) (*model.Shop, error) {
	var s model.Shop
	err := r.DB.GetContext(ctx, &s, `SELECT * FROM shops WHERE domain = $1 LIMIT 1`, strings.ToLower(domain))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

func (r *PGRepository) GetSettings(ctx context.Context, shopID string) (model.ShopSettings, error) {
	var s model.ShopSettings
	query := `
        SELECT shop_id, date_tag_label, time_slot_tag_label, locale, date_format,
               first_available_date_in_days, last_available_date_in_weeks, auto_track_ordered_products
        FROM shop_settings
        WHERE shop_id = $1
    `
	err := r.DB.GetContext(ctx, &s, query, shopID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.DefaultShopSettings(shopID), nil
		}
		return model.ShopSettings{}, err
	}
	return s.WithDefaults(), nil
}

func (r *PGRepository) FindResourceByID(ctx context.Context, id string) (*model.ShopResource, error) {
	return r.getResource(ctx, `SELECT * FROM shop_resources WHERE id = $1`, id)
}

func (r *PGRepository) FindResourceByResourceID(ctx context.Context, shopID, resourceID string) (*model.ShopResource, error) {
	return r.getResource(ctx, `SELECT * FROM shop_resources WHERE shop_id = $1 AND resource_id = $2`, shopID, resourceID)
}

func (r *PGRepository) getResource(ctx context.Context, query string, args ...interface{}) (*model.ShopResource, error) {
	var res model.ShopResource
	err := r.DB.GetContext(ctx, &res, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &res, nil
}

func (r *PGRepository) FindResourcesByResourceIDs(ctx context.Context, shopID string, resourceIDs []string) ([]model.ShopResource, error) {
	if len(resourceIDs) == 0 {
		return []model.ShopResource{}, nil
	}

	var items []model.ShopResource
	err := r.DB.SelectContext(ctx, &items,
		`SELECT * FROM shop_resources WHERE shop_id = $1 AND resource_id = ANY($2)`,
		shopID, pq.Array(resourceIDs),
	)
	return items, err
}

func (r *PGRepository) CreateResource(ctx context.Context, res *model.ShopResource) (bool, error) {
	query := `
        INSERT INTO shop_resources (id, shop_id, resource_id, title, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6)
        ON CONFLICT (shop_id, resource_id) DO NOTHING
        RETURNING id
    `
	var id string
	err := r.DB.QueryRowxContext(ctx, query,
		res.ID, res.ShopID, res.ResourceID, res.Title, res.CreatedAt, res.UpdatedAt,
	).Scan(&id)
	if err == nil {
		return true, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return false, err
	}

	existing, err := r.FindResourceByResourceID(ctx, res.ShopID, res.ResourceID)
	if err != nil {
		return false, err
	}
	if existing == nil {
		return false, fmt.Errorf("shop resource %s/%s vanished after conflict", res.ShopID, res.ResourceID)
	}
	*res = *existing
	return false, nil
}

func (r *PGRepository) ListActiveResourceIDs(ctx context.Context, shopID string) ([]string, error) {
	query := `
        SELECT sr.id
        FROM shop_resources sr
        JOIN shops s ON s.id = sr.shop_id
        WHERE s.uninstalled_at IS NULL
    `
	args := []interface{}{}
	if shopID != "" {
		query += ` AND s.id = $1`
		args = append(args, shopID)
	}
	query += ` ORDER BY sr.created_at`

	ids := []string{}
	err := r.DB.SelectContext(ctx, &ids, query, args...)
	return ids, err
}

func (r *PGRepository) ListResources(ctx context.Context, f *dto.ResourceFilters) ([]model.ResourceAvailability, int, error) {
	var items []model.ResourceAvailability
	var count int

	conditions := []string{"sr.shop_id = :shop_id"}
	args := map[string]interface{}{"shop_id": f.ShopID}

	if f.SearchQuery != "" {
		conditions = append(conditions, "(sr.title ILIKE :search OR sr.resource_id = :resource_id)")
		args["search"] = "%" + f.SearchQuery + "%"
		args["resource_id"] = f.SearchQuery
	}

	fromClause := `
        FROM shop_resources sr
        LEFT JOIN current_availabilities ca ON ca.shop_resource_id = sr.id
        WHERE ` + strings.Join(conditions, " AND ")

	rows, err := r.DB.NamedQueryContext(ctx, "SELECT count(*)"+fromClause, args)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	if rows.Next() {
		if err := rows.Scan(&count); err != nil {
			return nil, 0, err
		}
	}

	orderBy := "sr.created_at DESC"
	if f.SortBy != "" {
		// whitelist, never interpolate user input
		switch f.SortBy {
		case "title":
			orderBy = "sr.title"
		case "next_availability_date":
			orderBy = "ca.next_availability_date"
		case "available_dates":
			orderBy = "ca.available_dates"
		default:
			orderBy = "sr.created_at"
		}
		if strings.ToLower(f.SortOrder) == "asc" {
			orderBy += " ASC NULLS LAST"
		} else {
			orderBy += " DESC NULLS LAST"
		}
	}

	query := `
        SELECT sr.id, sr.shop_id, sr.resource_id, sr.title, sr.created_at, sr.updated_at,
               ca.next_availability_date, ca.last_availability_date,
               COALESCE(ca.available_dates, 0) AS available_dates,
               COALESCE(ca.sold_out_dates, 0) AS sold_out_dates` + fromClause + " ORDER BY " + orderBy

	if f.PageSize > 0 {
		page := f.Page
		if page < 1 {
			page = 1
		}
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.PageSize, (page-1)*f.PageSize)
	}

	nstmt, err := r.DB.PrepareNamedContext(ctx, query)
	if err != nil {
		return nil, 0, err
	}
	defer nstmt.Close()

	err = nstmt.SelectContext(ctx, &items, args)
	return items, count, err
}
