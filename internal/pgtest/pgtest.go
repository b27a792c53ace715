// Package pgtest connects repository tests to a real Postgres.
//
// Tests are skipped unless TEST_DATABASE_URL is set, e.g.
//
//	TEST_DATABASE_URL="host=localhost port=5432 user=postgres password=postgres dbname=availability_test sslmode=disable" go test ./...
package pgtest

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/require"

	"github.com/fekuna/omnipos-availability-service/migrations"
	"github.com/fekuna/omnipos-availability-service/pkg/logger"
)

const EnvDSN = "TEST_DATABASE_URL"

// Open returns a migrated, empty database living in its own schema, so
// packages tested in parallel do not see each other's rows.
func Open(t *testing.T, schema string) *sqlx.DB {
	t.Helper()
	dsn := os.Getenv(EnvDSN)
	if dsn == "" {
		t.Skipf("%s not set", EnvDSN)
	}
	ctx := context.Background()

	admin, err := sqlx.Connect("postgres", dsn)
	require.NoError(t, err)
	_, err = admin.ExecContext(ctx, fmt.Sprintf(`DROP SCHEMA IF EXISTS %q CASCADE; CREATE SCHEMA %q`, schema, schema))
	admin.Close()
	require.NoError(t, err)

	db, err := sqlx.Connect("postgres", withSearchPath(dsn, schema))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, migrations.Migrate(ctx, db, logger.NewNop()))
	return db
}

func withSearchPath(dsn, schema string) string {
	if !strings.Contains(dsn, "://") {
		return dsn + " search_path=" + schema
	}
	u, err := url.Parse(dsn)
	if err != nil {
		return dsn
	}
	q := u.Query()
	q.Set("search_path", schema)
	u.RawQuery = q.Encode()
	return u.String()
}

// Shop inserts an installed shop and returns its id.
func Shop(t *testing.T, db *sqlx.DB, domain string) string {
	t.Helper()
	id := uuid.New().String()
	_, err := db.Exec(`INSERT INTO shops (id, domain) VALUES ($1, $2)`, id, domain)
	require.NoError(t, err)
	return id
}

// Resource inserts a shop resource and returns its id.
func Resource(t *testing.T, db *sqlx.DB, shopID, resourceID, title string) string {
	t.Helper()
	id := uuid.New().String()
	now := time.Now().UTC()
	_, err := db.Exec(
		`INSERT INTO shop_resources (id, shop_id, resource_id, title, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $5)`,
		id, shopID, resourceID, title, now,
	)
	require.NoError(t, err)
	return id
}
