// Package migrations holds the embedded database schema.
package migrations

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"

	"github.com/fekuna/omnipos-availability-service/pkg/database/postgres"
	"github.com/fekuna/omnipos-availability-service/pkg/logger"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

//go:embed *.sql
var files embed.FS

// Files lists the migration files in the order Migrate applies them.
func Files() ([]string, error) {
	names, err := fs.Glob(files, "*.sql")
	if err != nil {
		return nil, err
	}
	sort.Strings(names)
	return names, nil
}

// Migrate applies every migration in its own transaction. Statements are
// idempotent, so running it on each start is safe.
func Migrate(ctx context.Context, db *sqlx.DB, log logger.ZapLogger) error {
	names, err := Files()
	if err != nil {
		return err
	}

	for _, name := range names {
		stmt, err := files.ReadFile(name)
		if err != nil {
			return err
		}
		err = postgres.WithTx(ctx, db, func(tx *sqlx.Tx) error {
			_, err := tx.ExecContext(ctx, string(stmt))
			return err
		})
		if err != nil {
			return fmt.Errorf("migration %s: %w", name, err)
		}
		log.Info("Applied migration", zap.String("file", name))
	}
	return nil
}
