package database

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"

	pkgdb "bookshelf-backend/pkg/database"
)

//go:embed schema/*.sql
var schemaFS embed.FS

// migrationLockID serializes Migrate across the api and worker processes.
const migrationLockID int64 = 0x626f6f6b7368656c

const lockSQL = `SELECT pg_advisory_xact_lock($1)`

// Migrate applies the embedded schema files in name order, all in one
// transaction. Every statement is idempotent, so running it on each start is safe.
// A transaction-scoped advisory lock keeps concurrent starts from racing.
func Migrate(ctx context.Context, db pkgdb.DBTX) error {
	files, err := fs.Glob(schemaFS, "schema/*.sql")
	if err != nil {
		return fmt.Errorf("failed to list schema files: %w", err)
	}
	sort.Strings(files)

	return pkgdb.WithTransaction(ctx, db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, lockSQL, migrationLockID); err != nil {
			return fmt.Errorf("failed to take migration lock: %w", err)
		}
		for _, name := range files {
			body, err := schemaFS.ReadFile(name)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", name, err)
			}
			if _, err := tx.Exec(ctx, string(body)); err != nil {
				return fmt.Errorf("failed to apply %s: %w", name, err)
			}
			log.Info().Str("file", name).Msg("[DATABASE] schema applied")
		}
		return nil
	})
}
