package database

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

// Close closes the pool. Safe to call more than once.
func (db *PostgresDB) Close() error {
	if db.Pool == nil {
		return nil
	}

	log.Info().Msg("[DATABASE] closing connection pool")
	db.Pool.Close()
	db.Pool = nil

	return nil
}

// PoolObserver receives a pool snapshot on every monitor tick.
type PoolObserver func(stat *pgxpool.Stat)

// MonitorPoolHealth reports pool statistics every interval until ctx is done.
// It warns when the pool is saturated.
func (db *PostgresDB) MonitorPoolHealth(ctx context.Context, interval time.Duration, observe PoolObserver) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if db.Pool == nil {
				continue
			}
			stat := db.Pool.Stat()
			if observe != nil {
				observe(stat)
			}
			if stat.MaxConns() > 0 && stat.AcquiredConns() >= stat.MaxConns() {
				log.Warn().
					Int32("acquired", stat.AcquiredConns()).
					Int32("max", stat.MaxConns()).
					Int64("empty_acquire", stat.EmptyAcquireCount()).
					Msg("[DATABASE] connection pool saturated")
			}
		}
	}
}
