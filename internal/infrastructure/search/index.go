package search

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	pkgdb "bookshelf-backend/pkg/database"
	"bookshelf-backend/pkg/metrics"
)

// Field is one text field of the stored document that feeds the search vector.
// Path addresses it inside the JSON document; Weight is a PostgreSQL weight (A-D).
type Field struct {
	Path   []string
	Weight byte
}

type IndexConfig struct {
	Entity   string
	Table    string
	Language string
	Fields   []Field
}

// Index keeps JSON documents keyed by id in a PostgreSQL table with a tsvector
// column, and answers websearch-style queries ranked by relevance.
type Index[D any] struct {
	db      pkgdb.DBTX
	cfg     IndexConfig
	breaker *Breaker
	metrics *metrics.Metrics

	table  string
	vector string
}

// NewIndex builds an index over cfg.Table. breaker and m may be nil.
func NewIndex[D any](db pkgdb.DBTX, cfg IndexConfig, breaker *Breaker, m *metrics.Metrics) *Index[D] {
	return &Index[D]{
		db:      db,
		cfg:     cfg,
		breaker: breaker,
		metrics: m,
		table:   pq.QuoteIdentifier(cfg.Table),
		vector:  vectorExpr(cfg.Fields, "$2::jsonb", "$3::regconfig"),
	}
}

// vectorExpr renders setweight(to_tsvector(lang, doc #>> path), w) || ... for fields.
func vectorExpr(fields []Field, doc, lang string) string {
	if len(fields) == 0 {
		return "''::tsvector"
	}

	parts := make([]string, len(fields))
	for i, f := range fields {
		path := pq.QuoteLiteral("{" + strings.Join(f.Path, ",") + "}")
		parts[i] = fmt.Sprintf("setweight(to_tsvector(%s, coalesce(%s #>> %s, '')), '%c')", lang, doc, path, f.Weight)
	}
	return strings.Join(parts, " || ")
}

func (x *Index[D]) Upsert(ctx context.Context, id int64, doc D) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal %s document: %w", x.cfg.Entity, err)
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, document, search_vector, indexed_at)
		VALUES ($1, $2::jsonb, %s, now())
		ON CONFLICT (id) DO UPDATE
		SET document = EXCLUDED.document,
		    search_vector = EXCLUDED.search_vector,
		    indexed_at = EXCLUDED.indexed_at
	`, x.table, x.vector)

	return x.guard("upsert", func() error {
		if _, err := x.db.Exec(ctx, query, id, data, x.cfg.Language); err != nil {
			return fmt.Errorf("upsert %s %d into index: %w", x.cfg.Entity, id, err)
		}
		return nil
	})
}

// Delete removes a document. Removing an absent id is not an error.
func (x *Index[D]) Delete(ctx context.Context, id int64) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, x.table)

	return x.guard("delete", func() error {
		if _, err := x.db.Exec(ctx, query, id); err != nil {
			return fmt.Errorf("delete %s %d from index: %w", x.cfg.Entity, id, err)
		}
		return nil
	})
}

// Search returns every document matching q, best match first, ties by id.
// q uses web search syntax: quoted phrases, "or", and -term.
func (x *Index[D]) Search(ctx context.Context, q string) ([]D, error) {
	query := fmt.Sprintf(`
		SELECT x.document
		FROM %s x, websearch_to_tsquery($1::regconfig, $2) q
		WHERE x.search_vector @@ q
		ORDER BY ts_rank_cd(x.search_vector, q) DESC, x.id ASC
	`, x.table)

	var results []D
	err := x.guard("search", func() error {
		rows, err := x.db.Query(ctx, query, x.cfg.Language, q)
		if err != nil {
			return fmt.Errorf("search %s index: %w", x.cfg.Entity, err)
		}
		defer rows.Close()

		results = make([]D, 0)
		for rows.Next() {
			var raw []byte
			if err := rows.Scan(&raw); err != nil {
				return fmt.Errorf("scan %s document: %w", x.cfg.Entity, err)
			}
			var doc D
			if err := json.Unmarshal(raw, &doc); err != nil {
				return fmt.Errorf("decode %s document: %w", x.cfg.Entity, err)
			}
			results = append(results, doc)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

// Now returns the database clock, the reference for DeleteIndexedBefore.
func (x *Index[D]) Now(ctx context.Context) (time.Time, error) {
	var now time.Time
	if err := x.db.QueryRow(ctx, `SELECT now()`).Scan(&now); err != nil {
		return time.Time{}, fmt.Errorf("read database clock: %w", err)
	}
	return now, nil
}

// DeleteIndexedBefore drops documents not written since t and reports how many.
func (x *Index[D]) DeleteIndexedBefore(ctx context.Context, t time.Time) (int64, error) {
	query := fmt.Sprintf(`DELETE FROM %s WHERE indexed_at < $1`, x.table)

	var removed int64
	err := x.guard("delete", func() error {
		tag, err := x.db.Exec(ctx, query, t)
		if err != nil {
			return fmt.Errorf("prune %s index: %w", x.cfg.Entity, err)
		}
		removed = tag.RowsAffected()
		return nil
	})
	return removed, err
}

func (x *Index[D]) guard(op string, fn func() error) error {
	var err error
	if x.breaker != nil {
		err = x.breaker.Execute(fn)
	} else {
		err = fn()
	}

	if x.metrics != nil {
		result := "ok"
		switch {
		case err == ErrIndexUnavailable:
			result = "rejected"
		case err != nil:
			result = "error"
		}
		x.metrics.IndexOperationsTotal.WithLabelValues(x.cfg.Entity, op, result).Inc()
	}
	return err
}
