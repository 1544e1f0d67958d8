package storage

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	infraconfig "github.com/jonesrussell/content-extraction/infrastructure/config"
	infracontext "github.com/jonesrussell/content-extraction/infrastructure/context"
	"github.com/jonesrussell/content-extraction/internal/domain"
)

const postgresDisplayName = "Postgres"

var rowColumns = []string{
	"external_id", "title", "summary", "url", "content",
	"key_points", "entities", "sentiment", "category", "tags",
	"extraction_status", "extraction_error", "published_at", "source", "created_at",
}

// OpenPostgres connects to cfg, applies its pool settings and pings.
func OpenPostgres(ctx context.Context, cfg infraconfig.DatabaseConfig) (*sqlx.DB, error) {
	db, err := sqlx.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxConnections)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	pingCtx, cancel := infracontext.WithPingTimeout(ctx)
	defer cancel()

	if pingErr := db.PingContext(pingCtx); pingErr != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", pingErr)
	}
	return db, nil
}

// PostgresWriter inserts rows directly into a Postgres table.
type PostgresWriter struct {
	db    *sqlx.DB
	table string
}

// NewPostgresWriter creates a writer for table.
func NewPostgresWriter(db *sqlx.DB, table string) *PostgresWriter {
	if table == "" {
		table = DefaultTable
	}
	return &PostgresWriter{db: db, table: table}
}

// Driver returns the configuration name of this writer.
func (w *PostgresWriter) Driver() string { return DriverPostgres }

// Ping checks the database connection.
func (w *PostgresWriter) Ping(ctx context.Context) error {
	return w.db.PingContext(ctx)
}

// Store inserts one row.
func (w *PostgresWriter) Store(ctx context.Context, article domain.RawArticle, record domain.ExtractedRecord) error {
	row := NewRow(article, record, time.Now())

	query, args, err := sq.Insert(w.table).
		Columns(rowColumns...).
		Values(
			row.ExternalID, row.Title, row.Summary, row.URL, row.Content,
			pq.Array(row.KeyPoints), pq.Array(row.Entities), row.Sentiment, row.Category, pq.Array(row.Tags),
			row.ExtractionStatus, row.ExtractionError, row.PublishedAt, row.Source, row.CreatedAt,
		).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return storageError(postgresDisplayName, fmt.Errorf("build insert: %w", err))
	}

	if _, err = w.db.ExecContext(ctx, query, args...); err != nil {
		return storageError(postgresDisplayName, err)
	}
	return nil
}
