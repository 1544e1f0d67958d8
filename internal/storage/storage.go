// Package storage persists extracted articles. Every writer performs a
// single insert per article and reports failures as *StorageError.
package storage

import (
	"fmt"
	"time"

	"github.com/jonesrussell/content-extraction/internal/domain"
)

// DefaultTable names the table, index or stream rows are written to.
const DefaultTable = "raw_articles"

// Driver names as used in configuration.
const (
	DriverPostgREST     = "postgrest"
	DriverPostgres      = "postgres"
	DriverElasticsearch = "elasticsearch"
	DriverRedis         = "redis"
)

// ExtractionStatusSuccess is written to extraction_status for every row.
const ExtractionStatusSuccess = "success"

// Row is the persisted shape of one extracted article.
type Row struct {
	ExternalID       *string   `json:"external_id"       db:"external_id"`
	Title            string    `json:"title"             db:"title"`
	Summary          string    `json:"summary"           db:"summary"`
	URL              *string   `json:"url"               db:"url"`
	Content          string    `json:"content"           db:"content"`
	KeyPoints        []string  `json:"key_points"        db:"key_points"`
	Entities         []string  `json:"entities"          db:"entities"`
	Sentiment        string    `json:"sentiment"         db:"sentiment"`
	Category         string    `json:"category"          db:"category"`
	Tags             []string  `json:"tags"              db:"tags"`
	ExtractionStatus string    `json:"extraction_status" db:"extraction_status"`
	ExtractionError  *string   `json:"extraction_error"  db:"extraction_error"`
	PublishedAt      time.Time `json:"published_at"      db:"published_at"`
	Source           *string   `json:"source"            db:"source"`
	CreatedAt        time.Time `json:"created_at"        db:"created_at"`
}

// NewRow builds the row for article and its extracted record at now.
// Empty external ids, URLs and sources are stored as null.
func NewRow(article domain.RawArticle, record domain.ExtractedRecord, now time.Time) Row {
	content, _ := article.ContentText()
	now = now.UTC()

	return Row{
		ExternalID:       optional(article.ExternalID),
		Title:            record.Title,
		Summary:          record.Summary,
		URL:              optional(article.URL),
		Content:          content,
		KeyPoints:        nonNil(record.KeyPoints),
		Entities:         nonNil(record.Entities),
		Sentiment:        string(record.Sentiment),
		Category:         record.Category,
		Tags:             nonNil(record.Tags),
		ExtractionStatus: ExtractionStatusSuccess,
		PublishedAt:      now,
		Source:           optional(article.Source),
		CreatedAt:        now,
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func nonNil(l domain.StringList) []string {
	if l == nil {
		return []string{}
	}
	return l
}

// StorageError is a rejected or failed insert.
type StorageError struct {
	// Driver is the display name of the backing store.
	Driver string
	// Detail is the store's own error text.
	Detail string
	Err    error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s storage error: %s", e.Driver, e.Detail)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func storageError(driver string, err error) *StorageError {
	return &StorageError{Driver: driver, Detail: err.Error(), Err: err}
}
