package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	es "github.com/elastic/go-elasticsearch/v8"

	"github.com/jonesrussell/content-extraction/internal/domain"
)

const elasticsearchDisplayName = "Elasticsearch"

// ElasticsearchWriter indexes one document per article. Documents get
// server-generated ids, so repeated submissions are not deduplicated.
type ElasticsearchWriter struct {
	client *es.Client
	index  string
}

// NewElasticsearchWriter creates a writer for index.
func NewElasticsearchWriter(client *es.Client, index string) *ElasticsearchWriter {
	if index == "" {
		index = DefaultTable
	}
	return &ElasticsearchWriter{client: client, index: index}
}

// Driver returns the configuration name of this writer.
func (w *ElasticsearchWriter) Driver() string { return DriverElasticsearch }

// Ping checks the cluster is reachable.
func (w *ElasticsearchWriter) Ping(ctx context.Context) error {
	res, err := w.client.Ping(w.client.Ping.WithContext(ctx))
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()

	if res.IsError() {
		return fmt.Errorf("elasticsearch ping: %s", res.Status())
	}
	return nil
}

// Store indexes one document.
func (w *ElasticsearchWriter) Store(ctx context.Context, article domain.RawArticle, record domain.ExtractedRecord) error {
	doc, err := json.Marshal(NewRow(article, record, time.Now()))
	if err != nil {
		return storageError(elasticsearchDisplayName, fmt.Errorf("marshal document: %w", err))
	}

	res, err := w.client.Index(
		w.index,
		bytes.NewReader(doc),
		w.client.Index.WithContext(ctx),
	)
	if err != nil {
		return storageError(elasticsearchDisplayName, err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.IsError() {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 64<<10))
		return &StorageError{
			Driver: elasticsearchDisplayName,
			Detail: fmt.Sprintf("[%d] %s", res.StatusCode, strings.TrimSpace(string(body))),
		}
	}
	return nil
}
