package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	infraerrors "github.com/jonesrussell/content-extraction/infrastructure/errors"
	"github.com/jonesrussell/content-extraction/internal/domain"
)

const postgrestDisplayName = "Supabase"

// ErrStoreNotConfigured is returned by writers whose endpoint or key is unset.
var ErrStoreNotConfigured = errors.New("store not configured")

// PostgRESTConfig addresses a Supabase (PostgREST) table.
type PostgRESTConfig struct {
	URL        string        `env:"SUPABASE_URL"              yaml:"url"`
	ServiceKey string        `env:"SUPABASE_SERVICE_ROLE_KEY" yaml:"service_key"` //nolint:gosec // store secret
	Timeout    time.Duration `yaml:"timeout"`
}

// PostgRESTWriter inserts rows with POST {url}/rest/v1/{table}.
type PostgRESTWriter struct {
	cfg        PostgRESTConfig
	table      string
	httpClient *http.Client
}

// NewPostgRESTWriter creates a writer. A nil httpClient uses http.DefaultClient.
func NewPostgRESTWriter(cfg PostgRESTConfig, table string, httpClient *http.Client) *PostgRESTWriter {
	if table == "" {
		table = DefaultTable
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	cfg.URL = strings.TrimRight(cfg.URL, "/")
	return &PostgRESTWriter{cfg: cfg, table: table, httpClient: httpClient}
}

// Driver returns the configuration name of this writer.
func (w *PostgRESTWriter) Driver() string { return DriverPostgREST }

// Ping requests the PostgREST root with the service key.
func (w *PostgRESTWriter) Ping(ctx context.Context) error {
	if w.cfg.URL == "" || w.cfg.ServiceKey == "" {
		return ErrStoreNotConfigured
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, w.cfg.URL+"/rest/v1/", http.NoBody)
	if err != nil {
		return err
	}
	req.Header.Set("apikey", w.cfg.ServiceKey)
	req.Header.Set("Authorization", "Bearer "+w.cfg.ServiceKey)

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	return infraerrors.ParseHTTPError(resp)
}

// Store inserts one row.
func (w *PostgRESTWriter) Store(ctx context.Context, article domain.RawArticle, record domain.ExtractedRecord) error {
	if w.cfg.URL == "" || w.cfg.ServiceKey == "" {
		return storageError(postgrestDisplayName, ErrStoreNotConfigured)
	}

	body, err := json.Marshal([]Row{NewRow(article, record, time.Now())})
	if err != nil {
		return storageError(postgrestDisplayName, fmt.Errorf("marshal row: %w", err))
	}

	endpoint := w.cfg.URL + "/rest/v1/" + url.PathEscape(w.table)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return storageError(postgrestDisplayName, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", w.cfg.ServiceKey)
	req.Header.Set("Authorization", "Bearer "+w.cfg.ServiceKey)
	req.Header.Set("Prefer", "return=minimal")

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return storageError(postgrestDisplayName, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if herr := infraerrors.ParseHTTPError(resp); herr != nil {
		detail := herr.Error()
		var httpErr *infraerrors.HTTPError
		if errors.As(herr, &httpErr) && strings.TrimSpace(httpErr.Body) != "" {
			detail = strings.TrimSpace(httpErr.Body)
		}
		return &StorageError{Driver: postgrestDisplayName, Detail: detail, Err: herr}
	}
	return nil
}
