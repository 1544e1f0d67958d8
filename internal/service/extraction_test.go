package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/content-extraction/infrastructure/logger"
	"github.com/jonesrussell/content-extraction/internal/domain"
	"github.com/jonesrussell/content-extraction/internal/service"
	"github.com/jonesrussell/content-extraction/internal/storage"
	"github.com/jonesrussell/content-extraction/internal/telemetry"
)

type mockExtractor struct {
	extractFunc func(ctx context.Context, content string, article domain.RawArticle) (domain.ExtractedRecord, error)
	calls       int
}

func (m *mockExtractor) Extract(ctx context.Context, content string, article domain.RawArticle) (domain.ExtractedRecord, error) {
	m.calls++
	if m.extractFunc == nil {
		return domain.ExtractedRecord{Title: article.Title, Summary: content}, nil
	}
	return m.extractFunc(ctx, content, article)
}

type mockStore struct {
	storeFunc func(ctx context.Context, article domain.RawArticle, record domain.ExtractedRecord) error
	stored    []domain.RawArticle
}

func (m *mockStore) Store(ctx context.Context, article domain.RawArticle, record domain.ExtractedRecord) error {
	if m.storeFunc != nil {
		if err := m.storeFunc(ctx, article, record); err != nil {
			return err
		}
	}
	m.stored = append(m.stored, article)
	return nil
}

func (m *mockStore) Driver() string { return "mock" }

func newService(extractor *mockExtractor, store *mockStore, tp *telemetry.Provider) *service.ExtractionService {
	return service.NewExtractionService(extractor, store, logger.NewNop(), tp)
}

func TestRun_SingleArticle(t *testing.T) {
	t.Parallel()

	extractor := &mockExtractor{}
	store := &mockStore{}

	result, err := newService(extractor, store, nil).Run(t.Context(), []domain.RawArticle{{ID: "1", Content: "body"}})
	require.NoError(t, err)

	assert.Equal(t, domain.BatchResult{Processed: 1, Successful: 1, Errors: []domain.ItemError{}}, result)
	assert.Len(t, store.stored, 1)
}

func TestRun_StoreFailureIsolated(t *testing.T) {
	t.Parallel()

	extractor := &mockExtractor{}
	store := &mockStore{storeFunc: func(_ context.Context, a domain.RawArticle, _ domain.ExtractedRecord) error {
		if a.ID == "b" {
			return &storage.StorageError{Driver: "Supabase", Detail: "insert rejected"}
		}
		return nil
	}}
	tp := telemetry.NewProvider()

	articles := []domain.RawArticle{
		{ID: "a", Content: "one"},
		{ID: "b", Text: "two"},
		{ID: "c", Body: "three"},
	}

	result, err := newService(extractor, store, tp).Run(t.Context(), articles)
	require.NoError(t, err)

	assert.Equal(t, 3, result.Processed)
	assert.Equal(t, 2, result.Successful)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, []domain.ItemError{{ArticleID: "b", Error: "Supabase storage error: insert rejected"}}, result.Errors)

	require.Len(t, store.stored, 2)
	assert.Equal(t, "c", store.stored[1].ID)
	assert.Equal(t, 3, extractor.calls)

	assert.InDelta(t, 2, testutil.ToFloat64(tp.Metrics.ArticlesProcessed.WithLabelValues(telemetry.OutcomeSuccess)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(tp.Metrics.ArticlesProcessed.WithLabelValues(telemetry.OutcomeStoreError)), 0)
}

func TestRun_MissingContentSkipsExternalCalls(t *testing.T) {
	t.Parallel()

	extractor := &mockExtractor{}
	store := &mockStore{}

	articles := []domain.RawArticle{
		{Title: "no body"},
		{ID: "x", Content: ""},
	}

	result, err := newService(extractor, store, nil).Run(t.Context(), articles)
	require.NoError(t, err)

	assert.Equal(t, 2, result.Failed)
	assert.Equal(t, []domain.ItemError{
		{ArticleID: "article_1", Error: "Article missing content field"},
		{ArticleID: "x", Error: "Article missing content field"},
	}, result.Errors)
	assert.Zero(t, extractor.calls)
	assert.Empty(t, store.stored)
}

func TestRun_MalformedAndModelErrors(t *testing.T) {
	t.Parallel()

	extractor := &mockExtractor{extractFunc: func(_ context.Context, content string, _ domain.RawArticle) (domain.ExtractedRecord, error) {
		if content == "fail" {
			return domain.ExtractedRecord{}, errors.New("model completion: HTTP 500: upstream")
		}
		return domain.ExtractedRecord{Title: "ok"}, nil
	}}
	store := &mockStore{}

	articles := []domain.RawArticle{
		{Malformed: true},
		{Content: "fail"},
		{Content: "fine"},
	}

	result, err := newService(extractor, store, nil).Run(t.Context(), articles)
	require.NoError(t, err)

	assert.Equal(t, 3, result.Processed)
	assert.Equal(t, 1, result.Successful)
	assert.Equal(t, []domain.ItemError{
		{ArticleID: "article_1", Error: "Invalid article format"},
		{ArticleID: "article_2", Error: "model completion: HTTP 500: upstream"},
	}, result.Errors)
	assert.Equal(t, 2, extractor.calls)
}

func TestRun_CancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(t.Context())

	extractor := &mockExtractor{}
	store := &mockStore{storeFunc: func(context.Context, domain.RawArticle, domain.ExtractedRecord) error {
		cancel()
		return nil
	}}

	articles := []domain.RawArticle{{Content: "one"}, {Content: "two"}}

	result, err := newService(extractor, store, nil).Run(ctx, articles)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, result.Processed)
	assert.Equal(t, 1, result.Successful)
}

func TestRun_AccountingInvariant(t *testing.T) {
	t.Parallel()

	extractor := &mockExtractor{}
	store := &mockStore{storeFunc: func(_ context.Context, a domain.RawArticle, _ domain.ExtractedRecord) error {
		if a.Content == "bad" {
			return errors.New("rejected")
		}
		return nil
	}}

	articles := []domain.RawArticle{
		{Content: "good"}, {Content: "bad"}, {}, {Malformed: true}, {Content: "good"}, {Content: "bad"},
	}

	result, err := newService(extractor, store, nil).Run(t.Context(), articles)
	require.NoError(t, err)

	assert.Equal(t, len(articles), result.Processed)
	assert.Equal(t, result.Processed, result.Successful+result.Failed)
	assert.Len(t, result.Errors, result.Failed)
	assert.Equal(t, "article_2", result.Errors[0].ArticleID)
	assert.Equal(t, "article_6", result.Errors[len(result.Errors)-1].ArticleID)
}
