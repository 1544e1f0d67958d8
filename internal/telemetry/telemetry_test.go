package telemetry_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/content-extraction/internal/telemetry"
)

func TestProvider_Records(t *testing.T) {
	t.Parallel()

	p := telemetry.NewProvider()
	ctx := context.Background()

	p.RecordArticle(ctx, telemetry.OutcomeSuccess)
	p.RecordArticle(ctx, telemetry.OutcomeSuccess)
	p.RecordArticle(ctx, telemetry.OutcomeStoreError)
	p.RecordFallback(ctx)
	p.RecordModelCall(ctx, "openai", nil, 2*time.Second)
	p.RecordStoreWrite(ctx, "postgres", errors.New("boom"), time.Millisecond)
	p.RecordBatchSize(3)

	m := p.Metrics
	assert.InDelta(t, 2, testutil.ToFloat64(m.ArticlesProcessed.WithLabelValues(telemetry.OutcomeSuccess)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.ArticlesProcessed.WithLabelValues(telemetry.OutcomeStoreError)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.ExtractionFallbacks), 0)

	count, err := testutil.GatherAndCount(p.Registry(), "content_extraction_store_write_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestProvider_Handler(t *testing.T) {
	t.Parallel()

	p := telemetry.NewProvider()
	p.RecordFallback(context.Background())

	w := httptest.NewRecorder()
	p.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "content_extraction_extraction_fallbacks_total 1")
	assert.Contains(t, w.Body.String(), "go_goroutines")
}

func TestProvider_NilIsNoop(t *testing.T) {
	t.Parallel()

	var p *telemetry.Provider
	ctx := context.Background()

	assert.NotPanics(t, func() {
		p.RecordArticle(ctx, telemetry.OutcomeSuccess)
		p.RecordFallback(ctx)
		p.RecordModelCall(ctx, "openai", nil, time.Second)
		p.RecordStoreWrite(ctx, "redis", nil, time.Second)
		p.RecordBatchSize(1)

		spanCtx, span := p.StartSpan(ctx, "noop")
		span.End()
		assert.Equal(t, ctx, spanCtx)
	})
}
