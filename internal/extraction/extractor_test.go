package extraction_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/content-extraction/infrastructure/logger"
	"github.com/jonesrussell/content-extraction/internal/domain"
	"github.com/jonesrussell/content-extraction/internal/extraction"
	"github.com/jonesrussell/content-extraction/internal/llm"
	"github.com/jonesrussell/content-extraction/internal/telemetry"
)

// fakeModel is a func-field Completer.
type fakeModel struct {
	completeFunc func(ctx context.Context, req llm.Request) (string, error)
	requests     []llm.Request
}

func (f *fakeModel) Complete(ctx context.Context, req llm.Request) (string, error) {
	f.requests = append(f.requests, req)
	return f.completeFunc(ctx, req)
}

func (f *fakeModel) Name() string { return "fake" }

func replying(reply string) *fakeModel {
	return &fakeModel{completeFunc: func(context.Context, llm.Request) (string, error) { return reply, nil }}
}

func TestExtract_ParsesModelReply(t *testing.T) {
	t.Parallel()

	model := replying("```json\n" + `{
		"title": "Council approves budget",
		"summary": "The council passed the budget.",
		"key_points": ["Budget passed", "Vote was 7-2"],
		"entities": ["City Council"],
		"sentiment": "Positive",
		"category": "politics",
		"tags": ["budget", "council"]
	}` + "\n```")

	e := extraction.NewExtractor(model, extraction.Config{}, logger.NewNop(), nil)
	rec, err := e.Extract(t.Context(), "The council met on Tuesday.", domain.RawArticle{ID: "1"})
	require.NoError(t, err)

	assert.Equal(t, domain.ExtractedRecord{
		Title:     "Council approves budget",
		Summary:   "The council passed the budget.",
		KeyPoints: domain.StringList{"Budget passed", "Vote was 7-2"},
		Entities:  domain.StringList{"City Council"},
		Sentiment: domain.SentimentPositive,
		Category:  "politics",
		Tags:      domain.StringList{"budget", "council"},
	}, rec)

	require.Len(t, model.requests, 1)
	req := model.requests[0]
	assert.Equal(t, extraction.SystemInstruction, req.System)
	assert.Equal(t, extraction.DefaultMaxTokens, req.MaxTokens)
	assert.InDelta(t, extraction.DefaultTemperature, req.Temperature, 1e-9)
	assert.Contains(t, req.Prompt, "Article content:\nThe council met on Tuesday.\n")
	assert.True(t, strings.HasSuffix(req.Prompt, "Return only valid JSON without any additional text or formatting."))
}

func TestExtract_NormalizesPartialReply(t *testing.T) {
	t.Parallel()

	model := replying(`{"summary": "Short.", "sentiment": "ecstatic", "tags": "solo"}`)
	e := extraction.NewExtractor(model, extraction.Config{}, logger.NewNop(), nil)

	rec, err := e.Extract(t.Context(), "Body.", domain.RawArticle{Title: "Given title"})
	require.NoError(t, err)

	assert.True(t, rec.Complete())
	assert.Equal(t, "Given title", rec.Title)
	assert.Equal(t, "Short.", rec.Summary)
	assert.Equal(t, domain.SentimentNeutral, rec.Sentiment)
	assert.Equal(t, "general", rec.Category)
	assert.Equal(t, domain.StringList{"solo"}, rec.Tags)
	assert.Equal(t, domain.StringList{}, rec.KeyPoints)
}

func TestExtract_FallbackOnUnreadableReply(t *testing.T) {
	t.Parallel()

	content := strings.Repeat("é", 250)
	tp := telemetry.NewProvider()
	e := extraction.NewExtractor(replying("Sorry, I cannot help with that."), extraction.Config{}, logger.NewNop(), tp)

	rec, err := e.Extract(t.Context(), content, domain.RawArticle{})
	require.NoError(t, err)

	assert.Equal(t, domain.ExtractedRecord{
		Title:     "Untitled",
		Summary:   strings.Repeat("é", 200) + "...",
		KeyPoints: domain.StringList{},
		Entities:  domain.StringList{},
		Sentiment: domain.SentimentNeutral,
		Category:  "general",
		Tags:      domain.StringList{},
	}, rec)
	assert.InDelta(t, 1, testutil.ToFloat64(tp.Metrics.ExtractionFallbacks), 0)
}

func TestExtract_FallbackKeepsShortContentWhole(t *testing.T) {
	t.Parallel()

	e := extraction.NewExtractor(replying(`["not", "an", "object"]`), extraction.Config{}, logger.NewNop(), nil)

	rec, err := e.Extract(t.Context(), "Short body.", domain.RawArticle{Title: "Headline"})
	require.NoError(t, err)
	assert.Equal(t, "Headline", rec.Title)
	assert.Equal(t, "Short body.", rec.Summary)
}

func TestExtract_ModelErrorIsReturned(t *testing.T) {
	t.Parallel()

	boom := errors.New("HTTP 429: rate limited")
	model := &fakeModel{completeFunc: func(context.Context, llm.Request) (string, error) { return "", boom }}
	e := extraction.NewExtractor(model, extraction.Config{}, logger.NewNop(), nil)

	_, err := e.Extract(t.Context(), "Body.", domain.RawArticle{})
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "rate limited")
	assert.Len(t, model.requests, 1)
}

func TestExtract_TruncatesContent(t *testing.T) {
	t.Parallel()

	model := replying(`{}`)
	e := extraction.NewExtractor(model, extraction.Config{MaxContentChars: 10}, logger.NewNop(), nil)

	_, err := e.Extract(t.Context(), "0123456789ABCDEF", domain.RawArticle{})
	require.NoError(t, err)

	require.Len(t, model.requests, 1)
	assert.Contains(t, model.requests[0].Prompt, "Article content:\n0123456789...\n")
	assert.NotContains(t, model.requests[0].Prompt, "ABCDEF")
}

const transitParagraph = "The regional transit authority announced on Monday that it will extend " +
	"late-night service on three major routes beginning next month, citing rising ridership " +
	"among shift workers and students who rely on buses after midnight."

func transitHTML() string {
	return "<html><head><title>Transit news</title></head><body><article>" +
		"<h1>Transit expands service</h1>" +
		"<p>" + transitParagraph + "</p><p>" + transitParagraph + "</p><p>" + transitParagraph + "</p>" +
		"</article></body></html>"
}

func TestExtract_ReducesHTML(t *testing.T) {
	t.Parallel()

	model := replying(`{}`)
	e := extraction.NewExtractor(model, extraction.Config{}, logger.NewNop(), nil)

	_, err := e.Extract(t.Context(), transitHTML(), domain.RawArticle{URL: "https://news.example.com/transit"})
	require.NoError(t, err)

	require.Len(t, model.requests, 1)
	prompt := model.requests[0].Prompt
	assert.Contains(t, prompt, "late-night service")
	assert.NotContains(t, prompt, "<p>")
	assert.NotContains(t, prompt, "midnight.The regional")
	assert.Contains(t, prompt, "midnight.\nThe regional")
}

func TestExtract_HTMLFallbackSummarizesInput(t *testing.T) {
	t.Parallel()

	content := transitHTML()
	e := extraction.NewExtractor(replying("not json"), extraction.Config{}, logger.NewNop(), nil)

	rec, err := e.Extract(t.Context(), content, domain.RawArticle{URL: "https://news.example.com/transit"})
	require.NoError(t, err)

	require.True(t, strings.HasSuffix(rec.Summary, "..."), rec.Summary)
	assert.True(t, strings.HasPrefix(content, strings.TrimSuffix(rec.Summary, "...")), rec.Summary)
	assert.Equal(t, domain.SentimentNeutral, rec.Sentiment)
	assert.Equal(t, "general", rec.Category)
}

func TestExtract_Temperature(t *testing.T) {
	t.Parallel()

	zero := 0.0
	tests := []struct {
		name string
		cfg  extraction.Config
		want float64
	}{
		{name: "unset uses default", want: extraction.DefaultTemperature},
		{name: "explicit zero is kept", cfg: extraction.Config{Temperature: &zero}, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			model := replying(`{}`)
			e := extraction.NewExtractor(model, tt.cfg, logger.NewNop(), nil)

			_, err := e.Extract(t.Context(), "Body.", domain.RawArticle{})
			require.NoError(t, err)
			require.Len(t, model.requests, 1)
			assert.InDelta(t, tt.want, model.requests[0].Temperature, 0)
		})
	}
}

func TestExtract_KeepHTML(t *testing.T) {
	t.Parallel()

	model := replying(`{}`)
	e := extraction.NewExtractor(model, extraction.Config{KeepHTML: true}, logger.NewNop(), nil)

	_, err := e.Extract(t.Context(), "<p>raw</p>", domain.RawArticle{})
	require.NoError(t, err)
	assert.Contains(t, model.requests[0].Prompt, "<p>raw</p>")
}
