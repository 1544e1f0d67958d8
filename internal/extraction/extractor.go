// Package extraction turns article text into an ExtractedRecord with a
// language model, degrading to a fallback record when the reply cannot be read.
package extraction

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/jonesrussell/content-extraction/infrastructure/logger"
	"github.com/jonesrussell/content-extraction/internal/domain"
	"github.com/jonesrussell/content-extraction/internal/llm"
	"github.com/jonesrussell/content-extraction/internal/telemetry"
)

// Defaults.
const (
	DefaultMaxContentChars      = 4000
	DefaultFallbackSummaryChars = 200
	DefaultMaxTokens            = 1000
	DefaultTemperature          = 0.3

	untitled        = "Untitled"
	defaultCategory = "general"
)

// Completer is the language-model capability.
type Completer interface {
	Complete(ctx context.Context, req llm.Request) (string, error)
	Name() string
}

// Config tunes prompting and fallback behaviour.
type Config struct {
	MaxContentChars      int `yaml:"max_content_chars"      env:"EXTRACTION_MAX_CONTENT_CHARS"`
	FallbackSummaryChars int `yaml:"fallback_summary_chars" env:"EXTRACTION_FALLBACK_SUMMARY_CHARS"`
	MaxTokens            int `yaml:"max_tokens"             env:"EXTRACTION_MAX_TOKENS"`
	// Temperature is nil when unset; SetDefaults then selects
	// DefaultTemperature. An explicit 0 is kept.
	Temperature *float64 `yaml:"temperature" env:"EXTRACTION_TEMPERATURE"`
	// KeepHTML sends HTML content to the model as is instead of reducing
	// it to readable text first.
	KeepHTML bool `yaml:"keep_html" env:"EXTRACTION_KEEP_HTML"`
}

// SetDefaults fills unset values.
func (c *Config) SetDefaults() {
	if c.MaxContentChars <= 0 {
		c.MaxContentChars = DefaultMaxContentChars
	}
	if c.FallbackSummaryChars <= 0 {
		c.FallbackSummaryChars = DefaultFallbackSummaryChars
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = DefaultMaxTokens
	}
	if c.Temperature == nil {
		t := DefaultTemperature
		c.Temperature = &t
	}
}

// Extractor implements the extraction step of the batch pipeline.
type Extractor struct {
	model     Completer
	cfg       Config
	log       logger.Logger
	telemetry *telemetry.Provider
}

// NewExtractor creates an Extractor. tp may be nil.
func NewExtractor(model Completer, cfg Config, log logger.Logger, tp *telemetry.Provider) *Extractor {
	cfg.SetDefaults()
	if log == nil {
		log = logger.NewNop()
	}
	return &Extractor{model: model, cfg: cfg, log: log, telemetry: tp}
}

// Extract asks the model for a record describing content. A failed model
// call is returned as an error; an unreadable reply yields the fallback
// record and no error.
func (e *Extractor) Extract(ctx context.Context, content string, article domain.RawArticle) (domain.ExtractedRecord, error) {
	text := content
	if !e.cfg.KeepHTML && looksLikeHTML(content) {
		if readable := HTMLToText(content, article.URL); readable != "" {
			text = readable
		}
	}

	ctx, span := e.telemetry.StartSpan(ctx, "extraction.extract",
		attribute.String("model.provider", e.model.Name()),
		attribute.Int("content.runes", len([]rune(text))),
	)
	defer span.End()

	start := time.Now()
	reply, err := e.model.Complete(ctx, llm.Request{
		System:      SystemInstruction,
		Prompt:      BuildPrompt(text, e.cfg.MaxContentChars),
		MaxTokens:   e.cfg.MaxTokens,
		Temperature: *e.cfg.Temperature,
	})
	e.telemetry.RecordModelCall(ctx, e.model.Name(), err, time.Since(start))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "model call failed")
		return domain.ExtractedRecord{}, fmt.Errorf("model completion: %w", err)
	}

	fallback := Fallback(content, article, e.cfg.FallbackSummaryChars)

	rec, err := ParseResponse(reply)
	if err != nil {
		e.log.Warn("Model reply unreadable, using fallback record",
			logger.String("article_id", article.ID),
			logger.String("provider", e.model.Name()),
			logger.Error(err),
		)
		e.telemetry.RecordFallback(ctx)
		span.SetAttributes(attribute.Bool("extraction.fallback", true))
		return fallback, nil
	}

	rec.FillFrom(fallback)
	return rec, nil
}

// Fallback returns the degraded record used when a model reply cannot be read.
func Fallback(content string, article domain.RawArticle, summaryChars int) domain.ExtractedRecord {
	title := article.Title
	if title == "" {
		title = untitled
	}
	return domain.ExtractedRecord{
		Title:     title,
		Summary:   Truncate(content, summaryChars),
		KeyPoints: domain.StringList{},
		Entities:  domain.StringList{},
		Sentiment: domain.SentimentNeutral,
		Category:  defaultCategory,
		Tags:      domain.StringList{},
	}
}
