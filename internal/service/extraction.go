// Package service runs extraction batches: one article at a time, extract
// then store, with per-article failures collected instead of returned.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/jonesrussell/content-extraction/infrastructure/logger"
	"github.com/jonesrussell/content-extraction/internal/domain"
	"github.com/jonesrussell/content-extraction/internal/telemetry"
)

// Per-article failures detected before any external call.
var (
	ErrMissingContent = errors.New(domain.ErrMsgMissingContent)
	ErrInvalidArticle = errors.New(domain.ErrMsgInvalidArticle)
)

// Extractor derives a record from article text.
type Extractor interface {
	Extract(ctx context.Context, content string, article domain.RawArticle) (domain.ExtractedRecord, error)
}

// Store persists one extracted article.
type Store interface {
	Store(ctx context.Context, article domain.RawArticle, record domain.ExtractedRecord) error
	Driver() string
}

// ExtractionService is the batch pipeline.
type ExtractionService struct {
	extractor Extractor
	store     Store
	log       logger.Logger
	telemetry *telemetry.Provider
}

// NewExtractionService creates the pipeline. tp may be nil.
func NewExtractionService(extractor Extractor, store Store, log logger.Logger, tp *telemetry.Provider) *ExtractionService {
	if log == nil {
		log = logger.NewNop()
	}
	return &ExtractionService{
		extractor: extractor,
		store:     store,
		log:       log,
		telemetry: tp,
	}
}

// Run processes articles in input order. A failing article is recorded in
// the result and the batch continues. The error is non-nil only when ctx
// ends before every article was processed.
func (s *ExtractionService) Run(ctx context.Context, articles []domain.RawArticle) (domain.BatchResult, error) {
	result := domain.NewBatchResult()
	total := len(articles)

	ctx, span := s.telemetry.StartSpan(ctx, "extraction.batch", attribute.Int("batch.size", total))
	defer span.End()

	s.telemetry.RecordBatchSize(total)
	s.log.Info("Starting content extraction", logger.Int("articles", total))
	start := time.Now()

	for _, article := range articles {
		if err := ctx.Err(); err != nil {
			span.RecordError(err)
			return result, fmt.Errorf("extraction stopped after %d of %d articles: %w", result.Processed, total, err)
		}

		result.Processed++
		articleID := domain.ArticleRef(article, result.Processed)

		outcome, err := s.process(ctx, article)
		s.telemetry.RecordArticle(ctx, outcome)
		if err != nil {
			result.Fail(articleID, err.Error())
			s.log.Warn("Failed to process article",
				logger.String("article_id", articleID),
				logger.Int("position", result.Processed),
				logger.String("outcome", outcome),
				logger.Error(err),
			)
			continue
		}

		result.Succeed()
		s.log.Debug("Processed article",
			logger.String("article_id", articleID),
			logger.Int("position", result.Processed),
			logger.Int("total", total),
		)
	}

	span.SetAttributes(
		attribute.Int("batch.successful", result.Successful),
		attribute.Int("batch.failed", result.Failed),
	)
	s.log.Info("Content extraction completed",
		logger.Int("processed", result.Processed),
		logger.Int("successful", result.Successful),
		logger.Int("failed", result.Failed),
		logger.Duration("duration", time.Since(start)),
	)
	return result, nil
}

// process handles one article and returns its metrics outcome.
func (s *ExtractionService) process(ctx context.Context, article domain.RawArticle) (string, error) {
	if article.Malformed {
		return telemetry.OutcomeInvalid, ErrInvalidArticle
	}

	content, ok := article.ContentText()
	if !ok {
		return telemetry.OutcomeMissingContent, ErrMissingContent
	}

	record, err := s.extractor.Extract(ctx, content, article)
	if err != nil {
		return telemetry.OutcomeModelError, err
	}

	start := time.Now()
	err = s.store.Store(ctx, article, record)
	s.telemetry.RecordStoreWrite(ctx, s.store.Driver(), err, time.Since(start))
	if err != nil {
		return telemetry.OutcomeStoreError, err
	}
	return telemetry.OutcomeSuccess, nil
}
