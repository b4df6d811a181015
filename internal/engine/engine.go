package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dataspeak/backend/internal/cache/redis"
	"github.com/dataspeak/backend/internal/classify"
	"github.com/dataspeak/backend/internal/language"
	"github.com/dataspeak/backend/internal/lexicon"
	"github.com/dataspeak/backend/internal/metrics"
	"github.com/dataspeak/backend/internal/normalize"
	"github.com/dataspeak/backend/internal/patterns"
	"github.com/dataspeak/backend/internal/sqlgen"
	"github.com/dataspeak/backend/internal/storage/models"
	"github.com/dataspeak/backend/internal/storage/sqlite"
	"github.com/dataspeak/backend/internal/structure"
	"github.com/dataspeak/backend/pkg/circuitbreaker"
	"github.com/dataspeak/backend/pkg/logger"
	"github.com/dataspeak/backend/pkg/utils"
)

type Engine struct {
	idx        *lexicon.Index
	normalizer *normalize.Normalizer
	detector   *language.Detector
	classifier *classify.Classifier
	builder    *structure.Builder
	generator  *sqlgen.Generator
	db         *sqlite.Client
	cache      *redis.Client
	breaker    *circuitbreaker.CircuitBreaker
	cacheTTL   time.Duration
	execute    bool
}

type QueryRequest struct {
	Query  string
	UserID string
}

type QueryResponse struct {
	ID         string                    `json:"id"`
	Query      string                    `json:"query"`
	Language   lexicon.Language          `json:"language"`
	Structure  *structure.QueryStructure `json:"structure,omitempty"`
	Failure    *structure.QueryFailure   `json:"failure,omitempty"`
	SQL        string                    `json:"sql,omitempty"`
	Rows       []map[string]interface{}  `json:"rows,omitempty"`
	Confidence float64                   `json:"confidence"`
	Complexity string                    `json:"complexity,omitempty"`
	LatencyMS  int                       `json:"latency_ms"`
	Cached     bool                      `json:"cached"`
}

func NewEngine(
	idx *lexicon.Index,
	normalizer *normalize.Normalizer,
	detector *language.Detector,
	classifier *classify.Classifier,
	builder *structure.Builder,
	generator *sqlgen.Generator,
	db *sqlite.Client,
	cache *redis.Client,
	cacheTTL time.Duration,
	execute bool,
) *Engine {
	e := &Engine{
		idx:        idx,
		normalizer: normalizer,
		detector:   detector,
		classifier: classifier,
		builder:    builder,
		generator:  generator,
		db:         db,
		cache:      cache,
		cacheTTL:   cacheTTL,
		execute:    execute,
	}

	if cache != nil {
		e.breaker = circuitbreaker.NewCircuitBreaker("query-cache", circuitbreaker.Config{
			FailureThreshold: 5,
			SuccessThreshold: 2,
			Timeout:          30 * time.Second,
			Logger:           logger.Log,
		})
	}

	return e
}

func (e *Engine) ProcessQuery(ctx context.Context, req QueryRequest) (*QueryResponse, error) {
	startTime := time.Now()
	queryHash := utils.HashString(req.Query)

	logger.Info("Processing query",
		zap.String("query_hash", queryHash),
		zap.String("query", req.Query),
	)

	if cached := e.fromCache(ctx, queryHash); cached != nil {
		cached.Cached = true
		cached.LatencyMS = int(time.Since(startTime).Milliseconds())
		metrics.CacheHits.WithLabelValues("query").Inc()
		metrics.QueryTotal.WithLabelValues("cached").Inc()
		return cached, nil
	}
	if e.cache != nil {
		metrics.CacheMisses.WithLabelValues("query").Inc()
	}

	normalized, _ := e.normalizer.Normalize(req.Query)
	tokens := normalize.Tokens(normalized)
	if len(tokens) == 0 {
		return nil, fmt.Errorf("query is empty after normalization")
	}

	lang := e.detector.Detect(tokens)
	metrics.QueryLanguage.WithLabelValues(string(lang)).Inc()

	result := e.classifier.ClassifyTokens(lang, tokens)
	detected := patterns.DetectAll(e.idx, result, logger.Log)

	qs, failure := e.builder.Build(normalized, result, detected)
	if failure != nil {
		return e.failureResponse(req, lang, failure, startTime)
	}

	resp := &QueryResponse{
		ID:         uuid.New().String(),
		Query:      req.Query,
		Language:   lang,
		Structure:  qs,
		Confidence: qs.Confidence,
		Complexity: string(qs.Complexity),
	}

	sql, err := e.generator.Generate(qs)
	if err != nil {
		return nil, fmt.Errorf("failed to generate sql: %w", err)
	}
	resp.SQL = sql

	if e.execute {
		rows, err := e.db.ExecuteSQL(resp.SQL)
		if err != nil {
			logger.Warn("Generated SQL failed against dataset",
				zap.String("sql", resp.SQL),
				zap.Error(err),
			)
		} else {
			resp.Rows = rows
		}
	}

	resp.LatencyMS = int(time.Since(startTime).Milliseconds())

	e.persistSuccess(req, resp, qs)
	e.toCache(ctx, queryHash, resp)

	metrics.QueryTotal.WithLabelValues("success").Inc()
	metrics.QueryDuration.WithLabelValues(string(qs.Pattern)).Observe(time.Since(startTime).Seconds())
	metrics.QueryComplexity.WithLabelValues(string(qs.Complexity)).Inc()
	metrics.ConfidenceScore.Observe(qs.Confidence)

	logger.Info("Query processed successfully",
		zap.String("query_id", resp.ID),
		zap.String("pattern", string(qs.Pattern)),
		zap.String("complexity", string(qs.Complexity)),
		zap.Float64("confidence", qs.Confidence),
		zap.Int("latency_ms", resp.LatencyMS),
	)

	return resp, nil
}

// failureResponse records the failed session and its unknown words so the
// dictionaries can be grown from real traffic. The response carries no
// structure and no SQL.
func (e *Engine) failureResponse(req QueryRequest, lang lexicon.Language, failure *structure.QueryFailure, startTime time.Time) (*QueryResponse, error) {
	record := &models.FailureRecord{
		SessionID:    failure.SessionID,
		UserID:       req.UserID,
		QueryText:    req.Query,
		UnknownCount: len(failure.UnknownWords),
		CreatedAt:    failure.Timestamp,
	}

	unknowns := make([]models.UnknownWordRecord, 0, len(failure.UnknownWords))
	for _, u := range failure.UnknownWords {
		unknowns = append(unknowns, models.UnknownWordRecord{
			SessionID:     failure.SessionID,
			Word:          u.Word,
			Position:      u.Position,
			Context:       u.Context,
			SuggestedType: u.SuggestedType,
			Suggestion:    u.Suggestion,
			Confidence:    u.Confidence,
			CreatedAt:     u.Timestamp,
		})
	}

	if err := e.db.InsertFailure(record, unknowns); err != nil {
		logger.Error("Failed to persist query failure", zap.Error(err))
	}

	metrics.QueryTotal.WithLabelValues("failure").Inc()
	metrics.UnknownWordsTotal.Add(float64(len(failure.UnknownWords)))

	logger.Info("Query rejected with unknown words",
		zap.String("session_id", failure.SessionID),
		zap.Int("unknown_words", len(failure.UnknownWords)),
	)

	return &QueryResponse{
		ID:        failure.SessionID,
		Query:     req.Query,
		Language:  lang,
		Failure:   failure,
		LatencyMS: int(time.Since(startTime).Milliseconds()),
	}, nil
}

func (e *Engine) persistSuccess(req QueryRequest, resp *QueryResponse, qs *structure.QueryStructure) {
	record := &models.QueryRecord{
		ID:         resp.ID,
		UserID:     req.UserID,
		QueryText:  req.Query,
		Language:   string(resp.Language),
		Pattern:    string(qs.Pattern),
		Complexity: string(qs.Complexity),
		SQL:        resp.SQL,
		Confidence: qs.Confidence,
		RowCount:   len(resp.Rows),
		Cached:     false,
		LatencyMS:  resp.LatencyMS,
		CreatedAt:  time.Now(),
	}

	if err := e.db.InsertQueryRecord(record); err != nil {
		logger.Error("Failed to persist query record", zap.Error(err))
	}
}

// fromCache reads through the circuit breaker so a flapping Redis cannot
// stall the query path.
func (e *Engine) fromCache(ctx context.Context, queryHash string) *QueryResponse {
	if e.cache == nil {
		return nil
	}

	var resp QueryResponse
	var found bool
	err := e.breaker.Execute(ctx, func() error {
		var err error
		found, err = e.cache.GetResult(ctx, queryHash, &resp)
		return err
	})
	if err != nil {
		logger.Debug("Cache lookup skipped", zap.Error(err))
		return nil
	}
	if !found {
		return nil
	}
	return &resp
}

func (e *Engine) toCache(ctx context.Context, queryHash string, resp *QueryResponse) {
	if e.cache == nil {
		return
	}

	err := e.breaker.Execute(ctx, func() error {
		return e.cache.SetResult(ctx, queryHash, resp, e.cacheTTL)
	})
	if err != nil {
		logger.Debug("Cache write skipped", zap.Error(err))
	}
}

func (e *Engine) History(userID string, limit int) ([]models.QueryRecord, error) {
	return e.db.GetQueryHistory(userID, limit)
}

func (e *Engine) StoreFeedback(fb *models.Feedback) error {
	if err := e.db.StoreFeedback(fb); err != nil {
		return err
	}

	helpful := "false"
	score := 0.0
	if fb.Helpful {
		helpful = "true"
		score = 1.0
	}
	metrics.UserSatisfaction.WithLabelValues(helpful).Set(score)

	return nil
}
