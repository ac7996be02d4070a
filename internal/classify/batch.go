package classify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/JakeFAU/topic-classifier/internal/metrics"
)

// BatchCoordinator drives the prediction engine over a list of URLs. One
// URL failing never aborts the rest; failures are reported per item.
type BatchCoordinator struct {
	engine    *Engine
	ids       IDGenerator
	publisher Publisher
	logger    *zap.Logger
}

// NewBatchCoordinator wires the batch coordinator. publisher may be nil.
func NewBatchCoordinator(engine *Engine, ids IDGenerator, publisher Publisher, logger *zap.Logger) *BatchCoordinator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BatchCoordinator{
		engine:    engine,
		ids:       ids,
		publisher: publisher,
		logger:    logger,
	}
}

// BatchPredict classifies every URL in urls under one fresh batch ID and
// groups successful results by predicted label. Blank entries are skipped
// silently; failed entries are recorded and processing continues.
func (c *BatchCoordinator) BatchPredict(ctx context.Context, urls []string, userID string) (BatchResult, error) {
	if len(urls) == 0 {
		return BatchResult{}, fmt.Errorf("%w: no URLs provided", ErrInvalidInput)
	}

	batchID, err := c.ids.NewID()
	if err != nil {
		return BatchResult{}, fmt.Errorf("generate batch id: %w", err)
	}

	result := BatchResult{
		Results: make([]BatchItem, 0, len(urls)),
		Grouped: make(map[string][]string),
		BatchID: batchID,
	}
	for _, url := range urls {
		if strings.TrimSpace(url) == "" {
			continue
		}
		pred, err := c.engine.predict(ctx, url, userID, batchID)
		if err != nil {
			c.logger.Warn("batch item failed",
				zap.String("batch_id", batchID),
				zap.String("url", url),
				zap.Error(err),
			)
			result.Results = append(result.Results, BatchItem{URL: url, Err: err.Error()})
			continue
		}
		result.Results = append(result.Results, BatchItem{
			URL:       url,
			Label:     pred.Label,
			FromCache: pred.FromCache,
		})
		result.Grouped[pred.Label] = append(result.Grouped[pred.Label], url)
	}

	metrics.RecordBatch(len(result.Results))
	c.notify(ctx, result)
	return result, nil
}

func (c *BatchCoordinator) notify(ctx context.Context, result BatchResult) {
	if c.publisher == nil {
		return
	}
	payload, err := json.Marshal(map[string]any{
		"event":    "batch_completed",
		"batch_id": result.BatchID,
		"count":    len(result.Results),
	})
	if err != nil {
		return
	}
	if err := c.publisher.Publish(ctx, string(payload)); err != nil {
		c.logger.Warn("batch notification failed",
			zap.String("batch_id", result.BatchID),
			zap.Error(err),
		)
	}
}
