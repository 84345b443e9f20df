package nutrition

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"golang.org/x/sync/errgroup"
)

const (
	MaxBatchDishes = 20

	defaultBatchSize  = 3
	defaultBatchDelay = time.Second
)

// ErrBatchSize is returned when a batch is empty or larger than MaxBatchDishes.
var ErrBatchSize = fmt.Errorf("batch must contain 1 to %d dishes", MaxBatchDishes)

// Searcher resolves a dish name to FatSecret nutrition. *Client implements it.
type Searcher interface {
	Search(ctx context.Context, dish string) (*Match, error)
}

// Service answers calorie questions. It never fails a single lookup: anything that goes wrong
// with FatSecret falls back to a keyword estimate.
type Service struct {
	searcher   Searcher
	batchSize  int
	batchDelay time.Duration
	sleep      func(ctx context.Context, d time.Duration) error
}

type ServiceOption func(*Service)

// WithBatchDelay overrides the pause between batches.
func WithBatchDelay(d time.Duration) ServiceOption {
	return func(s *Service) { s.batchDelay = d }
}

// WithBatchSize overrides how many dishes are looked up concurrently.
func WithBatchSize(n int) ServiceOption {
	return func(s *Service) {
		if n > 0 {
			s.batchSize = n
		}
	}
}

// NewService builds a Service. A nil searcher means FatSecret is not configured and every lookup is estimated.
func NewService(searcher Searcher, opts ...ServiceOption) *Service {
	s := &Service{
		searcher:   searcher,
		batchSize:  defaultBatchSize,
		batchDelay: defaultBatchDelay,
		sleep:      sleepCtx,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Lookup returns calorie info for one dish.
func (s *Service) Lookup(ctx context.Context, dish string, includeNutrition bool) CalorieInfo {
	if s.searcher == nil {
		return estimated(dish, includeNutrition, "无法连接到FatSecret API，提供估算数据")
	}

	m, err := s.searcher.Search(ctx, dish)
	switch {
	case errors.Is(err, ErrAuth):
		slog.Warn("NUTRITION: auth failed, estimating", "dish", dish, "error", err)
		return estimated(dish, includeNutrition, "无法连接到FatSecret API，提供估算数据")
	case err != nil:
		if !errors.Is(err, ErrNoMatch) {
			slog.Warn("NUTRITION: search failed, estimating", "dish", dish, "error", err)
		}
		return estimated(dish, includeNutrition, "未找到匹配的食品，提供估算数据")
	}

	info := CalorieInfo{
		DishName:           dish,
		MatchedFood:        m.MatchedFood,
		CaloriesPerServing: m.Facts.Calories,
		Source:             SourceFatSecret,
		Confidence:         m.Confidence,
		Message:            fmt.Sprintf("找到匹配食品\"%s\"，置信度：%s", m.MatchedFood, m.Confidence),
	}
	if m.Estimated {
		info.Source = SourceEstimate
		info.Message += "，营养数据为估算值"
	}
	if includeNutrition {
		facts := m.Facts
		info.Nutrition = &facts
	}
	return info
}

// LookupBatch looks up several dishes in batches. Dishes within a batch run concurrently and
// batches are separated by a pause to stay under the FatSecret rate limit. Results keep input order.
func (s *Service) LookupBatch(ctx context.Context, dishes []string, includeNutrition bool) (BatchResult, error) {
	if len(dishes) == 0 || len(dishes) > MaxBatchDishes {
		return BatchResult{}, ErrBatchSize
	}

	slog.Info("NUTRITION: batch lookup", "dishes", len(dishes), "batch_size", s.batchSize)

	results := make([]CalorieInfo, len(dishes))
	for start := 0; start < len(dishes); start += s.batchSize {
		end := min(start+s.batchSize, len(dishes))

		var g errgroup.Group
		g.SetLimit(s.batchSize)
		for i := start; i < end; i++ {
			g.Go(func() error {
				results[i] = s.Lookup(ctx, dishes[i], includeNutrition)
				return nil
			})
		}
		_ = g.Wait()

		if end < len(dishes) {
			if err := s.sleep(ctx, s.batchDelay); err != nil {
				return BatchResult{}, err
			}
		}
	}

	return summarize(results), nil
}

func summarize(results []CalorieInfo) BatchResult {
	var total float64
	var api, est int
	confidences := make([]Confidence, 0, len(results))
	for _, r := range results {
		total += r.CaloriesPerServing
		if r.Source == SourceFatSecret {
			api++
		} else {
			est++
		}
		confidences = append(confidences, r.Confidence)
	}

	summary := BatchSummary{
		TotalDishes:       len(results),
		TotalCalories:     int(math.Round(total)),
		APIQueries:        api,
		EstimatedQueries:  est,
		AverageConfidence: AverageConfidence(confidences),
	}
	successRate := float64(api) / float64(len(results)) * 100

	return BatchResult{
		Results: results,
		Summary: summary,
		Message: fmt.Sprintf("批量查询完成：%d个菜品，总计%d卡路里。API成功率：%.1f%%，平均置信度：%s",
			summary.TotalDishes, summary.TotalCalories, successRate, summary.AverageConfidence),
	}
}

func estimated(dish string, includeNutrition bool, message string) CalorieInfo {
	facts := Estimate(dish)
	info := CalorieInfo{
		DishName:           dish,
		CaloriesPerServing: facts.Calories,
		Source:             SourceEstimate,
		Confidence:         ConfidenceLow,
		Message:            message,
	}
	if includeNutrition {
		info.Nutrition = &facts
	}
	return info
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
