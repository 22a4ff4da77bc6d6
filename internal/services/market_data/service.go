package market_data

import (
	"context"

	"minerva/internal/domain/market_data"
	"minerva/pkg/errors"
	"minerva/pkg/logger"
)

// Service handles market data business logic
// Provides abstraction over ClickHouse repository for ingest workers
type Service struct {
	repository market_data.Repository
	log        *logger.Logger
}

// NewService creates a new market data service
func NewService(
	repository market_data.Repository,
	log *logger.Logger,
) *Service {
	return &Service{
		repository: repository,
		log:        log,
	}
}

// StoreMixedBatch stores a mixed batch of market data items
// Groups items by type and inserts them efficiently
func (s *Service) StoreMixedBatch(ctx context.Context, batch []interface{}) error {
	if len(batch) == 0 {
		return nil
	}

	var (
		quotes    []market_data.Quote
		klines    []market_data.Kline
		snapshots []market_data.IndexSnapshot
	)

	// Group by type
	for _, item := range batch {
		switch v := item.(type) {
		case market_data.Quote:
			quotes = append(quotes, v)
		case market_data.Kline:
			klines = append(klines, v)
		case market_data.IndexSnapshot:
			snapshots = append(snapshots, v)
		}
	}

	// Insert each type
	if len(quotes) > 0 {
		if err := s.repository.InsertQuotes(ctx, quotes); err != nil {
			return errors.Wrap(err, "insert quotes")
		}
		s.log.Infow("  → Inserted quotes", "count", len(quotes))
	}

	if len(klines) > 0 {
		if err := s.repository.InsertKlines(ctx, klines); err != nil {
			return errors.Wrap(err, "insert klines")
		}
		s.log.Infow("  → Inserted klines", "count", len(klines))
	}

	if len(snapshots) > 0 {
		if err := s.repository.InsertIndexSnapshots(ctx, snapshots); err != nil {
			return errors.Wrap(err, "insert index snapshots")
		}
		s.log.Infow("  → Inserted index snapshots", "count", len(snapshots))
	}

	return nil
}
