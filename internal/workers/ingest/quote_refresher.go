package ingest

import (
	"context"
	"time"

	"minerva/internal/domain/market_data"
	"minerva/internal/domain/strategy"
	marketsvc "minerva/internal/services/market_data"
	"minerva/internal/workers"
	"minerva/pkg/errors"
)

const strategyPageSize = 100

type quoteCache interface {
	SetMany(ctx context.Context, quotes []market_data.Quote) error
}

// QuoteRefresher periodically pulls fresh quotes for every symbol an
// active strategy watches, persists them to the analytics store and
// refreshes the hot cache the agent tools read from.
type QuoteRefresher struct {
	*workers.BaseWorker
	strategies *strategy.Service
	provider   market_data.Provider
	store      *marketsvc.Service
	cache      quoteCache
}

// NewQuoteRefresher creates the quote ingest worker.
func NewQuoteRefresher(
	strategies *strategy.Service,
	provider market_data.Provider,
	store *marketsvc.Service,
	cache quoteCache,
	interval time.Duration,
	enabled bool,
) *QuoteRefresher {
	return &QuoteRefresher{
		BaseWorker: workers.NewBaseWorker("quote_refresher", interval, enabled),
		strategies: strategies,
		provider:   provider,
		store:      store,
		cache:      cache,
	}
}

// Run fetches quotes for all watched symbols plus the market indices
func (qr *QuoteRefresher) Run(ctx context.Context) error {
	symbols, err := qr.watchedSymbols(ctx)
	if err != nil {
		return errors.Wrap(err, "collect watched symbols")
	}
	if len(symbols) == 0 {
		qr.Log().Debug("No symbols watched by active strategies")
		return nil
	}

	quotes := make([]market_data.Quote, 0, len(symbols))
	for _, symbol := range symbols {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		quote, err := qr.provider.FetchQuote(ctx, symbol)
		if err != nil {
			qr.Log().Warnw("Quote fetch failed", "symbol", symbol, "error", err)
			continue
		}
		quotes = append(quotes, *quote)
	}

	if len(quotes) == 0 {
		return errors.Wrap(errors.ErrInternal, "no quotes fetched")
	}

	if qr.cache != nil {
		if err := qr.cache.SetMany(ctx, quotes); err != nil {
			qr.Log().Warnw("Quote cache refresh failed", "error", err)
		}
	}

	batch := make([]interface{}, 0, len(quotes)+4)
	for _, q := range quotes {
		batch = append(batch, q)
	}

	if snapshots, err := qr.provider.FetchIndexSnapshots(ctx); err != nil {
		qr.Log().Warnw("Index snapshot fetch failed", "error", err)
	} else {
		for _, s := range snapshots {
			batch = append(batch, s)
		}
	}

	if qr.store != nil {
		if err := qr.store.StoreMixedBatch(ctx, batch); err != nil {
			return errors.Wrap(err, "store market data batch")
		}
	}

	qr.Log().Infow("Quotes refreshed", "symbols", len(symbols), "fetched", len(quotes))
	return nil
}

func (qr *QuoteRefresher) watchedSymbols(ctx context.Context) ([]string, error) {
	seen := make(map[string]struct{})
	var symbols []string

	offset := 0
	for {
		page, err := qr.strategies.List(ctx, strategyPageSize, offset)
		if err != nil {
			return nil, err
		}
		if len(page) == 0 {
			break
		}

		for _, st := range page {
			if st.Status != strategy.StatusActive {
				continue
			}
			for _, symbol := range st.Symbols {
				if _, ok := seen[symbol]; ok {
					continue
				}
				seen[symbol] = struct{}{}
				symbols = append(symbols, symbol)
			}
		}

		if len(page) < strategyPageSize {
			break
		}
		offset += strategyPageSize
	}

	return symbols, nil
}
