package clickhouse

import (
	"context"
	"fmt"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"minerva/internal/domain/market_data"
	"minerva/pkg/errors"
)

// Compile-time check
var _ market_data.Repository = (*MarketDataRepository)(nil)

// MarketDataRepository implements market_data.Repository using ClickHouse
type MarketDataRepository struct {
	conn driver.Conn
}

// NewMarketDataRepository creates a new market data repository
func NewMarketDataRepository(conn driver.Conn) *MarketDataRepository {
	return &MarketDataRepository{conn: conn}
}

// InsertQuotes inserts quote snapshots in batch
func (r *MarketDataRepository) InsertQuotes(ctx context.Context, quotes []market_data.Quote) error {
	if len(quotes) == 0 {
		return nil
	}

	batch, err := r.conn.PrepareBatch(ctx, `
		INSERT INTO quotes (
			symbol, name, price, open, high, low, prev_close,
			volume, turnover, change_percent, timestamp, collected_at
		)
	`)
	if err != nil {
		return errors.Wrap(err, "failed to prepare batch")
	}

	for _, q := range quotes {
		err := batch.Append(
			q.Symbol, q.Name, q.Price, q.Open, q.High, q.Low, q.PrevClose,
			q.Volume, q.Turnover, q.ChangePercent, q.Timestamp, q.CollectedAt,
		)
		if err != nil {
			return errors.Wrap(err, "failed to append quote")
		}
	}

	return batch.Send()
}

// GetLatestQuote retrieves the newest quote snapshot for a symbol
func (r *MarketDataRepository) GetLatestQuote(ctx context.Context, symbol string) (*market_data.Quote, error) {
	var quotes []market_data.Quote

	query := `
		SELECT symbol, name, price, open, high, low, prev_close,
		       volume, turnover, change_percent, timestamp, collected_at
		FROM quotes
		WHERE symbol = $1
		ORDER BY timestamp DESC
		LIMIT 1`

	if err := r.conn.Select(ctx, &quotes, query, symbol); err != nil {
		return nil, err
	}
	if len(quotes) == 0 {
		return nil, errors.Wrap(errors.ErrNotFound, "quote not found")
	}
	return &quotes[0], nil
}

// InsertKlines inserts candles in batch
func (r *MarketDataRepository) InsertKlines(ctx context.Context, klines []market_data.Kline) error {
	if len(klines) == 0 {
		return nil
	}

	batch, err := r.conn.PrepareBatch(ctx, `
		INSERT INTO klines (
			symbol, timeframe, open_time, close_time,
			open, high, low, close, volume, turnover, is_closed
		)
	`)
	if err != nil {
		return errors.Wrap(err, "failed to prepare batch")
	}

	for _, k := range klines {
		err := batch.Append(
			k.Symbol, k.Timeframe, k.OpenTime, k.CloseTime,
			k.Open, k.High, k.Low, k.Close, k.Volume, k.Turnover, k.IsClosed,
		)
		if err != nil {
			return errors.Wrap(err, "failed to append kline")
		}
	}

	return batch.Send()
}

// GetKlines retrieves candles with query parameters, newest first
func (r *MarketDataRepository) GetKlines(ctx context.Context, query market_data.KlineQuery) ([]market_data.Kline, error) {
	var klines []market_data.Kline

	sql := `
		SELECT symbol, timeframe, open_time, close_time,
		       open, high, low, close, volume, turnover, is_closed
		FROM klines
		WHERE symbol = $1 AND timeframe = $2`

	args := []interface{}{query.Symbol, query.Timeframe}

	if !query.From.IsZero() {
		sql += fmt.Sprintf(` AND open_time >= $%d`, len(args)+1)
		args = append(args, query.From)
	}
	if !query.To.IsZero() {
		sql += fmt.Sprintf(` AND open_time <= $%d`, len(args)+1)
		args = append(args, query.To)
	}

	sql += ` ORDER BY open_time DESC`

	if query.Limit > 0 {
		sql += fmt.Sprintf(` LIMIT $%d`, len(args)+1)
		args = append(args, query.Limit)
	}

	err := r.conn.Select(ctx, &klines, sql, args...)
	return klines, err
}

// GetLatestKlines retrieves the latest N candles, newest first
func (r *MarketDataRepository) GetLatestKlines(ctx context.Context, symbol, timeframe string, limit int) ([]market_data.Kline, error) {
	var klines []market_data.Kline

	sql := `
		SELECT symbol, timeframe, open_time, close_time,
		       open, high, low, close, volume, turnover, is_closed
		FROM klines
		WHERE symbol = $1 AND timeframe = $2
		ORDER BY open_time DESC
		LIMIT $3`

	err := r.conn.Select(ctx, &klines, sql, symbol, timeframe, limit)
	return klines, err
}

// InsertIndexSnapshots inserts index readings in batch
func (r *MarketDataRepository) InsertIndexSnapshots(ctx context.Context, snapshots []market_data.IndexSnapshot) error {
	if len(snapshots) == 0 {
		return nil
	}

	batch, err := r.conn.PrepareBatch(ctx, `
		INSERT INTO index_snapshots (
			code, name, value, change_percent, volume, turnover, timestamp
		)
	`)
	if err != nil {
		return errors.Wrap(err, "failed to prepare batch")
	}

	for _, s := range snapshots {
		err := batch.Append(s.Code, s.Name, s.Value, s.ChangePercent, s.Volume, s.Turnover, s.Timestamp)
		if err != nil {
			return errors.Wrap(err, "failed to append snapshot")
		}
	}

	return batch.Send()
}

// GetLatestIndexSnapshots retrieves the newest reading per index
func (r *MarketDataRepository) GetLatestIndexSnapshots(ctx context.Context) ([]market_data.IndexSnapshot, error) {
	var snapshots []market_data.IndexSnapshot

	query := `
		SELECT code, name, value, change_percent, volume, turnover, timestamp
		FROM index_snapshots
		ORDER BY timestamp DESC
		LIMIT 1 BY code`

	err := r.conn.Select(ctx, &snapshots, query)
	return snapshots, err
}
