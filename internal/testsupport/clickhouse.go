package testsupport

import (
	"context"
	"fmt"
	"testing"
	"time"

	"minerva/internal/adapters/clickhouse"
	"minerva/internal/adapters/config"
	"minerva/internal/domain/market_data"
)

// ClickHouseTestHelper manages cleanup for ClickHouse integration tests.
type ClickHouseTestHelper struct {
	client *clickhouse.Client
}

// NewClickHouseTestHelper creates a ClickHouse client for tests.
func NewClickHouseTestHelper(t *testing.T, cfg config.ClickHouseConfig) *ClickHouseTestHelper {
	t.Helper()

	client, err := clickhouse.NewClient(cfg)
	if err != nil {
		t.Fatalf("failed to connect to clickhouse: %v", err)
	}

	helper := &ClickHouseTestHelper{client: client}
	t.Cleanup(func() { _ = client.Close() })
	return helper
}

// CreateTempTable creates a temporary table and registers cleanup.
func (h *ClickHouseTestHelper) CreateTempTable(t *testing.T, schema string) string {
	t.Helper()

	table := fmt.Sprintf("tmp_test_%d", time.Now().UnixNano())
	query := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s) ENGINE = MergeTree() ORDER BY tuple()", table, schema)

	if err := h.client.Exec(context.Background(), query); err != nil {
		t.Fatalf("failed to create clickhouse table: %v", err)
	}

	t.Cleanup(func() {
		_ = h.client.Exec(context.Background(), fmt.Sprintf("DROP TABLE IF EXISTS %s", table))
	})

	return table
}

// CleanupTable drops the provided table immediately.
func (h *ClickHouseTestHelper) CleanupTable(ctx context.Context, table string) error {
	return h.client.Exec(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s", table))
}

// TruncateTable removes all data from the table but keeps the structure
func (h *ClickHouseTestHelper) TruncateTable(ctx context.Context, table string) error {
	return h.client.Exec(ctx, fmt.Sprintf("TRUNCATE TABLE IF EXISTS %s", table))
}

// CleanupTableData deletes data matching a filter condition
// Example: CleanupTableData(ctx, "klines", "symbol = 'TEST001'")
func (h *ClickHouseTestHelper) CleanupTableData(ctx context.Context, table, condition string) error {
	query := fmt.Sprintf("ALTER TABLE %s DELETE WHERE %s", table, condition)
	return h.client.Exec(ctx, query)
}

// RegisterTableCleanup schedules cleanup of specific table data after test completes
// This is useful when working with shared tables that shouldn't be dropped
func (h *ClickHouseTestHelper) RegisterTableCleanup(t *testing.T, table, condition string) {
	t.Helper()
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		// Use DELETE for immediate cleanup (ALTER TABLE DELETE is async)
		query := fmt.Sprintf("DELETE FROM %s WHERE %s", table, condition)
		_ = h.client.Exec(ctx, query)
	})
}

// CreateBatch is a generic function to insert test data into ClickHouse tables
// Usage: testsupport.CreateBatch(t, helper, testsupport.InsertKlines, klines)
func CreateBatch[T any](t *testing.T, helper *ClickHouseTestHelper, insertQuery string, items []T) {
	t.Helper()

	if len(items) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	batch, err := helper.client.Conn().PrepareBatch(ctx, insertQuery)
	if err != nil {
		t.Fatalf("failed to prepare batch: %v", err)
	}

	for _, item := range items {
		if err := batch.AppendStruct(&item); err != nil {
			t.Fatalf("failed to append item to batch: %v", err)
		}
	}

	if err := batch.Send(); err != nil {
		t.Fatalf("failed to send batch: %v", err)
	}
}

// Predefined insert queries for common tables
const (
	InsertKlines = `
		INSERT INTO klines (
			symbol, timeframe, open_time, close_time,
			open, high, low, close, volume, turnover, is_closed
		)
	`

	InsertQuotes = `
		INSERT INTO quotes (
			symbol, name, price, open, high, low, prev_close,
			volume, turnover, change_percent, timestamp, collected_at
		)
	`
)

// Client exposes the raw ClickHouse client for queries.
func (h *ClickHouseTestHelper) Client() *clickhouse.Client {
	return h.client
}

// KlineFixture provides builder pattern for creating test candles
type KlineFixture struct {
	kline market_data.Kline
}

// NewKlineFixture creates a default candle for testing.
// Defaults to hourly candles for 600519 with realistic values.
func NewKlineFixture() *KlineFixture {
	now := time.Now().Truncate(time.Minute)
	return &KlineFixture{
		kline: market_data.Kline{
			Symbol:    "600519",
			Timeframe: "1h",
			OpenTime:  now,
			CloseTime: now.Add(1 * time.Hour),
			Open:      1700.0,
			High:      1712.0,
			Low:       1695.0,
			Close:     1708.0,
			Volume:    25000,
			Turnover:  42600000.0,
			IsClosed:  true,
		},
	}
}

// WithSymbol sets the symbol
func (f *KlineFixture) WithSymbol(symbol string) *KlineFixture {
	f.kline.Symbol = symbol
	return f
}

// WithTimeframe sets the timeframe
func (f *KlineFixture) WithTimeframe(timeframe string) *KlineFixture {
	f.kline.Timeframe = timeframe
	return f
}

// WithOpenTime sets the open time and calculates close time based on timeframe
func (f *KlineFixture) WithOpenTime(t time.Time) *KlineFixture {
	f.kline.OpenTime = t
	f.kline.CloseTime = t.Add(parseTimeframeDuration(f.kline.Timeframe))
	return f
}

// WithTimes sets both open and close times explicitly
func (f *KlineFixture) WithTimes(openTime, closeTime time.Time) *KlineFixture {
	f.kline.OpenTime = openTime
	f.kline.CloseTime = closeTime
	return f
}

// WithPrices sets OHLC prices
func (f *KlineFixture) WithPrices(open, high, low, close float64) *KlineFixture {
	f.kline.Open = open
	f.kline.High = high
	f.kline.Low = low
	f.kline.Close = close
	return f
}

// WithVolume sets volume and turnover
func (f *KlineFixture) WithVolume(volume, turnover float64) *KlineFixture {
	f.kline.Volume = volume
	f.kline.Turnover = turnover
	return f
}

// WithIsClosed sets whether the candle is closed/final
func (f *KlineFixture) WithIsClosed(isClosed bool) *KlineFixture {
	f.kline.IsClosed = isClosed
	return f
}

// Bullish creates a bullish candle (close above open)
func (f *KlineFixture) Bullish() *KlineFixture {
	basePrice := f.kline.Open
	f.kline.High = basePrice * 1.03
	f.kline.Low = basePrice * 0.99
	f.kline.Close = basePrice * 1.02
	return f
}

// Bearish creates a bearish candle (close below open)
func (f *KlineFixture) Bearish() *KlineFixture {
	basePrice := f.kline.Open
	f.kline.High = basePrice * 1.01
	f.kline.Low = basePrice * 0.97
	f.kline.Close = basePrice * 0.98
	return f
}

// Build returns the constructed candle
func (f *KlineFixture) Build() market_data.Kline {
	return f.kline
}

// BuildMany creates multiple candles with sequential timestamps
func (f *KlineFixture) BuildMany(count int) []market_data.Kline {
	klines := make([]market_data.Kline, count)
	duration := parseTimeframeDuration(f.kline.Timeframe)

	for i := 0; i < count; i++ {
		kline := f.kline
		kline.OpenTime = f.kline.OpenTime.Add(time.Duration(i) * duration)
		kline.CloseTime = kline.OpenTime.Add(duration)
		klines[i] = kline
	}

	return klines
}

// QuoteFixture provides builder pattern for creating test quotes
type QuoteFixture struct {
	quote market_data.Quote
}

// NewQuoteFixture creates a default quote snapshot for testing
func NewQuoteFixture() *QuoteFixture {
	now := time.Now().Truncate(time.Second)
	return &QuoteFixture{
		quote: market_data.Quote{
			Symbol:        "600519",
			Name:          "贵州茅台",
			Price:         1708.0,
			Open:          1700.0,
			High:          1712.0,
			Low:           1695.0,
			PrevClose:     1698.0,
			Volume:        3500000,
			Turnover:      5960000000.0,
			ChangePercent: 0.59,
			Timestamp:     now,
			CollectedAt:   now,
		},
	}
}

// WithSymbol sets the symbol
func (f *QuoteFixture) WithSymbol(symbol string) *QuoteFixture {
	f.quote.Symbol = symbol
	return f
}

// WithName sets the display name
func (f *QuoteFixture) WithName(name string) *QuoteFixture {
	f.quote.Name = name
	return f
}

// WithPrice sets the last price and adjusts related fields proportionally
func (f *QuoteFixture) WithPrice(price float64) *QuoteFixture {
	f.quote.Price = price
	f.quote.Open = price * 0.995
	f.quote.High = price * 1.01
	f.quote.Low = price * 0.99
	f.quote.PrevClose = price * 0.994
	f.quote.ChangePercent = (price - f.quote.PrevClose) / f.quote.PrevClose * 100
	return f
}

// WithPrices sets price fields explicitly
func (f *QuoteFixture) WithPrices(price, open, high, low, prevClose float64) *QuoteFixture {
	f.quote.Price = price
	f.quote.Open = open
	f.quote.High = high
	f.quote.Low = low
	f.quote.PrevClose = prevClose
	if prevClose != 0 {
		f.quote.ChangePercent = (price - prevClose) / prevClose * 100
	}
	return f
}

// WithVolume sets volume and turnover
func (f *QuoteFixture) WithVolume(volume, turnover float64) *QuoteFixture {
	f.quote.Volume = volume
	f.quote.Turnover = turnover
	return f
}

// WithTimestamp sets the quote timestamp
func (f *QuoteFixture) WithTimestamp(t time.Time) *QuoteFixture {
	f.quote.Timestamp = t
	f.quote.CollectedAt = t
	return f
}

// Build returns the constructed quote
func (f *QuoteFixture) Build() market_data.Quote {
	return f.quote
}

// BuildMany creates multiple quotes with sequential timestamps
func (f *QuoteFixture) BuildMany(count int) []market_data.Quote {
	quotes := make([]market_data.Quote, count)

	for i := 0; i < count; i++ {
		quote := f.quote
		quote.Timestamp = f.quote.Timestamp.Add(time.Duration(i) * time.Second)
		quote.CollectedAt = quote.Timestamp
		quotes[i] = quote
	}

	return quotes
}

// parseTimeframeDuration converts timeframe string to duration
func parseTimeframeDuration(timeframe string) time.Duration {
	switch timeframe {
	case "1m":
		return 1 * time.Minute
	case "5m":
		return 5 * time.Minute
	case "15m":
		return 15 * time.Minute
	case "1h":
		return 1 * time.Hour
	case "4h":
		return 4 * time.Hour
	case "1d":
		return 24 * time.Hour
	default:
		return 1 * time.Hour
	}
}

// BuildManyWith is a generic helper to create multiple instances with custom modifications
func BuildManyWith[T any](base T, count int, modifier func(T, int) T) []T {
	items := make([]T, count)
	for i := 0; i < count; i++ {
		items[i] = modifier(base, i)
	}
	return items
}

// KlineSequence creates a sequence of candles with incrementing time
func KlineSequence(base market_data.Kline, count int, timeframe string) []market_data.Kline {
	duration := parseTimeframeDuration(timeframe)
	return BuildManyWith(base, count, func(kline market_data.Kline, i int) market_data.Kline {
		kline.OpenTime = base.OpenTime.Add(time.Duration(i) * duration)
		kline.CloseTime = kline.OpenTime.Add(duration)
		return kline
	})
}
