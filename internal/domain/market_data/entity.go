package market_data

import "time"

// Quote represents a real-time stock quote snapshot
type Quote struct {
	Symbol        string    `ch:"symbol"`
	Name          string    `ch:"name"`
	Price         float64   `ch:"price"`
	Open          float64   `ch:"open"`
	High          float64   `ch:"high"`
	Low           float64   `ch:"low"`
	PrevClose     float64   `ch:"prev_close"`
	Volume        float64   `ch:"volume"`
	Turnover      float64   `ch:"turnover"`
	ChangePercent float64   `ch:"change_percent"`
	Timestamp     time.Time `ch:"timestamp"`
	CollectedAt   time.Time `ch:"collected_at"` // When we collected this data
}

// Kline represents candlestick data
type Kline struct {
	Symbol    string    `ch:"symbol"`
	Timeframe string    `ch:"timeframe"` // 1m, 5m, 15m, 1h, 1d
	OpenTime  time.Time `ch:"open_time"`
	CloseTime time.Time `ch:"close_time"`
	Open      float64   `ch:"open"`
	High      float64   `ch:"high"`
	Low       float64   `ch:"low"`
	Close     float64   `ch:"close"`
	Volume    float64   `ch:"volume"`
	Turnover  float64   `ch:"turnover"`
	IsClosed  bool      `ch:"is_closed"` // Whether the candle is final
}

// IndexSnapshot represents a market index reading
type IndexSnapshot struct {
	Code          string    `ch:"code"` // e.g. "000001.SH"
	Name          string    `ch:"name"`
	Value         float64   `ch:"value"`
	ChangePercent float64   `ch:"change_percent"`
	Volume        float64   `ch:"volume"`
	Turnover      float64   `ch:"turnover"`
	Timestamp     time.Time `ch:"timestamp"`
}

// KlineQuery filters kline lookups
type KlineQuery struct {
	Symbol    string
	Timeframe string
	From      time.Time
	To        time.Time
	Limit     int
}
