package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"minerva/internal/domain/market_data"
	"minerva/pkg/errors"
)

const (
	quoteBaseURL       = "https://push2.eastmoney.com"
	klineBaseURL       = "https://push2his.eastmoney.com"
	defaultHTTPTimeout = 10 * time.Second
	defaultRatePerSec  = 5
)

// eastmoney price fields arrive scaled by 100
const priceScale = 100.0

var indexCodes = []struct {
	code string
	name string
}{
	{"000001.SH", "上证指数"},
	{"399001.SZ", "深证成指"},
	{"399006.SZ", "创业板指"},
}

var timeframeKlt = map[string]string{
	"1m":  "1",
	"5m":  "5",
	"15m": "15",
	"30m": "30",
	"1h":  "60",
	"1d":  "101",
	"1w":  "102",
}

// Config configures the eastmoney client.
type Config struct {
	HTTPClient *http.Client
	RatePerSec int
}

// NewClient creates an eastmoney-backed market data provider.
func NewClient(cfg Config) market_data.Provider {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultHTTPTimeout}
	}
	perSec := cfg.RatePerSec
	if perSec <= 0 {
		perSec = defaultRatePerSec
	}

	return &client{
		httpClient: httpClient,
		limiter:    rate.NewLimiter(rate.Limit(perSec), perSec),
	}
}

type client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
}

var _ market_data.Provider = (*client)(nil)

func (c *client) FetchQuote(ctx context.Context, symbol string) (*market_data.Quote, error) {
	params := url.Values{
		"secid":  []string{secID(symbol)},
		"fields": []string{"f43,f44,f45,f46,f47,f48,f57,f58,f60,f170"},
	}

	data, err := c.get(ctx, quoteBaseURL, "/api/qt/stock/get", params)
	if err != nil {
		return nil, err
	}

	var res struct {
		Data *struct {
			Price         float64 `json:"f43"`
			High          float64 `json:"f44"`
			Low           float64 `json:"f45"`
			Open          float64 `json:"f46"`
			Volume        float64 `json:"f47"`
			Turnover      float64 `json:"f48"`
			Code          string  `json:"f57"`
			Name          string  `json:"f58"`
			PrevClose     float64 `json:"f60"`
			ChangePercent float64 `json:"f170"`
		} `json:"data"`
	}
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, errors.Wrap(err, "decode quote response")
	}
	if res.Data == nil {
		return nil, errors.Wrapf(errors.ErrNotFound, "no quote data for %s", symbol)
	}

	now := time.Now().UTC()
	return &market_data.Quote{
		Symbol:        symbol,
		Name:          res.Data.Name,
		Price:         res.Data.Price / priceScale,
		Open:          res.Data.Open / priceScale,
		High:          res.Data.High / priceScale,
		Low:           res.Data.Low / priceScale,
		PrevClose:     res.Data.PrevClose / priceScale,
		Volume:        res.Data.Volume,
		Turnover:      res.Data.Turnover,
		ChangePercent: res.Data.ChangePercent / priceScale,
		Timestamp:     now,
		CollectedAt:   now,
	}, nil
}

func (c *client) FetchKlines(ctx context.Context, symbol, timeframe string, limit int) ([]market_data.Kline, error) {
	klt, ok := timeframeKlt[timeframe]
	if !ok {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "unsupported timeframe %q", timeframe)
	}
	if limit <= 0 {
		limit = 100
	}

	params := url.Values{
		"secid":  []string{secID(symbol)},
		"klt":    []string{klt},
		"fqt":    []string{"1"},
		"lmt":    []string{strconv.Itoa(limit)},
		"end":    []string{"20500101"},
		"fields": []string{"f51,f52,f53,f54,f55,f56,f57"},
	}

	data, err := c.get(ctx, klineBaseURL, "/api/qt/stock/kline/get", params)
	if err != nil {
		return nil, err
	}

	var res struct {
		Data *struct {
			Klines []string `json:"klines"`
		} `json:"data"`
	}
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, errors.Wrap(err, "decode kline response")
	}
	if res.Data == nil {
		return nil, errors.Wrapf(errors.ErrNotFound, "no kline data for %s", symbol)
	}

	klines := make([]market_data.Kline, 0, len(res.Data.Klines))
	for i, row := range res.Data.Klines {
		k, err := parseKline(symbol, timeframe, row)
		if err != nil {
			continue
		}
		// only the newest candle may still be forming
		k.IsClosed = i < len(res.Data.Klines)-1
		klines = append(klines, k)
	}
	return klines, nil
}

func (c *client) FetchIndexSnapshots(ctx context.Context) ([]market_data.IndexSnapshot, error) {
	snapshots := make([]market_data.IndexSnapshot, 0, len(indexCodes))
	for _, idx := range indexCodes {
		quote, err := c.FetchQuote(ctx, idx.code)
		if err != nil {
			return nil, errors.Wrapf(err, "fetch index %s", idx.code)
		}
		snapshots = append(snapshots, market_data.IndexSnapshot{
			Code:          idx.code,
			Name:          idx.name,
			Value:         quote.Price,
			ChangePercent: quote.ChangePercent,
			Volume:        quote.Volume,
			Turnover:      quote.Turnover,
			Timestamp:     quote.Timestamp,
		})
	}
	return snapshots, nil
}

func (c *client) get(ctx context.Context, base, path string, params url.Values) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+path+"?"+params.Encode(), nil)
	if err != nil {
		return nil, errors.Wrap(err, "build request")
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "execute request")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "read response")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errors.Wrapf(errors.ErrInternal, "upstream returned %d: %s", resp.StatusCode, truncate(string(body), 200))
	}
	return body, nil
}

// secID maps a symbol like "600519" or "000001.SH" to eastmoney's
// market-prefixed identifier ("1.600519" for Shanghai, "0.000001" for
// Shenzhen).
func secID(symbol string) string {
	code := symbol
	if i := strings.IndexByte(symbol, '.'); i >= 0 {
		suffix := strings.ToUpper(symbol[i+1:])
		code = symbol[:i]
		if suffix == "SH" {
			return "1." + code
		}
		return "0." + code
	}
	if strings.HasPrefix(code, "6") {
		return "1." + code
	}
	return "0." + code
}

// parseKline decodes the "date,open,close,high,low,volume,turnover" row format.
func parseKline(symbol, timeframe, row string) (market_data.Kline, error) {
	parts := strings.Split(row, ",")
	if len(parts) < 7 {
		return market_data.Kline{}, fmt.Errorf("malformed kline row %q", row)
	}

	layout := "2006-01-02"
	if strings.Contains(parts[0], ":") {
		layout = "2006-01-02 15:04"
	}
	openTime, err := time.Parse(layout, parts[0])
	if err != nil {
		return market_data.Kline{}, err
	}

	return market_data.Kline{
		Symbol:    symbol,
		Timeframe: timeframe,
		OpenTime:  openTime,
		CloseTime: openTime,
		Open:      parseFloat(parts[1]),
		Close:     parseFloat(parts[2]),
		High:      parseFloat(parts[3]),
		Low:       parseFloat(parts[4]),
		Volume:    parseFloat(parts[5]),
		Turnover:  parseFloat(parts[6]),
	}, nil
}

func parseFloat(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return v
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
