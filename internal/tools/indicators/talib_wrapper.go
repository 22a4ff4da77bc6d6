package indicators

import (
	"minerva/internal/domain/market_data"
	"minerva/pkg/errors"
)

// TalibData holds OHLCV data in format expected by ta-lib
type TalibData struct {
	Open   []float64
	High   []float64
	Low    []float64
	Close  []float64
	Volume []float64
}

// PrepareData converts domain klines to ta-lib format
// Returns separate slices for each price component
func PrepareData(klines []market_data.Kline) (*TalibData, error) {
	if len(klines) == 0 {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "no klines provided")
	}
	data := &TalibData{
		Open:   make([]float64, len(klines)),
		High:   make([]float64, len(klines)),
		Low:    make([]float64, len(klines)),
		Close:  make([]float64, len(klines)),
		Volume: make([]float64, len(klines)),
	}
	// ta-lib expects chronological order (oldest first), repository
	// returns klines DESC by open time
	for i, k := range klines {
		idx := len(klines) - 1 - i
		data.Open[idx] = k.Open
		data.High[idx] = k.High
		data.Low[idx] = k.Low
		data.Close[idx] = k.Close
		data.Volume[idx] = k.Volume
	}
	return data, nil
}

// PrepareCloses extracts only close prices (for simple indicators like RSI, EMA)
func PrepareCloses(klines []market_data.Kline) ([]float64, error) {
	if len(klines) == 0 {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "no klines provided")
	}
	closes := make([]float64, len(klines))
	for i, k := range klines {
		idx := len(klines) - 1 - i
		closes[idx] = k.Close
	}
	return closes, nil
}

// GetLastValue returns the most recent value from ta-lib output
func GetLastValue(values []float64) (float64, error) {
	if len(values) == 0 {
		return 0, errors.Wrapf(errors.ErrInternal, "no values returned from indicator")
	}
	return values[len(values)-1], nil
}

// GetLastNValues returns last N values from ta-lib output
func GetLastNValues(values []float64, n int) ([]float64, error) {
	if len(values) == 0 {
		return nil, errors.Wrapf(errors.ErrInternal, "no values returned from indicator")
	}
	if n <= 0 || n > len(values) {
		n = len(values)
	}
	start := len(values) - n
	return values[start:], nil
}

// ValidateMinLength checks if we have enough data for indicator calculation
func ValidateMinLength(klines []market_data.Kline, minLength int, indicatorName string) error {
	if len(klines) < minLength {
		return errors.Wrapf(errors.ErrInvalidInput,
			"%s requires at least %d klines, got %d",
			indicatorName, minLength, len(klines))
	}
	return nil
}
