package marketdata

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// CSVPriceService reads <TICKER>.csv files with a date,close layout from a directory
type CSVPriceService struct {
	Dir string
}

// NewCSVPriceService creates a price service backed by dir
func NewCSVPriceService(dir string) *CSVPriceService {
	return &CSVPriceService{Dir: dir}
}

// Prices implements PriceService
func (s *CSVPriceService) Prices(ctx context.Context, ticker string, from, to time.Time) (map[time.Time]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if ticker == "" || strings.ContainsAny(ticker, `/\`) {
		return nil, unavailable(ticker, "invalid ticker", nil)
	}

	path := filepath.Join(s.Dir, strings.ToUpper(ticker)+".csv")
	file, err := os.Open(path)
	if err != nil {
		return nil, unavailable(ticker, "opening price file", err)
	}
	defer file.Close()

	prices, err := parsePriceCSV(file, from, to)
	if err != nil {
		return nil, unavailable(ticker, fmt.Sprintf("reading %s", filepath.Base(path)), err)
	}
	return prices, nil
}

func parsePriceCSV(r io.Reader, from, to time.Time) (map[time.Time]float64, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	prices := make(map[time.Time]float64)
	line := 0
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		line++
		if len(record) < 2 {
			return nil, fmt.Errorf("line %d: expected date,close", line)
		}

		day, err := time.Parse(DateLayout, strings.TrimSpace(record[0]))
		if err != nil {
			if line == 1 {
				continue // header
			}
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		closing, err := strconv.ParseFloat(strings.TrimSpace(record[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if inRange(day, from, to) {
			prices[day] = closing
		}
	}
	return prices, nil
}
