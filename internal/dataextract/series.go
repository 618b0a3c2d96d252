// Package dataextract reads crisp inputs out of CSV files.
package dataextract

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

var (
	ErrNoData       = errors.New("no data rows")
	ErrInvalidValue = errors.New("invalid value")
)

type SeriesOptions struct {
	HasHeader bool
	// ColumnName wins over ColumnIndex when set. It requires HasHeader.
	ColumnName  string
	ColumnIndex int
}

// ReadSeries returns one column of a CSV file as floats, skipping blank rows.
// With a header and no column given, the last non-empty header column is used,
// which matches the usual date,open,high,low,close layout.
func ReadSeries(in io.Reader, opts SeriesOptions) ([]float64, error) {
	reader := csv.NewReader(in)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	valueIdx := opts.ColumnIndex
	row := 0
	if opts.HasHeader {
		header, err := reader.Read()
		if err == io.EOF {
			return nil, ErrNoData
		}
		if err != nil {
			return nil, fmt.Errorf("read series header: %w", err)
		}
		row++
		if strings.TrimSpace(opts.ColumnName) != "" {
			idx, err := columnIndexByName(header, opts.ColumnName)
			if err != nil {
				return nil, err
			}
			valueIdx = idx
		} else if valueIdx < 0 {
			valueIdx = lastNonEmptyColumn(header)
		}
	} else if strings.TrimSpace(opts.ColumnName) != "" {
		return nil, fmt.Errorf("column %q requires a header row", opts.ColumnName)
	}
	if valueIdx < 0 {
		valueIdx = 0
	}

	values := make([]float64, 0)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read series row %d: %w", row+1, err)
		}
		row++
		if blankRecord(record) {
			continue
		}
		if valueIdx >= len(record) {
			return nil, fmt.Errorf("series row %d missing value column index %d", row, valueIdx)
		}
		value, err := parseValue(record[valueIdx])
		if err != nil {
			return nil, fmt.Errorf("series row %d: %w", row, err)
		}
		values = append(values, value)
	}
	if len(values) == 0 {
		return nil, ErrNoData
	}
	return values, nil
}

// ReadInputRows maps every data row to the header names. Empty cells are left
// out so the engine reports them as missing inputs.
func ReadInputRows(in io.Reader) ([]map[string]float64, error) {
	reader := csv.NewReader(in)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, ErrNoData
	}
	if err != nil {
		return nil, fmt.Errorf("read inputs header: %w", err)
	}
	names := make([]string, len(header))
	for i, field := range header {
		names[i] = strings.TrimSpace(field)
		if names[i] == "" {
			return nil, fmt.Errorf("inputs header column %d is empty", i)
		}
	}

	var rows []map[string]float64
	row := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read inputs row %d: %w", row+1, err)
		}
		row++
		if blankRecord(record) {
			continue
		}
		if len(record) > len(names) {
			return nil, fmt.Errorf("inputs row %d has %d columns, header has %d", row, len(record), len(names))
		}
		inputs := make(map[string]float64, len(record))
		for i, raw := range record {
			raw = strings.TrimSpace(raw)
			if raw == "" {
				continue
			}
			value, err := parseValue(raw)
			if err != nil {
				return nil, fmt.Errorf("%s row %d: %w", names[i], row, err)
			}
			inputs[names[i]] = value
		}
		rows = append(rows, inputs)
	}
	if len(rows) == 0 {
		return nil, ErrNoData
	}
	return rows, nil
}

// parseValue accepts finite numbers only; strconv would also take NaN and Inf.
func parseValue(raw string) (float64, error) {
	raw = strings.TrimSpace(raw)
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %v", ErrInvalidValue, raw, err)
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, fmt.Errorf("%w: %q is not finite", ErrInvalidValue, raw)
	}
	return value, nil
}

func columnIndexByName(header []string, name string) (int, error) {
	want := strings.TrimSpace(strings.ToLower(name))
	for i, field := range header {
		if strings.ToLower(strings.TrimSpace(field)) == want {
			return i, nil
		}
	}
	return -1, fmt.Errorf("csv column not found: %s", name)
}

func blankRecord(record []string) bool {
	for _, field := range record {
		if strings.TrimSpace(field) != "" {
			return false
		}
	}
	return true
}

func lastNonEmptyColumn(record []string) int {
	for i := len(record) - 1; i >= 0; i-- {
		if strings.TrimSpace(record[i]) != "" {
			return i
		}
	}
	return 0
}
