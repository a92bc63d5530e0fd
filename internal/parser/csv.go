package parser

import (
	"encoding/csv"
	"errors"
	"io"
	"strings"

	"github.com/richxcame/currency-exchange/internal/currency"
)

var requiredColumns = []string{"amount", "sourceCurrency", "targetCurrency"}

// CSVParser reads comma separated files with an
// amount,sourceCurrency,targetCurrency header in any column order
type CSVParser struct{}

// NewCSVParser creates a CSV parser
func NewCSVParser() *CSVParser {
	return &CSVParser{}
}

// Parse implements Parser
func (p *CSVParser) Parse(r io.Reader) ([]currency.ConversionRequest, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, csvError(0, "CSV file is empty", nil)
	}
	if err != nil {
		return nil, csvError(0, "Error reading CSV file", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		if i == 0 {
			name = strings.TrimPrefix(name, "\ufeff")
		}
		index[strings.TrimSpace(name)] = i
	}
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			return nil, csvError(0, "CSV headers must include: amount, sourceCurrency, targetCurrency", nil)
		}
	}

	var out []currency.ConversionRequest
	row := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		row++
		if err != nil {
			return nil, csvError(row, "Error reading CSV file", err)
		}

		values := make([]string, len(requiredColumns))
		for i, col := range requiredColumns {
			if idx := index[col]; idx < len(record) {
				values[i] = strings.TrimSpace(record[idx])
			}
			if values[i] == "" {
				return nil, csvError(row, "CSV row contains empty values", nil)
			}
		}

		req, err := newRequest(values[0], values[1], values[2])
		if err != nil {
			return nil, csvError(row, "Invalid number format", err)
		}
		out = append(out, req)
	}

	if len(out) == 0 {
		return nil, csvError(0, "CSV file is empty", nil)
	}

	return out, nil
}

func csvError(row int, msg string, err error) error {
	return &FormatError{Format: "CSV", Code: currency.CodeCSVFormat, Row: row, Msg: msg, Err: err}
}
