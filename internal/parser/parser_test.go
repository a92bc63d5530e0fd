package parser

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/richxcame/currency-exchange/internal/currency"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func requireFormatError(t *testing.T, err error, code string) *FormatError {
	t.Helper()
	require.Error(t, err)
	assert.True(t, errors.Is(err, currency.ErrInvalidFileFormat))

	var formatErr *FormatError
	require.True(t, errors.As(err, &formatErr))
	assert.Equal(t, code, formatErr.ErrorCode())
	return formatErr
}

// =============================================================================
// CSV
// =============================================================================

func TestCSVParser_Parse(t *testing.T) {
	input := "amount,sourceCurrency,targetCurrency\n100.50,usd,eur\n20, GBP ,try\n"

	reqs, err := NewCSVParser().Parse(strings.NewReader(input))

	require.NoError(t, err)
	require.Len(t, reqs, 2)
	assert.True(t, reqs[0].Amount.Equal(decimal.RequireFromString("100.50")))
	assert.Equal(t, currency.USD, reqs[0].SourceCurrency)
	assert.Equal(t, currency.EUR, reqs[0].TargetCurrency)
	assert.Equal(t, currency.GBP, reqs[1].SourceCurrency)
	assert.Equal(t, currency.TRY, reqs[1].TargetCurrency)
}

func TestCSVParser_ReorderedColumnsAndBOM(t *testing.T) {
	input := "\ufefftargetCurrency,amount,sourceCurrency\nJPY,5,USD\n"

	reqs, err := NewCSVParser().Parse(strings.NewReader(input))

	require.NoError(t, err)
	require.Len(t, reqs, 1)
	assert.Equal(t, currency.USD, reqs[0].SourceCurrency)
	assert.Equal(t, currency.JPY, reqs[0].TargetCurrency)
	assert.Equal(t, "5", reqs[0].Amount.String())
}

func TestCSVParser_UnknownCodesPassThrough(t *testing.T) {
	reqs, err := NewCSVParser().Parse(strings.NewReader("amount,sourceCurrency,targetCurrency\n1,btc,usd\n"))

	require.NoError(t, err)
	assert.Equal(t, currency.CurrencyCode("BTC"), reqs[0].SourceCurrency)
}

func TestCSVParser_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		row     int
		message string
	}{
		{name: "empty file", input: "", message: "CSV file is empty"},
		{name: "header only", input: "amount,sourceCurrency,targetCurrency\n", message: "CSV file is empty"},
		{name: "missing header", input: "amount,source,target\n1,USD,EUR\n", message: "CSV headers must include"},
		{name: "empty value", input: "amount,sourceCurrency,targetCurrency\n1,USD,\n", row: 2, message: "empty values"},
		{name: "short row", input: "amount,sourceCurrency,targetCurrency\n1,USD\n", row: 2, message: "empty values"},
		{name: "bad number", input: "amount,sourceCurrency,targetCurrency\n1,USD,EUR\nabc,USD,EUR\n", row: 3, message: "Invalid number format"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewCSVParser().Parse(strings.NewReader(tc.input))

			formatErr := requireFormatError(t, err, currency.CodeCSVFormat)
			assert.Equal(t, tc.row, formatErr.Row)
			assert.Contains(t, err.Error(), tc.message)
		})
	}
}

// =============================================================================
// Excel
// =============================================================================

func buildWorkbook(t *testing.T, rows [][]interface{}) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func TestExcelParser_Parse(t *testing.T) {
	buf := buildWorkbook(t, [][]interface{}{
		{"amount", "sourceCurrency", "targetCurrency"},
		{100.25, "usd", "eur"},
		{7, "EUR", "chf"},
	})

	reqs, err := NewExcelParser().Parse(buf)

	require.NoError(t, err)
	require.Len(t, reqs, 2)
	assert.True(t, reqs[0].Amount.Equal(decimal.RequireFromString("100.25")))
	assert.Equal(t, currency.USD, reqs[0].SourceCurrency)
	assert.Equal(t, currency.EUR, reqs[0].TargetCurrency)
	assert.Equal(t, "7", reqs[1].Amount.String())
	assert.Equal(t, currency.CHF, reqs[1].TargetCurrency)
}

func TestExcelParser_HeaderOnly(t *testing.T) {
	buf := buildWorkbook(t, [][]interface{}{{"amount", "sourceCurrency", "targetCurrency"}})

	reqs, err := NewExcelParser().Parse(buf)

	require.NoError(t, err)
	assert.Empty(t, reqs)
}

func TestExcelParser_Errors(t *testing.T) {
	t.Run("missing column", func(t *testing.T) {
		buf := buildWorkbook(t, [][]interface{}{
			{"amount", "sourceCurrency", "targetCurrency"},
			{10, "USD"},
		})

		_, err := NewExcelParser().Parse(buf)

		formatErr := requireFormatError(t, err, currency.CodeExcelFormat)
		assert.Equal(t, 2, formatErr.Row)
	})

	t.Run("non numeric amount", func(t *testing.T) {
		buf := buildWorkbook(t, [][]interface{}{
			{"amount", "sourceCurrency", "targetCurrency"},
			{"ten", "USD", "EUR"},
		})

		_, err := NewExcelParser().Parse(buf)

		requireFormatError(t, err, currency.CodeExcelFormat)
	})

	t.Run("not a workbook", func(t *testing.T) {
		_, err := NewExcelParser().Parse(strings.NewReader("definitely not a zip"))

		requireFormatError(t, err, currency.CodeExcelFormat)
	})
}

// =============================================================================
// Registry
// =============================================================================

func TestRegistry_ForFilename(t *testing.T) {
	r := NewRegistry()

	tests := []struct {
		filename string
		want     interface{}
	}{
		{filename: "rates.csv", want: &CSVParser{}},
		{filename: "RATES.CSV", want: &CSVParser{}},
		{filename: "batch.xlsx", want: &ExcelParser{}},
		{filename: "legacy.xls", want: &ExcelParser{}},
	}

	for _, tc := range tests {
		t.Run(tc.filename, func(t *testing.T) {
			p, err := r.ForFilename(tc.filename)

			require.NoError(t, err)
			assert.IsType(t, tc.want, p)
		})
	}
}

func TestRegistry_UnsupportedFiles(t *testing.T) {
	r := NewRegistry()

	for _, name := range []string{"rates.txt", "rates", "", "  "} {
		_, err := r.ForFilename(name)
		assert.True(t, errors.Is(err, currency.ErrUnsupportedFileType), "filename %q", name)
	}
}

func TestRegistry_Parse(t *testing.T) {
	reqs, err := NewRegistry().Parse("upload.csv", strings.NewReader("amount,sourceCurrency,targetCurrency\n3,AUD,NZD\n"))

	require.NoError(t, err)
	require.Len(t, reqs, 1)
	assert.Equal(t, currency.AUD, reqs[0].SourceCurrency)

	_, err = NewRegistry().Parse("upload.json", strings.NewReader("{}"))
	assert.True(t, errors.Is(err, currency.ErrUnsupportedFileType))
}
