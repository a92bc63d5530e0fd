package parser

import (
	"io"
	"strings"

	"github.com/richxcame/currency-exchange/internal/currency"
	"github.com/xuri/excelize/v2"
)

// ExcelParser reads the first sheet of an xlsx workbook. The first row is a
// header; each following row holds amount, source and target in columns A to C.
type ExcelParser struct{}

// NewExcelParser creates an Excel parser
func NewExcelParser() *ExcelParser {
	return &ExcelParser{}
}

// Parse implements Parser
func (p *ExcelParser) Parse(r io.Reader) ([]currency.ConversionRequest, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, excelError(0, "Failed to read Excel file", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, excelError(0, "Excel file has no sheets", nil)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, excelError(0, "Failed to read Excel file", err)
	}

	var out []currency.ConversionRequest
	for i, cells := range rows {
		if i == 0 {
			continue
		}
		rowNum := i + 1

		if len(cells) < 3 {
			return nil, excelError(rowNum, "Missing required columns", nil)
		}
		for _, cell := range cells[:3] {
			if strings.TrimSpace(cell) == "" {
				return nil, excelError(rowNum, "Empty cell detected", nil)
			}
		}

		req, err := newRequest(cells[0], cells[1], cells[2])
		if err != nil {
			return nil, excelError(rowNum, "Invalid data", err)
		}
		out = append(out, req)
	}

	return out, nil
}

func excelError(row int, msg string, err error) error {
	return &FormatError{Format: "Excel", Code: currency.CodeExcelFormat, Row: row, Msg: msg, Err: err}
}
