// Package parser reads batch conversion requests from uploaded files.
package parser

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/richxcame/currency-exchange/internal/currency"
	"github.com/shopspring/decimal"
)

// Parser reads conversion requests from one file format
type Parser interface {
	Parse(r io.Reader) ([]currency.ConversionRequest, error)
}

// FormatError reports malformed file content. It matches
// currency.ErrInvalidFileFormat and carries the API error code for its format.
type FormatError struct {
	Format string
	Code   string
	Row    int
	Msg    string
	Err    error
}

func (e *FormatError) Error() string {
	msg := e.Msg
	if e.Row > 0 {
		msg = fmt.Sprintf("row %d: %s", e.Row, msg)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return fmt.Sprintf("invalid %s file: %s", e.Format, msg)
}

// Is matches currency.ErrInvalidFileFormat
func (e *FormatError) Is(target error) bool {
	return target == currency.ErrInvalidFileFormat
}

// Unwrap returns the underlying read or decode error, if any
func (e *FormatError) Unwrap() error {
	return e.Err
}

// ErrorCode returns the machine readable code for the file format
func (e *FormatError) ErrorCode() string {
	return e.Code
}

// Registry picks a Parser by file extension
type Registry struct {
	parsers map[string]Parser
}

// NewRegistry returns a registry with the CSV and Excel parsers registered
func NewRegistry() *Registry {
	r := &Registry{parsers: make(map[string]Parser)}
	r.Register(".csv", NewCSVParser())
	excel := NewExcelParser()
	r.Register(".xlsx", excel)
	r.Register(".xls", excel)
	return r
}

// Register maps a file extension such as ".csv" to p
func (r *Registry) Register(ext string, p Parser) {
	r.parsers[strings.ToLower(ext)] = p
}

// ForFilename returns the parser for filename's extension
func (r *Registry) ForFilename(filename string) (Parser, error) {
	if strings.TrimSpace(filename) == "" {
		return nil, fmt.Errorf("%w: file name is missing", currency.ErrUnsupportedFileType)
	}

	p, ok := r.parsers[strings.ToLower(filepath.Ext(filename))]
	if !ok {
		return nil, fmt.Errorf("%w: %s", currency.ErrUnsupportedFileType, filename)
	}
	return p, nil
}

// Parse implements currency.RequestParser
func (r *Registry) Parse(filename string, rd io.Reader) ([]currency.ConversionRequest, error) {
	p, err := r.ForFilename(filename)
	if err != nil {
		return nil, err
	}
	return p.Parse(rd)
}

func newRequest(amount string, source, target string) (currency.ConversionRequest, error) {
	var req currency.ConversionRequest
	var err error

	req.Amount, err = parseAmount(amount)
	if err != nil {
		return req, err
	}
	_ = req.SourceCurrency.UnmarshalText([]byte(source))
	_ = req.TargetCurrency.UnmarshalText([]byte(target))
	return req, nil
}

func parseAmount(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(strings.TrimSpace(s))
}
