package pipeline

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/dvloznov/finance-ledger/internal/domain"
	"github.com/dvloznov/finance-ledger/internal/logger"
	"github.com/shopspring/decimal"
)

// fieldSeparator separates the title,type,value,category columns.
// Quoting is not supported.
const fieldSeparator = ","

var lineBreak = regexp.MustCompile(`\r?\n`)

// ParsedRow is one validated data row of an import file.
type ParsedRow struct {
	Title    string
	Type     domain.TransactionType
	Value    decimal.Decimal
	Category string
}

// ParseResult holds the rows of an import file in file order together with
// every referenced category name, duplicates included.
type ParseResult struct {
	Rows          []ParsedRow
	CategoryNames []string
}

// RowError reports which data row (1-based, header and blank lines excluded)
// failed validation. It unwraps to one of the domain error kinds.
type RowError struct {
	Row    int
	Reason string
	Err    error
}

func (e *RowError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("row %d: %v: %s", e.Row, e.Err, e.Reason)
	}
	return fmt.Sprintf("row %d: %v", e.Row, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}

// SplitLines splits an uploaded blob on \n or \r\n.
func SplitLines(raw []byte) []string {
	return lineBreak.Split(string(raw), -1)
}

// ParseRows validates the lines of an import file. Blank lines are dropped,
// then the first remaining line is treated as the header.
func ParseRows(ctx context.Context, lines []string) (*ParseResult, error) {
	log := logger.FromContext(ctx)

	var nonBlank []string
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		nonBlank = append(nonBlank, line)
	}

	if len(nonBlank) < 2 {
		return nil, domain.ErrInvalidImport
	}
	dataRows := nonBlank[1:]

	result := &ParseResult{
		Rows:          make([]ParsedRow, 0, len(dataRows)),
		CategoryNames: make([]string, 0, len(dataRows)),
	}

	for i, line := range dataRows {
		row, err := parseRow(line)
		if err != nil {
			err.Row = i + 1
			return nil, err
		}

		log.Debug().
			Int("row", i+1).
			Str("title", row.Title).
			Str("type", string(row.Type)).
			Str("value", row.Value.String()).
			Str("category", row.Category).
			Msg("Parsed import row")

		result.Rows = append(result.Rows, row)
		result.CategoryNames = append(result.CategoryNames, row.Category)
	}

	return result, nil
}

// parseRow checks the type first, then the required fields.
func parseRow(line string) (ParsedRow, *RowError) {
	cells := strings.Split(line, fieldSeparator)
	for len(cells) < 4 {
		cells = append(cells, "")
	}
	for i := range cells {
		cells[i] = strings.TrimSpace(cells[i])
	}
	title, rawType, rawValue, category := cells[0], cells[1], cells[2], cells[3]

	typ, ok := domain.ParseTransactionType(rawType)
	if !ok {
		return ParsedRow{}, &RowError{Err: domain.ErrInvalidTransactionType, Reason: fmt.Sprintf("%q", rawType)}
	}

	switch {
	case title == "":
		return ParsedRow{}, &RowError{Err: domain.ErrMissingData, Reason: "title is empty"}
	case rawValue == "":
		return ParsedRow{}, &RowError{Err: domain.ErrMissingData, Reason: "value is empty"}
	case category == "":
		return ParsedRow{}, &RowError{Err: domain.ErrMissingData, Reason: "category is empty"}
	}

	value, err := decimal.NewFromString(rawValue)
	if err != nil {
		return ParsedRow{}, &RowError{Err: domain.ErrMissingData, Reason: fmt.Sprintf("value %q is not a number", rawValue)}
	}

	return ParsedRow{
		Title:    title,
		Type:     typ,
		Value:    value,
		Category: category,
	}, nil
}
