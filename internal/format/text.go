package format

import (
	"fmt"
	"io"
	"sort"
)

// TextFormatter handles simple text output formatting
type TextFormatter struct{}

// NewTextFormatter creates a new text formatter
func NewTextFormatter() *TextFormatter {
	return &TextFormatter{}
}

// Format formats data as "Key: value" lines. Two-column property tables
// print one line per row; wider tables print one block per row.
func (f *TextFormatter) Format(w io.Writer, data interface{}) error {
	if data == nil {
		_, err := fmt.Fprintln(w, "No data")
		return err
	}

	switch v := data.(type) {
	case Tabular:
		return f.formatTabular(w, v.Headers(), v.Rows())
	case map[string]interface{}:
		return f.formatSingleMap(w, v)
	case map[string]string:
		m := make(map[string]interface{}, len(v))
		for k, val := range v {
			m[k] = val
		}
		return f.formatSingleMap(w, m)
	case string:
		_, err := fmt.Fprintln(w, v)
		return err
	default:
		_, err := fmt.Fprintf(w, "%v\n", data)
		return err
	}
}

func (f *TextFormatter) formatTabular(w io.Writer, headers []string, rows [][]string) error {
	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, "No data")
		return err
	}

	if len(headers) == 2 && headers[0] == "Property" {
		for _, row := range rows {
			fmt.Fprintf(w, "%s: %s\n", cell(row, 0), f.formatValue(cell(row, 1)))
		}
		return nil
	}

	for i, row := range rows {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "Item %d:\n", i+1)
		for j, h := range headers {
			fmt.Fprintf(w, "  %s: %s\n", h, f.formatValue(cell(row, j)))
		}
	}
	return nil
}

// formatSingleMap formats a single map as text, keys sorted
func (f *TextFormatter) formatSingleMap(w io.Writer, data map[string]interface{}) error {
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(w, "%s: %v\n", formatHeader(k), f.formatValue(data[k]))
	}
	return nil
}

func cell(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}

// formatValue formats a value for display
func (f *TextFormatter) formatValue(value interface{}) interface{} {
	if value == nil || value == "" {
		return "N/A"
	}
	return value
}
