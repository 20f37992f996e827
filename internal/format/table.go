package format

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
)

const noData = "No data to display"

// TableFormatter handles table output formatting
type TableFormatter struct {
	useColors bool
}

// NewTableFormatter creates a new table formatter
func NewTableFormatter(useColors bool) *TableFormatter {
	return &TableFormatter{
		useColors: useColors,
	}
}

// Format formats data as a table
func (f *TableFormatter) Format(w io.Writer, data interface{}) error {
	if data == nil {
		_, err := fmt.Fprintln(w, noData)
		return err
	}

	switch v := data.(type) {
	case Tabular:
		return f.render(w, v.Headers(), v.Rows())
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

// formatSingleMap formats a single map as a vertical table, keys sorted
func (f *TableFormatter) formatSingleMap(w io.Writer, data map[string]interface{}) error {
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	rows := make([][]string, 0, len(keys))
	for _, k := range keys {
		rows = append(rows, []string{formatHeader(k), f.formatValue(data[k])})
	}
	return f.render(w, []string{"Property", "Value"}, rows)
}

func (f *TableFormatter) render(w io.Writer, headers []string, rows [][]string) error {
	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, noData)
		return err
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader(headers)
	f.configureTable(table, len(headers))
	table.AppendBulk(rows)
	table.Render()
	return nil
}

// configureTable sets up table appearance
func (f *TableFormatter) configureTable(table *tablewriter.Table, columns int) {
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")
	table.SetNoWhiteSpace(true)

	if f.useColors && columns > 0 {
		colors := make([]tablewriter.Colors, columns)
		for i := range colors {
			colors[i] = tablewriter.Colors{tablewriter.Bold, tablewriter.FgHiBlueColor}
		}
		table.SetHeaderColor(colors...)
	}
}

// formatHeader converts snake_case to Title Case
func formatHeader(header string) string {
	words := strings.Split(header, "_")
	for i, word := range words {
		if len(word) > 0 {
			words[i] = strings.ToUpper(word[:1]) + strings.ToLower(word[1:])
		}
	}
	return strings.Join(words, " ")
}

// formatValue formats a value for display
func (f *TableFormatter) formatValue(value interface{}) string {
	if value == nil {
		return ""
	}

	switch v := value.(type) {
	case string:
		return v
	case int, int8, int16, int32, int64:
		return fmt.Sprintf("%d", v)
	case uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d", v)
	case float32, float64:
		return fmt.Sprintf("%.2f", v)
	case bool:
		if f.useColors {
			if v {
				return color.GreenString("true")
			}
			return color.RedString("false")
		}
		return strconv.FormatBool(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}
