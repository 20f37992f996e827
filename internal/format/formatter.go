package format

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/storefront/cli/internal/config"
)

// Formatter interface for different output formats
type Formatter interface {
	Format(w io.Writer, data interface{}) error
}

// Tabular is implemented by domain types that know their own columns.
type Tabular interface {
	Headers() []string
	Rows() [][]string
}

// Formats lists the accepted --output values.
var Formats = []string{"table", "json", "json-compact", "yaml", "text"}

// GetFormatter returns a formatter based on the specified format
func GetFormatter(format string) (Formatter, error) {
	cfg := config.Get()
	useColors := cfg.Format.Colors

	switch format {
	case "table":
		return NewTableFormatter(useColors), nil
	case "json":
		return NewJSONFormatter(true), nil
	case "json-compact":
		return NewJSONFormatter(false), nil
	case "yaml":
		return NewYAMLFormatter(), nil
	case "text":
		return NewTextFormatter(), nil
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

// Print formats data to w using the configured output format
func Print(w io.Writer, data interface{}) error {
	formatter, err := GetFormatter(config.GetOutputFormat())
	if err != nil {
		return err
	}
	return formatter.Format(w, data)
}

// IsStructured reports whether the configured format is machine readable.
// Commands skip decorative lines in that case.
func IsStructured() bool {
	switch config.GetOutputFormat() {
	case "json", "json-compact", "yaml":
		return true
	}
	return false
}

// PrintSuccess prints a success message
func PrintSuccess(w io.Writer, message string, args ...interface{}) {
	printColored(w, color.FgGreen, "", message, args...)
}

// PrintError prints an error message
func PrintError(w io.Writer, message string, args ...interface{}) {
	printColored(w, color.FgRed, "Error: ", message, args...)
}

// PrintWarning prints a warning message
func PrintWarning(w io.Writer, message string, args ...interface{}) {
	printColored(w, color.FgYellow, "Warning: ", message, args...)
}

// PrintInfo prints an info message
func PrintInfo(w io.Writer, message string, args ...interface{}) {
	printColored(w, color.FgBlue, "", message, args...)
}

func printColored(w io.Writer, attr color.Attribute, plainPrefix, message string, args ...interface{}) {
	text := fmt.Sprintf(message, args...)
	if config.Get().Format.Colors {
		c := color.New(attr)
		c.Fprintln(w, text)
		return
	}
	fmt.Fprintln(w, plainPrefix+text)
}
