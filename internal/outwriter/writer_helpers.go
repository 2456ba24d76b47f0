package outwriter

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/huangsam/snowdash/internal/contract"
	"github.com/huangsam/snowdash/schema"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// printer formats numbers with thousands separators.
var printer = message.NewPrinter(language.English)

// writeWithFile handles the common pattern of opening a file, writing to it, and cleaning up.
// It accepts a writer function that takes an io.Writer and returns an error.
func writeWithFile(outputFile string, writer func(io.Writer) error, successMsg string) error {
	file, err := contract.SelectOutputFile(outputFile)
	if err != nil {
		return err
	}
	// Only close if it's not stdout
	if file != os.Stdout {
		defer func() { _ = file.Close() }()
	}

	if err := writer(file); err != nil {
		return err
	}

	if file != os.Stdout {
		_, _ = fmt.Fprintf(os.Stderr, "💾 %s to %s\n", successMsg, outputFile)
	}
	return nil
}

// writeJSON is a generic JSON encoder that handles indentation consistently.
func writeJSON(w io.Writer, data any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// sheet is a tabular view of a section shared by the CSV and XLSX writers.
type sheet struct {
	name   string
	header []string
	rows   [][]any
}

// writeCSV writes a sheet with its header row.
func writeCSV(w io.Writer, s sheet) error {
	csvWriter := csv.NewWriter(w)

	if err := csvWriter.Write(s.header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, row := range s.rows {
		rec := make([]string, len(row))
		for i, cell := range row {
			rec[i] = csvCell(cell)
		}
		if err := csvWriter.Write(rec); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}
	csvWriter.Flush()
	return csvWriter.Error()
}

// csvCell renders a cell value without locale formatting.
func csvCell(v any) string {
	switch c := v.(type) {
	case nil:
		return ""
	case string:
		return c
	case float64:
		return strconv.FormatFloat(c, 'f', -1, 64)
	case int:
		return strconv.Itoa(c)
	case int64:
		return strconv.FormatInt(c, 10)
	case bool:
		return strconv.FormatBool(c)
	case time.Time:
		return schema.DateKey(c)
	default:
		return fmt.Sprint(c)
	}
}

// formatCount renders an integer with thousands separators.
func formatCount(n int64) string {
	return printer.Sprintf("%d", n)
}

// formatDecimal renders a float with one decimal and thousands separators.
func formatDecimal(v float64) string {
	return printer.Sprintf("%.1f", v)
}

// sectionHeader returns a section title, emoji-prefixed when enabled.
func sectionHeader(emoji, title string, useEmojis bool) string {
	if useEmojis && emoji != "" {
		return emoji + " " + title
	}
	return title
}
