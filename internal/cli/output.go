package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"storefront-backend/database"

	"gopkg.in/yaml.v3"
)

// OutputFormatter renders command results as text, JSON or YAML.
type OutputFormatter struct {
	Format string
	Writer io.Writer
}

func newFormatter(opts *RootOptions, w io.Writer) *OutputFormatter {
	return &OutputFormatter{Format: opts.Format, Writer: w}
}

// Print writes data as JSON or YAML, or calls text for the human-readable
// form.
func (f *OutputFormatter) Print(data interface{}, text func(w io.Writer) error) error {
	switch f.Format {
	case "json":
		enc := json.NewEncoder(f.Writer)
		enc.SetIndent("", "  ")
		return enc.Encode(data)
	case "yaml":
		// Round-trip through JSON so YAML keys match the API field names.
		raw, err := json.Marshal(data)
		if err != nil {
			return fmt.Errorf("failed to encode output: %w", err)
		}
		var doc interface{}
		if err := json.Unmarshal(raw, &doc); err != nil {
			return fmt.Errorf("failed to encode output: %w", err)
		}
		enc := yaml.NewEncoder(f.Writer)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("failed to encode output: %w", err)
		}
		return enc.Close()
	default:
		return text(f.Writer)
	}
}

// Message prints a one-line confirmation, or {"message": ...} for the
// structured formats.
func (f *OutputFormatter) Message(format string, args ...interface{}) error {
	msg := fmt.Sprintf(format, args...)
	return f.Print(map[string]string{"message": msg}, func(w io.Writer) error {
		_, err := fmt.Fprintln(w, msg)
		return err
	})
}

// table writes tab-aligned columns.
func table(w io.Writer, headers []string, rows [][]string) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(headers, "\t"))
	for _, row := range rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}

// saveFallback writes the content of a failed table write into dir so the
// operator can put it in place by hand. Other errors pass through.
func saveFallback(dir string, err error) error {
	var failure *database.WriteFailure
	if !errors.As(err, &failure) {
		return err
	}

	path := filepath.Join(dir, failure.FileName)
	if writeErr := os.WriteFile(path, []byte(failure.Content), 0o644); writeErr != nil {
		return fmt.Errorf("%w (fallback copy also failed: %v)", err, writeErr)
	}
	return fmt.Errorf("%w; intended content saved to %s", err, path)
}
