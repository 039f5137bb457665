package formatter

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"
)

// JSON formats output as JSON.
type JSON struct{}

func (JSON) Name() string      { return "json" }
func (JSON) Extension() string { return ".json" }

// Format writes v as indented JSON unless opts.Compact is set. Binding keys
// such as listable<chat> are written literally.
func (JSON) Format(w io.Writer, v any, opts Options) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if !opts.Compact {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}

// YAML formats output as YAML.
type YAML struct{}

func (YAML) Name() string      { return "yaml" }
func (YAML) Extension() string { return ".yaml" }

// Format writes v as YAML with two-space indentation.
func (YAML) Format(w io.Writer, v any, _ Options) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

// Table formats Tabular values as aligned text.
type Table struct{}

func (Table) Name() string      { return "table" }
func (Table) Extension() string { return "" }

// Format writes v as an aligned table. v must implement Tabular.
func (Table) Format(w io.Writer, v any, opts Options) error {
	t, ok := v.(Tabular)
	if !ok {
		return fmt.Errorf("table format does not support %T", v)
	}

	rows := t.Rows()
	if len(rows) == 0 {
		fmt.Fprintln(w, "Nothing to show.")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	headers := make([]string, 0, len(t.Header()))
	for _, h := range t.Header() {
		headers = append(headers, strings.ToUpper(h))
	}
	fmt.Fprintln(tw, strings.Join(headers, "\t"))

	for _, row := range rows {
		cells := make([]string, len(row))
		for i, cell := range row {
			cells[i] = truncate(cell, opts.MaxWidth)
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}

	return tw.Flush()
}

func truncate(s string, max int) string {
	if s == "" {
		return "-"
	}
	if max > 3 && len(s) > max {
		return s[:max-3] + "..."
	}
	return s
}
