// Package codegen writes the resolved interface statements of an integration
// to disk: one file per binding key plus an index listing every export.
package codegen

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/artpar/botdef/core/formatter"
	"github.com/artpar/botdef/core/integration"
)

// Module is one generated file.
type Module struct {
	// Path is relative to the output directory.
	Path string

	// ExportName is the identifier the module is exported under.
	ExportName string

	Content []byte
}

// IndexEntry lists one export in the index module.
type IndexEntry struct {
	Key        string `json:"key" yaml:"key"`
	ExportName string `json:"exportName" yaml:"exportName"`
	Path       string `json:"path" yaml:"path"`
}

// Index is the content of the index module.
type Index struct {
	Integration string       `json:"integration" yaml:"integration"`
	ExportName  string       `json:"exportName" yaml:"exportName"`
	Exports     []IndexEntry `json:"exports" yaml:"exports"`
}

// InterfacesModules renders every statement of def with f. The last module
// is the index.
func InterfacesModules(def integration.Definition, f formatter.Formatter) ([]Module, error) {
	ext := f.Extension()
	if ext == "" {
		return nil, fmt.Errorf("format %q cannot be written to files", f.Name())
	}

	index := Index{Integration: def.Ref(), ExportName: VarName("interfaces")}
	var modules []Module
	for _, key := range def.BindingKeys() {
		var buf bytes.Buffer
		if err := f.Format(&buf, def.Interfaces[key], formatter.Options{}); err != nil {
			return nil, fmt.Errorf("render %s: %w", key, err)
		}
		m := Module{
			Path:       FileName(key) + ext,
			ExportName: VarName(key),
			Content:    buf.Bytes(),
		}
		modules = append(modules, m)
		index.Exports = append(index.Exports, IndexEntry{Key: key, ExportName: m.ExportName, Path: m.Path})
	}

	var buf bytes.Buffer
	if err := f.Format(&buf, index, formatter.Options{}); err != nil {
		return nil, fmt.Errorf("render index: %w", err)
	}
	modules = append(modules, Module{Path: "index" + ext, ExportName: index.ExportName, Content: buf.Bytes()})
	return modules, nil
}

// Write writes modules below dir, creating it if needed.
func Write(dir string, modules []Module) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	for _, m := range modules {
		path := filepath.Join(dir, m.Path)
		if err := os.WriteFile(path, m.Content, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
	}
	return nil
}

// FileName turns a binding key into a kebab-case file name:
// "sentiment<document>" becomes "sentiment-document".
func FileName(name string) string {
	return strings.Join(words(name), "-")
}

// VarName turns a binding key into a lower camelCase identifier:
// "sentiment<document>" becomes "sentimentDocument".
func VarName(name string) string {
	ws := words(name)
	for i := 1; i < len(ws); i++ {
		ws[i] = strings.ToUpper(ws[i][:1]) + ws[i][1:]
	}
	return strings.Join(ws, "")
}

// words splits name on non-alphanumerics and camelCase humps and lowercases
// the parts.
func words(name string) []string {
	var out []string
	var cur []rune
	flush := func() {
		if len(cur) > 0 {
			out = append(out, strings.ToLower(string(cur)))
			cur = cur[:0]
		}
	}

	runes := []rune(name)
	for i, r := range runes {
		switch {
		case !unicode.IsLetter(r) && !unicode.IsDigit(r):
			flush()
		case unicode.IsUpper(r) && i > 0 && len(cur) > 0 &&
			(unicode.IsLower(runes[i-1]) || (i+1 < len(runes) && unicode.IsLower(runes[i+1]))):
			flush()
			cur = append(cur, r)
		default:
			cur = append(cur, r)
		}
	}
	flush()
	return out
}
