package codegen

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/artpar/botdef/core/formatter"
	"github.com/artpar/botdef/core/integration"
)

func TestNames(t *testing.T) {
	tests := []struct {
		in       string
		wantFile string
		wantVar  string
	}{
		{"hitl", "hitl", "hitl"},
		{"sentiment<document>", "sentiment-document", "sentimentDocument"},
		{"text-generation", "text-generation", "textGeneration"},
		{"syncable<issue,comment>", "syncable-issue-comment", "syncableIssueComment"},
		{"Sentiment<Document>", "sentiment-document", "sentimentDocument"},
		{"listable<pullRequest>", "listable-pull-request", "listablePullRequest"},
		{"HTTPClient", "http-client", "httpClient"},
	}

	for _, tt := range tests {
		if got := FileName(tt.in); got != tt.wantFile {
			t.Errorf("FileName(%q) = %q, want %q", tt.in, got, tt.wantFile)
		}
		if got := VarName(tt.in); got != tt.wantVar {
			t.Errorf("VarName(%q) = %q, want %q", tt.in, got, tt.wantVar)
		}
	}
}

func TestInterfacesModules(t *testing.T) {
	def := integration.Definition{
		Name:    "nlp",
		Version: "1.0.0",
		Interfaces: map[string]integration.Statement{
			"sentiment<document>": {
				Name:     "sentiment",
				Version:  "1.0.0",
				Entities: map[string]integration.BoundEntity{"item": {Name: "document"}},
				Actions:  map[string]integration.Alias{"classify": {Name: "analyze"}},
			},
			"hitl": {Name: "hitl", Version: "0.2.0"},
		},
	}

	modules, err := InterfacesModules(def, formatter.JSON{})
	if err != nil {
		t.Fatalf("InterfacesModules() error = %v", err)
	}
	if len(modules) != 3 {
		t.Fatalf("got %d modules, want 3", len(modules))
	}
	if modules[0].Path != "hitl.json" || modules[1].Path != "sentiment-document.json" {
		t.Errorf("paths = %s, %s", modules[0].Path, modules[1].Path)
	}

	var st integration.Statement
	if err := json.Unmarshal(modules[1].Content, &st); err != nil {
		t.Fatalf("unmarshal statement: %v", err)
	}
	if st.ActionName("classify") != "analyze" {
		t.Errorf("classify alias = %q, want analyze", st.ActionName("classify"))
	}

	var index Index
	if err := json.Unmarshal(modules[2].Content, &index); err != nil {
		t.Fatalf("unmarshal index: %v", err)
	}
	if index.Integration != "nlp@1.0.0" || len(index.Exports) != 2 {
		t.Errorf("index = %+v", index)
	}
	if index.Exports[1].ExportName != "sentimentDocument" {
		t.Errorf("ExportName = %q, want sentimentDocument", index.Exports[1].ExportName)
	}

	if _, err := InterfacesModules(def, formatter.Table{}); err == nil {
		t.Error("InterfacesModules() with table format expected error")
	}
}

func TestWrite(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "gen", "interfaces")
	modules := []Module{{Path: "a.yaml", Content: []byte("name: a\n")}}

	if err := Write(dir, modules); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "a.yaml"))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "name: a\n" {
		t.Errorf("content = %q", data)
	}
}
