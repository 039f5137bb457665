package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var baseProject = map[string]string{
	"interfaces/typing.yaml": `
name: typing
version: 1.0.0
actions:
  startTyping:
    input:
      properties:
        conversationId: string
    output: { type: object }
`,
	"interfaces/listable.yaml": `
name: listable
version: 0.0.1
entities:
  item:
    schema:
      properties:
        id: string
actions:
  list:
    input: { type: object }
    output:
      properties:
        items: { items: { entity: item } }
`,
	"integrations/telegram.yaml": `
name: telegram
version: 0.3.0
entities:
  chat:
    schema:
      properties:
        id: string
        title: string
implements:
  - interface: typing@1.0.0
  - interface: listable@0.0.1
    entities: { item: chat }
    actions: { list: listChats }
`,
	"bots/echo.yaml": `
name: echo
integrations:
  telegram: {}
interfaces: [typing@1.0.0, listable@0.0.1]
`,
}

func writeProject(t *testing.T, extra map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for _, files := range []map[string]string{baseProject, extra} {
		for name, content := range files {
			path := filepath.Join(dir, name)
			require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
			require.NoError(t, os.WriteFile(path, []byte(content), 0644))
		}
	}
	return dir
}

// execute runs the root command with fresh flag values.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("BOTDEF_DATABASE_DRIVER", "memory")
	t.Setenv("BOTDEF_LOG_LEVEL", "error")

	cfgFile, projectDir, outputFormat = "", "", ""
	resolveAction, resolveEvent = "", ""
	genFormat, genOut = "yaml", ""

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)

	err := rootCmd.Execute()
	return buf.String(), err
}

func TestValidate(t *testing.T) {
	dir := writeProject(t, nil)

	out, err := execute(t, "validate", "--dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ 2 interfaces, 1 integrations resolved")
	assert.Contains(t, out, "✓ echo ("+filepath.Join("bots", "echo.yaml")+")")
	assert.Contains(t, out, "Project is valid.")
}

func TestValidate_Failures(t *testing.T) {
	dir := writeProject(t, map[string]string{
		"bots/broken.yaml": `
name: broken
events:
  Bad_Event:
    schema: { type: object }
`,
		"bots/needy.yaml": `
name: needy
interfaces: [typing@1.0.0]
`,
	})

	out, err := execute(t, "validate", "--dir", dir)
	require.Error(t, err)
	assert.Equal(t, "2 of 3 bots failed validation", err.Error())
	assert.Contains(t, out, "✗ broken")
	assert.Contains(t, out, "Bad_Event")
	assert.Contains(t, out, "✗ needy")
	assert.Contains(t, out, "typing@1.0.0")
	assert.Contains(t, out, "✓ echo")
}

func TestValidate_JSON(t *testing.T) {
	dir := writeProject(t, nil)

	out, err := execute(t, "validate", "--dir", dir, "-o", "json")
	require.NoError(t, err)
	assert.Contains(t, out, `"bot": "echo"`)
	assert.Contains(t, out, `"valid": true`)
}

func TestValidate_LoadError(t *testing.T) {
	dir := writeProject(t, map[string]string{
		"interfaces/typing-copy.yaml": baseProject["interfaces/typing.yaml"],
	})

	out, err := execute(t, "validate", "--dir", dir)
	require.Error(t, err)
	assert.Equal(t, "Declaration conflicts", err.Error())
	assert.Contains(t, out, "interface typing@1.0.0 declared in")
}

func TestDescribe(t *testing.T) {
	dir := writeProject(t, nil)

	tests := []struct {
		name string
		args []string
		want []string
	}{
		{
			name: "interfaces",
			args: []string{"describe", "interfaces"},
			want: []string{"INTERFACE", "listable@0.0.1", "typing@1.0.0", "startTyping"},
		},
		{
			name: "integrations",
			args: []string{"describe", "integrations"},
			want: []string{"telegram@0.3.0", "listable<chat>, typing"},
		},
		{
			name: "bots",
			args: []string{"describe", "bots"},
			want: []string{"echo", "listable@0.0.1, typing@1.0.0"},
		},
		{
			name: "interface",
			args: []string{"describe", "interface", "listable@0.0.1"},
			want: []string{"entity", "item", "action", "list"},
		},
		{
			name: "integration bindings",
			args: []string{"describe", "integration", "telegram"},
			want: []string{"listable<chat>", "item=chat", "list=listChats"},
		},
		{
			name: "integration json",
			args: []string{"describe", "integration", "telegram", "-o", "json"},
			want: []string{`"listChats"`, `"startTyping"`, `"listable<chat>"`},
		},
		{
			name: "bot yaml",
			args: []string{"describe", "bot", "echo", "-o", "yaml"},
			want: []string{"name: echo", "listable:"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, append(tt.args, "--dir", dir)...)
			require.NoError(t, err)
			for _, w := range tt.want {
				assert.Contains(t, out, w)
			}
		})
	}
}

func TestDescribe_Errors(t *testing.T) {
	dir := writeProject(t, nil)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"unknown listing", []string{"describe", "plugins"}, `unknown listing "plugins"`},
		{"unknown kind", []string{"describe", "plugin", "x"}, `unknown kind "plugin"`},
		{"bad ref", []string{"describe", "interface", "typing"}, "expected name@version"},
		{"missing interface", []string{"describe", "interface", "typing@2.0.0"}, "interface typing@2.0.0 not found"},
		{"missing bot", []string{"describe", "bot", "ghost"}, "bot ghost not found"},
		{"bad format", []string{"describe", "bots", "-o", "xml"}, `unknown format "xml"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, append(tt.args, "--dir", dir)...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestResolve(t *testing.T) {
	dir := writeProject(t, nil)

	out, err := execute(t, "resolve", "echo", "--dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "listable@0.0.1")
	assert.Contains(t, out, "listable<chat>")
	assert.Contains(t, out, "telegram:listChats")
	assert.Contains(t, out, "telegram:startTyping")

	out, err = execute(t, "resolve", "echo", "--dir", dir, "--action", "listable.list")
	require.NoError(t, err)
	assert.Equal(t, "telegram:listChats\n", out)

	out, err = execute(t, "resolve", "echo", "--dir", dir, "--action", "telegram.unknownAction")
	require.NoError(t, err)
	assert.Equal(t, "telegram:unknownAction\n", out)

	_, err = execute(t, "resolve", "echo", "--dir", dir, "--action", "list")
	assert.Error(t, err)
}

func TestResolve_JSON(t *testing.T) {
	dir := writeProject(t, nil)

	out, err := execute(t, "resolve", "echo", "--dir", dir, "-o", "json")
	require.NoError(t, err)
	assert.Contains(t, out, `"bindingKey": "listable<chat>"`)
	assert.Contains(t, out, `"target": "telegram:listChats"`)
}

func TestGen(t *testing.T) {
	dir := writeProject(t, nil)
	outDir := t.TempDir()

	out, err := execute(t, "gen", "--dir", dir, "--out", outDir)
	require.NoError(t, err)
	assert.Contains(t, out, "telegram@0.3.0: 3 modules written")

	for _, name := range []string{"index.yaml", "typing.yaml", "listable-chat.yaml"} {
		_, err := os.Stat(filepath.Join(outDir, "telegram", name))
		assert.NoError(t, err, name)
	}

	_, err = execute(t, "gen", "ghost", "--dir", dir, "--out", outDir)
	assert.EqualError(t, err, "integration ghost not found")

	_, err = execute(t, "gen", "--dir", dir, "--out", outDir, "--format", "table")
	assert.Error(t, err)
}

func TestPublish(t *testing.T) {
	dir := writeProject(t, nil)

	out, err := execute(t, "publish", "--dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "telegram@0.3.0")
	assert.Contains(t, out, "integ_")
	assert.Contains(t, out, "intver_")
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "botdef dev\n"))
}
