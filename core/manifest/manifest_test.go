package manifest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artpar/botdef/core/bot"
	"github.com/artpar/botdef/core/contract"
	"github.com/artpar/botdef/core/integration"
	"github.com/artpar/botdef/core/registry"
	"github.com/artpar/botdef/core/schema"
)

const sentimentYAML = `
name: sentiment
version: 1.0.0
entities:
  item:
    schema:
      properties:
        id: string
      required: [id]
actions:
  classify:
    input: { entity: item }
    output:
      properties:
        score: number
events:
  classified:
    schema: { entity: item }
`

const nlpYAML = `
name: nlp
version: 2.1.0
title: NLP
entities:
  document:
    schema:
      properties:
        id: string
        text: string
      required: [id]
actions:
  summarize:
    input:
      properties:
        text: string
    output:
      properties:
        summary: string
implements:
  - interface: sentiment@1.0.0
    entities: { item: document }
    actions: { classify: analyze }
`

const supportYAML = `
name: support
integrations:
  nlp:
    configuration:
      apiKey: secret
interfaces:
  - sentiment@1.0.0
actions:
  escalate:
    input: { properties: { reason: string } }
    output: { type: object }
`

func writeProject(t *testing.T, files map[string]string) string {
	t.Helper()

	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
	return dir
}

type recordingObserver struct {
	mu      sync.Mutex
	applied []string
	failed  []string
}

func (o *recordingObserver) ExtensionApplied(iface, key string, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.applied = append(o.applied, iface+" "+key)
}

func (o *recordingObserver) ExtensionFailed(iface string, _ error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.failed = append(o.failed, iface)
}

func TestLoad(t *testing.T) {
	dir := writeProject(t, map[string]string{
		"interfaces/sentiment.yaml": sentimentYAML,
		"integrations/nlp.yaml":     nlpYAML,
		"bots/support.yaml":         supportYAML,
		"README.md":                 "ignored",
	})
	obs := &recordingObserver{}

	proj, err := Load(context.Background(), dir, WithObserver(obs), WithWorkers(2))
	require.NoError(t, err)

	nlp, ok := proj.Registry.Integration("nlp")
	require.True(t, ok)
	assert.Equal(t, []string{"sentiment<document>"}, nlp.BindingKeys())
	assert.Contains(t, nlp.Actions, "summarize")
	require.Contains(t, nlp.Actions, "analyze")
	assert.NotContains(t, nlp.Actions, "classify")
	assert.Contains(t, nlp.Actions["analyze"].Input.Properties, "text")
	assert.Contains(t, nlp.Events, "classified")
	assert.Equal(t, []string{"sentiment@1.0.0 sentiment<document>"}, obs.applied)

	src, _ := proj.Registry.Source("integration", "nlp")
	assert.Equal(t, filepath.Join("integrations", "nlp.yaml"), src)

	assert.Equal(t, []string{"support"}, proj.BotNames())
	support, ok := proj.Bot("support")
	require.True(t, ok)
	assert.Equal(t, filepath.Join("bots", "support.yaml"), proj.BotSource("support"))
	assert.True(t, support.Integrations["nlp"].Enabled)
	assert.Equal(t, "secret", support.Integrations["nlp"].Configuration["apiKey"])
	assert.Equal(t, "1.0.0", support.Interfaces["sentiment"].Version)

	require.NoError(t, bot.Validate(support))
	res, err := bot.ResolveInterfaces(support)
	require.NoError(t, err)
	assert.Equal(t, "nlp", res["sentiment"].Integration)
	assert.Equal(t, "sentiment<document>", res["sentiment"].BindingKey)
}

func TestLoad_EmptyProject(t *testing.T) {
	proj, err := Load(context.Background(), t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, proj.BotNames())
	assert.Empty(t, proj.Interfaces())
	assert.Empty(t, proj.Integrations())
}

func TestLoad_MissingDir(t *testing.T) {
	_, err := Load(context.Background(), filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestLoad_UnboundEntity(t *testing.T) {
	dir := writeProject(t, map[string]string{
		"interfaces/sentiment.yaml": sentimentYAML,
		"integrations/nlp.yaml": `
name: nlp
version: 1.0.0
implements:
  - interface: sentiment
    version: 1.0.0
`,
	})
	obs := &recordingObserver{}

	_, err := Load(context.Background(), dir, WithObserver(obs))

	var unbound *schema.UnboundEntityError
	require.ErrorAs(t, err, &unbound)
	assert.Equal(t, "item", unbound.Entity)
	assert.Contains(t, err.Error(), "nlp.yaml")
	assert.Equal(t, []string{"sentiment@1.0.0"}, obs.failed)
}

func TestLoad_UnknownOwnedEntity(t *testing.T) {
	dir := writeProject(t, map[string]string{
		"interfaces/sentiment.yaml": sentimentYAML,
		"integrations/nlp.yaml": `
name: nlp
version: 1.0.0
implements:
  - interface: sentiment@1.0.0
    entities: { item: page }
`,
	})

	_, err := Load(context.Background(), dir)
	var cfgErr *integration.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "sentiment", cfgErr.Interface)
	assert.Contains(t, cfgErr.Message, `"page" is not part of the integration's entities`)
}

func TestImplementation_ForeignEntity(t *testing.T) {
	iface, err := contract.Parse([]byte(sentimentYAML))
	require.NoError(t, err)
	nlp, err := integration.Parse([]byte(`
name: nlp
version: 1.0.0
entities:
  document:
    schema: { properties: { id: string } }
`))
	require.NoError(t, err)

	im := Implementation{Interface: "sentiment@1.0.0", Entities: map[string]string{"item": "ticket"}}
	_, err = nlp.Extend(iface, im.BindingFunc())

	var cfgErr *integration.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "sentiment", cfgErr.Interface)
	assert.Contains(t, cfgErr.Message, `entity "item": "ticket"`)
	assert.NotErrorIs(t, err, integration.ErrEntityNotFound)
}

func TestLoad_UnknownInterface(t *testing.T) {
	dir := writeProject(t, map[string]string{
		"integrations/nlp.yaml": nlpYAML,
	})

	_, err := Load(context.Background(), dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown interface sentiment@1.0.0")
}

func TestLoad_Conflicts(t *testing.T) {
	dir := writeProject(t, map[string]string{
		"interfaces/sentiment.yaml":    sentimentYAML,
		"interfaces/v1/sentiment.yaml": sentimentYAML,
		"bots/a.yaml":                  "name: support\n",
		"bots/b.yaml":                  "name: support\n",
	})

	_, err := Load(context.Background(), dir)

	var conflict *registry.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Len(t, conflict.Conflicts, 2)
	assert.Contains(t, err.Error(), "interface sentiment@1.0.0")
	assert.Contains(t, err.Error(), "bot support")
}

func TestLoad_ParseErrors(t *testing.T) {
	dir := writeProject(t, map[string]string{
		"interfaces/broken.yaml": "name: broken\n",
		"bots/bad.yaml":          "name: [",
	})

	_, err := Load(context.Background(), dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "interface version is required")
}

func TestLoad_UnsatisfiedBot(t *testing.T) {
	dir := writeProject(t, map[string]string{
		"interfaces/sentiment.yaml": sentimentYAML,
		"bots/lonely.yaml": `
interfaces: [sentiment@1.0.0]
`,
	})

	proj, err := Load(context.Background(), dir)
	require.NoError(t, err)

	// name falls back to the file name
	lonely, ok := proj.Bot("lonely")
	require.True(t, ok)

	err = bot.Validate(lonely)
	var unsat *bot.UnsatisfiedInterfaceError
	require.ErrorAs(t, err, &unsat)
	assert.Equal(t, "sentiment@1.0.0", unsat.Interface)
}

func TestLoad_BotInstallErrors(t *testing.T) {
	tests := []struct {
		name    string
		bot     string
		wantErr string
	}{
		{
			name:    "unknown integration",
			bot:     "integrations: { slack: {} }\n",
			wantErr: `installs unknown integration "slack"`,
		},
		{
			name:    "version mismatch",
			bot:     "integrations: { nlp: { version: 1.0.0 } }\n",
			wantErr: "installs nlp@1.0.0 but the project declares nlp@2.1.0",
		},
		{
			name:    "unknown interface",
			bot:     "interfaces: [typing@1.0.0]\n",
			wantErr: "depends on unknown interface typing@1.0.0",
		},
		{
			name:    "malformed reference",
			bot:     "interfaces: [typing]\n",
			wantErr: "expected name@version",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := writeProject(t, map[string]string{
				"interfaces/sentiment.yaml": sentimentYAML,
				"integrations/nlp.yaml":     nlpYAML,
				"bots/support.yaml":         tt.bot,
			})

			_, err := Load(context.Background(), dir)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_Canceled(t *testing.T) {
	dir := writeProject(t, map[string]string{
		"interfaces/sentiment.yaml": sentimentYAML,
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Load(ctx, dir)
	assert.True(t, errors.Is(err, context.Canceled), "Load() error = %v, want context.Canceled", err)
}

func TestInstall_Disabled(t *testing.T) {
	disabled := false
	in := Install{Enabled: &disabled}
	if in.IsEnabled() {
		t.Error("IsEnabled() = true, want false")
	}
	if !(Install{}).IsEnabled() {
		t.Error("IsEnabled() of zero Install = false, want true")
	}
}

func TestParseIntegration(t *testing.T) {
	f, err := ParseIntegration([]byte(nlpYAML))
	if err != nil {
		t.Fatalf("ParseIntegration() error = %v", err)
	}
	if f.Definition.Ref() != "nlp@2.1.0" {
		t.Errorf("Ref() = %q, want %q", f.Definition.Ref(), "nlp@2.1.0")
	}
	if len(f.Definition.Interfaces) != 0 {
		t.Errorf("Interfaces = %v, want empty before resolution", f.Definition.Interfaces)
	}
	if len(f.Implements) != 1 {
		t.Fatalf("len(Implements) = %d, want 1", len(f.Implements))
	}

	name, version, err := f.Implements[0].Ref()
	if err != nil || name != "sentiment" || version != "1.0.0" {
		t.Errorf("Ref() = %q, %q, %v", name, version, err)
	}

	_, err = ParseIntegration([]byte("name: nlp\nversion: 1.0.0\nimplements:\n  - actions: { a: b }\n"))
	if err == nil {
		t.Error("ParseIntegration() without interface expected error")
	}
}
