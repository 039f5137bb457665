package config_test

import (
	"os"
	"path/filepath"
	"reflect"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/artpar/botdef/config"
)

func TestHolder_Get(t *testing.T) {
	path := writeConfig(t, validConfig())

	h, err := config.NewHolder(path, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewHolder error: %v", err)
	}
	defer h.Stop()

	got := h.Get()
	if got == nil {
		t.Fatal("Get returned nil")
	}
	if got.Project.Dir != "./bots" {
		t.Errorf("Project.Dir = %s, want ./bots", got.Project.Dir)
	}
}

func TestHolder_ReloadAndOnChange(t *testing.T) {
	path := writeConfig(t, validConfig())

	h, err := config.NewHolder(path, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewHolder error: %v", err)
	}
	defer h.Stop()

	var mu sync.Mutex
	var received *config.Change
	h.OnChange(func(c config.Change) {
		mu.Lock()
		received = &c
		mu.Unlock()
	})

	if err := os.WriteFile(path, []byte("project:\n  dir: ./other\ndatabase:\n  driver: memory\nlogging:\n  level: debug\n"), 0644); err != nil {
		t.Fatalf("write new config: %v", err)
	}
	if err := h.Reload(); err != nil {
		t.Fatalf("Reload error: %v", err)
	}

	if h.Get().Project.Dir != "./other" {
		t.Errorf("reloaded Project.Dir = %s, want ./other", h.Get().Project.Dir)
	}

	mu.Lock()
	defer mu.Unlock()
	if received == nil {
		t.Fatal("OnChange callback was not called")
	}
	if received.New.Logging.Level != "debug" {
		t.Errorf("callback Logging.Level = %s, want debug", received.New.Logging.Level)
	}
	if got, want := received.Fields, []string{"project.dir", "logging.level"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Change.Fields = %v, want %v", got, want)
	}
	if got := received.RestartRequired(); !reflect.DeepEqual(got, []string{"project.dir"}) {
		t.Errorf("RestartRequired() = %v, want [project.dir]", got)
	}
}

func TestHolder_ReloadUnchanged(t *testing.T) {
	path := writeConfig(t, validConfig())

	h, err := config.NewHolder(path, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewHolder error: %v", err)
	}
	defer h.Stop()

	var calls int
	h.OnChange(func(config.Change) { calls++ })

	if err := h.Reload(); err != nil {
		t.Fatalf("Reload error: %v", err)
	}
	if calls != 0 {
		t.Errorf("OnChange called %d times for an unchanged file, want 0", calls)
	}
}

func TestDiff(t *testing.T) {
	base := func() *config.Config {
		return &config.Config{
			Project: config.ProjectConfig{Dir: ".", Debounce: 200 * time.Millisecond},
			Server:  config.ServerConfig{Host: "127.0.0.1", Port: 8420},
			Output:  config.OutputConfig{Format: "table"},
		}
	}

	tests := []struct {
		name   string
		modify func(*config.Config)
		want   []string
	}{
		{"unchanged", func(*config.Config) {}, nil},
		{"port", func(c *config.Config) { c.Server.Port = 9000 }, []string{"server.port"}},
		{"debounce", func(c *config.Config) { c.Project.Debounce = time.Second }, []string{"project.debounce"}},
		{
			name: "several",
			modify: func(c *config.Config) {
				c.Output.Format = "json"
				c.Metrics.Enabled = true
				c.Project.Workers = 4
			},
			want: []string{"project.workers", "output.format", "metrics.enabled"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := base()
			tt.modify(b)
			if got := config.Diff(base(), b); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Diff() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHolder_ReloadInvalidConfig(t *testing.T) {
	path := writeConfig(t, validConfig())

	h, err := config.NewHolder(path, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewHolder error: %v", err)
	}
	defer h.Stop()

	if err := os.WriteFile(path, []byte("output:\n  format: xml\n"), 0644); err != nil {
		t.Fatalf("write invalid config: %v", err)
	}

	if err := h.Reload(); err == nil {
		t.Error("Reload should fail for invalid config")
	}
	if got := h.Get().Output.Format; got != "table" {
		t.Errorf("should keep old config, got Output.Format = %s", got)
	}
}

func TestHolder_WatchFile(t *testing.T) {
	path := writeConfig(t, validConfig())

	h, err := config.NewHolder(path, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewHolder error: %v", err)
	}
	defer h.Stop()

	var calls atomic.Int32
	h.OnChange(func(config.Change) { calls.Add(1) })

	if err := h.WatchFile(); err != nil {
		t.Fatalf("WatchFile error: %v", err)
	}

	if err := os.WriteFile(path, []byte("project:\n  dir: ./watched\n"), 0644); err != nil {
		t.Fatalf("write new config: %v", err)
	}

	waitFor(t, func() bool { return h.Get().Project.Dir == "./watched" })
	if calls.Load() == 0 {
		t.Error("file watcher did not trigger reload")
	}
}

func TestHolder_ConcurrentAccess(t *testing.T) {
	path := writeConfig(t, validConfig())

	h, err := config.NewHolder(path, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewHolder error: %v", err)
	}
	defer h.Stop()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if h.Get() == nil {
					t.Error("concurrent Get returned nil")
				}
			}
		}()
	}
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = h.Reload()
		}()
	}

	wg.Wait()
}

func TestHolder_StopTwice(t *testing.T) {
	h, err := config.NewHolder(writeConfig(t, validConfig()), zerolog.Nop())
	if err != nil {
		t.Fatalf("NewHolder error: %v", err)
	}
	h.Stop()
	h.Stop()
}

func TestReloadableFields(t *testing.T) {
	reloadable := make(map[string]bool)
	for _, f := range config.ReloadableFields() {
		reloadable[f] = true
	}
	for _, f := range []string{"project.workers", "logging.level", "output.format"} {
		if !reloadable[f] {
			t.Errorf("%s not in ReloadableFields", f)
		}
	}
	for _, f := range config.NonReloadableFields() {
		if reloadable[f] {
			t.Errorf("%s is both reloadable and non-reloadable", f)
		}
	}
	if reloadable["project.dir"] {
		t.Error("project.dir should require a restart")
	}
}

func TestProjectWatcher(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "bots"), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	w, err := config.NewProjectWatcher(dir, 20*time.Millisecond, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewProjectWatcher error: %v", err)
	}
	defer w.Stop()

	var calls atomic.Int32
	if err := w.Start(func() { calls.Add(1) }); err != nil {
		t.Fatalf("Start error: %v", err)
	}

	// non-definition files are ignored
	if err := os.WriteFile(filepath.Join(dir, "bots", "notes.txt"), []byte("x"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	time.Sleep(100 * time.Millisecond)
	if n := calls.Load(); n != 0 {
		t.Fatalf("calls after .txt write = %d, want 0", n)
	}

	if err := os.WriteFile(filepath.Join(dir, "bots", "support.yaml"), []byte("name: support\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	waitFor(t, func() bool { return calls.Load() >= 1 })
}

func TestProjectWatcher_MissingDir(t *testing.T) {
	w, err := config.NewProjectWatcher(filepath.Join(t.TempDir(), "missing"), time.Millisecond, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewProjectWatcher error: %v", err)
	}
	if err := w.Start(func() {}); err == nil {
		t.Error("Start() on missing directory expected error")
	}
}

// Helpers

func validConfig() string {
	return `
project:
  dir: "./bots"

database:
  driver: "memory"
`
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "botdef.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met within 5s")
}
