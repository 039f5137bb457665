package config

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"sync"
	"syscall"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// Change describes a reload that changed at least one field.
type Change struct {
	Old *Config
	New *Config

	// Fields are the changed field paths, e.g. "logging.level".
	Fields []string
}

// RestartRequired returns the changed fields that only take effect after a
// restart.
func (c Change) RestartRequired() []string {
	var out []string
	for _, path := range c.Fields {
		if f, ok := fieldByPath(path); ok && !f.reloadable {
			out = append(out, path)
		}
	}
	return out
}

// Holder provides thread-safe access to configuration with hot reload support.
type Holder struct {
	mu       sync.RWMutex
	config   *Config
	path     string
	logger   zerolog.Logger
	watcher  *fsnotify.Watcher
	onChange []func(Change)
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewHolder loads path and returns a holder for it.
func NewHolder(path string, logger zerolog.Logger) (*Holder, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("absolute path: %w", err)
	}

	return &Holder{
		config: cfg,
		path:   absPath,
		logger: logger,
		stopCh: make(chan struct{}),
	}, nil
}

// Get returns the current configuration.
func (h *Holder) Get() *Config {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.config
}

// Reload reloads the configuration from disk. On error the current
// configuration is kept. Listeners are only called when a field changed.
func (h *Holder) Reload() error {
	newCfg, err := Load(h.path)
	if err != nil {
		h.logger.Error().Err(err).Str("path", h.path).Msg("config reload failed, keeping current config")
		return fmt.Errorf("reload config: %w", err)
	}

	h.mu.Lock()
	change := Change{Old: h.config, New: newCfg, Fields: Diff(h.config, newCfg)}
	h.config = newCfg
	listeners := append([]func(Change){}, h.onChange...)
	h.mu.Unlock()

	if len(change.Fields) == 0 {
		h.logger.Debug().Str("path", h.path).Msg("config reloaded, nothing changed")
		return nil
	}

	h.logChange(change)
	for _, fn := range listeners {
		fn(change)
	}
	return nil
}

// OnChange registers fn to be called after each reload that changed a field.
func (h *Holder) OnChange(fn func(Change)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onChange = append(h.onChange, fn)
}

// WatchFile reloads the configuration whenever the file is written.
func (h *Holder) WatchFile() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	h.watcher = watcher

	// Editors that save atomically replace the file, so watch its directory
	if err := watcher.Add(filepath.Dir(h.path)); err != nil {
		watcher.Close()
		return fmt.Errorf("watch directory: %w", err)
	}

	go h.watchLoop()

	h.logger.Info().Str("path", h.path).Msg("watching config file for changes")
	return nil
}

// WatchSignals reloads the configuration on SIGHUP.
func (h *Holder) WatchSignals() {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGHUP)

	go func() {
		defer signal.Stop(sigCh)
		for {
			select {
			case <-sigCh:
				h.logger.Info().Msg("received SIGHUP, reloading config")
				h.Reload()
			case <-h.stopCh:
				return
			}
		}
	}()
}

// Stop stops watching the file and signals.
func (h *Holder) Stop() {
	h.stopOnce.Do(func() {
		close(h.stopCh)
		if h.watcher != nil {
			h.watcher.Close()
		}
	})
}

func (h *Holder) watchLoop() {
	filename := filepath.Base(h.path)

	for {
		select {
		case event, ok := <-h.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != filename || event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			h.logger.Debug().Str("event", event.Op.String()).Msg("config file changed")
			h.Reload()

		case err, ok := <-h.watcher.Errors:
			if !ok {
				return
			}
			h.logger.Error().Err(err).Msg("config watcher error")

		case <-h.stopCh:
			return
		}
	}
}

func (h *Holder) logChange(c Change) {
	for _, path := range c.Fields {
		f, _ := fieldByPath(path)
		ev := h.logger.Info()
		if !f.reloadable {
			ev = h.logger.Warn().Bool("restart_required", true)
		}
		ev.Str("field", path).
			Str("old", f.value(c.Old)).
			Str("new", f.value(c.New)).
			Msg("config field changed")
	}
}

// field is a config value tracked across reloads.
type field struct {
	path       string
	reloadable bool
	value      func(*Config) string
}

var fields = []field{
	{"project.dir", false, func(c *Config) string { return c.Project.Dir }},
	{"project.workers", true, func(c *Config) string { return strconv.Itoa(c.Project.Workers) }},
	{"project.debounce", false, func(c *Config) string { return c.Project.Debounce.String() }},
	{"database.driver", false, func(c *Config) string { return c.Database.Driver }},
	{"database.dsn", false, func(c *Config) string { return c.Database.DSN }},
	{"server.host", false, func(c *Config) string { return c.Server.Host }},
	{"server.port", false, func(c *Config) string { return strconv.Itoa(c.Server.Port) }},
	{"server.read_timeout", false, func(c *Config) string { return c.Server.ReadTimeout.String() }},
	{"server.write_timeout", false, func(c *Config) string { return c.Server.WriteTimeout.String() }},
	{"output.format", true, func(c *Config) string { return c.Output.Format }},
	{"output.dir", true, func(c *Config) string { return c.Output.Dir }},
	{"logging.level", true, func(c *Config) string { return c.Logging.Level }},
	{"logging.format", false, func(c *Config) string { return c.Logging.Format }},
	{"metrics.enabled", false, func(c *Config) string { return strconv.FormatBool(c.Metrics.Enabled) }},
	{"metrics.textfile", true, func(c *Config) string { return c.Metrics.Textfile }},
}

func fieldByPath(path string) (field, bool) {
	for _, f := range fields {
		if f.path == path {
			return f, true
		}
	}
	return field{}, false
}

// Diff returns the paths of the fields that differ between a and b.
func Diff(a, b *Config) []string {
	var out []string
	for _, f := range fields {
		if f.value(a) != f.value(b) {
			out = append(out, f.path)
		}
	}
	return out
}

// ReloadableFields returns which fields can be changed without restart.
func ReloadableFields() []string {
	return fieldPaths(true)
}

// NonReloadableFields returns which fields require a restart.
func NonReloadableFields() []string {
	return fieldPaths(false)
}

func fieldPaths(reloadable bool) []string {
	var out []string
	for _, f := range fields {
		if f.reloadable == reloadable {
			out = append(out, f.path)
		}
	}
	return out
}
