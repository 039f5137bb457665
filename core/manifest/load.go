package manifest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"

	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc/pool"

	"github.com/artpar/botdef/core/bot"
	"github.com/artpar/botdef/core/contract"
	"github.com/artpar/botdef/core/integration"
	"github.com/artpar/botdef/core/registry"
)

// Project is a loaded and resolved project.
type Project struct {
	Dir      string
	Registry *registry.Registry

	bots       map[string]bot.Definition
	botSources map[string]string
}

// BotNames returns the bot names in sorted order.
func (p *Project) BotNames() []string {
	return sortedKeys(p.bots)
}

// Bot returns a bot by name.
func (p *Project) Bot(name string) (bot.Definition, bool) {
	b, ok := p.bots[name]
	return b, ok
}

// BotSource returns the file a bot was declared in.
func (p *Project) BotSource(name string) string {
	return p.botSources[name]
}

// Interfaces returns the project's interfaces sorted by reference.
func (p *Project) Interfaces() []contract.Interface {
	return p.Registry.Interfaces()
}

// Integrations returns the project's resolved integrations sorted by name.
func (p *Project) Integrations() []integration.Definition {
	return p.Registry.Integrations()
}

// Loader loads projects.
type Loader struct {
	logger   zerolog.Logger
	observer integration.ExtensionObserver
	workers  int
}

// Option configures a Loader.
type Option func(*Loader)

// WithLogger sets the loader logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(l *Loader) { l.logger = logger }
}

// WithObserver sets the observer passed to every integration builder.
func WithObserver(o integration.ExtensionObserver) Option {
	return func(l *Loader) { l.observer = o }
}

// WithWorkers bounds the number of files parsed concurrently.
func WithWorkers(n int) Option {
	return func(l *Loader) {
		if n > 0 {
			l.workers = n
		}
	}
}

// NewLoader creates a loader.
func NewLoader(opts ...Option) *Loader {
	l := &Loader{
		logger:  zerolog.Nop(),
		workers: runtime.GOMAXPROCS(0),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load loads the project in dir with a default loader.
func Load(ctx context.Context, dir string, opts ...Option) (*Project, error) {
	return NewLoader(opts...).Load(ctx, dir)
}

// parsed is the result of parsing one project file.
type parsed struct {
	file        sourceFile
	source      string
	iface       contract.Interface
	integration IntegrationFile
	bot         BotFile
}

// Load parses every file of the project concurrently, then registers the
// declarations, resolves each integration's implements list in declaration
// order and installs integrations into bots.
func (l *Loader) Load(ctx context.Context, dir string) (*Project, error) {
	files, err := collect(dir)
	if err != nil {
		return nil, err
	}

	p := pool.NewWithResults[parsed]().
		WithContext(ctx).
		WithMaxGoroutines(l.workers)
	for _, f := range files {
		p.Go(func(ctx context.Context) (parsed, error) {
			if err := ctx.Err(); err != nil {
				return parsed{}, err
			}
			return parseFile(dir, f)
		})
	}
	results, err := p.Wait()
	if err != nil {
		return nil, err
	}

	// Results arrive in completion order.
	sort.Slice(results, func(i, j int) bool {
		a, b := results[i].file, results[j].file
		if a.kind != b.kind {
			return a.kind < b.kind
		}
		return a.path < b.path
	})

	proj := &Project{
		Dir:        dir,
		Registry:   registry.New(),
		bots:       make(map[string]bot.Definition),
		botSources: make(map[string]string),
	}

	var implements []parsed
	conflicts := &registry.ConflictError{}
	for _, r := range results {
		var err error
		switch r.file.kind {
		case kindInterface:
			err = proj.Registry.RegisterInterface(r.iface, r.source)
		case kindIntegration:
			err = proj.Registry.RegisterIntegration(r.integration.Definition, r.source)
			implements = append(implements, r)
		case kindBot:
			if prev, exists := proj.botSources[r.bot.Name]; exists {
				conflicts.Conflicts = append(conflicts.Conflicts, registry.Conflict{
					Kind: "bot",
					Name: r.bot.Name,
					Claims: []registry.Claim{
						{Kind: "bot", Name: r.bot.Name, Source: prev},
						{Kind: "bot", Name: r.bot.Name, Source: r.source},
					},
				})
				continue
			}
			proj.botSources[r.bot.Name] = r.source
		}

		var conflict *registry.ConflictError
		if errors.As(err, &conflict) {
			conflicts.Conflicts = append(conflicts.Conflicts, conflict.Conflicts...)
		} else if err != nil {
			return nil, err
		}
	}
	if conflicts.HasConflicts() {
		return nil, conflicts
	}

	for _, r := range implements {
		def, err := l.resolve(proj.Registry, r)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", r.source, err)
		}
		if err := proj.Registry.ReplaceIntegration(def); err != nil {
			return nil, err
		}
	}

	for _, r := range results {
		if r.file.kind != kindBot {
			continue
		}
		b, err := install(proj.Registry, r.bot)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", r.source, err)
		}
		proj.bots[b.Name] = b
	}

	l.logger.Info().
		Str("project", dir).
		Int("interfaces", len(proj.Registry.Interfaces())).
		Int("integrations", len(proj.Registry.Integrations())).
		Int("bots", len(proj.bots)).
		Msg("project loaded")

	return proj, nil
}

// resolve folds the implements list of an integration file into its
// definition.
func (l *Loader) resolve(reg *registry.Registry, r parsed) (integration.Definition, error) {
	def := r.integration.Definition
	opts := []integration.BuilderOption{
		integration.WithLogger(l.logger.With().Str("integration", def.Ref()).Logger()),
	}
	if l.observer != nil {
		opts = append(opts, integration.WithObserver(l.observer))
	}
	b := integration.NewBuilder(def, opts...)

	for _, im := range r.integration.Implements {
		name, version, err := im.Ref()
		if err != nil {
			return integration.Definition{}, err
		}
		iface, ok := reg.Interface(name, version)
		if !ok {
			return integration.Definition{}, fmt.Errorf("integration %s implements unknown interface %s", def.Ref(), contract.FormatRef(name, version))
		}
		if err := b.Extend(iface, im.BindingFunc()); err != nil {
			return integration.Definition{}, err
		}
	}

	return b.Build()
}

// install builds a bot definition from its file.
func install(reg *registry.Registry, f BotFile) (bot.Definition, error) {
	b := f.definition()

	for _, name := range sortedKeys(f.Integrations) {
		in := f.Integrations[name]
		def, ok := reg.Integration(name)
		if !ok {
			return bot.Definition{}, fmt.Errorf("bot %s installs unknown integration %q", f.Name, name)
		}
		if in.Version != "" && in.Version != def.Version {
			return bot.Definition{}, fmt.Errorf("bot %s installs %s but the project declares %s", f.Name, contract.FormatRef(name, in.Version), def.Ref())
		}
		b = b.AddIntegration(integration.Package{Definition: def}, bot.InstallConfig{
			Enabled:           in.IsEnabled(),
			ConfigurationType: in.ConfigurationType,
			Configuration:     in.Configuration,
		})
	}

	for _, ref := range f.Interfaces {
		name, version, err := contract.ParseRef(ref)
		if err != nil {
			return bot.Definition{}, err
		}
		iface, ok := reg.Interface(name, version)
		if !ok {
			return bot.Definition{}, fmt.Errorf("bot %s depends on unknown interface %s", f.Name, ref)
		}
		b = b.AddInterface(contract.Package{Interface: iface})
	}

	return b, nil
}

// parseFile parses one project file.
func parseFile(dir string, f sourceFile) (parsed, error) {
	source, err := filepath.Rel(dir, f.path)
	if err != nil {
		source = f.path
	}
	out := parsed{file: f, source: source}

	data, err := os.ReadFile(f.path)
	if err != nil {
		return parsed{}, fmt.Errorf("read %s: %w", source, err)
	}

	switch f.kind {
	case kindInterface:
		out.iface, err = contract.Parse(data)
	case kindIntegration:
		out.integration, err = ParseIntegration(data)
	case kindBot:
		out.bot, err = ParseBot(data, baseName(f.path))
	}
	if err != nil {
		return parsed{}, fmt.Errorf("%s %s: %w", f.kind, source, err)
	}
	return out, nil
}
