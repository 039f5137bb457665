package integration

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/artpar/botdef/core/contract"
)

// Extend instantiates iface against the definition's own entities and returns
// a new definition with the dereferenced members merged in and the statement
// recorded under its binding key. The receiver is not modified.
//
// Instantiating the same interface with the same entities twice is rejected;
// binding it to different entities is allowed and yields a second key.
func (d Definition) Extend(iface contract.Interface, fn BindingFunc) (Definition, error) {
	st, key, err := Bind(iface, NewEntityStore(d), fn)
	if err != nil {
		return Definition{}, err
	}
	if _, exists := d.Interfaces[key]; exists {
		return Definition{}, &ConfigurationError{
			Interface: iface.Name,
			Message:   fmt.Sprintf("binding %q is already present on integration %s", key, d.Ref()),
		}
	}

	contrib, err := Dereference(iface, st)
	if err != nil {
		return Definition{}, err
	}

	out := d.Clone()
	if out.Actions, err = MergeActions(out.Actions, contrib.Actions); err != nil {
		return Definition{}, fmt.Errorf("extending %s with %s: %w", d.Ref(), iface.Ref(), err)
	}
	if out.Events, err = MergeEvents(out.Events, contrib.Events); err != nil {
		return Definition{}, fmt.Errorf("extending %s with %s: %w", d.Ref(), iface.Ref(), err)
	}
	if out.Channels, err = MergeChannels(out.Channels, contrib.Channels); err != nil {
		return Definition{}, fmt.Errorf("extending %s with %s: %w", d.Ref(), iface.Ref(), err)
	}

	if out.Interfaces == nil {
		out.Interfaces = make(map[string]Statement, 1)
	}
	out.Interfaces[key] = st
	return out, nil
}

// ExtensionObserver is notified about every extension a Builder applies.
type ExtensionObserver interface {
	ExtensionApplied(iface, key string, elapsed time.Duration)
	ExtensionFailed(iface string, err error)
}

// Builder folds an ordered sequence of extensions into one definition.
// It is safe for concurrent use; extensions are applied one at a time in
// the order the calls acquire the lock.
type Builder struct {
	mu       sync.Mutex
	def      Definition
	logger   zerolog.Logger
	observer ExtensionObserver
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithLogger sets the logger used for each extension step.
func WithLogger(logger zerolog.Logger) BuilderOption {
	return func(b *Builder) { b.logger = logger }
}

// WithObserver sets the extension observer.
func WithObserver(o ExtensionObserver) BuilderOption {
	return func(b *Builder) { b.observer = o }
}

// NewBuilder starts a builder from def.
func NewBuilder(def Definition, opts ...BuilderOption) *Builder {
	b := &Builder{
		def:    def.Clone(),
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Extend applies one extension. On error the accumulated definition is left
// as it was before the call.
func (b *Builder) Extend(iface contract.Interface, fn BindingFunc) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	start := time.Now()
	next, err := b.def.Extend(iface, fn)
	if err != nil {
		b.logger.Error().
			Err(err).
			Str("integration", b.def.Ref()).
			Str("interface", iface.Ref()).
			Msg("extension failed")
		if b.observer != nil {
			b.observer.ExtensionFailed(iface.Ref(), err)
		}
		return err
	}

	key := newKey(b.def, next)
	b.def = next
	b.logger.Debug().
		Str("integration", next.Ref()).
		Str("interface", iface.Ref()).
		Str("binding_key", key).
		Msg("interface implemented")
	if b.observer != nil {
		b.observer.ExtensionApplied(iface.Ref(), key, time.Since(start))
	}
	return nil
}

// Definition returns a copy of the accumulated definition.
func (b *Builder) Definition() Definition {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.def.Clone()
}

// Build validates and returns the accumulated definition.
func (b *Builder) Build() (Definition, error) {
	def := b.Definition()
	if err := Validate(def); err != nil {
		return Definition{}, err
	}
	return def, nil
}

// newKey returns the binding key present in next but not in prev.
func newKey(prev, next Definition) string {
	for _, k := range next.BindingKeys() {
		if _, ok := prev.Interfaces[k]; !ok {
			return k
		}
	}
	return ""
}
