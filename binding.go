package algofftw

import (
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/cwbudde/algo-fftw/engine"
)

// Binding lazily loads an engine's symbol table.
//
// The first call to Table runs the loader; concurrent first callers share
// that single load. A successful table is cached and later calls return it
// without locking. A failed load is never cached: the next call tries again.
type Binding struct {
	load   engine.Loader
	table  atomic.Pointer[engine.Table]
	group  singleflight.Group
	logger *zap.Logger
}

// BindingOption configures a Binding.
type BindingOption func(*Binding)

// WithBindingLogger sets the logger used to report engine loads.
func WithBindingLogger(l *zap.Logger) BindingOption {
	return func(b *Binding) {
		if l != nil {
			b.logger = l
		}
	}
}

// NewBinding returns a binding that loads its table with load.
func NewBinding(load engine.Loader, opts ...BindingOption) *Binding {
	b := &Binding{load: load, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(b)
	}

	return b
}

// Table returns the engine's symbol table, loading it on first use.
// Load failures wrap ErrEngineUnavailable.
func (b *Binding) Table() (*engine.Table, error) {
	if t := b.table.Load(); t != nil {
		return t, nil
	}

	v, err, _ := b.group.Do("load", func() (any, error) {
		if t := b.table.Load(); t != nil {
			return t, nil
		}

		return b.loadTable()
	})
	if err != nil {
		return nil, err
	}

	return v.(*engine.Table), nil
}

// Loaded reports whether a table has been loaded successfully.
func (b *Binding) Loaded() bool {
	return b.table.Load() != nil
}

func (b *Binding) loadTable() (*engine.Table, error) {
	if b.load == nil {
		return nil, fmt.Errorf("%w: no loader configured", ErrEngineUnavailable)
	}

	t, err := b.load()
	if err != nil {
		b.logger.Warn("engine load failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrEngineUnavailable, err)
	}

	if err := t.Validate(); err != nil {
		b.logger.Warn("engine symbol table rejected", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrEngineUnavailable, err)
	}

	b.table.Store(t)
	b.logger.Debug("engine loaded",
		zap.String("engine", t.Info.Name),
		zap.String("version", t.Info.Version),
		zap.String("description", t.Info.Description),
	)

	return t, nil
}

var (
	defaultMu      sync.RWMutex
	defaultBinding *Binding
)

// DefaultBinding returns the binding used by plans created without
// WithBinding. Unless replaced with SetDefaultBinding it loads the engine
// selected at build time: the FFTW engine when built with the fftw tag,
// the pure Go engine otherwise.
func DefaultBinding() *Binding {
	defaultMu.RLock()
	b := defaultBinding
	defaultMu.RUnlock()

	if b != nil {
		return b
	}

	defaultMu.Lock()
	defer defaultMu.Unlock()

	if defaultBinding == nil {
		defaultBinding = NewBinding(defaultLoader)
	}

	return defaultBinding
}

// SetDefaultBinding replaces the default binding. Passing nil restores the
// build-time default on next use. Existing plans keep the binding they
// were created with.
func SetDefaultBinding(b *Binding) {
	defaultMu.Lock()
	defaultBinding = b
	defaultMu.Unlock()
}
