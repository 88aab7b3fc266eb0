package output

import (
	"fmt"
	"slices"
	"sync"

	"github.com/arloliu/geoarena/errs"
	"github.com/arloliu/geoarena/format"
)

// Constructor creates an encoder from a resolved configuration.
type Constructor func(cfg Config) (Encoder, error)

// Registry maps file formats to encoder constructors.
//
// Registration happens before first use; the first Create freezes the
// registry, after which Register fails. All methods are safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	ctors  map[format.FileFormat]Constructor
	frozen bool
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{ctors: make(map[format.FileFormat]Constructor)}
}

// Register adds the constructor for f.
//
// Returns:
//   - error: ErrUnsupportedFormat for FormatUnknown or a nil constructor,
//     ErrFormatRegistered on duplicates, ErrRegistryFrozen after Freeze
func (r *Registry) Register(f format.FileFormat, ctor Constructor) error {
	if f == format.FormatUnknown || ctor == nil {
		return fmt.Errorf("%w: cannot register %s", errs.ErrUnsupportedFormat, f)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen {
		return fmt.Errorf("%w: %s", errs.ErrRegistryFrozen, f)
	}

	if _, ok := r.ctors[f]; ok {
		return fmt.Errorf("%w: %s", errs.ErrFormatRegistered, f)
	}
	r.ctors[f] = ctor

	return nil
}

// Freeze makes the registry immutable.
func (r *Registry) Freeze() {
	r.mu.Lock()
	r.frozen = true
	r.mu.Unlock()
}

// Frozen reports whether the registry is frozen.
func (r *Registry) Frozen() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.frozen
}

// Formats returns the registered formats in ascending order.
func (r *Registry) Formats() []format.FileFormat {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]format.FileFormat, 0, len(r.ctors))
	for f := range r.ctors {
		out = append(out, f)
	}
	slices.Sort(out)

	return out
}

// Create builds an encoder for f. The first call freezes the registry.
//
// Returns:
//   - error: ErrUnsupportedFormat for unregistered formats, option or constructor errors
func (r *Registry) Create(f format.FileFormat, opts ...Option) (Encoder, error) {
	r.mu.Lock()
	r.frozen = true
	ctor, ok := r.ctors[f]
	r.mu.Unlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", errs.ErrUnsupportedFormat, f)
	}

	cfg, err := NewConfig(opts...)
	if err != nil {
		return nil, err
	}

	return ctor(cfg)
}

// Default is the process-wide registry holding every shipped format.
var Default = newDefaultRegistry()

func newDefaultRegistry() *Registry {
	r := NewRegistry()
	builtins := []struct {
		f    format.FileFormat
		ctor Constructor
	}{
		{format.FormatBlackhole, NewBlackhole},
		{format.FormatOPL, NewOPL},
		{format.FormatWKT, NewWKT},
		{format.FormatGeoJSON, NewGeoJSON},
		{format.FormatWKB, NewWKB},
		{format.FormatXML, NewXML},
		{format.FormatPBF, NewPBF},
		{format.FormatNative, NewNative},
	}
	for _, b := range builtins {
		if err := r.Register(b.f, b.ctor); err != nil {
			panic(err)
		}
	}

	return r
}

// Register adds a constructor to the Default registry.
func Register(f format.FileFormat, ctor Constructor) error {
	return Default.Register(f, ctor)
}

// Create builds an encoder from the Default registry.
func Create(f format.FileFormat, opts ...Option) (Encoder, error) {
	return Default.Create(f, opts...)
}
