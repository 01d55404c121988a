package service

import (
	"fmt"

	"go.uber.org/zap"
)

// Fn is a registered capability. Args and result are untyped: the registry
// decouples systems from cross-cutting helpers (unit-type lookup, enum
// tables, path clearing) without static imports.
type Fn func(args ...any) (any, error)

// Registry is a name→capability table. Calling a name that was never
// registered is a programmer error and fails loudly — there is no fallback.
type Registry struct {
	fns map[string]Fn
	log *zap.Logger
}

func NewRegistry(log *zap.Logger) *Registry {
	if log == nil {
		log = zap.NewNop()
	}
	return &Registry{
		fns: make(map[string]Fn, 16),
		log: log,
	}
}

// Register binds a capability. Re-registering a name replaces it; boot code
// owns that ordering.
func (r *Registry) Register(name string, fn Fn) {
	if fn == nil {
		panic(fmt.Sprintf("service: nil fn for %q", name))
	}
	if _, exists := r.fns[name]; exists {
		r.log.Warn("service re-registered", zap.String("name", name))
	}
	r.fns[name] = fn
}

// Call invokes a registered capability. An unregistered name returns an
// error that callers surface at the per-system update boundary.
func (r *Registry) Call(name string, args ...any) (any, error) {
	fn, ok := r.fns[name]
	if !ok {
		return nil, fmt.Errorf("service %q not registered", name)
	}
	return fn(args...)
}

// Has reports whether a capability is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.fns[name]
	return ok
}
