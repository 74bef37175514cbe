package gpg

import (
	"errors"
	"fmt"
)

// Handler executes one directive against the shared Context.
type Handler func(ctx *Context, d Directive) error

// BackendKind names which back end a directive is restricted to, or
// BackendAny for directives every back end implements.
type BackendKind string

// Back-end restrictions a directive can carry, per spec.md §4.8 "some
// names are back-end-specific (e.g. CorMet-only @write_direct)".
const (
	BackendAny BackendKind = ""
	BackendPS  BackendKind = "ps"
	BackendSVG BackendKind = "svg"
	BackendCMF BackendKind = "cmf"
	BackendTex BackendKind = "tex"
)

// Descriptor is the registry entry for one directive name, grounded on the
// teacher's analyzer Descriptor/Registry pattern (internal/analyzers/
// analyze/registry.go) adapted from analyzer-id metadata to directive-name
// metadata.
type Descriptor struct {
	Name    string
	Backend BackendKind
	Handler Handler
}

// ErrUnknownDirective is returned by Dispatch for a name with no
// registered Descriptor, per spec.md §7 "unknown directive" (a semantic
// error).
var ErrUnknownDirective = errors.New("gpg: unknown directive")

// ErrDirectiveWrongBackend is returned when a directive is dispatched
// against a back end it doesn't support.
var ErrDirectiveWrongBackend = errors.New("gpg: directive not supported by this backend")

// ErrDuplicateDirective is returned by Register for a name already present.
var ErrDuplicateDirective = errors.New("gpg: duplicate directive registration")

// Registry is the directive dispatch table, keyed by name, per spec.md
// §4.8 "Directive dispatch is a table keyed by directive name".
type Registry struct {
	index map[string]Descriptor
}

// NewRegistry builds an empty dispatch table.
func NewRegistry() *Registry {
	return &Registry{index: make(map[string]Descriptor)}
}

// Register adds a directive descriptor.
func (r *Registry) Register(d Descriptor) error {
	if _, exists := r.index[d.Name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateDirective, d.Name)
	}

	r.index[d.Name] = d

	return nil
}

// MustRegister panics on a duplicate registration; intended for package
// init-time table construction where a collision is a programming error.
func (r *Registry) MustRegister(d Descriptor) {
	if err := r.Register(d); err != nil {
		panic(err)
	}
}

// Dispatch looks up and runs the handler for d, restricted to backend.
func (r *Registry) Dispatch(ctx *Context, d Directive, backend BackendKind) error {
	desc, ok := r.index[d.Name]
	if !ok {
		return fmt.Errorf("%w: @%s", ErrUnknownDirective, d.Name)
	}

	if desc.Backend != BackendAny && desc.Backend != backend {
		return fmt.Errorf("%w: @%s requires %s, got %s", ErrDirectiveWrongBackend, d.Name, desc.Backend, backend)
	}

	return desc.Handler(ctx, d)
}

// Descriptor returns the registered descriptor for name, if any.
func (r *Registry) Descriptor(name string) (Descriptor, bool) {
	d, ok := r.index[name]

	return d, ok
}
