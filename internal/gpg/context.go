package gpg

import (
	"io"

	"github.com/fpasys/fpagpgen/internal/cache"
	"github.com/fpasys/fpagpgen/internal/gpgback"
	"github.com/fpasys/fpagpgen/pkg/toposort"
)

// PresentationState is the current drawing presentation (colour, line
// width, font, etc.) a `@wd`/`@dt`/`@xO` (and their PS/SVG equivalents)
// style directive mutates. Concrete fields are intentionally left to the
// back-end layer (internal/gpgback); this package only needs to push/pop a
// stack of opaque snapshots.
type PresentationState = map[string]string

// Anchor is the current map anchor/origin a directive's coordinates are
// relative to.
type Anchor struct {
	X, Y float64
}

// Context threads every piece of state an `@` directive can read or
// mutate explicitly, replacing the original's process-wide globals
// (`CurPres`, `CurArea`, `CurCurve`, `GuidFld`, `Groups`, `Loops`, `FP_Out`,
// `HeaderBuf`, `NotInitialized`), per spec.md §9's redesign note: "A
// reimplementation should carry an explicit Context{presentation_stack,
// loop_stack, group_table, current_output, map_proj, anchor,
// active_feature} threaded through every operation. Each @ directive
// becomes a function taking &mut Context."
type Context struct {
	PresentationStack []PresentationState
	Loops              LoopStack
	Groups             *GroupTable
	CurrentOutput      io.WriteCloser
	MapProj            string
	MapAnchor          Anchor
	ActiveFeature      any

	// Backend is the graphics back end drawing directives render through,
	// bound at startup from the program type per spec.md §4.9's redesign
	// note.
	Backend gpgback.GraphicsBackend

	// ProgramType is the program identity (psmet/svgmet/cormet/texmet)
	// @version classifies its argument against, per spec.md §6. Left empty,
	// @version skips age classification entirely.
	ProgramType ProgramType

	// CurrentDir/CurrentFile track @include's "saving/restoring current
	// directory and filename" requirement (spec.md §4.8).
	CurrentDir  string
	CurrentFile string

	Values   map[string]string // codeword value map (home, psout, year, ...)
	Warnings []error

	// Lookups holds every table built by @loop_location_look_up, keyed by
	// name.
	Lookups map[string]*LookupTable

	// ResourceCache, when set, lets @include reuse a previously read and
	// parsed file's bytes instead of re-reading it from disk on every
	// occurrence — most valuable for a symbol library or lookup table
	// @include'd once per iteration of a @loop_begin/@loop_end block. Nil
	// disables caching (the default), in which case @include always reads
	// straight from disk.
	ResourceCache *cache.ResourceCache

	// includeGraph records one edge per @include encountered so far (the
	// including file -> the included file), letting the engine reject a
	// circular @include chain with a clear error instead of recursing until
	// the stack overflows. Built lazily on first @include.
	includeGraph *toposort.Graph
}

// IncludeGraph returns the Context's @include dependency graph, building it
// on first use.
func (c *Context) IncludeGraph() *toposort.Graph {
	if c.includeGraph == nil {
		c.includeGraph = toposort.NewGraph()
	}

	return c.includeGraph
}

// NewContext builds a Context with its group table initialized.
func NewContext(values map[string]string) *Context {
	return &Context{Groups: NewGroupTable(), Values: values}
}

// PushPresentation saves a copy of the current presentation state.
func (c *Context) PushPresentation(p PresentationState) {
	c.PresentationStack = append(c.PresentationStack, p)
}

// PopPresentation restores the previous presentation state, returning it.
func (c *Context) PopPresentation() PresentationState {
	n := len(c.PresentationStack)
	if n == 0 {
		return nil
	}

	top := c.PresentationStack[n-1]
	c.PresentationStack = c.PresentationStack[:n-1]

	return top
}

// CurrentPresentation returns the active presentation without popping it.
func (c *Context) CurrentPresentation() PresentationState {
	n := len(c.PresentationStack)
	if n == 0 {
		return nil
	}

	return c.PresentationStack[n-1]
}

// Warn records a non-fatal condition for the caller to surface later,
// mirroring gpgerr.Collector's role but scoped to one Context's lifetime.
func (c *Context) Warn(err error) {
	c.Warnings = append(c.Warnings, err)
}
