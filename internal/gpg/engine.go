package gpg

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fpasys/fpagpgen/internal/cache"
	"github.com/fpasys/fpagpgen/pkg/textutil"
)

// Engine drives one fpdf source through tokenize -> parse -> dispatch,
// honoring @loop_begin/@loop_end rewinds and @include's recursive
// processing, per spec.md §4.8. LoopFrame.FilePos is repurposed here as an
// index into the parsed Directive slice rather than a raw file byte
// offset, since Run tokenizes a whole source into memory up front instead
// of streaming a file handle the way the original does.
type Engine struct {
	Registry *Registry
	Backend  BackendKind
}

// NewEngine builds an Engine bound to a directive registry and a back end.
func NewEngine(r *Registry, backend BackendKind) *Engine {
	return &Engine{Registry: r, Backend: backend}
}

// Run tokenizes src, parses its directives, and dispatches each in turn
// against ctx. @loop_begin/@loop_end are intercepted here rather than run
// purely through the registry, since only Run's directive index can
// satisfy a rewind; @include recurses into runSource for the included
// file's contents, saving and restoring ctx.CurrentDir/CurrentFile around
// it.
//
// Run is the top-level entry point: when ctx.ProgramType is bound (the
// CLI/MCP entry points always bind it), src's first directive must be
// @version per spec.md §4.7, and failure of that check is fatal. An
// @include'd fragment is not itself required to open with @version — only
// the file passed to Run directly is.
func (e *Engine) Run(ctx *Context, src string) error {
	return e.runSource(ctx, src, true)
}

func (e *Engine) runSource(ctx *Context, src string, topLevel bool) error {
	groupLookup := func(name string) (string, bool) {
		if ctx.Groups == nil {
			return "", false
		}

		g, ok := ctx.Groups.Lookup(name)
		if !ok {
			return "", false
		}

		return g.Expansion(), true
	}

	directives, err := ParseDirectives(Tokenize(src, groupLookup))
	if err != nil {
		return err
	}

	if topLevel && ctx.ProgramType != "" {
		if err := requireVersionFirst(directives); err != nil {
			return err
		}
	}

	return e.run(ctx, directives)
}

func (e *Engine) run(ctx *Context, directives []Directive) error {
	i := 0
	for i < len(directives) {
		d := directives[i]

		switch d.Name {
		case "loop_begin":
			if err := e.Registry.Dispatch(ctx, d, e.Backend); err != nil {
				return err
			}

			if top := ctx.Loops.Top(); top != nil {
				top.FilePos = int64(i + 1)
			}

			i++
		case "loop_end":
			action, pos := ctx.Loops.Advance()
			if action == LoopRewind {
				i = int(pos)

				continue
			}

			i++
		case "include":
			if err := e.handleInclude(ctx, d); err != nil {
				return err
			}

			i++
		default:
			if err := e.Registry.Dispatch(ctx, expandKeywordDirective(ctx, d), e.Backend); err != nil {
				return err
			}

			i++
		}
	}

	return nil
}

// expandKeywordDirective resolves every `<keyword:name>` reference in d's
// body against the active loop frame before dispatch, per spec.md §8
// scenario S6. Directives with no such reference are returned unchanged
// without allocating a new body.
func expandKeywordDirective(ctx *Context, d Directive) Directive {
	changed := false

	expandedBody := make([]KV, len(d.Body))

	for i, kv := range d.Body {
		expandedValue, errs := ExpandKeywordCodewords(kv.Value, ctx)
		for _, e := range errs {
			ctx.Warn(e)
		}

		expandedBody[i] = KV{Key: kv.Key, Value: expandedValue}

		if expandedValue != kv.Value {
			changed = true
		}
	}

	if !changed {
		return d
	}

	return Directive{Name: d.Name, Body: expandedBody}
}

// handleInclude implements `@include{path}`: resolve path relative to
// ctx.CurrentDir when it isn't absolute, read and recursively run it, then
// restore the including file's CurrentDir/CurrentFile, per spec.md §4.8
// "@include recursively processes another fpdf file, saving/restoring the
// current directory and filename."
func (e *Engine) handleInclude(ctx *Context, d Directive) error {
	path, ok := d.Get("path")
	if !ok {
		bare := d.Bare()
		if len(bare) == 0 {
			return fmt.Errorf("gpg: @include requires a path")
		}

		path = bare[0]
	}

	expanded, errs := ExpandCodewords(path, ctx.Values, ClassFile)
	for _, e2 := range errs {
		ctx.Warn(e2)
	}

	full := expanded
	if !filepath.IsAbs(full) && ctx.CurrentDir != "" {
		full = filepath.Join(ctx.CurrentDir, full)
	}

	graph := ctx.IncludeGraph()
	graph.AddEdge(includeGraphNode(ctx), full)

	if cycle := graph.FindCycle(full); len(cycle) > 0 {
		return fmt.Errorf("gpg: @include cycle detected: %s", strings.Join(cycle, " -> "))
	}

	data, err := e.readInclude(ctx, full)
	if err != nil {
		return fmt.Errorf("gpg: @include %s: %w", full, err)
	}

	savedDir, savedFile := ctx.CurrentDir, ctx.CurrentFile
	ctx.CurrentDir, ctx.CurrentFile = filepath.Dir(full), filepath.Base(full)

	err = e.runSource(ctx, string(data), false)

	ctx.CurrentDir, ctx.CurrentFile = savedDir, savedFile

	return err
}

// includeGraphNode names ctx's currently running file as a node for the
// include dependency graph, using a sentinel for the top-level source
// passed to Run directly (which has no CurrentFile of its own).
func includeGraphNode(ctx *Context) string {
	if ctx.CurrentFile == "" {
		return "<root>"
	}

	return filepath.Join(ctx.CurrentDir, ctx.CurrentFile)
}

// readInclude reads full's contents, consulting and populating
// ctx.ResourceCache when one is attached so a file @include'd repeatedly
// (typically inside a loop) is only read and copied out of the cache once.
func (e *Engine) readInclude(ctx *Context, full string) ([]byte, error) {
	if ctx.ResourceCache != nil {
		if res := ctx.ResourceCache.Get(full); res != nil {
			return res.Data, nil
		}
	}

	data, err := os.ReadFile(full) //nolint:gosec // path assembled from configured directories and operator-authored fpdf directives
	if err != nil {
		return nil, err
	}

	if textutil.IsBinary(data) {
		return nil, fmt.Errorf("%s looks like a binary file, not an fpdf directive source", full)
	}

	if ctx.ResourceCache != nil {
		ctx.ResourceCache.Put(full, &cache.Resource{Path: full, Data: data})
	}

	return data, nil
}
</content>
