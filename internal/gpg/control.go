package gpg

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
)

// ErrNoOpenOutput is returned when a directive that writes to the current
// output runs with none open.
var ErrNoOpenOutput = fmt.Errorf("gpg: no output file is currently open")

// RegisterControlDirectives adds the central control directives spec.md
// §4.7-4.8 names (version, file_name, file_close, process, group,
// loop_begin, loop_end, loop_location_look_up) to r.
func RegisterControlDirectives(r *Registry) {
	r.MustRegister(Descriptor{Name: "version", Handler: handleVersion})
	r.MustRegister(Descriptor{Name: "file_name", Handler: handleFileName})
	r.MustRegister(Descriptor{Name: "file_close", Handler: handleFileClose})
	r.MustRegister(Descriptor{Name: "process", Handler: handleProcess})
	r.MustRegister(Descriptor{Name: "group", Handler: handleGroup})
	r.MustRegister(Descriptor{Name: "loop_begin", Handler: handleLoopBegin})
	r.MustRegister(Descriptor{Name: "loop_end", Handler: handleLoopEnd})
	r.MustRegister(Descriptor{Name: "loop_location_look_up", Handler: handleLoopLocationLookUp})
	r.MustRegister(Descriptor{Name: "value_look_up", Handler: handleValueLookUp})
	r.MustRegister(Descriptor{Name: "gpgen_insert", Handler: handleGpgenInsert})
}

// handleGpgenInsert implements `@gpgen_insert{...}`: every bare body value
// is codeword-expanded (file codewords only, per SPEC_FULL.md §C.5's
// allow-list restriction on verbatim inserts) and written straight to the
// current output, unlike every other directive which only ever emits
// through the active back end.
func handleGpgenInsert(ctx *Context, d Directive) error {
	if ctx.CurrentOutput == nil {
		return ErrNoOpenOutput
	}

	for _, raw := range d.Bare() {
		text, errs := ExpandCodewords(raw, ctx.Values, AllowFileCodewordsOnly)
		for _, e := range errs {
			ctx.Warn(e)
		}

		if _, err := io.WriteString(ctx.CurrentOutput, text); err != nil {
			return fmt.Errorf("gpg: @gpgen_insert write: %w", err)
		}
	}

	return nil
}

// handleFileName implements `@file_name{dir=…;name=…}`: expand codewords in
// dir/name, close any currently open output, and open the new one. The
// actual os.Create call lives here (an ambient I/O concern spec.md §1
// explicitly keeps in scope for the GPG core, unlike the geometry library),
// per spec.md §4.8 "opens a new output file".
func handleFileName(ctx *Context, d Directive) error {
	dir, _ := d.Get("dir")
	name, _ := d.Get("name")

	dir, dirErrs := ExpandCodewords(dir, ctx.Values, ClassFile)
	name, nameErrs := ExpandCodewords(name, ctx.Values, ClassFile|ClassProcess)

	for _, e := range append(dirErrs, nameErrs...) {
		ctx.Warn(e)
	}

	if ctx.CurrentOutput != nil {
		if err := ctx.CurrentOutput.Close(); err != nil {
			return fmt.Errorf("gpg: closing previous output: %w", err)
		}

		ctx.CurrentOutput = nil
	}

	path := filepath.Join(dir, name)

	f, err := os.Create(path) //nolint:gosec // path assembled from configured output dirs, not raw user input
	if err != nil {
		return fmt.Errorf("gpg: opening output %s: %w", path, err)
	}

	ctx.CurrentOutput = f

	return nil
}

func handleFileClose(ctx *Context, _ Directive) error {
	if ctx.CurrentOutput == nil {
		return nil
	}

	err := ctx.CurrentOutput.Close()
	ctx.CurrentOutput = nil

	if err != nil {
		return fmt.Errorf("gpg: closing output: %w", err)
	}

	return nil
}

// handleProcess implements `@process{cmd}`: flush the current output, then
// run cmd synchronously, per spec.md §5 "GPG directive processing may
// block on child processes invoked by @process (waits synchronously for
// exit)".
func handleProcess(ctx *Context, d Directive) error {
	bare := d.Bare()
	if len(bare) == 0 {
		return fmt.Errorf("gpg: @process requires a command")
	}

	if f, ok := ctx.CurrentOutput.(interface{ Sync() error }); ok {
		if err := f.Sync(); err != nil {
			return fmt.Errorf("gpg: flushing before @process: %w", err)
		}
	}

	cmd := exec.Command("/bin/sh", "-c", bare[0]) //nolint:gosec // executes an operator-authored fpdf directive, matching the original's system() call
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("gpg: @process %q: %w", bare[0], err)
	}

	return nil
}

func handleGroup(ctx *Context, d Directive) error {
	_, err := ctx.Groups.Define(d)

	return err
}

func handleLoopBegin(ctx *Context, d Directive) error {
	iterations := 1
	if raw, ok := d.Get("iterations"); ok {
		if _, err := fmt.Sscanf(raw, "%d", &iterations); err != nil {
			return fmt.Errorf("gpg: @loop_begin iterations=%q: %w", raw, err)
		}
	}

	var groupNames []string

	for _, kv := range d.Body {
		if kv.Key == "group" {
			groupNames = append(groupNames, kv.Value)
		}
	}

	ctx.Loops.Push(&LoopFrame{NumIterations: iterations, GroupNames: groupNames})

	return nil
}

// handleLoopEnd advances the loop stack; the caller (the engine's main
// dispatch loop) is responsible for actually seeking the fpdf cursor back
// to FilePos when LoopStack.Advance reports LoopRewind — this handler only
// updates loop bookkeeping and discards that result, since seeking the
// source stream isn't a Context concern.
func handleLoopEnd(ctx *Context, _ Directive) error {
	_, _ = ctx.Loops.Advance()

	return nil
}

// handleLoopLocationLookUp implements `@loop_location_look_up{...}`: the
// body carries repeated `time=`/`label=`/`interval=` entries, one triplet
// per row, in source order, per spec.md §4.8. An optional `unit=` entry
// sets the interval's input unit (converted to km by BuildLookupTable).
func handleLoopLocationLookUp(ctx *Context, d Directive) error {
	name, ok := d.Get("name")
	if !ok {
		return fmt.Errorf("gpg: @loop_location_look_up requires name")
	}

	unit, _ := d.Get("unit")

	var times []float64

	var labels []string

	var intervals []float64

	for _, kv := range d.Body {
		switch kv.Key {
		case "time":
			var t float64
			if _, err := fmt.Sscanf(kv.Value, "%g", &t); err != nil {
				return fmt.Errorf("gpg: @loop_location_look_up time=%q: %w", kv.Value, err)
			}

			times = append(times, t)
		case "label":
			labels = append(labels, kv.Value)
		case "interval":
			var v float64
			if _, err := fmt.Sscanf(kv.Value, "%g", &v); err != nil {
				return fmt.Errorf("gpg: @loop_location_look_up interval=%q: %w", kv.Value, err)
			}

			intervals = append(intervals, v)
		}
	}

	table, err := BuildLookupTable(name, LookupLocation, times, labels, intervals, unit)
	if err != nil {
		return err
	}

	if ctx.Lookups == nil {
		ctx.Lookups = make(map[string]*LookupTable)
	}

	ctx.Lookups[name] = table

	return nil
}

// handleValueLookUp implements `@value_look_up{...}`, SPEC_FULL.md §C.3's
// supplemented generic interval-based value lookup: same `name=`/`time=`/
// `label=`/`interval=` body shape as `@loop_location_look_up`, but its
// interval column is a plain valid-time offset, not a distance — no
// mile-to-km conversion applies regardless of any `unit=` entry.
func handleValueLookUp(ctx *Context, d Directive) error {
	name, ok := d.Get("name")
	if !ok {
		return fmt.Errorf("gpg: @value_look_up requires name")
	}

	var times []float64

	var labels []string

	var intervals []float64

	for _, kv := range d.Body {
		switch kv.Key {
		case "time":
			var t float64
			if _, err := fmt.Sscanf(kv.Value, "%g", &t); err != nil {
				return fmt.Errorf("gpg: @value_look_up time=%q: %w", kv.Value, err)
			}

			times = append(times, t)
		case "label":
			labels = append(labels, kv.Value)
		case "interval":
			var v float64
			if _, err := fmt.Sscanf(kv.Value, "%g", &v); err != nil {
				return fmt.Errorf("gpg: @value_look_up interval=%q: %w", kv.Value, err)
			}

			intervals = append(intervals, v)
		}
	}

	table, err := BuildLookupTable(name, LookupValue, times, labels, intervals, "km")
	if err != nil {
		return err
	}

	if ctx.Lookups == nil {
		ctx.Lookups = make(map[string]*LookupTable)
	}

	ctx.Lookups[name] = table

	return nil
}
