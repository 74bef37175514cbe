package gpgerr

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

// Reporter formats FatalError/Warning values for a CLI, colorized the way
// the teacher's uast validate command colorizes pass/fail output.
type Reporter struct {
	Out io.Writer

	fatalColor *color.Color
	warnColor  *color.Color
}

// NewReporter builds a Reporter writing to out. Pass forceColor to force
// ANSI color even when out isn't a terminal (mirrors the teacher's
// `--color`/`--no-color` flag pair); nil leaves color auto-detection to the
// fatih/color library default.
func NewReporter(out io.Writer, forceColor *bool) *Reporter {
	if forceColor != nil {
		color.NoColor = !*forceColor //nolint:reassign // intentional override of library global
	}

	return &Reporter{
		Out:        out,
		fatalColor: color.New(color.FgRed, color.Bold),
		warnColor:  color.New(color.FgYellow),
	}
}

// ReportFatal prints a fatal error's full context, per spec.md §7
// "Fatal kinds go through error_report(buf) which prints the current fpdf
// filename and the buffer of recent directive lines". recentLines supplies
// that buffer; callers that don't track it may pass nil.
func (r *Reporter) ReportFatal(err *FatalError, recentLines []string) {
	r.fatalColor.Fprintf(r.Out, "fatal[%s]: %s\n", err.Kind, err.Error())

	for _, line := range recentLines {
		fmt.Fprintf(r.Out, "  | %s\n", line)
	}
}

// ReportWarning prints a warning's context, per spec.md §7 "Non-fatal
// kinds go through warn_report(buf) which prints context and the active
// source/valid-time and continues."
func (r *Reporter) ReportWarning(w *Warning) {
	r.warnColor.Fprintf(r.Out, "warning[%s]: %s", w.Kind, w.Error())

	if w.Ctx.SourceLabel != "" || w.Ctx.ValidTime != "" {
		fmt.Fprintf(r.Out, " (source=%s, valid_time=%s)", w.Ctx.SourceLabel, w.Ctx.ValidTime)
	}

	fmt.Fprintln(r.Out)
}
