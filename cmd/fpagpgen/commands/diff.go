package commands

import (
	"bytes"
	"fmt"

	"github.com/fatih/color"
	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/spf13/cobra"

	"github.com/fpasys/fpagpgen/internal/gpg"
)

// NewDiffCommand builds the `fpagpgen diff` command: render two fpdf
// sources (or compare two already-rendered output files) and report their
// line-by-line differences, for regression-testing a back end against a
// golden file.
func NewDiffCommand() *cobra.Command {
	var backend string

	var rendered bool

	cmd := &cobra.Command{
		Use:   "diff <golden> <candidate>",
		Short: "Compare two rendered fpdf outputs line-by-line",
		Long: `Diff compares a golden rendered output against a candidate, reporting
added/removed/unchanged lines. By default both arguments are fpdf
directive sources and are rendered against --backend first; pass
--rendered to compare two already-rendered files directly (e.g. two .ps
or .svg files) without running them through the engine again.

Exit status is 1 when a difference is found, 0 when the two are
identical.`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(_ *cobra.Command, args []string) error {
			return runDiff(args[0], args[1], backend, rendered)
		},
	}

	cmd.Flags().StringVarP(&backend, "backend", "b", "ps", "back end to render through: ps, svg, cmf, or tex")
	cmd.Flags().BoolVar(&rendered, "rendered", false, "treat both arguments as already-rendered output, skip the render step")

	return cmd
}

func runDiff(goldenPath, candidatePath, backend string, rendered bool) error {
	goldenText, err := renderOrReadForDiff(goldenPath, backend, rendered)
	if err != nil {
		return fmt.Errorf("golden %s: %w", goldenPath, err)
	}

	candidateText, err := renderOrReadForDiff(candidatePath, backend, rendered)
	if err != nil {
		return fmt.Errorf("candidate %s: %w", candidatePath, err)
	}

	if goldenText == candidateText {
		fmt.Printf("%s and %s are identical\n", goldenPath, candidatePath)

		return nil
	}

	printLineDiff(goldenText, candidateText)

	return ErrDiffFound
}

// ErrDiffFound signals diff command exit status 1 without being reported
// as a fatal error (the two files legitimately differing isn't a fault);
// main checks for it with errors.Is to suppress the generic "Error: ..."
// line since printLineDiff already explained the difference.
var ErrDiffFound = errDiffFoundType{}

type errDiffFoundType struct{}

func (errDiffFoundType) Error() string { return "differences found" }

// renderOrReadForDiff renders path through backend, or reads it verbatim
// when rendered is true.
func renderOrReadForDiff(path, backend string, rendered bool) (string, error) {
	if rendered {
		return readSource(path)
	}

	source, err := readSource(path)
	if err != nil {
		return "", err
	}

	width, height := ResolvePageSize(0, 0)

	var buf bytes.Buffer

	be, tex, kind, err := NewBackendFor(backend, &buf, width, height)
	if err != nil {
		return "", err
	}

	ctx := gpg.NewContext(nil)
	ctx.Backend = be

	if progType, ok := gpg.ProgramTypeForBackend(backend); ok {
		ctx.ProgramType = progType
	}

	registry := gpg.NewRegistry()
	gpg.RegisterControlDirectives(registry)
	gpg.RegisterDrawDirectives(registry)

	engine := gpg.NewEngine(registry, kind)

	if runErr := engine.Run(ctx, source); runErr != nil {
		return "", fmt.Errorf("render: %w", runErr)
	}

	if tex != nil {
		return tex.Dump(), nil
	}

	return buf.String(), nil
}

// printLineDiff runs go-diff's line-mode algorithm (texts are first
// collapsed to one rune per line via DiffLinesToChars, diffed, then
// expanded back) and prints the result with +/- markers colorized per
// line, the conventional unified-diff rendering for a line-granularity
// comparison.
func printLineDiff(golden, candidate string) {
	dmp := diffmatchpatch.New()

	a, b, lineArray := dmp.DiffLinesToChars(golden, candidate)
	diffs := dmp.DiffMain(a, b, false)
	diffs = dmp.DiffCharsToLines(diffs, lineArray)

	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			color.New(color.FgRed).Print(prefixLines("-", d.Text))
		case diffmatchpatch.DiffInsert:
			color.New(color.FgGreen).Print(prefixLines("+", d.Text))
		case diffmatchpatch.DiffEqual:
			fmt.Print(prefixLines(" ", d.Text))
		}
	}
}

func prefixLines(marker, text string) string {
	var out string

	start := 0

	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			out += marker + " " + text[start:i] + "\n"
			start = i + 1
		}
	}

	if start < len(text) {
		out += marker + " " + text[start:] + "\n"
	}

	return out
}
