package commands

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/fpasys/fpagpgen/internal/config"
	"github.com/fpasys/fpagpgen/internal/gpg"
	"github.com/fpasys/fpagpgen/internal/gpgerr"
)

// ErrUnknownValidateKind is returned when --kind names neither setup nor
// source and the target's extension doesn't disambiguate it either.
var ErrUnknownValidateKind = errors.New("kind must be one of setup, source (or an .fpdf/.yaml/.yml path to infer it)")

// NewValidateCommand builds the `fpagpgen validate` command: check a setup
// file against the embedded JSON Schema, or tokenize+parse an fpdf source
// and report its directive histogram and any parse errors, without
// executing it against a back end.
func NewValidateCommand() *cobra.Command {
	var kind string

	cmd := &cobra.Command{
		Use:   "validate <setup.yaml|source.fpdf>",
		Short: "Validate a setup file or fpdf source without rendering it",
		Long: `Validate checks a document's structure without executing it:

  fpagpgen validate setup.yaml    - schema-check a setup/group-table file
  fpagpgen validate plot.fpdf     - tokenize+parse an fpdf source, report
                                    its directive histogram and any syntax
                                    errors

--kind overrides extension-based detection when the path doesn't end in
.yaml/.yml or .fpdf.`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runValidate(args[0], kind)
		},
	}

	cmd.Flags().StringVar(&kind, "kind", "", "document kind: setup or source (default: inferred from extension)")

	return cmd
}

func runValidate(path, kind string) error {
	reporter := gpgerr.NewReporter(cmdStderr(), nil)

	resolvedKind, err := resolveValidateKind(path, kind)
	if err != nil {
		fatal := gpgerr.NewFatal(gpgerr.KindUsage, gpgerr.Context{File: path}, err)
		reporter.ReportFatal(fatal, nil)

		return fatal
	}

	if resolvedKind == "setup" {
		return validateSetupFile(path, reporter)
	}

	return validateSourceFile(path, reporter)
}

func resolveValidateKind(path, kind string) (string, error) {
	switch kind {
	case "setup", "source":
		return kind, nil
	case "":
		switch strings.ToLower(filepath.Ext(path)) {
		case ".yaml", ".yml":
			return "setup", nil
		case ".fpdf":
			return "source", nil
		default:
			return "", ErrUnknownValidateKind
		}
	default:
		return "", ErrUnknownValidateKind
	}
}

func validateSetupFile(path string, reporter *gpgerr.Reporter) error {
	_, err := config.LoadSetupFile(path)
	if err != nil {
		fatal := gpgerr.NewFatal(gpgerr.KindConfiguration, gpgerr.Context{File: path}, err)
		reporter.ReportFatal(fatal, nil)

		return fatal
	}

	fmt.Printf("%s: setup file is valid\n", path)

	return nil
}

func validateSourceFile(path string, reporter *gpgerr.Reporter) error {
	raw, err := readSource(path)
	if err != nil {
		fatal := gpgerr.NewFatal(gpgerr.KindIO, gpgerr.Context{File: path}, err)
		reporter.ReportFatal(fatal, nil)

		return fatal
	}

	tokens := gpg.Tokenize(raw, nil)

	directives, parseErr := gpg.ParseDirectives(tokens)
	if parseErr != nil {
		fatal := gpgerr.NewFatal(gpgerr.KindParse, gpgerr.Context{File: path}, parseErr)
		reporter.ReportFatal(fatal, nil)

		return fatal
	}

	printDirectiveHistogram(path, directives)

	return nil
}

func printDirectiveHistogram(path string, directives []gpg.Directive) {
	counts := make(map[string]int, len(directives))
	order := make([]string, 0, len(directives))

	for _, d := range directives {
		if _, seen := counts[d.Name]; !seen {
			order = append(order, d.Name)
		}

		counts[d.Name]++
	}

	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.AppendHeader(table.Row{"directive", "count"})

	for _, name := range order {
		tbl.AppendRow(table.Row{name, counts[name]})
	}

	tbl.AppendFooter(table.Row{"total", len(directives)})

	fmt.Printf("%s: %d directives parsed, no syntax errors\n", path, len(directives))
	fmt.Println(tbl.Render())
}
