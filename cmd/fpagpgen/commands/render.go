package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fpasys/fpagpgen/internal/cache"
	"github.com/fpasys/fpagpgen/internal/config"
	"github.com/fpasys/fpagpgen/internal/gpg"
	"github.com/fpasys/fpagpgen/internal/gpgerr"
)

// NewRenderCommand builds the `fpagpgen render` command: run an fpdf
// directive source through the control+draw directive registry against a
// chosen back end, writing the rendered output to a file (or stdout).
func NewRenderCommand() *cobra.Command {
	var (
		backend    string
		input      string
		output     string
		width      float64
		height     float64
		configPath string
		noColor    bool
	)

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render an fpdf directive source through a graphics back end",
		Long: `Render reads an fpdf directive source (a setup/group/loop/draw
script per spec.md §4) and executes it against one of the four graphics
back ends: ps, svg, cmf, or tex.

Examples:
  fpagpgen render -i plot.fpdf -b ps -o plot.ps
  fpagpgen render -i plot.fpdf -b tex | less`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runRender(renderOptions{
				backend:    backend,
				input:      input,
				output:     output,
				width:      width,
				height:     height,
				configPath: configPath,
				noColor:    noColor,
			})
		},
	}

	cmd.Flags().StringVarP(&backend, "backend", "b", "ps", "target back end: ps, svg, cmf, or tex")
	cmd.Flags().StringVarP(&input, "input", "i", "", "fpdf source path (default stdin)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "rendered output path (default stdout)")
	cmd.Flags().Float64Var(&width, "width", 0, "page width in native units (default 612)")
	cmd.Flags().Float64Var(&height, "height", 0, "page height in native units (default 792)")
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "setup config file path (default search path)")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "disable colorized warning/fatal output")

	return cmd
}

type renderOptions struct {
	backend    string
	input      string
	output     string
	width      float64
	height     float64
	configPath string
	noColor    bool
}

func runRender(opts renderOptions) error {
	reportColor := !opts.noColor
	reporter := gpgerr.NewReporter(cmdStderr(), &reportColor)

	cfg, err := config.LoadConfig(opts.configPath)
	if err != nil {
		fatal := gpgerr.NewFatal(gpgerr.KindConfiguration, gpgerr.Context{File: opts.configPath}, err)
		reporter.ReportFatal(fatal, nil)

		return fatal
	}

	source, err := readSource(opts.input)
	if err != nil {
		fatal := gpgerr.NewFatal(gpgerr.KindIO, gpgerr.Context{File: opts.input}, err)
		reporter.ReportFatal(fatal, nil)

		return fatal
	}

	width, height := ResolvePageSize(opts.width, opts.height)

	out, err := openOutput(opts.output)
	if err != nil {
		fatal := gpgerr.NewFatal(gpgerr.KindIO, gpgerr.Context{File: opts.output}, err)
		reporter.ReportFatal(fatal, nil)

		return fatal
	}
	defer out.Close()

	backend, tex, kind, err := NewBackendFor(opts.backend, out, width, height)
	if err != nil {
		fatal := gpgerr.NewFatal(gpgerr.KindUsage, gpgerr.Context{}, err)
		reporter.ReportFatal(fatal, nil)

		return fatal
	}

	ctx := gpg.NewContext(cfg.Setup.CodewordValues())
	ctx.Backend = backend
	ctx.CurrentFile = opts.input

	if progType, progErr := ProgramTypeFor(opts.backend); progErr == nil {
		ctx.ProgramType = progType
	}

	if cfg.Cache.Enabled {
		ctx.ResourceCache = cache.NewResourceCache(cfg.Cache.ResourceCacheBytes())

		if cfg.Cache.Compress && cfg.Cache.Directory != "" {
			if spill, spillErr := cache.NewSpillDir(cfg.Cache.Directory); spillErr == nil {
				ctx.ResourceCache.SetSpillDir(spill)
			}
		}
	}

	registry := gpg.NewRegistry()
	gpg.RegisterControlDirectives(registry)
	gpg.RegisterDrawDirectives(registry)

	engine := gpg.NewEngine(registry, kind)

	runErr := engine.Run(ctx, source)
	if runErr != nil {
		fatal := gpgerr.NewFatal(gpgerr.KindParse, gpgerr.Context{File: opts.input}, runErr)
		reporter.ReportFatal(fatal, nil)

		return fatal
	}

	for _, w := range ctx.Warnings {
		var warning *gpgerr.Warning
		if asWarning(w, &warning) {
			reporter.ReportWarning(warning)
		} else {
			fmt.Fprintln(cmdStderr(), "warning:", w)
		}
	}

	if tex != nil {
		_, writeErr := out.Write([]byte(tex.Dump()))
		if writeErr != nil {
			fatal := gpgerr.NewFatal(gpgerr.KindIO, gpgerr.Context{File: opts.output}, writeErr)
			reporter.ReportFatal(fatal, nil)

			return fatal
		}
	}

	return nil
}
