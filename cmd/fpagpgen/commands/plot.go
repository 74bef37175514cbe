package commands

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/spf13/cobra"

	"github.com/fpasys/fpagpgen/internal/gpgerr"
)

// NewPlotCommand builds the `fpagpgen plot` command: render an HTML debug
// view of a keyframe interpolation, one line series per boundary point
// tracking its Y coordinate across tween time. This is the generic-Go
// analogue of a chart-building helper that hands a *charts.Line straight to
// an HTML writer rather than going through a shared report-page
// abstraction, since a one-off debug plot doesn't need one.
func NewPlotCommand() *cobra.Command {
	var input, output string

	cmd := &cobra.Command{
		Use:   "plot",
		Short: "Render an HTML trajectory plot of an interpolation request",
		Long: `Plot reads the same JSON request document as "fpagpgen interpolate"
(key_times, keyframes, tween_times), runs the interpolation, and writes an
HTML page charting each boundary point's Y coordinate across tween time -
useful for spotting overshoot or a wrong keyframe correspondence by eye.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runPlot(input, output)
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "interpolate request JSON path (default stdin)")
	cmd.Flags().StringVarP(&output, "output", "o", "plot.html", "HTML output path")

	return cmd
}

func runPlot(input, output string) error {
	reporter := gpgerr.NewReporter(cmdStderr(), nil)

	raw, err := readSource(input)
	if err != nil {
		fatal := gpgerr.NewFatal(gpgerr.KindIO, gpgerr.Context{File: input}, err)
		reporter.ReportFatal(fatal, nil)

		return fatal
	}

	var req interpolateRequest

	if unmarshalErr := json.Unmarshal([]byte(raw), &req); unmarshalErr != nil {
		fatal := gpgerr.NewFatal(gpgerr.KindParse, gpgerr.Context{File: input}, unmarshalErr)
		reporter.ReportFatal(fatal, nil)

		return fatal
	}

	if validateErr := validateInterpolateRequest(req); validateErr != nil {
		fatal := gpgerr.NewFatal(gpgerr.KindSemantic, gpgerr.Context{File: input}, validateErr)
		reporter.ReportFatal(fatal, nil)

		return fatal
	}

	resp, err := runInterpolation(req, nil)
	if err != nil {
		fatal := gpgerr.NewFatal(gpgerr.KindInterpolation, gpgerr.Context{File: input}, err)
		reporter.ReportFatal(fatal, nil)

		return fatal
	}

	out, err := openOutput(output)
	if err != nil {
		fatal := gpgerr.NewFatal(gpgerr.KindIO, gpgerr.Context{File: output}, err)
		reporter.ReportFatal(fatal, nil)

		return fatal
	}
	defer out.Close()

	line := buildTrajectoryChart(resp)

	if renderErr := line.Render(out); renderErr != nil {
		fatal := gpgerr.NewFatal(gpgerr.KindIO, gpgerr.Context{File: output}, renderErr)
		reporter.ReportFatal(fatal, nil)

		return fatal
	}

	fmt.Printf("%s: wrote %d tween frames\n", output, len(resp.Frames))

	return nil
}

const trajectoryLineWidth = 2

// buildTrajectoryChart builds one line series per boundary point index,
// tracking that point's Y coordinate across tween time. Frames with fewer
// points than the first frame are padded with "-" (echarts' null-value
// marker) so a chain whose point count changes across tweens doesn't
// misalign series lengths.
func buildTrajectoryChart(resp interpolateResponse) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "100%", Height: "600px"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithTitleOpts(opts.Title{Title: "Boundary point trajectories"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "tween time"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Y"}),
	)

	labels := make([]string, len(resp.Frames))
	for i, f := range resp.Frames {
		labels[i] = strconv.FormatFloat(f.Time, 'f', -1, 64)
	}

	line.SetXAxis(labels)

	pointCount := 0
	if len(resp.Frames) > 0 {
		pointCount = len(resp.Frames[0].Polygon)
	}

	for pointIdx := 0; pointIdx < pointCount; pointIdx++ {
		series := make([]opts.LineData, len(resp.Frames))

		for frameIdx, f := range resp.Frames {
			if pointIdx < len(f.Polygon) {
				series[frameIdx] = opts.LineData{Value: f.Polygon[pointIdx][1]}
			} else {
				series[frameIdx] = opts.LineData{Value: "-"}
			}
		}

		line.AddSeries(
			fmt.Sprintf("point %d", pointIdx),
			series,
			charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true)}),
			charts.WithLineStyleOpts(opts.LineStyle{Width: trajectoryLineWidth}),
		)
	}

	return line
}
