package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/fpasys/fpagpgen/internal/arealink"
	"github.com/fpasys/fpagpgen/internal/checkpoint"
	"github.com/fpasys/fpagpgen/internal/config"
	"github.com/fpasys/fpagpgen/internal/geometry"
	"github.com/fpasys/fpagpgen/internal/gpgerr"
	"github.com/fpasys/fpagpgen/internal/interp"
	"github.com/fpasys/fpagpgen/internal/linkchain"
	"github.com/fpasys/fpagpgen/internal/observability"
	"github.com/fpasys/fpagpgen/internal/topology"
	"github.com/fpasys/fpagpgen/pkg/version"
)

// interpolateStageNames names the checkpointable stages of runInterpolation
// for checkpoint.Manager.Save/Validate. Every chain of a request (boundary,
// divides and holes) is built in the one area-link stage, so there is
// exactly one stage.
var interpolateStageNames = []string{"area-link"}

// ErrTooFewKeyframes indicates fewer than two keyframes were supplied.
var ErrTooFewKeyframes = errors.New("at least two keyframes are required")

// ErrKeyframeMismatch indicates key_times and keyframes have different lengths.
var ErrKeyframeMismatch = errors.New("key_times and keyframes must have the same length")

// point2D is one [x, y] coordinate pair in the interpolate command's JSON
// request/response, mirroring internal/mcp's fpagpgen_interpolate tool
// schema so the same request document works against either entrypoint.
type point2D [2]float64

// interpolateRequest is the on-disk JSON shape `fpagpgen interpolate`
// reads: a single area's keyframed boundary, plus optional dividing lines,
// holes, and label spots, per spec.md §4's area-link model narrowed to the
// single-area case a CLI JSON document can express conveniently (area 0 is
// implicit throughout).
type interpolateRequest struct {
	KeyTimes   []float64     `json:"key_times"`
	Keyframes  [][]point2D   `json:"keyframes"`
	TweenTimes []float64     `json:"tween_times"`
	Divides    []divideSpec  `json:"divides,omitempty"`
	Holes      []holeSpec    `json:"holes,omitempty"`
	Spots      []spotRequest `json:"spots,omitempty"`
}

// divideSpec is one dividing line's keyframes plus the attribute bundle
// spec.md's scenario S4 assigns either side of it (lval/rval/llab/lcal).
// KeyLines must have one entry per req.KeyTimes index; a nil entry means
// the divide is absent at that keyframe.
type divideSpec struct {
	KeyLines [][]point2D `json:"key_lines"`
	Left     attrsSpec   `json:"left"`
	Right    attrsSpec   `json:"right"`
}

// holeSpec is one hole's keyframed boundary, present/absent per keyframe the
// same way divideSpec is.
type holeSpec struct {
	KeyLines [][]point2D `json:"key_lines"`
}

// attrsSpec mirrors geometry.Attrs in the request/response JSON.
type attrsSpec struct {
	Category string `json:"category,omitempty"`
	Value    string `json:"value,omitempty"`
	Label    string `json:"label,omitempty"`
}

func (a attrsSpec) toGeometry() geometry.Attrs {
	return geometry.Attrs{Category: a.Category, Value: a.Value, Label: a.Label}
}

func fromGeometryAttrs(a geometry.Attrs) attrsSpec {
	return attrsSpec{Category: a.Category, Value: a.Value, Label: a.Label}
}

// spotRequest is one keyframe label/spot, replicated across tween frames by
// AssembleFrames per spec.md §4.6.
type spotRequest struct {
	Category string  `json:"category,omitempty"`
	Value    string  `json:"value,omitempty"`
	Label    string  `json:"label,omitempty"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
}

func (s spotRequest) toAttrs() geometry.Attrs {
	return geometry.Attrs{Category: s.Category, Value: s.Value, Label: s.Label}
}

type interpolatedFrame struct {
	Time     float64         `json:"time"`
	Polygon  []point2D       `json:"polygon"`
	Subareas []subareaResult `json:"subareas,omitempty"`
	Labels   []labelResult   `json:"labels,omitempty"`
}

type subareaResult struct {
	Attrs attrsSpec `json:"attrs"`
}

type labelResult struct {
	Attrs attrsSpec `json:"attrs"`
	X     float64   `json:"x"`
	Y     float64   `json:"y"`
}

type interpolateResponse struct {
	Frames []interpolatedFrame `json:"frames"`
}

// multiKeyframe implements linkchain.KeyframeSet for area 0's boundary plus
// its dividing lines and holes at one keyframe, indexed by member type and
// imem, per spec.md §3's ALKEY lookup model.
type multiKeyframe struct {
	bound   geometry.Line
	divides []geometry.Line // indexed by imem; zero-value Line means absent
	holes   []geometry.Line
}

func (k multiKeyframe) Line(_ int, mtype linkchain.MemberType, imem int) (geometry.Line, bool) {
	switch mtype {
	case linkchain.MemberBound:
		return k.bound, true
	case linkchain.MemberDiv:
		if imem >= 0 && imem < len(k.divides) && k.divides[imem].Len() > 0 {
			return k.divides[imem], true
		}
	case linkchain.MemberHole:
		if imem >= 0 && imem < len(k.holes) && k.holes[imem].Len() > 0 {
			return k.holes[imem], true
		}
	case linkchain.MemberNone:
	}

	return geometry.Line{}, false
}

// NewInterpolateCommand builds the `fpagpgen interpolate` command: read a
// JSON keyframe document, run it through internal/interp, and write the
// tween-frame boundaries as JSON.
func NewInterpolateCommand() *cobra.Command {
	var (
		input, output string
		configPath    string
		useCheckpoint bool
		resume        bool
	)

	cmd := &cobra.Command{
		Use:   "interpolate",
		Short: "Temporally interpolate a closed boundary across keyframe times",
		Long: `Interpolate reads a JSON document naming a closed polygon boundary at
each of a series of keyframe times, and produces the boundary at a
requested set of tween times in between (spec.md §4.1-4.6).

Request document shape:
  {
    "key_times": [0, 6, 12],
    "keyframes": [[[x,y], ...], [[x,y], ...], [[x,y], ...]],
    "tween_times": [0, 3, 6, 9, 12],
    "divides": [{"key_lines": [[[x,y], ...], null, [[x,y], ...]],
                 "left": {"category": "type", "value": "CLD"},
                 "right": {"category": "type", "value": "CLR"}}],
    "holes": [{"key_lines": [null, [[x,y], ...], [[x,y], ...]]}],
    "spots": [{"category": "type", "value": "H", "x": 1, "y": 2}]
  }

"divides", "holes", and "spots" are optional; a boundary alone still
produces one subarea per frame with no divides or labels.

--checkpoint writes run progress under the configured checkpoint directory
as each chain and tween frame completes; --resume reports a prior run's
progress (if any) before recomputing.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runInterpolate(input, output, configPath, useCheckpoint, resume)
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "request JSON path (default stdin)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "response JSON path (default stdout)")
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "setup config file path (default search path)")
	cmd.Flags().BoolVar(&useCheckpoint, "checkpoint", false, "save run progress to the checkpoint directory")
	cmd.Flags().BoolVar(&resume, "resume", false, "report a prior checkpoint's progress before recomputing")

	return cmd
}

func runInterpolate(input, output, configPath string, useCheckpoint, resume bool) error {
	reporter := gpgerr.NewReporter(cmdStderr(), nil)

	providers, err := initInterpolateObservability()
	if err != nil {
		fatal := gpgerr.NewFatal(gpgerr.KindConfiguration, gpgerr.Context{}, err)
		reporter.ReportFatal(fatal, nil)

		return fatal
	}

	defer func() {
		if shutdownErr := providers.Shutdown(context.Background()); shutdownErr != nil {
			providers.Logger.Warn("observability shutdown failed", "error", shutdownErr)
		}
	}()

	metrics, err := observability.NewInterpMetrics(providers.Meter)
	if err != nil {
		fatal := gpgerr.NewFatal(gpgerr.KindConfiguration, gpgerr.Context{}, err)
		reporter.ReportFatal(fatal, nil)

		return fatal
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		fatal := gpgerr.NewFatal(gpgerr.KindConfiguration, gpgerr.Context{File: configPath}, err)
		reporter.ReportFatal(fatal, nil)

		return fatal
	}

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

	mgr, progress := setUpCheckpointing(cfg, input, req, useCheckpoint, resume)

	metricsReporter := newInterpMetricsReporter(progress)

	resp, err := runInterpolation(req, metricsReporter)

	metrics.RecordRun(context.Background(), metricsReporter.stats())

	if err != nil {
		fatal := gpgerr.NewFatal(gpgerr.KindInterpolation, gpgerr.Context{File: input}, err)
		reporter.ReportFatal(fatal, nil)

		return fatal
	}

	if mgr != nil {
		if clearErr := mgr.Clear(); clearErr != nil {
			fmt.Fprintf(cmdStderr(), "warning: clear checkpoint: %v\n", clearErr)
		}
	}

	return writeInterpolateResponse(output, resp)
}

func initInterpolateObservability() (observability.Providers, error) {
	cfg := observability.DefaultConfig()
	cfg.ServiceVersion = version.Version
	cfg.OTLPEndpoint = os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	cfg.OTLPHeaders = observability.ParseOTLPHeaders(os.Getenv("OTEL_EXPORTER_OTLP_HEADERS"))
	cfg.OTLPInsecure = os.Getenv("OTEL_EXPORTER_OTLP_INSECURE") == "true"
	cfg.Mode = observability.ModeCLI

	return observability.Init(cfg)
}

// interpMetricsReporter wraps another interp.ProgressReporter (typically
// the checkpoint one, or interp.NopReporter{}) and accumulates the chain
// count, frame count, and per-frame wall-clock duration that
// observability.InterpMetrics.RecordRun expects, per spec.md §5's
// interp_progress callback supplemented with OTel instrumentation
// (SPEC_FULL.md's ambient observability stack).
type interpMetricsReporter struct {
	inner      interp.ProgressReporter
	chains     int64
	frames     int
	durations  []time.Duration
	frameStart time.Time
}

func newInterpMetricsReporter(inner interp.ProgressReporter) *interpMetricsReporter {
	return &interpMetricsReporter{inner: inner, frameStart: time.Now()}
}

func (r *interpMetricsReporter) ChainDone(chainID, done, total int) {
	r.chains = int64(total)

	if r.inner != nil {
		r.inner.ChainDone(chainID, done, total)
	}
}

func (r *interpMetricsReporter) FrameDone(frameIndex, done, total int) {
	r.durations = append(r.durations, time.Since(r.frameStart))
	r.frameStart = time.Now()
	r.frames = total

	if r.inner != nil {
		r.inner.FrameDone(frameIndex, done, total)
	}
}

func (r *interpMetricsReporter) stats() observability.InterpStats {
	return observability.InterpStats{Chains: r.chains, Frames: r.frames, FrameDurations: r.durations}
}

// setUpCheckpointing builds a checkpoint.Manager and interp.ProgressReporter
// when checkpointing is enabled (by flag or config), printing any prior
// run's recorded progress when resume is requested. Resuming does not skip
// chains a prior run completed: the run is always recomputed in full. It
// returns a nil Manager and interp.NopReporter{} when checkpointing is off.
func setUpCheckpointing(
	cfg *config.Config, input string, req interpolateRequest, useCheckpoint, resume bool,
) (*checkpoint.Manager, interp.ProgressReporter) {
	enabled := useCheckpoint || cfg.Checkpoint.Enabled
	if !enabled {
		return nil, interp.NopReporter{}
	}

	dir := cfg.Checkpoint.Dir
	if dir == "" {
		dir = checkpoint.DefaultDir()
	}

	mgr := checkpoint.NewManager(dir, checkpoint.SourceHash(input))

	if maxSize, ok, sizeErr := cfg.Checkpoint.MaxSizeBytes(); sizeErr == nil && ok {
		mgr.MaxSize = maxSize
	}

	if (resume || cfg.Checkpoint.Resume) && mgr.Exists() {
		if validateErr := mgr.Validate(input, interpolateStageNames); validateErr == nil {
			if meta, loadErr := mgr.LoadMetadata(); loadErr == nil {
				fmt.Fprintf(cmdStderr(), "resuming %s: prior run reached chain %d/%d, tween %d/%d (checkpoint from %s)\n",
					input, meta.RunState.ProcessedChains, meta.RunState.TotalChains,
					meta.RunState.CurrentTween, meta.RunState.TotalTweens, meta.CreatedAt)
			}
		}
	}

	return mgr, checkpoint.NewReporter(mgr, input, interpolateStageNames, req.TweenTimes)
}

func validateInterpolateRequest(req interpolateRequest) error {
	if len(req.KeyTimes) < 2 {
		return ErrTooFewKeyframes
	}

	if len(req.KeyTimes) != len(req.Keyframes) {
		return ErrKeyframeMismatch
	}

	return nil
}

func runInterpolation(req interpolateRequest, progress interp.ProgressReporter) (interpolateResponse, error) {
	if progress == nil {
		progress = interp.NopReporter{}
	}

	nkeys := len(req.Keyframes)
	keys := make([]linkchain.KeyframeSet, nkeys)
	boundNodes := make([]linkchain.Node, nkeys)

	multi := make([]multiKeyframe, nkeys)
	for i, polygon := range req.Keyframes {
		multi[i].bound = geometry.NewLine(toGeomPoints(polygon), true)
		multi[i].divides = make([]geometry.Line, len(req.Divides))
		multi[i].holes = make([]geometry.Line, len(req.Holes))
		boundNodes[i] = linkchain.Node{Present: true, IArea: 0, MType: linkchain.MemberBound, IMem: 0}
	}

	chains := []*linkchain.Chain{{ID: 1, Nodes: boundNodes}}

	for di, d := range req.Divides {
		nodes := make([]linkchain.Node, nkeys)

		for i := 0; i < nkeys && i < len(d.KeyLines); i++ {
			if len(d.KeyLines[i]) == 0 {
				continue
			}

			line := geometry.NewLine(toGeomPoints(d.KeyLines[i]), false)
			multi[i].divides[di] = line
			nodes[i] = linkchain.Node{
				Present: true, IArea: 0, MType: linkchain.MemberDiv, IMem: di,
				LeftAttrs: d.Left.toGeometry(), RightAttrs: d.Right.toGeometry(),
			}
		}

		chains = append(chains, &linkchain.Chain{ID: 100 + di, Nodes: nodes})
	}

	for hi, h := range req.Holes {
		nodes := make([]linkchain.Node, nkeys)

		for i := 0; i < nkeys && i < len(h.KeyLines); i++ {
			if len(h.KeyLines[i]) == 0 {
				continue
			}

			line := geometry.NewLine(toGeomPoints(h.KeyLines[i]), true)
			multi[i].holes[hi] = line
			nodes[i] = linkchain.Node{Present: true, IArea: 0, MType: linkchain.MemberHole, IMem: hi}
		}

		chains = append(chains, &linkchain.Chain{ID: 200 + hi, Nodes: nodes})
	}

	for i := range multi {
		keys[i] = multi[i]
	}

	spots := make([]topology.Spot, len(req.Spots))
	for i, s := range req.Spots {
		spots[i] = topology.Spot{Attrs: s.toAttrs(), Pos: geometry.Point{X: s.X, Y: s.Y}}
	}

	areaOf := func(_ *arealink.ALink, _ int) (int, bool) { return 0, true }

	in := interp.Input{
		Chains:     chains,
		Keys:       keys,
		KeyTimes:   req.KeyTimes,
		TweenTimes: req.TweenTimes,
		AreaOf:     areaOf,
		Reporter:   progress,
	}

	if len(spots) > 0 {
		in.Spots = map[int][]topology.Spot{0: spots}
	}

	outputs, err := interp.Run(in)
	if err != nil {
		return interpolateResponse{}, fmt.Errorf("interpolate: %w", err)
	}

	warn := func(format string, args ...any) {
		fmt.Fprintf(cmdStderr(), "warning: "+format+"\n", args...)
	}

	assembled, err := interp.AssembleFrames(outputs, in, warn)
	if err != nil {
		return interpolateResponse{}, fmt.Errorf("interpolate: %w", err)
	}

	frames := make([]interpolatedFrame, 0, len(assembled))

	for _, fa := range assembled {
		frame := interpolatedFrame{
			Time:    req.TweenTimes[fa.TweenIndex],
			Polygon: toPoint2Ds(fa.Area.Boundary),
		}

		for _, sub := range fa.Area.Subareas {
			frame.Subareas = append(frame.Subareas, subareaResult{Attrs: fromGeometryAttrs(sub.Attrs)})
		}

		for _, l := range fa.Labels {
			frame.Labels = append(frame.Labels, labelResult{Attrs: fromGeometryAttrs(l.Attrs), X: l.Pos.X, Y: l.Pos.Y})
		}

		frames = append(frames, frame)
	}

	return interpolateResponse{Frames: frames}, nil
}

func writeInterpolateResponse(output string, resp interpolateResponse) error {
	out, err := openOutput(output)
	if err != nil {
		return fmt.Errorf("open response output: %w", err)
	}
	defer out.Close()

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")

	if encodeErr := enc.Encode(resp); encodeErr != nil {
		return fmt.Errorf("encode response: %w", encodeErr)
	}

	return nil
}

func toGeomPoints(in []point2D) []geometry.Point {
	out := make([]geometry.Point, len(in))
	for i, p := range in {
		out[i] = geometry.Point{X: p[0], Y: p[1]}
	}

	return out
}

func toPoint2Ds(line geometry.Line) []point2D {
	out := make([]point2D, len(line.Points))
	for i, p := range line.Points {
		out[i] = point2D{p.X, p.Y}
	}

	return out
}
