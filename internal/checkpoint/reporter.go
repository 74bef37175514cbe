package checkpoint

import "strconv"

// Reporter adapts a Manager into an interp.ProgressReporter (ChainDone,
// FrameDone), persisting RunState after every completed chain and tween
// frame so a run interrupted partway through leaves a metadata file a
// caller can inspect via Manager.LoadMetadata before deciding whether to
// resume. It satisfies interp.ProgressReporter structurally — this package
// does not import internal/interp, since interp already depends on nothing
// here and a checkpoint->interp edge would be the wrong direction for a
// persistence package.
//
// Save failures are swallowed rather than aborting the run: a checkpoint
// write that fails (e.g. disk full) shouldn't fail the interpolation it is
// only trying to make resumable. Callers that care can inspect LastErr.
type Reporter struct {
	Manager    *Manager
	SourcePath string
	StageNames []string
	TweenTimes []float64

	state   RunState
	LastErr error
}

// NewReporter builds a Reporter that checkpoints through mgr for one run of
// sourcePath's interpolation over stageNames' checkpointable stages.
// tweenTimes lets FrameDone record the actual tween time reached rather
// than just its index.
func NewReporter(mgr *Manager, sourcePath string, stageNames []string, tweenTimes []float64) *Reporter {
	return &Reporter{
		Manager:    mgr,
		SourcePath: sourcePath,
		StageNames: stageNames,
		TweenTimes: tweenTimes,
	}
}

// ChainDone implements interp.ProgressReporter.
func (r *Reporter) ChainDone(chainID, done, total int) {
	r.state.LastChainID = chainID
	r.state.ProcessedChains = done
	r.state.TotalChains = total
	r.save()
}

// FrameDone implements interp.ProgressReporter.
func (r *Reporter) FrameDone(frameIndex, done, total int) {
	r.state.CurrentTween = done
	r.state.TotalTweens = total

	if frameIndex >= 0 && frameIndex < len(r.TweenTimes) {
		r.state.LastTweenTime = strconv.FormatFloat(r.TweenTimes[frameIndex], 'g', -1, 64)
	}

	r.save()
}

// State returns the RunState recorded so far.
func (r *Reporter) State() RunState {
	return r.state
}

func (r *Reporter) save() {
	if r.Manager == nil {
		return
	}

	if err := r.Manager.Save(nil, r.state, r.SourcePath, r.StageNames); err != nil {
		r.LastErr = err
	}
}
