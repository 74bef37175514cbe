package checkpoint

// Checkpointable is implemented by anything that can persist and restore
// its own progress under a checkpoint-provided directory — a single run
// stage (e.g. the area-link builder or the tween interpolator) taking
// responsibility for its own state shape rather than Manager knowing it.
type Checkpointable interface {
	SaveCheckpoint(dir string) error
	LoadCheckpoint(dir string) error
	CheckpointSize() int64
}
