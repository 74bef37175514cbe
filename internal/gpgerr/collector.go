package gpgerr

// Collector accumulates warnings emitted during one run (an fpdf
// evaluation, or an interpolation pass) so the caller can report them in
// bulk at the end, or inspect them in tests without wiring a live Reporter.
type Collector struct {
	Warnings []*Warning
}

// Add appends a warning.
func (c *Collector) Add(w *Warning) {
	c.Warnings = append(c.Warnings, w)
}

// Warnf is a convenience that builds and appends a Warning in one call.
func (c *Collector) Warnf(kind Kind, ctx Context, cause error) {
	c.Add(NewWarning(kind, ctx, cause))
}

// Empty reports whether no warnings were collected.
func (c *Collector) Empty() bool {
	return len(c.Warnings) == 0
}
