package commands

import (
	"io"
	"os"
	"testing"

	"github.com/fpasys/fpagpgen/internal/gpgerr"
)

func writeTestFile(t *testing.T, path, contents string) {
	t.Helper()

	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("write test file %s: %v", path, err)
	}
}

func newTestReporter() *gpgerr.Reporter {
	noColor := true

	return gpgerr.NewReporter(io.Discard, &noColor)
}
