package gpgerr_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fpasys/fpagpgen/internal/gpgerr"
)

func TestFatalErrorWrapsAndDefaultsExitCode(t *testing.T) {
	t.Parallel()

	cause := errors.New("missing {")
	err := gpgerr.NewFatal(gpgerr.KindParse, gpgerr.Context{File: "x.fpdf", Directive: "@box"}, cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, 1, err.ExitCode())
	assert.Contains(t, err.Error(), "@box")
}

func TestNewUsageExitsNegativeOne(t *testing.T) {
	t.Parallel()

	err := gpgerr.NewUsage(errors.New("bad argc"))
	assert.Equal(t, -1, err.ExitCode())
}

func TestCollectorAccumulates(t *testing.T) {
	t.Parallel()

	var c gpgerr.Collector

	c.Warnf(gpgerr.KindGeometry, gpgerr.Context{Directive: "@boundaries"}, errors.New("degenerate ellipse"))

	require.False(t, c.Empty())
	assert.Equal(t, gpgerr.KindGeometry, c.Warnings[0].Kind)
}

func TestReporterFormatsFatalAndWarning(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	force := true
	r := gpgerr.NewReporter(&buf, &force)

	r.ReportFatal(gpgerr.NewFatal(gpgerr.KindIO, gpgerr.Context{File: "a.fpdf"}, errors.New("not found")), []string{"@file_name{...}"})
	r.ReportWarning(gpgerr.NewWarning(gpgerr.KindVersion, gpgerr.Context{}, errors.New("obsolete .pdf extension")))

	out := buf.String()
	assert.Contains(t, out, "fatal[io]")
	assert.Contains(t, out, "@file_name{...}")
	assert.Contains(t, out, "warning[version]")
}
