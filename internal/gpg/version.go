package gpg

import "fmt"

// ProgramType names a GPG program identity, looked up from argv[0]'s
// basename in a built-in table, per spec.md §6 "Program identity is the
// basename of argv[0], looked up in a built-in table; unknown name prints
// the allowed list and exits −1."
type ProgramType string

// VersionAge classifies one accepted @version string, per SPEC_FULL.md
// §C.1 "each back end's accepted @version strings are a fixed table, each
// flagged current/old/obsolete; an old or obsolete match is a version
// warning (spec.md §7), not a parse failure."
type VersionAge int

// Version ages.
const (
	VersionCurrent VersionAge = iota
	VersionOld
	VersionObsolete
)

// ErrUnknownVersion is returned when a @version string matches no entry in
// a program type's table.
var ErrUnknownVersion = fmt.Errorf("gpg: unrecognized @version string")

// VersionTable maps every @version string a program type accepts to its
// age, used to distinguish a version-warning (old/obsolete match) from a
// parse failure (no match at all).
type VersionTable map[string]VersionAge

// Lookup classifies s against the table, returning ErrUnknownVersion if it
// isn't a recognized version string at all.
func (t VersionTable) Lookup(s string) (VersionAge, error) {
	age, ok := t[s]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownVersion, s)
	}

	return age, nil
}

// versionTables holds one VersionTable per ProgramType, per spec.md §6's
// "Versions accepted per back end are fixed tables of strings".
var versionTables = map[ProgramType]VersionTable{
	"psmet": {
		"psmet8.1":  VersionCurrent, // spec.md §8 scenario S5's literal @version string.
		"psmet_2.0": VersionCurrent,
		"psmet_1.3": VersionOld,
		"psmet_1.0": VersionObsolete,
	},
	"svgmet": {
		"svgmet_1.1": VersionCurrent,
		"svgmet_1.0": VersionOld,
	},
	"cormet": {
		"cormet_2.0": VersionCurrent,
		"cormet_1.0": VersionOld,
	},
	"texmet": {
		"texmet_1.0": VersionCurrent,
	},
}

// VersionTableFor returns the version table for a program type.
func VersionTableFor(p ProgramType) (VersionTable, bool) {
	t, ok := versionTables[p]

	return t, ok
}

// backendProgramTypes maps a --backend/API backend string (ps, svg, cmf,
// tex) to the ProgramType its version table is keyed under.
var backendProgramTypes = map[string]ProgramType{
	"ps":  "psmet",
	"svg": "svgmet",
	"cmf": "cormet",
	"tex": "texmet",
}

// ProgramTypeForBackend resolves the ProgramType bound to a ps/svg/cmf/tex
// backend selector, the same identity @version's age classification and
// spec.md §6's "program identity" lookup both key off.
func ProgramTypeForBackend(backend string) (ProgramType, bool) {
	p, ok := backendProgramTypes[backend]

	return p, ok
}

// ErrMissingVersionDirective is returned when an fpdf source's first
// directive isn't @version, per spec.md §4.7 "The first directive of a
// file must be @version; failure to do so is fatal."
var ErrMissingVersionDirective = fmt.Errorf("gpg: first directive must be @version")

// requireVersionFirst enforces spec.md §4.7's leading-@version rule against
// a freshly parsed top-level directive stream.
func requireVersionFirst(directives []Directive) error {
	if len(directives) == 0 {
		return ErrMissingVersionDirective
	}

	if directives[0].Name != "version" {
		return fmt.Errorf("%w: got @%s", ErrMissingVersionDirective, directives[0].Name)
	}

	return nil
}

// handleVersion implements `@version{...}`, per spec.md §8 scenario S5's
// `@version { psmet8.1 }`. When ctx.ProgramType is bound, the version
// string is classified against that program type's table: an old or
// obsolete match is recorded as a warning (spec.md §7), never a failure,
// while a string matching no table entry at all is an error. An unbound
// ProgramType (a Context built outside the CLI/MCP entry points, e.g. in a
// unit test exercising unrelated directives) skips classification
// entirely, since there is nothing to classify against.
func handleVersion(ctx *Context, d Directive) error {
	version, ok := d.Get("version")
	if !ok {
		bare := d.Bare()
		if len(bare) == 0 {
			return fmt.Errorf("gpg: @version requires a version string")
		}

		version = bare[0]
	}

	if ctx.ProgramType == "" {
		return nil
	}

	table, ok := VersionTableFor(ctx.ProgramType)
	if !ok {
		return fmt.Errorf("gpg: @version: no version table for program type %q", ctx.ProgramType)
	}

	age, err := table.Lookup(version)
	if err != nil {
		return fmt.Errorf("gpg: @version: %w", err)
	}

	switch age {
	case VersionOld:
		ctx.Warn(fmt.Errorf("gpg: @version %q is an old version for %s", version, ctx.ProgramType))
	case VersionObsolete:
		ctx.Warn(fmt.Errorf("gpg: @version %q is obsolete for %s", version, ctx.ProgramType))
	case VersionCurrent:
		// No warning; the common case.
	}

	return nil
}
</content>
