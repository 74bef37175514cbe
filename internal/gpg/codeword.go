package gpg

import (
	"fmt"
	"strings"
)

// CodewordClass groups codewords by what kind of token they expand,
// mirroring the three duplicated expanders the original engine carries
// (one each for file codewords, process codewords, and name codewords).
// spec.md §9 calls for unifying them "behind an allow-list parameter"; this
// package does that with a bitmask instead of three functions.
type CodewordClass uint8

// Codeword classes.
const (
	ClassFile CodewordClass = 1 << iota
	ClassProcess
	ClassName
)

// ClassAll allows every codeword class.
const ClassAll = ClassFile | ClassProcess | ClassName

// AllowFileCodewordsOnly is the allow-list SPEC_FULL.md's supplemented
// `@gpgen_insert` restriction uses: only file codewords are valid inside a
// verbatim insert block, not process or name codewords.
const AllowFileCodewordsOnly = ClassFile

// codewordClasses maps every known codeword (without angle brackets) to
// its class, per spec.md §6 "Codewords surrounded by <…> in paths and
// filenames expand from this map" and §4.8's directive examples
// (`<default>`, `<home>`, `<psout>`, `<pdf>`, `<year>`, `<v_hour>`,
// `<p_hr_min>`, `<iteration>`, `<iteration_attribute>`).
var codewordClasses = map[string]CodewordClass{
	"default":             ClassFile,
	"home":                ClassFile,
	"psout":               ClassFile,
	"svgout":              ClassFile,
	"corout":               ClassFile,
	"texout":               ClassFile,
	"pdf":                  ClassFile,
	"year":                 ClassFile,
	"v_hour":               ClassFile,
	"p_hr_min":             ClassFile,
	"iteration":            ClassProcess,
	"iteration_attribute":  ClassProcess,
	"process_name":         ClassProcess,
	"field_name":           ClassName,
	"element":              ClassName,
	"level":                ClassName,
}

// ErrUnknownCodeword is returned for a `<...>` reference with no entry in
// values, surfaced as a semantic warning by the caller (spec.md §7
// "unknown codeword (warned, not fatal)").
var ErrUnknownCodeword = fmt.Errorf("gpg: unknown codeword")

// ErrCodewordNotAllowed is returned when a codeword resolves to a class
// outside the caller's allow-list, per the `@gpgen_insert` restriction.
var ErrCodewordNotAllowed = fmt.Errorf("gpg: codeword not allowed in this context")

// ExpandCodewords replaces every `<name>` reference in s with values[name],
// restricted to codeword classes set in allow. Unknown codewords return
// ErrUnknownCodeword; codewords outside allow return ErrCodewordNotAllowed.
// Both are collected rather than aborting the whole expansion, matching
// spec.md §7's "unknown codeword (warned, not fatal)" — callers inspect the
// returned warnings slice and decide whether to surface them.
func ExpandCodewords(s string, values map[string]string, allow CodewordClass) (string, []error) {
	var (
		out  strings.Builder
		errs []error
	)

	runes := []rune(s)

	for i := 0; i < len(runes); i++ {
		if runes[i] != '<' {
			out.WriteRune(runes[i])

			continue
		}

		end := indexRune(runes, i+1, '>')
		if end < 0 {
			out.WriteRune(runes[i])

			continue
		}

		name := string(runes[i+1 : end])

		class, known := codewordClasses[name]
		if !known {
			errs = append(errs, fmt.Errorf("%w: <%s>", ErrUnknownCodeword, name))
			out.WriteString("<" + name + ">")
			i = end

			continue
		}

		if class&allow == 0 {
			errs = append(errs, fmt.Errorf("%w: <%s>", ErrCodewordNotAllowed, name))
			out.WriteString("<" + name + ">")
			i = end

			continue
		}

		value, ok := values[name]
		if !ok {
			errs = append(errs, fmt.Errorf("%w: <%s>", ErrUnknownCodeword, name))
			out.WriteString("<" + name + ">")
			i = end

			continue
		}

		out.WriteString(value)
		i = end
	}

	return out.String(), errs
}

// keywordCodewordPrefix marks a `<keyword:name>` reference, spec.md §3's
// per-iteration "keyword_value_list" read back inside a loop body (§8
// scenario S6). It resolves against live loop/group state rather than the
// static codewordClasses table ExpandCodewords consults, so it's expanded
// separately by ExpandKeywordCodewords.
const keywordCodewordPrefix = "keyword:"

// ExpandKeywordCodewords replaces every `<keyword:name>` reference in s
// with the value the active loop frame's bound groups hold for keyword
// name at the frame's current iteration, per spec.md §8 scenario S6: a
// loop over a group whose `tag` keyword lists `A B C` resolves
// `<keyword:tag>` to `A`, `B`, `C` on iterations 0, 1, 2. A reference to a
// keyword no bound group defines, or encountered outside any loop, is left
// unexpanded and reported, mirroring ExpandCodewords's unknown-codeword
// handling.
func ExpandKeywordCodewords(s string, ctx *Context) (string, []error) {
	if !strings.Contains(s, "<"+keywordCodewordPrefix) {
		return s, nil
	}

	var (
		out  strings.Builder
		errs []error
	)

	runes := []rune(s)

	for i := 0; i < len(runes); i++ {
		if runes[i] != '<' {
			out.WriteRune(runes[i])

			continue
		}

		end := indexRune(runes, i+1, '>')
		if end < 0 {
			out.WriteRune(runes[i])

			continue
		}

		ref := string(runes[i+1 : end])

		name, isKeyword := strings.CutPrefix(ref, keywordCodewordPrefix)
		if !isKeyword {
			out.WriteString("<" + ref + ">")
			i = end

			continue
		}

		value, found := resolveKeywordValue(ctx, name)
		if !found {
			errs = append(errs, fmt.Errorf("%w: <%s>", ErrUnknownCodeword, ref))
			out.WriteString("<" + ref + ">")
			i = end

			continue
		}

		out.WriteString(value)
		i = end
	}

	return out.String(), errs
}

// resolveKeywordValue looks up name's per-iteration value across every
// group bound to the active loop frame (LoopFrame.GroupNames, set by
// `@loop_begin{group=...}`), indexed by the frame's current Iteration and
// clamped to the keyword's last defined value once iterations run past
// its value list, the same most-recent-value fallback Group.Expansion
// uses outside a loop.
func resolveKeywordValue(ctx *Context, name string) (string, bool) {
	if ctx == nil || ctx.Groups == nil {
		return "", false
	}

	frame := ctx.Loops.Top()
	if frame == nil {
		return "", false
	}

	for _, groupName := range frame.GroupNames {
		g, ok := ctx.Groups.Lookup(groupName)
		if !ok {
			continue
		}

		vals, ok := g.Keywords[name]
		if !ok || len(vals) == 0 {
			continue
		}

		idx := frame.Iteration
		if idx >= len(vals) {
			idx = len(vals) - 1
		}

		return vals[idx], true
	}

	return "", false
}
