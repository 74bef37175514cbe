package gpg

import (
	"errors"
	"fmt"
	"strings"
)

// KV is one body entry of a directive: either `key=value` or a bare value
// (Key == "").
type KV struct {
	Key   string
	Value string
}

// Directive is one parsed `@name { body }` unit, per spec.md §4.7.
type Directive struct {
	Name string
	Body []KV
}

// Get returns the value of the first key=value entry named key.
func (d Directive) Get(key string) (string, bool) {
	for _, kv := range d.Body {
		if kv.Key == key {
			return kv.Value, true
		}
	}

	return "", false
}

// Bare returns every bare (keyless) body value, in order.
func (d Directive) Bare() []string {
	var out []string

	for _, kv := range d.Body {
		if kv.Key == "" {
			out = append(out, kv.Value)
		}
	}

	return out
}

// ErrUnbalancedBraces is a parse error, spec.md §7 "unbalanced braces".
var ErrUnbalancedBraces = errors.New("gpg: unbalanced braces")

// ErrMultipleEquals is a parse error, spec.md §7 "multiple = in one kv".
var ErrMultipleEquals = errors.New("gpg: multiple '=' in one key=value entry")

// ErrMissingBrace is a parse error, spec.md §7 "missing {/}".
var ErrMissingBrace = errors.New("gpg: directive missing opening or closing brace")

// maxKeywordLen/maxBodyLen mirror the original's fixed keyword/body buffer
// sizes (GPGMedium-class constants; the original header defining the exact
// figure isn't in original_source/, so these are a documented stand-in),
// per spec.md §7 "Parse errors — ... keyword token too long, directive
// body too long" (SPEC_FULL.md §C.2).
const (
	maxKeywordLen = 255
	maxBodyLen    = 4096
)

// ErrKeywordTooLong is a parse error, spec.md §7 "keyword token too long".
var ErrKeywordTooLong = errors.New("gpg: keyword token too long")

// ErrBodyTooLong is a parse error, spec.md §7 "directive body too long".
var ErrBodyTooLong = errors.New("gpg: directive body too long")

// ParseDirectives walks a token stream and assembles every `@name{...}`
// directive it finds, in source order.
func ParseDirectives(tokens []Token) ([]Directive, error) {
	var out []Directive

	i := 0
	for i < len(tokens) {
		tok := tokens[i]

		if tok.Kind != TokenDirectiveName {
			i++

			continue
		}

		d, next, err := parseOne(tokens, i)
		if err != nil {
			return nil, err
		}

		out = append(out, d)
		i = next
	}

	return out, nil
}

func parseOne(tokens []Token, at int) (Directive, int, error) {
	name := tokens[at].Text
	i := at + 1

	if i >= len(tokens) || tokens[i].Kind != TokenBraceOpen {
		return Directive{}, 0, fmt.Errorf("%w: @%s", ErrMissingBrace, name)
	}

	i++

	depth := 1

	var entries []KV

	var cur []Token

	totalBodyLen := 0

	flush := func() error {
		kv, err := toKV(cur)
		if err != nil {
			return err
		}

		if kv != nil {
			if len(kv.Key) > maxKeywordLen {
				return fmt.Errorf("%w: @%s %q", ErrKeywordTooLong, name, kv.Key)
			}

			totalBodyLen += len(kv.Key) + len(kv.Value)
			if totalBodyLen > maxBodyLen {
				return fmt.Errorf("%w: @%s", ErrBodyTooLong, name)
			}

			entries = append(entries, *kv)
		}

		cur = nil

		return nil
	}

	for i < len(tokens) {
		tok := tokens[i]

		switch tok.Kind {
		case TokenBraceOpen:
			depth++
			cur = append(cur, tok)
			i++
		case TokenBraceClose:
			depth--
			i++

			if depth == 0 {
				if err := flush(); err != nil {
					return Directive{}, 0, err
				}

				return Directive{Name: name, Body: entries}, i, nil
			}

			cur = append(cur, tok)
		case TokenSemicolon:
			if depth == 1 {
				if err := flush(); err != nil {
					return Directive{}, 0, err
				}

				i++

				continue
			}

			cur = append(cur, tok)
			i++
		default:
			cur = append(cur, tok)
			i++
		}
	}

	return Directive{}, 0, fmt.Errorf("%w: @%s", ErrUnbalancedBraces, name)
}

func toKV(tokens []Token) (*KV, error) {
	if len(tokens) == 0 {
		return nil, nil
	}

	eqCount := 0
	eqIdx := -1

	for i, t := range tokens {
		if t.Kind == TokenEquals {
			eqCount++
			eqIdx = i
		}
	}

	if eqCount > 1 {
		return nil, ErrMultipleEquals
	}

	if eqCount == 0 {
		return &KV{Value: joinValues(tokens)}, nil
	}

	key := strings.TrimSpace(joinValues(tokens[:eqIdx]))
	value := strings.TrimSpace(joinValues(tokens[eqIdx+1:]))

	return &KV{Key: key, Value: value}, nil
}

func joinValues(tokens []Token) string {
	var parts []string

	for _, t := range tokens {
		if t.Kind == TokenValue {
			parts = append(parts, t.Text)
		}
	}

	return strings.Join(parts, " ")
}
