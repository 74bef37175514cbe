package gpg

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Group holds, for one named group, a per-iteration list of values for
// each keyword it was defined with, per spec.md §4.8 "@group{group_name=…;
// k1=v1; k2=v2}" and the loop-group concept in §3 ("a list of loop groups
// (each with per-iteration value lists per keyword)").
type Group struct {
	Name     string              `yaml:"name"`
	Keywords map[string][]string `yaml:"keywords"`
}

// GroupTable holds every defined group, keyed by name, and is what a
// Context threads through directive handlers instead of a process-global
// table (spec.md §9's explicit Context redesign).
type GroupTable struct {
	groups map[string]*Group
}

// NewGroupTable builds an empty table.
func NewGroupTable() *GroupTable {
	return &GroupTable{groups: make(map[string]*Group)}
}

// Define (re)creates a group from an @group directive's body, per spec.md
// §4.8 "(re)defines a group." Every key=value entry other than
// `group_name` becomes one keyword with a one-element value list; repeated
// @group directives for the same name with the same keyword extend that
// keyword's per-iteration list (modeling the loop's "re-set per iteration"
// semantics described in §4.8).
func (t *GroupTable) Define(d Directive) (*Group, error) {
	name, ok := d.Get("group_name")
	if !ok {
		return nil, fmt.Errorf("gpg: @group missing group_name")
	}

	g, exists := t.groups[name]
	if !exists {
		g = &Group{Name: name, Keywords: make(map[string][]string)}
		t.groups[name] = g
	}

	for _, kv := range d.Body {
		if kv.Key == "" || kv.Key == "group_name" {
			continue
		}

		g.Keywords[kv.Key] = append(g.Keywords[kv.Key], kv.Value)
	}

	return g, nil
}

// Lookup returns the named group.
func (t *GroupTable) Lookup(name string) (*Group, bool) {
	g, ok := t.groups[name]

	return g, ok
}

// Expansion renders a group's entries the way a `<group_name>` token
// reference splices inline: `key1=v1;key2=v2;...` for the group's most
// recent (last) value of each keyword. Keywords are emitted in Go map
// iteration order, which is randomized, so the entry order can differ
// between calls.
func (g *Group) Expansion() string {
	out := ""

	for k, vals := range g.Keywords {
		if len(vals) == 0 {
			continue
		}

		if out != "" {
			out += ";"
		}

		out += k + "=" + vals[len(vals)-1]
	}

	return out
}

// MarshalGroupTable serializes every group as YAML, for persisting a setup
// file's group section (spec.md §6's setup-file directory map) the way the
// rest of this module's config carries structured state.
func MarshalGroupTable(t *GroupTable) ([]byte, error) {
	ordered := make([]*Group, 0, len(t.groups))

	for _, g := range t.groups {
		ordered = append(ordered, g)
	}

	data, err := yaml.Marshal(ordered)
	if err != nil {
		return nil, fmt.Errorf("gpg: marshal group table: %w", err)
	}

	return data, nil
}

// UnmarshalGroupTable loads a group table previously written by
// MarshalGroupTable.
func UnmarshalGroupTable(data []byte) (*GroupTable, error) {
	var groups []*Group

	if err := yaml.Unmarshal(data, &groups); err != nil {
		return nil, fmt.Errorf("gpg: unmarshal group table: %w", err)
	}

	t := NewGroupTable()
	for _, g := range groups {
		t.groups[g.Name] = g
	}

	return t, nil
}
