package regions

import (
	"fmt"
	"strings"
)

// Selector describes which regions a run should cover. The zero value selects
// no regions.
type Selector struct {
	names     []string
	raw       string
	ambiguous bool
}

// None selects no regions.
func None() Selector {
	return Selector{}
}

// List selects the named regions. Names are normalized at resolution time.
func List(names ...string) Selector {
	return Selector{names: append([]string(nil), names...)}
}

// FromString interprets a bare string selector. "none" and "" (after
// lower-casing and trimming) select no regions. Any other string is iterated
// one character at a time, each character becoming a requested region; such
// selectors are marked ambiguous so the resolver can warn about them.
func FromString(s string) Selector {
	v := strings.ToLower(strings.TrimSpace(s))
	if v == "none" || v == "" {
		return None()
	}

	names := make([]string, 0, len(v))
	for _, r := range v {
		names = append(names, string(r))
	}
	return Selector{names: names, raw: s, ambiguous: true}
}

// FromValue maps a loosely typed value, as produced by a YAML or JSON
// decoder, onto a Selector. Strings go through FromString, string sequences
// through List. Anything else selects no regions.
func FromValue(v any) Selector {
	switch val := v.(type) {
	case Selector:
		return val
	case string:
		return FromString(val)
	case []string:
		return List(val...)
	case []any:
		names := make([]string, 0, len(val))
		for _, item := range val {
			s, ok := item.(string)
			if !ok {
				return None()
			}
			names = append(names, s)
		}
		return List(names...)
	default:
		return None()
	}
}

// ParseFlag converts command-line region values into a Selector. A single
// "none" (or no values at all) selects nothing; comma separated values are
// split.
func ParseFlag(values []string) Selector {
	var names []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				names = append(names, part)
			}
		}
	}
	if len(names) == 0 || (len(names) == 1 && strings.EqualFold(names[0], "none")) {
		return None()
	}
	return List(names...)
}

// Requested returns the normalized (lower-cased, trimmed) region names in
// input order. Duplicates are kept.
func (s Selector) Requested() []string {
	out := make([]string, 0, len(s.names))
	for _, n := range s.names {
		out = append(out, strings.ToLower(strings.TrimSpace(n)))
	}
	return out
}

// IsEmpty reports whether the selector requests no regions.
func (s Selector) IsEmpty() bool {
	return len(s.names) == 0
}

// Ambiguous reports whether the selector came from a bare string that was
// split into characters.
func (s Selector) Ambiguous() bool {
	return s.ambiguous
}

func (s Selector) String() string {
	if s.ambiguous {
		return fmt.Sprintf("%q (split into characters)", s.raw)
	}
	if s.IsEmpty() {
		return "none"
	}
	return strings.Join(s.names, ",")
}
