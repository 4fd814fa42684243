// Package alias generates and strips Dubeolsik search aliases in the
// frontmatter of markdown notes.
//
// A generated alias has the form "(eKR) <source> | <encoding>", where source
// is the note's basename or one of its hand-written aliases and encoding is
// the key sequence that types source on a two-set Korean keyboard. Generated
// aliases always follow every hand-written alias, so they can be stripped and
// rebuilt without disturbing what the user wrote.
package alias

import (
	"strings"
	"unicode"
)

const (
	// TagPrefix marks an alias as generated.
	TagPrefix = "(eKR)"

	// Key is the frontmatter key holding aliases.
	Key = "aliases"
)

// FormatAlias renders a generated alias for source and its encoding.
func FormatAlias(source, encoding string) string {
	return TagPrefix + " " + source + " | " + encoding
}

// IsTagged reports whether a starts with TagPrefix after leading whitespace.
func IsTagged(a string) bool {
	return strings.HasPrefix(strings.TrimLeftFunc(a, unicode.IsSpace), TagPrefix)
}

// NormalizeAliases converts a decoded aliases value into an ordered string
// list. A string becomes a one element list, a sequence keeps only its string
// elements and anything else, including an absent or null value, is empty.
func NormalizeAliases(raw any) []string {
	switch v := raw.(type) {
	case string:
		return []string{v}
	case []string:
		return append([]string(nil), v...)
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// Clean drops generated aliases and removes duplicates, keeping the first
// occurrence of each value.
func Clean(aliases []string) []string {
	seen := make(map[string]struct{}, len(aliases))
	out := make([]string, 0, len(aliases))
	for _, a := range aliases {
		if IsTagged(a) {
			continue
		}
		if _, dup := seen[a]; dup {
			continue
		}
		seen[a] = struct{}{}
		out = append(out, a)
	}
	return out
}

// Sources returns the strings to generate aliases for: basename first, then
// each cleaned alias, skipping blank values and repeats.
func Sources(basename string, cleaned []string) []string {
	return appendSources(nil, append([]string{basename}, cleaned...)...)
}

func appendSources(dst []string, candidates ...string) []string {
	for _, c := range candidates {
		if strings.TrimSpace(c) == "" {
			continue
		}
		dup := false
		for _, s := range dst {
			if s == c {
				dup = true
				break
			}
		}
		if !dup {
			dst = append(dst, c)
		}
	}
	return dst
}
