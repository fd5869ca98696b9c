package prompt

import (
	"strings"
	"unicode"
)

// Redacted replaces scrubbed prompt text.
const Redacted = "[REDACTED]"

// minFragmentRunes is the shortest prompt fragment treated as identifying.
const minFragmentRunes = 12

// Scrub removes the prompt, and every sentence or clause of it, from
// msg. Messages are built from fixed text, so this only matters when an
// upstream library echoes request content into an error.
func Scrub(msg, prompt string) string {
	if msg == "" || prompt == "" {
		return msg
	}
	msg = strings.ReplaceAll(msg, prompt, Redacted)
	for _, frag := range Fragments(prompt) {
		msg = strings.ReplaceAll(msg, frag, Redacted)
	}
	return msg
}

// Fragments splits a prompt into the clauses that must never appear in
// output: lines, sentences and semicolon-separated rules of at least
// minFragmentRunes runes, longest first.
func Fragments(prompt string) []string {
	split := func(r rune) bool {
		return r == '\n' || r == '.' || r == ';' || r == ':'
	}
	seen := make(map[string]struct{})
	var out []string
	for _, f := range strings.FieldsFunc(prompt, split) {
		f = strings.TrimFunc(f, func(r rune) bool { return unicode.IsSpace(r) || r == ',' })
		if len([]rune(f)) < minFragmentRunes {
			continue
		}
		if _, dup := seen[f]; dup {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}
	// longest first so that nested fragments are replaced whole
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && len(out[j]) > len(out[j-1]); j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}
