// Package scrub normalizes free-form metadata strings before persistence.
// Archival exports carry decorative unicode punctuation and fragments of
// embedded markup (JATS, HTML) that have no place in a lookup cache.
package scrub

import (
	"regexp"
	"strings"
)

// decorative punctuation normalized to plain ASCII equivalents.
var punctReplacer = strings.NewReplacer(
	"“", `"`,
	"”", `"`,
	"„", `"`,
	"‟", `"`,
	"‘", "'",
	"’", "'",
	"‚", "'",
	"‛", "'",
	"…", "...",
)

// tagPattern matches complete markup tags, namespaced (jats:p) or plain.
var tagPattern = regexp.MustCompile(`</?[a-zA-Z][a-zA-Z0-9:_-]*(?:\s[^<>]*)?>`)

// placeholders are values some sources emit instead of a missing field.
var placeholders = map[string]struct{}{
	"&NA":  {},
	"&NA;": {},
	"N/A":  {},
}

// Text normalizes decorative quotes and ellipses to ASCII and strips
// embedded markup tags, leaving inner text intact.
func Text(raw string) string {
	cleaned := punctReplacer.Replace(raw)
	cleaned = tagPattern.ReplaceAllString(cleaned, "")
	return strings.TrimSpace(cleaned)
}

// CleanString scrubs raw and collapses empty or placeholder results to the
// empty string, so callers persist NULL instead of junk values.
func CleanString(raw string) string {
	cleaned := Text(raw)
	if _, ok := placeholders[cleaned]; ok {
		return ""
	}
	return cleaned
}
