package sim

import "strings"

// MetaItemSuffixes lists item-identifier suffixes that mark non-content
// meta items (indexes, tables of contents). The heuristic is known to be
// incomplete: combined variants like "_index-contents" or part splits like
// "_part_1" are not yet covered.
// TODO: extend for "_index-contents" and "_part_N" suffixes once sample
// identifiers are collected.
var MetaItemSuffixes = []string{"_index", "_contents"}

// IsMetaItem reports whether an issue item identifier names a meta item
// that must be excluded from persistence entirely.
func IsMetaItem(issueItem string) bool {
	for _, suffix := range MetaItemSuffixes {
		if strings.HasSuffix(issueItem, suffix) {
			return true
		}
	}
	return false
}
