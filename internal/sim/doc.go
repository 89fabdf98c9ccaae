// Package sim models metadata records for scanned periodical microfilm
// (SIM) collections and the derivations performed on them during ingestion.
//
// Two input shapes exist: publication-level records (one per scanned
// periodical collection) and issue-level records (one per scanned item).
// Both arrive as newline-delimited JSON with a nested "metadata" object.
// The parser is strict: structurally invalid records are errors, because
// downstream enrichment assumes the periodicals domain.
package sim
