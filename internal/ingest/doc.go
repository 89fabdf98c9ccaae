// Package ingest drives one pass over a SIM metadata input stream:
// parsing records, resolving publications to catalog containers, enriching
// issues with page ranges and release counts, and upserting the result in
// a single store transaction per batch.
//
// Resolution outcomes are memoized in a run-scoped cache owned by the
// Resolver, so the issue pass never repeats an external lookup that the
// publication pass (or a previous store write) already answered.
package ingest
