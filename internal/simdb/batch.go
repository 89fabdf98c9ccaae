package simdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"simdb/internal/sim"
)

// Batch wraps one transaction covering a full input stream. All upserts in
// a batch land together on Commit; any failure partway through leaves the
// store unchanged once Rollback runs.
type Batch struct {
	tx *sql.Tx
}

// Begin opens a batch transaction.
func (s *Store) Begin(ctx context.Context) (*Batch, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin batch: %w", err)
	}
	return &Batch{tx: tx}, nil
}

// Commit commits the batch.
func (b *Batch) Commit() error {
	if err := b.tx.Commit(); err != nil {
		return fmt.Errorf("commit batch: %w", err)
	}
	return nil
}

// Rollback discards the batch. Safe to call after Commit.
func (b *Batch) Rollback() error {
	if err := b.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return fmt.Errorf("rollback batch: %w", err)
	}
	return nil
}

// UpsertPublication replaces any existing row sharing the publication's
// SIM identifier, last write wins.
func (b *Batch) UpsertPublication(ctx context.Context, pub *sim.Publication) error {
	_, err := b.tx.ExecContext(ctx,
		`INSERT OR REPLACE INTO sim_pub (
            sim_pubid, pub_collection, title, issn, pub_type, publisher,
            container_issnl, container_ident, wikidata_qid
        ) VALUES (?,?,?,?,?,?,?,?,?)`,
		pub.SimPubID,
		pub.PubCollection,
		pub.Title,
		nullableString(pub.ISSN),
		nullableString(pub.PubType),
		nullableString(pub.Publisher),
		nullableString(pub.ContainerISSNL),
		nullableString(pub.ContainerIdent),
		nullableString(pub.WikidataQID),
	)
	if err != nil {
		return fmt.Errorf("upsert publication %s: %w", pub.SimPubID, err)
	}
	return nil
}

// UpsertIssue replaces any existing row sharing the issue's item identifier.
func (b *Batch) UpsertIssue(ctx context.Context, issue *sim.Issue) error {
	_, err := b.tx.ExecContext(ctx,
		`INSERT OR REPLACE INTO sim_issue (
            issue_item, sim_pubid, year, volume, issue,
            first_page, last_page, release_count
        ) VALUES (?,?,?,?,?,?,?,?)`,
		issue.IssueItem,
		issue.SimPubID,
		nullableInt(issue.Year),
		nullableString(issue.Volume),
		nullableString(issue.Issue),
		nullableInt(issue.FirstPage),
		nullableInt(issue.LastPage),
		nullableInt(issue.ReleaseCount),
	)
	if err != nil {
		return fmt.Errorf("upsert issue %s: %w", issue.IssueItem, err)
	}
	return nil
}

// ClearReleaseCounts drops every snapshot row inside the batch. SQLite
// treats NULL year and volume values as distinct in the primary key, so a
// rebuild must clear first; replacement alone would accumulate duplicate
// undated groups.
func (b *Batch) ClearReleaseCounts(ctx context.Context) error {
	if _, err := b.tx.ExecContext(ctx, `DELETE FROM release_counts`); err != nil {
		return fmt.Errorf("clear release counts: %w", err)
	}
	return nil
}

// UpsertReleaseCounts replaces any existing snapshot row sharing the
// (publication, year, volume) key. Keys with NULL columns never match an
// existing row; the rebuild pass handles those by clearing first.
func (b *Batch) UpsertReleaseCounts(ctx context.Context, row *sim.ReleaseCounts) error {
	_, err := b.tx.ExecContext(ctx,
		`INSERT OR REPLACE INTO release_counts (
            sim_pubid, year, volume, year_in_sim, release_count
        ) VALUES (?,?,?,?,?)`,
		row.SimPubID,
		nullableInt(row.Year),
		nullableString(row.Volume),
		boolToInt(row.YearInSim),
		row.ReleaseCount,
	)
	if err != nil {
		return fmt.Errorf("upsert release counts for %s: %w", row.SimPubID, err)
	}
	return nil
}
