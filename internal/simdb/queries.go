package simdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"simdb/internal/sim"
)

// GetPublication fetches one publication row by SIM identifier, or nil when
// no row exists.
func (s *Store) GetPublication(ctx context.Context, simPubID string) (*sim.Publication, error) {
	var (
		pub            sim.Publication
		issn           sql.NullString
		pubType        sql.NullString
		publisher      sql.NullString
		containerISSNL sql.NullString
		containerIdent sql.NullString
		wikidataQID    sql.NullString
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT sim_pubid, pub_collection, title, issn, pub_type, publisher,
                container_issnl, container_ident, wikidata_qid
         FROM sim_pub WHERE sim_pubid = ?`, simPubID,
	).Scan(
		&pub.SimPubID,
		&pub.PubCollection,
		&pub.Title,
		&issn,
		&pubType,
		&publisher,
		&containerISSNL,
		&containerIdent,
		&wikidataQID,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get publication %s: %w", simPubID, err)
	}
	pub.ISSN = issn.String
	pub.PubType = pubType.String
	pub.Publisher = publisher.String
	pub.ContainerISSNL = containerISSNL.String
	pub.ContainerIdent = containerIdent.String
	pub.WikidataQID = wikidataQID.String
	return &pub, nil
}

// GetIssue fetches one issue row by item identifier, or nil when no row
// exists.
func (s *Store) GetIssue(ctx context.Context, issueItem string) (*sim.Issue, error) {
	var (
		issue        sim.Issue
		year         sql.NullInt64
		volume       sql.NullString
		issueNo      sql.NullString
		firstPage    sql.NullInt64
		lastPage     sql.NullInt64
		releaseCount sql.NullInt64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT issue_item, sim_pubid, year, volume, issue,
                first_page, last_page, release_count
         FROM sim_issue WHERE issue_item = ?`, issueItem,
	).Scan(
		&issue.IssueItem,
		&issue.SimPubID,
		&year,
		&volume,
		&issueNo,
		&firstPage,
		&lastPage,
		&releaseCount,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get issue %s: %w", issueItem, err)
	}
	issue.Year = intPointer(year)
	issue.Volume = volume.String
	issue.Issue = issueNo.String
	issue.FirstPage = intPointer(firstPage)
	issue.LastPage = intPointer(lastPage)
	issue.ReleaseCount = intPointer(releaseCount)
	return &issue, nil
}

// IssueGroups aggregates stored issue rows by (publication, year, volume),
// summing per-issue release counts. Feeds the snapshot pass; every group
// returned is by construction present among scanned issues.
func (s *Store) IssueGroups(ctx context.Context) ([]sim.ReleaseCounts, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT sim_pubid, year, volume, SUM(COALESCE(release_count, 0))
         FROM sim_issue
         GROUP BY sim_pubid, year, volume
         ORDER BY sim_pubid, year, volume`,
	)
	if err != nil {
		return nil, fmt.Errorf("query issue groups: %w", err)
	}
	defer rows.Close()

	var groups []sim.ReleaseCounts
	for rows.Next() {
		var (
			group  sim.ReleaseCounts
			year   sql.NullInt64
			volume sql.NullString
			total  int
		)
		if err := rows.Scan(&group.SimPubID, &year, &volume, &total); err != nil {
			return nil, fmt.Errorf("scan issue group: %w", err)
		}
		group.Year = intPointer(year)
		group.Volume = volume.String
		group.YearInSim = true
		group.ReleaseCount = total
		groups = append(groups, group)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate issue groups: %w", err)
	}
	return groups, nil
}

// GetReleaseCounts fetches one snapshot row by its natural key, or nil when
// no row exists. Year may be nil for issues without a derivable year.
func (s *Store) GetReleaseCounts(ctx context.Context, simPubID string, year *int, volume string) (*sim.ReleaseCounts, error) {
	var (
		row       sim.ReleaseCounts
		yearCol   sql.NullInt64
		volumeCol sql.NullString
		yearInSim int
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT sim_pubid, year, volume, year_in_sim, release_count
         FROM release_counts
         WHERE sim_pubid = ? AND year IS ? AND volume IS ?`,
		simPubID, nullableInt(year), nullableString(volume),
	).Scan(&row.SimPubID, &yearCol, &volumeCol, &yearInSim, &row.ReleaseCount)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get release counts for %s: %w", simPubID, err)
	}
	row.Year = intPointer(yearCol)
	row.Volume = volumeCol.String
	row.YearInSim = yearInSim != 0
	return &row, nil
}
