package ingest

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"simdb/internal/catalog"
	"simdb/internal/logging"
	"simdb/internal/scholar"
	"simdb/internal/sim"
	"simdb/internal/simdb"
)

// maxLineBytes bounds a single metadata record. Archival exports carry
// large page-number lists, so the scanner buffer grows well past the
// bufio default.
const maxLineBytes = 16 * 1024 * 1024

// Ingestor drives ingestion passes against one store. Construct one per
// run; the resolver cache it owns is scoped to the Ingestor's lifetime.
type Ingestor struct {
	store    *simdb.Store
	resolver *Resolver
	scholar  scholar.Client
	logger   *slog.Logger
}

// New constructs an Ingestor with a fresh run-scoped resolver.
func New(store *simdb.Store, catalogClient catalog.Client, scholarClient scholar.Client, logger *slog.Logger) *Ingestor {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Ingestor{
		store:    store,
		resolver: NewResolver(catalogClient, store),
		scholar:  scholarClient,
		logger:   logger.With(slog.String("run_id", uuid.NewString())),
	}
}

// LoadPublications consumes one stream of publication-level JSON lines,
// resolving containers and upserting rows in a single batch transaction.
// Malformed lines and non-404 catalog failures abort the run with the
// batch rolled back.
func (in *Ingestor) LoadPublications(ctx context.Context, r io.Reader) (int, error) {
	batch, err := in.store.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer func() { _ = batch.Rollback() }()

	var loaded, resolved int
	scanner := newLineScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		pub, err := sim.ParsePublication(line)
		if err != nil {
			return loaded, fmt.Errorf("publication input line %d: %w", lineNo, err)
		}

		container, err := in.resolver.Resolve(ctx, pub.SimPubID, pub.ISSN)
		if err != nil {
			return loaded, fmt.Errorf("resolve container for %s: %w", pub.SimPubID, err)
		}
		if container != nil {
			pub.ContainerISSNL = container.ISSNL
			pub.ContainerIdent = container.Ident
			pub.WikidataQID = container.WikidataQID
			resolved++
		}

		if err := batch.UpsertPublication(ctx, pub); err != nil {
			return loaded, err
		}
		loaded++
	}
	if err := scanner.Err(); err != nil {
		return loaded, fmt.Errorf("read publication input: %w", err)
	}

	if err := batch.Commit(); err != nil {
		return loaded, err
	}

	in.logger.Info("publications loaded",
		slog.Int("records", loaded),
		slog.Int("resolved", resolved))
	return loaded, nil
}

// LoadIssues consumes one stream of issue-level JSON lines. Meta items
// (index/contents suffixes) are skipped entirely. Release counts are
// computed only when the owning publication resolved to a container and
// year, volume, and issue are all present.
func (in *Ingestor) LoadIssues(ctx context.Context, r io.Reader) (int, error) {
	batch, err := in.store.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer func() { _ = batch.Rollback() }()

	var loaded, skipped, counted int
	scanner := newLineScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		issue, err := sim.ParseIssue(line)
		if err != nil {
			return loaded, fmt.Errorf("issue input line %d: %w", lineNo, err)
		}
		if sim.IsMetaItem(issue.IssueItem) {
			skipped++
			continue
		}

		if issue.Year != nil && issue.Volume != "" && issue.Issue != "" {
			containerID, err := in.resolver.ContainerID(ctx, issue.SimPubID)
			if err != nil {
				return loaded, err
			}
			if containerID != "" {
				count, err := in.scholar.CountReleases(ctx, scholar.ReleaseFilter{
					ContainerID: containerID,
					Year:        *issue.Year,
					Volume:      issue.Volume,
					Issue:       issue.Issue,
				})
				if err != nil {
					return loaded, fmt.Errorf("count releases for %s: %w", issue.IssueItem, err)
				}
				issue.ReleaseCount = &count
				counted++
			}
		}

		if err := batch.UpsertIssue(ctx, issue); err != nil {
			return loaded, err
		}
		loaded++
	}
	if err := scanner.Err(); err != nil {
		return loaded, fmt.Errorf("read issue input: %w", err)
	}

	if err := batch.Commit(); err != nil {
		return loaded, err
	}

	in.logger.Info("issues loaded",
		slog.Int("records", loaded),
		slog.Int("meta_items_skipped", skipped),
		slog.Int("release_counts", counted))
	return loaded, nil
}

// AggregateReleaseCounts rebuilds the release_counts snapshot table from
// stored issue rows: one row per (publication, year, volume) group, marked
// as present in SIM, with the group's summed release count. The existing
// snapshot is cleared and rebuilt within one transaction, so re-running
// is idempotent even for groups with no derivable year.
func (in *Ingestor) AggregateReleaseCounts(ctx context.Context) (int, error) {
	groups, err := in.store.IssueGroups(ctx)
	if err != nil {
		return 0, err
	}

	batch, err := in.store.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer func() { _ = batch.Rollback() }()

	if err := batch.ClearReleaseCounts(ctx); err != nil {
		return 0, err
	}
	for i := range groups {
		if err := batch.UpsertReleaseCounts(ctx, &groups[i]); err != nil {
			return 0, err
		}
	}
	if err := batch.Commit(); err != nil {
		return 0, err
	}

	in.logger.Info("release counts aggregated", slog.Int("groups", len(groups)))
	return len(groups), nil
}

func newLineScanner(r io.Reader) *bufio.Scanner {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 256*1024), maxLineBytes)
	return scanner
}
