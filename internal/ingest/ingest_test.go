package ingest_test

import (
	"context"
	"strings"
	"testing"

	"simdb/internal/catalog"
	"simdb/internal/ingest"
	"simdb/internal/scholar"
	"simdb/internal/simdb"
	"simdb/internal/testsupport"
)

type fakeCatalog struct {
	containers map[string]*catalog.Container
	calls      int
	fail       error
}

func (f *fakeCatalog) LookupContainer(ctx context.Context, issnl string) (*catalog.Container, error) {
	f.calls++
	if f.fail != nil {
		return nil, f.fail
	}
	container, ok := f.containers[issnl]
	if !ok {
		return nil, catalog.ErrNotFound
	}
	return container, nil
}

type fakeScholar struct {
	count   int
	fail    error
	filters []scholar.ReleaseFilter
}

func (f *fakeScholar) CountReleases(ctx context.Context, filter scholar.ReleaseFilter) (int, error) {
	f.filters = append(f.filters, filter)
	if f.fail != nil {
		return 0, f.fail
	}
	return f.count, nil
}

func newTestIngestor(t testing.TB, store *simdb.Store, cat *fakeCatalog, sch *fakeScholar) *ingest.Ingestor {
	t.Helper()
	if cat == nil {
		cat = &fakeCatalog{}
	}
	if sch == nil {
		sch = &fakeScholar{}
	}
	return ingest.New(store, cat, sch, nil)
}

const pubLine = `{"metadata": {"sim_pubid": "pub-1", "identifier": "sim_gazette", "title": "Gazette", "issn": "1234-5678", "collection": ["periodicals"]}}`

func issueLine(item, volume, issue string) string {
	return `{"metadata": {"sim_pubid": "pub-1", "identifier": "` + item +
		`", "date": "1998-03-01", "volume": "` + volume + `", "issue": "` + issue +
		`", "collection": ["periodicals"]}}`
}

func TestLoadPublicationsResolvesAndPersists(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	cat := &fakeCatalog{containers: map[string]*catalog.Container{
		"1234-5678": {ISSNL: "1234-5678", Ident: "abc123", WikidataQID: "Q42"},
	}}
	ingestor := newTestIngestor(t, store, cat, nil)

	loaded, err := ingestor.LoadPublications(context.Background(), strings.NewReader(pubLine+"\n"))
	if err != nil {
		t.Fatalf("LoadPublications failed: %v", err)
	}
	if loaded != 1 {
		t.Fatalf("expected 1 record loaded, got %d", loaded)
	}

	pub, err := store.GetPublication(context.Background(), "pub-1")
	if err != nil {
		t.Fatalf("GetPublication failed: %v", err)
	}
	if pub == nil || pub.ContainerIdent != "abc123" || pub.ContainerISSNL != "1234-5678" || pub.WikidataQID != "Q42" {
		t.Fatalf("expected resolved container fields, got %#v", pub)
	}
}

func TestLoadPublicationsWithoutISSNSkipsLookup(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	cat := &fakeCatalog{}
	ingestor := newTestIngestor(t, store, cat, nil)

	line := `{"metadata": {"sim_pubid": "pub-2", "identifier": "sim_no-issn", "title": "No ISSN", "collection": ["periodicals"]}}`
	if _, err := ingestor.LoadPublications(context.Background(), strings.NewReader(line+"\n")); err != nil {
		t.Fatalf("LoadPublications failed: %v", err)
	}
	if cat.calls != 0 {
		t.Fatalf("expected no catalog calls, got %d", cat.calls)
	}

	pub, err := store.GetPublication(context.Background(), "pub-2")
	if err != nil {
		t.Fatalf("GetPublication failed: %v", err)
	}
	if pub.ContainerIdent != "" || pub.ContainerISSNL != "" || pub.WikidataQID != "" {
		t.Fatalf("expected unresolved fields, got %#v", pub)
	}
}

func TestLoadPublicationsNotFoundIsNotAnError(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	cat := &fakeCatalog{}
	ingestor := newTestIngestor(t, store, cat, nil)

	loaded, err := ingestor.LoadPublications(context.Background(), strings.NewReader(pubLine+"\n"))
	if err != nil {
		t.Fatalf("LoadPublications failed: %v", err)
	}
	if loaded != 1 {
		t.Fatalf("expected record loaded despite missing container, got %d", loaded)
	}
	if cat.calls != 1 {
		t.Fatalf("expected one lookup, got %d", cat.calls)
	}
}

func TestResolverCachesWithinRun(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	cat := &fakeCatalog{containers: map[string]*catalog.Container{
		"1234-5678": {ISSNL: "1234-5678", Ident: "abc123"},
	}}
	ingestor := newTestIngestor(t, store, cat, &fakeScholar{count: 2})

	input := pubLine + "\n" + pubLine + "\n"
	if _, err := ingestor.LoadPublications(context.Background(), strings.NewReader(input)); err != nil {
		t.Fatalf("LoadPublications failed: %v", err)
	}
	if cat.calls != 1 {
		t.Fatalf("expected exactly one lookup for repeated publication, got %d", cat.calls)
	}

	// Issue pass in the same run reuses the cache, not the store or network.
	issues := issueLine("sim_gazette_1998-03", "12", "3") + "\n"
	if _, err := ingestor.LoadIssues(context.Background(), strings.NewReader(issues)); err != nil {
		t.Fatalf("LoadIssues failed: %v", err)
	}
	if cat.calls != 1 {
		t.Fatalf("issue pass must not hit the catalog, got %d calls", cat.calls)
	}
}

func TestLoadPublicationsCatalogFailureAbortsBatch(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	cat := &fakeCatalog{fail: context.DeadlineExceeded}
	ingestor := newTestIngestor(t, store, cat, nil)

	if _, err := ingestor.LoadPublications(context.Background(), strings.NewReader(pubLine+"\n")); err == nil {
		t.Fatal("expected catalog failure to abort the run")
	}

	stats, err := store.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.Publications != 0 {
		t.Fatalf("expected rollback to leave store empty, got %d rows", stats.Publications)
	}
}

func TestLoadPublicationsMalformedLineIsFatal(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ingestor := newTestIngestor(t, store, nil, nil)

	input := pubLine + "\n{not json}\n"
	if _, err := ingestor.LoadPublications(context.Background(), strings.NewReader(input)); err == nil {
		t.Fatal("expected malformed line to fail the run")
	}

	stats, err := store.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.Publications != 0 {
		t.Fatalf("expected no partial commit, got %d rows", stats.Publications)
	}
}

func TestLoadPublicationsSkipsBlankLines(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ingestor := newTestIngestor(t, store, nil, nil)

	input := "\n   \n" + pubLine + "\n\n"
	loaded, err := ingestor.LoadPublications(context.Background(), strings.NewReader(input))
	if err != nil {
		t.Fatalf("LoadPublications failed: %v", err)
	}
	if loaded != 1 {
		t.Fatalf("expected 1 record, got %d", loaded)
	}
}

func TestLoadPublicationsIdempotentAcrossRuns(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	first := newTestIngestor(t, store, nil, nil)
	if _, err := first.LoadPublications(context.Background(), strings.NewReader(pubLine+"\n")); err != nil {
		t.Fatalf("first run failed: %v", err)
	}

	updated := `{"metadata": {"sim_pubid": "pub-1", "identifier": "sim_gazette", "title": "Gazette Renamed", "issn": "1234-5678", "collection": ["periodicals"]}}`
	second := newTestIngestor(t, store, nil, nil)
	if _, err := second.LoadPublications(context.Background(), strings.NewReader(updated+"\n")); err != nil {
		t.Fatalf("second run failed: %v", err)
	}

	stats, err := store.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.Publications != 1 {
		t.Fatalf("expected one row after re-ingestion, got %d", stats.Publications)
	}
	pub, err := store.GetPublication(context.Background(), "pub-1")
	if err != nil {
		t.Fatalf("GetPublication failed: %v", err)
	}
	if pub.Title != "Gazette Renamed" {
		t.Fatalf("expected last write to win, got %q", pub.Title)
	}
}

func TestLoadIssuesExcludesMetaItems(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ingestor := newTestIngestor(t, store, nil, nil)

	input := issueLine("sim_gazette_1998-03", "12", "3") + "\n" +
		issueLine("sim_gazette_1998-03_index", "12", "3") + "\n" +
		issueLine("sim_gazette_1998-03_contents", "12", "3") + "\n"
	loaded, err := ingestor.LoadIssues(context.Background(), strings.NewReader(input))
	if err != nil {
		t.Fatalf("LoadIssues failed: %v", err)
	}
	if loaded != 1 {
		t.Fatalf("expected only the content item loaded, got %d", loaded)
	}

	for _, item := range []string{"sim_gazette_1998-03_index", "sim_gazette_1998-03_contents"} {
		issue, err := store.GetIssue(context.Background(), item)
		if err != nil {
			t.Fatalf("GetIssue failed: %v", err)
		}
		if issue != nil {
			t.Fatalf("meta item %s must not be persisted", item)
		}
	}
}

func TestLoadIssuesMetaItemJunkDateDoesNotAbort(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ingestor := newTestIngestor(t, store, nil, nil)

	metaItem := `{"metadata": {"sim_pubid": "pub-1", "identifier": "sim_gazette_1998_index", "date": "n.d.", "collection": ["periodicals"]}}`
	input := metaItem + "\n" + issueLine("sim_gazette_1998-03", "12", "3") + "\n"
	loaded, err := ingestor.LoadIssues(context.Background(), strings.NewReader(input))
	if err != nil {
		t.Fatalf("LoadIssues failed: %v", err)
	}
	if loaded != 1 {
		t.Fatalf("expected only the content item loaded, got %d", loaded)
	}

	skipped, err := store.GetIssue(context.Background(), "sim_gazette_1998_index")
	if err != nil {
		t.Fatalf("GetIssue failed: %v", err)
	}
	if skipped != nil {
		t.Fatalf("meta item must not be persisted, got %#v", skipped)
	}
}

func TestLoadIssuesReleaseCountPrecondition(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	// Seed the container mapping via a publication run.
	cat := &fakeCatalog{containers: map[string]*catalog.Container{
		"1234-5678": {ISSNL: "1234-5678", Ident: "abc123"},
	}}
	seed := newTestIngestor(t, store, cat, nil)
	if _, err := seed.LoadPublications(context.Background(), strings.NewReader(pubLine+"\n")); err != nil {
		t.Fatalf("seed publications failed: %v", err)
	}

	sch := &fakeScholar{count: 25}
	freshCat := &fakeCatalog{}
	ingestor := newTestIngestor(t, store, freshCat, sch)

	input := issueLine("sim_gazette_1998-03", "12", "3") + "\n" +
		issueLine("sim_gazette_1998-04", "12", "") + "\n"
	if _, err := ingestor.LoadIssues(context.Background(), strings.NewReader(input)); err != nil {
		t.Fatalf("LoadIssues failed: %v", err)
	}

	if len(sch.filters) != 1 {
		t.Fatalf("expected exactly one count query, got %d", len(sch.filters))
	}
	filter := sch.filters[0]
	if filter.ContainerID != "abc123" || filter.Year != 1998 || filter.Volume != "12" || filter.Issue != "3" {
		t.Fatalf("unexpected count filter: %#v", filter)
	}
	if freshCat.calls != 0 {
		t.Fatalf("issue pass must never call the catalog, got %d calls", freshCat.calls)
	}

	counted, err := store.GetIssue(context.Background(), "sim_gazette_1998-03")
	if err != nil {
		t.Fatalf("GetIssue failed: %v", err)
	}
	if counted.ReleaseCount == nil || *counted.ReleaseCount != 25 {
		t.Fatalf("expected release count 25, got %#v", counted.ReleaseCount)
	}

	uncounted, err := store.GetIssue(context.Background(), "sim_gazette_1998-04")
	if err != nil {
		t.Fatalf("GetIssue failed: %v", err)
	}
	if uncounted.ReleaseCount != nil {
		t.Fatalf("expected absent release count without issue number, got %v", *uncounted.ReleaseCount)
	}
}

func TestLoadIssuesUnresolvedPublicationSkipsCount(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	sch := &fakeScholar{count: 9}
	ingestor := newTestIngestor(t, store, nil, sch)

	input := issueLine("sim_gazette_1998-03", "12", "3") + "\n"
	if _, err := ingestor.LoadIssues(context.Background(), strings.NewReader(input)); err != nil {
		t.Fatalf("LoadIssues failed: %v", err)
	}
	if len(sch.filters) != 0 {
		t.Fatalf("expected no count queries without container, got %d", len(sch.filters))
	}

	issue, err := store.GetIssue(context.Background(), "sim_gazette_1998-03")
	if err != nil {
		t.Fatalf("GetIssue failed: %v", err)
	}
	if issue == nil || issue.ReleaseCount != nil {
		t.Fatalf("expected persisted issue without release count, got %#v", issue)
	}
}

func TestAggregateReleaseCounts(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	cat := &fakeCatalog{containers: map[string]*catalog.Container{
		"1234-5678": {ISSNL: "1234-5678", Ident: "abc123"},
	}}
	sch := &fakeScholar{count: 5}
	ingestor := newTestIngestor(t, store, cat, sch)

	if _, err := ingestor.LoadPublications(context.Background(), strings.NewReader(pubLine+"\n")); err != nil {
		t.Fatalf("LoadPublications failed: %v", err)
	}
	input := issueLine("sim_gazette_1998-03", "12", "3") + "\n" +
		issueLine("sim_gazette_1998-04", "12", "4") + "\n"
	if _, err := ingestor.LoadIssues(context.Background(), strings.NewReader(input)); err != nil {
		t.Fatalf("LoadIssues failed: %v", err)
	}

	groups, err := ingestor.AggregateReleaseCounts(context.Background())
	if err != nil {
		t.Fatalf("AggregateReleaseCounts failed: %v", err)
	}
	if groups != 1 {
		t.Fatalf("expected 1 snapshot group, got %d", groups)
	}

	year := 1998
	snapshot, err := store.GetReleaseCounts(context.Background(), "pub-1", &year, "12")
	if err != nil {
		t.Fatalf("GetReleaseCounts failed: %v", err)
	}
	if snapshot == nil || snapshot.ReleaseCount != 10 || !snapshot.YearInSim {
		t.Fatalf("unexpected snapshot: %#v", snapshot)
	}
}

func TestAggregateReleaseCountsRepeatableForUndatedIssues(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ingestor := newTestIngestor(t, store, nil, nil)

	undated := `{"metadata": {"sim_pubid": "pub-1", "identifier": "sim_gazette_undated", "collection": ["periodicals"]}}`
	if _, err := ingestor.LoadIssues(context.Background(), strings.NewReader(undated+"\n")); err != nil {
		t.Fatalf("LoadIssues failed: %v", err)
	}

	for run := 0; run < 2; run++ {
		groups, err := ingestor.AggregateReleaseCounts(context.Background())
		if err != nil {
			t.Fatalf("AggregateReleaseCounts run %d failed: %v", run+1, err)
		}
		if groups != 1 {
			t.Fatalf("expected 1 group on run %d, got %d", run+1, groups)
		}
	}

	stats, err := store.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.ReleaseCounts != 1 {
		t.Fatalf("expected 1 snapshot row after repeated aggregation, got %d", stats.ReleaseCounts)
	}

	snapshot, err := store.GetReleaseCounts(context.Background(), "pub-1", nil, "")
	if err != nil {
		t.Fatalf("GetReleaseCounts failed: %v", err)
	}
	if snapshot == nil || !snapshot.YearInSim || snapshot.ReleaseCount != 0 {
		t.Fatalf("unexpected undated snapshot: %#v", snapshot)
	}
}
