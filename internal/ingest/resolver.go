package ingest

import (
	"context"
	"errors"

	gocache "github.com/patrickmn/go-cache"

	"simdb/internal/catalog"
	"simdb/internal/simdb"
)

// Resolver maps SIM publication identifiers to catalog containers, memoizing
// every outcome (including absence) for the lifetime of one ingestion run.
// The cache is deliberately never invalidated within a run.
type Resolver struct {
	catalog catalog.Client
	store   *simdb.Store
	cache   *gocache.Cache
}

// NewResolver constructs a run-scoped resolver over the catalog client and
// the store's previously persisted container mappings.
func NewResolver(client catalog.Client, store *simdb.Store) *Resolver {
	return &Resolver{
		catalog: client,
		store:   store,
		cache:   gocache.New(gocache.NoExpiration, 0),
	}
}

// Resolve returns the container for a publication, issuing at most one
// external lookup per publication per run. Publications without an ISSN
// never trigger a lookup. A not-found response is a normal outcome cached
// as absence; any other catalog failure is returned unwrapped so the run
// aborts.
func (r *Resolver) Resolve(ctx context.Context, simPubID, issn string) (*catalog.Container, error) {
	if cached, ok := r.cache.Get(simPubID); ok {
		container, _ := cached.(*catalog.Container)
		return container, nil
	}

	var container *catalog.Container
	if issn != "" {
		found, err := r.catalog.LookupContainer(ctx, issn)
		switch {
		case err == nil:
			container = found
		case errors.Is(err, catalog.ErrNotFound):
			// normal outcome, cached as absence
		default:
			return nil, err
		}
	}

	r.cache.Set(simPubID, container, gocache.NoExpiration)
	return container, nil
}

// ContainerID answers the issue-pass lookup: consult the cache, then fall
// back to a container mapping persisted by an earlier publication run.
// Never issues an external call; an unknown publication resolves to the
// empty string.
func (r *Resolver) ContainerID(ctx context.Context, simPubID string) (string, error) {
	if cached, ok := r.cache.Get(simPubID); ok {
		if container, _ := cached.(*catalog.Container); container != nil {
			return container.Ident, nil
		}
		return "", nil
	}

	ident, err := r.store.LookupContainer(ctx, simPubID)
	if err != nil {
		return "", err
	}

	var container *catalog.Container
	if ident != "" {
		container = &catalog.Container{Ident: ident}
	}
	r.cache.Set(simPubID, container, gocache.NoExpiration)
	return ident, nil
}
