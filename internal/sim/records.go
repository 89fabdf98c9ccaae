package sim

// Publication is one scanned periodical collection, keyed by its SIM
// publication identifier. The three container fields are populated together
// when catalog resolution succeeds and left empty together otherwise.
type Publication struct {
	SimPubID      string
	PubCollection string
	Title         string
	ISSN          string
	PubType       string
	Publisher     string

	ContainerISSNL string
	ContainerIdent string
	WikidataQID    string
}

// Resolved reports whether container resolution populated this record.
func (p *Publication) Resolved() bool {
	return p.ContainerIdent != ""
}

// Issue is one scanned issue item belonging to a publication. Optional
// integers are nil when the source metadata does not carry them.
type Issue struct {
	IssueItem    string
	SimPubID     string
	Year         *int
	Volume       string
	Issue        string
	FirstPage    *int
	LastPage     *int
	ReleaseCount *int
}

// ReleaseCounts is one holdings-versus-catalog summary row for a
// (publication, year, volume) group.
type ReleaseCounts struct {
	SimPubID     string
	Year         *int
	Volume       string
	YearInSim    bool
	ReleaseCount int
}
