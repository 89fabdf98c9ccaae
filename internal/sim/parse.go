package sim

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"simdb/internal/scrub"
)

// ErrNotPeriodical marks records whose collection list lacks the
// periodicals marker. Ingestion treats this as a fatal input defect.
var ErrNotPeriodical = errors.New("record is not periodical collection content")

// collectionMarker identifies SIM periodical content in the metadata
// collection list.
const collectionMarker = "periodicals"

type rawEnvelope struct {
	Metadata    *rawMetadata  `json:"metadata"`
	PageNumbers *rawPageBlock `json:"page_numbers"`
}

type rawMetadata struct {
	SimPubID   string     `json:"sim_pubid"`
	Identifier string     `json:"identifier"`
	Title      string     `json:"title"`
	ISSN       string     `json:"issn"`
	PubType    string     `json:"pub_type"`
	Publisher  string     `json:"publisher"`
	Date       string     `json:"date"`
	Volume     string     `json:"volume"`
	Issue      string     `json:"issue"`
	Collection collectionField `json:"collection"`
}

type rawPageBlock struct {
	Pages []PageDescriptor `json:"pages"`
}

// PageDescriptor is one entry of an item's raw page-number list. The
// pageNumber value is free-form: it may be blank, roman-numeral, or
// otherwise non-numeric.
type PageDescriptor struct {
	PageNumber string `json:"pageNumber"`
}

// collectionField accepts either a JSON string or an array of strings;
// archival metadata uses both shapes. Marker matching follows the shape:
// exact membership for the list form, substring for the string form.
type collectionField struct {
	values []string
	single bool
}

func (c *collectionField) UnmarshalJSON(data []byte) error {
	var one string
	if err := json.Unmarshal(data, &one); err == nil {
		c.values = []string{one}
		c.single = true
		return nil
	}
	c.single = false
	return json.Unmarshal(data, &c.values)
}

func (c collectionField) contains(marker string) bool {
	if c.single {
		return len(c.values) == 1 && strings.Contains(c.values[0], marker)
	}
	for _, value := range c.values {
		if value == marker {
			return true
		}
	}
	return false
}

func parseEnvelope(line []byte) (*rawEnvelope, error) {
	var env rawEnvelope
	if err := json.Unmarshal(line, &env); err != nil {
		return nil, fmt.Errorf("parse record: %w", err)
	}
	if env.Metadata == nil {
		return nil, errors.New("record missing metadata object")
	}
	if !env.Metadata.Collection.contains(collectionMarker) {
		return nil, ErrNotPeriodical
	}
	return &env, nil
}

// ParsePublication parses one line of publication-level metadata. Titles and
// publisher strings are scrubbed of decorative characters and markup before
// they reach the store.
func ParsePublication(line []byte) (*Publication, error) {
	env, err := parseEnvelope(line)
	if err != nil {
		return nil, err
	}
	meta := env.Metadata
	if meta.SimPubID == "" {
		return nil, errors.New("publication record missing sim_pubid")
	}
	if meta.Identifier == "" {
		return nil, errors.New("publication record missing identifier")
	}
	return &Publication{
		SimPubID:      meta.SimPubID,
		PubCollection: meta.Identifier,
		Title:         scrub.CleanString(meta.Title),
		ISSN:          strings.TrimSpace(meta.ISSN),
		PubType:       meta.PubType,
		Publisher:     scrub.CleanString(meta.Publisher),
	}, nil
}

// ParseIssue parses one line of issue-level metadata, deriving the year from
// the record's date and the page range from its page-number list. A date that
// does not start with a 4-digit year is a hard failure, not a silent nil.
// Meta items are returned without derived fields: callers drop them anyway,
// and their free-form dates must not fail the run.
func ParseIssue(line []byte) (*Issue, error) {
	env, err := parseEnvelope(line)
	if err != nil {
		return nil, err
	}
	meta := env.Metadata
	if meta.Identifier == "" {
		return nil, errors.New("issue record missing identifier")
	}
	if meta.SimPubID == "" {
		return nil, fmt.Errorf("issue record %s missing sim_pubid", meta.Identifier)
	}

	issue := &Issue{
		IssueItem: meta.Identifier,
		SimPubID:  meta.SimPubID,
		Volume:    meta.Volume,
		Issue:     meta.Issue,
	}
	if IsMetaItem(issue.IssueItem) {
		return issue, nil
	}

	if meta.Date != "" {
		year, err := yearFromDate(meta.Date)
		if err != nil {
			return nil, fmt.Errorf("issue record %s: %w", meta.Identifier, err)
		}
		issue.Year = &year
	}

	if env.PageNumbers != nil {
		issue.FirstPage, issue.LastPage = PageRange(env.PageNumbers.Pages)
	}

	return issue, nil
}

func yearFromDate(date string) (int, error) {
	if len(date) < 4 {
		return 0, fmt.Errorf("date %q too short to carry a year", date)
	}
	year, err := strconv.Atoi(date[:4])
	if err != nil {
		return 0, fmt.Errorf("date %q does not start with a numeric year", date)
	}
	return year, nil
}
