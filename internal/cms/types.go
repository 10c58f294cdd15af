package cms

import (
	"fmt"
	"strconv"
	"strings"
)

// RawDocument is a CMS record as returned by the API. Data is left untyped;
// internal/service owns the conversion into view models.
type RawDocument struct {
	ID                   string         `json:"id"`
	UID                  string         `json:"uid"`
	Type                 string         `json:"type"`
	Tags                 []string       `json:"tags"`
	Lang                 string         `json:"lang"`
	FirstPublicationDate *string        `json:"first_publication_date"`
	LastPublicationDate  *string        `json:"last_publication_date"`
	Data                 map[string]any `json:"data"`
}

// SearchResponse is one page of a documents search.
type SearchResponse struct {
	Page             int           `json:"page"`
	ResultsPerPage   int           `json:"results_per_page"`
	ResultsSize      int           `json:"results_size"`
	TotalResultsSize int           `json:"total_results_size"`
	TotalPages       int           `json:"total_pages"`
	NextPage         *string       `json:"next_page"`
	PrevPage         *string       `json:"prev_page"`
	Results          []RawDocument `json:"results"`
}

// Ref is a content version reference from the API descriptor.
type Ref struct {
	ID          string `json:"id"`
	Ref         string `json:"ref"`
	Label       string `json:"label"`
	IsMasterRef bool   `json:"isMasterRef"`
}

type apiDescriptor struct {
	Refs []Ref `json:"refs"`
}

// Predicate is a single query predicate in the CMS query language.
type Predicate string

// At matches documents whose path equals value, e.g. At("document.type", "posts").
func At(path, value string) Predicate {
	return Predicate(fmt.Sprintf("[at(%s, %s)]", path, strconv.Quote(value)))
}

// DocumentType is the predicate used for every post query.
func DocumentType(docType string) Predicate {
	return At("document.type", docType)
}

func encodePredicates(predicates []Predicate) string {
	parts := make([]string, 0, len(predicates))
	for _, p := range predicates {
		parts = append(parts, string(p))
	}
	return "[" + strings.Join(parts, "") + "]"
}

// Ordering sorts query results by a document field.
type Ordering struct {
	Field string
	Desc  bool
}

// FirstPublished orders by first publication date.
func FirstPublished(desc bool) Ordering {
	return Ordering{Field: "document.first_publication_date", Desc: desc}
}

func (o Ordering) String() string {
	if o.Desc {
		return o.Field + " desc"
	}
	return o.Field
}

func encodeOrderings(orderings []Ordering) string {
	parts := make([]string, 0, len(orderings))
	for _, o := range orderings {
		parts = append(parts, o.String())
	}
	return "[" + strings.Join(parts, ",") + "]"
}

// QueryOptions tunes a search. PageCursor, when set, is the NextPage URL of a
// previous response and overrides every other option.
type QueryOptions struct {
	Ref        string
	PageCursor string
	PageSize   int
	Orderings  []Ordering
	// After returns only documents positioned after this document id in the ordering.
	After string
}
