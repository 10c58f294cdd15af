package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/spacetravelling/internal/cms"
	"github.com/spacetravelling/internal/richtext"
)

// ErrMalformedDocument marks a CMS record that lacks a required field or has one of the wrong shape.
var ErrMalformedDocument = errors.New("malformed cms document")

// FieldError reports which field of which document failed to normalize.
type FieldError struct {
	UID    string
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: document %q field %q: %s", ErrMalformedDocument, e.UID, e.Field, e.Reason)
}

func (e *FieldError) Unwrap() error {
	return ErrMalformedDocument
}

var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05Z0700",
}

// NormalizeSummary keeps the fields the post list needs.
func NormalizeSummary(doc cms.RawDocument) (PostSummary, error) {
	if err := requireEnvelope(doc); err != nil {
		return PostSummary{}, err
	}
	first, err := parseTimestamp(doc, "first_publication_date", doc.FirstPublicationDate)
	if err != nil {
		return PostSummary{}, err
	}
	title, err := stringField(doc, "title", true)
	if err != nil {
		return PostSummary{}, err
	}
	subtitle, err := stringField(doc, "subtitle", false)
	if err != nil {
		return PostSummary{}, err
	}
	author, err := stringField(doc, "author", false)
	if err != nil {
		return PostSummary{}, err
	}

	return PostSummary{
		UID:                  doc.UID,
		FirstPublicationDate: first,
		Title:                title,
		Subtitle:             subtitle,
		Author:               author,
	}, nil
}

// NormalizePost converts a single post record. Rich-text bodies are passed through as blocks.
func NormalizePost(doc cms.RawDocument) (Post, error) {
	if err := requireEnvelope(doc); err != nil {
		return Post{}, err
	}
	first, err := parseTimestamp(doc, "first_publication_date", doc.FirstPublicationDate)
	if err != nil {
		return Post{}, err
	}
	last, err := parseTimestamp(doc, "last_publication_date", doc.LastPublicationDate)
	if err != nil {
		return Post{}, err
	}
	title, err := stringField(doc, "title", true)
	if err != nil {
		return Post{}, err
	}
	author, err := stringField(doc, "author", false)
	if err != nil {
		return Post{}, err
	}
	banner, err := bannerURL(doc)
	if err != nil {
		return Post{}, err
	}
	content, err := sections(doc)
	if err != nil {
		return Post{}, err
	}

	return Post{
		ID:                   doc.ID,
		UID:                  doc.UID,
		FirstPublicationDate: first,
		LastPublicationDate:  last,
		Title:                title,
		BannerURL:            banner,
		Author:               author,
		Content:              content,
	}, nil
}

// NormalizeLink returns the first result that is not excludeID, or nil when there is none.
func NormalizeLink(resp cms.SearchResponse, excludeID string) (*PostLink, error) {
	for _, doc := range resp.Results {
		if doc.ID == excludeID {
			continue
		}
		if err := requireEnvelope(doc); err != nil {
			return nil, err
		}
		title, err := stringField(doc, "title", true)
		if err != nil {
			return nil, err
		}
		return &PostLink{UID: doc.UID, Title: title}, nil
	}
	return nil, nil
}

// NormalizeFeedPage converts one search page, keeping result order.
func NormalizeFeedPage(resp cms.SearchResponse) (FeedPage, error) {
	page := FeedPage{Results: make([]PostSummary, 0, len(resp.Results))}
	for _, doc := range resp.Results {
		summary, err := NormalizeSummary(doc)
		if err != nil {
			return FeedPage{}, err
		}
		page.Results = append(page.Results, summary)
	}
	if resp.NextPage != nil && *resp.NextPage != "" {
		next := *resp.NextPage
		page.NextPageCursor = &next
	}
	return page, nil
}

func requireEnvelope(doc cms.RawDocument) error {
	if doc.UID == "" {
		return &FieldError{UID: doc.ID, Field: "uid", Reason: "missing"}
	}
	if doc.Data == nil {
		return &FieldError{UID: doc.UID, Field: "data", Reason: "missing"}
	}
	return nil
}

func stringField(doc cms.RawDocument, key string, required bool) (string, error) {
	raw, ok := doc.Data[key]
	if !ok || raw == nil {
		if required {
			return "", &FieldError{UID: doc.UID, Field: key, Reason: "missing"}
		}
		return "", nil
	}
	value, ok := raw.(string)
	if !ok {
		return "", &FieldError{UID: doc.UID, Field: key, Reason: fmt.Sprintf("expected string, got %T", raw)}
	}
	return value, nil
}

func parseTimestamp(doc cms.RawDocument, field string, raw *string) (*time.Time, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, *raw); err == nil {
			return &t, nil
		}
	}
	return nil, &FieldError{UID: doc.UID, Field: field, Reason: fmt.Sprintf("unparsable timestamp %q", *raw)}
}

func bannerURL(doc cms.RawDocument) (string, error) {
	raw, ok := doc.Data["banner"]
	if !ok || raw == nil {
		return "", nil
	}
	banner, ok := raw.(map[string]any)
	if !ok {
		return "", &FieldError{UID: doc.UID, Field: "banner", Reason: fmt.Sprintf("expected object, got %T", raw)}
	}
	url, _ := banner["url"].(string)
	return url, nil
}

func sections(doc cms.RawDocument) ([]Section, error) {
	raw, ok := doc.Data["content"]
	if !ok || raw == nil {
		return []Section{}, nil
	}
	items, ok := raw.([]any)
	if !ok {
		return nil, &FieldError{UID: doc.UID, Field: "content", Reason: fmt.Sprintf("expected list, got %T", raw)}
	}

	out := make([]Section, 0, len(items))
	for i, item := range items {
		group, ok := item.(map[string]any)
		if !ok {
			return nil, &FieldError{UID: doc.UID, Field: fmt.Sprintf("content[%d]", i), Reason: fmt.Sprintf("expected object, got %T", item)}
		}
		heading, _ := group["heading"].(string)
		body, err := richtext.Parse(group["body"])
		if err != nil {
			return nil, &FieldError{UID: doc.UID, Field: fmt.Sprintf("content[%d].body", i), Reason: err.Error()}
		}
		out = append(out, Section{Heading: heading, Body: body})
	}
	return out, nil
}
