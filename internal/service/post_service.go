package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spacetravelling/internal/cms"
)

const (
	// PostType is the CMS document type of blog posts.
	PostType = "posts"

	staticPathsPageSize = 100
)

var ErrPostNotFound = errors.New("post not found")

// CMS is the part of the CMS client the post service needs.
type CMS interface {
	Query(ctx context.Context, predicates []cms.Predicate, opts cms.QueryOptions) (cms.SearchResponse, error)
	GetByUID(ctx context.Context, docType, uid string, opts cms.QueryOptions) (cms.RawDocument, error)
}

// PostServiceConfig tunes listing and formatting.
type PostServiceConfig struct {
	// PageSize of the home feed. Zero means 1.
	PageSize int
	// Ascending lists the oldest post first.
	Ascending bool
	Location  *time.Location
}

// DetailOptions carry per-request settings for Assemble.
type DetailOptions struct {
	// Ref selects a content version; empty means the published one.
	Ref      string
	Language string
}

// PostService reads posts from the CMS and assembles view models.
type PostService struct {
	cms      CMS
	pageSize int
	order    cms.Ordering
	loc      *time.Location
}

// NewPostService creates a PostService instance.
func NewPostService(client CMS, cfg PostServiceConfig) *PostService {
	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = 1
	}
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	return &PostService{
		cms:      client,
		pageSize: pageSize,
		order:    cms.FirstPublished(!cfg.Ascending),
		loc:      loc,
	}
}

// Location is the zone dates are rendered in.
func (s *PostService) Location() *time.Location {
	return s.loc
}

// FirstPage loads the first page of the feed.
func (s *PostService) FirstPage(ctx context.Context, ref string) (Feed, error) {
	resp, err := s.cms.Query(ctx, []cms.Predicate{cms.DocumentType(PostType)}, cms.QueryOptions{
		Ref:       ref,
		PageSize:  s.pageSize,
		Orderings: []cms.Ordering{s.order},
	})
	if err != nil {
		return Feed{}, fmt.Errorf("query posts: %w", err)
	}
	page, err := NormalizeFeedPage(resp)
	if err != nil {
		return Feed{}, err
	}
	return NewFeed(page), nil
}

// FetchPage loads the page a cursor points at. The cursor already carries the
// content ref, page size and ordering of the query that produced it.
func (s *PostService) FetchPage(ctx context.Context, cursor string) (FeedPage, error) {
	resp, err := s.cms.Query(ctx, nil, cms.QueryOptions{PageCursor: cursor})
	if err != nil {
		return FeedPage{}, fmt.Errorf("query posts page: %w", err)
	}
	return NormalizeFeedPage(resp)
}

// Assemble builds the detail view of the post with the given uid.
func (s *PostService) Assemble(ctx context.Context, uid string, opts DetailOptions) (PostDetail, error) {
	doc, err := s.cms.GetByUID(ctx, PostType, uid, cms.QueryOptions{Ref: opts.Ref})
	if err != nil {
		if errors.Is(err, cms.ErrNotFound) {
			return PostDetail{}, ErrPostNotFound
		}
		return PostDetail{}, fmt.Errorf("get post %q: %w", uid, err)
	}

	post, err := NormalizePost(doc)
	if err != nil {
		return PostDetail{}, err
	}

	prev, next, err := s.Adjacent(ctx, opts.Ref, post.ID)
	if err != nil {
		return PostDetail{}, err
	}

	edited, notice := EditionNotice(post.FirstPublicationDate, post.LastPublicationDate, opts.Language, s.loc)
	return PostDetail{
		Post:           post,
		ReadMinutes:    ReadingMinutes(post.Content),
		Edited:         edited,
		EditionLabel:   notice,
		PublishedLabel: PublishedLabel(post.FirstPublicationDate, opts.Language, s.loc),
		Prev:           prev,
		Next:           next,
	}, nil
}

// Adjacent finds the posts right before and after docID by first publication
// date. Both lookups page "after" the current document, so posts sharing a
// timestamp keep the CMS's own ordering.
func (s *PostService) Adjacent(ctx context.Context, ref, docID string) (*PostLink, *PostLink, error) {
	prev, err := s.neighbour(ctx, ref, docID, false)
	if err != nil {
		return nil, nil, err
	}
	next, err := s.neighbour(ctx, ref, docID, true)
	if err != nil {
		return nil, nil, err
	}
	return prev, next, nil
}

func (s *PostService) neighbour(ctx context.Context, ref, docID string, desc bool) (*PostLink, error) {
	if docID == "" {
		return nil, nil
	}
	resp, err := s.cms.Query(ctx, []cms.Predicate{cms.DocumentType(PostType)}, cms.QueryOptions{
		Ref:       ref,
		PageSize:  1,
		After:     docID,
		Orderings: []cms.Ordering{cms.FirstPublished(desc)},
	})
	if err != nil {
		return nil, fmt.Errorf("query adjacent post: %w", err)
	}
	return NormalizeLink(resp, docID)
}

// StaticPaths lists the uid of every post, walking all pages.
func (s *PostService) StaticPaths(ctx context.Context, ref string) ([]string, error) {
	opts := cms.QueryOptions{Ref: ref, PageSize: staticPathsPageSize, Orderings: []cms.Ordering{s.order}}
	predicates := []cms.Predicate{cms.DocumentType(PostType)}

	var uids []string
	seen := make(map[string]struct{})
	for {
		resp, err := s.cms.Query(ctx, predicates, opts)
		if err != nil {
			return nil, fmt.Errorf("query post paths: %w", err)
		}
		for _, doc := range resp.Results {
			if doc.UID == "" {
				continue
			}
			uids = append(uids, doc.UID)
		}
		if resp.NextPage == nil || *resp.NextPage == "" {
			return uids, nil
		}
		if _, dup := seen[*resp.NextPage]; dup {
			return uids, nil
		}
		seen[*resp.NextPage] = struct{}{}
		opts = cms.QueryOptions{PageCursor: *resp.NextPage}
		predicates = nil
	}
}
