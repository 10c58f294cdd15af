package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
)

// ErrNoMorePages is returned by LoadMore when the feed has no cursor left. It is not a failure.
var ErrNoMorePages = errors.New("no further pages")

// PageFetcher fetches the feed page addressed by a cursor.
type PageFetcher interface {
	FetchPage(ctx context.Context, cursor string) (FeedPage, error)
}

// Feed is the incrementally loaded post list: the posts shown so far and the
// cursor of the next page. It is a value; LoadMore returns a new Feed and never
// touches the one it was given.
type Feed struct {
	Posts          []PostSummary
	NextPageCursor *string

	consumed []string
}

// NewFeed seeds a feed from its first page.
func NewFeed(first FeedPage) Feed {
	feed := Feed{Posts: make([]PostSummary, 0, len(first.Results))}
	feed.Posts = appendUnique(feed.Posts, first.Results)
	feed.NextPageCursor = copyCursor(first.NextPageCursor)
	return feed
}

// FeedAt starts an empty feed positioned at cursor, for requests that only carry the cursor.
func FeedAt(cursor string) Feed {
	if cursor == "" {
		return Feed{}
	}
	return Feed{NextPageCursor: &cursor}
}

// HasMore reports whether another page can be loaded.
func (f Feed) HasMore() bool {
	return f.NextPageCursor != nil && *f.NextPageCursor != ""
}

// Cursor returns the next page cursor or "".
func (f Feed) Cursor() string {
	if f.NextPageCursor == nil {
		return ""
	}
	return *f.NextPageCursor
}

// LoadMore appends the page at the feed's cursor.
//
// Without a cursor it returns the feed unchanged and ErrNoMorePages. When the
// fetch fails the feed is returned unchanged with the error, so calling again
// resumes from the same cursor. Calls on the same feed must not overlap.
func LoadMore(ctx context.Context, fetcher PageFetcher, feed Feed) (Feed, error) {
	if !feed.HasMore() {
		return feed, ErrNoMorePages
	}
	cursor := *feed.NextPageCursor

	page, err := fetcher.FetchPage(ctx, cursor)
	if err != nil {
		return feed, fmt.Errorf("load more posts: %w", err)
	}

	next := Feed{
		Posts:    appendUnique(slices.Clone(feed.Posts), page.Results),
		consumed: append(slices.Clone(feed.consumed), cursor),
	}
	if page.NextPageCursor != nil && !slices.Contains(next.consumed, *page.NextPageCursor) {
		next.NextPageCursor = copyCursor(page.NextPageCursor)
	}
	return next, nil
}

func appendUnique(posts []PostSummary, page []PostSummary) []PostSummary {
	for _, p := range page {
		if slices.ContainsFunc(posts, func(existing PostSummary) bool { return existing.UID == p.UID }) {
			continue
		}
		posts = append(posts, p)
	}
	return posts
}

func copyCursor(cursor *string) *string {
	if cursor == nil || *cursor == "" {
		return nil
	}
	c := *cursor
	return &c
}
