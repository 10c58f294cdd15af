package service

import (
	"context"
	"errors"
	"testing"
)

type stubFetcher struct {
	pages map[string]FeedPage
	err   error
	calls []string
}

func (s *stubFetcher) FetchPage(_ context.Context, cursor string) (FeedPage, error) {
	s.calls = append(s.calls, cursor)
	if s.err != nil {
		return FeedPage{}, s.err
	}
	return s.pages[cursor], nil
}

func uids(posts []PostSummary) []string {
	out := make([]string, 0, len(posts))
	for _, p := range posts {
		out = append(out, p.UID)
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestLoadMoreAppendsInSourceOrder(t *testing.T) {
	fetcher := &stubFetcher{pages: map[string]FeedPage{
		"p2": {Results: []PostSummary{{UID: "b"}, {UID: "c"}}, NextPageCursor: strPtr("p3")},
		"p3": {Results: []PostSummary{{UID: "d"}}},
	}}
	feed := NewFeed(FeedPage{Results: []PostSummary{{UID: "a"}}, NextPageCursor: strPtr("p2")})

	var err error
	feed, err = LoadMore(context.Background(), fetcher, feed)
	if err != nil {
		t.Fatalf("load more: %v", err)
	}
	if got := uids(feed.Posts); !equalStrings(got, []string{"a", "b", "c"}) {
		t.Fatalf("unexpected posts %v", got)
	}
	if feed.Cursor() != "p3" {
		t.Fatalf("expected cursor p3, got %q", feed.Cursor())
	}

	feed, err = LoadMore(context.Background(), fetcher, feed)
	if err != nil {
		t.Fatalf("load more: %v", err)
	}
	if got := uids(feed.Posts); !equalStrings(got, []string{"a", "b", "c", "d"}) {
		t.Fatalf("unexpected posts %v", got)
	}
	if feed.HasMore() {
		t.Fatalf("expected the feed to be exhausted")
	}
}

func TestLoadMoreWithoutCursorIsNoop(t *testing.T) {
	fetcher := &stubFetcher{}
	feed := NewFeed(FeedPage{Results: []PostSummary{{UID: "a"}}})

	got, err := LoadMore(context.Background(), fetcher, feed)
	if !errors.Is(err, ErrNoMorePages) {
		t.Fatalf("expected ErrNoMorePages, got %v", err)
	}
	if len(fetcher.calls) != 0 {
		t.Fatalf("expected no fetch, got %v", fetcher.calls)
	}
	if !equalStrings(uids(got.Posts), []string{"a"}) {
		t.Fatalf("feed changed: %v", uids(got.Posts))
	}
}

func TestLoadMoreFailureLeavesFeedUnchanged(t *testing.T) {
	boom := errors.New("connection reset")
	fetcher := &stubFetcher{err: boom}
	feed := NewFeed(FeedPage{Results: []PostSummary{{UID: "a"}}, NextPageCursor: strPtr("p2")})

	got, err := LoadMore(context.Background(), fetcher, feed)
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped fetch error, got %v", err)
	}
	if got.Cursor() != "p2" || !equalStrings(uids(got.Posts), []string{"a"}) {
		t.Fatalf("feed changed after failure: %+v", got)
	}

	fetcher.err = nil
	fetcher.pages = map[string]FeedPage{"p2": {Results: []PostSummary{{UID: "b"}}}}
	got, err = LoadMore(context.Background(), fetcher, got)
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	if !equalStrings(fetcher.calls, []string{"p2", "p2"}) {
		t.Fatalf("retry must resume from the same cursor, calls %v", fetcher.calls)
	}
	if !equalStrings(uids(got.Posts), []string{"a", "b"}) {
		t.Fatalf("unexpected posts %v", uids(got.Posts))
	}
}

func TestLoadMoreDoesNotMutateInput(t *testing.T) {
	fetcher := &stubFetcher{pages: map[string]FeedPage{
		"p2": {Results: []PostSummary{{UID: "b"}}},
	}}
	base := make([]PostSummary, 1, 4)
	base[0] = PostSummary{UID: "a"}
	feed := Feed{Posts: base, NextPageCursor: strPtr("p2")}

	next, err := LoadMore(context.Background(), fetcher, feed)
	if err != nil {
		t.Fatalf("load more: %v", err)
	}
	if len(feed.Posts) != 1 || feed.Cursor() != "p2" {
		t.Fatalf("input feed mutated: %+v", feed)
	}
	next.Posts[0].UID = "changed"
	if base[0].UID != "a" {
		t.Fatalf("result shares backing array with input")
	}
}

func TestLoadMoreDropsDuplicatesAndRepeatedCursor(t *testing.T) {
	fetcher := &stubFetcher{pages: map[string]FeedPage{
		"p2": {Results: []PostSummary{{UID: "a"}, {UID: "b"}}, NextPageCursor: strPtr("p2")},
	}}
	feed := NewFeed(FeedPage{Results: []PostSummary{{UID: "a"}}, NextPageCursor: strPtr("p2")})

	got, err := LoadMore(context.Background(), fetcher, feed)
	if err != nil {
		t.Fatalf("load more: %v", err)
	}
	if !equalStrings(uids(got.Posts), []string{"a", "b"}) {
		t.Fatalf("unexpected posts %v", uids(got.Posts))
	}
	if got.HasMore() {
		t.Fatalf("a cursor already consumed must not be followed again")
	}
}

func TestFeedAt(t *testing.T) {
	if FeedAt("").HasMore() {
		t.Fatalf("empty cursor must not have more")
	}
	feed := FeedAt("p9")
	if feed.Cursor() != "p9" || len(feed.Posts) != 0 {
		t.Fatalf("unexpected feed %+v", feed)
	}
}
