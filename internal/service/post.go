package service

import (
	"time"

	"github.com/spacetravelling/internal/richtext"
)

// PostSummary is a post as listed on the home page feed.
type PostSummary struct {
	UID                  string     `json:"uid"`
	FirstPublicationDate *time.Time `json:"first_publication_date"`
	Title                string     `json:"title"`
	Subtitle             string     `json:"subtitle"`
	Author               string     `json:"author"`
}

// Section is one heading plus its rich-text body.
type Section struct {
	Heading string           `json:"heading"`
	Body    []richtext.Block `json:"body"`
}

// Post is the full post used by the detail page.
type Post struct {
	ID                   string     `json:"id"`
	UID                  string     `json:"uid"`
	FirstPublicationDate *time.Time `json:"first_publication_date"`
	LastPublicationDate  *time.Time `json:"last_publication_date"`
	Title                string     `json:"title"`
	BannerURL            string     `json:"banner_url"`
	Author               string     `json:"author"`
	Content              []Section  `json:"content"`
}

// PostLink points at an adjacent post. A nil *PostLink means there is none.
type PostLink struct {
	UID   string `json:"uid"`
	Title string `json:"title"`
}

// FeedPage is one normalized page of the post list.
type FeedPage struct {
	Results        []PostSummary `json:"results"`
	NextPageCursor *string       `json:"next_page"`
}

// PostDetail is everything the detail page renders.
type PostDetail struct {
	Post
	ReadMinutes    int
	Edited         bool
	EditionLabel   string
	PublishedLabel string
	Prev           *PostLink
	Next           *PostLink
}
