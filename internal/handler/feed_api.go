package handler

import (
	"encoding/xml"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/spacetravelling/internal/service"
)

// GetPosts returns one feed page as JSON. Without a cursor it is the first page.
func (a *API) GetPosts(c *gin.Context) {
	cursor := strings.TrimSpace(c.Query("cursor"))

	var (
		page service.FeedPage
		err  error
	)
	if cursor == "" {
		var feed service.Feed
		feed, err = a.posts.FirstPage(c.Request.Context(), a.previewRef(c))
		page = service.FeedPage{Results: feed.Posts, NextPageCursor: feed.NextPageCursor}
	} else {
		page, err = a.posts.FetchPage(c.Request.Context(), cursor)
	}
	if err != nil {
		logRequestError(c, "load feed page failed", err)
		respondError(c, statusForError(err), "could not load posts")
		return
	}
	if page.Results == nil {
		page.Results = []service.PostSummary{}
	}
	c.JSON(http.StatusOK, page)
}

type sitemapURL struct {
	Loc string `xml:"loc"`
}

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

// Sitemap lists the home page and every published post.
func (a *API) Sitemap(c *gin.Context) {
	uids, err := a.posts.StaticPaths(c.Request.Context(), "")
	if err != nil {
		logRequestError(c, "list post paths failed", err)
		c.String(statusForError(err), "")
		return
	}
	a.known.Replace(uids)

	set := sitemapURLSet{
		XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  make([]sitemapURL, 0, len(uids)+1),
	}
	set.URLs = append(set.URLs, sitemapURL{Loc: a.site.BaseURL + "/"})
	for _, uid := range uids {
		set.URLs = append(set.URLs, sitemapURL{Loc: a.site.BaseURL + postURL(uid)})
	}
	c.XML(http.StatusOK, set)
}
