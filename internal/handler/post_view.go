package handler

import (
	"html/template"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/spacetravelling/internal/richtext"
	"github.com/spacetravelling/internal/service"
)

type postCardView struct {
	UID            string
	URL            string
	Title          string
	Subtitle       string
	Author         string
	PublishedLabel string
	Published      bool
}

type sectionView struct {
	Heading string
	Body    template.HTML
}

type postLinkView struct {
	Title string
	URL   string
}

func postURL(uid string) string {
	return "/post/" + url.PathEscape(uid)
}

func (a *API) cards(c *gin.Context, posts []service.PostSummary) []postCardView {
	language := a.requestLocale(c).Language
	out := make([]postCardView, 0, len(posts))
	for _, p := range posts {
		out = append(out, postCardView{
			UID:            p.UID,
			URL:            postURL(p.UID),
			Title:          p.Title,
			Subtitle:       p.Subtitle,
			Author:         p.Author,
			PublishedLabel: service.PublishedLabel(p.FirstPublicationDate, language, a.site.Location),
			Published:      p.FirstPublicationDate != nil,
		})
	}
	return out
}

func linkView(link *service.PostLink) *postLinkView {
	if link == nil {
		return nil
	}
	return &postLinkView{Title: link.Title, URL: postURL(link.UID)}
}

func (a *API) detailPayload(detail service.PostDetail) gin.H {
	sections := make([]sectionView, 0, len(detail.Content))
	for _, s := range detail.Content {
		sections = append(sections, sectionView{Heading: s.Heading, Body: richtext.AsHTML(s.Body)})
	}
	return gin.H{
		"title":    detail.Title,
		"post":     detail,
		"url":      postURL(detail.UID),
		"sections": sections,
		"prev":     linkView(detail.Prev),
		"next":     linkView(detail.Next),
	}
}
