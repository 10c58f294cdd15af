package handler

import (
	"context"
	"html/template"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spacetravelling/internal/locale"
	"github.com/spacetravelling/internal/service"
)

// PostReader is the read side of the post service used by the public pages.
type PostReader interface {
	FirstPage(ctx context.Context, ref string) (service.Feed, error)
	FetchPage(ctx context.Context, cursor string) (service.FeedPage, error)
	Assemble(ctx context.Context, uid string, opts service.DetailOptions) (service.PostDetail, error)
	StaticPaths(ctx context.Context, ref string) ([]string, error)
}

// PreviewResolver maps a CMS preview token to the document it was issued for.
type PreviewResolver interface {
	PreviewSession(ctx context.Context, token, documentID string) (docType, uid string, err error)
}

// SiteOptions are the static site settings every page renders with.
type SiteOptions struct {
	Name     string
	BaseURL  string
	Language string
	Footer   template.HTML
	Location *time.Location

	CommentsRepo      string
	CommentsTheme     string
	CommentsIssueTerm string
}

// API bundles shared dependencies for HTTP handlers.
type API struct {
	posts    PostReader
	previews PreviewResolver
	known    *service.KnownPaths
	site     SiteOptions
}

// NewAPI constructs a handler set. known may be nil, in which case every uid
// starts out unknown and goes through the loading shell once.
func NewAPI(posts PostReader, previews PreviewResolver, known *service.KnownPaths, site SiteOptions) *API {
	if known == nil {
		known = service.NewKnownPaths()
	}
	site.Name = strings.TrimSpace(site.Name)
	if site.Name == "" {
		site.Name = "spacetraveling"
	}
	site.BaseURL = strings.TrimRight(strings.TrimSpace(site.BaseURL), "/")
	if site.Location == nil {
		site.Location = time.UTC
	}
	return &API{posts: posts, previews: previews, known: known, site: site}
}

// KnownPaths exposes the set of uids rendered without the loading shell.
func (a *API) KnownPaths() *service.KnownPaths {
	return a.known
}

func (a *API) renderHTML(c *gin.Context, status int, template string, data gin.H) {
	pref := a.requestLocale(c)

	payload := gin.H{}
	for key, value := range data {
		payload[key] = value
	}

	if _, exists := payload["site"]; !exists {
		payload["site"] = gin.H{
			"name":     a.site.Name,
			"baseUrl":  a.site.BaseURL,
			"footer":   a.site.Footer,
			"comments": a.commentsView(),
		}
	}
	if _, exists := payload["siteName"]; !exists {
		payload["siteName"] = a.site.Name
	}
	if _, exists := payload["labels"]; !exists {
		payload["labels"] = locale.LabelsFor(pref.Language)
	}
	if _, exists := payload["locale"]; !exists {
		payload["locale"] = pref
	}
	if _, exists := payload["languageSwitch"]; !exists {
		payload["languageSwitch"] = buildLanguageSwitch(c)
	}
	if _, exists := payload["preview"]; !exists {
		payload["preview"] = a.previewRef(c) != ""
	}
	if title, ok := payload["title"].(string); ok {
		payload["pageTitle"] = pageTitle(a.site.Name, localizeFixedTitle(pref.Language, title))
	} else {
		payload["pageTitle"] = a.site.Name
	}
	if _, exists := payload["year"]; !exists {
		payload["year"] = time.Now().Year()
	}

	c.HTML(status, template, payload)
}

func (a *API) commentsView() gin.H {
	if a.site.CommentsRepo == "" {
		return nil
	}
	theme := a.site.CommentsTheme
	if theme == "" {
		theme = "github-dark"
	}
	issueTerm := a.site.CommentsIssueTerm
	if issueTerm == "" {
		issueTerm = "pathname"
	}
	return gin.H{"repo": a.site.CommentsRepo, "theme": theme, "issueTerm": issueTerm}
}
