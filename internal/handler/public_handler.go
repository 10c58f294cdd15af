package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/spacetravelling/internal/service"
)

// ShowHome renders the first page of the post feed.
func (a *API) ShowHome(c *gin.Context) {
	feed, err := a.posts.FirstPage(c.Request.Context(), a.previewRef(c))
	if err != nil {
		logRequestError(c, "load home feed failed", err)
		a.renderHTML(c, statusForError(err), "home.html", gin.H{
			"title": "Início",
			"error": true,
		})
		return
	}

	a.renderHTML(c, http.StatusOK, "home.html", gin.H{
		"title":      "Início",
		"posts":      a.cards(c, feed.Posts),
		"hasMore":    feed.HasMore(),
		"nextCursor": feed.Cursor(),
	})
}

// LoadMorePosts returns the next post cards for the HTMX "load more" button.
// The button is disabled while its request is in flight, so calls for one
// feed never overlap. A failed fetch answers with an empty 502, which HTMX
// does not swap in, leaving the button and its cursor in place for a retry.
func (a *API) LoadMorePosts(c *gin.Context) {
	feed := service.FeedAt(strings.TrimSpace(c.Query("cursor")))

	next, err := service.LoadMore(c.Request.Context(), a.posts, feed)
	if errors.Is(err, service.ErrNoMorePages) {
		c.Status(http.StatusNoContent)
		return
	}
	if err != nil {
		logRequestError(c, "load more posts failed", err)
		c.String(statusForError(err), "")
		return
	}

	a.renderHTML(c, http.StatusOK, "post_cards.html", gin.H{
		"posts":      a.cards(c, next.Posts),
		"hasMore":    next.HasMore(),
		"nextCursor": next.Cursor(),
	})
}

// ShowPostDetail renders a post. A uid that has not been seen yet gets the
// loading shell, which fetches the article from ShowPostContent.
func (a *API) ShowPostDetail(c *gin.Context) {
	slug := strings.TrimSpace(c.Param("slug"))
	if slug == "" {
		a.ShowNotFound(c)
		return
	}

	if !a.known.Has(slug) {
		a.renderHTML(c, http.StatusOK, "post_loading.html", gin.H{
			"title": "Carregando...",
			"slug":  slug,
		})
		return
	}

	detail, err := a.assemble(c, slug)
	if err != nil {
		a.renderDetailError(c, err)
		return
	}

	a.renderHTML(c, http.StatusOK, "post_detail.html", a.detailPayload(detail))
}

// ShowPostContent renders the article fragment swapped into the loading shell.
func (a *API) ShowPostContent(c *gin.Context) {
	slug := strings.TrimSpace(c.Param("slug"))

	detail, err := a.assemble(c, slug)
	if err != nil {
		status := statusForError(err)
		if status == http.StatusNotFound && isHTMX(c) {
			c.Header("HX-Redirect", "/404")
			c.Status(http.StatusNotFound)
			return
		}
		a.renderDetailError(c, err)
		return
	}

	a.known.Add(detail.UID)
	payload := a.detailPayload(detail)
	if isHTMX(c) {
		c.Header("HX-Trigger", "postReady")
		a.renderHTML(c, http.StatusOK, "post_article.html", payload)
		return
	}
	a.renderHTML(c, http.StatusOK, "post_detail.html", payload)
}

// ShowNotFound renders the 404 page.
func (a *API) ShowNotFound(c *gin.Context) {
	a.renderHTML(c, http.StatusNotFound, "not_found.html", gin.H{
		"title": "Post não encontrado",
	})
}

func (a *API) assemble(c *gin.Context, slug string) (service.PostDetail, error) {
	if slug == "" {
		return service.PostDetail{}, service.ErrPostNotFound
	}
	return a.posts.Assemble(c.Request.Context(), slug, service.DetailOptions{
		Ref:      a.previewRef(c),
		Language: a.requestLocale(c).Language,
	})
}

func (a *API) renderDetailError(c *gin.Context, err error) {
	status := statusForError(err)
	if status == http.StatusNotFound {
		a.ShowNotFound(c)
		return
	}
	logRequestError(c, "assemble post failed", err)
	a.renderHTML(c, status, "error.html", gin.H{
		"title":  "Erro",
		"status": status,
	})
}
