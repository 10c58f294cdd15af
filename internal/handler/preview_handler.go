package handler

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/spacetravelling/internal/cms"
	"github.com/spacetravelling/internal/service"
)

const previewRefSessionKey = "preview_ref"

// previewRef returns the content ref stored by StartPreview, or "" outside preview mode.
func (a *API) previewRef(c *gin.Context) string {
	if _, exists := c.Get(sessions.DefaultKey); !exists {
		return ""
	}
	ref, _ := sessions.Default(c).Get(previewRefSessionKey).(string)
	return ref
}

// StartPreview handles the CMS preview callback: it stores the preview ref in
// the session and redirects to the previewed post.
func (a *API) StartPreview(c *gin.Context) {
	token := strings.TrimSpace(c.Query("token"))
	documentID := strings.TrimSpace(c.Query("documentId"))
	if token == "" {
		respondError(c, http.StatusBadRequest, "missing preview token")
		return
	}
	if a.previews == nil {
		respondError(c, http.StatusNotFound, "preview is not enabled")
		return
	}

	redirect := "/"
	if documentID != "" {
		docType, uid, err := a.previews.PreviewSession(c.Request.Context(), token, documentID)
		switch {
		case errors.Is(err, cms.ErrNotFound):
		case err != nil:
			logRequestError(c, "resolve preview document failed", err)
			respondError(c, statusForError(err), "could not resolve preview document")
			return
		case docType == service.PostType && uid != "":
			redirect = "/post/" + url.PathEscape(uid)
		}
	}

	session := sessions.Default(c)
	session.Set(previewRefSessionKey, token)
	if err := session.Save(); err != nil {
		logRequestError(c, "save preview session failed", err)
		respondError(c, http.StatusInternalServerError, "could not start preview")
		return
	}
	c.Redirect(http.StatusFound, redirect)
}

// ExitPreview drops the preview ref and returns to the home page.
func (a *API) ExitPreview(c *gin.Context) {
	session := sessions.Default(c)
	session.Delete(previewRefSessionKey)
	if err := session.Save(); err != nil {
		logRequestError(c, "clear preview session failed", err)
	}
	c.Redirect(http.StatusFound, "/")
}
