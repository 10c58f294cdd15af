package router

import (
	"html/template"
	"net/http"
	"net/url"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/spacetravelling/internal/handler"
	"github.com/spacetravelling/internal/view"
)

const sessionName = "st_session"

// Options are the router settings taken from configuration.
type Options struct {
	SessionSecret string
	TemplateGlob  string
	StaticDir     string
	CORSOrigins   []string
	// SecureCookies marks the session cookie Secure; set it behind https.
	SecureCookies bool
}

// TemplateFuncs are the helpers available to every page template.
func TemplateFuncs() template.FuncMap {
	return template.FuncMap{
		"icon":       view.Icon,
		"query":      url.QueryEscape,
		"pathEscape": url.PathEscape,
	}
}

// SetupRouter configures the gin engine and routes.
func SetupRouter(api *handler.API, opts Options) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestTrace())

	secret := opts.SessionSecret
	if secret == "" {
		secret = "spacetravelling-dev-secret"
	}
	store := cookie.NewStore([]byte(secret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   60 * 60,
		HttpOnly: true,
		Secure:   opts.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(sessionName, store))
	r.Use(api.LocaleMiddleware())

	r.SetFuncMap(TemplateFuncs())
	if opts.TemplateGlob != "" {
		r.LoadHTMLGlob(opts.TemplateGlob)
	}
	if opts.StaticDir != "" {
		r.Static("/static", opts.StaticDir)
	}

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})

	r.GET("/", api.ShowHome)
	r.GET("/posts/more", api.LoadMorePosts)
	r.GET("/post/:slug", api.ShowPostDetail)
	r.GET("/post/:slug/content", api.ShowPostContent)
	r.GET("/404", api.ShowNotFound)
	r.GET("/sitemap.xml", api.Sitemap)

	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/preview", api.StartPreview)
		apiGroup.GET("/exit-preview", api.ExitPreview)

		feed := apiGroup.Group("/posts", CORS(opts.CORSOrigins))
		feed.GET("", api.GetPosts)
		feed.OPTIONS("", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	}

	r.NoRoute(api.ShowNotFound)

	return r
}
