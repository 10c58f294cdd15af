package main

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spacetravelling/internal/cms"
	"github.com/spacetravelling/internal/config"
	"github.com/spacetravelling/internal/handler"
	"github.com/spacetravelling/internal/logger"
	"github.com/spacetravelling/internal/richtext"
	"github.com/spacetravelling/internal/router"
	"github.com/spacetravelling/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logger.Init(cfg.LogLevel)
	gin.SetMode(cfg.GinMode)

	client, err := cms.New(cms.Config{
		Endpoint:          cfg.CMS.Endpoint,
		AccessToken:       cfg.CMS.AccessToken,
		Timeout:           cfg.CMS.Timeout,
		RequestsPerSecond: cfg.CMS.RequestsPerSecond,
		Burst:             cfg.CMS.Burst,
	})
	if err != nil {
		log.Fatalf("failed to create cms client: %v", err)
	}

	posts := service.NewPostService(client, service.PostServiceConfig{
		PageSize:  cfg.Feed.PageSize,
		Ascending: cfg.Feed.Ascending(),
		Location:  cfg.Site.Location(),
	})

	// Pages outside the seeded set go through the loading shell first.
	known := service.NewKnownPaths()
	seedCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if uids, err := posts.StaticPaths(seedCtx, ""); err != nil {
		logger.ErrorWithFields("seed post paths failed", logger.Fields{"error": err.Error()})
	} else {
		known.Replace(uids)
		logger.InfoWithFields("seeded post paths", logger.Fields{"count": len(uids)})
	}
	cancel()

	footer, err := richtext.Markdown(cfg.Site.Footer)
	if err != nil {
		logger.ErrorWithFields("render site footer failed", logger.Fields{"error": err.Error()})
		footer = ""
	}

	api := handler.NewAPI(posts, client, known, handler.SiteOptions{
		Name:              cfg.Site.Name,
		BaseURL:           cfg.Site.BaseURL,
		Language:          cfg.Site.Language,
		Footer:            footer,
		Location:          cfg.Site.Location(),
		CommentsRepo:      cfg.Comments.Repo,
		CommentsTheme:     cfg.Comments.Theme,
		CommentsIssueTerm: cfg.Comments.Issue,
	})

	r := router.SetupRouter(api, router.Options{
		SessionSecret: cfg.SessionSecret,
		TemplateGlob:  cfg.TemplateGlob,
		StaticDir:     cfg.StaticDir,
		CORSOrigins:   cfg.CORSOrigins,
		SecureCookies: strings.HasPrefix(cfg.Site.BaseURL, "https://"),
	})

	logger.InfoWithFields("starting server", logger.Fields{
		"addr":     cfg.ListenAddr,
		"endpoint": cfg.CMS.Endpoint,
	})
	if err := r.Run(cfg.ListenAddr); err != nil {
		log.Fatalf("failed to run server: %v", err)
	}
}
