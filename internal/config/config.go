package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	envFile       = ".env"
	siteConfigEnv = "SITE_CONFIG"

	defaultSiteName     = "spacetraveling"
	defaultTimezone     = "America/Sao_Paulo"
	defaultCMSTimeout   = 10 * time.Second
	defaultCMSRPS       = 10
	defaultCMSBurst     = 5
	defaultFeedPageSize = 1
)

// AppConfig holds everything the server needs at startup.
type AppConfig struct {
	ListenAddr    string
	Port          string
	GinMode       string
	LogLevel      string
	SessionSecret string

	CMS      CMSConfig
	Feed     FeedConfig
	Site     SiteConfig
	Comments CommentsConfig

	CORSOrigins  []string
	TemplateGlob string
	StaticDir    string
}

// CMSConfig points at the headless CMS API.
type CMSConfig struct {
	Endpoint          string        `yaml:"endpoint"`
	AccessToken       string        `yaml:"access_token"`
	Timeout           time.Duration `yaml:"timeout"`
	RequestsPerSecond float64       `yaml:"requests_per_second"`
	Burst             int           `yaml:"burst"`
}

// FeedConfig controls the home page listing.
type FeedConfig struct {
	PageSize int `yaml:"page_size"`
	// Order is "desc" (newest first) or "asc".
	Order string `yaml:"order"`
}

func (f FeedConfig) Ascending() bool {
	return strings.EqualFold(f.Order, "asc")
}

// SiteConfig is the presentation-level site settings.
type SiteConfig struct {
	Name     string `yaml:"name"`
	BaseURL  string `yaml:"base_url"`
	Language string `yaml:"language"`
	Timezone string `yaml:"timezone"`
	// Footer is markdown rendered under every page.
	Footer string `yaml:"footer"`

	location *time.Location
}

// Location resolves Timezone, falling back to the default zone and then UTC.
func (s SiteConfig) Location() *time.Location {
	if s.location != nil {
		return s.location
	}
	if loc, err := time.LoadLocation(defaultTimezone); err == nil {
		return loc
	}
	return time.UTC
}

// CommentsConfig configures the utterances widget. An empty Repo disables it.
type CommentsConfig struct {
	Repo  string `yaml:"repo"`
	Theme string `yaml:"theme"`
	Issue string `yaml:"issue_term"`
}

type fileConfig struct {
	CMS      CMSConfig      `yaml:"cms"`
	Feed     FeedConfig     `yaml:"feed"`
	Site     SiteConfig     `yaml:"site"`
	Comments CommentsConfig `yaml:"comments"`
	CORS     []string       `yaml:"cors_origins"`
}

// Load reads .env (if present), the optional YAML file named by SITE_CONFIG,
// then environment variables, which win over the file.
func Load() (AppConfig, error) {
	_ = godotenv.Load(envFile)

	cfg := defaultConfig()

	if path := strings.TrimSpace(os.Getenv(siteConfigEnv)); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return AppConfig{}, fmt.Errorf("read %s: %w", path, err)
		}
		var fc fileConfig
		if err := yaml.Unmarshal(raw, &fc); err != nil {
			return AppConfig{}, fmt.Errorf("parse %s: %w", path, err)
		}
		cfg.merge(fc)
	}

	if err := cfg.applyEnv(); err != nil {
		return AppConfig{}, err
	}

	if err := cfg.bindTimezone(); err != nil {
		return AppConfig{}, err
	}
	if cfg.Feed.PageSize <= 0 {
		cfg.Feed.PageSize = defaultFeedPageSize
	}
	return cfg, nil
}

func defaultConfig() AppConfig {
	return AppConfig{
		Port:          "3000",
		GinMode:       "release",
		LogLevel:      "info",
		SessionSecret: "spacetravelling-dev-secret",
		CMS: CMSConfig{
			Timeout:           defaultCMSTimeout,
			RequestsPerSecond: defaultCMSRPS,
			Burst:             defaultCMSBurst,
		},
		Feed: FeedConfig{PageSize: defaultFeedPageSize, Order: "desc"},
		Site: SiteConfig{
			Name:     defaultSiteName,
			BaseURL:  "http://localhost:3000",
			Language: "pt",
			Timezone: defaultTimezone,
		},
		Comments:     CommentsConfig{Theme: "github-dark", Issue: "pathname"},
		TemplateGlob: "web/template/*.html",
		StaticDir:    "web/static",
	}
}

func (c *AppConfig) merge(fc fileConfig) {
	if fc.CMS.Endpoint != "" {
		c.CMS.Endpoint = fc.CMS.Endpoint
	}
	if fc.CMS.AccessToken != "" {
		c.CMS.AccessToken = fc.CMS.AccessToken
	}
	if fc.CMS.Timeout > 0 {
		c.CMS.Timeout = fc.CMS.Timeout
	}
	if fc.CMS.RequestsPerSecond > 0 {
		c.CMS.RequestsPerSecond = fc.CMS.RequestsPerSecond
	}
	if fc.CMS.Burst > 0 {
		c.CMS.Burst = fc.CMS.Burst
	}

	if fc.Feed.PageSize > 0 {
		c.Feed.PageSize = fc.Feed.PageSize
	}
	if fc.Feed.Order != "" {
		c.Feed.Order = fc.Feed.Order
	}

	if fc.Site.Name != "" {
		c.Site.Name = fc.Site.Name
	}
	if fc.Site.BaseURL != "" {
		c.Site.BaseURL = fc.Site.BaseURL
	}
	if fc.Site.Language != "" {
		c.Site.Language = fc.Site.Language
	}
	if fc.Site.Timezone != "" {
		c.Site.Timezone = fc.Site.Timezone
	}
	if fc.Site.Footer != "" {
		c.Site.Footer = fc.Site.Footer
	}

	if fc.Comments.Repo != "" {
		c.Comments.Repo = fc.Comments.Repo
	}
	if fc.Comments.Theme != "" {
		c.Comments.Theme = fc.Comments.Theme
	}
	if fc.Comments.Issue != "" {
		c.Comments.Issue = fc.Comments.Issue
	}

	if len(fc.CORS) > 0 {
		c.CORSOrigins = fc.CORS
	}
}

func (c *AppConfig) applyEnv() error {
	setString(&c.Port, "PORT")
	c.ListenAddr = fmt.Sprintf(":%s", c.Port)
	setString(&c.ListenAddr, "LISTEN_ADDR")
	setString(&c.GinMode, "GIN_MODE")
	setString(&c.LogLevel, "LOG_LEVEL")
	setString(&c.SessionSecret, "SESSION_SECRET")

	setString(&c.CMS.Endpoint, "PRISMIC_ENDPOINT")
	setString(&c.CMS.AccessToken, "PRISMIC_ACCESS_TOKEN")
	if v := env("CMS_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("CMS_TIMEOUT: %w", err)
		}
		c.CMS.Timeout = d
	}
	if v := env("CMS_RPS"); v != "" {
		rps, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("CMS_RPS: %w", err)
		}
		c.CMS.RequestsPerSecond = rps
	}

	if v := env("FEED_PAGE_SIZE"); v != "" {
		size, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("FEED_PAGE_SIZE: %w", err)
		}
		c.Feed.PageSize = size
	}
	setString(&c.Feed.Order, "FEED_ORDER")
	if order := strings.ToLower(c.Feed.Order); order != "asc" && order != "desc" {
		return fmt.Errorf("FEED_ORDER: want asc or desc, got %q", c.Feed.Order)
	}

	setString(&c.Site.Name, "SITE_NAME")
	setString(&c.Site.BaseURL, "SITE_BASE_URL")
	c.Site.BaseURL = strings.TrimRight(c.Site.BaseURL, "/")
	setString(&c.Site.Language, "SITE_LANGUAGE")
	setString(&c.Site.Timezone, "SITE_TIMEZONE")
	setString(&c.Site.Footer, "SITE_FOOTER")

	setString(&c.Comments.Repo, "COMMENTS_REPO")
	setString(&c.Comments.Theme, "COMMENTS_THEME")

	if v := env("CORS_ORIGINS"); v != "" {
		c.CORSOrigins = splitList(v)
	}
	setString(&c.TemplateGlob, "TEMPLATE_GLOB")
	setString(&c.StaticDir, "STATIC_DIR")
	return nil
}

func (c *AppConfig) bindTimezone() error {
	tz := c.Site.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return fmt.Errorf("SITE_TIMEZONE %q: %w", tz, err)
	}
	c.Site.location = loc
	return nil
}

func env(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func setString(dst *string, key string) {
	if v := env(key); v != "" {
		*dst = v
	}
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
