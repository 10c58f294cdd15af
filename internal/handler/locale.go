package handler

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spacetravelling/internal/locale"
)

const (
	localeContextKey     = "__request_locale"
	languageCookieName   = "st_lang"
	languageCookieMaxAge = 365 * 24 * 60 * 60
)

// LocaleMiddleware resolves request language and sets headers for downstream caching.
func (a *API) LocaleMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		pref := a.requestLocale(c)
		if pref.HTMLLang != "" {
			c.Header("Content-Language", pref.HTMLLang)
		}
		varyHeaders := []string{"Accept-Language"}
		if readLanguageCookie(c) != "" || locale.NormalizeLanguage(c.Query("lang")) != "" {
			varyHeaders = append(varyHeaders, "Cookie")
		}
		appendVaryHeader(c, varyHeaders...)
		c.Next()
	}
}

func (a *API) requestLocale(c *gin.Context) locale.Preference {
	if cached, exists := c.Get(localeContextKey); exists {
		if pref, ok := cached.(locale.Preference); ok {
			return pref
		}
	}
	language, persist := a.resolveLanguage(c)
	pref := locale.PreferenceForLanguage(language)
	if persist {
		a.persistLanguage(c, pref.Language)
	}
	c.Set(localeContextKey, pref)
	return pref
}

// resolveLanguage checks ?lang, then the language cookie, then Accept-Language,
// then the configured site language. Only an explicit ?lang is persisted.
func (a *API) resolveLanguage(c *gin.Context) (string, bool) {
	if override := locale.NormalizeLanguage(c.Query("lang")); override != "" {
		return override, true
	}
	if cookie := readLanguageCookie(c); cookie != "" {
		return cookie, false
	}
	if fromHeader := locale.LanguageFromAcceptLanguage(c.GetHeader("Accept-Language")); fromHeader != "" {
		return fromHeader, false
	}
	if site := locale.NormalizeLanguage(a.site.Language); site != "" {
		return site, false
	}
	return locale.Default, false
}

func readLanguageCookie(c *gin.Context) string {
	value, err := c.Cookie(languageCookieName)
	if err != nil {
		return ""
	}
	return locale.NormalizeLanguage(value)
}

func (a *API) persistLanguage(c *gin.Context, language string) {
	normalized := locale.NormalizeLanguage(language)
	if normalized == "" {
		return
	}
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     languageCookieName,
		Value:    normalized,
		Path:     "/",
		HttpOnly: true,
		Secure:   strings.EqualFold(detectScheme(c), "https"),
		MaxAge:   languageCookieMaxAge,
		Expires:  time.Now().Add(365 * 24 * time.Hour),
		SameSite: http.SameSiteLaxMode,
	})
}

func detectScheme(c *gin.Context) string {
	if proto := strings.TrimSpace(c.GetHeader("X-Forwarded-Proto")); proto != "" {
		first, _, _ := strings.Cut(proto, ",")
		return strings.ToLower(strings.TrimSpace(first))
	}
	if c.Request != nil && c.Request.TLS != nil {
		return "https"
	}
	return "http"
}

func buildLanguageSwitch(c *gin.Context) map[string]string {
	path := "/"
	rawQuery := ""
	if c.Request != nil && c.Request.URL != nil {
		path = c.Request.URL.Path
		rawQuery = c.Request.URL.RawQuery
	}
	values, _ := url.ParseQuery(rawQuery)
	values.Set("lang", locale.LanguagePortuguese)
	ptURL := path + "?" + values.Encode()
	values.Set("lang", locale.LanguageEnglish)
	enURL := path + "?" + values.Encode()
	return map[string]string{
		"pt": ptURL,
		"en": enURL,
	}
}

func appendVaryHeader(c *gin.Context, headers ...string) {
	existing := c.Writer.Header().Get("Vary")
	seen := make(map[string]struct{})
	order := make([]string, 0, len(headers))
	for _, token := range append(strings.Split(existing, ","), headers...) {
		trimmed := strings.TrimSpace(token)
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; ok {
			continue
		}
		seen[trimmed] = struct{}{}
		order = append(order, trimmed)
	}
	if len(order) > 0 {
		c.Header("Vary", strings.Join(order, ", "))
	}
}
