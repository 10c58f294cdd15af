package handler

import "github.com/spacetravelling/internal/locale"

// fixedTitleMap maps the Portuguese page titles to their English form.
var fixedTitleMap = map[string]string{
	"Início":              "Home",
	"Carregando...":       "Loading...",
	"Post não encontrado": "Post not found",
	"Erro":                "Error",
}

func localizeFixedTitle(language, title string) string {
	if title == "" {
		return title
	}
	if locale.NormalizeLanguage(language) == locale.LanguageEnglish {
		if mapped, ok := fixedTitleMap[title]; ok {
			return mapped
		}
		return title
	}
	for key, value := range fixedTitleMap {
		if value == title {
			return key
		}
	}
	return title
}

// pageTitle renders "<title> | <site>", or just the site name for an empty title.
func pageTitle(siteName, title string) string {
	if title == "" || title == siteName {
		return siteName
	}
	return title + " | " + siteName
}
