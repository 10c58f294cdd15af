package locale

import "strings"

const (
	LanguagePortuguese = "pt"
	LanguageEnglish    = "en"
)

// Default is used when nothing else resolves a language.
var Default = LanguagePortuguese

type Preference struct {
	Language string
	Locale   string
	HTMLLang string
}

func NormalizeLanguage(raw string) string {
	trimmed := strings.ToLower(strings.TrimSpace(raw))
	if trimmed == "" {
		return ""
	}
	if strings.HasPrefix(trimmed, "pt") || trimmed == "br" {
		return LanguagePortuguese
	}
	if strings.HasPrefix(trimmed, "en") {
		return LanguageEnglish
	}
	return ""
}

// LanguageFromAcceptLanguage returns the first supported language listed in the header.
func LanguageFromAcceptLanguage(header string) string {
	for _, part := range strings.Split(header, ",") {
		tag, _, _ := strings.Cut(part, ";")
		if language := NormalizeLanguage(tag); language != "" {
			return language
		}
	}
	return ""
}

func PreferenceForLanguage(language string) Preference {
	normalized := NormalizeLanguage(language)
	if normalized == "" {
		normalized = NormalizeLanguage(Default)
	}
	if normalized == LanguageEnglish {
		return Preference{Language: LanguageEnglish, Locale: "en_US", HTMLLang: "en-US"}
	}
	return Preference{Language: LanguagePortuguese, Locale: "pt_BR", HTMLLang: "pt-BR"}
}
