package locale

import (
	"testing"
	"time"
)

func TestNormalizeLanguage(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{input: "pt", want: LanguagePortuguese},
		{input: "pt-BR", want: LanguagePortuguese},
		{input: "PT_br", want: LanguagePortuguese},
		{input: "en", want: LanguageEnglish},
		{input: "en-US", want: LanguageEnglish},
		{input: "fr", want: ""},
		{input: "", want: ""},
	}

	for _, tc := range cases {
		if got := NormalizeLanguage(tc.input); got != tc.want {
			t.Fatalf("NormalizeLanguage(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestLanguageFromAcceptLanguage(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{input: "pt-BR,pt;q=0.9", want: LanguagePortuguese},
		{input: "en-US,en;q=0.9", want: LanguageEnglish},
		{input: "fr-FR, en;q=0.5", want: LanguageEnglish},
		{input: "de", want: ""},
		{input: "", want: ""},
	}

	for _, tc := range cases {
		if got := LanguageFromAcceptLanguage(tc.input); got != tc.want {
			t.Fatalf("LanguageFromAcceptLanguage(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestPreferenceForLanguage(t *testing.T) {
	pref := PreferenceForLanguage("en")
	if pref.Locale != "en_US" || pref.HTMLLang != "en-US" {
		t.Fatalf("unexpected english preference: %+v", pref)
	}
	pref = PreferenceForLanguage("fr")
	if pref.Language != LanguagePortuguese || pref.HTMLLang != "pt-BR" {
		t.Fatalf("expected fallback to portuguese, got %+v", pref)
	}
}

func TestFormatDate(t *testing.T) {
	ts := time.Date(2021, time.March, 5, 15, 49, 0, 0, time.UTC)

	if got := FormatDate(LanguagePortuguese, ts, time.UTC); got != "05 mar 2021" {
		t.Fatalf("unexpected pt date %q", got)
	}
	if got := FormatDate(LanguageEnglish, ts, time.UTC); got != "05 Mar 2021" {
		t.Fatalf("unexpected en date %q", got)
	}
	if got := FormatDateTime(LanguagePortuguese, ts, time.UTC); got != "05 mar 2021, às 15:49" {
		t.Fatalf("unexpected pt datetime %q", got)
	}
	if got := FormatDateTime(LanguageEnglish, ts, time.UTC); got != "05 Mar 2021, at 15:49" {
		t.Fatalf("unexpected en datetime %q", got)
	}
}

func TestFormatDateUsesLocation(t *testing.T) {
	ts := time.Date(2021, time.March, 1, 1, 0, 0, 0, time.UTC)
	saoPaulo := time.FixedZone("BRT", -3*60*60)
	if got := FormatDate(LanguagePortuguese, ts, saoPaulo); got != "28 fev 2021" {
		t.Fatalf("expected previous day in -03:00, got %q", got)
	}
}

func TestPick(t *testing.T) {
	if got := Pick("en", "Hello", "Olá"); got != "Hello" {
		t.Fatalf("expected english, got %q", got)
	}
	if got := Pick("pt", "Hello", ""); got != "Hello" {
		t.Fatalf("expected english fallback, got %q", got)
	}
	if got := Pick("", "Hello", "Olá"); got != "Olá" {
		t.Fatalf("expected portuguese default, got %q", got)
	}
}
