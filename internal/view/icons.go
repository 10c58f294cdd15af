package view

import (
	"html/template"
	"strings"
)

type iconAsset struct {
	Key string
	SVG string
}

// Feather-style line icons used in post meta rows.
var (
	iconDefinitions = []iconAsset{
		{Key: "calendar", SVG: `<svg viewBox="0 0 24 24" width="20" height="20" fill="none" stroke="currentColor" stroke-width="2" stroke-linecap="round" stroke-linejoin="round" aria-hidden="true"><rect x="3" y="4" width="18" height="18" rx="2" ry="2"/><line x1="16" y1="2" x2="16" y2="6"/><line x1="8" y1="2" x2="8" y2="6"/><line x1="3" y1="10" x2="21" y2="10"/></svg>`},
		{Key: "user", SVG: `<svg viewBox="0 0 24 24" width="20" height="20" fill="none" stroke="currentColor" stroke-width="2" stroke-linecap="round" stroke-linejoin="round" aria-hidden="true"><path d="M20 21v-2a4 4 0 0 0-4-4H8a4 4 0 0 0-4 4v2"/><circle cx="12" cy="7" r="4"/></svg>`},
		{Key: "clock", SVG: `<svg viewBox="0 0 24 24" width="20" height="20" fill="none" stroke="currentColor" stroke-width="2" stroke-linecap="round" stroke-linejoin="round" aria-hidden="true"><circle cx="12" cy="12" r="10"/><polyline points="12 6 12 12 16 14"/></svg>`},
	}
	defaultIcon = iconAsset{Key: "default", SVG: `<svg viewBox="0 0 24 24" width="20" height="20" fill="none" stroke="currentColor" stroke-width="2" aria-hidden="true"><circle cx="12" cy="12" r="10"/></svg>`}
	iconLookup  = func() map[string]iconAsset {
		lookup := make(map[string]iconAsset, len(iconDefinitions)+1)
		for _, icon := range iconDefinitions {
			lookup[icon.Key] = icon
		}
		lookup[defaultIcon.Key] = defaultIcon
		return lookup
	}()
)

// IconSVG resolves the SVG markup for key, falling back to the default icon.
func IconSVG(key string) string {
	trimmed := strings.ToLower(strings.TrimSpace(key))
	if icon, ok := iconLookup[trimmed]; ok {
		return icon.SVG
	}
	return defaultIcon.SVG
}

// Icon is IconSVG as trusted template markup.
func Icon(key string) template.HTML {
	return template.HTML(IconSVG(key))
}
