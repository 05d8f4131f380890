package view

import "strings"

// LinkIconOption describes a selectable category option for profile links.
type LinkIconOption struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

type linkIconAsset struct {
	Key   string
	SVG   string
	Label string
}

var (
	linkIconDefinitions = []linkIconAsset{
		{Key: "linkedin", Label: "LinkedIn", SVG: `<svg viewBox="0 0 24 24" fill="currentColor" aria-hidden="true"><path d="M20.447 20.452h-3.554v-5.569c0-1.328-.027-3.037-1.852-3.037-1.853 0-2.136 1.445-2.136 2.939v5.667H9.351V9h3.414v1.561h.046c.477-.9 1.637-1.85 3.37-1.85 3.601 0 4.267 2.37 4.267 5.455v6.286zM5.337 7.433a2.062 2.062 0 1 1 0-4.124 2.062 2.062 0 0 1 0 4.124zM7.119 20.452H3.555V9h3.564v11.452z"/></svg>`},
		{Key: "youtube", Label: "YouTube", SVG: `<svg viewBox="0 0 24 24" fill="currentColor" aria-hidden="true"><path d="M23.498 6.186a3.016 3.016 0 0 0-2.122-2.136C19.505 3.545 12 3.545 12 3.545s-7.505 0-9.377.505A3.017 3.017 0 0 0 .502 6.186C0 8.07 0 12 0 12s0 3.93.502 5.814a3.016 3.016 0 0 0 2.122 2.136c1.871.505 9.376.505 9.376.505s7.505 0 9.377-.505a3.015 3.015 0 0 0 2.122-2.136C24 15.93 24 12 24 12s0-3.93-.502-5.814zM9.545 15.568V8.432L15.818 12l-6.273 3.568z"/></svg>`},
		{Key: "x", Label: "X / Twitter", SVG: `<svg viewBox="0 0 24 24" fill="currentColor" aria-hidden="true"><path d="M18.901 1.153h3.68l-8.04 9.19L24 22.846h-7.406l-5.8-7.584-6.638 7.584H.474l8.6-9.83L0 1.154h7.594l5.243 6.932ZM17.61 20.644h2.039L6.486 3.24H4.298Z"/></svg>`},
		{Key: "instagram", Label: "Instagram", SVG: `<svg viewBox="0 0 24 24" fill="none" stroke="currentColor" stroke-width="1.5" stroke-linecap="round" stroke-linejoin="round"><rect x="2.5" y="2.5" width="19" height="19" rx="5"/><circle cx="12" cy="12" r="4.25"/><circle cx="17.5" cy="6.5" r="1" fill="currentColor" stroke="none"/></svg>`},
		{Key: "linktree", Label: "Linktree", SVG: `<svg viewBox="0 0 24 24" fill="none" stroke="currentColor" stroke-width="1.5" stroke-linecap="round" stroke-linejoin="round"><path d="M12 2v14m0 6v-2m-6.5-13.5L12 10l6.5-3.5M5 13h14"/></svg>`},
		{Key: "email", Label: "Email", SVG: `<svg viewBox="0 0 24 24" fill="none" stroke="currentColor" stroke-width="1.5" stroke-linecap="round" stroke-linejoin="round"><path d="M21.75 6.75v10.5a2.25 2.25 0 0 1-2.25 2.25h-15A2.25 2.25 0 0 1 2.25 17.25V6.75M21.75 6.75A2.25 2.25 0 0 0 19.5 4.5h-15A2.25 2.25 0 0 0 2.25 6.75v.243c0 .781.405 1.506 1.071 1.916l7.5 4.615a2.25 2.25 0 0 0 2.157 0l7.5-4.615a2.25 2.25 0 0 0 1.072-1.916V6.75"/></svg>`},
	}
	defaultLinkIcon = linkIconAsset{Key: "other", Label: "其他", SVG: `<svg viewBox="0 0 24 24" fill="none" stroke="currentColor" stroke-width="1.5" stroke-linecap="round" stroke-linejoin="round"><path d="M12 21c4.193 0 7.716-2.867 8.716-6.747M12 21c-4.193 0-7.716-2.867-8.716-6.747M12 21c2.485 0 4.5-4.03 4.5-9s-2.015-9-4.5-9m0 18c-2.485 0-4.5-4.03-4.5-9s2.015-9 4.5-9m0 0c3.365 0 6.299 1.847 7.843 4.582M12 3c-3.365 0-6.299 1.847-7.843 4.582"/></svg>`}
	linkIconAliases = map[string]string{
		"twitter": "x",
	}
	linkIconLookup = func() map[string]linkIconAsset {
		lookup := make(map[string]linkIconAsset, len(linkIconDefinitions)+1)
		for _, icon := range linkIconDefinitions {
			lookup[icon.Key] = icon
		}
		lookup[defaultLinkIcon.Key] = defaultLinkIcon
		return lookup
	}()
)

// LinkIconOptions exposes the selectable category metadata for the admin UI.
func LinkIconOptions() []LinkIconOption {
	options := make([]LinkIconOption, 0, len(linkIconDefinitions)+1)
	for _, icon := range linkIconDefinitions {
		options = append(options, LinkIconOption{Key: icon.Key, Label: icon.Label})
	}
	options = append(options, LinkIconOption{Key: defaultLinkIcon.Key, Label: defaultLinkIcon.Label})
	return options
}

// LinkIconSVG resolves the SVG for a link category, falling back to the globe icon.
// Category matching is case-insensitive and accepts the legacy "Twitter" alias.
func LinkIconSVG(category string) string {
	trimmed := strings.ToLower(strings.TrimSpace(category))
	if trimmed == "" {
		return defaultLinkIcon.SVG
	}
	if alias, ok := linkIconAliases[trimmed]; ok {
		trimmed = alias
	}
	if icon, ok := linkIconLookup[trimmed]; ok {
		return icon.SVG
	}
	return defaultLinkIcon.SVG
}

// DefaultLinkIconSVG returns the fallback SVG.
func DefaultLinkIconSVG() string {
	return defaultLinkIcon.SVG
}
