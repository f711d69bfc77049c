package catalog

import (
	"regexp"
	"strings"
)

// Version markers appended to track names by streaming services.
var versionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\s*-\s*\d{4}\s+remaster(ed)?(\s+version)?\b.*$`), // "- 2011 Remaster"
	regexp.MustCompile(`(?i)\s*-\s*remaster(ed)?(\s+\d{4})?(\s+version)?\b.*$`), // "- Remastered 2009"
	regexp.MustCompile(`(?i)\s*[(\[][^)\]]*remaster[^)\]]*[)\]]`),              // "(Remastered 2023)", "[Remaster]"
	regexp.MustCompile(`(?i)\s*[(\[][^)\]]*\bversion[)\]]`),                    // "(Single Version)"
	regexp.MustCompile(`(?i)\s*[(\[][^)\]]*\bedit[)\]]`),                       // "(Radio Edit)"
	regexp.MustCompile(`(?i)\s*[(\[]live\b[^)\]]*[)\]]`),                       // "(Live at Budokan)"
	regexp.MustCompile(`(?i)\s*-\s*live\b.*$`),                                 // "- Live"
	regexp.MustCompile(`(?i)\s*-\s*radio\s+edit\b.*$`),                         // "- Radio Edit"
	regexp.MustCompile(`(?i)\s*-\s*(single|album|mono|stereo|acoustic)\s+version\b.*$`),
}

var spaces = regexp.MustCompile(`\s+`)

// NormalizeTitle strips remaster and version markers from a track name.
// Matching ignores case; the remaining title keeps its original case.
func NormalizeTitle(name string) string {
	normalized := name
	for _, pattern := range versionPatterns {
		normalized = pattern.ReplaceAllString(normalized, "")
	}

	normalized = spaces.ReplaceAllString(strings.TrimSpace(normalized), " ")
	normalized = strings.TrimRight(normalized, " -")
	if normalized == "" {
		return strings.TrimSpace(name)
	}
	return normalized
}
