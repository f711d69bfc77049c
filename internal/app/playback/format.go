package playback

import (
	"fmt"
	"math"
)

// FormatTime renders seconds as minutes:seconds with truncation.
func FormatTime(seconds float64) string {
	if !knownDuration(seconds) {
		return "0:00"
	}
	minutes := int(math.Floor(seconds / 60))
	secs := int(math.Floor(math.Mod(seconds, 60)))
	return fmt.Sprintf("%d:%02d", minutes, secs)
}

// knownDuration reports whether d is a usable, finite, positive length.
func knownDuration(d float64) bool {
	return d > 0 && !math.IsInf(d, 0) && !math.IsNaN(d)
}

// VideoEmbedURL builds the autoplaying, looping video platform embed URL.
func VideoEmbedURL(host, videoID string, mute bool) string {
	m := 0
	if mute {
		m = 1
	}
	return fmt.Sprintf("https://%s/embed/%s?autoplay=1&mute=%d&loop=1&playlist=%s", host, videoID, m, videoID)
}
