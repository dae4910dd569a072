package events

import (
	"fmt"
	"regexp"
	"strings"
)

var youtubeIDPattern = regexp.MustCompile(`(?:youtube\.com/watch\?v=|youtu\.be/)([^&\n?#]+)`)

// EmbedHTML builds the iframe markup for a media URL. Spreaker URLs embed
// directly, YouTube watch/short URLs are rewritten to the embed form, and
// anything else falls back to a plain iframe. An empty URL yields no markup.
func EmbedHTML(mediaURL string) string {
	if mediaURL == "" {
		return ""
	}

	src := mediaURL
	if strings.Contains(mediaURL, "youtube.com") || strings.Contains(mediaURL, "youtu.be") {
		m := youtubeIDPattern.FindStringSubmatch(mediaURL)
		if len(m) < 2 {
			return ""
		}
		src = "https://www.youtube.com/embed/" + m[1]
	}

	return fmt.Sprintf(
		`<iframe src="%s" width="100%%" height="350" frameborder="0" allowfullscreen></iframe>`, src)
}
