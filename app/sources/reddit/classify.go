package reddit

import (
	"strings"

	"github.com/viralcal/viralcal/app/viral"
)

var newsSubreddits = map[string]bool{
	"news":          true,
	"worldnews":     true,
	"politics":      true,
	"technology":    true,
	"breakingnews":  true,
	"upliftingnews": true,
}

// classify derives a content type from post metadata. Pure policy: video
// hints win, then image posts read as memes, then news subreddits, and
// everything else files as a generic trend.
func classify(p post) viral.ContentType {
	if p.IsVideo || strings.Contains(p.PostHint, "video") {
		return viral.ContentVideo
	}
	if p.PostHint == "image" || isImageURL(p.URL) {
		return viral.ContentMeme
	}
	if newsSubreddits[strings.ToLower(p.Subreddit)] {
		return viral.ContentNews
	}
	return viral.ContentTrend
}

func isImageURL(url string) bool {
	lower := strings.ToLower(url)
	for _, host := range []string{"i.redd.it", "i.imgur.com"} {
		if strings.Contains(lower, host) {
			return true
		}
	}
	for _, ext := range []string{".jpg", ".jpeg", ".png", ".gif"} {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}
