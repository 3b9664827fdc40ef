package utils

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	nonWordChars = regexp.MustCompile(`[^\w\s]`)
	whitespace   = regexp.MustCompile(`\s+`)
)

// Slugify derives a URL-safe slug from a post title and appends the last four
// digits of the current unix-millisecond clock so near-identical titles do
// not collide.
func Slugify(title string) string {
	s := strings.ToLower(title)
	s = nonWordChars.ReplaceAllString(s, "")
	s = whitespace.ReplaceAllString(strings.TrimSpace(s), "-")

	millis := strconv.FormatInt(time.Now().UnixMilli(), 10)
	return s + "-" + millis[len(millis)-4:]
}

// Excerpt truncates content to at most limit runes, appending an ellipsis
// when content was cut.
func Excerpt(content string, limit int) string {
	runes := []rune(content)
	if len(runes) <= limit {
		return content
	}
	return string(runes[:limit]) + "..."
}
