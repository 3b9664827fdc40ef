package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	slug := Slugify("Hello, World!")
	assert.Regexp(t, `^hello-world-\d{4}$`, slug)

	slug = Slugify("  Spaces   everywhere  ")
	assert.Regexp(t, `^spaces-everywhere-\d{4}$`, slug)
}

func TestExcerpt(t *testing.T) {
	assert.Equal(t, "short", Excerpt("short", 150))

	long := strings.Repeat("a", 200)
	got := Excerpt(long, 150)
	assert.Equal(t, strings.Repeat("a", 150)+"...", got)
}
