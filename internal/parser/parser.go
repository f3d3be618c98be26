// Package parser extracts YAML front-matter and derived metadata from
// Markdown content.
package parser

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/starford/lagu/internal/apperr"
	"github.com/starford/lagu/internal/models"
)

const fence = "---"

// Parse splits raw Markdown content into front-matter metadata and the
// residual body.
//
// Content without a leading fence is returned whole, with the title
// derived from the first heading line. An opening fence that is never
// closed is stripped and the remainder treated as body. Between two
// fences sits YAML with the recognised keys id, title, reading_time
// and tags; unknown keys are ignored. After a successful front-matter
// parse the reading time is recomputed from the body, overriding any
// value the front-matter supplied, and a missing title is backfilled
// from the body's first heading.
func Parse(content string) (models.Metadata, string, error) {
	meta := models.Metadata{Title: TitleFromH1(content)}

	if !strings.HasPrefix(content, fence) {
		return meta, content, nil
	}

	rest := content[len(fence):]
	end := strings.Index(rest, fence)
	if end < 0 {
		return meta, rest, nil
	}

	block := rest[:end]
	body := rest[end+len(fence):]

	if block == "" {
		return meta, body, nil
	}

	var parsed models.Metadata
	if err := yaml.Unmarshal([]byte(block), &parsed); err != nil {
		return models.Metadata{}, "", fmt.Errorf("%w: %v", apperr.ErrFrontmatter, err)
	}
	meta = parsed

	rt := ReadingTime(body)
	meta.ReadingTime = &rt

	if meta.Title == nil {
		meta.Title = TitleFromH1(body)
	}

	return meta, body, nil
}

// TitleFromH1 returns the text after the first '#' on the first line
// that contains one, or nil when no line does. Any '#' qualifies, not
// only a leading one.
func TitleFromH1(content string) *string {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		i := strings.Index(line, "#")
		if i < 0 {
			continue
		}
		title := strings.TrimSpace(line[i+1:])
		return &title
	}
	return nil
}

// ReadingTime estimates minutes to read from the count of
// space-delimited tokens. The division truncates, so any body under
// 200 tokens estimates to zero.
func ReadingTime(body string) int32 {
	words := len(strings.Split(body, " "))
	return int32(float32(words/200) * 0.60)
}
