package note

import (
	"strings"

	"gopkg.in/yaml.v3"
)

const fmDelim = "---"

// Frontmatter is the YAML metadata block at the top of a note.
type Frontmatter struct {
	Title string   `yaml:"title"`
	Tags  []string `yaml:"tags"`
}

// ParseFrontmatter extracts the YAML frontmatter from content, if present.
// Content without a well-formed block yields a zero Frontmatter; the note
// body is never an error.
func ParseFrontmatter(content string) Frontmatter {
	var fm Frontmatter
	block, _, ok := splitFrontmatter(content)
	if !ok {
		return fm
	}
	if err := yaml.Unmarshal([]byte(block), &fm); err != nil {
		return Frontmatter{}
	}
	return fm
}

// Body returns content with any frontmatter block stripped.
func Body(content string) string {
	_, body, ok := splitFrontmatter(content)
	if !ok {
		return content
	}
	return body
}

// splitFrontmatter splits content into its YAML block and body. The block
// must start at the first byte with a "---" line and end with another.
func splitFrontmatter(content string) (block, body string, ok bool) {
	if !strings.HasPrefix(content, fmDelim+"\n") && content != fmDelim {
		return "", "", false
	}
	rest := strings.TrimPrefix(content, fmDelim+"\n")
	end := strings.Index(rest, "\n"+fmDelim)
	if end < 0 {
		return "", "", false
	}
	block = rest[:end]
	body = rest[end+len("\n"+fmDelim):]
	body = strings.TrimPrefix(body, "\n")
	return block, body, true
}
