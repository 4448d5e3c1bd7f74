package codec

import (
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Frontmatter holds metadata from a markdown export's YAML front matter.
// All fields are best-effort: missing or malformed frontmatter produces zero values.
type Frontmatter struct {
	Title      string    `yaml:"title"`
	ListID     string    `yaml:"list_id,omitempty"`
	ExportedAt time.Time `yaml:"exported_at"`
}

// ParseFrontmatter extracts YAML front matter from document content and
// returns it together with the remaining body. Front matter must be
// delimited by "---" on its own line at the start of the content. Content
// without front matter is returned unchanged as the body.
func ParseFrontmatter(content string) (Frontmatter, string) {
	offset := 0
	opened := false
	var header []string

	for line := range strings.Lines(content) {
		offset += len(line)
		trimmed := strings.TrimSpace(line)

		if !opened {
			// First line must be "---"
			if trimmed != "---" {
				return Frontmatter{}, content
			}
			opened = true
			continue
		}

		if trimmed == "---" {
			var fm Frontmatter
			_ = yaml.Unmarshal([]byte(strings.Join(header, "")), &fm)
			return fm, content[offset:]
		}
		header = append(header, line)
	}

	return Frontmatter{}, content
}

func renderFrontmatter(fm Frontmatter) (string, error) {
	data, err := yaml.Marshal(fm)
	if err != nil {
		return "", err
	}
	return "---\n" + string(data) + "---\n\n", nil
}
