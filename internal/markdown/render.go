package markdown

import (
	"strings"

	"gopkg.in/yaml.v3"
)

// Render serializes a Document back to Markdown with YAML frontmatter.
// An empty frontmatter map renders the body alone.
func Render(d Document) (string, error) {
	var b strings.Builder
	if len(d.Frontmatter) > 0 {
		fm, err := yaml.Marshal(d.Frontmatter)
		if err != nil {
			return "", err
		}
		b.WriteString("---\n")
		b.Write(fm)
		b.WriteString("---\n\n")
	}
	b.WriteString(strings.TrimLeft(d.Body, "\n"))
	if !strings.HasSuffix(d.Body, "\n") {
		b.WriteString("\n")
	}
	return b.String(), nil
}
