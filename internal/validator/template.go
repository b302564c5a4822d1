package validator

import (
	"fmt"
	"strings"

	"github.com/starford/docmeta/internal/apperr"
	"github.com/starford/docmeta/internal/schema"
)

// Template returns a front-matter skeleton containing every required field of
// category. Enumerated and suggested fields default to their first listed value.
func (v *Validator) Template(category string) (string, error) {
	c, ok := v.table.Lookup(category)
	if !ok {
		return "", fmt.Errorf("%w: %q", apperr.ErrUnknownCategory, category)
	}
	return RenderTemplate(c), nil
}

// RenderTemplate renders the skeleton for a single category.
func RenderTemplate(c schema.Category) string {
	lines := []string{"---"}
	for _, field := range c.Required {
		if values, ok := c.Enum(field); ok {
			lines = append(lines, fmt.Sprintf("%s: %q", field, values[0]))
			continue
		}
		if values, ok := c.Suggestions(field); ok {
			lines = append(lines, fmt.Sprintf("%s: %q", field, values[0]))
			continue
		}
		switch field {
		case "tags":
			sample := []string{"tag1", "tag2"}
			if len(c.Tags) > 0 {
				sample = c.Tags[:min(3, len(c.Tags))]
			}
			lines = append(lines, fmt.Sprintf("%s: [%s]", field, quoteAll(sample)))
		case "sidebar_position":
			lines = append(lines, field+": 1")
		case "tech_stack":
			lines = append(lines,
				field+":",
				`  frontend: ["React", "TypeScript"]`,
				`  backend: ["Node.js", "Express"]`,
				`  tools: ["Git", "VS Code"]`,
			)
		default:
			lines = append(lines, field+`: ""`)
		}
	}
	lines = append(lines, "---", "")
	return strings.Join(lines, "\n")
}

func quoteAll(values []string) string {
	quoted := make([]string, len(values))
	for i, s := range values {
		quoted[i] = fmt.Sprintf("%q", s)
	}
	return strings.Join(quoted, ", ")
}
