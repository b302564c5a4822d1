package mcpserver

import (
	"fmt"
	"strings"

	"github.com/starford/docmeta/internal/schema"
	"github.com/starford/docmeta/internal/validator"
)

const contractHeader = `# Documentation Front-Matter Contract

Every Markdown document under the documentation root MUST start with a YAML
front-matter block delimited by ` + "`---`" + ` lines. The directory directly below
the root selects the category, and the category selects the required fields.

## Rules

1. A required field is missing when the key is absent, null, an empty string,
   an empty list or an empty mapping.
2. Enumerated fields accept only the listed values.
3. ` + "`tags`" + ` should overlap the category's recommended vocabulary.
4. ` + "`title`" + ` should be at most %d characters, ` + "`description`" + ` at most %d.
5. Documents outside any category are reported with a warning only.

Use the ` + "`get_template`" + ` tool to obtain a valid skeleton for a category.

## Categories
`

// Contract renders the front-matter contract for every category in tbl.
func Contract(tbl *schema.Table) string {
	var b strings.Builder
	fmt.Fprintf(&b, contractHeader, validator.TitleMaxLen, validator.DescriptionMaxLen)

	for _, c := range tbl.Categories() {
		fmt.Fprintf(&b, "\n### %s\n\n", c.Name)
		fmt.Fprintf(&b, "- required: %s\n", codeList(c.Required))
		if len(c.Optional) > 0 {
			fmt.Fprintf(&b, "- optional: %s\n", codeList(c.Optional))
		}
		for _, e := range c.Enums {
			fmt.Fprintf(&b, "- `%s` one of: %s\n", e.Field, codeList(e.Values))
		}
		for _, e := range c.Suggested {
			fmt.Fprintf(&b, "- `%s` usually one of: %s (not enforced)\n", e.Field, codeList(e.Values))
		}
		if len(c.Tags) > 0 {
			fmt.Fprintf(&b, "- recommended tags: %s\n", strings.Join(c.Tags, ", "))
		}
	}
	return b.String()
}

func codeList(items []string) string {
	quoted := make([]string, len(items))
	for i, s := range items {
		quoted[i] = "`" + s + "`"
	}
	return strings.Join(quoted, ", ")
}
