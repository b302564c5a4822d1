// Package validator checks document front matter against the category schema
// table and generates front-matter templates.
package validator

import (
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/starford/docmeta/internal/models"
	"github.com/starford/docmeta/internal/parser"
	"github.com/starford/docmeta/internal/schema"
)

// Length limits, in Unicode code points.
const (
	TitleMaxLen       = 60
	DescriptionMaxLen = 160
)

// Option configures a Validator.
type Option func(*Validator)

// WithRootSegment sets the directory name used for category resolution.
func WithRootSegment(segment string) Option {
	return func(v *Validator) {
		if segment != "" {
			v.rootSegment = segment
		}
	}
}

// Validator validates documents against a schema table. It holds no mutable
// state and is safe for concurrent use.
type Validator struct {
	table       *schema.Table
	rootSegment string
}

// New creates a Validator over table.
func New(table *schema.Table, opts ...Option) *Validator {
	v := &Validator{table: table, rootSegment: DefaultRootSegment}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Table returns the schema table the validator checks against.
func (v *Validator) Table() *schema.Table { return v.table }

// Category resolves the category for a document path.
func (v *Validator) Category(path string) string {
	return CategoryFromPath(path, v.rootSegment)
}

// Validate parses content and validates its front matter against the schema
// selected by path. Parse failures are recorded as a single error.
func (v *Validator) Validate(path string, content []byte) models.Result {
	category := v.Category(path)
	res, err := parser.Parse(content)
	if err != nil {
		out := newResult(path, category)
		out.AddError(models.CodeParseFailure, "", fmt.Sprintf("front-matter parse failure: %s", err))
		return out
	}
	out := v.ValidateFrontmatter(category, res.Frontmatter)
	out.Path = path
	return out
}

// ValidateFrontmatter validates an already parsed front-matter mapping against
// the named category.
func (v *Validator) ValidateFrontmatter(category string, fm map[string]any) models.Result {
	out := newResult("", category)
	c, ok := v.table.Lookup(category)
	if !ok {
		out.AddWarning(models.CodeUnknownCategory, "", fmt.Sprintf("no metadata schema for category %q", category))
		return out
	}

	for _, field := range c.Required {
		if !present(fm[field]) {
			out.AddError(models.CodeMissingField, field, "missing required field: "+field)
		}
	}

	for _, e := range c.Enums {
		val, ok := fm[e.Field]
		if !ok || !present(val) {
			continue
		}
		s := stringify(val)
		if !slices.Contains(e.Values, s) {
			out.AddError(models.CodeInvalidEnum, e.Field,
				fmt.Sprintf("invalid %s value: %s (allowed: %s)", e.Field, s, strings.Join(e.Values, ", ")))
		}
	}

	if tags, ok := fm["tags"].([]any); ok && len(c.Tags) > 0 {
		var unknown []string
		for _, t := range tags {
			tag := stringify(t)
			if !overlaps(tag, c.Tags) {
				unknown = append(unknown, tag)
			}
		}
		if len(unknown) > 0 {
			out.AddWarning(models.CodeUnknownTags, "tags",
				"tags not in recommended list: "+strings.Join(unknown, ", "))
		}
	}

	if title, ok := fm["title"].(string); ok {
		if n := utf8.RuneCountInString(title); n > TitleMaxLen {
			out.AddWarning(models.CodeTitleTooLong, "title",
				fmt.Sprintf("title too long (%d > %d characters)", n, TitleMaxLen))
		}
	}

	if desc, ok := fm["description"].(string); ok {
		if n := utf8.RuneCountInString(desc); n > DescriptionMaxLen {
			out.AddWarning(models.CodeDescriptionTooLong, "description",
				fmt.Sprintf("description too long (%d > %d characters)", n, DescriptionMaxLen))
		}
	}

	return out
}

func newResult(path, category string) models.Result {
	return models.Result{
		Path:     path,
		Category: category,
		Errors:   []models.Issue{},
		Warnings: []models.Issue{},
	}
}

// present reports whether a front-matter value counts as supplied: the key
// exists and, for strings, sequences and mappings, the value is non-empty.
// Numbers (including zero) and booleans are always present.
func present(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case string:
		return x != ""
	case []any:
		return len(x) > 0
	case []string:
		return len(x) > 0
	case map[string]any:
		return len(x) > 0
	case map[any]any:
		return len(x) > 0
	default:
		return true
	}
}

func stringify(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// overlaps reports whether tag is a substring of, or contains, any vocabulary entry.
func overlaps(tag string, vocabulary []string) bool {
	for _, known := range vocabulary {
		if strings.Contains(tag, known) || strings.Contains(known, tag) {
			return true
		}
	}
	return false
}
