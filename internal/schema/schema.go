// Package schema holds the per-category front-matter contract: required and
// optional fields, recommended tags and closed enumerations.
package schema

import (
	"fmt"
	"regexp"
	"slices"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/sahilm/fuzzy"
)

var categoryNameRe = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)

// Enum is a closed set of allowed values for one field.
type Enum struct {
	Field  string   `yaml:"field" json:"field"`
	Values []string `yaml:"values" json:"values"`
}

// Validate validates the enumeration definition.
func (e Enum) Validate() error {
	return validation.ValidateStruct(&e,
		validation.Field(&e.Field, validation.Required),
		validation.Field(&e.Values, validation.Required, validation.Each(validation.Required)),
	)
}

// Category is the schema for one content grouping.
type Category struct {
	Name     string   `yaml:"name" json:"name"`
	Required []string `yaml:"required" json:"required"`
	Optional []string `yaml:"optional,omitempty" json:"optional,omitempty"`
	Tags     []string `yaml:"tags,omitempty" json:"tags,omitempty"`
	Enums    []Enum   `yaml:"enums,omitempty" json:"enums,omitempty"`
	// Suggested lists conventional values for open fields. They seed
	// templates and are never enforced.
	Suggested []Enum `yaml:"suggested,omitempty" json:"suggested,omitempty"`
}

// Validate validates the category definition.
func (c *Category) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Name, validation.Required, validation.Match(categoryNameRe)),
		validation.Field(&c.Required, validation.Required, validation.Each(validation.Required)),
		validation.Field(&c.Optional, validation.Each(validation.Required)),
		validation.Field(&c.Tags, validation.Each(validation.Required)),
		validation.Field(&c.Enums),
		validation.Field(&c.Suggested),
	); err != nil {
		return err
	}
	seen := make(map[string]string, len(c.Enums)+len(c.Suggested))
	for _, group := range []struct {
		name  string
		items []Enum
	}{{"enums", c.Enums}, {"suggested", c.Suggested}} {
		for _, e := range group.items {
			if prev, dup := seen[e.Field]; dup {
				return fmt.Errorf("%s: field %q already declared in %s", group.name, e.Field, prev)
			}
			seen[e.Field] = group.name
		}
	}
	return nil
}

// Enum returns the allowed values for field, if the field is enumerated.
func (c Category) Enum(field string) ([]string, bool) {
	for _, e := range c.Enums {
		if e.Field == field {
			return e.Values, true
		}
	}
	return nil, false
}

// Suggestions returns the conventional values listed for an open field.
func (c Category) Suggestions(field string) ([]string, bool) {
	for _, e := range c.Suggested {
		if e.Field == field {
			return e.Values, true
		}
	}
	return nil, false
}

// IsRequired reports whether field is in the required list.
func (c Category) IsRequired(field string) bool {
	return slices.Contains(c.Required, field)
}

// Table maps category names to their schema. A Table is immutable once built.
type Table struct {
	categories []Category
	byName     map[string]int
}

// NewTable builds a table from categories, keeping declaration order.
func NewTable(categories []Category) (*Table, error) {
	t := &Table{
		categories: make([]Category, 0, len(categories)),
		byName:     make(map[string]int, len(categories)),
	}
	for i := range categories {
		c := categories[i]
		if err := c.Validate(); err != nil {
			return nil, fmt.Errorf("schema: category %q: %w", c.Name, err)
		}
		if _, dup := t.byName[c.Name]; dup {
			return nil, fmt.Errorf("schema: duplicate category %q", c.Name)
		}
		t.byName[c.Name] = len(t.categories)
		t.categories = append(t.categories, cloneCategory(c))
	}
	return t, nil
}

// Lookup returns the schema registered for name.
func (t *Table) Lookup(name string) (Category, bool) {
	i, ok := t.byName[name]
	if !ok {
		return Category{}, false
	}
	return cloneCategory(t.categories[i]), true
}

// Names returns the category names in declaration order.
func (t *Table) Names() []string {
	out := make([]string, len(t.categories))
	for i, c := range t.categories {
		out[i] = c.Name
	}
	return out
}

// Categories returns a copy of every category in declaration order.
func (t *Table) Categories() []Category {
	out := make([]Category, len(t.categories))
	for i, c := range t.categories {
		out[i] = cloneCategory(c)
	}
	return out
}

// Suggest returns category names that fuzzily match name, best match first.
func (t *Table) Suggest(name string) []string {
	if name == "" {
		return nil
	}
	matches := fuzzy.Find(name, t.Names())
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, m.Str)
	}
	return out
}

func cloneCategory(c Category) Category {
	out := Category{
		Name:     c.Name,
		Required: slices.Clone(c.Required),
		Optional: slices.Clone(c.Optional),
		Tags:     slices.Clone(c.Tags),
	}
	out.Enums = cloneEnums(c.Enums)
	out.Suggested = cloneEnums(c.Suggested)
	return out
}

func cloneEnums(in []Enum) []Enum {
	if in == nil {
		return nil
	}
	out := make([]Enum, len(in))
	for i, e := range in {
		out[i] = Enum{Field: e.Field, Values: slices.Clone(e.Values)}
	}
	return out
}
