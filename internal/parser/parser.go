// Package parser extracts the leading front-matter block from Markdown content.
package parser

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/adrg/frontmatter"
	"gopkg.in/yaml.v3"
)

const delim = "---"

var bom = []byte("\ufeff")

// ErrUnterminated is returned when an opening delimiter has no closing one.
var ErrUnterminated = errors.New("unterminated front-matter block")

var yamlFormat = frontmatter.NewFormat(delim, delim, yaml.Unmarshal)

// Result holds the output of parsing a Markdown file.
type Result struct {
	Frontmatter map[string]any
	Body        string
	// HasFrontmatter is false when the document has no leading block at all.
	HasFrontmatter bool
}

// Parse separates YAML front matter (between leading --- delimiters) from the
// Markdown body. A document without a leading block yields an empty mapping.
// Malformed YAML or a missing closing delimiter is an error.
func Parse(data []byte) (*Result, error) {
	data = bytes.TrimPrefix(data, bom)
	trimmed := bytes.TrimLeft(data, "\n\r")
	if !isDelimLine(firstLine(trimmed)) {
		return &Result{Frontmatter: map[string]any{}, Body: string(data)}, nil
	}
	if !hasClosingDelim(trimmed) {
		return nil, ErrUnterminated
	}

	var fm map[string]any
	body, err := frontmatter.Parse(bytes.NewReader(trimmed), &fm, yamlFormat)
	if err != nil {
		return nil, fmt.Errorf("parser: %w", err)
	}
	if fm == nil {
		fm = map[string]any{}
	}
	return &Result{
		Frontmatter:    fm,
		Body:           string(bytes.TrimLeft(body, "\n\r")),
		HasFrontmatter: true,
	}, nil
}

// hasClosingDelim reports whether a delimiter line follows the opening one.
func hasClosingDelim(data []byte) bool {
	lines := bytes.Split(data, []byte("\n"))
	for _, line := range lines[1:] {
		if isDelimLine(line) {
			return true
		}
	}
	return false
}

func firstLine(data []byte) []byte {
	line, _, _ := bytes.Cut(data, []byte("\n"))
	return line
}

// isDelimLine reports whether line is exactly the delimiter, ignoring
// trailing whitespace. Longer runs of dashes are thematic breaks.
func isDelimLine(line []byte) bool {
	return string(bytes.TrimRight(line, " \t\r")) == delim
}
