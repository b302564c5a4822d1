// Package models defines the domain types for docmeta.
package models

// Severity classifies an issue. Only errors affect the exit status.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue codes.
const (
	CodeParseFailure       = "parse_failure"
	CodeReadFailure        = "read_failure"
	CodeMissingField       = "missing_field"
	CodeInvalidEnum        = "invalid_enum"
	CodeUnknownTags        = "unknown_tags"
	CodeTitleTooLong       = "title_too_long"
	CodeDescriptionTooLong = "description_too_long"
	CodeUnknownCategory    = "unknown_category"
)

// Document is a Markdown file discovered under the document root.
type Document struct {
	Path     string `json:"path"`
	Content  []byte `json:"-"`
	Checksum string `json:"checksum"`
}

// Issue is a single schema violation or style suggestion.
type Issue struct {
	Severity Severity `json:"severity"`
	Code     string   `json:"code"`
	Field    string   `json:"field,omitempty"`
	Message  string   `json:"message"`
}

func (i Issue) String() string { return i.Message }

// Result is the outcome of validating one document.
type Result struct {
	Path     string  `json:"path"`
	Category string  `json:"category"`
	Checksum string  `json:"checksum,omitempty"`
	Errors   []Issue `json:"errors"`
	Warnings []Issue `json:"warnings"`
}

// AddError appends an error-severity issue.
func (r *Result) AddError(code, field, msg string) {
	r.Errors = append(r.Errors, Issue{Severity: SeverityError, Code: code, Field: field, Message: msg})
}

// AddWarning appends a warning-severity issue.
func (r *Result) AddWarning(code, field, msg string) {
	r.Warnings = append(r.Warnings, Issue{Severity: SeverityWarning, Code: code, Field: field, Message: msg})
}

// HasIssues reports whether the result carries any error or warning.
func (r *Result) HasIssues() bool {
	return len(r.Errors) > 0 || len(r.Warnings) > 0
}

// Summary holds totals for a validation pass.
type Summary struct {
	Documents int `json:"documents"`
	Errors    int `json:"errors"`
	Warnings  int `json:"warnings"`
}
