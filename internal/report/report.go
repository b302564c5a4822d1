// Package report aggregates per-document results into a validation report
// and renders it for terminals or machines.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/starford/docmeta/internal/models"
)

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Report is the outcome of one validation pass over a document tree.
type Report struct {
	Root        string          `json:"root"`
	GeneratedAt time.Time       `json:"generated_at"`
	Summary     models.Summary  `json:"summary"`
	Results     []models.Result `json:"results"`
}

// New builds a report from results, sorting them by path and computing totals.
func New(root string, results []models.Result) *Report {
	sorted := slices.Clone(results)
	slices.SortFunc(sorted, func(a, b models.Result) int {
		return strings.Compare(a.Path, b.Path)
	})
	r := &Report{
		Root:        root,
		GeneratedAt: time.Now().UTC(),
		Results:     sorted,
	}
	r.Summary.Documents = len(sorted)
	for _, res := range sorted {
		r.Summary.Errors += len(res.Errors)
		r.Summary.Warnings += len(res.Warnings)
	}
	return r
}

// Failed reports whether any document has at least one error.
func (r *Report) Failed() bool {
	return r.Summary.Errors > 0
}

// WithIssues returns the results that carry at least one error or warning.
func (r *Report) WithIssues() []models.Result {
	var out []models.Result
	for _, res := range r.Results {
		if res.HasIssues() {
			out = append(out, res)
		}
	}
	return out
}

// Write renders the report in the given format.
func (r *Report) Write(w io.Writer, format string) error {
	switch format {
	case "", FormatText:
		return r.WriteText(w)
	case FormatJSON:
		return r.WriteJSON(w)
	default:
		return fmt.Errorf("report: unknown format %q", format)
	}
}

// WriteJSON writes the report as indented JSON. Only documents with issues
// are listed; the summary still counts every document.
func (r *Report) WriteJSON(w io.Writer) error {
	out := *r
	out.Results = r.WithIssues()
	if out.Results == nil {
		out.Results = []models.Result{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

type styles struct {
	path    lipgloss.Style
	errors  lipgloss.Style
	warning lipgloss.Style
	ok      lipgloss.Style
}

func newStyles(w io.Writer) styles {
	re := lipgloss.NewRenderer(w)
	return styles{
		path:    re.NewStyle().Bold(true),
		errors:  re.NewStyle().Foreground(lipgloss.Color("9")),
		warning: re.NewStyle().Foreground(lipgloss.Color("11")),
		ok:      re.NewStyle().Foreground(lipgloss.Color("10")),
	}
}

// WriteText writes the human-readable report: each document with issues,
// its errors then its warnings, followed by the summary.
func (r *Report) WriteText(w io.Writer) error {
	st := newStyles(w)
	var b strings.Builder

	fmt.Fprintf(&b, "\nValidating %d Markdown files...\n\n", r.Summary.Documents)
	for _, res := range r.WithIssues() {
		writeResult(&b, st, res)
		b.WriteString("\n")
	}

	b.WriteString("Summary:\n")
	fmt.Fprintf(&b, "  • documents: %d\n", r.Summary.Documents)
	fmt.Fprintf(&b, "  • errors:    %d\n", r.Summary.Errors)
	fmt.Fprintf(&b, "  • warnings:  %d\n", r.Summary.Warnings)
	b.WriteString("\n")

	if r.Failed() {
		b.WriteString(st.errors.Render("FAIL: metadata errors found, fix them and retry"))
	} else {
		b.WriteString(st.ok.Render("OK: all documents passed metadata validation"))
	}
	b.WriteString("\n")

	_, err := io.WriteString(w, b.String())
	return err
}

// ResultText renders a single document result without styling.
func ResultText(res models.Result) string {
	var b strings.Builder
	writeResult(&b, styles{}, res)
	return b.String()
}

// writeResult writes one document entry: path, errors, warnings.
func writeResult(b *strings.Builder, st styles, res models.Result) {
	b.WriteString(st.path.Render(res.Path))
	b.WriteString("\n")
	if len(res.Errors) > 0 {
		b.WriteString("  " + st.errors.Render("errors:") + "\n")
		for _, e := range res.Errors {
			fmt.Fprintf(b, "    • %s\n", e.Message)
		}
	}
	if len(res.Warnings) > 0 {
		b.WriteString("  " + st.warning.Render("warnings:") + "\n")
		for _, wn := range res.Warnings {
			fmt.Fprintf(b, "    • %s\n", wn.Message)
		}
	}
}
