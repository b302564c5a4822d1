package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/docmeta/internal/models"
)

func result(path string, errs, warns []string) models.Result {
	r := models.Result{Path: path, Errors: []models.Issue{}, Warnings: []models.Issue{}}
	for _, e := range errs {
		r.AddError(models.CodeMissingField, "", e)
	}
	for _, w := range warns {
		r.AddWarning(models.CodeUnknownTags, "", w)
	}
	return r
}

func TestNew_SortsAndCounts(t *testing.T) {
	r := New("docs", []models.Result{
		result("docs/b.md", []string{"e1", "e2"}, nil),
		result("docs/a.md", nil, []string{"w1"}),
		result("docs/c.md", nil, nil),
	})
	require.Len(t, r.Results, 3)
	assert.Equal(t, "docs/a.md", r.Results[0].Path)
	assert.Equal(t, "docs/c.md", r.Results[2].Path)
	assert.Equal(t, models.Summary{Documents: 3, Errors: 2, Warnings: 1}, r.Summary)
	assert.True(t, r.Failed())
	assert.Len(t, r.WithIssues(), 2)
}

func TestFailed_WarningsOnly(t *testing.T) {
	r := New("docs", []models.Result{result("docs/a.md", nil, []string{"w"})})
	assert.False(t, r.Failed())
}

func TestWriteText(t *testing.T) {
	r := New("docs", []models.Result{
		result("docs/a.md", []string{"missing required field: title"}, []string{"title too long (61 > 60 characters)"}),
		result("docs/clean.md", nil, nil),
	})
	var buf bytes.Buffer
	require.NoError(t, r.WriteText(&buf))
	out := buf.String()

	assert.Contains(t, out, "Validating 2 Markdown files")
	assert.Contains(t, out, "docs/a.md")
	assert.NotContains(t, out, "docs/clean.md")
	assert.Contains(t, out, "• missing required field: title")
	assert.Contains(t, out, "• documents: 2")
	assert.Contains(t, out, "• errors:    1")
	assert.Contains(t, out, "• warnings:  1")
	assert.Contains(t, out, "FAIL")

	// Errors are listed before warnings.
	assert.Less(t, strings.Index(out, "errors:"), strings.Index(out, "warnings:"))
}

func TestWriteText_OK(t *testing.T) {
	r := New("docs", []models.Result{result("docs/a.md", nil, nil)})
	var buf bytes.Buffer
	require.NoError(t, r.WriteText(&buf))
	assert.Contains(t, buf.String(), "OK: all documents passed")
	assert.Contains(t, buf.String(), "• errors:    0")
}

func TestWriteJSON(t *testing.T) {
	r := New("docs", []models.Result{
		result("docs/a.md", []string{"boom"}, nil),
		result("docs/b.md", nil, nil),
	})
	var buf bytes.Buffer
	require.NoError(t, r.Write(&buf, FormatJSON))

	var decoded Report
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, 2, decoded.Summary.Documents)
	require.Len(t, decoded.Results, 1)
	assert.Equal(t, "boom", decoded.Results[0].Errors[0].Message)
}

func TestWrite_UnknownFormat(t *testing.T) {
	r := New("docs", nil)
	assert.Error(t, r.Write(&bytes.Buffer{}, "xml"))
}

func TestResultText(t *testing.T) {
	out := ResultText(result("docs/x.md", []string{"e"}, []string{"w"}))
	assert.Equal(t, "docs/x.md\n  errors:\n    • e\n  warnings:\n    • w\n", out)
}
