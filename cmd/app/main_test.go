package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/starford/docmeta/internal/testutil"
)

const allCategories = "computer-science, frontend, backend, ai, projects, interview"

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), append([]string{"docmeta"}, args...), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

// writeConfig writes a config file pointing at root and returns its path.
func writeConfig(t *testing.T, root string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	doc := fmt.Sprintf("docs:\n  root: %q\nhistory:\n  path: %q\n", root, filepath.Join(dir, "history.db"))
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestNoArgs_PrintsUsageAndCategories(t *testing.T) {
	code, out, _ := runCLI(t)
	if code != 0 {
		t.Fatalf("exit = %d, want 0", code)
	}
	if !strings.Contains(out, "validate") || !strings.Contains(out, "template") {
		t.Errorf("usage missing commands:\n%s", out)
	}
	if !strings.Contains(out, "Available categories: "+allCategories) {
		t.Errorf("usage missing categories:\n%s", out)
	}
}

func TestUnknownCommand_PrintsUsage(t *testing.T) {
	code, out, _ := runCLI(t, "frobnicate")
	if code != 0 {
		t.Fatalf("exit = %d, want 0", code)
	}
	if !strings.Contains(out, "Available categories:") {
		t.Errorf("usage missing categories:\n%s", out)
	}
}

func TestTemplate_Projects(t *testing.T) {
	code, out, _ := runCLI(t, "template", "projects")
	if code != 0 {
		t.Fatalf("exit = %d, want 0", code)
	}
	for _, want := range []string{`status: "completed"`, `project_type: "web_application"`, "tech_stack:", "title: \"\""} {
		if !strings.Contains(out, want) {
			t.Errorf("template missing %q:\n%s", want, out)
		}
	}
	if !strings.HasPrefix(out, "---\n") || !strings.HasSuffix(out, "---\n") {
		t.Errorf("template not fenced:\n%s", out)
	}
}

func TestTemplate_UnknownCategory(t *testing.T) {
	code, out, errOut := runCLI(t, "template", "recipes")
	if code != 1 {
		t.Fatalf("exit = %d, want 1", code)
	}
	if !strings.Contains(out, "Available categories: "+allCategories) {
		t.Errorf("missing category list:\n%s", out)
	}
	if !strings.Contains(errOut, `unknown category: "recipes"`) {
		t.Errorf("stderr = %q", errOut)
	}
}

func TestTemplate_MissingCategory(t *testing.T) {
	code, out, _ := runCLI(t, "template")
	if code != 1 {
		t.Fatalf("exit = %d, want 1", code)
	}
	if !strings.Contains(out, "Available categories:") {
		t.Errorf("missing category list:\n%s", out)
	}
}

func TestTemplate_Write(t *testing.T) {
	root, _ := testutil.TestDocs(t, nil)
	cfg := writeConfig(t, root)

	code, _, errOut := runCLI(t, "--config", cfg, "template", "--write", "ai", "ai/new.md")
	if code != 0 {
		t.Fatalf("exit = %d, stderr = %s", code, errOut)
	}
	data, err := os.ReadFile(filepath.Join(root, "ai", "new.md"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "sidebar_position: 1") {
		t.Errorf("written template = %q", data)
	}

	code, _, errOut = runCLI(t, "--config", cfg, "template", "--write", "ai", "ai/new.md")
	if code != 1 || !strings.Contains(errOut, "already exists") {
		t.Errorf("overwrite: exit = %d, stderr = %s", code, errOut)
	}
}

func TestValidate_CleanTree(t *testing.T) {
	root, _ := testutil.TestDocs(t, map[string]string{
		"frontend/react.md": testutil.ValidFrontend,
		"projects/demo.md":  testutil.ValidProject,
	})

	code, out, _ := runCLI(t, "validate", "--root", root)
	if code != 0 {
		t.Fatalf("exit = %d, want 0\n%s", code, out)
	}
	if !strings.Contains(out, "Validating 2 Markdown files") {
		t.Errorf("missing header:\n%s", out)
	}
	if !strings.Contains(out, "OK: all documents passed metadata validation") {
		t.Errorf("missing OK line:\n%s", out)
	}
}

func TestValidate_ErrorsExitOne(t *testing.T) {
	root, _ := testutil.TestDocs(t, map[string]string{
		"frontend/react.md": testutil.ValidFrontend,
		"frontend/bad.md":   testutil.MissingTitle,
		"ai/broken.md":      testutil.Broken,
	})

	code, out, _ := runCLI(t, "validate", "--root", root)
	if code != 1 {
		t.Fatalf("exit = %d, want 1", code)
	}
	for _, want := range []string{
		"docs/ai/broken.md",
		"front-matter parse failure",
		"docs/frontend/bad.md",
		"missing required field: title",
		"FAIL: metadata errors found",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q:\n%s", want, out)
		}
	}
	if strings.Index(out, "docs/ai/broken.md") > strings.Index(out, "docs/frontend/bad.md") {
		t.Errorf("report not sorted by path:\n%s", out)
	}
}

func TestValidate_WarningsOnlyExitZero(t *testing.T) {
	root, _ := testutil.TestDocs(t, map[string]string{
		"misc/note.md": "no front matter at all",
	})

	code, out, _ := runCLI(t, "validate", "--root", root)
	if code != 0 {
		t.Fatalf("exit = %d, want 0\n%s", code, out)
	}
	if !strings.Contains(out, "no metadata schema for category") {
		t.Errorf("missing unknown-category warning:\n%s", out)
	}
}

func TestValidate_JSONFormat(t *testing.T) {
	root, _ := testutil.TestDocs(t, map[string]string{
		"frontend/bad.md": testutil.MissingTitle,
	})

	code, out, _ := runCLI(t, "validate", "--root", root, "--format", "json")
	if code != 1 {
		t.Fatalf("exit = %d, want 1", code)
	}
	var rep struct {
		Summary struct {
			Documents int `json:"documents"`
			Errors    int `json:"errors"`
		} `json:"summary"`
	}
	if err := json.Unmarshal([]byte(out), &rep); err != nil {
		t.Fatalf("stdout is not JSON: %v\n%s", err, out)
	}
	if rep.Summary.Documents != 1 || rep.Summary.Errors != 1 {
		t.Errorf("summary = %+v", rep.Summary)
	}
}

func TestValidate_InvalidFormat(t *testing.T) {
	root, _ := testutil.TestDocs(t, nil)
	code, _, _ := runCLI(t, "validate", "--root", root, "--format", "xml")
	if code != 1 {
		t.Errorf("exit = %d, want 1", code)
	}
}

func TestValidate_MissingRootIsFatal(t *testing.T) {
	code, out, errOut := runCLI(t, "validate", "--root", filepath.Join(t.TempDir(), "nope"))
	if code != 1 {
		t.Fatalf("exit = %d, want 1", code)
	}
	if strings.Contains(out, "Validating") {
		t.Errorf("scan should not start:\n%s", out)
	}
	if !strings.Contains(errOut, "document root not found") {
		t.Errorf("stderr = %q", errOut)
	}
}

func TestValidate_Record(t *testing.T) {
	root, _ := testutil.TestDocs(t, map[string]string{
		"frontend/react.md": testutil.ValidFrontend,
	})
	cfg := writeConfig(t, root)

	code, _, errOut := runCLI(t, "--config", cfg, "validate", "--record")
	if code != 0 {
		t.Fatalf("exit = %d, stderr = %s", code, errOut)
	}
	if !strings.Contains(errOut, "run recorded") {
		t.Errorf("stderr = %q", errOut)
	}
	if _, err := os.Stat(filepath.Join(filepath.Dir(cfg), "history.db")); err != nil {
		t.Errorf("history db not created: %v", err)
	}
}
