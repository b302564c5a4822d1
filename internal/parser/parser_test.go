package parser

import (
	"errors"
	"testing"
)

func TestParse_FrontmatterAndBody(t *testing.T) {
	input := []byte("---\ntitle: Hello\ntags:\n  - go\n  - docs\n---\n# Hello\nBody text.\n")
	r, err := Parse(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !r.HasFrontmatter {
		t.Error("HasFrontmatter = false")
	}
	if r.Frontmatter["title"] != "Hello" {
		t.Errorf("title = %v, want Hello", r.Frontmatter["title"])
	}
	tags, ok := r.Frontmatter["tags"].([]any)
	if !ok || len(tags) != 2 || tags[0] != "go" {
		t.Errorf("tags = %#v", r.Frontmatter["tags"])
	}
	if r.Body != "# Hello\nBody text.\n" {
		t.Errorf("body = %q", r.Body)
	}
}

func TestParse_NestedMapping(t *testing.T) {
	input := []byte("---\ntech_stack:\n  frontend: [React]\n  backend: [Go]\n---\n")
	r, err := Parse(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ts, ok := r.Frontmatter["tech_stack"].(map[string]any)
	if !ok || len(ts) != 2 {
		t.Errorf("tech_stack = %#v", r.Frontmatter["tech_stack"])
	}
}

func TestParse_NoFrontmatter(t *testing.T) {
	input := []byte("# Just a heading\nSome text.\n")
	r, err := Parse(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.HasFrontmatter {
		t.Error("HasFrontmatter = true")
	}
	if len(r.Frontmatter) != 0 {
		t.Errorf("expected empty frontmatter, got %v", r.Frontmatter)
	}
	if r.Body != string(input) {
		t.Errorf("body = %q", r.Body)
	}
}

func TestParse_EmptyBlock(t *testing.T) {
	r, err := Parse([]byte("---\n---\nbody\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Frontmatter == nil || len(r.Frontmatter) != 0 {
		t.Errorf("frontmatter = %#v, want empty map", r.Frontmatter)
	}
}

func TestParse_InvalidYAML(t *testing.T) {
	input := []byte("---\ntitle: [unclosed\n---\nBody\n")
	if _, err := Parse(input); err == nil {
		t.Fatal("expected error for invalid YAML")
	}
}

func TestParse_Unterminated(t *testing.T) {
	_, err := Parse([]byte("---\ntitle: x\nno closing\n"))
	if !errors.Is(err, ErrUnterminated) {
		t.Errorf("err = %v, want ErrUnterminated", err)
	}
}

func TestParse_ScalarBlockIsError(t *testing.T) {
	if _, err := Parse([]byte("---\n- a\n- b\n---\n")); err == nil {
		t.Error("expected error when front matter is not a mapping")
	}
}

func TestParse_ByteOrderMark(t *testing.T) {
	input := []byte("\ufeff---\ntitle: Hello\n---\nBody\n")
	r, err := Parse(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !r.HasFrontmatter || r.Frontmatter["title"] != "Hello" {
		t.Errorf("frontmatter = %#v", r.Frontmatter)
	}
	if r.Body != "Body\n" {
		t.Errorf("body = %q", r.Body)
	}
}

func TestParse_ThematicBreakIsBody(t *testing.T) {
	input := []byte("-----\n# heading\n")
	r, err := Parse(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.HasFrontmatter || len(r.Frontmatter) != 0 {
		t.Errorf("frontmatter = %#v, want none", r.Frontmatter)
	}
	if r.Body != string(input) {
		t.Errorf("body = %q", r.Body)
	}
}

func TestParse_DelimiterTrailingWhitespace(t *testing.T) {
	r, err := Parse([]byte("---  \ntitle: Hello\n--- \n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Frontmatter["title"] != "Hello" {
		t.Errorf("title = %v", r.Frontmatter["title"])
	}
}
