package schema

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
)

func TestBuiltin_Categories(t *testing.T) {
	tbl, err := Builtin()
	if err != nil {
		t.Fatalf("Builtin: %v", err)
	}
	want := []string{"computer-science", "frontend", "backend", "ai", "projects", "interview"}
	if got := tbl.Names(); !slices.Equal(got, want) {
		t.Errorf("names = %v, want %v", got, want)
	}
}

func TestBuiltin_Projects(t *testing.T) {
	tbl, err := Builtin()
	if err != nil {
		t.Fatalf("Builtin: %v", err)
	}
	c, ok := tbl.Lookup("projects")
	if !ok {
		t.Fatal("projects not found")
	}
	wantReq := []string{"title", "description", "tags", "project_type", "tech_stack", "status"}
	if !slices.Equal(c.Required, wantReq) {
		t.Errorf("required = %v, want %v", c.Required, wantReq)
	}
	statuses, ok := c.Enum("status")
	if !ok || statuses[0] != "completed" || len(statuses) != 4 {
		t.Errorf("status enum = %v", statuses)
	}
	types, _ := c.Enum("project_type")
	if !slices.Equal(types, []string{"web_application", "mobile_app", "library", "tool", "plugin"}) {
		t.Errorf("project_type enum = %v", types)
	}
}

func TestBuiltin_InterviewHasNoTagVocabulary(t *testing.T) {
	tbl, _ := Builtin()
	c, _ := tbl.Lookup("interview")
	if len(c.Tags) != 0 {
		t.Errorf("interview tags = %v, want none", c.Tags)
	}
	if d, _ := c.Enum("difficulty"); !slices.Equal(d, []string{"easy", "medium", "hard"}) {
		t.Errorf("difficulty = %v", d)
	}
	if _, closed := c.Enum("category"); closed {
		t.Error("interview category must not be a closed enumeration")
	}
	if cat, _ := c.Suggestions("category"); len(cat) != 5 || cat[0] != "技术基础" {
		t.Errorf("category suggestions = %v", cat)
	}
}

func TestLookup_ReturnsCopy(t *testing.T) {
	tbl, _ := Builtin()
	c, _ := tbl.Lookup("frontend")
	c.Required[0] = "mutated"
	again, _ := tbl.Lookup("frontend")
	if again.Required[0] != "title" {
		t.Errorf("table mutated through Lookup result: %v", again.Required)
	}
}

func TestParse_RejectsStructuralErrors(t *testing.T) {
	cases := map[string]string{
		"no categories":    "categories: []\n",
		"missing required": "categories:\n  - name: a\n",
		"unknown key":      "categories:\n  - name: a\n    required: [title]\n    colour: red\n",
		"bad name":         "categories:\n  - name: Has Space\n    required: [title]\n",
		"empty enum":       "categories:\n  - name: a\n    required: [title]\n    enums:\n      - field: x\n        values: []\n",
	}
	for name, doc := range cases {
		if _, err := Parse([]byte(doc)); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestParse_DuplicateCategory(t *testing.T) {
	doc := "categories:\n  - name: a\n    required: [title]\n  - name: a\n    required: [title]\n"
	_, err := Parse([]byte(doc))
	if err == nil || !strings.Contains(err.Error(), "duplicate category") {
		t.Errorf("err = %v, want duplicate category", err)
	}
}

func TestParse_DuplicateEnumField(t *testing.T) {
	doc := `categories:
  - name: a
    required: [title]
    enums:
      - field: status
        values: [x]
      - field: status
        values: [y]
`
	if _, err := Parse([]byte(doc)); err == nil {
		t.Error("expected duplicate enum error")
	}
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schema.yaml")
	doc := "categories:\n  - name: notes\n    required: [title]\n    tags: [go]\n"
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	tbl, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := tbl.Names(); !slices.Equal(got, []string{"notes"}) {
		t.Errorf("names = %v", got)
	}
}

func TestLoad_EmptyPathUsesBuiltin(t *testing.T) {
	tbl, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(tbl.Names()) != 6 {
		t.Errorf("len(names) = %d, want 6", len(tbl.Names()))
	}
}

func TestMarshal_RoundTrip(t *testing.T) {
	tbl, _ := Builtin()
	data, err := tbl.Marshal()
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	again, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !slices.Equal(again.Names(), tbl.Names()) {
		t.Errorf("names = %v", again.Names())
	}
}

func TestSuggest(t *testing.T) {
	tbl, _ := Builtin()
	got := tbl.Suggest("proj")
	if len(got) == 0 || got[0] != "projects" {
		t.Errorf("Suggest(proj) = %v", got)
	}
	if got := tbl.Suggest(""); got != nil {
		t.Errorf("Suggest(\"\") = %v, want nil", got)
	}
}

func TestParse_FieldBothEnumAndSuggested(t *testing.T) {
	doc := `categories:
  - name: a
    required: [title]
    enums:
      - field: kind
        values: [x]
    suggested:
      - field: kind
        values: [y]
`
	_, err := Parse([]byte(doc))
	if err == nil || !strings.Contains(err.Error(), "already declared") {
		t.Errorf("err = %v, want already declared", err)
	}
}
