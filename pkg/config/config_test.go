package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type sample struct {
	Root    string `yaml:"root"`
	Workers int    `yaml:"workers"`
}

func (s *sample) Validate() error {
	if s.Root == "" {
		return errors.New("root is required")
	}
	return nil
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_ExpandsEnv(t *testing.T) {
	t.Setenv("CFG_TEST_ROOT", "site/docs")
	path := writeFile(t, "root: ${CFG_TEST_ROOT}\nworkers: 2\n")

	var s sample
	if err := Load(path, &s); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Root != "site/docs" || s.Workers != 2 {
		t.Errorf("got %+v", s)
	}
}

func TestLoad_RunsValidator(t *testing.T) {
	path := writeFile(t, "workers: 2\n")
	var s sample
	err := Load(path, &s)
	if err == nil || !strings.Contains(err.Error(), "root is required") {
		t.Errorf("err = %v", err)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	var s sample
	if err := Load(filepath.Join(t.TempDir(), "nope.yaml"), &s); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadOptional_MissingFileValidatesDefaults(t *testing.T) {
	s := sample{Root: "docs"}
	if err := LoadOptional(filepath.Join(t.TempDir(), "nope.yaml"), &s); err != nil {
		t.Fatalf("LoadOptional: %v", err)
	}
	if s.Root != "docs" {
		t.Errorf("defaults changed: %+v", s)
	}

	var empty sample
	if err := LoadOptional("", &empty); err == nil {
		t.Error("invalid defaults should still fail validation")
	}
}

func TestLoadOptional_OverridesDefaults(t *testing.T) {
	path := writeFile(t, "workers: 8\n")
	s := sample{Root: "docs", Workers: 1}
	if err := LoadOptional(path, &s); err != nil {
		t.Fatalf("LoadOptional: %v", err)
	}
	if s.Root != "docs" || s.Workers != 8 {
		t.Errorf("got %+v", s)
	}
}
