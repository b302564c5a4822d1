package schema

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

//go:embed builtin.yaml
var builtinTable []byte

//go:embed table.schema.json
var tableSchemaJSON []byte

type tableFile struct {
	Categories []Category `yaml:"categories"`
}

var compileTableSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource("table.schema.json", bytes.NewReader(tableSchemaJSON)); err != nil {
		return nil, err
	}
	return compiler.Compile("table.schema.json")
})

// Builtin returns the embedded default table.
func Builtin() (*Table, error) {
	return Parse(builtinTable)
}

// Load reads a table from path, or returns the embedded table when path is empty.
func Load(path string) (*Table, error) {
	if path == "" {
		return Builtin()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("schema: read %s: %w", path, err)
	}
	t, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// Parse decodes a YAML table, checks it against the table JSON Schema and
// builds an immutable Table.
func Parse(data []byte) (*Table, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("schema: decode: %w", err)
	}
	if err := checkStructure(raw); err != nil {
		return nil, err
	}

	var file tableFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("schema: decode: %w", err)
	}
	return NewTable(file.Categories)
}

// checkStructure validates the decoded document against table.schema.json.
// The YAML value is round-tripped through JSON so the validator sees plain
// JSON types.
func checkStructure(raw any) error {
	compiled, err := compileTableSchema()
	if err != nil {
		return fmt.Errorf("schema: compile table schema: %w", err)
	}
	encoded, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("schema: encode: %w", err)
	}
	var doc any
	if err := json.Unmarshal(encoded, &doc); err != nil {
		return fmt.Errorf("schema: encode: %w", err)
	}
	if err := compiled.Validate(doc); err != nil {
		return fmt.Errorf("schema: invalid table: %s", describe(err))
	}
	return nil
}

func describe(err error) string {
	verr, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return err.Error()
	}
	var parts []string
	var walk func(*jsonschema.ValidationError)
	walk = func(node *jsonschema.ValidationError) {
		if len(node.Causes) == 0 {
			loc := node.InstanceLocation
			if loc == "" {
				loc = "/"
			}
			parts = append(parts, fmt.Sprintf("%s: %s", loc, node.Message))
			return
		}
		for _, c := range node.Causes {
			walk(c)
		}
	}
	walk(verr)
	return strings.Join(parts, "; ")
}

// Marshal renders the table as YAML in the same layout it is loaded from.
func (t *Table) Marshal() ([]byte, error) {
	return yaml.Marshal(tableFile{Categories: t.Categories()})
}
