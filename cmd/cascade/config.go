package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cascade-ui/cascade"
	"github.com/cascade-ui/cascade/pkg/host"
)

// document is the YAML shape the CLI accepts: named styles, initial
// environment values, and the widget tree under root.
type document struct {
	Styles map[string]map[string]any `yaml:"styles"`
	Env    map[string]any            `yaml:"env"`
	Root   map[string]any            `yaml:"root"`
}

func loadDocument(path string) (*document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if doc.Root == nil {
		return nil, fmt.Errorf("%s: missing root table", path)
	}
	return &doc, nil
}

// buildRuntime compiles the document against an in-memory host and returns
// the runtime it used.
func buildRuntime(doc *document) (*cascade.Runtime, error) {
	rt := cascade.NewRuntime(host.NewMemoryHost())
	for name, table := range doc.Styles {
		rt.Style(name, cascade.Config(table))
	}
	for name, initial := range doc.Env {
		if _, err := rt.AddEnvValue(name, initial); err != nil {
			return nil, err
		}
	}
	return rt, nil
}
