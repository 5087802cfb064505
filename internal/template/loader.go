// Where: internal/template/loader.go
// What: Local template loading and declared-parameter extraction.
// Why: Catch overrides that the candidate template cannot accept before any
//      remote call is made.
package template

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Template is the local candidate template: its raw body plus the parameter
// keys it declares.
type Template struct {
	Path string
	Body string
	// DeclaredParameters lists the keys of the template's Parameters
	// section, sorted. Empty when the template declares none.
	DeclaredParameters []string
}

// Load reads the template file and extracts its declared parameter keys.
// CloudFormation templates are YAML or JSON; both parse here, and
// short-form intrinsic tags (!Ref, !Sub, ...) are tolerated because the
// document is only walked as a node tree, never fully decoded.
func Load(path string) (Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Template{}, fmt.Errorf("read template %s: %w", path, err)
	}

	tmpl := Template{Path: path, Body: string(data)}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Template{}, fmt.Errorf("parse template %s: %w", path, err)
	}
	tmpl.DeclaredParameters = declaredParameters(&doc)
	return tmpl, nil
}

// UndeclaredOverrides returns override keys the template does not declare.
// Submitting one would be rejected remotely; reporting it locally is
// faster and clearer.
func (t Template) UndeclaredOverrides(overrides map[string]string) []string {
	if len(overrides) == 0 {
		return nil
	}
	declared := make(map[string]bool, len(t.DeclaredParameters))
	for _, key := range t.DeclaredParameters {
		declared[key] = true
	}

	var unknown []string
	for key := range overrides {
		if !declared[key] {
			unknown = append(unknown, key)
		}
	}
	sort.Strings(unknown)
	return unknown
}

func declaredParameters(doc *yaml.Node) []string {
	root := doc
	if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		root = root.Content[0]
	}
	if root.Kind != yaml.MappingNode {
		return nil
	}

	var keys []string
	for i := 0; i+1 < len(root.Content); i += 2 {
		if root.Content[i].Value != "Parameters" {
			continue
		}
		section := root.Content[i+1]
		if section.Kind != yaml.MappingNode {
			return nil
		}
		for j := 0; j+1 < len(section.Content); j += 2 {
			keys = append(keys, section.Content[j].Value)
		}
	}
	sort.Strings(keys)
	return keys
}
