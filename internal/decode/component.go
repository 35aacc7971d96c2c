// Package decode turns raw engine output into typed results. Every decoder
// is a pure function of its input text and performs no I/O, so each format
// can be unit-tested against literal captured strings.
package decode

import (
	"encoding/json"
	"fmt"
)

// Component kinds emitted by the engine's extractors.
const (
	KindFunction  = "function"
	KindClass     = "class"
	KindMethod    = "method"
	KindField     = "field"
	KindVariable  = "variable"
	KindTypeAlias = "type_alias"
	KindInterface = "interface"
	KindEnum      = "enum"
	KindNamespace = "namespace"
	KindImport    = "import"
)

// Component is one extracted program element. FullComponentPath is the
// stable identity used for graph lookups; it is unique within a workspace
// snapshot. Variant-specific fields are only meaningful for their kind.
type Component struct {
	Kind              string `json:"kind"`
	Name              string `json:"name"`
	ModuleName        string `json:"module_name,omitempty"`
	FilePath          string `json:"file_path,omitempty"`
	StartLine         int    `json:"start_line,omitempty"`
	StartColumn       int    `json:"start_column,omitempty"`
	EndLine           int    `json:"end_line,omitempty"`
	EndColumn         int    `json:"end_column,omitempty"`
	FullComponentPath string `json:"full_component_path,omitempty"`
	Docstring         string `json:"docstring,omitempty"`

	// Function and method variants.
	Parameters    []Parameter    `json:"parameters,omitempty"`
	FunctionCalls []FunctionCall `json:"function_calls,omitempty"`

	// Class and interface variants.
	BaseClasses []string `json:"base_classes,omitempty"`
	Implements  []string `json:"implements,omitempty"`
}

// Parameter is one entry of a function's parameter list.
type Parameter struct {
	Name string `json:"name"`
	Type string `json:"type,omitempty"`
}

// FunctionCall is one outgoing call edge recorded on a function component.
type FunctionCall struct {
	Name    string   `json:"name"`
	Modules []string `json:"modules,omitempty"`
}

// Components decodes a JSON document holding a list of components.
func Components(text string) ([]Component, error) {
	var comps []Component
	if err := json.Unmarshal([]byte(text), &comps); err != nil {
		return nil, fmt.Errorf("component list %q: %w", Excerpt(text), err)
	}
	return comps, nil
}

// StringList decodes a JSON document holding a list of strings, the shape
// shared by the module-listing and ancestry query operations.
func StringList(text string) ([]string, error) {
	var out []string
	if err := json.Unmarshal([]byte(text), &out); err != nil {
		return nil, fmt.Errorf("string list %q: %w", Excerpt(text), err)
	}
	return out, nil
}

// excerptLen bounds offending text carried inside errors so a multi-megabyte
// engine dump never ends up in a log line.
const excerptLen = 240

// Excerpt returns text shortened to a diagnosable prefix.
func Excerpt(text string) string {
	if len(text) <= excerptLen {
		return text
	}
	return text[:excerptLen] + "..."
}
