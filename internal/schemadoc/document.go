// Package schemadoc reads the bundled JSON Schema artifact produced by the
// external ontology build. The document is parsed once per session and
// treated as immutable afterwards; every accessor returns copies so callers
// cannot corrupt the shared parse.
package schemadoc

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
)

// Document is the parsed schema bundle: a root dataset schema, a table of
// named variant definitions, and the sea-names vocabulary decoration.
type Document struct {
	root map[string]any
	defs map[string]map[string]any
}

// seaNamesDefinition is the vocabulary decoration the ontology build
// attaches alongside the variant definitions.
const seaNamesDefinition = "SeaNames"

// Parse decodes a schema bundle from raw JSON. Definitions live under
// "$defs" with "definitions" accepted as the legacy spelling.
func Parse(data []byte) (*Document, error) {
	var root map[string]any
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("parse schema bundle: %w", err)
	}
	rawDefs, ok := root["$defs"].(map[string]any)
	if !ok {
		rawDefs, _ = root["definitions"].(map[string]any)
	}
	defs := make(map[string]map[string]any, len(rawDefs))
	for name, fragment := range rawDefs {
		def, ok := fragment.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("definition %q is not an object", name)
		}
		defs[name] = def
	}
	return &Document{root: root, defs: defs}, nil
}

// Load reads and parses a schema bundle from disk.
func Load(path string) (*Document, error) {
	// #nosec G304 -- schema path comes from configuration, not request data
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schema bundle: %w", err)
	}
	return Parse(data)
}

// HasDefinition reports whether the definition table contains name.
func (d *Document) HasDefinition(name string) bool {
	_, ok := d.defs[name]
	return ok
}

// DefinitionNames lists the definition table's keys in sorted order.
func (d *Document) DefinitionNames() []string {
	names := make([]string, 0, len(d.defs))
	for name := range d.defs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Properties returns the property names declared by a definition, after
// following any internal reference the definition itself may be.
func (d *Document) Properties(name string) (map[string]struct{}, bool) {
	def, ok := d.defs[name]
	if !ok {
		return nil, false
	}
	resolved := d.expandRef(def, 0)
	props, _ := resolved["properties"].(map[string]any)
	out := make(map[string]struct{}, len(props))
	for prop := range props {
		out[prop] = struct{}{}
	}
	return out, true
}

// Standalone builds a self-contained validation schema for one definition:
// the resolved definition fragment at the root with the full definition
// table attached, so nested "#/$defs/..." references still resolve.
func (d *Document) Standalone(name string) (map[string]any, bool) {
	def, ok := d.defs[name]
	if !ok {
		return nil, false
	}
	schema := copyShallow(d.expandRef(def, 0))
	schema["$defs"] = d.defsTable()
	return schema, true
}

// DatasetSchema returns the root dataset schema with the polymorphic
// variables collection neutralized: its property schema becomes an
// unconstrained array and it is dropped from the required list. Standard
// JSON Schema validation cannot check divergent variant shapes under
// additionalProperties:false in a single pass, so the per-variable
// validator covers the collection instead.
func (d *Document) DatasetSchema() map[string]any {
	schema := copyShallow(d.root)
	delete(schema, "definitions")
	if props, ok := schema["properties"].(map[string]any); ok {
		if _, has := props["variables"]; has {
			replaced := copyShallow(props)
			replaced["variables"] = map[string]any{"type": "array"}
			schema["properties"] = replaced
		}
	}
	if required, ok := schema["required"].([]any); ok {
		kept := make([]any, 0, len(required))
		for _, entry := range required {
			if entry != "variables" {
				kept = append(kept, entry)
			}
		}
		schema["required"] = kept
	}
	schema["$defs"] = d.defsTable()
	return schema
}

// SeaNames returns the sea-names vocabulary carried by the bundle, or nil
// when the decoration is absent.
func (d *Document) SeaNames() []string {
	def, ok := d.defs[seaNamesDefinition]
	if !ok {
		return nil
	}
	enum, _ := def["enum"].([]any)
	names := make([]string, 0, len(enum))
	for _, entry := range enum {
		if s, ok := entry.(string); ok {
			names = append(names, s)
		}
	}
	return names
}

// expandRef follows a chain of whole-fragment "$ref" pointers into the
// definition table until a concrete fragment appears. Depth is bounded so
// a cyclic bundle degrades to the last fragment seen instead of looping.
func (d *Document) expandRef(fragment map[string]any, depth int) map[string]any {
	if depth > len(d.defs) {
		return fragment
	}
	ref, ok := fragment["$ref"].(string)
	if !ok || len(fragment) != 1 {
		return fragment
	}
	target, ok := refTarget(ref)
	if !ok {
		return fragment
	}
	next, ok := d.defs[target]
	if !ok {
		return fragment
	}
	return d.expandRef(next, depth+1)
}

func refTarget(ref string) (string, bool) {
	for _, prefix := range []string{"#/$defs/", "#/definitions/"} {
		if len(ref) > len(prefix) && ref[:len(prefix)] == prefix {
			return ref[len(prefix):], true
		}
	}
	return "", false
}

func (d *Document) defsTable() map[string]any {
	table := make(map[string]any, len(d.defs))
	for name, def := range d.defs {
		table[name] = def
	}
	return table
}

// copyShallow copies the top level of a fragment. Nested values stay
// shared; callers treat them as read-only, matching the session-immutable
// bundle.
func copyShallow(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
