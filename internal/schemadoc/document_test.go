package schemadoc

import (
	"reflect"
	"testing"
)

const testBundle = `{
	"title": "OceanCarbonDataset",
	"type": "object",
	"properties": {
		"title": {"type": "string"},
		"doi": {"type": "string"},
		"variables": {"type": "array", "items": {"$ref": "#/$defs/Variable"}}
	},
	"required": ["title", "variables"],
	"$defs": {
		"Variable": {"$ref": "#/$defs/DiscretePHVariable"},
		"DiscretePHVariable": {
			"type": "object",
			"properties": {
				"dataset_variable_name": {"type": "string"},
				"variable_type": {"type": "string"},
				"ph_scale": {"enum": ["total", "seawater", "free", "NBS"]}
			},
			"required": ["dataset_variable_name"],
			"additionalProperties": false
		},
		"SeaNames": {"enum": ["North Atlantic Ocean", "Baltic Sea", "Coral Sea"]}
	}
}`

func mustParse(t *testing.T) *Document {
	t.Helper()
	doc, err := Parse([]byte(testBundle))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return doc
}

func TestParseRejectsMalformedBundle(t *testing.T) {
	if _, err := Parse([]byte("{")); err == nil {
		t.Fatalf("expected parse error")
	}
	if _, err := Parse([]byte(`{"$defs": {"Bad": 42}}`)); err == nil {
		t.Fatalf("expected error for non-object definition")
	}
}

func TestDefinitionLookup(t *testing.T) {
	doc := mustParse(t)
	if !doc.HasDefinition("DiscretePHVariable") {
		t.Fatalf("expected DiscretePHVariable present")
	}
	if doc.HasDefinition("ContinuousPHVariable") {
		t.Fatalf("unexpected definition reported present")
	}
	names := doc.DefinitionNames()
	want := []string{"DiscretePHVariable", "SeaNames", "Variable"}
	if !reflect.DeepEqual(names, want) {
		t.Fatalf("definition names = %v, want %v", names, want)
	}
}

func TestPropertiesFollowWholeFragmentRefs(t *testing.T) {
	doc := mustParse(t)
	props, ok := doc.Properties("Variable")
	if !ok {
		t.Fatalf("expected Variable definition")
	}
	for _, want := range []string{"dataset_variable_name", "variable_type", "ph_scale"} {
		if _, has := props[want]; !has {
			t.Fatalf("expected property %q via $ref expansion, got %v", want, props)
		}
	}
}

func TestStandaloneAttachesDefinitionTable(t *testing.T) {
	doc := mustParse(t)
	schema, ok := doc.Standalone("DiscretePHVariable")
	if !ok {
		t.Fatalf("expected standalone schema")
	}
	if schema["additionalProperties"] != false {
		t.Fatalf("expected additionalProperties carried over")
	}
	defs, ok := schema["$defs"].(map[string]any)
	if !ok || len(defs) != 3 {
		t.Fatalf("expected full definition table attached, got %v", schema["$defs"])
	}
	if _, ok := doc.Standalone("Unknown"); ok {
		t.Fatalf("expected miss for unknown definition")
	}
}

func TestDatasetSchemaNeutralizesVariables(t *testing.T) {
	doc := mustParse(t)
	schema := doc.DatasetSchema()
	props := schema["properties"].(map[string]any)
	variables := props["variables"].(map[string]any)
	if !reflect.DeepEqual(variables, map[string]any{"type": "array"}) {
		t.Fatalf("variables not neutralized: %v", variables)
	}
	required := schema["required"].([]any)
	if !reflect.DeepEqual(required, []any{"title"}) {
		t.Fatalf("variables still required: %v", required)
	}
}

func TestDatasetSchemaDoesNotMutateParse(t *testing.T) {
	doc := mustParse(t)
	doc.DatasetSchema()
	// A second derivation must still see the original bundle.
	schema := doc.DatasetSchema()
	required := schema["required"].([]any)
	if len(required) != 1 || required[0] != "title" {
		t.Fatalf("derived schema unstable across calls: %v", required)
	}
	props, _ := doc.Properties("DiscretePHVariable")
	if len(props) != 3 {
		t.Fatalf("definition table mutated by dataset schema derivation")
	}
}

func TestSeaNamesVocabulary(t *testing.T) {
	doc := mustParse(t)
	want := []string{"North Atlantic Ocean", "Baltic Sea", "Coral Sea"}
	if got := doc.SeaNames(); !reflect.DeepEqual(got, want) {
		t.Fatalf("sea names = %v, want %v", got, want)
	}
	empty, err := Parse([]byte(`{"$defs": {}}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if names := empty.SeaNames(); names != nil {
		t.Fatalf("expected nil sea names, got %v", names)
	}
}
