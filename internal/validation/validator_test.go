package validation

import (
	"strings"
	"testing"

	"oceanmeta/internal/schemadoc"
	"oceanmeta/pkg/domain"
)

const testBundle = `{
	"title": "OceanCarbonDataset",
	"type": "object",
	"properties": {
		"title": {"type": "string", "minLength": 1},
		"doi": {"type": "string"},
		"authors": {"type": "array", "items": {"type": "string"}},
		"variables": {"type": "array", "items": {"$ref": "#/$defs/DiscretePHVariable"}}
	},
	"required": ["title", "variables"],
	"additionalProperties": false,
	"$defs": {
		"DiscretePHVariable": {
			"type": "object",
			"properties": {
				"dataset_variable_name": {"type": "string"},
				"full_variable_name": {"type": "string"},
				"variable_type": {"type": "string"},
				"genesis": {"type": "string"},
				"sampling": {"type": "string"},
				"unit": {"type": "string"},
				"ph_scale": {"enum": ["total", "seawater", "free", "NBS"]}
			},
			"required": ["dataset_variable_name", "ph_scale"],
			"additionalProperties": false
		},
		"CalculatedVariable": {
			"type": "object",
			"properties": {
				"dataset_variable_name": {"type": "string"},
				"variable_type": {"type": "string"},
				"genesis": {"type": "string"},
				"calculation_method": {"type": "string"}
			},
			"required": ["dataset_variable_name", "calculation_method"],
			"additionalProperties": false
		},
		"SeaNames": {"enum": ["Baltic Sea"]}
	}
}`

func bundle(t *testing.T) *schemadoc.Document {
	t.Helper()
	doc, err := schemadoc.Parse([]byte(testBundle))
	if err != nil {
		t.Fatalf("parse bundle: %v", err)
	}
	return doc
}

func phVariable() domain.Variable {
	return domain.Variable{Fields: map[string]any{
		"dataset_variable_name": "pH_T",
		"variable_type":         "ph",
		"genesis":               "measured",
		"sampling":              "discrete",
		"ph_scale":              "total",
	}}
}

func TestValidDatasetPasses(t *testing.T) {
	dataset := domain.Dataset{Title: "Baltic carbonate survey", Variables: []domain.Variable{phVariable()}}
	report, err := ValidateDataset(dataset, bundle(t))
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if !report.IsValid() {
		t.Fatalf("expected valid report, got %+v", report)
	}
	if report.InvalidVariableCount() != 0 {
		t.Fatalf("expected zero invalid variables")
	}
}

func TestForeignFieldsAreFilteredBeforeValidation(t *testing.T) {
	v := phVariable()
	// Leftovers from a sibling variant plus an internal UI cache; both must
	// be stripped rather than reported as additional properties.
	v.Fields["calculation_method"] = "CO2SYS"
	v.Fields["equilibrator_type"] = "showerhead"
	v.Fields["_resolved_schema"] = "DiscretePHVariable"

	dataset := domain.Dataset{Title: "t", Variables: []domain.Variable{v}}
	report, err := ValidateDataset(dataset, bundle(t))
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if !report.IsValid() {
		t.Fatalf("foreign fields leaked into validation: %+v", report)
	}
}

func TestUnresolvedVariableRecordsSingleMessage(t *testing.T) {
	unresolved := domain.Variable{Fields: map[string]any{
		"dataset_variable_name": "mystery",
		"variable_type":         "ph",
		// genesis and sampling not yet chosen
	}}
	dataset := domain.Dataset{Title: "t", Variables: []domain.Variable{unresolved}}
	report, err := ValidateDataset(dataset, bundle(t))
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	entry, ok := report.VariableErrors[0]
	if !ok {
		t.Fatalf("expected errors recorded at index 0")
	}
	if len(entry.Messages) != 1 || entry.Messages[0] != "type not fully specified" {
		t.Fatalf("unexpected messages: %v", entry.Messages)
	}
	if entry.VariableName != "mystery" {
		t.Fatalf("expected display name from dataset variable name, got %q", entry.VariableName)
	}
	if report.InvalidVariableCount() != 1 {
		t.Fatalf("expected one invalid variable")
	}
}

func TestUnknownDefinitionRecordedNotFatal(t *testing.T) {
	// hplc resolves to HPLCVariable, which this bundle does not carry.
	v := domain.Variable{Fields: map[string]any{
		"variable_type": "hplc",
		"genesis":       "measured",
		"sampling":      "discrete",
	}}
	dataset := domain.Dataset{Title: "t", Variables: []domain.Variable{v}}
	report, err := ValidateDataset(dataset, bundle(t))
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	entry := report.VariableErrors[0]
	if len(entry.Messages) != 1 || entry.Messages[0] != "unknown variable schema: HPLCVariable" {
		t.Fatalf("unexpected messages: %v", entry.Messages)
	}
	if entry.VariableName != "Variable 1" {
		t.Fatalf("expected positional fallback name, got %q", entry.VariableName)
	}
}

func TestStructuralErrorsSurfaceFieldAndMessage(t *testing.T) {
	v := phVariable()
	v.Fields["ph_scale"] = "bogus"
	dataset := domain.Dataset{Title: "t", Variables: []domain.Variable{v}}
	report, err := ValidateDataset(dataset, bundle(t))
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	entry := report.VariableErrors[0]
	if len(entry.Messages) == 0 {
		t.Fatalf("expected enum violation recorded")
	}
	if !strings.Contains(entry.Messages[0], "ph_scale") {
		t.Fatalf("expected field name in message, got %q", entry.Messages[0])
	}
}

func TestMissingRequiredVariableField(t *testing.T) {
	v := phVariable()
	delete(v.Fields, "ph_scale")
	dataset := domain.Dataset{Title: "t", Variables: []domain.Variable{v}}
	report, err := ValidateDataset(dataset, bundle(t))
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if report.IsValid() {
		t.Fatalf("expected required-field violation")
	}
}

func TestDatasetErrorsNeverRootedInVariables(t *testing.T) {
	// Container is missing its title and the variable is also broken; the
	// container phase must only report the title, never the variables path.
	broken := domain.Variable{Fields: map[string]any{"variable_type": "ph"}}
	dataset := domain.Dataset{Variables: []domain.Variable{broken}}
	report, err := ValidateDataset(dataset, bundle(t))
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if len(report.DatasetErrors) == 0 {
		t.Fatalf("expected dataset-level error for missing title")
	}
	for _, msg := range report.DatasetErrors {
		if strings.Contains(msg, "variables") {
			t.Fatalf("dataset error rooted in variables path: %q", msg)
		}
	}
}

func TestReportAllMessagesOrdering(t *testing.T) {
	first := domain.Variable{Fields: map[string]any{"variable_type": "ph"}}
	second := phVariable()
	second.Fields["ph_scale"] = "bogus"
	dataset := domain.Dataset{Variables: []domain.Variable{first, second}}
	report, err := ValidateDataset(dataset, bundle(t))
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	messages := report.AllMessages()
	if len(messages) < 3 {
		t.Fatalf("expected dataset plus two variable messages, got %v", messages)
	}
	if !strings.Contains(messages[len(messages)-2], "Variable 1") {
		t.Fatalf("expected variable messages ordered by index, got %v", messages)
	}
}
