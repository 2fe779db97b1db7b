// Package validation checks authored dataset records against the bundled
// schema. Validation is two-phase by design: the dataset container is
// validated with its polymorphic variables collection neutralized, and each
// variable is validated in isolation against its resolved variant
// definition. The schema format cannot express the variant union in one
// pass while every variant keeps additionalProperties:false, so this split
// is a permanent architectural choice, not a workaround to remove.
package validation

import (
	"fmt"
	"sort"

	"github.com/xeipuuv/gojsonschema"

	"oceanmeta/internal/formengine"
	"oceanmeta/internal/schemadoc"
	"oceanmeta/pkg/domain"
)

// Message used when a variable's discriminators do not select a variant.
const msgTypeNotSpecified = "type not fully specified"

// VariableErrors collects the messages recorded for one variable together
// with its display name.
type VariableErrors struct {
	VariableName string   `json:"variable_name"`
	Messages     []string `json:"messages"`
}

// Report aggregates dataset-level and per-variable validation output. The
// two error sets stay separate and are merged only for presentation.
type Report struct {
	DatasetErrors  []string               `json:"dataset_errors,omitempty"`
	VariableErrors map[int]VariableErrors `json:"variable_errors,omitempty"`
}

// IsValid is true only when neither phase recorded an error.
func (r Report) IsValid() bool {
	return len(r.DatasetErrors) == 0 && len(r.VariableErrors) == 0
}

// InvalidVariableCount reports how many variables recorded at least one error.
func (r Report) InvalidVariableCount() int {
	return len(r.VariableErrors)
}

// AllMessages flattens both phases for display: dataset errors first, then
// variable errors in variable order, each prefixed with the display name.
func (r Report) AllMessages() []string {
	out := append([]string(nil), r.DatasetErrors...)
	indices := make([]int, 0, len(r.VariableErrors))
	for index := range r.VariableErrors {
		indices = append(indices, index)
	}
	sort.Ints(indices)
	for _, index := range indices {
		entry := r.VariableErrors[index]
		for _, msg := range entry.Messages {
			out = append(out, fmt.Sprintf("%s: %s", entry.VariableName, msg))
		}
	}
	return out
}

// ValidateDataset runs both validation phases against the bundle. It is
// recomputed on every call; discriminators and field values change between
// calls and nothing here may be cached.
func ValidateDataset(dataset domain.Dataset, doc *schemadoc.Document) (Report, error) {
	report := Report{VariableErrors: map[int]VariableErrors{}}

	datasetErrors, err := validateContainer(dataset, doc)
	if err != nil {
		return Report{}, err
	}
	report.DatasetErrors = datasetErrors

	for i, variable := range dataset.Variables {
		messages, err := validateVariable(variable, doc)
		if err != nil {
			return Report{}, err
		}
		if len(messages) > 0 {
			report.VariableErrors[i] = VariableErrors{
				VariableName: variable.DisplayName(i),
				Messages:     messages,
			}
		}
	}
	if len(report.VariableErrors) == 0 {
		report.VariableErrors = nil
	}
	return report, nil
}

// validateContainer checks the dataset-level record against the root schema
// with the variables collection replaced by an accept-any-array placeholder,
// so the generic validator never attempts polymorphic item validation.
func validateContainer(dataset domain.Dataset, doc *schemadoc.Document) ([]string, error) {
	payload := containerPayload(dataset)
	result, err := gojsonschema.Validate(
		gojsonschema.NewGoLoader(doc.DatasetSchema()),
		gojsonschema.NewGoLoader(payload),
	)
	if err != nil {
		return nil, fmt.Errorf("validate dataset container: %w", err)
	}
	return collectErrors(result), nil
}

// containerPayload assembles the schema-shaped dataset document from the
// record's dedicated columns and free-form fields. Variables are included
// as raw field maps only to satisfy the neutralized array placeholder.
func containerPayload(dataset domain.Dataset) map[string]any {
	payload := make(map[string]any, len(dataset.Fields)+4)
	for k, v := range dataset.Fields {
		payload[k] = v
	}
	if dataset.Title != "" {
		payload["title"] = dataset.Title
	}
	if dataset.DOI != "" {
		payload["doi"] = dataset.DOI
	}
	if len(dataset.Authors) > 0 {
		payload["authors"] = dataset.Authors
	}
	variables := make([]any, len(dataset.Variables))
	for i, v := range dataset.Variables {
		variables[i] = v.Fields
	}
	payload["variables"] = variables
	return payload
}

// validateVariable resolves the variable's variant and validates the record
// against it in isolation. Resolution failure and unknown definitions are
// recorded as messages, never returned as errors: the bundle may lag behind
// the type table during deployment transitions.
func validateVariable(variable domain.Variable, doc *schemadoc.Document) ([]string, error) {
	variableType, genesis, sampling := variable.Discriminators()
	name, ok := formengine.Resolve(variableType, genesis, sampling)
	if !ok {
		return []string{msgTypeNotSpecified}, nil
	}
	if !doc.HasDefinition(string(name)) {
		return []string{fmt.Sprintf("unknown variable schema: %s", name)}, nil
	}
	schema, _ := doc.Standalone(string(name))
	declared, _ := doc.Properties(string(name))

	result, err := gojsonschema.Validate(
		gojsonschema.NewGoLoader(schema),
		gojsonschema.NewGoLoader(filterDeclared(variable.Fields, declared)),
	)
	if err != nil {
		return nil, fmt.Errorf("validate variable against %s: %w", name, err)
	}
	return collectErrors(result), nil
}

// filterDeclared keeps only the keys the resolved definition declares.
// Internal UI caches (underscore-prefixed) and leftovers from sibling
// variants are legitimate in the record but would trip
// additionalProperties:false, so they are stripped before validation.
func filterDeclared(fields map[string]any, declared map[string]struct{}) map[string]any {
	filtered := make(map[string]any, len(fields))
	for key, value := range fields {
		if _, ok := declared[key]; ok {
			filtered[key] = value
		}
	}
	return filtered
}

func collectErrors(result *gojsonschema.Result) []string {
	if result.Valid() {
		return nil
	}
	errs := result.Errors()
	messages := make([]string, 0, len(errs))
	for _, desc := range errs {
		messages = append(messages, fmt.Sprintf("%s: %s", desc.Field(), desc.Description()))
	}
	return messages
}
