package domain

import (
	"context"
	"testing"
)

func TestResultMergeAndBlocking(t *testing.T) {
	var result Result
	result.Merge(Result{Violations: []Violation{{Rule: "warn", Severity: SeverityWarn}}})
	if result.HasBlocking() {
		t.Fatalf("expected no blocking violations")
	}
	result.Merge(Result{Violations: []Violation{{Rule: "block", Severity: SeverityBlock}}})
	if !result.HasBlocking() {
		t.Fatalf("expected blocking violation")
	}
	err := RuleViolationError{Result: result}
	if err.Error() == "" {
		t.Fatalf("expected error string")
	}
}

func TestResultMergeEmptyInput(t *testing.T) {
	original := Result{Violations: []Violation{{Rule: "existing", Severity: SeverityWarn}}}
	original.Merge(Result{})
	if len(original.Violations) != 1 || original.Violations[0].Rule != "existing" {
		t.Fatalf("expected original violations to remain, got %+v", original.Violations)
	}
}

func TestVariableDiscriminators(t *testing.T) {
	v := Variable{Fields: map[string]any{
		FieldVariableType: "ph",
		FieldGenesis:      "measured",
		// sampling deliberately absent
		"unit": "total scale",
	}}
	variableType, genesis, sampling := v.Discriminators()
	if variableType != "ph" || genesis != "measured" || sampling != "" {
		t.Fatalf("unexpected discriminators: %q %q %q", variableType, genesis, sampling)
	}
}

func TestVariableDiscriminatorsIgnoreNonStrings(t *testing.T) {
	v := Variable{Fields: map[string]any{FieldVariableType: 42, FieldGenesis: nil}}
	variableType, genesis, sampling := v.Discriminators()
	if variableType != "" || genesis != "" || sampling != "" {
		t.Fatalf("non-string discriminators should read as absent, got %q %q %q", variableType, genesis, sampling)
	}
}

func TestVariableDisplayNamePriority(t *testing.T) {
	named := Variable{Fields: map[string]any{
		"dataset_variable_name": "pH_T",
		"full_variable_name":    "pH on total scale",
	}}
	if got := named.DisplayName(0); got != "pH_T" {
		t.Fatalf("expected short name to win, got %q", got)
	}
	long := Variable{Fields: map[string]any{"full_variable_name": "pH on total scale"}}
	if got := long.DisplayName(0); got != "pH on total scale" {
		t.Fatalf("expected long name fallback, got %q", got)
	}
	anon := Variable{}
	if got := anon.DisplayName(2); got != "Variable 3" {
		t.Fatalf("expected positional fallback, got %q", got)
	}
}

func TestVariableCloneIsIndependent(t *testing.T) {
	v := Variable{Fields: map[string]any{"unit": "umol/kg"}}
	clone := v.Clone()
	clone.Fields["unit"] = "changed"
	if v.Fields["unit"] != "umol/kg" {
		t.Fatalf("clone mutation leaked into original")
	}
}

type staticRule struct{ name string }

func (r staticRule) Name() string { return r.name }

func (r staticRule) Evaluate(context.Context, RuleView, []Change) (Result, error) {
	return Result{Violations: []Violation{{Rule: r.name, Severity: SeverityWarn}}}, nil
}

type emptyView struct{}

func (emptyView) ListProjects() []Project                  { return nil }
func (emptyView) ListExperiments() []Experiment            { return nil }
func (emptyView) ListDatasets() []Dataset                  { return nil }
func (emptyView) FindProject(string) (Project, bool)       { return Project{}, false }
func (emptyView) FindExperiment(string) (Experiment, bool) { return Experiment{}, false }
func (emptyView) FindDataset(string) (Dataset, bool)       { return Dataset{}, false }

func TestRulesEngineEvaluate(t *testing.T) {
	engine := NewRulesEngine()
	engine.Register(staticRule{"warn"})
	res, err := engine.Evaluate(context.Background(), emptyView{}, nil)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if len(res.Violations) != 1 {
		t.Fatalf("expected one violation, got %d", len(res.Violations))
	}
}
