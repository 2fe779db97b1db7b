package core

import (
	"context"
	"fmt"

	"oceanmeta/internal/formengine"
	"oceanmeta/pkg/domain"
)

// DefaultRulesEngine returns an engine with the stock rule set registered.
func DefaultRulesEngine() *domain.RulesEngine {
	engine := domain.NewRulesEngine()
	engine.Register(ReferenceIntegrityRule())
	engine.Register(VariableResolutionRule())
	return engine
}

// ReferenceIntegrityRule enforces the project -> experiment -> dataset
// hierarchy: children must reference existing parents, and parents with
// children cannot be deleted. Violations block the commit.
func ReferenceIntegrityRule() domain.Rule {
	return referenceIntegrityRule{}
}

type referenceIntegrityRule struct{}

func (referenceIntegrityRule) Name() string { return "reference_integrity" }

func (referenceIntegrityRule) Evaluate(_ context.Context, view domain.RuleView, changes []domain.Change) (domain.Result, error) {
	res := domain.Result{}

	for _, exp := range view.ListExperiments() {
		if exp.ProjectID == "" {
			res.Violations = append(res.Violations, referenceViolation(domain.EntityExperiment, exp.ID,
				fmt.Sprintf("experiment %s has no project reference", exp.ID)))
			continue
		}
		if _, ok := view.FindProject(exp.ProjectID); !ok {
			res.Violations = append(res.Violations, referenceViolation(domain.EntityExperiment, exp.ID,
				fmt.Sprintf("experiment %s references missing project %s", exp.ID, exp.ProjectID)))
		}
	}

	for _, ds := range view.ListDatasets() {
		if ds.ExperimentID == "" {
			continue
		}
		if _, ok := view.FindExperiment(ds.ExperimentID); !ok {
			res.Violations = append(res.Violations, referenceViolation(domain.EntityDataset, ds.ID,
				fmt.Sprintf("dataset %s references missing experiment %s", ds.ID, ds.ExperimentID)))
		}
	}

	for _, change := range changes {
		if change.Action != domain.ActionDelete {
			continue
		}
		switch change.Entity {
		case domain.EntityProject:
			for _, exp := range view.ListExperiments() {
				if exp.ProjectID == change.EntityID {
					res.Violations = append(res.Violations, referenceViolation(domain.EntityProject, change.EntityID,
						fmt.Sprintf("project %s still has experiment %s", change.EntityID, exp.ID)))
				}
			}
		case domain.EntityExperiment:
			for _, ds := range view.ListDatasets() {
				if ds.ExperimentID == change.EntityID {
					res.Violations = append(res.Violations, referenceViolation(domain.EntityExperiment, change.EntityID,
						fmt.Sprintf("experiment %s still has dataset %s", change.EntityID, ds.ID)))
				}
			}
		}
	}

	return res, nil
}

func referenceViolation(entity domain.EntityType, entityID, message string) domain.Violation {
	return domain.Violation{
		Rule:     "reference_integrity",
		Severity: domain.SeverityBlock,
		Message:  message,
		Entity:   entity,
		EntityID: entityID,
	}
}

// VariableResolutionRule warns when a written dataset contains variables
// whose discriminators do not resolve to any schema variant. Unresolved
// variables are legal mid-edit, so the severity never blocks.
func VariableResolutionRule() domain.Rule {
	return variableResolutionRule{}
}

type variableResolutionRule struct{}

func (variableResolutionRule) Name() string { return "variable_resolution" }

func (variableResolutionRule) Evaluate(_ context.Context, _ domain.RuleView, changes []domain.Change) (domain.Result, error) {
	res := domain.Result{}
	for _, change := range changes {
		if change.Entity != domain.EntityDataset || change.Action == domain.ActionDelete {
			continue
		}
		ds, ok := change.After.(domain.Dataset)
		if !ok {
			continue
		}
		for i, variable := range ds.Variables {
			variableType, genesis, sampling := variable.Discriminators()
			if _, ok := formengine.Resolve(variableType, genesis, sampling); ok {
				continue
			}
			res.Violations = append(res.Violations, domain.Violation{
				Rule:     "variable_resolution",
				Severity: domain.SeverityWarn,
				Message:  fmt.Sprintf("dataset %s variable %q does not resolve to a schema variant", ds.ID, variable.DisplayName(i)),
				Entity:   domain.EntityDataset,
				EntityID: ds.ID,
			})
		}
	}
	return res, nil
}
