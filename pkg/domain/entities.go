// Package domain defines the persistent entities, value types, and rule
// evaluation primitives of the oceanmeta metadata store.
package domain

import (
	"fmt"
	"time"
)

// EntityType identifies the type of record stored in the metadata domain.
type EntityType string

// Supported entity type identifiers used in Change records and persistence buckets.
const (
	// EntityProject identifies a master project record.
	EntityProject EntityType = "project"
	// EntityExperiment identifies an experiment (cruise / deployment) record.
	EntityExperiment EntityType = "experiment"
	// EntityDataset identifies a dataset record including its variables.
	EntityDataset EntityType = "dataset"
)

// Severity captures rule outcomes.
type Severity string

// Rule evaluation severities determine commit behavior and logging.
const (
	// SeverityBlock blocks transaction commit.
	SeverityBlock Severity = "block"
	// SeverityWarn logs a warning but allows commit.
	SeverityWarn Severity = "warn"
	SeverityLog  Severity = "log"
)

// Action enumerates CRUD operations captured in the audit trail.
type Action string

// Change actions.
const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Project is the master record every experiment links back to.
type Project struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Title         string    `json:"title,omitempty"`
	Investigators []string  `json:"investigators,omitempty"`
	FundingAgency string    `json:"funding_agency,omitempty"`
	StartDate     string    `json:"start_date,omitempty"`
	EndDate       string    `json:"end_date,omitempty"`
	Abstract      string    `json:"abstract,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Experiment describes one cruise or deployment under a project. ProjectName
// mirrors the linked project's name; the service keeps the mirror current
// when the master record is renamed.
type Experiment struct {
	ID          string    `json:"id"`
	ProjectID   string    `json:"project_id"`
	ProjectName string    `json:"project_name,omitempty"`
	Platform    string    `json:"platform,omitempty"`
	CruiseID    string    `json:"cruise_id,omitempty"`
	StartDate   string    `json:"start_date,omitempty"`
	EndDate     string    `json:"end_date,omitempty"`
	Region      string    `json:"region,omitempty"`
	SeaNames    []string  `json:"sea_names,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Dataset is the exportable unit of authored metadata. Fields holds the
// schema-governed dataset-level properties; Variables holds the polymorphic
// variable records validated individually against their resolved variant.
type Dataset struct {
	ID           string         `json:"id"`
	ExperimentID string         `json:"experiment_id"`
	Title        string         `json:"title"`
	DOI          string         `json:"doi,omitempty"`
	Authors      []string       `json:"authors,omitempty"`
	Fields       map[string]any `json:"fields,omitempty"`
	Variables    []Variable     `json:"variables"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// Variable is a single measured, calculated, or descriptive quantity in a
// dataset. All schema-governed values live in Fields keyed by field path,
// including the three discriminators. Keys with a leading underscore are
// internal UI caches and never part of the exported record.
type Variable struct {
	Fields map[string]any `json:"fields"`
}

// Discriminator field names within Variable.Fields.
const (
	FieldVariableType = "variable_type"
	FieldGenesis      = "genesis"
	FieldSampling     = "sampling"
)

// Discriminators extracts the three variant discriminators. Missing, nil,
// or non-string values come back as the empty string, meaning "not yet
// chosen"; the form layer never stores an explicitly blank discriminator.
func (v Variable) Discriminators() (variableType, genesis, sampling string) {
	return v.stringField(FieldVariableType), v.stringField(FieldGenesis), v.stringField(FieldSampling)
}

func (v Variable) stringField(key string) string {
	raw, ok := v.Fields[key]
	if !ok {
		return ""
	}
	s, _ := raw.(string)
	return s
}

// DisplayName derives the user-facing name of the variable: the short
// dataset name when present, then the long name, then a positional
// fallback. index is zero-based.
func (v Variable) DisplayName(index int) string {
	if name := v.stringField("dataset_variable_name"); name != "" {
		return name
	}
	if name := v.stringField("full_variable_name"); name != "" {
		return name
	}
	return fmt.Sprintf("Variable %d", index+1)
}

// Clone returns a deep copy of the variable's field map.
func (v Variable) Clone() Variable {
	if v.Fields == nil {
		return Variable{}
	}
	fields := make(map[string]any, len(v.Fields))
	for k, val := range v.Fields {
		fields[k] = val
	}
	return Variable{Fields: fields}
}

// Change captures one entity mutation inside a transaction for rule
// evaluation and auditing.
type Change struct {
	Entity   EntityType `json:"entity"`
	Action   Action     `json:"action"`
	EntityID string     `json:"entity_id"`
	Before   any        `json:"before,omitempty"`
	After    any        `json:"after,omitempty"`
}

// Violation reports a failed rule evaluation.
type Violation struct {
	Rule     string     `json:"rule"`
	Severity Severity   `json:"severity"`
	Message  string     `json:"message"`
	Entity   EntityType `json:"entity,omitempty"`
	EntityID string     `json:"entity_id,omitempty"`
}

// Result aggregates violations from the rules engine.
type Result struct {
	Violations []Violation `json:"violations,omitempty"`
}

// Merge appends violations from another result.
func (r *Result) Merge(other Result) {
	if len(other.Violations) == 0 {
		return
	}
	r.Violations = append(r.Violations, other.Violations...)
}

// HasBlocking returns true if the result contains blocking violations.
func (r Result) HasBlocking() bool {
	for _, v := range r.Violations {
		if v.Severity == SeverityBlock {
			return true
		}
	}
	return false
}

// RuleViolationError is returned when blocking violations prevent a commit.
type RuleViolationError struct {
	Result Result
}

func (e RuleViolationError) Error() string {
	return "transaction blocked by rules"
}

// ErrNotFound reports a missing entity by type and identifier.
type ErrNotFound struct {
	Entity EntityType
	ID     string
}

func (e ErrNotFound) Error() string {
	return fmt.Sprintf("%s %q not found", e.Entity, e.ID)
}
