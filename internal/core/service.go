// Package core exposes the transactional service facade over the metadata
// store, the rules engine defaults, and the form/validation operations the
// outer surfaces call.
package core

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"oceanmeta/internal/archive"
	"oceanmeta/internal/formengine"
	"oceanmeta/internal/schemadoc"
	"oceanmeta/internal/validation"
	"oceanmeta/pkg/domain"
)

// Service wires the persistent store, the schema document, and the archive
// behind higher-level operations. All writes run in store transactions so
// the registered rules see every mutation.
type Service struct {
	store   domain.PersistentStore
	schema  *schemadoc.Document
	archive archive.Store
	logger  Logger
	metrics MetricsRecorder
	now     func() time.Time
}

// Option customizes service construction.
type Option func(*Service)

// WithLogger installs a structured logger. *slog.Logger satisfies Logger.
func WithLogger(logger Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics installs a metrics recorder.
func WithMetrics(rec MetricsRecorder) Option {
	return func(s *Service) {
		if rec != nil {
			s.metrics = rec
		}
	}
}

// WithArchive installs an archive store for dataset exports.
func WithArchive(store archive.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.archive = store
		}
	}
}

// WithClock overrides the timestamp source, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService constructs a service over the supplied store and schema bundle.
func NewService(store domain.PersistentStore, schema *schemadoc.Document, opts ...Option) *Service {
	s := &Service{
		store:   store,
		schema:  schema,
		logger:  noopLogger{},
		metrics: noopMetrics{},
		now:     func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Store returns the underlying persistent store.
func (s *Service) Store() domain.PersistentStore { return s.store }

// Schema returns the loaded schema document.
func (s *Service) Schema() *schemadoc.Document { return s.schema }

func (s *Service) instrument(ctx context.Context, operation string, fn func() error) error {
	start := s.now()
	err := fn()
	duration := s.now().Sub(start)
	s.metrics.Observe(ctx, operation, err == nil, duration)
	if err != nil {
		s.logger.Error("operation failed", "operation", operation, "error", err)
	} else {
		s.logger.Debug("operation completed", "operation", operation, "duration_ms", duration.Milliseconds())
	}
	return err
}

func (s *Service) logWarnings(operation string, res domain.Result) {
	for _, v := range res.Violations {
		if v.Severity == domain.SeverityWarn {
			s.logger.Warn("rule warning", "operation", operation, "rule", v.Rule, "message", v.Message)
		}
	}
}

// CreateProject persists a new master project record.
func (s *Service) CreateProject(ctx context.Context, project domain.Project) (domain.Project, domain.Result, error) {
	var created domain.Project
	var res domain.Result
	err := s.instrument(ctx, "create_project", func() error {
		var err error
		res, err = s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
			var err error
			created, err = tx.CreateProject(project)
			return err
		})
		return err
	})
	s.logWarnings("create_project", res)
	return created, res, err
}

// UpdateProject mutates a project and propagates a renamed project name to
// the experiments mirroring it, inside the same transaction.
func (s *Service) UpdateProject(ctx context.Context, id string, mutator func(*domain.Project) error) (domain.Project, domain.Result, error) {
	var updated domain.Project
	var res domain.Result
	err := s.instrument(ctx, "update_project", func() error {
		var err error
		res, err = s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
			var err error
			updated, err = tx.UpdateProject(id, mutator)
			if err != nil {
				return err
			}
			for _, exp := range tx.Snapshot().ListExperiments() {
				if exp.ProjectID != id || exp.ProjectName == updated.Name {
					continue
				}
				if _, err := tx.UpdateExperiment(exp.ID, func(e *domain.Experiment) error {
					e.ProjectName = updated.Name
					return nil
				}); err != nil {
					return err
				}
			}
			return nil
		})
		return err
	})
	s.logWarnings("update_project", res)
	return updated, res, err
}

// DeleteProject removes a project. The reference rule blocks the delete
// while experiments still point at it.
func (s *Service) DeleteProject(ctx context.Context, id string) (domain.Result, error) {
	var res domain.Result
	err := s.instrument(ctx, "delete_project", func() error {
		var err error
		res, err = s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
			return tx.DeleteProject(id)
		})
		return err
	})
	return res, err
}

// CreateExperiment persists an experiment, stamping the project name mirror
// from the referenced project.
func (s *Service) CreateExperiment(ctx context.Context, experiment domain.Experiment) (domain.Experiment, domain.Result, error) {
	var created domain.Experiment
	var res domain.Result
	err := s.instrument(ctx, "create_experiment", func() error {
		var err error
		res, err = s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
			if project, ok := tx.FindProject(experiment.ProjectID); ok {
				experiment.ProjectName = project.Name
			}
			var err error
			created, err = tx.CreateExperiment(experiment)
			return err
		})
		return err
	})
	s.logWarnings("create_experiment", res)
	return created, res, err
}

// UpdateExperiment mutates an experiment.
func (s *Service) UpdateExperiment(ctx context.Context, id string, mutator func(*domain.Experiment) error) (domain.Experiment, domain.Result, error) {
	var updated domain.Experiment
	var res domain.Result
	err := s.instrument(ctx, "update_experiment", func() error {
		var err error
		res, err = s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
			var err error
			updated, err = tx.UpdateExperiment(id, mutator)
			return err
		})
		return err
	})
	s.logWarnings("update_experiment", res)
	return updated, res, err
}

// DeleteExperiment removes an experiment. Datasets referencing it block the
// delete.
func (s *Service) DeleteExperiment(ctx context.Context, id string) (domain.Result, error) {
	var res domain.Result
	err := s.instrument(ctx, "delete_experiment", func() error {
		var err error
		res, err = s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
			return tx.DeleteExperiment(id)
		})
		return err
	})
	return res, err
}

// CreateDataset persists a dataset with its variables.
func (s *Service) CreateDataset(ctx context.Context, dataset domain.Dataset) (domain.Dataset, domain.Result, error) {
	var created domain.Dataset
	var res domain.Result
	err := s.instrument(ctx, "create_dataset", func() error {
		var err error
		res, err = s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
			var err error
			created, err = tx.CreateDataset(dataset)
			return err
		})
		return err
	})
	s.logWarnings("create_dataset", res)
	return created, res, err
}

// UpdateDataset mutates a dataset.
func (s *Service) UpdateDataset(ctx context.Context, id string, mutator func(*domain.Dataset) error) (domain.Dataset, domain.Result, error) {
	var updated domain.Dataset
	var res domain.Result
	err := s.instrument(ctx, "update_dataset", func() error {
		var err error
		res, err = s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
			var err error
			updated, err = tx.UpdateDataset(id, mutator)
			return err
		})
		return err
	})
	s.logWarnings("update_dataset", res)
	return updated, res, err
}

// DeleteDataset removes a dataset record.
func (s *Service) DeleteDataset(ctx context.Context, id string) (domain.Result, error) {
	var res domain.Result
	err := s.instrument(ctx, "delete_dataset", func() error {
		var err error
		res, err = s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
			return tx.DeleteDataset(id)
		})
		return err
	})
	return res, err
}

// ResolveVariable maps a discriminator tuple to its schema variant.
func (s *Service) ResolveVariable(variableType, genesis, sampling string) (formengine.DefinitionName, bool) {
	return formengine.Resolve(variableType, genesis, sampling)
}

// VariableSections resolves a discriminator tuple and renders the form
// sections of the selected variant. ok is false when the tuple does not
// resolve.
func (s *Service) VariableSections(variableType, genesis, sampling string) ([]formengine.Section, formengine.DefinitionName, bool) {
	name, ok := formengine.Resolve(variableType, genesis, sampling)
	if !ok {
		return nil, "", false
	}
	return formengine.BuildSections(name), name, true
}

// DefinitionSections renders form sections for a known variant by name.
func (s *Service) DefinitionSections(name formengine.DefinitionName) ([]formengine.Section, bool) {
	if !formengine.KnownDefinition(name) {
		return nil, false
	}
	return formengine.BuildSections(name), true
}

// Definitions lists all schema variant names in sorted order.
func (s *Service) Definitions() []formengine.DefinitionName {
	return formengine.DefinitionNames()
}

// SeaNames returns the controlled sea-name vocabulary from the schema bundle.
func (s *Service) SeaNames() []string {
	return s.schema.SeaNames()
}

// ValidateDataset runs the two-phase validation for a stored dataset.
func (s *Service) ValidateDataset(ctx context.Context, id string) (validation.Report, error) {
	var report validation.Report
	err := s.instrument(ctx, "validate_dataset", func() error {
		dataset, ok := s.store.GetDataset(id)
		if !ok {
			return domain.ErrNotFound{Entity: domain.EntityDataset, ID: id}
		}
		var err error
		report, err = validation.ValidateDataset(dataset, s.schema)
		return err
	})
	return report, err
}

// ExportRecord describes an archived dataset export.
type ExportRecord struct {
	DatasetID   string       `json:"dataset_id"`
	Key         string       `json:"key"`
	Info        archive.Info `json:"info"`
	GeneratedAt time.Time    `json:"generated_at"`
}

type exportVariable struct {
	Index      int            `json:"index"`
	Name       string         `json:"name"`
	Definition string         `json:"definition,omitempty"`
	Fields     map[string]any `json:"fields"`
}

type exportBundle struct {
	GeneratedAt time.Time          `json:"generated_at"`
	Project     *domain.Project    `json:"project,omitempty"`
	Experiment  *domain.Experiment `json:"experiment,omitempty"`
	Dataset     domain.Dataset     `json:"dataset"`
	Variables   []exportVariable   `json:"variables"`
}

// ExportDataset validates a dataset and writes its export bundle to the
// archive. Datasets with validation errors are refused.
func (s *Service) ExportDataset(ctx context.Context, id string) (ExportRecord, error) {
	var record ExportRecord
	err := s.instrument(ctx, "export_dataset", func() error {
		if s.archive == nil {
			return fmt.Errorf("no archive configured")
		}
		dataset, ok := s.store.GetDataset(id)
		if !ok {
			return domain.ErrNotFound{Entity: domain.EntityDataset, ID: id}
		}
		report, err := validation.ValidateDataset(dataset, s.schema)
		if err != nil {
			return err
		}
		if !report.IsValid() {
			return ValidationFailedError{DatasetID: id, Report: report}
		}

		generated := s.now()
		bundle := exportBundle{GeneratedAt: generated, Dataset: dataset}
		if exp, ok := s.store.GetExperiment(dataset.ExperimentID); ok {
			bundle.Experiment = &exp
			if project, ok := s.store.GetProject(exp.ProjectID); ok {
				bundle.Project = &project
			}
		}
		for i, variable := range dataset.Variables {
			ev := exportVariable{
				Index:  i,
				Name:   variable.DisplayName(i),
				Fields: exportableFields(variable),
			}
			variableType, genesis, sampling := variable.Discriminators()
			if def, ok := formengine.Resolve(variableType, genesis, sampling); ok {
				ev.Definition = string(def)
			}
			bundle.Variables = append(bundle.Variables, ev)
		}

		payload, err := json.MarshalIndent(bundle, "", "  ")
		if err != nil {
			return fmt.Errorf("encode export bundle: %w", err)
		}
		key := fmt.Sprintf("exports/%s/%s.json", id, generated.Format("20060102T150405Z"))
		info, err := s.archive.Put(ctx, key, bytes.NewReader(payload), archive.PutOptions{
			ContentType: "application/json",
			Metadata:    map[string]string{"dataset_id": id},
		})
		if err != nil {
			return fmt.Errorf("archive export: %w", err)
		}
		record = ExportRecord{DatasetID: id, Key: key, Info: info, GeneratedAt: generated}
		s.logger.Info("dataset exported", "dataset_id", id, "key", key, "size", info.Size)
		return nil
	})
	return record, err
}

// ListExports returns archived exports for a dataset, oldest first.
func (s *Service) ListExports(ctx context.Context, datasetID string) ([]archive.Info, error) {
	if s.archive == nil {
		return nil, fmt.Errorf("no archive configured")
	}
	return s.archive.List(ctx, fmt.Sprintf("exports/%s/", datasetID))
}

// ValidationFailedError reports a refused export.
type ValidationFailedError struct {
	DatasetID string
	Report    validation.Report
}

func (e ValidationFailedError) Error() string {
	return fmt.Sprintf("dataset %s has %d invalid variables and %d dataset-level errors",
		e.DatasetID, e.Report.InvalidVariableCount(), len(e.Report.DatasetErrors))
}

// exportableFields strips underscore-prefixed UI cache keys from a variable.
func exportableFields(v domain.Variable) map[string]any {
	out := make(map[string]any, len(v.Fields))
	for k, val := range v.Fields {
		if len(k) > 0 && k[0] == '_' {
			continue
		}
		out[k] = val
	}
	return out
}
