package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"oceanmeta/pkg/domain"
)

func TestCreateAndGetProject(t *testing.T) {
	store := NewStore(nil)
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store.SetClock(func() time.Time { return fixed })

	var created domain.Project
	_, err := store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		var err error
		created, err = tx.CreateProject(domain.Project{Name: "GOMECC-5"})
		return err
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == "" || !created.CreatedAt.Equal(fixed) {
		t.Fatalf("unexpected created project: %+v", created)
	}
	got, ok := store.GetProject(created.ID)
	if !ok || got.Name != "GOMECC-5" {
		t.Fatalf("get project failed: %+v ok=%v", got, ok)
	}
}

func TestRollbackOnCallbackError(t *testing.T) {
	store := NewStore(nil)
	boom := errors.New("boom")
	_, err := store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		if _, err := tx.CreateProject(domain.Project{Name: "doomed"}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected callback error, got %v", err)
	}
	if projects := store.ListProjects(); len(projects) != 0 {
		t.Fatalf("expected rollback, found %d projects", len(projects))
	}
}

type blockAllRule struct{}

func (blockAllRule) Name() string { return "block_all" }

func (blockAllRule) Evaluate(_ context.Context, _ domain.RuleView, changes []domain.Change) (domain.Result, error) {
	if len(changes) == 0 {
		return domain.Result{}, nil
	}
	return domain.Result{Violations: []domain.Violation{{Rule: "block_all", Severity: domain.SeverityBlock}}}, nil
}

func TestBlockingViolationPreventsCommit(t *testing.T) {
	engine := domain.NewRulesEngine()
	engine.Register(blockAllRule{})
	store := NewStore(engine)

	res, err := store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		_, err := tx.CreateProject(domain.Project{Name: "p"})
		return err
	})
	var violation domain.RuleViolationError
	if !errors.As(err, &violation) {
		t.Fatalf("expected rule violation error, got %v", err)
	}
	if !res.HasBlocking() {
		t.Fatalf("expected blocking result")
	}
	if len(store.ListProjects()) != 0 {
		t.Fatalf("blocked transaction still committed")
	}
}

func TestUpdateAndDeleteDataset(t *testing.T) {
	store := NewStore(nil)
	ctx := context.Background()

	var ds domain.Dataset
	if _, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		var err error
		ds, err = tx.CreateDataset(domain.Dataset{Title: "initial"})
		return err
	}); err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		_, err := tx.UpdateDataset(ds.ID, func(d *domain.Dataset) error {
			d.Title = "revised"
			d.Variables = append(d.Variables, domain.Variable{Fields: map[string]any{"variable_type": "ph"}})
			return nil
		})
		return err
	}); err != nil {
		t.Fatalf("update: %v", err)
	}

	got, ok := store.GetDataset(ds.ID)
	if !ok || got.Title != "revised" || len(got.Variables) != 1 {
		t.Fatalf("update not visible: %+v", got)
	}

	if _, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		return tx.DeleteDataset(ds.ID)
	}); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok := store.GetDataset(ds.ID); ok {
		t.Fatalf("dataset survived delete")
	}
}

func TestUpdateMissingEntityReturnsNotFound(t *testing.T) {
	store := NewStore(nil)
	_, err := store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		_, err := tx.UpdateExperiment("exp-missing", func(*domain.Experiment) error { return nil })
		return err
	})
	var notFound domain.ErrNotFound
	if !errors.As(err, &notFound) || notFound.Entity != domain.EntityExperiment {
		t.Fatalf("expected ErrNotFound for experiment, got %v", err)
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	store := NewStore(nil)
	ctx := context.Background()
	if _, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		project, err := tx.CreateProject(domain.Project{Name: "p"})
		if err != nil {
			return err
		}
		experiment, err := tx.CreateExperiment(domain.Experiment{ProjectID: project.ID, ProjectName: project.Name})
		if err != nil {
			return err
		}
		_, err = tx.CreateDataset(domain.Dataset{ExperimentID: experiment.ID, Title: "d"})
		return err
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	snapshot := store.ExportState()
	restored := NewStore(nil)
	restored.ImportState(snapshot)

	if len(restored.ListProjects()) != 1 || len(restored.ListExperiments()) != 1 || len(restored.ListDatasets()) != 1 {
		t.Fatalf("snapshot round trip lost records")
	}
}

func TestStoreReturnsClones(t *testing.T) {
	store := NewStore(nil)
	ctx := context.Background()
	var ds domain.Dataset
	if _, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		var err error
		ds, err = tx.CreateDataset(domain.Dataset{
			Title:     "clone-check",
			Variables: []domain.Variable{{Fields: map[string]any{"unit": "umol/kg"}}},
		})
		return err
	}); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, _ := store.GetDataset(ds.ID)
	got.Variables[0].Fields["unit"] = "tampered"

	fresh, _ := store.GetDataset(ds.ID)
	if fresh.Variables[0].Fields["unit"] != "umol/kg" {
		t.Fatalf("mutating a returned dataset leaked into the store")
	}
}
