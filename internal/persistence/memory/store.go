// Package memory provides the in-memory implementation of the metadata
// persistence store used for tests, ephemeral sessions, and as the
// transactional engine the durable backends wrap.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"oceanmeta/internal/idgen"
	"oceanmeta/pkg/domain"
)

// Compile-time contract assertion.
var _ domain.PersistentStore = (*Store)(nil)

type memoryState struct {
	projects    map[string]domain.Project
	experiments map[string]domain.Experiment
	datasets    map[string]domain.Dataset
}

// Snapshot captures a point-in-time clone of the store state for durable
// backends to persist and rehydrate.
type Snapshot struct {
	Projects    map[string]domain.Project    `json:"projects"`
	Experiments map[string]domain.Experiment `json:"experiments"`
	Datasets    map[string]domain.Dataset    `json:"datasets"`
}

func newMemoryState() memoryState {
	return memoryState{
		projects:    make(map[string]domain.Project),
		experiments: make(map[string]domain.Experiment),
		datasets:    make(map[string]domain.Dataset),
	}
}

func (s memoryState) clone() memoryState {
	cloned := newMemoryState()
	for k, v := range s.projects {
		cloned.projects[k] = cloneProject(v)
	}
	for k, v := range s.experiments {
		cloned.experiments[k] = cloneExperiment(v)
	}
	for k, v := range s.datasets {
		cloned.datasets[k] = cloneDataset(v)
	}
	return cloned
}

func cloneProject(p domain.Project) domain.Project {
	cp := p
	cp.Investigators = append([]string(nil), p.Investigators...)
	return cp
}

func cloneExperiment(e domain.Experiment) domain.Experiment {
	cp := e
	cp.SeaNames = append([]string(nil), e.SeaNames...)
	return cp
}

func cloneDataset(d domain.Dataset) domain.Dataset {
	cp := d
	cp.Authors = append([]string(nil), d.Authors...)
	if d.Fields != nil {
		cp.Fields = make(map[string]any, len(d.Fields))
		for k, v := range d.Fields {
			cp.Fields[k] = v
		}
	}
	cp.Variables = make([]domain.Variable, len(d.Variables))
	for i, v := range d.Variables {
		cp.Variables[i] = v.Clone()
	}
	return cp
}

// Store is the in-memory transactional store for metadata records.
type Store struct {
	mu     sync.RWMutex
	state  memoryState
	engine *domain.RulesEngine
	nowFn  func() time.Time
}

// NewStore constructs an in-memory store backed by the provided rules engine.
func NewStore(engine *domain.RulesEngine) *Store {
	if engine == nil {
		engine = domain.NewRulesEngine()
	}
	return &Store{
		state:  newMemoryState(),
		engine: engine,
		nowFn:  func() time.Time { return time.Now().UTC() },
	}
}

// SetClock overrides the transaction timestamp source, for tests.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nowFn = now
}

// Transaction applies a mutation set to a cloned state. Commit happens only
// when the callback and the rules engine both allow it.
type Transaction struct {
	state   memoryState
	changes []domain.Change
	now     time.Time
}

var _ domain.Transaction = (*Transaction)(nil)

type view struct {
	state *memoryState
}

var _ domain.TransactionView = view{}

// RunInTransaction executes fn within a transactional copy of the store
// state, evaluates the registered rules, and commits unless a blocking
// violation or error occurred.
func (s *Store) RunInTransaction(ctx context.Context, fn func(domain.Transaction) error) (domain.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &Transaction{state: s.state.clone(), now: s.nowFn()}
	if err := fn(tx); err != nil {
		return domain.Result{}, err
	}

	var result domain.Result
	if s.engine != nil {
		res, err := s.engine.Evaluate(ctx, view{state: &tx.state}, tx.changes)
		if err != nil {
			return domain.Result{}, err
		}
		result = res
		if res.HasBlocking() {
			return res, domain.RuleViolationError{Result: res}
		}
	}

	s.state = tx.state
	return result, nil
}

// View executes fn against a read-only snapshot of the store state.
func (s *Store) View(ctx context.Context, fn func(domain.TransactionView) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot := s.state.clone()
	return fn(view{state: &snapshot})
}

// ExportState clones the full store state for snapshotting backends.
func (s *Store) ExportState() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cloned := s.state.clone()
	return Snapshot{Projects: cloned.projects, Experiments: cloned.experiments, Datasets: cloned.datasets}
}

// ImportState replaces the store state from a persisted snapshot.
func (s *Store) ImportState(snapshot Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := newMemoryState()
	for k, v := range snapshot.Projects {
		state.projects[k] = cloneProject(v)
	}
	for k, v := range snapshot.Experiments {
		state.experiments[k] = cloneExperiment(v)
	}
	for k, v := range snapshot.Datasets {
		state.datasets[k] = cloneDataset(v)
	}
	s.state = state
}

// GetProject returns a project by ID.
func (s *Store) GetProject(id string) (domain.Project, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.state.projects[id]
	if !ok {
		return domain.Project{}, false
	}
	return cloneProject(p), true
}

// ListProjects returns all projects.
func (s *Store) ListProjects() []domain.Project {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Project, 0, len(s.state.projects))
	for _, p := range s.state.projects {
		out = append(out, cloneProject(p))
	}
	return out
}

// GetExperiment returns an experiment by ID.
func (s *Store) GetExperiment(id string) (domain.Experiment, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.state.experiments[id]
	if !ok {
		return domain.Experiment{}, false
	}
	return cloneExperiment(e), true
}

// ListExperiments returns all experiments.
func (s *Store) ListExperiments() []domain.Experiment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Experiment, 0, len(s.state.experiments))
	for _, e := range s.state.experiments {
		out = append(out, cloneExperiment(e))
	}
	return out
}

// GetDataset returns a dataset by ID.
func (s *Store) GetDataset(id string) (domain.Dataset, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.state.datasets[id]
	if !ok {
		return domain.Dataset{}, false
	}
	return cloneDataset(d), true
}

// ListDatasets returns all datasets.
func (s *Store) ListDatasets() []domain.Dataset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Dataset, 0, len(s.state.datasets))
	for _, d := range s.state.datasets {
		out = append(out, cloneDataset(d))
	}
	return out
}

// Snapshot exposes the transaction state to rules.
func (tx *Transaction) Snapshot() domain.TransactionView {
	return view{state: &tx.state}
}

func (tx *Transaction) recordChange(change domain.Change) {
	tx.changes = append(tx.changes, change)
}

// CreateProject stores a new project within the transaction.
func (tx *Transaction) CreateProject(p domain.Project) (domain.Project, error) {
	if p.ID == "" {
		p.ID = idgen.New("prj-")
	}
	if _, exists := tx.state.projects[p.ID]; exists {
		return domain.Project{}, alreadyExists(domain.EntityProject, p.ID)
	}
	p.CreatedAt = tx.now
	p.UpdatedAt = tx.now
	tx.state.projects[p.ID] = cloneProject(p)
	tx.recordChange(domain.Change{Entity: domain.EntityProject, Action: domain.ActionCreate, EntityID: p.ID, After: cloneProject(p)})
	return cloneProject(p), nil
}

// UpdateProject mutates a project using the provided mutator.
func (tx *Transaction) UpdateProject(id string, mutator func(*domain.Project) error) (domain.Project, error) {
	current, ok := tx.state.projects[id]
	if !ok {
		return domain.Project{}, domain.ErrNotFound{Entity: domain.EntityProject, ID: id}
	}
	before := cloneProject(current)
	if err := mutator(&current); err != nil {
		return domain.Project{}, err
	}
	current.ID = id
	current.UpdatedAt = tx.now
	tx.state.projects[id] = cloneProject(current)
	tx.recordChange(domain.Change{Entity: domain.EntityProject, Action: domain.ActionUpdate, EntityID: id, Before: before, After: cloneProject(current)})
	return cloneProject(current), nil
}

// DeleteProject removes a project from the transaction state.
func (tx *Transaction) DeleteProject(id string) error {
	current, ok := tx.state.projects[id]
	if !ok {
		return domain.ErrNotFound{Entity: domain.EntityProject, ID: id}
	}
	delete(tx.state.projects, id)
	tx.recordChange(domain.Change{Entity: domain.EntityProject, Action: domain.ActionDelete, EntityID: id, Before: cloneProject(current)})
	return nil
}

// CreateExperiment stores a new experiment within the transaction.
func (tx *Transaction) CreateExperiment(e domain.Experiment) (domain.Experiment, error) {
	if e.ID == "" {
		e.ID = idgen.New("exp-")
	}
	if _, exists := tx.state.experiments[e.ID]; exists {
		return domain.Experiment{}, alreadyExists(domain.EntityExperiment, e.ID)
	}
	e.CreatedAt = tx.now
	e.UpdatedAt = tx.now
	tx.state.experiments[e.ID] = cloneExperiment(e)
	tx.recordChange(domain.Change{Entity: domain.EntityExperiment, Action: domain.ActionCreate, EntityID: e.ID, After: cloneExperiment(e)})
	return cloneExperiment(e), nil
}

// UpdateExperiment mutates an experiment using the provided mutator.
func (tx *Transaction) UpdateExperiment(id string, mutator func(*domain.Experiment) error) (domain.Experiment, error) {
	current, ok := tx.state.experiments[id]
	if !ok {
		return domain.Experiment{}, domain.ErrNotFound{Entity: domain.EntityExperiment, ID: id}
	}
	before := cloneExperiment(current)
	if err := mutator(&current); err != nil {
		return domain.Experiment{}, err
	}
	current.ID = id
	current.UpdatedAt = tx.now
	tx.state.experiments[id] = cloneExperiment(current)
	tx.recordChange(domain.Change{Entity: domain.EntityExperiment, Action: domain.ActionUpdate, EntityID: id, Before: before, After: cloneExperiment(current)})
	return cloneExperiment(current), nil
}

// DeleteExperiment removes an experiment from the transaction state.
func (tx *Transaction) DeleteExperiment(id string) error {
	current, ok := tx.state.experiments[id]
	if !ok {
		return domain.ErrNotFound{Entity: domain.EntityExperiment, ID: id}
	}
	delete(tx.state.experiments, id)
	tx.recordChange(domain.Change{Entity: domain.EntityExperiment, Action: domain.ActionDelete, EntityID: id, Before: cloneExperiment(current)})
	return nil
}

// CreateDataset stores a new dataset within the transaction.
func (tx *Transaction) CreateDataset(d domain.Dataset) (domain.Dataset, error) {
	if d.ID == "" {
		d.ID = idgen.New("ds-")
	}
	if _, exists := tx.state.datasets[d.ID]; exists {
		return domain.Dataset{}, alreadyExists(domain.EntityDataset, d.ID)
	}
	d.CreatedAt = tx.now
	d.UpdatedAt = tx.now
	tx.state.datasets[d.ID] = cloneDataset(d)
	tx.recordChange(domain.Change{Entity: domain.EntityDataset, Action: domain.ActionCreate, EntityID: d.ID, After: cloneDataset(d)})
	return cloneDataset(d), nil
}

// UpdateDataset mutates a dataset using the provided mutator.
func (tx *Transaction) UpdateDataset(id string, mutator func(*domain.Dataset) error) (domain.Dataset, error) {
	current, ok := tx.state.datasets[id]
	if !ok {
		return domain.Dataset{}, domain.ErrNotFound{Entity: domain.EntityDataset, ID: id}
	}
	before := cloneDataset(current)
	if err := mutator(&current); err != nil {
		return domain.Dataset{}, err
	}
	current.ID = id
	current.UpdatedAt = tx.now
	tx.state.datasets[id] = cloneDataset(current)
	tx.recordChange(domain.Change{Entity: domain.EntityDataset, Action: domain.ActionUpdate, EntityID: id, Before: before, After: cloneDataset(current)})
	return cloneDataset(current), nil
}

// DeleteDataset removes a dataset from the transaction state.
func (tx *Transaction) DeleteDataset(id string) error {
	current, ok := tx.state.datasets[id]
	if !ok {
		return domain.ErrNotFound{Entity: domain.EntityDataset, ID: id}
	}
	delete(tx.state.datasets, id)
	tx.recordChange(domain.Change{Entity: domain.EntityDataset, Action: domain.ActionDelete, EntityID: id, Before: cloneDataset(current)})
	return nil
}

// FindProject retrieves a project by ID from the transaction state.
func (tx *Transaction) FindProject(id string) (domain.Project, bool) {
	p, ok := tx.state.projects[id]
	if !ok {
		return domain.Project{}, false
	}
	return cloneProject(p), true
}

// FindExperiment retrieves an experiment by ID from the transaction state.
func (tx *Transaction) FindExperiment(id string) (domain.Experiment, bool) {
	e, ok := tx.state.experiments[id]
	if !ok {
		return domain.Experiment{}, false
	}
	return cloneExperiment(e), true
}

// ListProjects returns all projects within the snapshot.
func (v view) ListProjects() []domain.Project {
	out := make([]domain.Project, 0, len(v.state.projects))
	for _, p := range v.state.projects {
		out = append(out, cloneProject(p))
	}
	return out
}

// ListExperiments returns all experiments within the snapshot.
func (v view) ListExperiments() []domain.Experiment {
	out := make([]domain.Experiment, 0, len(v.state.experiments))
	for _, e := range v.state.experiments {
		out = append(out, cloneExperiment(e))
	}
	return out
}

// ListDatasets returns all datasets within the snapshot.
func (v view) ListDatasets() []domain.Dataset {
	out := make([]domain.Dataset, 0, len(v.state.datasets))
	for _, d := range v.state.datasets {
		out = append(out, cloneDataset(d))
	}
	return out
}

// FindProject retrieves a project by ID from the snapshot.
func (v view) FindProject(id string) (domain.Project, bool) {
	p, ok := v.state.projects[id]
	if !ok {
		return domain.Project{}, false
	}
	return cloneProject(p), true
}

// FindExperiment retrieves an experiment by ID from the snapshot.
func (v view) FindExperiment(id string) (domain.Experiment, bool) {
	e, ok := v.state.experiments[id]
	if !ok {
		return domain.Experiment{}, false
	}
	return cloneExperiment(e), true
}

// FindDataset retrieves a dataset by ID from the snapshot.
func (v view) FindDataset(id string) (domain.Dataset, bool) {
	d, ok := v.state.datasets[id]
	if !ok {
		return domain.Dataset{}, false
	}
	return cloneDataset(d), true
}

func alreadyExists(entity domain.EntityType, id string) error {
	return fmt.Errorf("%s %q already exists", entity, id)
}
