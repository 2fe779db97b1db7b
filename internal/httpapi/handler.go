// Package httpapi exposes the metadata service over a JSON HTTP API.
package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"oceanmeta/internal/core"
	"oceanmeta/internal/formengine"
	"oceanmeta/pkg/domain"
)

// Handler routes the versioned API onto a core service.
type Handler struct {
	service *core.Service
	mux     *http.ServeMux
}

// NewHandler builds the route table for the supplied service.
func NewHandler(service *core.Service) *Handler {
	h := &Handler{service: service, mux: http.NewServeMux()}

	h.mux.HandleFunc("GET /api/v1/forms/variable", h.handleVariableForm)
	h.mux.HandleFunc("GET /api/v1/forms/definitions", h.handleListDefinitions)
	h.mux.HandleFunc("GET /api/v1/forms/definitions/{name}/sections", h.handleDefinitionSections)
	h.mux.HandleFunc("GET /api/v1/forms/sea-names", h.handleSeaNames)

	h.mux.HandleFunc("GET /api/v1/projects", h.handleListProjects)
	h.mux.HandleFunc("POST /api/v1/projects", h.handleCreateProject)
	h.mux.HandleFunc("GET /api/v1/projects/{id}", h.handleGetProject)
	h.mux.HandleFunc("PUT /api/v1/projects/{id}", h.handleUpdateProject)
	h.mux.HandleFunc("DELETE /api/v1/projects/{id}", h.handleDeleteProject)

	h.mux.HandleFunc("GET /api/v1/experiments", h.handleListExperiments)
	h.mux.HandleFunc("POST /api/v1/experiments", h.handleCreateExperiment)
	h.mux.HandleFunc("GET /api/v1/experiments/{id}", h.handleGetExperiment)
	h.mux.HandleFunc("PUT /api/v1/experiments/{id}", h.handleUpdateExperiment)
	h.mux.HandleFunc("DELETE /api/v1/experiments/{id}", h.handleDeleteExperiment)

	h.mux.HandleFunc("GET /api/v1/datasets", h.handleListDatasets)
	h.mux.HandleFunc("POST /api/v1/datasets", h.handleCreateDataset)
	h.mux.HandleFunc("GET /api/v1/datasets/{id}", h.handleGetDataset)
	h.mux.HandleFunc("PUT /api/v1/datasets/{id}", h.handleUpdateDataset)
	h.mux.HandleFunc("DELETE /api/v1/datasets/{id}", h.handleDeleteDataset)
	h.mux.HandleFunc("POST /api/v1/datasets/{id}/validate", h.handleValidateDataset)
	h.mux.HandleFunc("POST /api/v1/datasets/{id}/export", h.handleExportDataset)
	h.mux.HandleFunc("GET /api/v1/datasets/{id}/exports", h.handleListExports)

	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

func (h *Handler) handleVariableForm(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	sections, name, ok := h.service.VariableSections(q.Get("variable_type"), q.Get("genesis"), q.Get("sampling"))
	if !ok {
		writeJSON(w, http.StatusOK, map[string]any{"resolved": false})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"resolved":   true,
		"definition": name,
		"sections":   sections,
	})
}

func (h *Handler) handleListDefinitions(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"definitions": h.service.Definitions()})
}

func (h *Handler) handleDefinitionSections(w http.ResponseWriter, r *http.Request) {
	name := formengine.DefinitionName(r.PathValue("name"))
	sections, ok := h.service.DefinitionSections(name)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown variable definition")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"definition": name, "sections": sections})
}

func (h *Handler) handleSeaNames(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"sea_names": h.service.SeaNames()})
}

type projectPayload struct {
	Name          string   `json:"name"`
	Title         string   `json:"title"`
	Investigators []string `json:"investigators"`
	FundingAgency string   `json:"funding_agency"`
	StartDate     string   `json:"start_date"`
	EndDate       string   `json:"end_date"`
	Abstract      string   `json:"abstract"`
}

func (h *Handler) handleListProjects(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"projects": h.service.Store().ListProjects()})
}

func (h *Handler) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	var payload projectPayload
	if !decodeBody(w, r, &payload) {
		return
	}
	created, res, err := h.service.CreateProject(r.Context(), domain.Project{
		Name:          payload.Name,
		Title:         payload.Title,
		Investigators: payload.Investigators,
		FundingAgency: payload.FundingAgency,
		StartDate:     payload.StartDate,
		EndDate:       payload.EndDate,
		Abstract:      payload.Abstract,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"project": created, "violations": res.Violations})
}

func (h *Handler) handleGetProject(w http.ResponseWriter, r *http.Request) {
	project, ok := h.service.Store().GetProject(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, "project not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"project": project})
}

func (h *Handler) handleUpdateProject(w http.ResponseWriter, r *http.Request) {
	var payload projectPayload
	if !decodeBody(w, r, &payload) {
		return
	}
	updated, res, err := h.service.UpdateProject(r.Context(), r.PathValue("id"), func(p *domain.Project) error {
		p.Name = payload.Name
		p.Title = payload.Title
		p.Investigators = payload.Investigators
		p.FundingAgency = payload.FundingAgency
		p.StartDate = payload.StartDate
		p.EndDate = payload.EndDate
		p.Abstract = payload.Abstract
		return nil
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"project": updated, "violations": res.Violations})
}

func (h *Handler) handleDeleteProject(w http.ResponseWriter, r *http.Request) {
	if _, err := h.service.DeleteProject(r.Context(), r.PathValue("id")); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type experimentPayload struct {
	ProjectID string   `json:"project_id"`
	Platform  string   `json:"platform"`
	CruiseID  string   `json:"cruise_id"`
	StartDate string   `json:"start_date"`
	EndDate   string   `json:"end_date"`
	Region    string   `json:"region"`
	SeaNames  []string `json:"sea_names"`
}

func (h *Handler) handleListExperiments(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"experiments": h.service.Store().ListExperiments()})
}

func (h *Handler) handleCreateExperiment(w http.ResponseWriter, r *http.Request) {
	var payload experimentPayload
	if !decodeBody(w, r, &payload) {
		return
	}
	created, res, err := h.service.CreateExperiment(r.Context(), domain.Experiment{
		ProjectID: payload.ProjectID,
		Platform:  payload.Platform,
		CruiseID:  payload.CruiseID,
		StartDate: payload.StartDate,
		EndDate:   payload.EndDate,
		Region:    payload.Region,
		SeaNames:  payload.SeaNames,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"experiment": created, "violations": res.Violations})
}

func (h *Handler) handleGetExperiment(w http.ResponseWriter, r *http.Request) {
	experiment, ok := h.service.Store().GetExperiment(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, "experiment not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"experiment": experiment})
}

func (h *Handler) handleUpdateExperiment(w http.ResponseWriter, r *http.Request) {
	var payload experimentPayload
	if !decodeBody(w, r, &payload) {
		return
	}
	updated, res, err := h.service.UpdateExperiment(r.Context(), r.PathValue("id"), func(e *domain.Experiment) error {
		e.Platform = payload.Platform
		e.CruiseID = payload.CruiseID
		e.StartDate = payload.StartDate
		e.EndDate = payload.EndDate
		e.Region = payload.Region
		e.SeaNames = payload.SeaNames
		return nil
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"experiment": updated, "violations": res.Violations})
}

func (h *Handler) handleDeleteExperiment(w http.ResponseWriter, r *http.Request) {
	if _, err := h.service.DeleteExperiment(r.Context(), r.PathValue("id")); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type datasetPayload struct {
	ExperimentID string           `json:"experiment_id"`
	Title        string           `json:"title"`
	DOI          string           `json:"doi"`
	Authors      []string         `json:"authors"`
	Fields       map[string]any   `json:"fields"`
	Variables    []map[string]any `json:"variables"`
}

func (p datasetPayload) variables() []domain.Variable {
	out := make([]domain.Variable, len(p.Variables))
	for i, fields := range p.Variables {
		out[i] = domain.Variable{Fields: fields}
	}
	return out
}

func (h *Handler) handleListDatasets(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"datasets": h.service.Store().ListDatasets()})
}

func (h *Handler) handleCreateDataset(w http.ResponseWriter, r *http.Request) {
	var payload datasetPayload
	if !decodeBody(w, r, &payload) {
		return
	}
	created, res, err := h.service.CreateDataset(r.Context(), domain.Dataset{
		ExperimentID: payload.ExperimentID,
		Title:        payload.Title,
		DOI:          payload.DOI,
		Authors:      payload.Authors,
		Fields:       payload.Fields,
		Variables:    payload.variables(),
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"dataset": created, "violations": res.Violations})
}

func (h *Handler) handleGetDataset(w http.ResponseWriter, r *http.Request) {
	dataset, ok := h.service.Store().GetDataset(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, "dataset not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"dataset": dataset})
}

func (h *Handler) handleUpdateDataset(w http.ResponseWriter, r *http.Request) {
	var payload datasetPayload
	if !decodeBody(w, r, &payload) {
		return
	}
	updated, res, err := h.service.UpdateDataset(r.Context(), r.PathValue("id"), func(d *domain.Dataset) error {
		d.Title = payload.Title
		d.DOI = payload.DOI
		d.Authors = payload.Authors
		d.Fields = payload.Fields
		d.Variables = payload.variables()
		return nil
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"dataset": updated, "violations": res.Violations})
}

func (h *Handler) handleDeleteDataset(w http.ResponseWriter, r *http.Request) {
	if _, err := h.service.DeleteDataset(r.Context(), r.PathValue("id")); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleValidateDataset(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.ValidateDataset(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"valid":    report.IsValid(),
		"report":   report,
		"messages": report.AllMessages(),
	})
}

func (h *Handler) handleExportDataset(w http.ResponseWriter, r *http.Request) {
	record, err := h.service.ExportDataset(r.Context(), r.PathValue("id"))
	if err != nil {
		var failed core.ValidationFailedError
		if errors.As(err, &failed) {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
				"error":    failed.Error(),
				"report":   failed.Report,
				"messages": failed.Report.AllMessages(),
			})
			return
		}
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"export": record})
}

func (h *Handler) handleListExports(w http.ResponseWriter, r *http.Request) {
	exports, err := h.service.ListExports(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"exports": exports})
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return false
	}
	return true
}

func writeDomainError(w http.ResponseWriter, err error) {
	var notFound domain.ErrNotFound
	if errors.As(err, &notFound) {
		writeError(w, http.StatusNotFound, notFound.Error())
		return
	}
	var blocked domain.RuleViolationError
	if errors.As(err, &blocked) {
		writeJSON(w, http.StatusConflict, map[string]any{
			"error":      blocked.Error(),
			"violations": blocked.Result.Violations,
		})
		return
	}
	writeError(w, http.StatusInternalServerError, err.Error())
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": message})
}
