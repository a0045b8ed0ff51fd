/*
handlers.go - HTTP API handlers for the equity valuation engine

PURPOSE:
  Exposes the engine via REST API. Handles HTTP request/response and JSON
  serialization, and delegates to the factory (scenario resolution) and
  the schedule builder (valuation).

ENDPOINTS:
  Catalog:
    GET    /api/health                      Liveness and store check
    GET    /api/curves                      Registered vesting curves
    GET    /api/presets                     Built-in scenarios
    GET    /api/presets/{id}                One preset
    POST   /api/presets/{id}/simulate       Run a preset (?elapsed_periods=n)

  Simulations:
    POST   /api/simulations                 Run a scenario
    POST   /api/simulations/compare         Run a scenario under every curve

  Companies:
    GET    /api/companies                   List profiles
    POST   /api/companies                   Create profile
    GET    /api/companies/{id}              Get profile
    DELETE /api/companies/{id}              Delete profile
    POST   /api/companies/{id}/simulations  Run a scenario against a profile

ARCHITECTURE:
  Handler struct holds all dependencies:
  - Companies: Profile persistence
  - Factory: Scenario document to engine input
  - Builder: Stateless valuation engine
  Nothing is cached between requests; every simulation is recomputed.

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Invalid input; "field" names the offending input
  - 404: Unknown preset or company
  - 409: Duplicate company ID
  - 429: Rate limited (see ratelimit.go)
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - companies.go: Company profile handlers
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/warp/equity-engine/factory"
	"github.com/warp/equity-engine/generic"
	"github.com/warp/equity-engine/schedule"
	"github.com/warp/equity-engine/vesting"
)

const maxBodyBytes = 1 << 20

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Companies generic.CompanyStore
	Factory   *factory.ScenarioFactory
	Builder   *schedule.Builder
	Logger    *slog.Logger

	newID func() string
}

// NewHandler wires a handler. A nil builder uses default tax rates and a
// nil logger uses slog.Default().
func NewHandler(companies generic.CompanyStore, builder *schedule.Builder, logger *slog.Logger) *Handler {
	if builder == nil {
		builder = schedule.NewBuilder(nil)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		Companies: companies,
		Factory:   factory.NewScenarioFactory(companies),
		Builder:   builder,
		Logger:    logger,
		newID:     uuid.NewString,
	}
}

// =============================================================================
// CATALOG HANDLERS
// =============================================================================

type pinger interface {
	Ping(ctx context.Context) error
}

// Health reports whether the server and its store are reachable.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if p, ok := h.Companies.(pinger); ok {
		if err := p.Ping(r.Context()); err != nil {
			writeError(w, http.StatusServiceUnavailable, "Store unavailable", err)
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ListCurves returns every registered vesting curve.
func (h *Handler) ListCurves(w http.ResponseWriter, r *http.Request) {
	curves := vesting.Curves()
	dtos := make([]CurveDTO, len(curves))
	for i, c := range curves {
		dtos[i] = CurveDTO{Type: string(c.Type()), Description: c.Description()}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// ListPresets returns the built-in scenarios.
func (h *Handler) ListPresets(w http.ResponseWriter, r *http.Request) {
	presets := factory.Presets()
	dtos := make([]PresetDTO, len(presets))
	for i, p := range presets {
		dtos[i] = toPresetDTO(p)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetPreset returns one preset.
func (h *Handler) GetPreset(w http.ResponseWriter, r *http.Request) {
	p, ok := factory.LookupPreset(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "Preset not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, toPresetDTO(p))
}

// SimulatePreset runs a preset, optionally at a different elapsed offset.
func (h *Handler) SimulatePreset(w http.ResponseWriter, r *http.Request) {
	p, ok := factory.LookupPreset(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "Preset not found", nil)
		return
	}

	sj := p.Scenario
	if v := r.URL.Query().Get("elapsed_periods"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			h.fail(w, r, &generic.InvalidInputError{Field: "elapsed_periods", Value: v, Reason: "must be an integer"})
			return
		}
		sj.ElapsedPeriods = n
	}
	h.simulate(w, r, sj)
}

// =============================================================================
// SIMULATION HANDLERS
// =============================================================================

// Simulate runs the scenario in the request body.
func (h *Handler) Simulate(w http.ResponseWriter, r *http.Request) {
	sj, ok := h.decodeScenario(w, r)
	if !ok {
		return
	}
	h.simulate(w, r, sj)
}

// Compare runs the scenario in the request body under every curve.
func (h *Handler) Compare(w http.ResponseWriter, r *http.Request) {
	sj, ok := h.decodeScenario(w, r)
	if !ok {
		return
	}

	in, err := h.Factory.Build(r.Context(), sj)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	results, err := h.Builder.CompareCurves(in)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	runID := h.newID()
	dto := CompareDTO{RunID: runID, Results: make([]SimulationDTO, len(results))}
	for i, res := range results {
		dto.Results[i] = toSimulationDTO(runID, res)
	}

	h.Logger.Info("comparison complete",
		"run_id", runID,
		"request_id", middleware.GetReqID(r.Context()),
		"curves", len(results),
	)
	writeJSON(w, http.StatusOK, dto)
}

func (h *Handler) simulate(w http.ResponseWriter, r *http.Request, sj factory.ScenarioJSON) {
	in, err := h.Factory.Build(r.Context(), sj)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	res, err := h.Builder.Build(in)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	runID := h.newID()
	h.Logger.Info("simulation complete",
		"run_id", runID,
		"request_id", middleware.GetReqID(r.Context()),
		"curve", res.Curve,
		"horizon", res.Horizon,
		"elapsed", res.ElapsedPeriods,
		"tax_rule", res.Tax.Rule,
	)
	writeJSON(w, http.StatusOK, toSimulationDTO(runID, res))
}

func (h *Handler) decodeScenario(w http.ResponseWriter, r *http.Request) (factory.ScenarioJSON, bool) {
	var sj factory.ScenarioJSON
	if err := decodeBody(w, r, &sj); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return sj, false
	}
	return sj, true
}

// =============================================================================
// HELPERS
// =============================================================================

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	return json.NewDecoder(r.Body).Decode(dst)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Field = generic.FieldOf(err)
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// fail maps a domain error to its HTTP status and logs server-side failures.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, generic.ErrDuplicateCompany):
		writeError(w, http.StatusConflict, "Company already exists", err)
	case generic.IsNotFound(err):
		writeError(w, http.StatusNotFound, "Company not found", err)
	case generic.IsClientError(err):
		h.Logger.Debug("rejected input", "err", err, "path", r.URL.Path)
		writeError(w, http.StatusBadRequest, "Invalid input", err)
	default:
		h.Logger.Error("request failed", "err", err, "path", r.URL.Path,
			"request_id", middleware.GetReqID(r.Context()))
		writeError(w, http.StatusInternalServerError, "Internal error", err)
	}
}

func toPresetDTO(p factory.Preset) PresetDTO {
	return PresetDTO{ID: p.ID, Name: p.Name, Description: p.Description, Scenario: p.Scenario}
}
