// Package api exposes the reduction pipeline over HTTP: submit a batch of
// detected segments, get back the duplicate groups and the kept
// representatives, optionally persisting both for later inspection.
package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/sightline-data/linedup/internal/config"
	"github.com/sightline-data/linedup/internal/httputil"
	"github.com/sightline-data/linedup/internal/linedb"
	"github.com/sightline-data/linedup/internal/monitor"
	"github.com/sightline-data/linedup/internal/monitoring"
	"github.com/sightline-data/linedup/internal/units"
	"github.com/sightline-data/linedup/lines"
)

// Server handles the HTTP API. db may be nil, in which case persistence is
// disabled and only stateless reduction is served.
type Server struct {
	db       *linedb.DB
	batches  *linedb.BatchStore
	runs     *linedb.RunStore
	defaults *config.ReduceConfig
}

// NewServer creates a Server with the given database (nil to disable
// persistence) and default tuning.
func NewServer(db *linedb.DB, defaults *config.ReduceConfig) *Server {
	if defaults == nil {
		defaults = config.EmptyReduceConfig()
	}
	s := &Server{db: db, defaults: defaults}
	if db != nil {
		s.batches = linedb.NewBatchStore(db)
		s.runs = linedb.NewRunStore(db)
	}
	return s
}

// ServeMux returns the route table.
func (s *Server) ServeMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.homeHandler)
	mux.HandleFunc("/api/lines/reduce", s.handleReduce)
	mux.HandleFunc("/api/batches", s.handleListBatches)
	mux.HandleFunc("/api/batch", s.handleGetBatch)
	mux.HandleFunc("/api/run", s.handleGetRun)
	mux.HandleFunc("/debug/reduction/chart", s.handleReductionChart)
	return mux
}

func (s *Server) homeHandler(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte("linedup: line segment deduplication service"))
}

// ReduceRequest is the body of POST /api/lines/reduce.
type ReduceRequest struct {
	Segments []lines.Segment      `json:"segments"`
	Tuning   *config.ReduceConfig `json:"tuning,omitempty"`
	// ThresholdUnit applies to the angle method only: "deg" thresholds are
	// converted to radians before the angle scale is applied.
	ThresholdUnit string `json:"threshold_unit,omitempty"`
	Persist       bool   `json:"persist,omitempty"`
	Label         string `json:"label,omitempty"`
}

// ReduceResponse is the result of POST /api/lines/reduce.
type ReduceResponse struct {
	BatchID     string          `json:"batch_id,omitempty"`
	RunID       string          `json:"run_id,omitempty"`
	Method      string          `json:"method"`
	Threshold   float64         `json:"threshold"`
	InputCount  int             `json:"input_count"`
	OutputCount int             `json:"output_count"`
	Groups      [][]int         `json:"groups"`
	Reduced     []lines.Segment `json:"reduced"`
}

func (s *Server) handleReduce(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.MethodNotAllowed(w)
		return
	}

	var req ReduceRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}
	if len(req.Segments) == 0 {
		httputil.BadRequest(w, "segments must not be empty")
		return
	}
	if req.ThresholdUnit != "" && !units.IsValid(req.ThresholdUnit) {
		httputil.BadRequest(w, fmt.Sprintf("invalid threshold_unit %q, valid units: %s",
			req.ThresholdUnit, units.GetValidUnitsString()))
		return
	}

	if req.Tuning != nil {
		if err := req.Tuning.Validate(); err != nil {
			httputil.BadRequest(w, err.Error())
			return
		}
	}
	cfg := s.defaults.Merge(req.Tuning)

	method := cfg.GetMethod()
	params := cfg.DistanceParams()
	threshold := cfg.GetThreshold()
	if method == lines.MethodAngle && req.ThresholdUnit == units.Degrees {
		threshold = units.ToRadians(threshold, units.Degrees) * params.AngleScale
	}

	m, err := lines.ParallelDistanceMatrix(req.Segments, method, params, cfg.GetWorkers())
	if err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}
	groups := lines.GroupsFromMatrix(m, threshold)
	reduced := lines.ReduceGroups(req.Segments, groups, cfg.GetKeepLongest())

	monitoring.Debugf("reduce: %d segments -> %d groups (method=%s threshold=%v)",
		len(req.Segments), len(groups), method, threshold)

	resp := ReduceResponse{
		Method:      method.String(),
		Threshold:   threshold,
		InputCount:  len(req.Segments),
		OutputCount: len(reduced),
		Groups:      groups,
		Reduced:     reduced,
	}

	if req.Persist {
		if s.db == nil {
			httputil.BadRequest(w, "persistence is disabled: no database configured")
			return
		}
		batchID, runID, err := s.persistRun(&req, &resp, cfg)
		if err != nil {
			monitoring.Logf("failed to persist reduction: %v", err)
			httputil.InternalServerError(w, "failed to persist reduction")
			return
		}
		resp.BatchID = batchID
		resp.RunID = runID
	}

	httputil.WriteJSON(w, http.StatusOK, resp)
}

func (s *Server) persistRun(req *ReduceRequest, resp *ReduceResponse, cfg *config.ReduceConfig) (batchID, runID string, err error) {
	batch := &linedb.SegmentBatch{
		Label:    req.Label,
		Segments: req.Segments,
	}
	if err := s.batches.Insert(batch); err != nil {
		return "", "", fmt.Errorf("insert batch: %w", err)
	}

	paramsJSON, err := json.Marshal(cfg)
	if err != nil {
		return "", "", fmt.Errorf("marshal tuning: %w", err)
	}

	run := &linedb.ReductionRun{
		BatchID:     batch.BatchID,
		Method:      resp.Method,
		Threshold:   resp.Threshold,
		KeepLongest: cfg.GetKeepLongest(),
		Params:      paramsJSON,
		InputCount:  resp.InputCount,
		OutputCount: resp.OutputCount,
		Groups:      resp.Groups,
		Reduced:     resp.Reduced,
	}
	if err := s.runs.Insert(run); err != nil {
		return "", "", fmt.Errorf("insert run: %w", err)
	}

	return batch.BatchID, run.RunID, nil
}

func (s *Server) handleListBatches(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	if s.batches == nil {
		httputil.NotFound(w, "persistence is disabled")
		return
	}

	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		if v, err := strconv.Atoi(l); err == nil && v > 0 && v <= 500 {
			limit = v
		}
	}

	batches, err := s.batches.List(limit)
	if err != nil {
		httputil.InternalServerError(w, err.Error())
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{"batches": batches})
}

func (s *Server) handleGetBatch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	if s.batches == nil {
		httputil.NotFound(w, "persistence is disabled")
		return
	}

	batchID := r.URL.Query().Get("batch_id")
	if batchID == "" {
		httputil.BadRequest(w, "batch_id is required")
		return
	}

	batch, err := s.batches.Get(batchID)
	if err == linedb.ErrNotFound {
		httputil.NotFound(w, "no such batch")
		return
	}
	if err != nil {
		httputil.InternalServerError(w, err.Error())
		return
	}

	runs, err := s.runs.ListByBatch(batchID)
	if err != nil {
		httputil.InternalServerError(w, err.Error())
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"batch": batch,
		"runs":  runs,
	})
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	if s.runs == nil {
		httputil.NotFound(w, "persistence is disabled")
		return
	}

	runID := r.URL.Query().Get("run_id")
	if runID == "" {
		httputil.BadRequest(w, "run_id is required")
		return
	}

	run, err := s.runs.Get(runID)
	if err == linedb.ErrNotFound {
		httputil.NotFound(w, "no such run")
		return
	}
	if err != nil {
		httputil.InternalServerError(w, err.Error())
		return
	}
	httputil.WriteJSON(w, http.StatusOK, run)
}

// handleReductionChart renders a quick scatter chart (HTML) of a stored run
// using go-echarts. This is a debugging-only endpoint, not part of the API.
func (s *Server) handleReductionChart(w http.ResponseWriter, r *http.Request) {
	if s.runs == nil {
		httputil.NotFound(w, "persistence is disabled")
		return
	}

	runID := r.URL.Query().Get("run_id")
	if runID == "" {
		httputil.BadRequest(w, "run_id is required")
		return
	}

	run, err := s.runs.Get(runID)
	if err == linedb.ErrNotFound {
		httputil.NotFound(w, "no such run")
		return
	}
	if err != nil {
		httputil.InternalServerError(w, err.Error())
		return
	}

	batch, err := s.batches.Get(run.BatchID)
	if err != nil {
		httputil.InternalServerError(w, err.Error())
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	title := fmt.Sprintf("Reduction %s (%s)", run.RunID, run.Method)
	if err := monitor.RenderReductionChart(w, title, batch.Segments, run.Reduced, run.Groups); err != nil {
		monitoring.Logf("failed to render chart: %v", err)
	}
}
