package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/clinvec/tabgest/internal/frame"
	"github.com/clinvec/tabgest/internal/pipeline"
	"github.com/clinvec/tabgest/internal/reader"
)

type frameSummary struct {
	Name     string            `json:"name"`
	Rows     int               `json:"rows"`
	Cols     int               `json:"cols"`
	VarNames []string          `json:"var_names"`
	ObsMeta  map[string]string `json:"obs_meta,omitempty"`
	Layers   []string          `json:"layers,omitempty"`
}

func summarize(res reader.Result) frameSummary {
	f := res.Frame
	rows, cols := f.Shape()
	sum := frameSummary{
		Name:     res.Name,
		Rows:     rows,
		Cols:     cols,
		VarNames: f.VarNames,
	}
	if len(f.ObsColumns) > 0 {
		sum.ObsMeta = make(map[string]string, len(f.ObsColumns))
		for _, name := range f.ObsColumns {
			sum.ObsMeta[name] = f.Obs[name].Kind.String()
		}
	}
	for name := range f.Layers {
		sum.Layers = append(sum.Layers, name)
	}
	return sum
}

func (s *Server) handleGetFrames(w http.ResponseWriter, r *http.Request) {
	job, ok := s.completedJob(w, r)
	if !ok {
		return
	}

	results := job.Results()
	summaries := make([]frameSummary, 0, len(results))
	for _, res := range results {
		summaries = append(summaries, summarize(res))
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"job_id": job.ID,
		"frames": summaries,
	})
}

// handleFrameSnapshot streams one frame in snapshot form. The name query
// parameter selects a frame when the source yielded several tables; it
// defaults to the first.
func (s *Server) handleFrameSnapshot(w http.ResponseWriter, r *http.Request) {
	job, ok := s.completedJob(w, r)
	if !ok {
		return
	}

	results := job.Results()
	if len(results) == 0 {
		jsonError(w, "job produced no frames", http.StatusNotFound)
		return
	}

	res := results[0]
	if name := r.URL.Query().Get("name"); name != "" {
		found := false
		for _, candidate := range results {
			if candidate.Name == name {
				res = candidate
				found = true
				break
			}
		}
		if !found {
			jsonError(w, fmt.Sprintf("no frame named %q", name), http.StatusNotFound)
			return
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.tgf"`, res.Name))
	if err := frame.WriteSnapshot(w, res.Frame); err != nil {
		s.log.Error("snapshot write failed", "job_id", job.ID, "frame", res.Name, "error", err)
	}
}

// completedJob resolves the jobID URL parameter to a completed job, writing
// the error response itself when it cannot.
func (s *Server) completedJob(w http.ResponseWriter, r *http.Request) (*pipeline.Job, bool) {
	jobID := chi.URLParam(r, "jobID")
	job := s.orchestrator.GetJob(jobID)
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return nil, false
	}
	snap := job.Snapshot()
	switch snap.Status {
	case pipeline.StatusCompleted:
		return job, true
	case pipeline.StatusFailed:
		jsonError(w, "job failed", http.StatusConflict)
		return nil, false
	default:
		jsonError(w, fmt.Sprintf("job not finished (status %s)", snap.Status), http.StatusConflict)
		return nil, false
	}
}
