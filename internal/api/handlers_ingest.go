package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/clinvec/tabgest/internal/pipeline"
	"github.com/clinvec/tabgest/internal/reader"
	"github.com/clinvec/tabgest/internal/tabular"
)

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	// Limit total request size.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024) // extra 1MB for form overhead

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	var job *pipeline.Job

	file, header, err := r.FormFile("file")
	switch {
	case err == nil:
		defer file.Close()

		filename := sanitizeFilename(header.Filename)
		if !reader.IsSupportedExtension(filename) {
			jsonError(w, fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)), http.StatusBadRequest)
			return
		}

		data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
		if err != nil {
			jsonError(w, "failed to read file", http.StatusInternalServerError)
			return
		}
		if int64(len(data)) > s.cfg.MaxUploadBytes {
			jsonError(w, fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
			return
		}

		job = pipeline.NewJob(filename)
		job.SetFileData(data)

	case r.FormValue("path") != "":
		// Server-side source: a path under the data directory, with an
		// optional backup URL to download from when the file is absent.
		rel := filepath.Clean(r.FormValue("path"))
		if strings.HasPrefix(rel, "..") || filepath.IsAbs(rel) {
			jsonError(w, "path must be relative to the data directory", http.StatusBadRequest)
			return
		}
		filename := filepath.Base(rel)
		if !reader.IsSupportedExtension(filename) {
			jsonError(w, fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)), http.StatusBadRequest)
			return
		}

		job = pipeline.NewJob(filename)
		job.Path = filepath.Join(s.cfg.DataDir, rel)
		job.BackupURL = r.FormValue("backup_url")

	default:
		jsonError(w, "either file or path is required", http.StatusBadRequest)
		return
	}

	job.SetReadOptions(s.readOptions(r))

	if err := s.orchestrator.Submit(job); err != nil {
		jsonError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	snap := job.Snapshot()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]any{
		"job_id":   snap.ID,
		"filename": snap.Filename,
		"status":   snap.Status,
		"poll_url": fmt.Sprintf("/api/ingest/%s/status", snap.ID),
	})
}

// readOptions builds per-job parse options from form fields.
func (s *Server) readOptions(r *http.Request) reader.Options {
	opts := reader.Options{
		Delimiter:         r.FormValue("delimiter"),
		FallbackPdftotext: s.cfg.PDFFallbackPdftotext,
	}
	if name := r.FormValue("index_column"); name != "" {
		opts.Index = &tabular.IndexSpec{Name: name}
	} else if v := r.FormValue("index_position"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			opts.Index = &tabular.IndexSpec{Pos: n}
		}
	}
	if v := r.FormValue("columns_obs_only"); v != "" {
		for _, c := range strings.Split(v, ",") {
			if c = strings.TrimSpace(c); c != "" {
				opts.ColumnsObsOnly = append(opts.ColumnsObsOnly, c)
			}
		}
	}
	return opts
}

func (s *Server) handleIngestStatus(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	job := s.orchestrator.GetJob(jobID)
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(job.Snapshot())
}

func (s *Server) handleBatchIngest(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes*10+10*1024*1024)

	if err := r.ParseMultipartForm(64 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		jsonError(w, "at least one file is required", http.StatusBadRequest)
		return
	}

	opts := s.readOptions(r)

	var results []map[string]any
	for _, fh := range files {
		filename := sanitizeFilename(fh.Filename)
		if !reader.IsSupportedExtension(filename) {
			results = append(results, map[string]any{
				"filename": filename,
				"error":    fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)),
			})
			continue
		}

		f, err := fh.Open()
		if err != nil {
			results = append(results, map[string]any{
				"filename": filename,
				"error":    "failed to open file",
			})
			continue
		}

		data, err := io.ReadAll(io.LimitReader(f, s.cfg.MaxUploadBytes+1))
		f.Close()
		if err != nil || int64(len(data)) > s.cfg.MaxUploadBytes {
			results = append(results, map[string]any{
				"filename": filename,
				"error":    "file too large or read error",
			})
			continue
		}

		job := pipeline.NewJob(filename)
		job.SetFileData(data)
		job.SetReadOptions(opts)

		if err := s.orchestrator.Submit(job); err != nil {
			results = append(results, map[string]any{
				"filename": filename,
				"error":    err.Error(),
			})
			continue
		}

		snap := job.Snapshot()
		results = append(results, map[string]any{
			"filename": filename,
			"job_id":   snap.ID,
			"status":   snap.Status,
			"poll_url": fmt.Sprintf("/api/ingest/%s/status", snap.ID),
		})
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]any{"jobs": results})
}

// handleIngestDir parses every supported file under a directory inside the
// data dir, synchronously, and returns frame summaries. Observation-only
// columns can be scoped per file as "basename:col1,col2" lines.
func (s *Server) handleIngestDir(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		jsonError(w, "invalid form: "+err.Error(), http.StatusBadRequest)
		return
	}

	rel := filepath.Clean(r.FormValue("dir"))
	if rel == "" || strings.HasPrefix(rel, "..") || filepath.IsAbs(rel) {
		jsonError(w, "dir must be a relative path inside the data directory", http.StatusBadRequest)
		return
	}

	obsOnly := make(map[string][]string)
	for _, line := range r.Form["columns_obs_only"] {
		base, cols, ok := strings.Cut(line, ":")
		if !ok {
			jsonError(w, fmt.Sprintf("columns_obs_only entry %q must be basename:col1,col2", line), http.StatusBadRequest)
			return
		}
		for _, c := range strings.Split(cols, ",") {
			if c = strings.TrimSpace(c); c != "" {
				obsOnly[base] = append(obsOnly[base], c)
			}
		}
	}

	frames, err := pipeline.ReadDir(r.Context(), filepath.Join(s.cfg.DataDir, rel), obsOnly, s.cfg.BatchWorkers, s.log)
	if err != nil {
		jsonError(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	summaries := make(map[string]frameSummary, len(frames))
	for name, f := range frames {
		summaries[name] = summarize(reader.Result{Name: name, Frame: f})
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"frames": summaries})
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(name)
	// Remove any path separators that might have survived.
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		name = "unnamed"
	}
	return name
}
