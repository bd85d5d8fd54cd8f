package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/clinvec/tabgest/internal/fetch"
	"github.com/clinvec/tabgest/internal/reader"
)

// Worker processes a single ingestion job: resolve the source stream, parse
// it into frames, record the outcome.
type Worker struct {
	fetcher *fetch.Client
	log     *slog.Logger
	stats   *ParseStats
}

func NewWorker(fetcher *fetch.Client, log *slog.Logger, stats *ParseStats) *Worker {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Worker{
		fetcher: fetcher,
		log:     log,
		stats:   stats,
	}
}

// Process runs the full ingest pipeline for a job.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "filename", job.Filename)

	p, err := reader.ForFile(job.Filename)
	if err != nil {
		log.Error("unsupported format", "error", err)
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, "dispatch")
		return
	}

	var src io.ReadCloser
	if data := job.FileData(); data != nil {
		src = io.NopCloser(bytes.NewReader(data))
	} else {
		job.SetStatus(StatusFetching, "fetching")
		f, err := w.fetcher.Open(ctx, job.Path, job.BackupURL)
		if err != nil {
			log.Error("fetch failed", "error", err)
			job.AddError(fmt.Sprintf("fetch: %s", err))
			job.SetStatus(StatusFailed, "fetching")
			return
		}
		src = f
	}
	defer src.Close()

	job.SetStatus(StatusParsing, "parsing")
	opts := job.ReadOptions()
	if opts.Logger == nil {
		opts.Logger = log
	}

	start := time.Now()
	results, err := p.Read(src, job.Filename, opts)
	if err != nil {
		log.Error("parse failed", "error", err)
		job.AddError(fmt.Sprintf("parse: %s", err))
		job.SetStatus(StatusFailed, "parsing")
		return
	}
	w.stats.Record(time.Since(start).Milliseconds())

	job.SetResults(results)
	job.SetStatus(StatusCompleted, "done")
	log.Info("ingest complete", "frames", len(results))
}
