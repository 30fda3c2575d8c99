package prompt

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/tormodhaugland/pf/internal/debug"
	"github.com/tormodhaugland/pf/internal/fs"
)

// maxConcurrentReads bounds the re-reads issued by one Reconcile pass.
const maxConcurrentReads = 8

// FileError reports a bound file that could not be re-read.
type FileError struct {
	Slot   string `json:"slot"`
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// ReconcileResult is the outcome of one refresh pass. Store is a new snapshot;
// the store passed to Reconcile is left untouched.
type ReconcileResult struct {
	Store             *Store
	Segments          []Segment
	Template          string
	RefreshedTemplate bool
	RefreshedAnyFile  bool
	TemplateErr       error
	FileErrors        []FileError
}

type refreshJob struct {
	slot  string
	index int
	rec   FileRecord
}

type refreshOutcome struct {
	rec FileRecord
	err error
}

// Reconcile re-reads the template through templateSource, when set, and every
// bound file that has a live source. A failed template read leaves segments
// as given and is reported in TemplateErr; a failed file read keeps the
// previous record and adds a FileError. Input values are carried over as is.
func Reconcile(ctx context.Context, prev *Store, segments []Segment, templateSource fs.FileHandle) ReconcileResult {
	res := ReconcileResult{Segments: segments}

	if templateSource != nil {
		text, err := templateSource.ReadText(ctx)
		if err != nil {
			res.TemplateErr = err
			debug.Debug("reconcile: template %s: %v", templateSource.Name(), err)
		} else {
			res.Template = text
			res.Segments = Scan(text)
			res.RefreshedTemplate = true
		}
	}

	next := prev.Clone()

	var jobs []refreshJob
	for _, slot := range next.FileSlotIDs() {
		for i, rec := range next.files[slot] {
			if rec.Source != nil {
				jobs = append(jobs, refreshJob{slot: slot, index: i, rec: rec})
			}
		}
	}
	if len(jobs) == 0 {
		res.Store = next
		return res
	}

	// Each goroutine owns one element of outcomes, so no locking is needed.
	outcomes := make([]refreshOutcome, len(jobs))
	var g errgroup.Group
	g.SetLimit(maxConcurrentReads)
	for i, job := range jobs {
		i, job := i, job
		g.Go(func() error {
			text, err := job.rec.Source.ReadText(ctx)
			if err != nil {
				outcomes[i] = refreshOutcome{err: err}
				return nil
			}
			rec := job.rec
			rec.Contents = text
			rec.Size = int64(len(text))
			outcomes[i] = refreshOutcome{rec: rec}
			return nil
		})
	}
	_ = g.Wait()

	for i, job := range jobs {
		out := outcomes[i]
		if out.err != nil {
			res.FileErrors = append(res.FileErrors, FileError{
				Slot:   job.slot,
				Path:   job.rec.Path,
				Reason: out.err.Error(),
			})
			continue
		}
		next.files[job.slot][job.index] = out.rec
		res.RefreshedAnyFile = true
	}

	debug.Debug("reconcile: %d files, %d errors, template=%v", len(jobs), len(res.FileErrors), res.RefreshedTemplate)
	res.Store = next
	return res
}
