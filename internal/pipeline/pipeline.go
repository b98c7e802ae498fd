// Package pipeline runs dashboards against the registry workbook: it loads
// the source, builds the destination sheets, writes them back and keeps the
// run log.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"capig-dash-go/internal/config"
	"capig-dash-go/internal/dashboard"
	"capig-dash-go/internal/dataset"
	"capig-dash-go/internal/logger"
	"capig-dash-go/internal/store"
	"capig-dash-go/internal/types"
)

var (
	ErrUnknownDashboard = errors.New("unknown dashboard")
	ErrNoStore          = errors.New("no run store configured")
)

type Runner struct {
	cfg   config.Config
	log   *logger.Logger
	store *store.SQLite
	mem   *dataset.Workbook

	mu    sync.Mutex
	locks map[string]*sync.Mutex
	// io serializes destination writes; with an in-memory workbook it
	// covers whole runs.
	io sync.Mutex
}

type Option func(*Runner)

// WithStore mirrors every destination sheet and run log into s.
func WithStore(s *store.SQLite) Option {
	return func(r *Runner) { r.store = s }
}

// WithWorkbook makes w both source and destination. The workbook is saved
// to the configured output path only when one is set.
func WithWorkbook(w *dataset.Workbook) Option {
	return func(r *Runner) { r.mem = w }
}

func New(cfg config.Config, log *logger.Logger, opts ...Option) *Runner {
	if log == nil {
		log = logger.New()
	}
	r := &Runner{cfg: cfg, log: log, locks: map[string]*sync.Mutex{}}
	for _, o := range opts {
		o(r)
	}
	return r
}

// lock returns the mutex of one dashboard.
func (r *Runner) lock(name string) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.locks[name]
	if !ok {
		m = &sync.Mutex{}
		r.locks[name] = m
	}
	return m
}

// source loads the workbook the dashboards read from.
func (r *Runner) source(ctx context.Context, log *logrus.Entry) (*dataset.Workbook, error) {
	if r.mem != nil {
		return r.mem, nil
	}
	if r.cfg.WorkbookURL != "" {
		return dataset.Fetch(ctx, r.cfg.WorkbookURL, r.cfg.FetchTimeout, log)
	}
	w, err := dataset.Open(r.cfg.WorkbookPath)
	if err != nil {
		return nil, fmt.Errorf("load workbook: %w", err)
	}
	return w, nil
}

// Dashboards lists the dashboards the runner knows.
func (r *Runner) Dashboards() []dashboard.Definition {
	return dashboard.All()
}

// Refresh runs one dashboard end to end. Refreshes of the same dashboard
// never overlap. Malformed rows only show up in the run log counters; the
// error is reserved for I/O failures.
func (r *Runner) Refresh(ctx context.Context, name string) (*types.RunLog, error) {
	def, ok := dashboard.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownDashboard, name)
	}
	m := r.lock(name)
	m.Lock()
	defer m.Unlock()

	log, runID := r.log.WithRun(name)
	run := types.NewRunLog(runID, name)
	log.Info("refresh started")

	err := r.refresh(ctx, def, log, run)
	run.FinishedAt = time.Now().UTC()
	if err != nil {
		run.Error = err.Error()
	}
	if r.store != nil {
		if serr := r.store.RecordRun(ctx, run); serr != nil {
			log.WithError(serr).Warn("run log not recorded")
			err = errors.Join(err, serr)
		}
	}

	entry := log.WithFields(logrus.Fields{
		"rows_read":   run.RowsRead,
		"skipped":     run.Skipped,
		"duplicates":  run.Duplicates,
		"unmatched":   run.Unmatched,
		"outputs":     run.Outputs,
		"duration_ms": run.FinishedAt.Sub(run.StartedAt).Milliseconds(),
	})
	if err != nil {
		entry.WithError(err).Error("refresh failed")
		return run, err
	}
	entry.Info("refresh finished")
	return run, nil
}

func (r *Runner) refresh(ctx context.Context, def dashboard.Definition, log *logrus.Entry, run *types.RunLog) error {
	if r.mem != nil {
		r.io.Lock()
		defer r.io.Unlock()
	}
	src, err := r.source(ctx, log)
	if err != nil {
		return err
	}
	if src != r.mem {
		defer src.Close()
	}

	dc := dashboard.NewContext(src, r.cfg.Fields, log, run)
	dc.Overrides = r.cfg.Overrides
	if r.cfg.DefaultHistYear > 0 {
		dc.HistYear = r.cfg.DefaultHistYear
	}
	if r.cfg.TopN > 0 {
		dc.TopN = r.cfg.TopN
	}
	sheets, err := def.Build(dc)
	if err != nil {
		return fmt.Errorf("build %s: %w", def.Name, err)
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("build %s: %w", def.Name, err)
	}

	if r.mem == nil {
		r.io.Lock()
		defer r.io.Unlock()
	}
	if err := r.write(ctx, src, sheets, log); err != nil {
		return err
	}
	for _, s := range sheets {
		run.Outputs[s.Name] = len(s.Rows)
	}
	return nil
}

// write puts the sheets into the destination workbook and saves it. A file
// destination is reopened so sheets written by other dashboards since this
// run started are kept.
func (r *Runner) write(ctx context.Context, src *dataset.Workbook, sheets []*types.Sheet, log *logrus.Entry) error {
	out := r.cfg.OutputPath
	if r.mem == nil && out == "" {
		out = r.cfg.WorkbookPath
	}
	dst := src
	if r.mem == nil {
		if _, err := os.Stat(out); err == nil {
			w, err := dataset.Open(out)
			if err != nil {
				return fmt.Errorf("reopen destination: %w", err)
			}
			defer w.Close()
			dst = w
		}
	}

	for _, s := range sheets {
		if err := dst.WriteSheet(s); err != nil {
			return fmt.Errorf("write %s: %w", s.Name, err)
		}
		if r.store != nil {
			if err := r.store.WriteSheet(ctx, s); err != nil {
				return err
			}
		}
	}
	if out == "" {
		return nil
	}
	if err := dst.Save(out); err != nil {
		return err
	}
	log.WithFields(logrus.Fields{"path": out, "sheets": len(sheets)}).Debug("workbook saved")
	return nil
}

// RefreshAll runs every dashboard in order. A failing dashboard does not stop
// the others; the errors are joined.
func (r *Runner) RefreshAll(ctx context.Context) ([]*types.RunLog, error) {
	var (
		runs []*types.RunLog
		errs []error
	)
	for _, d := range dashboard.All() {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		run, err := r.Refresh(ctx, d.Name)
		if run != nil {
			runs = append(runs, run)
		}
		if err != nil {
			errs = append(errs, err)
		}
	}
	return runs, errors.Join(errs...)
}

// Summary reports header detection for every sheet of the source workbook.
func (r *Runner) Summary(ctx context.Context) ([]dataset.SheetSummary, error) {
	if r.mem != nil {
		r.io.Lock()
		defer r.io.Unlock()
	}
	log := r.log.WithField("component", "summary")
	src, err := r.source(ctx, log)
	if err != nil {
		return nil, err
	}
	if src != r.mem {
		defer src.Close()
	}
	return dataset.Summarize(src, log)
}

// Runs lists recent run logs from the store.
func (r *Runner) Runs(ctx context.Context, limit int) ([]types.RunLog, error) {
	if r.store == nil {
		return nil, ErrNoStore
	}
	return r.store.Runs(ctx, limit)
}
