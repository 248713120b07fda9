package scraper

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"krisha_scrooper/config"
	"krisha_scrooper/logging"
	"krisha_scrooper/models"
	"krisha_scrooper/monitoring"
)

var (
	ErrUnknownWatch   = errors.New("unknown watch")
	ErrRunInProgress  = errors.New("a run is already in progress")
	ErrUnknownCommand = errors.New("unknown command")
)

// RunStore persists run bookkeeping.
type RunStore interface {
	CreateRun(run *models.ScrapeRun) (int64, error)
	UpdateRun(run *models.ScrapeRun) error
	Log(runID *int64, level models.LogLevel, message, watch string) error
	UpdateWatchStats(watch string) error
}

type watchEntry struct {
	siteID string
	watch  config.Watch
}

type Orchestrator struct {
	cfg      *config.Config
	store    RunStore
	handlers map[string]Handler
	watches  map[string]watchEntry

	mu     sync.Mutex
	paused bool

	running sync.Mutex
}

func NewOrchestrator(cfg *config.Config, store RunStore, handlers map[string]Handler) *Orchestrator {
	watches := make(map[string]watchEntry)
	for id, siteCfg := range cfg.Sites {
		for _, w := range siteCfg.Watches {
			if w.Name == "" {
				w.Name = w.City
			}
			watches[w.Name] = watchEntry{siteID: id, watch: w}
		}
	}

	return &Orchestrator{
		cfg:      cfg,
		store:    store,
		handlers: handlers,
		watches:  watches,
	}
}

// RunAll walks every saved search in name order. Failures are logged per
// watch and do not stop the run.
func (o *Orchestrator) RunAll(ctx context.Context) error {
	if o.IsPaused() {
		logging.Infof("scraper is paused, skipping run")
		return nil
	}
	if !o.running.TryLock() {
		return ErrRunInProgress
	}
	defer o.running.Unlock()

	for _, name := range o.WatchNames() {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := o.runWatch(ctx, o.watches[name]); err != nil {
			logging.Errorf("watch %s: %v", name, err)
		}
	}
	return nil
}

func (o *Orchestrator) RunWatchByName(ctx context.Context, name string) error {
	entry, ok := o.watches[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownWatch, name)
	}
	if !o.running.TryLock() {
		return ErrRunInProgress
	}
	defer o.running.Unlock()

	return o.runWatch(ctx, entry)
}

func (o *Orchestrator) runWatch(ctx context.Context, entry watchEntry) error {
	handler, ok := o.handlers[entry.siteID]
	if !ok {
		return fmt.Errorf("no handler for site: %s", entry.siteID)
	}
	name := entry.watch.Name

	run := &models.ScrapeRun{
		Watch:     name,
		StartedAt: time.Now(),
		Status:    models.RunStatusRunning,
	}
	runID, err := o.store.CreateRun(run)
	if err != nil {
		return err
	}
	run.ID = runID

	o.log(run.ID, models.LogLevelInfo, fmt.Sprintf("Starting walk of %s (%s)", name, entry.watch.City), name)

	defer func() {
		now := time.Now()
		run.FinishedAt = &now
		if err := o.store.UpdateRun(run); err != nil {
			logging.Errorf("update run %d: %v", run.ID, err)
		}
		if err := o.store.UpdateWatchStats(name); err != nil {
			logging.Errorf("update stats for %s: %v", name, err)
		}
		monitoring.RecordWatchRun(name, string(run.Status))
	}()

	result, err := handler.Walk(ctx, entry.watch)
	if err != nil {
		run.ErrorsCount++
		run.Status = models.RunStatusFailed
		o.log(run.ID, models.LogLevelError, fmt.Sprintf("Walk failed: %v", err), name)
		return err
	}

	run.URL = result.URL
	run.Pages = result.Pages
	run.ListingsFound = len(result.Summaries)
	run.TotalFound = result.TotalFound
	run.ErrorsCount = result.Skipped
	run.Status = models.RunStatusCompleted

	if result.Skipped > 0 {
		o.log(run.ID, models.LogLevelWarn, fmt.Sprintf("%d cards could not be parsed", result.Skipped), name)
	}
	o.log(run.ID, models.LogLevelInfo,
		fmt.Sprintf("Completed: %d listings over %d of %d pages, %d total on site",
			run.ListingsFound, run.Pages, result.TotalPages, run.TotalFound), name)
	return nil
}

// HandleCommand executes one queued control command.
func (o *Orchestrator) HandleCommand(ctx context.Context, cmd models.CommandType, params *models.CommandParams) error {
	switch cmd {
	case models.CmdScrapeNow:
		return o.RunAll(ctx)
	case models.CmdScrapeWatch:
		if params != nil && params.Watch != "" {
			return o.RunWatchByName(ctx, params.Watch)
		}
		return o.RunAll(ctx)
	case models.CmdPause:
		o.Pause()
	case models.CmdResume:
		o.Resume()
	default:
		return fmt.Errorf("%w: %s", ErrUnknownCommand, cmd)
	}
	return nil
}

func (o *Orchestrator) Pause() {
	o.mu.Lock()
	o.paused = true
	o.mu.Unlock()
	logging.Infof("scraper paused")
}

func (o *Orchestrator) Resume() {
	o.mu.Lock()
	o.paused = false
	o.mu.Unlock()
	logging.Infof("scraper resumed")
}

func (o *Orchestrator) IsPaused() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.paused
}

func (o *Orchestrator) log(runID int64, level models.LogLevel, message, watch string) {
	logging.Logf(logging.ParseLevel(string(level)), "%s: %s", watch, message)
	if err := o.store.Log(&runID, level, message, watch); err != nil {
		logging.Warnf("store log: %v", err)
	}
}

func (o *Orchestrator) WatchNames() []string {
	names := make([]string, 0, len(o.watches))
	for name := range o.watches {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (o *Orchestrator) MarshalStatus() ([]byte, error) {
	status := map[string]interface{}{
		"paused":  o.IsPaused(),
		"watches": o.WatchNames(),
	}
	return json.Marshal(status)
}
