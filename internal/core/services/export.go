package services

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"strconv"
	"sync"
	"time"
	_ "time/tzdata"

	"github.com/custodia-labs/mbsearch/internal/core/domain"
	"github.com/custodia-labs/mbsearch/internal/core/ports/driven"
	"github.com/custodia-labs/mbsearch/internal/core/ports/driving"
	"github.com/custodia-labs/mbsearch/internal/logger"
)

// Ensure ExportService implements the interface.
var _ driving.ExportService = (*ExportService)(nil)

// maxPrealloc caps the item slice capacity reserved from the reported count.
const maxPrealloc = 10000

// Progress milestones of an export.
const (
	progressStart      = 5
	progressCounted    = 10
	progressFetchSpan  = 60
	progressFetched    = 75
	progressSerialized = 90
	progressDone       = 100
)

// ExportOptions holds the collaborators of an ExportService.
type ExportOptions struct {
	// Encoders lists the supported formats. Required.
	Encoders []driven.ExportEncoder

	// Sink receives the encoded file. Required.
	Sink driven.ExportSink

	// Ledger records finished exports. Optional.
	Ledger driven.ExportLedger

	// Settings configures filenames and the reset delay.
	Settings domain.ExportSettings

	// NewID generates job IDs. Defaults to a timestamp-based ID.
	NewID func() string

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time

	// Gate is shared by services that must not export at the same time.
	// Defaults to a gate owned by this service.
	Gate *ExportGate
}

// ExportGate admits one export at a time across the services sharing it.
type ExportGate struct {
	mu   sync.Mutex
	busy bool
}

// NewExportGate creates an open gate.
func NewExportGate() *ExportGate {
	return &ExportGate{}
}

// acquire claims the gate, reporting false when an export holds it.
func (g *ExportGate) acquire() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.busy {
		return false
	}
	g.busy = true
	return true
}

func (g *ExportGate) release() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.busy = false
}

// ExportService exports every result of an intent through sequential
// batched requests, reporting progress as it goes. One export runs at a
// time per gate; a finished export stays visible until the reset delay
// passes.
type ExportService struct {
	backend  driven.SearchBackend
	planner  *Planner
	encoders map[domain.ExportFormat]driven.ExportEncoder
	sink     driven.ExportSink
	ledger   driven.ExportLedger
	newID    func() string
	now      func() time.Time
	gate     *ExportGate

	mu         sync.Mutex
	settings   domain.ExportSettings
	job        domain.ExportJob
	resetTimer *time.Timer
	subs       map[int]func(domain.ExportProgress)
	nextSub    int
}

// NewExportService creates a new export service.
func NewExportService(backend driven.SearchBackend, planner *Planner, opts ExportOptions) *ExportService {
	encoders := make(map[domain.ExportFormat]driven.ExportEncoder, len(opts.Encoders))
	for _, enc := range opts.Encoders {
		encoders[enc.Format()] = enc
	}

	s := &ExportService{
		backend:  backend,
		planner:  planner,
		encoders: encoders,
		sink:     opts.Sink,
		ledger:   opts.Ledger,
		newID:    opts.NewID,
		now:      opts.Now,
		gate:     opts.Gate,
		settings: opts.Settings,
		job:      domain.ExportJob{State: domain.ExportIdle},
		subs:     make(map[int]func(domain.ExportProgress)),
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.gate == nil {
		s.gate = NewExportGate()
	}
	if s.newID == nil {
		s.newID = func() string {
			return "export-" + strconv.FormatInt(s.now().UnixNano(), 36)
		}
	}
	return s
}

// Configure replaces the export settings.
func (s *ExportService) Configure(settings domain.ExportSettings) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = settings
}

// Export runs an export to completion and returns the finished job.
func (s *ExportService) Export(
	ctx context.Context, intent domain.SearchIntent, format domain.ExportFormat,
) (*domain.ExportJob, error) {
	job, err := s.begin(intent, format)
	if err != nil {
		return nil, err
	}
	final, err := s.run(ctx, job)
	return &final, err
}

// Start begins an export in the background and returns its initial state.
func (s *ExportService) Start(
	ctx context.Context, intent domain.SearchIntent, format domain.ExportFormat,
) (*domain.ExportJob, error) {
	job, err := s.begin(intent, format)
	if err != nil {
		return nil, err
	}
	go func() {
		if _, err := s.run(context.WithoutCancel(ctx), job); err != nil {
			logger.Warn("Export %s failed: %v", job.ID, err)
		}
	}()
	return &job, nil
}

// Current returns the state of the running or most recent export.
func (s *ExportService) Current() domain.ExportJob {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.job
}

// Subscribe registers fn for progress events.
func (s *ExportService) Subscribe(fn func(domain.ExportProgress)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

// History returns finished exports, most recent first.
func (s *ExportService) History(ctx context.Context, limit int) ([]domain.ExportRecord, error) {
	if s.ledger == nil {
		return []domain.ExportRecord{}, nil
	}
	records, err := s.ledger.List(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list exports: %w", err)
	}
	return records, nil
}

// begin claims the export slot and publishes the initial state.
func (s *ExportService) begin(intent domain.SearchIntent, format domain.ExportFormat) (domain.ExportJob, error) {
	intent = intent.Normalized()
	if err := intent.Validate(); err != nil {
		return domain.ExportJob{}, err
	}
	if _, ok := s.encoders[format]; !ok {
		return domain.ExportJob{}, fmt.Errorf("%w: %q", domain.ErrUnsupportedFormat, format)
	}
	if s.backend == nil {
		return domain.ExportJob{}, domain.ErrNotConfigured
	}
	if s.sink == nil {
		return domain.ExportJob{}, fmt.Errorf("%w: no export destination", domain.ErrNotConfigured)
	}

	s.mu.Lock()
	if s.job.Running || !s.gate.acquire() {
		s.mu.Unlock()
		return domain.ExportJob{}, domain.ErrExportInProgress
	}
	if s.resetTimer != nil {
		s.resetTimer.Stop()
		s.resetTimer = nil
	}
	s.job = domain.ExportJob{
		ID:        s.newID(),
		Format:    format,
		Intent:    intent,
		State:     domain.ExportCounting,
		Running:   true,
		Progress:  progressStart,
		Message:   "Preparing export...",
		StartedAt: s.now(),
	}
	job := s.job
	s.mu.Unlock()

	logger.Section("Export")
	logger.Debug("Export %s started: format=%s query=%q", job.ID, format, intent.Query)
	s.publish(job)
	return job, nil
}

// run performs the export. Pages are fetched strictly one after another.
// A panic in a collaborator fails the export instead of leaving it running.
func (s *ExportService) run(ctx context.Context, job domain.ExportJob) (final domain.ExportJob, err error) {
	defer func() {
		if r := recover(); r != nil {
			final, err = s.fail(fmt.Errorf("unexpected failure: %v", r))
		}
	}()

	builder := s.planner.Builder()

	countReq, err := builder.BuildCount(job.Intent)
	if err != nil {
		return s.fail(err)
	}
	resp, err := s.backend.Search(ctx, countReq)
	if err != nil {
		return s.fail(fmt.Errorf("count results: %w", err))
	}
	var total int64
	if resp.Count != nil && *resp.Count > 0 {
		total = *resp.Count
	}

	batches := builder.BatchCount(total)
	s.update(func(j *domain.ExportJob) {
		j.TotalCount = total
		j.Progress = progressCounted
		j.Message = fmt.Sprintf("Found %d results", total)
	})
	logger.Debug("Export %s: %d results in %d batches", job.ID, total, batches)

	if total == 0 {
		return s.finish(domain.ExportEmpty, func(j *domain.ExportJob) {
			j.Progress = 0
			j.Message = "No results to export"
		}), nil
	}

	items := make([]domain.ScheduleItem, 0, min(total, maxPrealloc))
	for i := 0; i < batches; i++ {
		if err := ctx.Err(); err != nil {
			return s.fail(err)
		}

		s.update(func(j *domain.ExportJob) {
			j.State = domain.ExportFetching
			j.Progress = progressCounted + int(math.Round(float64(i)/float64(batches)*progressFetchSpan))
			j.Message = fmt.Sprintf("Fetching batch %d of %d...", i+1, batches)
		})

		req, err := builder.BuildBatch(job.Intent, i)
		if err != nil {
			return s.fail(err)
		}
		page, err := s.backend.Search(ctx, req)
		if err != nil {
			return s.fail(fmt.Errorf("fetch batch %d: %w", i+1, err))
		}
		if len(page.Documents) == 0 {
			logger.Warn("Export %s: batch %d was empty, stopping at %d of %d results", job.ID, i+1, len(items), total)
			break
		}
		for d := range page.Documents {
			items = append(items, page.Documents[d].Item)
		}

		fetched := int64(len(items))
		s.update(func(j *domain.ExportJob) { j.FetchedCount = fetched })
	}

	s.update(func(j *domain.ExportJob) {
		j.State = domain.ExportFinalizing
		j.Progress = progressFetched
		j.Message = fmt.Sprintf("Processing %d results...", len(items))
	})

	encoder := s.encoders[job.Format]
	var buf bytes.Buffer
	if err := encoder.Encode(&buf, items); err != nil {
		return s.fail(fmt.Errorf("encode %s: %w", job.Format, err))
	}

	filename := s.filename(job.Format)
	s.update(func(j *domain.ExportJob) {
		j.Progress = progressSerialized
		j.Filename = filename
		j.Message = fmt.Sprintf("Creating %s file...", formatLabel(job.Format))
	})

	location, err := s.sink.Deliver(ctx, domain.ExportArtifact{
		JobID:       job.ID,
		Filename:    filename,
		ContentType: encoder.ContentType(),
		Data:        buf.Bytes(),
	})
	if err != nil {
		return s.fail(fmt.Errorf("deliver %s: %w", filename, err))
	}

	count := len(items)
	return s.finish(domain.ExportSucceeded, func(j *domain.ExportJob) {
		j.Progress = progressDone
		j.Location = location
		j.Message = fmt.Sprintf("Successfully exported %d items to %s", count, formatLabel(job.Format))
	}), nil
}

// fail ends the running export with err.
func (s *ExportService) fail(err error) (domain.ExportJob, error) {
	job := s.finish(domain.ExportFailed, func(j *domain.ExportJob) {
		j.Progress = 0
		j.Err = err.Error()
		j.Message = "Error exporting results: " + err.Error()
	})
	return job, fmt.Errorf("export: %w", err)
}

// finish marks the export done, records it and schedules the reset.
func (s *ExportService) finish(outcome domain.ExportOutcome, fn func(*domain.ExportJob)) domain.ExportJob {
	s.mu.Lock()
	fn(&s.job)
	s.job.Outcome = outcome
	s.job.Running = false
	s.gate.release()
	s.job.FinishedAt = s.now()
	job := s.job
	delay := s.settings.ResetDelay
	if delay <= 0 {
		delay = domain.DefaultResetDelay
	}
	s.resetTimer = time.AfterFunc(delay, func() { s.reset(job.ID) })
	s.mu.Unlock()

	logger.Info("Export %s %s: %s", job.ID, outcome, job.Message)
	s.publish(job)

	if s.ledger != nil {
		if err := s.ledger.Record(context.Background(), job.Record()); err != nil {
			logger.Warn("Failed to record export %s: %v", job.ID, err)
		}
	}
	return job
}

// reset returns the export state to idle unless a newer export started.
func (s *ExportService) reset(id string) {
	s.mu.Lock()
	if s.job.ID != id || s.job.Running {
		s.mu.Unlock()
		return
	}
	s.job = domain.ExportJob{ID: id, State: domain.ExportIdle}
	s.resetTimer = nil
	job := s.job
	s.mu.Unlock()

	s.publish(job)
}

// update applies fn to the running job and publishes the result.
func (s *ExportService) update(fn func(*domain.ExportJob)) {
	s.mu.Lock()
	fn(&s.job)
	job := s.job
	s.mu.Unlock()

	s.publish(job)
}

// publish sends a progress event to every subscriber.
func (s *ExportService) publish(job domain.ExportJob) {
	event := domain.ExportProgress{
		JobID:    job.ID,
		State:    job.State,
		Progress: job.Progress,
		Message:  job.Message,
		Running:  job.Running,
	}

	s.mu.Lock()
	subs := make([]func(domain.ExportProgress), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(event)
	}
}

// filename returns prefix-YYYY-MM-DD.ext in the configured timezone.
func (s *ExportService) filename(format domain.ExportFormat) string {
	s.mu.Lock()
	settings := s.settings
	s.mu.Unlock()

	prefix := settings.FilenamePrefix
	if prefix == "" {
		prefix = domain.DefaultExportPrefix
	}
	now := s.now()
	if loc, err := time.LoadLocation(settings.Timezone); err == nil && settings.Timezone != "" {
		now = now.In(loc)
	}
	return fmt.Sprintf("%s-%s.%s", prefix, now.Format("2006-01-02"), format.Extension())
}

// formatLabel returns the display name of a format.
func formatLabel(f domain.ExportFormat) string {
	switch f {
	case domain.ExportCSV:
		return "CSV"
	case domain.ExportJSON:
		return "JSON"
	case domain.ExportXLSX:
		return "Excel"
	case domain.ExportYAML:
		return "YAML"
	default:
		return string(f)
	}
}
