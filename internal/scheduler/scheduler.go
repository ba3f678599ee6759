package scheduler

import (
	"fmt"
	"sync"
	"time"

	"github.com/omriShneor/project_casa/internal/importer"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// ListingImporter re-reads the listing catalog
type ListingImporter interface {
	ImportListingsFile(path string) (*importer.Result, error)
}

// Status is the outcome of the latest scheduled import
type Status struct {
	Schedule string           `json:"schedule"`
	File     string           `json:"file"`
	LastRun  *time.Time       `json:"last_run,omitempty"`
	Result   *importer.Result `json:"result,omitempty"`
	Error    string           `json:"error,omitempty"`
}

// Scheduler re-imports the listing catalog on a cron schedule
type Scheduler struct {
	importer ListingImporter
	file     string
	schedule string
	cron     *cron.Cron
	logger   *zap.Logger
	now      func() time.Time

	mu      sync.Mutex
	running bool
	status  Status
}

func New(imp ListingImporter, file, schedule string, loc *time.Location, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Scheduler{
		importer: imp,
		file:     file,
		schedule: schedule,
		cron:     cron.New(cron.WithLocation(loc)),
		logger:   logger,
		now:      time.Now,
		status:   Status{Schedule: schedule, File: file},
	}
}

func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, s.RunNow); err != nil {
		return fmt.Errorf("invalid cron expression: %w", err)
	}
	s.cron.Start()
	s.logger.Info("listing import scheduled", zap.String("cron", s.schedule), zap.String("file", s.file))
	return nil
}

// Stop halts the schedule and waits for a running import to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

// RunNow imports immediately. Overlapping runs are skipped.
func (s *Scheduler) RunNow() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		s.logger.Warn("listing import already running, skipping")
		return
	}
	s.running = true
	s.mu.Unlock()

	started := s.now()
	result, err := s.importer.ImportListingsFile(s.file)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = false
	s.status.LastRun = &started
	s.status.Result = result
	s.status.Error = ""
	if err != nil {
		s.status.Error = err.Error()
		s.logger.Error("scheduled listing import failed", zap.Error(err))
	}
}

func (s *Scheduler) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}
