package services

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/appcanvas/builder/pkg/logutils"
)

// SessionPurger deletes expired sign-in sessions
type SessionPurger interface {
	PurgeExpiredSessions(ctx context.Context) (int64, error)
}

// SchedulerService runs periodic maintenance jobs
type SchedulerService struct {
	cron    *cron.Cron
	purger  SessionPurger
	spec    string
	metrics *Metrics
	mu      sync.Mutex
	running bool
	stopped bool // Prevents a second Stop from waiting on a stopped cron
}

// NewSchedulerService creates a scheduler that purges sessions on spec
// (standard cron syntax or descriptors such as "@every 1h").
func NewSchedulerService(purger SessionPurger, spec string, metrics *Metrics) *SchedulerService {
	return &SchedulerService{
		cron:    cron.New(cron.WithLocation(time.Local)),
		purger:  purger,
		spec:    spec,
		metrics: metrics,
	}
}

// Start registers the jobs and starts the cron loop. It returns an error
// when the schedule does not parse.
func (s *SchedulerService) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running || s.stopped {
		return nil
	}

	if s.purger != nil && s.spec != "" {
		if _, err := s.cron.AddFunc(s.spec, s.purgeSessions); err != nil {
			return err
		}
	}
	s.cron.Start()
	s.running = true
	logutils.Log.Infof("⏰ Scheduler started (session cleanup: %q)", s.spec)
	return nil
}

// Stop waits for running jobs and stops the scheduler
func (s *SchedulerService) Stop() {
	s.mu.Lock()
	if !s.running || s.stopped {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.stopped = true
	s.mu.Unlock()

	<-s.cron.Stop().Done()
	logutils.Log.Info("⏰ Scheduler stopped")
}

func (s *SchedulerService) purgeSessions() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	n, err := s.purger.PurgeExpiredSessions(ctx)
	if err != nil {
		logutils.Log.Warnf("⚠️ Session cleanup failed: %v", err)
		return
	}
	if s.metrics != nil {
		s.metrics.SessionsPurged.Add(float64(n))
	}
	if n > 0 {
		logutils.Log.Infof("🧹 Purged %d expired sessions", n)
	}
}
