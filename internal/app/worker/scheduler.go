package worker

import (
	"cf_tracker/internal/app/service"
	"cf_tracker/internal/common"
	"context"
	"errors"
	"log"
	"sync"

	"github.com/robfig/cron/v3"
)

// Scheduler runs the recurring fleet sync on the persisted cron schedule. It
// is the outermost boundary for the scheduled job: whatever SyncAll returns is
// logged here, never allowed to crash the process.
type Scheduler struct {
	syncService *service.SyncService

	mu      sync.Mutex
	cron    *cron.Cron
	entryID cron.EntryID
}

func NewScheduler(syncService *service.SyncService) *Scheduler {
	return &Scheduler{
		syncService: syncService,
		cron:        cron.New(),
	}
}

// Start schedules the fleet sync with the given spec and starts the cron loop.
func (s *Scheduler) Start(spec string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := s.cron.AddFunc(spec, s.runFleetSync)
	if err != nil {
		return common.Errorf("scheduling fleet sync with spec %q: %w", spec, err)
	}
	s.entryID = id
	s.cron.Start()
	log.Printf("INFO: Fleet sync scheduled with spec %q", spec)
	return nil
}

// Reschedule replaces the current cron entry with a new spec. The spec must
// have been validated by the caller; an invalid spec leaves the old entry
// running.
func (s *Scheduler) Reschedule(spec string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := s.cron.AddFunc(spec, s.runFleetSync)
	if err != nil {
		return common.Errorf("rescheduling fleet sync with spec %q: %w", spec, err)
	}
	s.cron.Remove(s.entryID)
	s.entryID = id
	log.Printf("INFO: Fleet sync rescheduled with spec %q", spec)
	return nil
}

// Stop halts the cron loop and waits for a running job to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Println("INFO: Scheduler stopped")
}

func (s *Scheduler) runFleetSync() {
	log.Println("INFO: Starting scheduled codeforces data sync...")
	err := s.syncService.SyncAll(context.Background())
	switch {
	case err == nil:
		log.Println("INFO: Scheduled sync completed successfully")
	case errors.Is(err, common.ErrSyncInProgress):
		log.Println("WARN: Scheduled sync skipped, another fleet sync is already running")
	default:
		log.Printf("ERROR: Scheduled sync failed: %v", err)
	}
}
