package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/projectsync/projectsync/internal/domain/repository"
	"github.com/projectsync/projectsync/internal/domain/service"
	"github.com/projectsync/projectsync/pkg/logger"
)

// SweeperService removes stored artifacts no repository references.
// Deletes and updates leave the previous file behind on purpose; the
// sweeper reaps them on a cron schedule.
type SweeperService struct {
	repoRepo repository.RepoRepository
	storage  service.StorageService
	schedule string
	cron     *cron.Cron
	entryID  cron.EntryID
	running  bool
	mu       sync.Mutex
	log      *logger.Logger
}

// NewSweeperService creates a new sweeper with a cron schedule
// expression such as "0 3 * * *"
func NewSweeperService(
	repoRepo repository.RepoRepository,
	storage service.StorageService,
	schedule string,
) *SweeperService {
	if schedule == "" {
		schedule = "0 3 * * *"
	}

	return &SweeperService{
		repoRepo: repoRepo,
		storage:  storage,
		schedule: schedule,
		cron:     cron.New(),
		log:      logger.Get().WithFields(logger.Component("sweeper")),
	}
}

// Start registers the sweep job and starts the scheduler
func (s *SweeperService) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		s.log.Warn("Sweeper already running")
		return nil
	}

	entryID, err := s.cron.AddFunc(s.schedule, s.sweep)
	if err != nil {
		return fmt.Errorf("invalid sweeper schedule %q: %w", s.schedule, err)
	}
	s.entryID = entryID

	s.cron.Start()
	s.running = true

	s.log.Info("Sweeper started",
		logger.String("schedule", s.schedule),
	)
	return nil
}

// Stop stops the scheduler and waits for a running sweep to finish
func (s *SweeperService) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}

	s.log.Info("Stopping sweeper")
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.running = false

	s.log.Info("Sweeper stopped")
}

// IsRunning returns whether the scheduler is active
func (s *SweeperService) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *SweeperService) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	removed, err := s.Sweep(ctx)
	if err != nil {
		s.log.Error("Sweep failed",
			logger.Error(err),
		)
		return
	}
	s.log.Info("Sweep completed",
		logger.Int("removed", removed),
	)
}

// Sweep deletes every stored artifact that no repository record
// references and returns the number of files removed
func (s *SweeperService) Sweep(ctx context.Context) (int, error) {
	stored, err := s.storage.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list stored artifacts: %w", err)
	}

	referenced, err := s.repoRepo.ListFileNames(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list referenced file names: %w", err)
	}

	live := make(map[string]struct{}, len(referenced))
	for _, name := range referenced {
		live[name] = struct{}{}
	}

	removed := 0
	for _, name := range stored {
		if _, ok := live[name]; ok {
			continue
		}
		if err := s.storage.Delete(ctx, name); err != nil {
			s.log.Warn("Failed to remove orphaned artifact",
				logger.FileName(name),
				logger.Error(err),
			)
			continue
		}
		s.log.Debug("Removed orphaned artifact",
			logger.FileName(name),
		)
		removed++
	}

	return removed, nil
}
