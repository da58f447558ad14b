package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog/log"
)

// Scheduler runs periodic maintenance such as sweeping expired entries from
// the in-memory token stores.
type Scheduler struct {
	scheduler gocron.Scheduler
	jobs      map[string]gocron.Job
	mu        sync.Mutex
}

func New() (*Scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("[scheduler.New] %w", err)
	}
	return &Scheduler{
		scheduler: s,
		jobs:      make(map[string]gocron.Job),
	}, nil
}

// AddSweep registers fn to run every interval. Overlapping runs are rescheduled.
func (s *Scheduler) AddSweep(name string, interval time.Duration, fn func(ctx context.Context)) error {
	job, err := s.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			start := time.Now()
			fn(context.Background())
			log.Debug().Str("job", name).Dur("duration", time.Since(start)).Msg("sweep finished")
		}),
		gocron.WithName(name),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("[Scheduler.AddSweep] %s: %w", name, err)
	}

	s.mu.Lock()
	s.jobs[name] = job
	s.mu.Unlock()
	return nil
}

// Jobs returns the registered job names.
func (s *Scheduler) Jobs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.jobs))
	for name := range s.jobs {
		names = append(names, name)
	}
	return names
}

func (s *Scheduler) Start() {
	log.Info().Int("jobs", len(s.Jobs())).Msg("starting background scheduler")
	s.scheduler.Start()
}

func (s *Scheduler) Stop() error {
	log.Info().Msg("stopping background scheduler")
	return s.scheduler.Shutdown()
}
