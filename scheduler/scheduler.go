package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"krisha_scrooper/config"
	"krisha_scrooper/logging"
	"krisha_scrooper/models"
	"krisha_scrooper/storage"
)

const commandPollInterval = 2 * time.Second

// Runner is the part of the orchestrator driven by the scheduler.
type Runner interface {
	RunAll(ctx context.Context) error
	HandleCommand(ctx context.Context, cmd models.CommandType, params *models.CommandParams) error
}

// CommandQueue is the persisted control-command queue.
type CommandQueue interface {
	GetPendingCommands() ([]models.Command, error)
	MarkCommandProcessed(id int64) error
}

type Scheduler struct {
	cfg          config.SchedulerConfig
	runner       Runner
	queue        CommandQueue
	pollInterval time.Duration
	cron         *cron.Cron
	ticker       *time.Ticker
	stopCh       chan struct{}
	stopOnce     sync.Once
	wg           sync.WaitGroup
}

func New(cfg config.SchedulerConfig, runner Runner, queue CommandQueue) *Scheduler {
	return &Scheduler{
		cfg:          cfg,
		runner:       runner,
		queue:        queue,
		pollInterval: commandPollInterval,
		cron:         cron.New(),
		stopCh:       make(chan struct{}),
	}
}

// Start launches the command poller and the configured schedule. A cron
// expression takes precedence over an interval.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.cfg.Cron != "" {
		logging.Infof("starting scheduler with cron: %s", s.cfg.Cron)
		_, err := s.cron.AddFunc(s.cfg.Cron, func() { s.runScheduled(ctx) })
		if err != nil {
			return fmt.Errorf("invalid cron expression: %w", err)
		}
		s.cron.Start()
	} else if s.cfg.Interval > 0 {
		logging.Infof("starting scheduler with interval: %s", s.cfg.Interval)
		s.ticker = time.NewTicker(s.cfg.Interval)
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			for {
				select {
				case <-s.ticker.C:
					s.runScheduled(ctx)
				case <-s.stopCh:
					return
				case <-ctx.Done():
					return
				}
			}
		}()
	} else {
		logging.Infof("no schedule configured, daemon will only respond to commands")
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.pollCommands(ctx)
	}()
	return nil
}

func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		<-s.cron.Stop().Done()
		if s.ticker != nil {
			s.ticker.Stop()
		}
		close(s.stopCh)
	})
	s.wg.Wait()
}

func (s *Scheduler) runScheduled(ctx context.Context) {
	if err := s.runner.RunAll(ctx); err != nil {
		logging.Errorf("scheduled run: %v", err)
	}
}

func (s *Scheduler) pollCommands(ctx context.Context) {
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.processCommands(ctx)
		case <-s.stopCh:
			return
		case <-ctx.Done():
			return
		}
	}
}

// processCommands drains the queue once. Commands are marked processed even
// when they fail so a bad command is not retried forever.
func (s *Scheduler) processCommands(ctx context.Context) {
	cmds, err := s.queue.GetPendingCommands()
	if err != nil {
		logging.Errorf("get commands: %v", err)
		return
	}

	for _, cmd := range cmds {
		logging.Infof("processing command %d: %s", cmd.ID, cmd.Command)
		params, err := storage.ParseCommandParams(&cmd)
		if err == nil {
			err = s.runner.HandleCommand(ctx, cmd.Command, params)
		}
		if err != nil {
			logging.Errorf("command %d (%s): %v", cmd.ID, cmd.Command, err)
		}
		if err := s.queue.MarkCommandProcessed(cmd.ID); err != nil {
			logging.Errorf("mark command %d processed: %v", cmd.ID, err)
		}
	}
}
