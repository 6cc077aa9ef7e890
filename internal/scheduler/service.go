package scheduler

import (
	"context"
	"errors"
	"sync"

	"github.com/pixelflowlabs/trendreel/internal/analysis"
	"github.com/pixelflowlabs/trendreel/internal/config"
	"github.com/pixelflowlabs/trendreel/internal/models"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Runner is the part of the analysis service the scheduler drives
type Runner interface {
	Run(ctx context.Context, domain string) (*models.TrendSnapshot, error)
}

// Service handles scheduling of trend analysis runs
type Service struct {
	config *config.Config
	runner Runner
	cron   *cron.Cron
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup // initial run
}

// NewService creates a new scheduler service
func NewService(cfg *config.Config, runner Runner) *Service {
	ctx, cancel := context.WithCancel(context.Background())
	return &Service{
		config: cfg,
		runner: runner,
		cron:   cron.New(cron.WithSeconds()),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start begins the scheduled analysis
func (s *Service) Start() error {
	_, err := s.cron.AddFunc(s.config.AnalysisSchedule, func() {
		logrus.Info("Starting scheduled trend analysis")
		s.run()
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	logrus.Infof("Scheduler started with schedule %q", s.config.AnalysisSchedule)

	if s.config.RunOnStart {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			logrus.Info("Running initial trend analysis")
			s.run()
		}()
	}

	return nil
}

func (s *Service) run() {
	if _, err := s.runner.Run(s.ctx, s.config.Domain); err != nil {
		if errors.Is(err, analysis.ErrRunInProgress) {
			logrus.Warn("Previous trend analysis still running, skipping")
			return
		}
		logrus.Errorf("Scheduled trend analysis failed: %v", err)
	}
}

// Stop cancels in-flight runs and waits for running jobs, the initial run
// included, to finish
func (s *Service) Stop() {
	if s.cron != nil {
		s.cancel()
		<-s.cron.Stop().Done()
		s.wg.Wait()
		logrus.Info("Scheduler stopped")
	}
}
