package cron

import (
	"Atheneum/internal/job"
	log "log/slog"

	"github.com/robfig/cron/v3"
)

type Manager struct {
	engine       *cron.Cron
	viewFlushJob *job.ViewFlushJob
}

func NewCronManager(viewFlushJob *job.ViewFlushJob) *Manager {
	return &Manager{
		engine:       cron.New(cron.WithSeconds()),
		viewFlushJob: viewFlushJob,
	}
}

// RegisterJobs 注册定时任务
func (s *Manager) RegisterJobs() error {
	// 冲账任务需要容忍重叠执行，不加互斥
	if _, err := s.engine.AddJob("@every 1m", s.viewFlushJob); err != nil {
		return err
	}
	return nil
}

func (s *Manager) Start() {
	log.Info("Cron engine started")
	s.engine.Start()
}

func (s *Manager) Stop() {
	log.Info("Cron engine stopped")
	s.engine.Stop()
}
