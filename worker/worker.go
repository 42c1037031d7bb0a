package worker

import (
	"context"

	"github.com/robfig/cron/v3"
)

// Worker long running job
type Worker interface {
	Run(ctx context.Context) error
}

// OnWork job callback
type OnWork func() error

// BaseJob cron driven job, ticks until the context is cancelled
type BaseJob struct {
	Cron      *cron.Cron
	IsRunning bool
	OnWork    OnWork
}

// Run start the cron and block until ctx is done
func (job *BaseJob) Run(ctx context.Context) error {
	job.Cron.Start()
	defer job.Cron.Stop()

	<-ctx.Done()
	return ctx.Err()
}

// Work one tick; overlapping ticks are skipped
func (job *BaseJob) Work() {
	if job.IsRunning {
		return
	}

	job.IsRunning = true
	defer func() {
		job.IsRunning = false
	}()

	_ = job.OnWork()
}
