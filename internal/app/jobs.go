package app

import (
	"context"
	"sort"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/toyorbit/toyorbit/internal/apperr"
	"go.uber.org/zap"
)

// Job names
const (
	JobOrphanSweep    = "orphan_sweep"
	JobAuditRetention = "audit_retention"
)

type job struct {
	spec  string
	entry cron.EntryID
	run   func()
}

// JobInfo describes a scheduled job
type JobInfo struct {
	Name    string    `json:"name"`
	Spec    string    `json:"spec"`
	NextRun time.Time `json:"nextRun"`
	PrevRun time.Time `json:"prevRun"`
}

var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

const jobTimeout = 5 * time.Minute

func (a *Application) initJob() {
	loc, err := time.LoadLocation(a.appConfig.System.Location)
	if err != nil {
		loc = time.UTC
	}
	a.sched = cron.New(cron.WithLocation(loc), cron.WithParser(cronParser))

	a.jobs = map[string]*job{}

	cfg := a.appConfig.Jobs
	a.addJob(JobOrphanSweep, cfg.OrphanSweep, a.SchedSweepOrphanItems)
	if cfg.AuditRetainDays > 0 {
		a.addJob(JobAuditRetention, cfg.AuditRetention, a.SchedClearAuditLogs)
	}

	a.sched.Start()
}

func (a *Application) addJob(name, spec string, run func()) {
	if spec == "" {
		return
	}
	id, err := a.sched.AddFunc(spec, run)
	if err != nil {
		zap.S().Errorf("init job %s error %s", name, err.Error())
		return
	}
	a.jobs[name] = &job{spec: spec, entry: id, run: run}
}

// Jobs lists the registered jobs by name
func (a *Application) Jobs() []JobInfo {
	out := make([]JobInfo, 0, len(a.jobs))
	for name, j := range a.jobs {
		info := JobInfo{Name: name, Spec: j.spec}
		if a.sched != nil {
			e := a.sched.Entry(j.entry)
			info.NextRun, info.PrevRun = e.Next, e.Prev
		}
		out = append(out, info)
	}
	sort.Slice(out, func(i, k int) bool { return out[i].Name < out[k].Name })
	return out
}

// RunJobNow runs a registered job synchronously
func (a *Application) RunJobNow(name string) error {
	j, ok := a.jobs[name]
	if !ok {
		return apperr.NotFound("Job %s not found", name)
	}
	zap.S().Infof("job %s triggered manually", name)
	j.run()
	return nil
}

// SchedSweepOrphanItems removes order items whose order no longer exists
func (a *Application) SchedSweepOrphanItems() {
	defer func() {
		if err := recover(); err != nil {
			zap.S().Error(err)
		}
	}()
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	n, err := a.store.OrderItems().DeleteOrphans(ctx)
	if err != nil {
		zap.L().Error("orphan item sweep failed", zap.Error(err))
		return
	}
	if n > 0 {
		zap.L().Warn("removed orphan order items", zap.Int64("count", n))
	}
}

// SchedClearAuditLogs drops audit entries past the retention window
func (a *Application) SchedClearAuditLogs() {
	defer func() {
		if err := recover(); err != nil {
			zap.S().Error(err)
		}
	}()
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	n, err := a.store.AuditLogs().DeleteOlderThan(ctx, a.appConfig.Jobs.AuditRetainDays)
	if err != nil {
		zap.L().Error("audit retention failed", zap.Error(err))
		return
	}
	zap.L().Info("audit retention done", zap.Int64("deleted", n))
}
