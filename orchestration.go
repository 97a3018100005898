package orchestration

import (
	"context"
	"time"

	"github.com/juju/errors"
	log "github.com/sirupsen/logrus"

	"github.com/ghantakiran/axion-stock-sub010/engine"
	"github.com/ghantakiran/axion-stock-sub010/lineage"
	"github.com/ghantakiran/axion-stock-sub010/monitor"
	"github.com/ghantakiran/axion-stock-sub010/pipeline"
	"github.com/ghantakiran/axion-stock-sub010/scheduler"
	"github.com/ghantakiran/axion-stock-sub010/store/mem"
	"github.com/ghantakiran/axion-stock-sub010/types"
)

/**
 * Orchestrator bundles the subsystem's components wired against a
 * shared in-memory store. Each component stays independently usable;
 * this is assembly, not coupling — the lineage graph in particular is
 * populated by the caller, never derived from execution.
 */
type Orchestrator struct {
	Engine    *engine.Engine
	Monitor   *monitor.Monitor
	Scheduler *scheduler.Scheduler
	Lineage   *lineage.Graph
}

func New(opts ...types.EngineOption) *Orchestrator {
	options := types.NewEngineOptions()
	for _, opt := range opts {
		opt(options)
	}

	return &Orchestrator{
		Engine:    engine.New(mem.NewMemStore(), options),
		Monitor:   monitor.New(),
		Scheduler: scheduler.New(),
		Lineage:   lineage.NewGraph(),
	}
}

// Execute runs the pipeline synchronously and folds the completed run
// into the monitor's metrics.
func (o *Orchestrator) Execute(ctx context.Context, p *pipeline.Pipeline) (*types.Run, error) {
	run, err := o.Engine.Execute(ctx, p)
	if err != nil {
		return nil, errors.Trace(err)
	}
	if err := o.Monitor.RecordRun(p.ID, run); err != nil {
		return run, errors.Trace(err)
	}
	return run, nil
}

/**
 * RunDue performs one iteration of the scheduler driver loop: execute
 * every due pipeline, then acknowledge each trigger so its schedule
 * advances. One misbehaving schedule does not block the rest; errors
 * are accumulated and returned together.
 */
func (o *Orchestrator) RunDue(ctx context.Context, now time.Time, lookup func(pipelineID string) (*pipeline.Pipeline, bool)) error {
	var retErr error

	for _, due := range o.Scheduler.DueSchedules(now) {
		p, exists := lookup(due.PipelineID)
		if !exists {
			retErr = errors.Wrapf(retErr, errors.NotFoundf("pipeline: %s", due.PipelineID), "schedule %s", due.ID)
			continue
		}

		run, err := o.Execute(ctx, p)
		if err != nil {
			retErr = errors.Wrapf(retErr, err, "schedule %s", due.ID)
			continue
		}
		log.Debugf("schedule %s: triggered run %s (%s)", due.ID, run.ID, run.Status)

		if err := o.Scheduler.UpdateNextRun(due.ID, now); err != nil {
			retErr = errors.Wrapf(retErr, err, "schedule %s", due.ID)
		}
	}
	return retErr
}
