package liquid

import (
	"context"
	"time"
)

// Runner steps a Simulation at a fixed rate until its context is cancelled.
type Runner struct {
	Sim     *Simulation
	FPS     int
	OnFrame func()
}

// Run blocks until ctx is done, then releases the simulation buffers.
func (r *Runner) Run(ctx context.Context) {
	fps := r.FPS
	if fps <= 0 {
		fps = 30
	}
	interval := time.Second / time.Duration(fps)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	defer r.Sim.release()

	dt := interval.Seconds()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Sim.Step(dt)
			if r.OnFrame != nil {
				r.OnFrame()
			}
		}
	}
}
