package trainer

import "time"

// Window accumulates timing stats across multiple mini-batches.
type Window struct {
	examples int
	compute  time.Duration
	steps    int
	lastCost float64
}

// Record adds a new measurement to the window.
func (w *Window) Record(batchSize int, computeTime time.Duration) {
	w.examples += batchSize
	w.compute += computeTime
	w.steps++
}

// RecordCost stores the most recent mini-batch cost.
func (w *Window) RecordCost(cost float64) {
	w.lastCost = cost
}

// Snapshot returns aggregated metrics and resets the window.
func (w *Window) Snapshot() Snapshot {
	snap := Snapshot{Steps: w.steps, LastCost: w.lastCost}
	if w.compute > 0 {
		snap.ExamplesPerSec = float64(w.examples) / w.compute.Seconds()
	}
	if w.steps > 0 {
		snap.AvgComputeMS = (w.compute.Seconds() * 1000) / float64(w.steps)
	}

	w.examples = 0
	w.compute = 0
	w.steps = 0
	w.lastCost = 0
	return snap
}

// Snapshot represents loggable metrics.
type Snapshot struct {
	Steps          int
	ExamplesPerSec float64
	AvgComputeMS   float64
	LastCost       float64 // Mean cost of the latest logged mini-batch
}
