// Package telemetry records per-tick engine stats to CSV for offline
// inspection. Disabled unless a directory is configured.
package telemetry

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/gocarina/gocsv"

	"zap-engine/internal/engine"
)

// TickRow is one CSV record.
type TickRow struct {
	Frame        uint64  `csv:"frame"`
	DurationUs   int64   `csv:"duration_us"`
	Entities     int     `csv:"entities"`
	Instances    int     `csv:"instances"`
	EffectsVerts int     `csv:"effects_vertices"`
	SDFInstances int     `csv:"sdf_instances"`
	VectorVerts  int     `csv:"vector_vertices"`
	LayerBatches int     `csv:"layer_batches"`
	Lights       int     `csv:"lights"`
	Sounds       int     `csv:"sounds"`
	Events       int     `csv:"events"`
	Particles    int     `csv:"particles"`
	Truncated    bool    `csv:"truncated"`
}

// Recorder buffers tick rows and flushes them to ticks.csv periodically.
// Returns nil from New when dir is empty (recording disabled); a nil
// recorder is safe to call.
type Recorder struct {
	mu       sync.Mutex
	file     *os.File
	rows     []TickRow
	interval int
	wrote    bool
}

// New creates a recorder writing into dir.
func New(dir string, flushInterval int) (*Recorder, error) {
	if dir == "" {
		return nil, nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("telemetry: creating output directory: %w", err)
	}
	f, err := os.Create(filepath.Join(dir, "ticks.csv"))
	if err != nil {
		return nil, fmt.Errorf("telemetry: creating ticks.csv: %w", err)
	}
	if flushInterval <= 0 {
		flushInterval = 600
	}
	return &Recorder{file: f, interval: flushInterval}, nil
}

// Record buffers one tick's stats.
func (r *Recorder) Record(s engine.TickStats) {
	if r == nil {
		return
	}
	r.mu.Lock()
	r.rows = append(r.rows, TickRow{
		Frame:        s.Frame,
		DurationUs:   s.Duration.Microseconds(),
		Entities:     s.Entities,
		Instances:    s.Instances,
		EffectsVerts: s.EffectsVerts,
		SDFInstances: s.SDFInstances,
		VectorVerts:  s.VectorVerts,
		LayerBatches: s.LayerBatches,
		Lights:       s.Lights,
		Sounds:       s.Sounds,
		Events:       s.Events,
		Particles:    s.Particles,
		Truncated:    s.Truncated,
	})
	flush := len(r.rows) >= r.interval
	r.mu.Unlock()
	if flush {
		r.Flush()
	}
}

// Flush appends buffered rows to the file.
func (r *Recorder) Flush() error {
	if r == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.rows) == 0 {
		return nil
	}
	var err error
	if !r.wrote {
		err = gocsv.MarshalFile(&r.rows, r.file)
		r.wrote = true
	} else {
		err = gocsv.MarshalWithoutHeaders(&r.rows, r.file)
	}
	r.rows = r.rows[:0]
	if err != nil {
		return fmt.Errorf("telemetry: flush: %w", err)
	}
	return nil
}

// Close flushes and closes the file.
func (r *Recorder) Close() error {
	if r == nil {
		return nil
	}
	if err := r.Flush(); err != nil {
		return err
	}
	return r.file.Close()
}
