package engine

import (
	"math"
	"time"
)

// DefaultWindowSize is the number of actor samples kept for velocity.
const DefaultWindowSize = 100

// Sample is one recorded actor position.
type Sample struct {
	Pos Vector2
	At  time.Duration
}

// Window is a fixed-capacity ring of samples. The oldest sample is
// overwritten once the ring is full.
type Window struct {
	data []Sample
	pos  int
	full bool
}

// NewWindow returns a ring holding at most size samples.
func NewWindow(size int) *Window {
	if size < 2 {
		size = 2
	}
	return &Window{data: make([]Sample, size)}
}

// Push appends s, evicting the oldest sample when full.
func (w *Window) Push(s Sample) {
	w.data[w.pos] = s
	w.pos++
	if w.pos == len(w.data) {
		w.pos = 0
		w.full = true
	}
}

// Len returns the number of stored samples.
func (w *Window) Len() int {
	if w.full {
		return len(w.data)
	}
	return w.pos
}

// Cap returns the ring capacity.
func (w *Window) Cap() int {
	return len(w.data)
}

// Slice returns the samples from oldest to newest.
func (w *Window) Slice() []Sample {
	if !w.full {
		out := make([]Sample, w.pos)
		copy(out, w.data[:w.pos])
		return out
	}
	out := make([]Sample, len(w.data))
	n := copy(out, w.data[w.pos:])
	copy(out[n:], w.data[:w.pos])
	return out
}

// Extent tracks the bounding box of every actor position in a session.
type Extent struct {
	MinX, MaxX float64
	MinY, MaxY float64
	seen       bool
}

// Add widens the box to include p.
func (e *Extent) Add(p Vector2) {
	if !e.seen {
		e.MinX, e.MaxX, e.MinY, e.MaxY = p.X, p.X, p.Y, p.Y
		e.seen = true
		return
	}
	e.MinX = math.Min(e.MinX, p.X)
	e.MaxX = math.Max(e.MaxX, p.X)
	e.MinY = math.Min(e.MinY, p.Y)
	e.MaxY = math.Max(e.MaxY, p.Y)
}

// Span returns the width and height of the box.
func (e Extent) Span() (float64, float64) {
	if !e.seen {
		return 0, 0
	}
	return e.MaxX - e.MinX, e.MaxY - e.MinY
}

// Range returns the larger of the two spans.
func (e Extent) Range() float64 {
	x, y := e.Span()
	return math.Max(x, y)
}

// MetricsSummary is a read-only view of the recorded metrics.
type MetricsSummary struct {
	Velocity      float64 // px/s over the window
	MeanSpeed     float64 // px/s over the session
	Range         float64
	RangeX        float64
	RangeY        float64
	AvgReaction   time.Duration
	ReactionCount int
	Consistency   float64
	PathLength    float64
	Samples       int
}

// MetricsRecorder derives clinical metrics from actor samples and hits.
type MetricsRecorder struct {
	window    *Window
	extent    Extent
	reactions []time.Duration
	lastHit   time.Duration
	hasHit    bool
	path      float64
	last      Sample
	first     Sample
	hasLast   bool
}

// NewMetricsRecorder returns a recorder with a sample window of size.
func NewMetricsRecorder(size int) *MetricsRecorder {
	return &MetricsRecorder{window: NewWindow(size)}
}

// Sample records the actor position at elapsed time at.
func (m *MetricsRecorder) Sample(pos Vector2, at time.Duration) {
	s := Sample{Pos: pos, At: at}
	m.window.Push(s)
	m.extent.Add(pos)
	if m.hasLast {
		m.path += pos.Dist(m.last.Pos)
	} else {
		m.first = s
	}
	m.last = s
	m.hasLast = true
}

// Contact records a hit. The interval since the previous hit becomes a
// reaction sample; the first hit only starts the clock.
func (m *MetricsRecorder) Contact(at time.Duration) {
	if m.hasHit {
		m.reactions = append(m.reactions, at-m.lastHit)
	}
	m.lastHit = at
	m.hasHit = true
}

// Velocity returns the mean speed across the window in px/s.
func (m *MetricsRecorder) Velocity() float64 {
	samples := m.window.Slice()
	if len(samples) < 2 {
		return 0
	}
	span := (samples[len(samples)-1].At - samples[0].At).Seconds()
	if span <= 0 {
		return 0
	}
	dist := 0.0
	for i := 1; i < len(samples); i++ {
		dist += samples[i].Pos.Dist(samples[i-1].Pos)
	}
	return dist / span
}

// MeanSpeed returns path length over the whole sampled time in px/s.
func (m *MetricsRecorder) MeanSpeed() float64 {
	if !m.hasLast {
		return 0
	}
	span := (m.last.At - m.first.At).Seconds()
	if span <= 0 {
		return 0
	}
	return m.path / span
}

// AvgReaction returns the mean inter-hit interval, 0 with no samples.
func (m *MetricsRecorder) AvgReaction() time.Duration {
	if len(m.reactions) == 0 {
		return 0
	}
	var total time.Duration
	for _, r := range m.reactions {
		total += r
	}
	return total / time.Duration(len(m.reactions))
}

// Consistency scores reaction regularity as 100 minus the coefficient of
// variation in percent, clamped to [0, 100]. Fewer than two samples give 100.
func (m *MetricsRecorder) Consistency() float64 {
	if len(m.reactions) < 2 {
		return 100
	}
	mean := 0.0
	for _, r := range m.reactions {
		mean += r.Seconds()
	}
	mean /= float64(len(m.reactions))
	if mean <= 0 {
		return 0
	}
	variance := 0.0
	for _, r := range m.reactions {
		d := r.Seconds() - mean
		variance += d * d
	}
	variance /= float64(len(m.reactions))
	return clamp(100-math.Sqrt(variance)/mean*100, 0, 100)
}

// PathLength returns the total distance the actor travelled.
func (m *MetricsRecorder) PathLength() float64 {
	return m.path
}

// Reactions returns a copy of the reaction samples.
func (m *MetricsRecorder) Reactions() []time.Duration {
	out := make([]time.Duration, len(m.reactions))
	copy(out, m.reactions)
	return out
}

// Summary returns the current aggregates.
func (m *MetricsRecorder) Summary() MetricsSummary {
	rx, ry := m.extent.Span()
	return MetricsSummary{
		Velocity:      m.Velocity(),
		MeanSpeed:     m.MeanSpeed(),
		Range:         m.extent.Range(),
		RangeX:        rx,
		RangeY:        ry,
		AvgReaction:   m.AvgReaction(),
		ReactionCount: len(m.reactions),
		Consistency:   m.Consistency(),
		PathLength:    m.path,
		Samples:       m.window.Len(),
	}
}
