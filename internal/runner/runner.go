// Package runner drives an exercise session headlessly at a fixed frame rate.
package runner

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/verte-zerg/rehab/internal/engine"
	"github.com/verte-zerg/rehab/internal/model"
)

// DefaultFPS is the frame rate used when none is configured.
const DefaultFPS = 60

// Runner ticks a session with a fixed step until it ends.
type Runner struct {
	step     time.Duration
	limiter  *rate.Limiter
	sink     engine.RenderSink
	recorder engine.Recorder
	log      *zap.Logger
}

// Option configures a Runner.
type Option func(*Runner)

// WithSink sets the render sink receiving a snapshot every frame.
func WithSink(sink engine.RenderSink) Option {
	return func(r *Runner) { r.sink = sink }
}

// WithRecorder sets the recorder the final result is handed to.
func WithRecorder(rec engine.Recorder) Option {
	return func(r *Runner) { r.recorder = rec }
}

// WithLogger sets the runner logger.
func WithLogger(log *zap.Logger) Option {
	return func(r *Runner) {
		if log != nil {
			r.log = log
		}
	}
}

// Unpaced runs frames back to back instead of in real time.
func Unpaced() Option {
	return func(r *Runner) { r.limiter = rate.NewLimiter(rate.Inf, 1) }
}

// New returns a runner stepping fps frames per simulated second.
func New(fps int, opts ...Option) *Runner {
	if fps <= 0 {
		fps = DefaultFPS
	}
	step := time.Second / time.Duration(fps)
	r := &Runner{
		step:    step,
		limiter: rate.NewLimiter(rate.Every(step), 1),
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Step returns the simulated duration of one frame.
func (r *Runner) Step() time.Duration {
	return r.step
}

// Run ticks s with input from src until it ends or ctx is cancelled.
// Cancellation ends the session as a quit. The result is returned even when
// recording fails; the recording error is returned alongside it.
func (r *Runner) Run(ctx context.Context, s *engine.Session, src engine.InputSource) (model.ExerciseResult, error) {
	var frame uint64
	for s.State() != engine.StateEnded {
		if err := r.limiter.Wait(ctx); err != nil {
			r.log.Info("run cancelled", zap.Error(err))
			// Quit is a valid terminal transition.
			s.Tick(0, engine.Input{Quit: true})
			break
		}
		frame++
		s.Tick(r.step, src.Sample(frame))
		if r.sink != nil {
			r.sink.Render(s.Snapshot())
		}
	}

	res, err := s.Finalize()
	if err != nil {
		return model.ExerciseResult{}, err
	}
	r.log.Info("session finished",
		zap.String("session", res.SessionID),
		zap.Int("score", res.Score),
		zap.Int("hits", res.Hits),
		zap.Bool("success", res.Success),
		zap.Bool("completed", res.Completed))

	if r.recorder == nil || s.Patient().Anonymous() {
		return res, nil
	}
	// The session context may already be cancelled; the attempt still
	// deserves to be stored.
	recCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := r.recorder.Record(recCtx, s.Patient().ID, res.Level, res); err != nil {
		r.log.Error("record result", zap.Error(err))
		return res, fmt.Errorf("record result: %w", err)
	}
	return res, nil
}
