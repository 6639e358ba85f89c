package engine

import (
	"context"
	"fmt"
	"image"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/ivlev/kenburns/internal/camera"
	"github.com/ivlev/kenburns/internal/config"
	"github.com/ivlev/kenburns/internal/renderer"
	"github.com/ivlev/kenburns/internal/system"
	"github.com/ivlev/kenburns/internal/video"
)

// State tracks a sequence through its single render.
type State int

const (
	StateUnvalidated State = iota
	StateRendering
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateUnvalidated:
		return "unvalidated"
	case StateRendering:
		return "rendering"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Sequence renders one camera move over one canvas into a sink. A
// sequence is single-use: Render validates, streams every frame in
// index order, and leaves the sequence done or failed.
type Sequence struct {
	canvas *renderer.Canvas
	cfg    *config.Render
	log    logrus.FieldLogger

	mu    sync.Mutex
	state State
}

func NewSequence(canvas *renderer.Canvas, cfg *config.Render, log logrus.FieldLogger) *Sequence {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Sequence{canvas: canvas, cfg: cfg, log: log}
}

func (s *Sequence) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Sequence) setState(st State) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}

// FrameCount is the number of frames Render will deliver.
func (s *Sequence) FrameCount() int {
	return s.cfg.FrameCount()
}

// PreviewRects validates the configuration and returns n viewports
// evenly spread over the move, endpoints included. It never renders
// and never changes sequence state.
func (s *Sequence) PreviewRects(n int) ([]camera.Rect, error) {
	if n <= 0 {
		return nil, fmt.Errorf("preview count must be positive, got %d", n)
	}
	if err := s.cfg.Validate(s.canvas.Width(), s.canvas.Height()); err != nil {
		return nil, err
	}
	schedule, err := s.schedule()
	if err != nil {
		return nil, err
	}
	return schedule.PreviewRects(n), nil
}

// Render validates the configuration, then streams every frame of the
// move into sink in index order. Nothing is written to the sink until
// validation has passed. On failure the sink is aborted when it
// supports that, and the first error is returned.
func (s *Sequence) Render(ctx context.Context, sink video.Sink) error {
	if st := s.State(); st != StateUnvalidated {
		return fmt.Errorf("sequence already rendered (state %s)", st)
	}
	if err := s.cfg.Validate(s.canvas.Width(), s.canvas.Height()); err != nil {
		s.setState(StateFailed)
		return err
	}
	if s.cfg.Strategy != config.StrategyGrid {
		s.log.Warnf("sampling strategy %q is kept for compatibility; %q is recommended", s.cfg.Strategy, config.StrategyGrid)
	}

	schedule, err := s.schedule()
	if err != nil {
		s.setState(StateFailed)
		return err
	}
	sampler, err := renderer.NewSampler(s.cfg.Strategy)
	if err != nil {
		s.setState(StateFailed)
		return err
	}

	workers := s.cfg.Workers
	if workers <= 0 {
		workers = system.Workers(s.cfg.Width, s.cfg.Height)
	}
	if workers > schedule.FrameCount {
		workers = schedule.FrameCount
	}

	s.setState(StateRendering)
	start := time.Now()
	s.log.WithFields(logrus.Fields{
		"frames":   schedule.FrameCount,
		"size":     fmt.Sprintf("%dx%d", s.cfg.Width, s.cfg.Height),
		"strategy": string(s.cfg.Strategy),
		"workers":  workers,
	}).Info("rendering sequence")

	if err := sink.Open(s.cfg.Width, s.cfg.Height, s.cfg.FrameRate); err != nil {
		s.setState(StateFailed)
		return fmt.Errorf("open output: %w", err)
	}

	if workers <= 1 {
		err = s.renderSequential(ctx, schedule, sampler, sink)
	} else {
		err = s.renderConcurrent(ctx, schedule, sampler, sink, workers)
	}
	if err != nil {
		s.abort(sink)
		s.setState(StateFailed)
		return err
	}

	if err := sink.Close(); err != nil {
		s.setState(StateFailed)
		return fmt.Errorf("finalize output: %w", err)
	}

	s.setState(StateDone)
	s.log.WithField("elapsed", time.Since(start).Round(time.Millisecond)).Info("sequence complete")
	return nil
}

func (s *Sequence) schedule() (camera.Schedule, error) {
	warp, err := s.cfg.ResolveWarp()
	if err != nil {
		return camera.Schedule{}, err
	}
	return camera.Schedule{
		Path:       camera.Path{Start: s.cfg.Start, End: s.cfg.End, Warp: warp},
		FrameCount: s.cfg.FrameCount(),
	}, nil
}

func (s *Sequence) abort(sink video.Sink) {
	if a, ok := sink.(video.Aborter); ok {
		if err := a.Abort(); err != nil {
			s.log.Warnf("sink abort failed: %v", err)
		}
	}
}

func (s *Sequence) renderSequential(ctx context.Context, schedule camera.Schedule, sampler renderer.Sampler, sink video.Sink) error {
	src := s.newFrameSource()
	frame := system.GetFrame(s.cfg.Width, s.cfg.Height)
	defer system.PutFrame(frame)

	for i := 0; i < schedule.FrameCount; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		rect := schedule.RectAt(i)
		if err := sampler.Sample(src.resolve(rect), rect, frame, src.baseScale); err != nil {
			return fmt.Errorf("frame %d: %w", i, err)
		}
		if err := sink.WriteFrame(frame); err != nil {
			return fmt.Errorf("write frame %d: %w", i, err)
		}
		s.logProgress(i+1, schedule.FrameCount)
	}
	return nil
}

// logProgress emits a line roughly every tenth of the sequence.
func (s *Sequence) logProgress(delivered, total int) {
	step := total / 10
	if step == 0 || delivered == total {
		return
	}
	if delivered%step == 0 {
		s.log.Infof("rendered %d/%d frames", delivered, total)
	}
}

type frameJob struct {
	index int
	rect  camera.Rect
	src   *renderer.Canvas
}

type renderedFrame struct {
	index int
	frame *image.RGBA
}

func (s *Sequence) renderConcurrent(ctx context.Context, schedule camera.Schedule, sampler renderer.Sampler, sink video.Sink, workers int) error {
	g, ctx := errgroup.WithContext(ctx)

	jobs := make(chan frameJob)
	results := make(chan renderedFrame, workers)

	// The dispatcher owns the prefilter cache: every viewport is
	// resolved to a concrete canvas here, in frame order, so a cache
	// replacement never touches a canvas already handed to a worker.
	g.Go(func() error {
		defer close(jobs)
		src := s.newFrameSource()
		for i := 0; i < schedule.FrameCount; i++ {
			rect := schedule.RectAt(i)
			job := frameJob{index: i, rect: rect, src: src.resolve(rect)}
			select {
			case jobs <- job:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})

	baseScale := renderer.BaseScale(s.canvas.Width(), s.canvas.Height(), s.cfg.Width, s.cfg.Height)
	var sampling sync.WaitGroup
	for w := 0; w < workers; w++ {
		sampling.Add(1)
		g.Go(func() error {
			defer sampling.Done()
			for job := range jobs {
				frame := system.GetFrame(s.cfg.Width, s.cfg.Height)
				if err := sampler.Sample(job.src, job.rect, frame, baseScale); err != nil {
					system.PutFrame(frame)
					return fmt.Errorf("frame %d: %w", job.index, err)
				}
				select {
				case results <- renderedFrame{index: job.index, frame: frame}:
				case <-ctx.Done():
					system.PutFrame(frame)
					return ctx.Err()
				}
			}
			return nil
		})
	}
	go func() {
		sampling.Wait()
		close(results)
	}()

	// Single writer delivers frames in index order; out-of-order
	// arrivals wait in a buffer bounded by the worker count.
	g.Go(func() error {
		next := 0
		pending := make(map[int]*image.RGBA, workers)
		defer func() {
			for _, frame := range pending {
				system.PutFrame(frame)
			}
		}()
		for res := range results {
			pending[res.index] = res.frame
			for {
				frame, ok := pending[next]
				if !ok {
					break
				}
				if err := sink.WriteFrame(frame); err != nil {
					return fmt.Errorf("write frame %d: %w", next, err)
				}
				system.PutFrame(frame)
				delete(pending, next)
				next++
				s.logProgress(next, schedule.FrameCount)
			}
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		// Workers are gone; recycle anything still queued.
		for res := range results {
			system.PutFrame(res.frame)
		}
		return err
	}
	return nil
}

// frameSource resolves the canvas a frame samples from. When the
// prefilter is active the cache holds a single blurred canvas; callers
// must resolve frames from one goroutine, in order.
type frameSource struct {
	canvas         *renderer.Canvas
	prefilter      *renderer.Prefilter
	frameW, frameH int
	baseScale      float64
}

func (s *Sequence) newFrameSource() *frameSource {
	fs := &frameSource{
		canvas:    s.canvas,
		frameW:    s.cfg.Width,
		frameH:    s.cfg.Height,
		baseScale: renderer.BaseScale(s.canvas.Width(), s.canvas.Height(), s.cfg.Width, s.cfg.Height),
	}
	if s.cfg.Antialias {
		fs.prefilter = renderer.NewPrefilter(s.canvas, s.cfg.FilterKernelSize)
	}
	return fs
}

func (f *frameSource) resolve(rect camera.Rect) *renderer.Canvas {
	if f.prefilter == nil {
		return f.canvas
	}
	return f.prefilter.Canvas(renderer.SampleSpacing(rect, f.frameW, f.frameH, f.baseScale))
}
