// Package pipeline encodes a sequence of arenas concurrently and writes the
// chunks to a single sink in submission order.
//
// A Pipeline owns a fixed pool of workers. Each submitted arena gets the next
// sequence number; workers encode arenas in any order and publish the chunk
// under that number, and a single drain goroutine writes chunks strictly in
// sequence order:
//
//	p, err := pipeline.New(ctx, enc, w, pipeline.WithWorkers(4))
//	if err != nil {
//	    return err
//	}
//	for _, a := range arenas {
//	    if err := p.Submit(ctx, a); err != nil {
//	        break
//	    }
//	}
//	stats, err := p.Close()
//
// The first failing arena stops the pipeline: the sink keeps every chunk
// before it, nothing after it is written, and arenas not yet started are
// dropped. Submitted arenas belong to the pipeline and must not be modified
// by the caller afterwards.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"runtime"
	"sync"

	"github.com/arloliu/geoarena/arena"
	"github.com/arloliu/geoarena/errs"
	"github.com/arloliu/geoarena/internal/options"
	"github.com/arloliu/geoarena/output"
	"golang.org/x/sync/errgroup"
)

// errStopRequested is the cancellation cause set by Stop.
var errStopRequested = errors.New("stop requested")

// ChunkError reports the failure of the arena with sequence number Seq.
type ChunkError struct {
	Seq int
	Err error
}

func (e *ChunkError) Error() string {
	return fmt.Sprintf("pipeline: chunk %d: %v", e.Seq, e.Err)
}

func (e *ChunkError) Unwrap() error {
	return e.Err
}

// Stats summarizes a pipeline run.
type Stats struct {
	Submitted int   // arenas accepted by Submit
	Emitted   int   // chunks written to the sink
	Bytes     int64 // bytes written to the sink, header and footer included
}

// Config holds pipeline settings.
type Config struct {
	workers    int
	queueDepth int
	logger     *slog.Logger
}

// Option configures a Pipeline.
type Option = options.Option[*Config]

// WithWorkers sets the number of encode workers. The default is runtime.GOMAXPROCS(0).
func WithWorkers(n int) Option {
	return options.New(func(c *Config) error {
		if n < 1 {
			return fmt.Errorf("%w: workers must be positive, got %d", errs.ErrInvalidOption, n)
		}
		c.workers = n

		return nil
	})
}

// WithQueueDepth bounds the number of submitted arenas waiting for a worker.
// The default is twice the worker count.
func WithQueueDepth(n int) Option {
	return options.New(func(c *Config) error {
		if n < 1 {
			return fmt.Errorf("%w: queue depth must be positive, got %d", errs.ErrInvalidOption, n)
		}
		c.queueDepth = n

		return nil
	})
}

// WithLogger sets the logger for lifecycle and failure messages.
func WithLogger(logger *slog.Logger) Option {
	return options.NoError(func(c *Config) {
		if logger != nil {
			c.logger = logger
		}
	})
}

type job struct {
	seq int
	a   *arena.Arena
}

// Pipeline is an ordered concurrent encoder. Submit and Close must be called
// from one goroutine at a time; Stop may be called from any goroutine.
type Pipeline struct {
	enc    output.Encoder
	sink   io.Writer
	logger *slog.Logger

	ctx    context.Context
	cancel context.CancelCauseFunc

	jobs     chan job
	inflight chan struct{} // one token per submitted arena not yet emitted or dropped
	slots    *resultSlots
	workers  errgroup.Group

	workersDone chan struct{}
	drainDone   chan struct{}

	submitMu sync.Mutex
	closed   bool
	next     int

	closeOnce sync.Once
	stats     Stats
	err       error // set by the drain before drainDone is closed
}

// New writes the encoder header to sink and starts the workers and the drain.
//
// Returns:
//   - error: ErrInvalidOption for bad options, or the header encode/write error
func New(ctx context.Context, enc output.Encoder, sink io.Writer, opts ...Option) (*Pipeline, error) {
	cfg := &Config{workers: runtime.GOMAXPROCS(0), logger: slog.Default()}
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}
	if cfg.queueDepth == 0 {
		cfg.queueDepth = 2 * cfg.workers
	}

	p := &Pipeline{
		enc:         enc,
		sink:        sink,
		logger:      cfg.logger.With("format", enc.Format()),
		jobs:        make(chan job, cfg.queueDepth),
		inflight:    make(chan struct{}, cfg.queueDepth+cfg.workers),
		slots:       newResultSlots(),
		workersDone: make(chan struct{}),
		drainDone:   make(chan struct{}),
	}

	header, err := enc.Header()
	if err != nil {
		return nil, fmt.Errorf("pipeline: header: %w", err)
	}
	if err := p.write(header); err != nil {
		return nil, fmt.Errorf("pipeline: header: %w", err)
	}

	p.ctx, p.cancel = context.WithCancelCause(ctx)
	for range cfg.workers {
		p.workers.Go(p.work)
	}
	go func() {
		_ = p.workers.Wait()
		close(p.workersDone)
	}()
	go p.drain()

	p.logger.Debug("pipeline started", "workers", cfg.workers, "queue_depth", cfg.queueDepth)

	return p, nil
}

// Submit hands a to the pipeline. It blocks while the pipeline holds its
// maximum number of unfinished arenas.
//
// Returns:
//   - error: ErrPipelineClosed after Close, ErrPipelineStopped (wrapping the
//     cause) once the pipeline has stopped, or ctx.Err()
func (p *Pipeline) Submit(ctx context.Context, a *arena.Arena) error {
	p.submitMu.Lock()
	defer p.submitMu.Unlock()

	if p.closed {
		return errs.ErrPipelineClosed
	}
	if p.ctx.Err() != nil {
		return p.stoppedError()
	}

	select {
	case p.inflight <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	case <-p.ctx.Done():
		return p.stoppedError()
	}

	select {
	case p.jobs <- job{seq: p.next, a: a}:
	case <-ctx.Done():
		<-p.inflight
		return ctx.Err()
	case <-p.ctx.Done():
		<-p.inflight
		return p.stoppedError()
	}
	p.next++

	return nil
}

// Stop halts the pipeline. Chunks already written stay written; no further
// chunk is emitted. Close must still be called to release the workers.
func (p *Pipeline) Stop() {
	p.cancel(errStopRequested)
}

// Close ends the input, waits for the drain and writes the encoder footer if
// every arena was emitted. It is safe to call more than once.
//
// Returns:
//   - Stats: the final counters
//   - error: the first failure in sequence order as *ChunkError, ErrPipelineStopped
//     after Stop or context cancellation, or a footer error
func (p *Pipeline) Close() (Stats, error) {
	p.closeOnce.Do(func() {
		p.submitMu.Lock()
		p.closed = true
		p.stats.Submitted = p.next
		close(p.jobs)
		p.submitMu.Unlock()

		<-p.drainDone

		if p.err == nil {
			p.err = p.writeFooter()
		}
		p.cancel(nil)
		<-p.workersDone

		if p.err != nil {
			p.logger.Warn("pipeline failed", "emitted", p.stats.Emitted, "submitted", p.stats.Submitted, "error", p.err)
		} else {
			p.logger.Debug("pipeline finished", "emitted", p.stats.Emitted, "bytes", p.stats.Bytes, "skipped", skipped(p.enc))
		}
	})

	return p.stats, p.err
}

func (p *Pipeline) work() error {
	for j := range p.jobs {
		if p.ctx.Err() != nil {
			continue // dropped
		}

		chunk, err := p.enc.Encode(j.a)
		p.slots.put(j.seq, result{chunk: chunk, err: err})
	}

	return nil
}

// drain writes chunks in sequence order until the input is exhausted, an
// arena fails or the pipeline is stopped.
func (p *Pipeline) drain() {
	defer close(p.drainDone)

	for seq := 0; ; seq++ {
		r, ok := p.slots.take(p.ctx, seq, p.workersDone)
		if !ok {
			if p.ctx.Err() != nil {
				p.err = p.stoppedError()
			}

			return
		}

		if r.err == nil {
			r.err = p.write(r.chunk)
		}
		if r.err != nil {
			p.err = &ChunkError{Seq: seq, Err: r.err}
			p.cancel(p.err)

			return
		}
		p.stats.Emitted++
		<-p.inflight
	}
}

func (p *Pipeline) writeFooter() error {
	footer, err := p.enc.Footer()
	if err != nil {
		return fmt.Errorf("pipeline: footer: %w", err)
	}
	if err := p.write(footer); err != nil {
		return fmt.Errorf("pipeline: footer: %w", err)
	}

	return nil
}

func (p *Pipeline) write(data []byte) error {
	if len(data) == 0 {
		return nil
	}

	n, err := p.sink.Write(data)
	p.stats.Bytes += int64(n)

	return err
}

func (p *Pipeline) stoppedError() error {
	return fmt.Errorf("%w: %w", errs.ErrPipelineStopped, context.Cause(p.ctx))
}

func skipped(enc output.Encoder) int64 {
	if sc, ok := enc.(output.SkipCounter); ok {
		return sc.Skipped()
	}

	return 0
}

// Run submits every arena of seq and closes the pipeline.
// Submission stops at the first Submit error; Close reports the cause.
func Run(ctx context.Context, enc output.Encoder, sink io.Writer, seq iter.Seq[*arena.Arena], opts ...Option) (Stats, error) {
	p, err := New(ctx, enc, sink, opts...)
	if err != nil {
		return Stats{}, err
	}

	for a := range seq {
		if err := p.Submit(ctx, a); err != nil {
			break
		}
	}

	return p.Close()
}
