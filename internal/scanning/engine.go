package scanning

import (
	"context"
	stderrors "errors"
	"iter"
	"net"
	"os"
	"sync"
	"syscall"
	"time"

	"github.com/anstrom/portsweep/internal/errors"
	"github.com/anstrom/portsweep/internal/logging"
	"github.com/anstrom/portsweep/internal/ports"
)

//go:generate mockgen -source=engine.go -destination=mocks/mock_engine.go -package=mocks

// FDMargin is the default number of descriptors left free below the
// open-file limit for the process's own files, logs and DNS sockets.
const FDMargin = 100

// Dialer opens TCP connections. *net.Dialer satisfies it.
type Dialer interface {
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
}

// Observer is notified about scan progress. Implementations must be safe for
// concurrent use.
type Observer interface {
	AttemptStarted()
	AttemptFinished(outcome string, elapsed time.Duration)
	TargetsResolved(resolved, unresolved int)
	ScanCompleted(status string, elapsed time.Duration)
}

type nopObserver struct{}

func (nopObserver) AttemptStarted()                       {}
func (nopObserver) AttemptFinished(string, time.Duration) {}
func (nopObserver) TargetsResolved(int, int)              {}
func (nopObserver) ScanCompleted(string, time.Duration)   {}

// Engine executes jobs with a bounded number of in-flight connection attempts.
type Engine struct {
	dialer       Dialer
	params       Params
	observer     Observer
	logger       *logging.Logger
	fdMargin     int
	socketBudget func() int
	admission    *Admission
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithObserver sets the observer notified about each attempt.
func WithObserver(o Observer) EngineOption {
	return func(e *Engine) {
		if o != nil {
			e.observer = o
		}
	}
}

// WithEngineLogger sets the engine logger.
func WithEngineLogger(l *logging.Logger) EngineOption {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithFDMargin overrides FDMargin.
func WithFDMargin(margin int) EngineOption {
	return func(e *Engine) {
		if margin >= 0 {
			e.fdMargin = margin
		}
	}
}

// WithSocketBudget replaces the descriptor-limit probe.
func WithSocketBudget(fn func() int) EngineOption {
	return func(e *Engine) {
		if fn != nil {
			e.socketBudget = fn
		}
	}
}

// NewEngine creates an Engine. The requested concurrency is clamped to the
// socket budget before any job is admitted.
func NewEngine(dialer Dialer, params Params, opts ...EngineOption) *Engine {
	e := &Engine{
		dialer:       dialer,
		params:       params,
		observer:     nopObserver{},
		logger:       logging.Default(),
		fdMargin:     FDMargin,
		socketBudget: SocketBudget,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.params.Concurrency = e.EffectiveConcurrency(params.Concurrency)
	e.admission = NewAdmission(e.params.Concurrency)
	return e
}

// Params returns the parameters the engine runs with, after clamping.
func (e *Engine) Params() Params {
	return e.params
}

// PeakInFlight returns the highest number of simultaneous attempts so far.
func (e *Engine) PeakInFlight() int {
	return e.admission.Peak()
}

// EffectiveConcurrency clamps requested to the process descriptor budget minus
// the configured margin. The result is at least 1.
func (e *Engine) EffectiveConcurrency(requested int) int {
	requested = max(requested, 1)
	budget := e.socketBudget() - e.fdMargin
	if budget < 1 {
		budget = 1
	}
	if requested > budget {
		e.logger.Debug("Concurrency clamped to descriptor budget",
			"component", "engine", "requested", requested, "effective", budget)
		return budget
	}
	return requested
}

// Run starts executing jobs and returns the result stream. The channel is
// closed after the last result. Cancelling ctx stops admission; jobs not yet
// attempted and attempts abandoned mid-flight are reported as closed.
func (e *Engine) Run(ctx context.Context, jobs iter.Seq[Job]) <-chan Result {
	results := make(chan Result, e.params.Concurrency)

	go func() {
		defer close(results)

		var wg sync.WaitGroup
		for job := range jobs {
			if err := e.admission.Acquire(ctx); err != nil {
				results <- closedResult(job)
				continue
			}
			wg.Add(1)
			go func() {
				defer wg.Done()
				defer e.admission.Release()
				results <- e.attempt(ctx, job)
			}()
		}
		wg.Wait()
	}()

	return results
}

func (e *Engine) attempt(ctx context.Context, job Job) Result {
	res := closedResult(job)

	e.observer.AttemptStarted()
	start := time.Now()

	dialCtx, cancel := context.WithTimeout(ctx, e.params.Timeout)
	conn, err := e.dialer.DialContext(dialCtx, "tcp", job.Addr.String())
	cancel()

	outcome := OutcomeOpen
	if err != nil {
		outcome = classify(err)
		if outcome == OutcomeResource {
			e.logger.Debug("Socket unavailable, reporting port as closed",
				"component", "engine", "error_code", errors.CodeResourceLimit,
				"target", job.Label, "port", job.Addr.Port(), "error", err)
		}
	} else {
		_ = conn.Close()
		res.Open = true
		res.Service = ports.ServiceName(res.Port)
	}

	e.observer.AttemptFinished(string(outcome), time.Since(start))
	return res
}

func closedResult(job Job) Result {
	return Result{Addr: job.Addr.Addr(), Label: job.Label, Port: job.Addr.Port()}
}

// classify maps a dial error onto an Outcome.
func classify(err error) Outcome {
	switch {
	case stderrors.Is(err, syscall.ECONNREFUSED):
		return OutcomeRefused
	case stderrors.Is(err, syscall.EMFILE), stderrors.Is(err, syscall.ENFILE),
		stderrors.Is(err, syscall.ENOBUFS):
		return OutcomeResource
	case stderrors.Is(err, context.DeadlineExceeded), stderrors.Is(err, os.ErrDeadlineExceeded):
		return OutcomeTimeout
	}
	var netErr net.Error
	if stderrors.As(err, &netErr) && netErr.Timeout() {
		return OutcomeTimeout
	}
	return OutcomeError
}
