package scanning

import (
	"context"
	"io"
	"net"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/anstrom/portsweep/internal/errors"
	"github.com/anstrom/portsweep/internal/logging"
	"github.com/anstrom/portsweep/internal/portspec"
	"github.com/anstrom/portsweep/internal/targets"
)

// DefaultTarget is scanned when no address is given.
const DefaultTarget = "127.0.0.1"

// Resolver turns address tokens into targets.
type Resolver interface {
	Resolve(ctx context.Context, tokens []string) targets.Set
}

// Runner wires resolution, port expansion, the engine and the reporter.
type Runner struct {
	Resolver     Resolver
	Dialer       Dialer
	Observer     Observer
	Logger       *logging.Logger
	SocketBudget func() int
}

// NewRunner creates a Runner with a system dialer and no observer.
func NewRunner(resolver Resolver, opts ...func(*Runner)) *Runner {
	r := &Runner{
		Resolver: resolver,
		Dialer:   &net.Dialer{},
		Observer: nopObserver{},
		Logger:   logging.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes one scan and writes open ports to out. It fails before any
// connection is attempted when the port tokens are invalid or no target
// resolves.
func (r *Runner) Run(ctx context.Context, cfg *ScanConfig, out io.Writer) (*ScanResult, error) {
	start := time.Now()
	observer := r.Observer
	if observer == nil {
		observer = nopObserver{}
	}

	if err := cfg.Validate(); err != nil {
		observer.ScanCompleted(StatusFailed, time.Since(start))
		return nil, err
	}

	result := &ScanResult{ID: uuid.NewString()}
	logger := r.Logger.WithScanID(result.ID).WithComponent("scanner")

	var portList []uint16
	if len(cfg.Ports) > 0 {
		arg := cfg.PortsArg
		if arg == "" {
			arg = "ports"
		}
		expanded, err := portspec.Expand(arg, cfg.Ports)
		if err != nil {
			observer.ScanCompleted(StatusFailed, time.Since(start))
			return nil, err
		}
		portList = expanded
	}

	tokens := cfg.Targets
	if len(tokens) == 0 {
		tokens = []string{DefaultTarget}
	}
	set := r.Resolver.Resolve(ctx, tokens)
	observer.TargetsResolved(set.Len(), len(set.Unresolved))
	result.Unresolved = set.Unresolved

	if set.Empty() {
		observer.ScanCompleted(StatusNoTargets, time.Since(start))
		return result, errors.ErrNoTargets(set.Unresolved)
	}

	result.Private = set.IsPrivate()
	if portList == nil {
		portList = DefaultPorts(result.Private)
	}

	matrix := NewMatrix(set.Targets, portList)
	params := DeriveParams(Overrides{Timeout: cfg.Timeout, Concurrency: cfg.Concurrency},
		result.Private, matrix.Len())

	margin := cfg.FDMargin
	if margin == 0 {
		margin = FDMargin
	}
	engine := NewEngine(r.Dialer, params,
		WithObserver(observer),
		WithEngineLogger(logger),
		WithFDMargin(margin),
		WithSocketBudget(r.SocketBudget))

	result.Targets = set.Len()
	result.Ports = len(portList)
	result.Params = engine.Params()

	targetList := strings.Join(tokens, ",")
	logger.InfoScan("Starting scan", targetList,
		"targets", result.Targets,
		"unresolved", len(set.Unresolved),
		"ports", result.Ports,
		"jobs", matrix.Len(),
		"private", result.Private,
		"timeout", result.Params.Timeout,
		"concurrency", result.Params.Concurrency)

	labelWidth, portWidth := matrix.Widths()
	reporter := NewReporter(out, ReportOptions{
		Format:       cfg.Format,
		ServiceNames: cfg.ServiceNames,
		LabelWidth:   labelWidth,
		PortWidth:    portWidth,
	})

	summary, err := reporter.Consume(engine.Run(ctx, matrix.Jobs()), matrix.Len())
	result.Summary = summary

	status := StatusCompleted
	switch {
	case err != nil:
		status = StatusFailed
	case ctx.Err() != nil:
		status = StatusCanceled
		err = errors.ErrScanCanceled(ctx.Err())
	}
	observer.ScanCompleted(status, time.Since(start))

	if status == StatusFailed {
		logger.ErrorScan("Scan failed", targetList, err, "jobs", summary.Total)
	}
	logger.Info("Scan finished",
		"status", status,
		"jobs", summary.Total,
		"open", summary.Open,
		"peak_in_flight", engine.PeakInFlight(),
		"duration", summary.Duration)

	if err != nil {
		return result, err
	}
	return result, nil
}
