package scanning

import (
	"time"

	"github.com/anstrom/portsweep/internal/ports"
)

const (
	// PrivateTimeout is the default connect timeout for private targets.
	PrivateTimeout = 1 * time.Second
	// PublicTimeout is the default connect timeout when any target is public.
	PublicTimeout = 3 * time.Second
	// PrivateConcurrency is the default in-flight limit for private targets.
	PrivateConcurrency = 65535
	// PublicConcurrency is the default in-flight limit when any target is public.
	PublicConcurrency = 4096
	// DefaultTopPorts is the number of top ports scanned for public targets.
	DefaultTopPorts = 1000
)

// Overrides are user-supplied parameters. Zero values mean "derive".
type Overrides struct {
	Timeout     time.Duration
	Concurrency int
}

// DeriveParams picks timeout and concurrency from the overrides and the target
// classification, then caps concurrency at the job count.
func DeriveParams(o Overrides, private bool, jobCount int) Params {
	p := Params{Timeout: PublicTimeout, Concurrency: PublicConcurrency}
	if private {
		p = Params{Timeout: PrivateTimeout, Concurrency: PrivateConcurrency}
	}
	if o.Timeout > 0 {
		p.Timeout = o.Timeout
	}
	if o.Concurrency > 0 {
		p.Concurrency = o.Concurrency
	}
	p.Concurrency = max(min(p.Concurrency, jobCount), 1)
	return p
}

// DefaultPorts returns every port for private targets and the top
// DefaultTopPorts for public ones.
func DefaultPorts(private bool) []uint16 {
	if private {
		return ports.All()
	}
	return ports.Top(DefaultTopPorts)
}
