package scanning

import (
	"iter"
	"net/netip"
	"strconv"

	"github.com/anstrom/portsweep/internal/targets"
)

// Matrix is the cross product of targets and ports. Jobs are produced lazily,
// target-major and port-minor.
type Matrix struct {
	targets []targets.Target
	ports   []uint16
}

// NewMatrix creates a matrix over the given targets and deduplicated ports.
func NewMatrix(targets []targets.Target, ports []uint16) *Matrix {
	return &Matrix{targets: targets, ports: ports}
}

// Len returns the number of jobs the matrix yields.
func (m *Matrix) Len() int {
	return len(m.targets) * len(m.ports)
}

// Jobs yields every (target, port) pair exactly once.
func (m *Matrix) Jobs() iter.Seq[Job] {
	return func(yield func(Job) bool) {
		for _, t := range m.targets {
			for _, p := range m.ports {
				if !yield(Job{Addr: netip.AddrPortFrom(t.Addr, p), Label: t.Label}) {
					return
				}
			}
		}
	}
}

// Widths returns the longest label length and the longest port length, used
// to align reporter columns.
func (m *Matrix) Widths() (label, port int) {
	for _, t := range m.targets {
		label = max(label, len(t.Label))
	}
	for _, p := range m.ports {
		port = max(port, len(strconv.Itoa(int(p))))
	}
	return label, port
}
