//go:build !linux && !darwin

package scanning

import "math"

// SocketBudget reports no descriptor limit on platforms without RLIMIT_NOFILE.
func SocketBudget() int {
	return math.MaxInt
}
