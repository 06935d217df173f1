//go:build linux || darwin

package scanning

import (
	"math"

	"golang.org/x/sys/unix"
)

// SocketBudget returns the soft RLIMIT_NOFILE of the process, or math.MaxInt
// when the limit is unlimited or cannot be read.
func SocketBudget() int {
	var rl unix.Rlimit
	if err := unix.Getrlimit(unix.RLIMIT_NOFILE, &rl); err != nil {
		return math.MaxInt
	}
	if rl.Cur > uint64(math.MaxInt) {
		return math.MaxInt
	}
	return int(rl.Cur)
}
