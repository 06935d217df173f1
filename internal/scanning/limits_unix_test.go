//go:build linux || darwin

package scanning

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/sys/unix"
)

func TestSocketBudgetMatchesRlimit(t *testing.T) {
	var rl unix.Rlimit
	if err := unix.Getrlimit(unix.RLIMIT_NOFILE, &rl); err != nil {
		t.Skipf("getrlimit unavailable: %v", err)
	}

	budget := SocketBudget()
	assert.Positive(t, budget)
	if rl.Cur < 1<<31 {
		assert.Equal(t, int(rl.Cur), budget)
	}
}
