package scanning

import (
	"net/netip"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anstrom/portsweep/internal/ports"
	"github.com/anstrom/portsweep/internal/targets"
)

func TestMatrix(t *testing.T) {
	tgts := []targets.Target{
		{Addr: netip.MustParseAddr("10.0.0.1"), Label: "10.0.0.1"},
		{Addr: netip.MustParseAddr("93.184.216.34"), Label: "example.com"},
	}
	m := NewMatrix(tgts, []uint16{22, 8080, 443})

	t.Run("length is the product", func(t *testing.T) {
		assert.Equal(t, 6, m.Len())
	})

	t.Run("target major port minor", func(t *testing.T) {
		var got []string
		for job := range m.Jobs() {
			got = append(got, job.Label+" "+job.Addr.String())
		}
		assert.Equal(t, []string{
			"10.0.0.1 10.0.0.1:22",
			"10.0.0.1 10.0.0.1:8080",
			"10.0.0.1 10.0.0.1:443",
			"example.com 93.184.216.34:22",
			"example.com 93.184.216.34:8080",
			"example.com 93.184.216.34:443",
		}, got)
	})

	t.Run("early stop", func(t *testing.T) {
		n := 0
		for range m.Jobs() {
			n++
			if n == 2 {
				break
			}
		}
		assert.Equal(t, 2, n)
	})

	t.Run("widths", func(t *testing.T) {
		label, port := m.Widths()
		assert.Equal(t, len("example.com"), label)
		assert.Equal(t, 4, port)
	})
}

func TestMatrix_Empty(t *testing.T) {
	m := NewMatrix(nil, []uint16{80})
	assert.Zero(t, m.Len())
	for range m.Jobs() {
		t.Fatal("empty matrix yielded a job")
	}
	label, port := m.Widths()
	assert.Zero(t, label)
	assert.Equal(t, 2, port)
}

func TestDeriveParams(t *testing.T) {
	tests := []struct {
		name     string
		override Overrides
		private  bool
		jobs     int
		want     Params
	}{
		{
			name:    "private defaults",
			private: true,
			jobs:    1 << 20,
			want:    Params{Timeout: time.Second, Concurrency: 65535},
		},
		{
			name: "public defaults",
			jobs: 1 << 20,
			want: Params{Timeout: 3 * time.Second, Concurrency: 4096},
		},
		{
			name:     "overrides win",
			override: Overrides{Timeout: 250 * time.Millisecond, Concurrency: 10},
			private:  true,
			jobs:     1000,
			want:     Params{Timeout: 250 * time.Millisecond, Concurrency: 10},
		},
		{
			name: "capped at job count",
			jobs: 3,
			want: Params{Timeout: 3 * time.Second, Concurrency: 3},
		},
		{
			name:    "no jobs keeps one slot",
			private: true,
			jobs:    0,
			want:    Params{Timeout: time.Second, Concurrency: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveParams(tt.override, tt.private, tt.jobs))
		})
	}
}

func TestDefaultPorts(t *testing.T) {
	private := DefaultPorts(true)
	require.Len(t, private, 65535)
	assert.Equal(t, uint16(1), private[0])

	public := DefaultPorts(false)
	assert.Equal(t, ports.Top(DefaultTopPorts), public)
}
