package scanning

import (
	"bytes"
	"context"
	"fmt"
	"net/netip"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/anstrom/portsweep/internal/errors"
	"github.com/anstrom/portsweep/internal/logging"
	"github.com/anstrom/portsweep/internal/scanning/mocks"
	"github.com/anstrom/portsweep/internal/targets"
)

// staticResolver returns a fixed set and records the tokens it was asked for.
type staticResolver struct {
	set    targets.Set
	tokens []string
	calls  int
}

func (r *staticResolver) Resolve(_ context.Context, tokens []string) targets.Set {
	r.calls++
	r.tokens = tokens
	return r.set
}

func loopbackSet(label string) targets.Set {
	return targets.Set{Targets: []targets.Target{{Addr: netip.MustParseAddr("127.0.0.1"), Label: label}}}
}

func TestScanConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     ScanConfig
		wantErr bool
	}{
		{name: "zero value", cfg: ScanConfig{}},
		{name: "overrides", cfg: ScanConfig{Timeout: time.Second, Concurrency: 10, Format: FormatJSON}},
		{name: "negative timeout", cfg: ScanConfig{Timeout: -time.Second}, wantErr: true},
		{name: "negative concurrency", cfg: ScanConfig{Concurrency: -1}, wantErr: true},
		{name: "unknown format", cfg: ScanConfig{Format: "xml"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsCode(err, errors.CodeValidation))
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestRunner_LoopbackScan(t *testing.T) {
	open := startListener(t)
	closed := closedPort(t)

	resolver := &staticResolver{set: loopbackSet("localhost")}
	runner := NewRunner(resolver)
	runner.SocketBudget = unlimitedBudget

	var out bytes.Buffer
	result, err := runner.Run(context.Background(), &ScanConfig{
		Targets: []string{"localhost"},
		Ports:   []string{fmt.Sprint(open), fmt.Sprint(closed)},
		Timeout: time.Second,
	}, &out)

	require.NoError(t, err)
	assert.Equal(t, 2, result.Summary.Total)
	assert.Equal(t, 1, result.Summary.Open)
	assert.True(t, result.Private)
	assert.Equal(t, 2, result.Params.Concurrency)
	assert.NotEmpty(t, result.ID)
	assert.Equal(t, fmt.Sprintf("localhost %d\n", open), out.String())
}

func TestRunner_DefaultTarget(t *testing.T) {
	resolver := &staticResolver{set: loopbackSet("127.0.0.1")}
	runner := NewRunner(resolver)

	var out bytes.Buffer
	result, err := runner.Run(context.Background(), &ScanConfig{Ports: []string{"top0"}}, &out)

	require.NoError(t, err)
	assert.Equal(t, []string{DefaultTarget}, resolver.tokens)
	assert.Zero(t, result.Summary.Total)
	assert.Empty(t, out.String())
}

func TestRunner_NoTargets(t *testing.T) {
	ctrl := gomock.NewController(t)
	observer := mocks.NewMockObserver(ctrl)
	observer.EXPECT().TargetsResolved(0, 2)
	observer.EXPECT().ScanCompleted(StatusNoTargets, gomock.Any())

	resolver := &staticResolver{set: targets.Set{Unresolved: []string{"nope.invalid", "also.invalid"}}}
	runner := NewRunner(resolver, func(r *Runner) { r.Observer = observer })

	var out bytes.Buffer
	result, err := runner.Run(context.Background(), &ScanConfig{Targets: []string{"nope.invalid", "also.invalid"}}, &out)

	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeNoTargets))
	assert.True(t, errors.IsFatal(err))
	assert.Equal(t, "No IPs could be resolved, aborting scan.", err.(*errors.ScanError).Message)
	assert.Equal(t, []string{"nope.invalid", "also.invalid"}, result.Unresolved)
	assert.Empty(t, out.String())
}

func TestRunner_InvalidPortsFailBeforeResolution(t *testing.T) {
	resolver := &staticResolver{set: loopbackSet("localhost")}
	runner := NewRunner(resolver)

	var out bytes.Buffer
	_, err := runner.Run(context.Background(), &ScanConfig{
		Ports:    []string{"22", "80-20"},
		PortsArg: "--ports",
	}, &out)

	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeValidation))
	assert.Contains(t, err.Error(), "--ports")
	assert.Zero(t, resolver.calls)
}

func TestRunner_Canceled(t *testing.T) {
	ctrl := gomock.NewController(t)
	dialer := mocks.NewMockDialer(ctrl)
	observer := mocks.NewMockObserver(ctrl)
	observer.EXPECT().TargetsResolved(1, 0)
	observer.EXPECT().ScanCompleted(StatusCanceled, gomock.Any())

	runner := NewRunner(&staticResolver{set: loopbackSet("localhost")}, func(r *Runner) {
		r.Dialer = dialer
		r.Observer = observer
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	result, err := runner.Run(ctx, &ScanConfig{Ports: []string{"1-100"}}, &out)

	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeCanceled))
	assert.Equal(t, 100, result.Summary.Total)
	assert.Zero(t, result.Summary.Open)
}

func TestRunner_JSONOutput(t *testing.T) {
	open := startListener(t)

	runner := NewRunner(&staticResolver{set: loopbackSet("127.0.0.1")})
	var out bytes.Buffer
	_, err := runner.Run(context.Background(), &ScanConfig{
		Ports:        []string{fmt.Sprint(open)},
		Format:       FormatJSON,
		ServiceNames: true,
	}, &out)

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out.String(), `{"label":"127.0.0.1","ip":"127.0.0.1","port":`))
}

func TestRunner_DescriptorMargin(t *testing.T) {
	tests := []struct {
		name     string
		margin   int
		expected int
	}{
		{name: "default margin", margin: 0, expected: 150 - FDMargin},
		{name: "explicit margin", margin: 20, expected: 130},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := NewRunner(&staticResolver{set: loopbackSet("127.0.0.1")}, func(r *Runner) {
				r.Dialer = instantDialer{}
				r.SocketBudget = func() int { return 150 }
			})

			var out bytes.Buffer
			result, err := runner.Run(context.Background(), &ScanConfig{
				Ports:       []string{"1-1000"},
				Concurrency: 1000,
				FDMargin:    tt.margin,
			}, &out)

			require.NoError(t, err)
			assert.Equal(t, tt.expected, result.Params.Concurrency)
			assert.Equal(t, 1000, result.Summary.Total)
			assert.Empty(t, out.String())
		})
	}
}

func TestRunner_OutputFailureLogged(t *testing.T) {
	open := startListener(t)

	var logs bytes.Buffer
	runner := NewRunner(&staticResolver{set: loopbackSet("localhost")}, func(r *Runner) {
		r.Logger = logging.NewWithWriter(logging.Config{Level: logging.LevelInfo, Format: logging.FormatText}, &logs)
		r.SocketBudget = unlimitedBudget
	})

	result, err := runner.Run(context.Background(), &ScanConfig{
		Targets: []string{"localhost"},
		Ports:   []string{fmt.Sprint(open)},
		Timeout: time.Second,
	}, &failingWriter{})

	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeScanFailed))
	assert.Equal(t, 1, result.Summary.Total)

	out := logs.String()
	assert.Contains(t, out, "Starting scan")
	assert.Contains(t, out, "Scan failed")
	assert.Contains(t, out, "target=localhost")
	assert.Contains(t, out, "status=failed")
}
