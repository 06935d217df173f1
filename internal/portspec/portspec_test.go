package portspec

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anstrom/portsweep/internal/errors"
	"github.com/anstrom/portsweep/internal/ports"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		token   string
		want    Value
		wantErr bool
	}{
		{name: "single port", token: "22", want: One(22)},
		{name: "max port", token: "65535", want: One(65535)},
		{name: "surrounding whitespace", token: " 443 ", want: One(443)},
		{name: "range", token: "20-22", want: Range(20, 22)},
		{name: "degenerate range", token: "80-80", want: One(80)},
		{name: "full range", token: "1-65535", want: Range(1, 65535)},
		{name: "top", token: "top100", want: Top(100)},
		{name: "top zero", token: "top0", want: Top(0)},
		{name: "reversed range", token: "80-20", wantErr: true},
		{name: "port zero", token: "0", wantErr: true},
		{name: "range from zero", token: "0-10", wantErr: true},
		{name: "out of range", token: "65536", wantErr: true},
		{name: "negative top", token: "top-5", wantErr: true},
		{name: "top without count", token: "top", wantErr: true},
		{name: "open range", token: "100-", wantErr: true},
		{name: "name", token: "http", wantErr: true},
		{name: "empty", token: "", wantErr: true},
		{name: "signed", token: "+22", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.token)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, stderrors.Is(err, ErrInvalidPort))
				assert.True(t, errors.IsCode(err, errors.CodeValidation))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValueValues(t *testing.T) {
	assert.Equal(t, []uint16{8080}, One(8080).Values())
	assert.Equal(t, []uint16{20, 21, 22}, Range(20, 22).Values())
	assert.Equal(t, ports.Top(10), Top(10).Values())

	tail := Range(65533, 65535).Values()
	assert.Equal(t, []uint16{65533, 65534, 65535}, tail)
}

func TestValueString(t *testing.T) {
	assert.Equal(t, "22", One(22).String())
	assert.Equal(t, "20-22", Range(20, 22).String())
	assert.Equal(t, "top5", Top(5).String())
}

func TestExpand(t *testing.T) {
	t.Run("dedup keeps first occurrence", func(t *testing.T) {
		got, err := Expand("--ports", []string{"22", "20-22", "80"})
		require.NoError(t, err)
		assert.Equal(t, []uint16{22, 20, 21, 80}, got)
	})

	t.Run("top overlapping explicit ports", func(t *testing.T) {
		got, err := Expand("--ports", []string{"443", "top3"})
		require.NoError(t, err)
		assert.Equal(t, []uint16{443, 80, 23}, got)
	})

	t.Run("no tokens", func(t *testing.T) {
		got, err := Expand("--ports", nil)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("first failure aborts", func(t *testing.T) {
		got, err := Expand("--ports", []string{"22", "80-20", "bogus"})
		require.Error(t, err)
		assert.Nil(t, got)

		var cfgErr *errors.ConfigError
		require.True(t, stderrors.As(err, &cfgErr))
		assert.Equal(t, "--ports", cfgErr.Field)
		assert.Equal(t, "80-20", cfgErr.Value)
	})

	t.Run("full range has every port once", func(t *testing.T) {
		got, err := Expand("--ports", []string{"1-65535", "top1000"})
		require.NoError(t, err)
		assert.Len(t, got, 65535)
	})
}
