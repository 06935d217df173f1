// Package portspec parses port specifications such as "22", "8000-8100" and
// "top100" and expands them into a deduplicated port list.
package portspec

import (
	stderrors "errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/anstrom/portsweep/internal/errors"
	"github.com/anstrom/portsweep/internal/ports"
)

// ErrInvalidPort is wrapped by every parse failure.
var ErrInvalidPort = stderrors.New("invalid port specification")

// Kind identifies the form of a port specification.
type Kind int

const (
	KindOne Kind = iota
	KindRange
	KindTop
)

// Value is a single parsed port specification.
type Value struct {
	Kind  Kind
	Start uint16
	End   uint16
	N     int
}

// One returns a single-port value.
func One(port uint16) Value { return Value{Kind: KindOne, Start: port, End: port} }

// Range returns an inclusive range value. Callers guarantee start < end.
func Range(start, end uint16) Value { return Value{Kind: KindRange, Start: start, End: end} }

// Top returns a value selecting the n most common ports.
func Top(n int) Value { return Value{Kind: KindTop, N: n} }

// Values expands v into concrete ports.
func (v Value) Values() []uint16 {
	switch v.Kind {
	case KindOne:
		return []uint16{v.Start}
	case KindRange:
		out := make([]uint16, 0, int(v.End)-int(v.Start)+1)
		for p := int(v.Start); p <= int(v.End); p++ {
			out = append(out, uint16(p))
		}
		return out
	case KindTop:
		return ports.Top(v.N)
	default:
		return nil
	}
}

func (v Value) String() string {
	switch v.Kind {
	case KindRange:
		return fmt.Sprintf("%d-%d", v.Start, v.End)
	case KindTop:
		return fmt.Sprintf("top%d", v.N)
	default:
		return strconv.Itoa(int(v.Start))
	}
}

// Parse parses one port token. Accepted forms, tried in order, are "<n>",
// "top<n>" and "<a>-<b>" with a <= b. Port 0 is rejected.
func Parse(token string) (Value, error) {
	s := strings.TrimSpace(token)

	if p, err := parsePort(s); err == nil {
		return One(p), nil
	}

	if rest, ok := strings.CutPrefix(s, "top"); ok {
		n, err := strconv.Atoi(rest)
		if err != nil || n < 0 || strings.HasPrefix(rest, "+") {
			return Value{}, parseError(token, "top count must be a non-negative integer")
		}
		return Top(n), nil
	}

	if lo, hi, ok := strings.Cut(s, "-"); ok {
		start, err := parsePort(lo)
		if err != nil {
			return Value{}, parseError(token, "range start is not a valid port")
		}
		end, err := parsePort(hi)
		if err != nil {
			return Value{}, parseError(token, "range end is not a valid port")
		}
		switch {
		case start == end:
			return One(start), nil
		case start < end:
			return Range(start, end), nil
		default:
			return Value{}, parseError(token, "range start is greater than range end")
		}
	}

	return Value{}, parseError(token, "expected <port>, <start>-<end> or top<n>")
}

// Expand parses every token and returns the union of their ports, keeping the
// first occurrence of each port. The first failing token aborts expansion and
// is reported against arg, the name of the option the tokens came from.
func Expand(arg string, tokens []string) ([]uint16, error) {
	var seen bitmap
	out := make([]uint16, 0, len(tokens))

	for _, token := range tokens {
		v, err := Parse(token)
		if err != nil {
			var cfgErr *errors.ConfigError
			if stderrors.As(err, &cfgErr) {
				cfgErr.Field = arg
			}
			return nil, err
		}
		for _, p := range v.Values() {
			if seen.testAndSet(p) {
				continue
			}
			out = append(out, p)
		}
	}

	return out, nil
}

func parsePort(s string) (uint16, error) {
	if s == "" || s[0] == '+' {
		return 0, ErrInvalidPort
	}
	n, err := strconv.ParseUint(s, 10, 16)
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, ErrInvalidPort
	}
	return uint16(n), nil
}

func parseError(token, reason string) *errors.ConfigError {
	err := errors.NewConfigFieldError(errors.CodeValidation, reason, "port", token)
	err.Cause = ErrInvalidPort
	return err
}

// bitmap tracks which of the 65536 ports have been emitted.
type bitmap [1 << 10]uint64

func (b *bitmap) testAndSet(p uint16) bool {
	word, bit := p>>6, uint64(1)<<(p&63)
	if b[word]&bit != 0 {
		return true
	}
	b[word] |= bit
	return false
}
