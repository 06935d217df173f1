package scanning

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/anstrom/portsweep/internal/errors"
)

// Format selects how open ports are written.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// ReportOptions configure a Reporter.
type ReportOptions struct {
	Format       Format
	ServiceNames bool
	LabelWidth   int
	PortWidth    int
}

// Summary counts what a Reporter consumed.
type Summary struct {
	Total    int
	Open     int
	Duration time.Duration
}

// Reporter writes open ports as results arrive.
type Reporter struct {
	w    io.Writer
	opts ReportOptions
	enc  *json.Encoder
}

type jsonResult struct {
	Label   string `json:"label"`
	IP      string `json:"ip"`
	Port    uint16 `json:"port"`
	Service string `json:"service,omitempty"`
}

// NewReporter creates a Reporter writing to w.
func NewReporter(w io.Writer, opts ReportOptions) *Reporter {
	if opts.Format == "" {
		opts.Format = FormatText
	}
	return &Reporter{w: w, opts: opts, enc: json.NewEncoder(w)}
}

// Consume reads results until total have been received, writing each open one.
// A stream that closes early is an error. Write failures do not stop
// consumption; the first one is returned once the stream is drained.
func (r *Reporter) Consume(results <-chan Result, total int) (Summary, error) {
	start := time.Now()
	var summary Summary
	var writeErr error

	for summary.Total < total {
		res, ok := <-results
		if !ok {
			summary.Duration = time.Since(start)
			return summary, errors.NewScanError(errors.CodeScanFailed, "result stream closed before every job reported").
				WithContext("received", summary.Total).
				WithContext("expected", total)
		}
		summary.Total++
		if !res.Open {
			continue
		}
		summary.Open++
		if writeErr == nil {
			writeErr = r.write(res)
		}
	}

	summary.Duration = time.Since(start)
	if writeErr != nil {
		return summary, errors.WrapScanError(errors.CodeScanFailed, "failed to write results", writeErr)
	}
	return summary, nil
}

func (r *Reporter) write(res Result) error {
	service := ""
	if r.opts.ServiceNames {
		service = res.Service
		if service == "" {
			service = "unknown"
		}
	}

	if r.opts.Format == FormatJSON {
		ip := ""
		if res.Addr.IsValid() {
			ip = res.Addr.String()
		}
		return r.enc.Encode(jsonResult{Label: res.Label, IP: ip, Port: res.Port, Service: service})
	}

	var err error
	if r.opts.ServiceNames {
		_, err = fmt.Fprintf(r.w, "%-*s %-*d %s\n", r.opts.LabelWidth, res.Label, r.opts.PortWidth, res.Port, service)
	} else {
		_, err = fmt.Fprintf(r.w, "%-*s %d\n", r.opts.LabelWidth, res.Label, res.Port)
	}
	return err
}
