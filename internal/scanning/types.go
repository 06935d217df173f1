package scanning

import (
	stderrors "errors"
	"net/netip"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/anstrom/portsweep/internal/errors"
)

// Job is a single (address, port) connection attempt.
type Job struct {
	Addr  netip.AddrPort
	Label string
}

// Result is the outcome of one Job. Exactly one Result is produced per Job.
type Result struct {
	Addr    netip.Addr
	Label   string
	Port    uint16
	Open    bool
	Service string
}

// Params are the effective per-run scan parameters.
type Params struct {
	Timeout     time.Duration
	Concurrency int
}

// Outcome classifies a finished connection attempt.
type Outcome string

const (
	OutcomeOpen     Outcome = "open"
	OutcomeRefused  Outcome = "refused"
	OutcomeTimeout  Outcome = "timeout"
	OutcomeResource Outcome = "resource"
	OutcomeError    Outcome = "error"
)

// Scan completion statuses reported to observers.
const (
	StatusCompleted = "completed"
	StatusCanceled  = "canceled"
	StatusFailed    = "failed"
	StatusNoTargets = "no_targets"
)

// ScanConfig represents the inputs of a single scan run.
type ScanConfig struct {
	// Targets are address tokens: IPs, CIDR blocks or host names. Empty scans 127.0.0.1.
	Targets []string
	// Ports are port tokens ("22", "20-25", "top100"). Empty picks a default by target class.
	Ports []string
	// PortsArg names the option the port tokens came from, for error messages.
	PortsArg string
	// Timeout overrides the per-connection timeout (0 = derive).
	Timeout time.Duration `validate:"gte=0"`
	// Concurrency overrides the in-flight attempt limit (0 = derive).
	Concurrency int `validate:"gte=0"`
	// FDMargin is the number of descriptors kept free below the open-file limit.
	// Zero uses the package default FDMargin.
	FDMargin int `validate:"gte=0"`
	// ServiceNames annotates open ports with their well-known service name.
	ServiceNames bool
	// Format selects the result output format.
	Format Format `validate:"omitempty,oneof=text json"`
}

var validate = validator.New()

// Validate checks the scan configuration.
func (c *ScanConfig) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if stderrors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return errors.ErrConfigInvalid(fe.Field(), fe.Value(), err)
	}
	return errors.WrapConfigError(errors.CodeValidation, "invalid scan configuration", err)
}

// ScanResult summarizes a completed run.
type ScanResult struct {
	ID         string
	Targets    int
	Unresolved []string
	Ports      int
	Private    bool
	Params     Params
	Summary    Summary
}
