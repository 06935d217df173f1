package cli

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/anstrom/portsweep/internal/config"
	"github.com/anstrom/portsweep/internal/logging"
	"github.com/anstrom/portsweep/internal/metrics"
	"github.com/anstrom/portsweep/internal/scanning"
	"github.com/anstrom/portsweep/internal/targets"
)

var (
	scanPorts        []string
	scanTimeoutMS    int
	scanConcurrency  int
	scanServiceNames bool
	scanFormat       string
	scanMetricsAddr  string
)

// scanCmd represents the scan command
var scanCmd = &cobra.Command{
	Use:   "scan [addresses...]",
	Short: "Scan addresses for open TCP ports",
	Long: `Scan IP addresses, CIDR blocks or host names for open TCP ports.

Without --ports, private targets (10/8, 172.16/12, 192.168/16, 127/8) are
scanned on every port and public targets on the 1000 most common ports.
Without addresses, 127.0.0.1 is scanned.`,
	Example: `  portsweep scan
  portsweep scan 192.168.1.0/24 -p 22,80,443
  portsweep scan example.com -p top100 -t 1500
  portsweep scan 10.0.0.5 -p 1-1024 -c 512 --format json`,
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)
	addScanFlags(scanCmd)
}

// addScanFlags registers the scan flags on cmd.
func addScanFlags(cmd *cobra.Command) {
	cmd.Flags().StringSliceVarP(&scanPorts, "ports", "p", nil, "Ports to be scanned e.g. 22,80-443,top100")
	cmd.Flags().IntVarP(&scanTimeoutMS, "timeout", "t", 0, "Connect timeout in milliseconds (default 1000 private, 3000 public)")
	cmd.Flags().IntVarP(&scanConcurrency, "concurrency", "c", 0, "Maximum concurrent connection attempts (default 65535 private, 4096 public)")
	cmd.Flags().BoolVar(&scanServiceNames, "service-names", true, "Print the well-known service name of open ports")
	cmd.Flags().StringVar(&scanFormat, "format", "text", "Output format: text, json")
	cmd.Flags().StringVar(&scanMetricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address during the scan")
}

func runScan(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	scanConfig, err := buildScanConfig(cmd, cfg, args)
	if err != nil {
		return err
	}

	logger := logging.Default()
	pm := metrics.GetGlobalMetrics()

	metricsAddr := cfg.Metrics.ListenAddr
	if cmd.Flags().Changed("metrics-addr") {
		metricsAddr = scanMetricsAddr
	}
	if metricsAddr != "" {
		srv := metrics.NewServer(metricsAddr, pm, logger)
		if err := srv.Start(); err != nil {
			return err
		}
		defer func() { _ = srv.Stop() }()
	}

	resolver := newResolver(cfg, logger)
	runner := scanning.NewRunner(resolver, func(r *scanning.Runner) {
		r.Observer = pm
		r.Logger = logger
	})

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	_, err = runner.Run(ctx, scanConfig, cmd.OutOrStdout())
	return err
}

// buildScanConfig merges configuration file values with command-line flags.
// Flags win when set explicitly.
func buildScanConfig(cmd *cobra.Command, cfg *config.Config, args []string) (*scanning.ScanConfig, error) {
	sc := &scanning.ScanConfig{
		Targets:      args,
		Ports:        scanPorts,
		PortsArg:     "--ports",
		Timeout:      cfg.Scanning.Timeout,
		Concurrency:  cfg.Scanning.Concurrency,
		FDMargin:     cfg.Scanning.FDMargin,
		ServiceNames: cfg.Scanning.ServiceNames,
		Format:       scanning.Format(cfg.Scanning.Format),
	}

	flags := cmd.Flags()
	if flags.Changed("timeout") {
		sc.Timeout = time.Duration(scanTimeoutMS) * time.Millisecond
	}
	if flags.Changed("concurrency") {
		sc.Concurrency = scanConcurrency
	}
	if flags.Changed("service-names") {
		sc.ServiceNames = scanServiceNames
	}
	if flags.Changed("format") {
		sc.Format = scanning.Format(scanFormat)
	}

	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return sc, nil
}

// newResolver builds the address resolver from the scanning configuration.
func newResolver(cfg *config.Config, logger *logging.Logger) *targets.Resolver {
	return targets.NewResolver(
		targets.WithLookups(
			targets.SystemLookup{},
			targets.NewDNSLookup(cfg.Scanning.DNSServers, cfg.Scanning.DNSTimeout),
		),
		targets.WithMaxExpansion(cfg.Scanning.MaxCIDRHosts),
		targets.WithLogger(logger),
	)
}
