// Package cli provides the command-line interface for the portsweep scanner.
// This package implements the Cobra-based CLI structure with commands for
// scanning, port table inspection, address resolution and configuration.
package cli

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/anstrom/portsweep/internal/config"
	"github.com/anstrom/portsweep/internal/errors"
	"github.com/anstrom/portsweep/internal/logging"
)

const (
	envPrefix         = "PORTSWEEP"
	defaultConfigName = "portsweep"
)

var (
	cfgFile string
	verbose bool
)

// Build information - these will be set by ldflags during build.
var (
	version   = "dev"
	commit    = "none"
	buildTime = "unknown"
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "portsweep",
	Short: "Fast TCP connect port scanner",
	Long: `Portsweep scans IP addresses, CIDR blocks and host names for open TCP ports
using plain connect() probes. Private targets are scanned on every port with
aggressive timing; public targets default to the 1000 most common ports.`,
	Version:       getVersion(),
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		printError(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./portsweep.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	// Bind flags to viper
	if err := viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose")); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to bind verbose flag: %v\n", err)
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Search for config in current directory
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(defaultConfigName)
	}

	// Read in environment variables that match, e.g. PORTSWEEP_SCANNING_CONCURRENCY
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		if verbose {
			fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
		}
	}

	// Initialize structured logging after config is loaded
	initLogging()
}

// loadConfig loads the config file located by viper and applies environment
// overrides on top of it.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(viper.ConfigFileUsed())
	if err != nil {
		return nil, err
	}
	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides copies PORTSWEEP_* environment values into cfg.
func applyEnvOverrides(cfg *config.Config) error {
	for _, key := range []string{
		"scanning.timeout", "scanning.concurrency", "scanning.fd_margin",
		"scanning.max_cidr_hosts", "scanning.dns_servers", "scanning.dns_timeout",
		"scanning.service_names", "scanning.format",
		"logging.level", "logging.format", "logging.output",
		"metrics.listen_addr",
	} {
		envKey := envPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if _, ok := os.LookupEnv(envKey); !ok {
			continue
		}
		switch key {
		case "scanning.timeout":
			d, err := envDuration(envKey, viper.GetString(key))
			if err != nil {
				return err
			}
			cfg.Scanning.Timeout = d
		case "scanning.concurrency":
			cfg.Scanning.Concurrency = viper.GetInt(key)
		case "scanning.fd_margin":
			cfg.Scanning.FDMargin = viper.GetInt(key)
		case "scanning.max_cidr_hosts":
			cfg.Scanning.MaxCIDRHosts = viper.GetInt(key)
		case "scanning.dns_servers":
			cfg.Scanning.DNSServers = strings.Split(viper.GetString(key), ",")
		case "scanning.dns_timeout":
			d, err := envDuration(envKey, viper.GetString(key))
			if err != nil {
				return err
			}
			cfg.Scanning.DNSTimeout = d
		case "scanning.service_names":
			cfg.Scanning.ServiceNames = viper.GetBool(key)
		case "scanning.format":
			cfg.Scanning.Format = viper.GetString(key)
		case "logging.level":
			cfg.Logging.Level = viper.GetString(key)
		case "logging.format":
			cfg.Logging.Format = viper.GetString(key)
		case "logging.output":
			cfg.Logging.Output = viper.GetString(key)
		case "metrics.listen_addr":
			cfg.Metrics.ListenAddr = viper.GetString(key)
		}
	}
	return nil
}

// envDuration parses a duration from the environment. A bare integer is read
// as milliseconds, like the --timeout flag.
func envDuration(envKey, raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if ms, err := strconv.Atoi(raw); err == nil {
		return time.Duration(ms) * time.Millisecond, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, errors.ErrConfigInvalid(envKey, raw, err)
	}
	return d, nil
}

// getVersion returns the version string.
func getVersion() string {
	return fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildTime)
}

// SetVersion sets the version information (called from main).
func SetVersion(v, c, bt string) {
	version = v
	commit = c
	buildTime = bt
	rootCmd.Version = getVersion()
}

// initLogging initializes structured logging based on configuration.
func initLogging() {
	cfg, err := loadConfig()
	if err != nil {
		// Config errors are reported by the command itself
		logging.SetDefault(logging.NewDefault())
		return
	}

	logConfig := cfg.LoggingConfig()
	if verbose {
		logConfig.Level = logging.LevelDebug
	}

	logger, err := logging.New(logConfig)
	if err != nil {
		logger = logging.NewDefault()
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize logging: %v\n", err)
	}
	logging.SetDefault(logger)

	logging.Debug("Structured logging initialized", "level", logConfig.Level, "format", logConfig.Format)
}

// Exit codes returned by Execute.
const (
	exitFatal    = 1
	exitFailed   = 2
	exitCanceled = 130
)

// exitCode maps err to the process exit status. Errors that stop a run before
// any connection is attempted exit with 1, an interrupted scan with 130 and
// everything else with 2.
func exitCode(err error) int {
	switch {
	case errors.IsCode(err, errors.CodeCanceled):
		return exitCanceled
	case errors.IsFatal(err):
		return exitFatal
	default:
		return exitFailed
	}
}

// printError writes err in the user-facing "error: ..." form.
func printError(w io.Writer, err error) {
	var msg string
	switch e := err.(type) {
	case *errors.ScanError:
		msg = e.Message
		if e.Code != errors.CodeNoTargets && e.Cause != nil {
			msg = fmt.Sprintf("%s: %v", e.Message, e.Cause)
		}
	default:
		msg = err.Error()
	}
	fmt.Fprintf(w, "error: %s\n", msg)
}
