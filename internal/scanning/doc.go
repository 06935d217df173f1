// Package scanning provides the TCP connect scan pipeline for portsweep.
//
// # Overview
//
// A scan runs in four stages. Address tokens are resolved into targets by
// package targets, port tokens are expanded by package portspec, the
// resulting target and port lists form a Matrix, and an Engine executes the
// matrix with a bounded number of simultaneous connection attempts. Results
// stream to a Reporter as they complete, in completion order.
//
// # Main Components
//
//   - Matrix: lazy cross product of targets and ports, target-major
//   - DeriveParams: timeout and concurrency from overrides and target class
//   - Engine: semaphore-gated dialing, one Result per Job
//   - Admission: the semaphore with in-flight accounting
//   - SocketBudget: the process descriptor limit used to clamp concurrency
//   - Reporter: text or JSON-lines output of open ports
//   - Runner: wires the stages together for one run
//
// # Usage Examples
//
//	resolver := targets.NewResolver()
//	runner := scanning.NewRunner(resolver)
//
//	result, err := runner.Run(ctx, &scanning.ScanConfig{
//		Targets:      []string{"192.168.1.0/24"},
//		Ports:        []string{"22", "80", "8000-8100"},
//		ServiceNames: true,
//	}, os.Stdout)
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Println(result.Summary.Open, "open ports")
//
// # Timing Defaults
//
// When every target is in a private or loopback range the engine uses a 1s
// connect timeout and up to 65535 simultaneous attempts. Otherwise it uses 3s
// and 4096. Explicit overrides replace either value, and concurrency never
// exceeds the job count or the descriptor budget minus FDMargin.
//
// # Outcomes
//
// A port is open when the TCP handshake completes within the timeout; the
// connection is closed immediately. Every failure (refusal, timeout, reset,
// descriptor exhaustion) reports the port as closed. There are no retries.
package scanning
