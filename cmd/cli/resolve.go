package cli

import (
	"fmt"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/anstrom/portsweep/internal/errors"
	"github.com/anstrom/portsweep/internal/logging"
	"github.com/anstrom/portsweep/internal/scanning"
	"github.com/anstrom/portsweep/internal/targets"
)

// resolveCmd represents the resolve command
var resolveCmd = &cobra.Command{
	Use:   "resolve [addresses...]",
	Short: "Resolve addresses without scanning",
	Long: `Resolve IP addresses, CIDR blocks and host names exactly as "scan" would and
print the resulting targets, their labels and the private/public classification
that selects default ports and timing.`,
	Example: `  portsweep resolve 192.168.1.0/30 example.com`,
	RunE:    runResolve,
}

func init() {
	rootCmd.AddCommand(resolveCmd)
}

func runResolve(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if len(args) == 0 {
		args = []string{scanning.DefaultTarget}
	}

	set := newResolver(cfg, logging.Default()).Resolve(cmd.Context(), args)

	out := cmd.OutOrStdout()
	if !set.Empty() {
		table := tablewriter.NewWriter(out)
		table.Header("Label", "Address", "Private")
		for _, t := range set.Targets {
			_ = table.Append([]string{t.Label, t.Addr.String(), strconv.FormatBool(targets.IsPrivate(t.Addr))})
		}
		_ = table.Render()
	}

	for _, token := range set.Unresolved {
		fmt.Fprintf(out, "unresolved: %s\n", token)
	}

	if set.Empty() {
		return errors.ErrNoTargets(set.Unresolved)
	}

	class := "public"
	if set.IsPrivate() {
		class = "private"
	}
	fmt.Fprintf(out, "%d targets, classification: %s\n", set.Len(), class)
	return nil
}
