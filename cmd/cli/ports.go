package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/anstrom/portsweep/internal/ports"
	"github.com/anstrom/portsweep/internal/portspec"
)

const defaultPortsListing = "top20"

// portsCmd represents the ports command
var portsCmd = &cobra.Command{
	Use:   "ports [spec...]",
	Short: "Expand a port specification and show service names",
	Long: `Expand port specifications the same way "scan --ports" does and print the
resulting ports, in scan order, with their well-known service names.`,
	Example: `  portsweep ports
  portsweep ports top100
  portsweep ports 22,80-90 443`,
	RunE: runPorts,
}

func init() {
	rootCmd.AddCommand(portsCmd)
}

func runPorts(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		args = []string{defaultPortsListing}
	}

	var tokens []string
	for _, arg := range args {
		tokens = append(tokens, strings.Split(arg, ",")...)
	}

	list, err := portspec.Expand("ports", tokens)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	table := tablewriter.NewWriter(out)
	table.Header("Port", "Service")
	for _, p := range list {
		_ = table.Append([]string{strconv.Itoa(int(p)), ports.ServiceName(p)})
	}
	_ = table.Render()

	fmt.Fprintf(out, "%d ports\n", len(list))
	return nil
}
