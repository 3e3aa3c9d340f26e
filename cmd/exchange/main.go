// Command exchange is the single binary multiplexing the gateway and the
// three worker services, the way VictorVVedtion-perp-dex wires multiple
// node subcommands through a shared cobra root.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:   "exchange",
		Short: "Spot exchange matching and settlement engine",
	}
	root.AddCommand(
		newGatewayCmd(),
		newOrdersWorkerCmd(),
		newUsersWorkerCmd(),
		newInstrumentsWorkerCmd(),
		newMigrateCmd(),
	)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
