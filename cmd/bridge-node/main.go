package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "bridge-node",
	Short:         "Ethereum bridge ledger node",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flags.dataDir, "data-dir", "data", "directory holding config and ledger store")
	rootCmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "overrides the configured log level")
	rootCmd.PersistentFlags().StringVar(&flags.caller, "caller", "", "account id (0x + 64 hex) the command acts as")

	runCmd.Flags().BoolVar(&flags.relay, "relay", false, "enable the Ethereum relay")
	runCmd.Flags().StringVar(&flags.relayRPC, "relay-rpc", "", "Ethereum JSON-RPC endpoint of the relay")
	runCmd.Flags().StringVar(&flags.relayer, "relayer", "", "account id relayed blocks are recorded as")
	runCmd.Flags().StringVar(&flags.eventsDb, "events-db", "", "mongodb uri of the event index")
	runCmd.Flags().StringVar(&flags.eventsDbName, "events-db-name", "", "database name of the event index")

	rootCmd.AddCommand(
		runCmd,
		initCmd,
		recordCmd,
		remitCmd,
		unlockCmd,
		showCmd,
		resetIndexCmd,
	)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "bridge-node failed: %v\n", err)
		os.Exit(1)
	}
}
