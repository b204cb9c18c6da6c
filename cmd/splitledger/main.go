// Command splitledger edits ledger files and prints who owes what.
//
// A ledger file is a YAML (or .json) document listing users and purchases.
// Every editing command rewrites the file in place; a file that does not
// exist yet is an empty ledger.
//
// Usage:
//
//	splitledger user add trip.yaml Eska
//	splitledger purchase add trip.yaml --descr jambon --payer Eska --amount 15 --share Eska=1 --share Shuba=2
//	splitledger balances trip.yaml --settle
//	splitledger balances trip.yaml --watch
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mmynk/splitledger/pkg/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var logLevel string

	root := &cobra.Command{
		Use:           "splitledger",
		Short:         "Track shared expenses and compute balances",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if logLevel == "" {
				logLevel = os.Getenv("LOG_LEVEL")
			}
			level, err := logging.ParseLevel(logLevel)
			if err != nil {
				return err
			}
			logging.SetupWithLevel(level)
			return nil
		},
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error (default: $LOG_LEVEL or info)")

	root.AddCommand(
		newBalancesCmd(),
		newUserCmd(),
		newPurchaseCmd(),
		newShowCmd(),
		newConvertCmd(),
	)
	return root
}
