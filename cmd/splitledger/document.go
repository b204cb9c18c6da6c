package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/mmynk/splitledger/internal/document"
)

func newShowCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "show FILE",
		Short: "Print the ledger as a normalized document",
		Long: `Print the ledger as a normalized document: users sorted and deduplicated,
numbers in canonical decimal form and zero shares left out.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := document.ParseFormat(format)
			if err != nil {
				return err
			}
			l, err := document.LoadFile(args[0])
			if err != nil {
				return err
			}
			return document.Write(cmd.OutOrStdout(), document.FromLedger(l), f)
		},
	}

	cmd.Flags().StringVar(&format, "format", "yaml", "output format: yaml or json")
	return cmd
}

func newConvertCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "convert IN OUT",
		Short: "Rewrite a ledger file in another format",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := document.FormatForPath(args[1])
			if format != "" {
				f, err := document.ParseFormat(format)
				if err != nil {
					return err
				}
				out = f
			}

			l, err := document.LoadFile(args[0])
			if err != nil {
				return err
			}
			if err := document.SaveFileAs(args[1], l, out); err != nil {
				return err
			}
			slog.Info("Ledger converted", "from", args[0], "to", args[1], "format", out)
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "", "output format: yaml or json (default: from the OUT extension)")
	return cmd
}
