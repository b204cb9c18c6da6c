package main

import (
	"fmt"
	"log/slog"
	"math/big"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mmynk/splitledger/internal/document"
	"github.com/mmynk/splitledger/internal/ledger"
)

// editFile loads the ledger at path, applies fn and saves the result.
// The file is left untouched when fn fails.
func editFile(path string, fn func(l *ledger.Ledger) error) error {
	l, err := document.LoadFile(path)
	if err != nil {
		return err
	}
	if err := fn(l); err != nil {
		return err
	}
	return document.SaveFile(path, l)
}

func parseIndex(s string) (int, error) {
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid purchase index %q", s)
	}
	return i, nil
}

// parseShares parses name=weight pairs.
func parseShares(pairs []string) (map[string]*big.Rat, error) {
	weights := make(map[string]*big.Rat, len(pairs))
	for _, pair := range pairs {
		name, text, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("invalid share %q: expected name=weight", pair)
		}
		w, err := ledger.ParseRational(text)
		if err != nil {
			return nil, fmt.Errorf("share of %s: %w", name, err)
		}
		weights[name] = w
	}
	return weights, nil
}

func newUserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Add or remove users",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "add FILE NAME",
		Short: "Add a user with a zero share in every purchase",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return editFile(args[0], func(l *ledger.Ledger) error {
				return l.AddUser(args[1])
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "remove FILE NAME",
		Short: "Remove a user who neither paid nor benefits from anything",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return editFile(args[0], func(l *ledger.Ledger) error {
				return l.RemoveUser(args[1])
			})
		},
	})

	return cmd
}

func newPurchaseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "purchase",
		Short: "Add, edit or remove purchases",
	}
	cmd.AddCommand(
		newPurchaseAddCmd(),
		newPurchaseShareCmd(),
		newPurchaseEditCmd("payer", "Change who paid for a purchase", func(l *ledger.Ledger, i int, v string) error {
			return l.ChangePayer(i, v)
		}),
		newPurchaseEditCmd("amount", "Change the amount of a purchase", func(l *ledger.Ledger, i int, v string) error {
			amount, err := ledger.ParseRational(v)
			if err != nil {
				return err
			}
			return l.ChangeAmount(i, amount)
		}),
		newPurchaseEditCmd("describe", "Change the description of a purchase", func(l *ledger.Ledger, i int, v string) error {
			return l.ChangeDescription(i, v)
		}),
		&cobra.Command{
			Use:   "remove FILE INDEX",
			Short: "Remove a purchase; later purchases move down one index",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				i, err := parseIndex(args[1])
				if err != nil {
					return err
				}
				return editFile(args[0], func(l *ledger.Ledger) error {
					return l.RemovePurchase(i)
				})
			},
		},
	)
	return cmd
}

func newPurchaseAddCmd() *cobra.Command {
	var (
		descr  string
		payer  string
		amount string
		shares []string
	)

	cmd := &cobra.Command{
		Use:   "add FILE",
		Short: "Append a purchase and print its index",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := ledger.ParseRational(amount)
			if err != nil {
				return err
			}
			weights, err := parseShares(shares)
			if err != nil {
				return err
			}

			var index int
			err = editFile(args[0], func(l *ledger.Ledger) error {
				if index, err = l.AddPurchase(descr, payer, value); err != nil {
					return err
				}
				return l.SetShares(index, weights)
			})
			if err != nil {
				return err
			}
			slog.Debug("Purchase added", "path", args[0], "index", index, "description", descr)
			fmt.Fprintln(cmd.OutOrStdout(), index)
			return nil
		},
	}

	cmd.Flags().StringVar(&descr, "descr", "", "description of the purchase")
	cmd.Flags().StringVar(&payer, "payer", "", "user who paid")
	cmd.Flags().StringVar(&amount, "amount", "", "amount paid, e.g. 12.50")
	cmd.Flags().StringArrayVar(&shares, "share", nil, "beneficiary weight as name=weight (repeatable)")
	_ = cmd.MarkFlagRequired("descr")
	_ = cmd.MarkFlagRequired("payer")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}

func newPurchaseShareCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "share FILE INDEX NAME WEIGHT",
		Short: "Set the weight of one user in a purchase",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			i, err := parseIndex(args[1])
			if err != nil {
				return err
			}
			weight, err := ledger.ParseRational(args[3])
			if err != nil {
				return err
			}
			return editFile(args[0], func(l *ledger.Ledger) error {
				return l.SetShare(i, args[2], weight)
			})
		},
	}
}

// newPurchaseEditCmd builds a "NAME FILE INDEX VALUE" command applying apply.
func newPurchaseEditCmd(name, short string, apply func(l *ledger.Ledger, i int, value string) error) *cobra.Command {
	return &cobra.Command{
		Use:   name + " FILE INDEX VALUE",
		Short: short,
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			i, err := parseIndex(args[1])
			if err != nil {
				return err
			}
			return editFile(args[0], func(l *ledger.Ledger) error {
				return apply(l, i, args[2])
			})
		},
	}
}
