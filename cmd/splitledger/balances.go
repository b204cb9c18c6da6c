package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/mmynk/splitledger/internal/document"
	"github.com/mmynk/splitledger/internal/ledger"
	"github.com/mmynk/splitledger/internal/rational"
)

// styles colors the balance table. Colors are dropped when the output is not
// a terminal.
type styles struct {
	header lipgloss.Style
	credit lipgloss.Style
	debit  lipgloss.Style
	muted  lipgloss.Style
	even   lipgloss.Style
}

func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	return styles{
		header: r.NewStyle().Bold(true),
		credit: r.NewStyle().Foreground(lipgloss.Color("#8BC34A")),
		debit:  r.NewStyle().Foreground(lipgloss.Color("#e53935")),
		muted:  r.NewStyle().Faint(true),
		even:   r.NewStyle(),
	}
}

func newBalancesCmd() *cobra.Command {
	var (
		decimals int
		settle   bool
		watch    bool
	)

	cmd := &cobra.Command{
		Use:   "balances FILE",
		Short: "Print what every user is owed (positive) or owes (negative)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if decimals < 0 {
				return fmt.Errorf("decimals cannot be negative: %d", decimals)
			}
			if decimals > rational.MaxDecimals {
				return fmt.Errorf("decimals cannot exceed %d: %d", rational.MaxDecimals, decimals)
			}
			path := args[0]
			out := cmd.OutOrStdout()

			show := func() error {
				l, err := document.LoadFile(path)
				if err != nil {
					return err
				}
				printBalances(out, l, decimals, settle)
				return nil
			}
			if err := show(); err != nil {
				return err
			}
			if !watch {
				return nil
			}
			return watchFile(cmd.Context(), path, func() {
				fmt.Fprintln(out)
				if err := show(); err != nil {
					fmt.Fprintln(cmd.ErrOrStderr(), err)
				}
			})
		},
	}

	cmd.Flags().IntVar(&decimals, "decimals", 2, "maximum number of decimals shown")
	cmd.Flags().BoolVar(&settle, "settle", false, "also suggest transfers that clear every balance")
	cmd.Flags().BoolVar(&watch, "watch", false, "print again whenever the file changes")
	return cmd
}

// printBalances writes one line per user, then the ignored purchases and,
// when settle is set, the suggested transfers.
func printBalances(w io.Writer, l *ledger.Ledger, decimals int, settle bool) {
	st := newStyles(w)
	report := l.Balances()

	nameWidth := 0
	amounts := make([]string, len(report.Users))
	amountWidth := 0
	for i, user := range report.Users {
		nameWidth = max(nameWidth, lipgloss.Width(user))
		amounts[i] = rational.Format(report.Balances[i], decimals)
		amountWidth = max(amountWidth, len(amounts[i]))
	}

	if len(report.Users) == 0 {
		fmt.Fprintln(w, st.muted.Render("no users"))
	}
	for i, user := range report.Users {
		style := st.even
		switch report.Balances[i].Sign() {
		case 1:
			style = st.credit
		case -1:
			style = st.debit
		}
		pad := strings.Repeat(" ", nameWidth-lipgloss.Width(user))
		line := fmt.Sprintf("%s%s  %*s", user, pad, amountWidth, amounts[i])
		fmt.Fprintln(w, style.Render(line))
	}

	for _, i := range report.Ignored {
		p, err := l.Purchase(i)
		if err != nil {
			continue
		}
		fmt.Fprintln(w, st.muted.Render(fmt.Sprintf("ignored #%d %s: shares sum to zero", i, p.Description)))
	}

	if !settle {
		return
	}
	transfers := report.Settle()
	fmt.Fprintln(w)
	fmt.Fprintln(w, st.header.Render("Transfers"))
	if len(transfers) == 0 {
		fmt.Fprintln(w, st.muted.Render("nothing to settle"))
	}
	for _, t := range transfers {
		fmt.Fprintf(w, "%s -> %s: %s\n", t.From, t.To, rational.Format(t.Amount, decimals))
	}
}

// watchFile calls onChange whenever path is written, created or renamed
// into place, until ctx is done. The parent directory is watched so that
// files replaced by rename keep being followed.
func watchFile(ctx context.Context, path string, onChange func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
	}
	slog.Debug("Watching ledger file", "path", abs)

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			slog.Debug("Ledger file changed", "path", abs, "op", event.Op.String())
			onChange()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("Watcher error", "error", err)
		}
	}
}
