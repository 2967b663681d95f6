package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/NepomukLorenz/auditrevenue"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var checkWide bool

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate a journal export without building the graph",
	Long: `check reads the journal, replicates collective bookings and reports
every double-entry violation: entries whose balances do not sum to
zero, bookings without a mirror line, and aggregated pairs that
disagree with their reverse record. Diagnostics are exported as CSV.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		profile, err := LoadProfile(profilePath)
		if err != nil {
			return err
		}
		return runCheck(profile)
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().BoolVar(&checkWide, "wide", false, "use the full terminal width")
}

func reportWidth() int {
	width := 80
	if checkWide {
		width = 132
		fd := int(os.Stdout.Fd())
		if term.IsTerminal(fd) {
			if tw, _, err := term.GetSize(fd); err == nil {
				width = tw
			}
		}
	}
	return width
}

func clip(s string, width int) string {
	if len(s) <= width {
		return s
	}
	return s[:width]
}

func runCheck(profile *Profile) error {
	now := time.Now()
	outDir := profile.outputDir()
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}

	lines, err := auditrevenue.ReadJournalFile(journalPath, profile.columns(), profile.delimiter())
	if err != nil {
		return err
	}
	if lines, err = profile.filterByDate(lines); err != nil {
		return err
	}

	width := reportWidth()
	clean := true

	result, err := auditrevenue.Prepare(lines, auditrevenue.PrepareOptions{
		Collective:       profile.collective(),
		BalanceTolerance: profile.balanceTolerance(),
		Subledger:        profile.subledgerRule(),
	})
	if result == nil {
		return err
	}
	if len(result.Unbalanced) > 0 {
		clean = false
		filename, exportErr := exportUnbalanced(outDir, result.Unbalanced, now)
		if exportErr != nil {
			return exportErr
		}
		fmt.Printf("%d entries do not sum to zero (exported to %s):\n", len(result.Unbalanced), filename)
		for _, violation := range result.Unbalanced {
			fmt.Println(clip(fmt.Sprintf("  entry %s: sum %s over %d lines",
				violation.EntryID, violation.Sum.StringFixedBank(2), len(violation.Lines)), width))
		}
	} else if err != nil {
		return err
	}
	if len(result.Unmatched) > 0 {
		clean = false
		filename, exportErr := exportUnmatched(outDir, result.Unmatched, now)
		if exportErr != nil {
			return exportErr
		}
		fmt.Printf("%d bookings have no mirror line (exported to %s)\n", len(result.Unmatched), filename)
	}

	pairs := auditrevenue.AggregatePairs(result.Lines)
	for _, violation := range auditrevenue.CheckMirrorPairs(pairs, profile.mirrorTolerance()) {
		clean = false
		if violation.Missing {
			fmt.Println(clip(fmt.Sprintf("pair %s/%s has no reverse record",
				violation.Account, violation.CounterAccount), width))
		} else {
			fmt.Println(clip(fmt.Sprintf("pair %s/%s disagrees with its reverse record",
				violation.Account, violation.CounterAccount), width))
		}
	}

	totals := auditrevenue.CheckTotals(pairs, auditrevenue.DefaultTotalsTolerance)
	fmt.Printf("totals: debit %s, credit %s\n", totals.Debit.StringFixedBank(2), totals.Credit.StringFixedBank(2))
	if !totals.Balanced {
		clean = false
		fmt.Println("totals: debit and credit differ beyond tolerance")
	}

	if clean {
		fmt.Printf("journal is consistent (%d lines, %d pairs)\n", len(result.Lines), len(pairs))
	}
	return nil
}
