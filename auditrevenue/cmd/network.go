package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/NepomukLorenz/auditrevenue"
	"github.com/NepomukLorenz/auditrevenue/auditrevenue/classify"
	"github.com/NepomukLorenz/auditrevenue/auditrevenue/graph"
	"github.com/NepomukLorenz/auditrevenue/auditrevenue/netviz"
	"github.com/spf13/cobra"
)

var (
	outputFile      string
	skipClassify    bool
	writePairsCSV   bool
	writeJournalCSV bool
)

var networkCmd = &cobra.Command{
	Use:   "network",
	Short: "Build the account relationship graph from a journal export",
	Long: `network runs the full pipeline: it reads the journal, replicates
collective bookings, validates entry balances and mirror lines,
aggregates account pairs, classifies the chart of accounts and renders
the relationship graph as an HTML page.

Entries that fail validation abort the run; the offending lines are
exported as CSV next to the output file for follow-up.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		profile, err := LoadProfile(profilePath)
		if err != nil {
			return err
		}
		return runNetwork(cmd.Context(), profile)
	},
}

func init() {
	rootCmd.AddCommand(networkCmd)
	networkCmd.Flags().StringVarP(&outputFile, "output", "o", "account_network.html", "output HTML file")
	networkCmd.Flags().BoolVar(&skipClassify, "no-classify", false, "skip account classification")
	networkCmd.Flags().BoolVar(&writePairsCSV, "pairs-csv", false, "export the aggregated pair table as CSV")
	networkCmd.Flags().BoolVar(&writeJournalCSV, "journal-csv", false, "export the expanded journal as CSV")
}

func runNetwork(ctx context.Context, profile *Profile) error {
	now := time.Now()
	outDir := profile.outputDir()
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}

	lines, err := auditrevenue.ReadJournalFile(journalPath, profile.columns(), profile.delimiter())
	if err != nil {
		return err
	}
	slog.Info("journal read", "file", journalPath, "lines", len(lines))

	if lines, err = profile.filterByDate(lines); err != nil {
		return err
	}

	result, err := auditrevenue.Prepare(lines, auditrevenue.PrepareOptions{
		Collective:       profile.collective(),
		BalanceTolerance: profile.balanceTolerance(),
		Subledger:        profile.subledgerRule(),
	})
	if errors.Is(err, auditrevenue.ErrUnbalancedEntries) {
		filename, exportErr := exportUnbalanced(outDir, result.Unbalanced, now)
		if exportErr != nil {
			return fmt.Errorf("export unbalanced entries: %w", exportErr)
		}
		slog.Error("journal has unbalanced entries", "count", len(result.Unbalanced), "export", filename)
		return err
	}
	if err != nil {
		return err
	}
	if len(result.Unmatched) > 0 {
		filename, exportErr := exportUnmatched(outDir, result.Unmatched, now)
		if exportErr != nil {
			return fmt.Errorf("export unmatched bookings: %w", exportErr)
		}
		slog.Warn("journal has bookings without a mirror line", "count", len(result.Unmatched), "export", filename)
	}

	pairs := auditrevenue.AggregatePairs(result.Lines)
	slog.Info("pairs aggregated", "pairs", len(pairs), "accounts", len(auditrevenue.ChartOfAccounts(pairs)))

	for _, violation := range auditrevenue.CheckMirrorPairs(pairs, profile.mirrorTolerance()) {
		if violation.Missing {
			slog.Warn("pair has no reverse record", "account", violation.Account, "counter", violation.CounterAccount)
		} else {
			slog.Warn("pair disagrees with its reverse record", "account", violation.Account, "counter", violation.CounterAccount)
		}
	}
	totals := auditrevenue.CheckTotals(pairs, auditrevenue.DefaultTotalsTolerance)
	if !totals.Balanced {
		slog.Warn("journal debit and credit totals differ",
			"debit", totals.Debit.StringFixedBank(2), "credit", totals.Credit.StringFixedBank(2))
	}

	if writePairsCSV {
		filename, err := exportPairs(outDir, pairs, now)
		if err != nil {
			return fmt.Errorf("export pairs: %w", err)
		}
		slog.Info("pair table exported", "file", filename)
	}
	if writeJournalCSV {
		filename, err := exportJournal(outDir, result.Lines, now)
		if err != nil {
			return fmt.Errorf("export journal: %w", err)
		}
		slog.Info("expanded journal exported", "file", filename)
	}

	categories, err := classifyAccounts(ctx, profile, pairs)
	if err != nil {
		return err
	}

	rules, err := loadStyleRules(profile)
	if err != nil {
		return err
	}
	g := graph.Build(pairs, categories, rules, profile.materiality())
	slog.Info("graph built", "nodes", len(g.Nodes), "edges", len(g.Edges))

	output := filepath.Join(outDir, outputFile)
	if err := netviz.WriteFile(output, g, rules, netviz.Options{
		Title: fmt.Sprintf("Account Relationships %s", now.Format("2006-01-02")),
	}); err != nil {
		return fmt.Errorf("render graph: %w", err)
	}
	slog.Info("graph rendered", "file", output)
	return nil
}

// classifyAccounts builds the classifier chain the profile describes:
// stored assignments first, then a name classifier trained on them,
// then the remote model. Accounts that every link rejects stay
// CategoryUnknown and keep their fallback color in the graph.
func classifyAccounts(ctx context.Context, profile *Profile, pairs []auditrevenue.PairRecord) (map[string]auditrevenue.Category, error) {
	if skipClassify {
		return nil, nil
	}

	var chain classify.Chain
	var store *classify.Store
	if profile.StorePath != "" {
		var err error
		if store, err = classify.OpenStore(profile.StorePath); err != nil {
			return nil, err
		}
		defer store.Close()
		chain = append(chain, store)

		training, err := store.Training(ctx)
		if err != nil {
			return nil, err
		}
		if bayes, err := classify.NewBayes(training); err == nil {
			chain = append(chain, bayes)
		} else {
			slog.Debug("name classifier unavailable", "reason", err)
		}
	}

	gemini, err := classify.NewGemini(ctx, classify.GeminiOptions{Model: profile.Model})
	if err != nil {
		slog.Warn("remote classifier unavailable", "error", err)
	} else {
		chain = append(chain, classify.NewCached(gemini))
	}
	if len(chain) == 0 {
		slog.Warn("no classifier configured, all accounts stay unclassified")
		return nil, nil
	}

	result, err := classify.All(ctx, chain, pairs)
	if err != nil {
		return nil, err
	}
	if len(result.Failed) > 0 {
		slog.Warn("accounts left unclassified", "count", len(result.Failed), "accounts", result.Failed)
	}

	if store != nil {
		names := make(map[string]string, len(pairs))
		for _, pair := range pairs {
			if _, ok := names[pair.Account]; !ok {
				names[pair.Account] = pair.AccountName
			}
		}
		for account, category := range result.Categories {
			if category == auditrevenue.CategoryUnknown {
				continue
			}
			if err := store.Save(ctx, account, names[account], category); err != nil {
				slog.Warn("could not persist assignment", "account", account, "error", err)
			}
		}
	}
	return result.Categories, nil
}

func loadStyleRules(profile *Profile) (*graph.Rules, error) {
	if profile.StyleRules == "" {
		return graph.DefaultRules(), nil
	}
	data, err := os.ReadFile(profile.StyleRules)
	if err != nil {
		return nil, fmt.Errorf("read style rules: %w", err)
	}
	rules, err := graph.RulesFromYAML(data)
	if err != nil {
		return nil, fmt.Errorf("parse style rules %s: %w", profile.StyleRules, err)
	}
	return rules, nil
}
