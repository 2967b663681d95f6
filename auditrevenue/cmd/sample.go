package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/NepomukLorenz/auditrevenue"
	"github.com/NepomukLorenz/auditrevenue/auditrevenue/mus"
	"github.com/spf13/cobra"
)

var (
	sampleSize int
	sampleSeed int64
)

var sampleCmd = &cobra.Command{
	Use:   "sample",
	Short: "Draw a monetary unit sample from the journal",
	Long: `sample selects bookings for substantive testing with monetary unit
sampling: the chance of a booking being drawn is proportional to its
amount, so large bookings are always covered. The same seed reproduces
the same sample, which keeps the selection defensible in the audit
file. Selected lines are exported as CSV.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		profile, err := LoadProfile(profilePath)
		if err != nil {
			return err
		}
		return runSample(profile)
	},
}

func init() {
	rootCmd.AddCommand(sampleCmd)
	sampleCmd.Flags().IntVarP(&sampleSize, "size", "n", 25, "number of bookings to select")
	sampleCmd.Flags().Int64Var(&sampleSeed, "seed", 0, "random seed (0 derives one from the current time)")
}

func runSample(profile *Profile) error {
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

	seed := sampleSeed
	if seed == 0 {
		seed = now.UnixNano()
	}
	sampled, err := mus.SampleLines(lines, sampleSize, seed)
	if err != nil {
		return err
	}
	slog.Info("sample drawn", "population", len(lines), "selected", len(sampled), "seed", seed)

	rows := make([][]string, len(sampled))
	for i, line := range sampled {
		rows[i] = lineRow(line)
	}
	filename := exportPath(outDir, "monetary_unit_sample", now)
	if err := writeCSV(filename, lineHeader(), rows); err != nil {
		return fmt.Errorf("export sample: %w", err)
	}
	fmt.Printf("selected %d of %d bookings (seed %d), exported to %s\n", len(sampled), len(lines), seed, filename)
	return nil
}
