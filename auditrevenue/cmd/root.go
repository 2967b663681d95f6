// Package cmd provides the auditrevenue command line interface.
package cmd

import (
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/hako/durafmt"
	cc "github.com/ivanpirog/coloredcobra"
	"github.com/joho/godotenv"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

var (
	journalPath string
	profilePath string
	verbose     bool

	runStart time.Time
)

var rootCmd = &cobra.Command{
	Use:   "auditrevenue",
	Short: "Audit analytics over double-entry journal exports",
	Long: `auditrevenue reads a general ledger journal export, validates its
double-entry structure, aggregates account relationships and renders
them as a risk-styled graph for audit review.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// .env may carry the model API key; a missing file is fine.
		_ = godotenv.Load()

		logLevel := slog.LevelInfo
		if verbose {
			logLevel = slog.LevelDebug
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: logLevel,
		}))
		slog.SetDefault(logger.With("run", uuid.NewString()[:8]))

		runStart = time.Now()
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		slog.Debug("run finished", "elapsed", durafmt.Parse(time.Since(runStart)).LimitFirstN(2))
	},
}

// Execute runs the selected subcommand. Called once from main.
func Execute() error {
	if isatty.IsTerminal(os.Stdout.Fd()) {
		cc.Init(&cc.Config{
			RootCmd:  rootCmd,
			Headings: cc.HiCyan + cc.Bold + cc.Underline,
			Commands: cc.HiYellow + cc.Bold,
			Example:  cc.Italic,
			ExecName: cc.Bold,
			Flags:    cc.Bold,
		})
	}
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&journalPath, "journal", "j", "journal.csv", "journal export to read")
	rootCmd.PersistentFlags().StringVar(&profilePath, "profile", "", "TOML run profile")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}
