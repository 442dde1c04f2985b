package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/awissink/latedays/internal/config"
)

var (
	configPath string
	verbose    bool

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "latedays",
	Short: "Reconcile late-day penalties across Courseworks, Gradescope and Codio",
	Long: `latedays merges the Courseworks roster, the Gradescope written-assignment
report and the Codio programming-assignment report into one ledger, deducts
late days from each student's remaining budget and writes a roster file
ready for re-import.

Run without a subcommand to perform a full run.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zapConfig := zap.NewProductionConfig()
		if verbose {
			zapConfig.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zapConfig.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: runReconcile,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default: ./"+config.DefaultConfigName+")")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	addRunFlags(rootCmd)
	addRunFlags(runCmd)
	addRunFlags(checkCmd)
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "number of runs to show")
	historyCmd.Flags().StringVar(&historyRunID, "run", "", "show the ledger saved for one run")
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "overwrite an existing config file")

	rootCmd.AddCommand(runCmd, checkCmd, historyCmd, initCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
