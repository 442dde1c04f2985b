package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/awissink/latedays/internal/config"
	"github.com/awissink/latedays/internal/report"
	"github.com/awissink/latedays/internal/service/pipeline"
)

// 命令行覆盖配置文件中的输入路径
type runFlags struct {
	roster      string
	written     string
	programming string
	outDir      string
	dryRun      bool
}

var flags runFlags

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Compute late days and write the ledger and re-import files",
	RunE:  runReconcile,
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Load and compute everything, print diagnostics, write nothing",
	RunE: func(cmd *cobra.Command, args []string) error {
		flags.dryRun = true
		return runReconcile(cmd, args)
	},
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&flags.roster, "roster", "", "Courseworks roster export")
	cmd.Flags().StringVar(&flags.written, "written", "", "Gradescope written-assignment report")
	cmd.Flags().StringVar(&flags.programming, "programming", "", "Codio programming-assignment report")
	cmd.Flags().StringVarP(&flags.outDir, "out-dir", "o", "", "directory for output files")
	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "do not write output files")
}

func loadConfig() (*config.AppConfig, error) {
	cfg, info, err := config.LoadConfigWithInfo(configPath)
	if err != nil {
		return nil, err
	}
	if info.Found {
		logger.Debug("config loaded", zap.String("path", info.Path))
	} else {
		logger.Debug("config not found, using defaults", zap.String("path", info.Path))
	}

	if flags.roster != "" {
		cfg.Files.Roster = flags.roster
	}
	if flags.written != "" {
		cfg.Files.Written = flags.written
	}
	if flags.programming != "" {
		cfg.Files.Programming = flags.programming
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runReconcile(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	res, err := pipeline.NewRunner(cfg, logger).Run(ctx, pipeline.Options{
		DryRun: flags.dryRun,
		OutDir: flags.outDir,
	})
	if err != nil {
		return err
	}

	printer := report.NewPrinter(cmd.OutOrStdout())
	printer.Print(res.Diagnostics)
	printer.Summary(res.RunID, res.Report, len(res.Ledger.Rows), res.Written)
	return nil
}
