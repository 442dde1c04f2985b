package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	history "github.com/awissink/latedays/internal/store"
)

var (
	historyLimit int
	historyRunID string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List previous runs recorded in the history database",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		db, err := history.New(cfg.ResolvePath(cfg.History.DBPath))
		if err != nil {
			return err
		}
		defer db.Close()

		t := table.New().Border(lipgloss.NormalBorder())
		if historyRunID != "" {
			snaps, err := db.GetLedger(historyRunID)
			if err != nil {
				return err
			}
			t.Headers("uni", "names", "total_late_days", "writ_late_days", "prog_late_days")
			for _, s := range snaps {
				budget := ""
				if s.Budget != nil {
					budget = strconv.Itoa(*s.Budget)
				}
				t.Row(s.ID, s.Name, budget, strconv.Itoa(s.WrittenLateDays), strconv.Itoa(s.ProgrammingLateDays))
			}
			fmt.Fprintln(cmd.OutOrStdout(), t.String())
			return nil
		}

		runs, err := db.ListRuns(historyLimit)
		if err != nil {
			return err
		}
		t.Headers("run id", "started", "status", "dry run", "deadline", "students", "issues", "error")
		for _, r := range runs {
			t.Row(r.ID, r.StartedAt.Local().Format(time.DateTime), r.Status, strconv.FormatBool(r.DryRun),
				r.Deadline, strconv.Itoa(r.LedgerRows), strconv.Itoa(r.IssueCount), r.ErrorMessage)
		}
		fmt.Fprintln(cmd.OutOrStdout(), t.String())
		return nil
	},
}
