package main

import (
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/verte-zerg/rehab/internal/model"
	"github.com/verte-zerg/rehab/internal/stats"
	"github.com/verte-zerg/rehab/internal/statsui"
)

var (
	statsPatient     string
	statsLevel       int
	statsSince       string
	statsLast        int
	statsCurveWindow int
	statsPlain       bool
)

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show a patient's exercise history",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	cmd.Flags().StringVar(&statsPatient, "patient", "", "patient id or name")
	cmd.Flags().IntVar(&statsLevel, "level", 0, "level filter")
	cmd.Flags().StringVar(&statsSince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&statsLast, "last", 0, "limit to last N results")
	cmd.Flags().IntVar(&statsCurveWindow, "curve-window", defaultCurveWindow, "moving average window")
	cmd.Flags().BoolVar(&statsPlain, "plain", false, "print a text report instead of the interactive view")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	since, err := parseSince(statsSince)
	if err != nil {
		return err
	}
	if statsLast < 0 {
		return fmt.Errorf("--last must be >= 0")
	}
	if statsCurveWindow < 1 {
		return fmt.Errorf("--curve-window must be >= 1")
	}

	st, cleanup, err := openStore()
	if err != nil {
		return err
	}
	defer cleanup()

	ref := statsPatient
	if ref == "" {
		if fileCfg, err := loadFileConfig(); err == nil && fileCfg.Exercise.Patient != nil {
			ref = *fileCfg.Exercise.Patient
		}
	}
	if ref == "" {
		return fmt.Errorf("--patient is required")
	}
	patient, err := resolvePatient(cmd.Context(), st, ref)
	if err != nil {
		return err
	}

	cfg := model.HistoryConfig{
		PatientID:   patient.ID,
		Level:       statsLevel,
		Since:       since,
		Last:        statsLast,
		CurveWindow: statsCurveWindow,
	}

	out := cmd.OutOrStdout()
	if statsPlain || !isTerminal(os.Stdout) {
		report, err := stats.BuildReport(cmd.Context(), st, cfg)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(out, "Patient: %s (%d)\n\n", patient.Name, patient.Age); err != nil {
			return err
		}
		return stats.RenderReport(out, report, cfg.CurveWindow, 0, false)
	}

	program := tea.NewProgram(statsui.NewModel(st, patient, cfg), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run stats TUI: %w", err)
	}
	return nil
}

func parseSince(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	parsed, err := time.ParseInLocation(time.DateOnly, s, time.Local)
	if err != nil {
		return nil, fmt.Errorf("invalid --since value: %w", err)
	}
	return &parsed, nil
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
