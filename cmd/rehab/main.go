// Package main provides the CLI entrypoint for rehab.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/verte-zerg/rehab/internal/config"
	"github.com/verte-zerg/rehab/internal/level"
	"github.com/verte-zerg/rehab/internal/logging"
	"github.com/verte-zerg/rehab/internal/model"
	"github.com/verte-zerg/rehab/internal/runner"
	"github.com/verte-zerg/rehab/internal/stats"
	"github.com/verte-zerg/rehab/internal/store"
	"github.com/verte-zerg/rehab/internal/tui"
)

const (
	defaultHoldMs      = 120
	defaultCurveWindow = 10
)

var (
	exercisePatient  string
	exerciseLevel    int
	exerciseDuration int
	exerciseFPS      int
	exerciseSeed     int64
	exerciseHoldMs   int

	verbose bool
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "rehab",
		Short:         "Terminal motor rehabilitation exercises",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runExerciseCmd,
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "also log to stderr (non-interactive commands)")

	rootCmd.Flags().StringVar(&exercisePatient, "patient", "", "patient id or name (results are not saved without one)")
	rootCmd.Flags().IntVar(&exerciseLevel, "level", 0, "exercise level (0 picks one from recent results)")
	rootCmd.Flags().IntVar(&exerciseDuration, "duration", 0, "session length in seconds (0 keeps the level default)")
	rootCmd.Flags().IntVar(&exerciseFPS, "fps", runner.DefaultFPS, "frames per second")
	rootCmd.Flags().Int64Var(&exerciseSeed, "seed", 0, "random seed for target placement (0 is random)")
	rootCmd.Flags().IntVar(&exerciseHoldMs, "hold-ms", defaultHoldMs, "how long a key press counts as held")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newLevelsCmd())
	rootCmd.AddCommand(newPatientCmd())
	rootCmd.AddCommand(newSimulateCmd())
	rootCmd.AddCommand(newStatsCmd())

	return rootCmd
}

func runExerciseCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := loadFileConfig()
	if err != nil {
		return err
	}
	applyStringConfig(cmd, "patient", &exercisePatient, fileCfg.Exercise.Patient)
	applyIntConfig(cmd, "level", &exerciseLevel, fileCfg.Exercise.Level)
	applyIntConfig(cmd, "duration", &exerciseDuration, fileCfg.Exercise.DurationSec)
	applyIntConfig(cmd, "fps", &exerciseFPS, fileCfg.Exercise.FPS)
	applyInt64Config(cmd, "seed", &exerciseSeed, fileCfg.Exercise.Seed)
	applyIntConfig(cmd, "hold-ms", &exerciseHoldMs, fileCfg.Exercise.HoldMs)

	cfg := model.Config{
		Patient:     exercisePatient,
		Level:       exerciseLevel,
		DurationSec: exerciseDuration,
		FPS:         exerciseFPS,
		Seed:        exerciseSeed,
		HoldMs:      exerciseHoldMs,
	}
	if err := validateConfig(cfg); err != nil {
		return err
	}
	levels, err := fileCfg.ResolveLevels()
	if err != nil {
		return err
	}

	// The TUI owns the terminal, so the console core stays off.
	log := newLogger(fileCfg.Log, nil)
	defer syncLogger(log)

	st, err := store.Open(config.DefaultDBPath(), log)
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer closeStore(st)

	ctx := cmd.Context()
	patient, err := resolvePatient(ctx, st, cfg.Patient)
	if err != nil {
		return err
	}
	lvl, err := chooseLevel(ctx, st, levels, cfg.Level, patient.ID)
	if err != nil {
		return err
	}
	lvl, err = withDuration(lvl, cfg.DurationSec)
	if err != nil {
		return err
	}
	log.Info("starting exercise",
		zap.Int("exercise_level", lvl.ID),
		zap.String("patient", patient.ID),
		zap.Int("fps", cfg.FPS))

	m, err := tui.NewModel(tui.Options{
		Level:   lvl,
		Patient: patient.Context(),
		FPS:     cfg.FPS,
		Hold:    time.Duration(cfg.HoldMs) * time.Millisecond,
		Seed:    cfg.Seed,
	}, st, log)
	if err != nil {
		return err
	}
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	if res, ok := m.Result(); ok {
		return stats.RenderResult(cmd.OutOrStdout(), res)
	}
	return nil
}

// resolvePatient returns the zero patient for an empty reference.
func resolvePatient(ctx context.Context, st *store.Store, ref string) (model.Patient, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return model.Patient{}, nil
	}
	p, err := st.ResolvePatient(ctx, ref)
	if errors.Is(err, store.ErrPatientNotFound) {
		return model.Patient{}, fmt.Errorf("%w: %q (register with: rehab patient register --name <name> --age <age>)", err, ref)
	}
	return p, err
}

// chooseLevel returns the level with the given id, or the suggested level
// for the patient when id is 0.
func chooseLevel(ctx context.Context, src stats.HistorySource, levels []level.Level, id int, patientID string) (level.Level, error) {
	if id == 0 {
		var results []model.ResultRecord
		if patientID != "" {
			var err error
			results, err = src.ListResults(ctx, model.HistoryConfig{PatientID: patientID})
			if err != nil {
				return level.Level{}, fmt.Errorf("failed to load history: %w", err)
			}
		}
		id = stats.SuggestLevel(results, level.IDs(levels))
	}
	return level.Lookup(levels, id)
}

func withDuration(lvl level.Level, seconds int) (level.Level, error) {
	if seconds <= 0 {
		return lvl, nil
	}
	lvl.Duration = time.Duration(seconds) * time.Second
	return lvl, lvl.Validate()
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := writeConfigTemplate(path); err != nil {
		return err
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

// writeConfigTemplate creates the config file unless it already exists.
func writeConfigTemplate(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to stat config: %w", err)
	}
	if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func newLevelsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "levels",
		Short: "List exercise levels",
		Args:  cobra.NoArgs,
		RunE:  runLevelsCmd,
	}
}

func runLevelsCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := loadFileConfig()
	if err != nil {
		return err
	}
	levels, err := fileCfg.ResolveLevels()
	if err != nil {
		return err
	}
	headers := []string{"Level", "Name", "Target", "Size", "Speed", "Points", "Pass", "Time"}
	rows := make([][]string, 0, len(levels))
	for _, l := range levels {
		speed := "-"
		if l.Moving() {
			speed = fmt.Sprintf("%.0f-%.0f", l.BaseSpeed, l.MaxSpeed)
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", l.ID),
			l.Name,
			string(l.Policy),
			fmt.Sprintf("%.0f", l.TargetSize),
			speed,
			fmt.Sprintf("%d", l.BasePoints),
			fmt.Sprintf("%.0f%% / %d hits", l.PrecisionThreshold, l.MinHits),
			stats.FormatDuration(l.Duration),
		})
	}
	for _, line := range stats.FormatTable(headers, rows, map[int]bool{0: true, 3: true, 5: true}) {
		if _, err := fmt.Fprintln(cmd.OutOrStdout(), line); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func loadFileConfig() (config.FileConfig, error) {
	cfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return config.FileConfig{}, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

func newLogger(c config.LogConfig, console zapcore.WriteSyncer) *zap.Logger {
	cfg := logging.Config{
		Level:   "info",
		File:    config.DefaultLogPath(),
		Format:  "console",
		Console: console,
	}
	setString(&cfg.Level, c.Level)
	setString(&cfg.File, c.File)
	setString(&cfg.Format, c.Format)
	setInt(&cfg.MaxSize, c.MaxSize)
	setInt(&cfg.MaxBackups, c.MaxBackups)
	setInt(&cfg.MaxAge, c.MaxAge)
	if c.Compress != nil {
		cfg.Compress = *c.Compress
	}
	return logging.New(cfg)
}

// consoleSink returns stderr when --verbose is set.
func consoleSink() zapcore.WriteSyncer {
	if !verbose {
		return nil
	}
	return zapcore.Lock(os.Stderr)
}

func syncLogger(log *zap.Logger) {
	if err := logging.Sync(log); err != nil {
		logErrf("failed to flush log: %v\n", err)
	}
}

func closeStore(st *store.Store) {
	if err := st.Close(); err != nil {
		logErrf("failed to close db: %v\n", err)
	}
}

func setString(dst, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setInt(dst, v *int) {
	if v != nil {
		*dst = *v
	}
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil || cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil || cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyInt64Config(cmd *cobra.Command, name string, target, value *int64) {
	if value == nil || cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# rehab configuration
# Uncomment a value to enable it. CLI flags override config values.

[exercise]
# patient = "Ana"          # Patient id or name used when --patient is not given
# level = 0                # 0 picks the level from recent results
# duration-sec = 0         # 0 keeps the level default
# fps = %d
# seed = 0                 # Fixed target placement when non-zero
# hold-ms = %d            # How long a key press counts as held

[log]
# level = "info"           # debug, info, warn, error
# file = %q
# format = "console"       # console or json (stderr output with --verbose)
# max-size = 10            # Megabytes before rotation
# max-backups = 3
# max-age = 28             # Days
# compress = false

# Per-level overrides. Only the keys you set change.
# [[levels]]
# id = 2
# duration-sec = 90
# base-speed = 1.5
# max-speed = 6
# precision-threshold = 45
# min-hits = 5
# miss-timeout-ms = 0      # 0 disables misses
# combo-grace-ms = 0       # Time allowed between hits without losing the combo
`,
		runner.DefaultFPS,
		defaultHoldMs,
		config.DefaultLogPath(),
	)
}

func validateConfig(cfg model.Config) error {
	if cfg.Level < 0 {
		return fmt.Errorf("--level must be >= 0")
	}
	if cfg.DurationSec < 0 {
		return fmt.Errorf("--duration must be >= 0")
	}
	if cfg.FPS <= 0 || cfg.FPS > 240 {
		return fmt.Errorf("--fps must be between 1 and 240")
	}
	if cfg.HoldMs <= 0 {
		return fmt.Errorf("--hold-ms must be > 0")
	}
	return nil
}

func logErrf(format string, args ...any) {
	_, _ = fmt.Fprintf(os.Stderr, format, args...)
}
