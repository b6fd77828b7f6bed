package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/verte-zerg/rehab/internal/config"
	"github.com/verte-zerg/rehab/internal/engine"
	"github.com/verte-zerg/rehab/internal/generator"
	"github.com/verte-zerg/rehab/internal/model"
	"github.com/verte-zerg/rehab/internal/runner"
	"github.com/verte-zerg/rehab/internal/script"
	"github.com/verte-zerg/rehab/internal/stats"
	"github.com/verte-zerg/rehab/internal/store"
)

const defaultAutopilotLag = 12

var (
	simLevel     int
	simSeed      int64
	simScript    string
	simAutopilot bool
	simLag       int
	simLoop      bool
	simRecord    bool
	simPatient   string
	simFPS       int
	simDuration  int
	simRealtime  bool
)

func newSimulateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run an exercise headlessly with scripted or automatic input",
		Args:  cobra.NoArgs,
		RunE:  runSimulateCmd,
	}
	cmd.Flags().IntVar(&simLevel, "level", 1, "exercise level")
	cmd.Flags().Int64Var(&simSeed, "seed", 0, "random seed (0 picks one and prints it)")
	cmd.Flags().StringVar(&simScript, "script", "", "input script file")
	cmd.Flags().BoolVar(&simAutopilot, "autopilot", false, "steer toward the target automatically")
	cmd.Flags().IntVar(&simLag, "lag", defaultAutopilotLag, "autopilot reaction delay in frames")
	cmd.Flags().BoolVar(&simLoop, "loop", false, "repeat the script until the session ends")
	cmd.Flags().BoolVar(&simRecord, "record", false, "store the result for --patient")
	cmd.Flags().StringVar(&simPatient, "patient", "", "patient id or name")
	cmd.Flags().IntVar(&simFPS, "fps", runner.DefaultFPS, "simulated frames per second")
	cmd.Flags().IntVar(&simDuration, "duration", 0, "session length in seconds (0 keeps the level default)")
	cmd.Flags().BoolVar(&simRealtime, "realtime", false, "pace frames in real time")
	return cmd
}

func runSimulateCmd(cmd *cobra.Command, _ []string) error {
	if simScript != "" && simAutopilot {
		return fmt.Errorf("--script and --autopilot are mutually exclusive")
	}
	if simRecord && simPatient == "" {
		return fmt.Errorf("--record needs --patient")
	}
	if simFPS <= 0 {
		return fmt.Errorf("--fps must be > 0")
	}
	fileCfg, err := loadFileConfig()
	if err != nil {
		return err
	}
	levels, err := fileCfg.ResolveLevels()
	if err != nil {
		return err
	}

	log := newLogger(fileCfg.Log, consoleSink())
	defer syncLogger(log)

	var (
		st      *store.Store
		patient model.Patient
	)
	if simPatient != "" {
		st, err = store.Open(config.DefaultDBPath(), log)
		if err != nil {
			return fmt.Errorf("failed to open db: %w", err)
		}
		defer closeStore(st)
		patient, err = resolvePatient(cmd.Context(), st, simPatient)
		if err != nil {
			return err
		}
	}

	lvl, err := chooseLevel(cmd.Context(), st, levels, simLevel, patient.ID)
	if err != nil {
		return err
	}
	lvl, err = withDuration(lvl, simDuration)
	if err != nil {
		return err
	}

	gen := generator.New()
	if simSeed != 0 {
		gen = generator.NewSeeded(simSeed)
	}
	session, err := engine.Start(lvl, patient.Context(),
		engine.WithRandom(gen),
		engine.WithLogger(log))
	if err != nil {
		return err
	}

	src, err := simulationInput(session)
	if err != nil {
		return err
	}

	opts := []runner.Option{runner.WithLogger(log)}
	if !simRealtime {
		opts = append(opts, runner.Unpaced())
	}
	if simRecord {
		opts = append(opts, runner.WithRecorder(st))
	}
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	log.Info("simulating",
		zap.Int("exercise_level", lvl.ID),
		zap.Int64("seed", gen.Seed()),
		zap.String("script", simScript),
		zap.Bool("autopilot", simAutopilot))
	res, runErr := runner.New(simFPS, opts...).Run(ctx, session, src)
	if res.SessionID != "" {
		out := cmd.OutOrStdout()
		if _, err := fmt.Fprintf(out, "Seed: %d\n", gen.Seed()); err != nil {
			return err
		}
		if err := stats.RenderResult(out, res); err != nil {
			return err
		}
	}
	return runErr
}

// simulationInput picks the input source from the flags; with none given
// the actor stays idle.
func simulationInput(session *engine.Session) (engine.InputSource, error) {
	switch {
	case simAutopilot:
		return script.NewAutopilot(session, simLag), nil
	case simScript != "":
		sc, err := script.Load(scriptPath(simScript))
		if err != nil {
			return nil, fmt.Errorf("failed to load script: %w", err)
		}
		sc.Loop = simLoop
		return sc, nil
	}
	return engine.InputFunc(func(uint64) engine.Input { return engine.Input{} }), nil
}

// scriptPath falls back to the scripts directory for relative paths that do
// not exist in the working directory.
func scriptPath(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	if _, err := os.Stat(path); err == nil {
		return path
	}
	candidate := filepath.Join(config.DefaultScriptDir(), path)
	if _, err := os.Stat(candidate); err == nil {
		return candidate
	}
	return path
}
