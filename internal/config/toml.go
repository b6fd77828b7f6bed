// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/verte-zerg/rehab/internal/level"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Exercise ExerciseConfig `toml:"exercise"`
	Log      LogConfig      `toml:"log"`
	Levels   []LevelConfig  `toml:"levels"`
}

// ExerciseConfig maps exercise-related settings.
type ExerciseConfig struct {
	Patient     *string `toml:"patient"`
	Level       *int    `toml:"level"`
	DurationSec *int    `toml:"duration-sec"`
	FPS         *int    `toml:"fps"`
	Seed        *int64  `toml:"seed"`
	HoldMs      *int    `toml:"hold-ms"`
}

// LogConfig maps logging settings.
type LogConfig struct {
	Level      *string `toml:"level"`
	File       *string `toml:"file"`
	Format     *string `toml:"format"`
	MaxSize    *int    `toml:"max-size"`
	MaxBackups *int    `toml:"max-backups"`
	MaxAge     *int    `toml:"max-age"`
	Compress   *bool   `toml:"compress"`
}

// LevelConfig overrides parameters of the level with the same id.
type LevelConfig struct {
	ID                 int      `toml:"id"`
	Name               *string  `toml:"name"`
	ArenaWidth         *float64 `toml:"arena-width"`
	ArenaHeight        *float64 `toml:"arena-height"`
	ActorSize          *float64 `toml:"actor-size"`
	ActorSpeed         *float64 `toml:"actor-speed"`
	TargetSize         *float64 `toml:"target-size"`
	Policy             *string  `toml:"policy"`
	BaseSpeed          *float64 `toml:"base-speed"`
	MaxSpeed           *float64 `toml:"max-speed"`
	BounceDamping      *float64 `toml:"bounce-damping"`
	BounceKick         *float64 `toml:"bounce-kick"`
	PerturbChance      *float64 `toml:"perturb-chance"`
	PerturbMagnitude   *float64 `toml:"perturb-magnitude"`
	BasePoints         *int     `toml:"base-points"`
	ComboBonusRate     *float64 `toml:"combo-bonus-rate"`
	ComboGraceMs       *int     `toml:"combo-grace-ms"`
	MissTimeoutMs      *int     `toml:"miss-timeout-ms"`
	DurationSec        *int     `toml:"duration-sec"`
	PrecisionThreshold *float64 `toml:"precision-threshold"`
	MinHits            *int     `toml:"min-hits"`
	ParticleCount      *int     `toml:"particle-count"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	return cfg, nil
}

// Apply returns l with every set field replaced.
func (c LevelConfig) Apply(l level.Level) level.Level {
	setString(&l.Name, c.Name)
	setFloat(&l.ArenaWidth, c.ArenaWidth)
	setFloat(&l.ArenaHeight, c.ArenaHeight)
	setFloat(&l.ActorSize, c.ActorSize)
	setFloat(&l.ActorSpeed, c.ActorSpeed)
	setFloat(&l.TargetSize, c.TargetSize)
	if c.Policy != nil {
		l.Policy = level.Policy(*c.Policy)
	}
	setFloat(&l.BaseSpeed, c.BaseSpeed)
	setFloat(&l.MaxSpeed, c.MaxSpeed)
	setFloat(&l.BounceDamping, c.BounceDamping)
	setFloat(&l.BounceKick, c.BounceKick)
	setFloat(&l.PerturbChance, c.PerturbChance)
	setFloat(&l.PerturbMagnitude, c.PerturbMagnitude)
	setInt(&l.BasePoints, c.BasePoints)
	setFloat(&l.ComboBonusRate, c.ComboBonusRate)
	setDuration(&l.ComboGrace, c.ComboGraceMs, time.Millisecond)
	setDuration(&l.MissTimeout, c.MissTimeoutMs, time.Millisecond)
	setDuration(&l.Duration, c.DurationSec, time.Second)
	setFloat(&l.PrecisionThreshold, c.PrecisionThreshold)
	setInt(&l.MinHits, c.MinHits)
	setInt(&l.ParticleCount, c.ParticleCount)
	return l
}

// ResolveLevels returns the built-in levels with the file overrides applied.
// Every resulting level is validated.
func (c FileConfig) ResolveLevels() ([]level.Level, error) {
	levels := level.Defaults()
	for _, o := range c.Levels {
		idx := -1
		for i, l := range levels {
			if l.ID == o.ID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return nil, fmt.Errorf("config [[levels]] id %d: %w", o.ID, level.ErrUnknownLevel)
		}
		levels[idx] = o.Apply(levels[idx])
	}
	for _, l := range levels {
		if err := l.Validate(); err != nil {
			return nil, err
		}
	}
	return levels, nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setFloat(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func setDuration(dst *time.Duration, v *int, unit time.Duration) {
	if v != nil {
		*dst = time.Duration(*v) * unit
	}
}
