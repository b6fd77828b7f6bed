// Package model defines shared data structures.
package model

import "time"

// Config defines exercise settings resolved from flags and the config file.
type Config struct {
	Patient     string
	Level       int
	DurationSec int
	FPS         int
	Seed        int64
	HoldMs      int
}

// PatientContext identifies the patient an exercise session belongs to.
// It is passed explicitly into every session.
type PatientContext struct {
	ID   string
	Name string
}

// Anonymous reports whether no patient is attached.
func (p PatientContext) Anonymous() bool {
	return p.ID == ""
}

// Patient is a registered patient.
type Patient struct {
	ID        string
	Name      string
	Age       int
	CreatedAt time.Time
}

// Context returns the session context for the patient.
func (p Patient) Context() PatientContext {
	return PatientContext{ID: p.ID, Name: p.Name}
}

// ExerciseResult is the immutable outcome of one exercise session.
type ExerciseResult struct {
	SessionID     string
	PatientID     string
	Level         int
	LevelName     string
	Completed     bool
	Success       bool
	Score         int
	Hits          int
	Misses        int
	Precision     float64 // percent
	MaxCombo      int
	AvgVelocity   float64 // px/s
	MovementRange float64 // px
	AvgReactionMs float64
	Consistency   float64 // percent
	PathLength    float64 // px
	Elapsed       time.Duration
	StartedAt     time.Time
	EndedAt       time.Time
}

// ResultRecord is a stored exercise result.
type ResultRecord struct {
	ID int64
	ExerciseResult
}

// HistoryConfig defines filters and options for history output.
type HistoryConfig struct {
	PatientID   string
	Level       int
	Since       *time.Time
	Last        int
	CurveWindow int
}

// LevelAggregate summarizes the results recorded for one level.
type LevelAggregate struct {
	Level        int
	LevelName    string
	Sessions     int
	Successful   int
	BestScore    int
	AvgPrecision float64
	AvgReaction  float64
}
