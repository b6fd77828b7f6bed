package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/verte-zerg/rehab/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "rehab.db"), nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() {
		if err := st.Close(); err != nil {
			t.Fatalf("close: %v", err)
		}
	})
	return st
}

func sampleResult(session string, level int, success bool, score int, ended time.Time) model.ExerciseResult {
	return model.ExerciseResult{
		SessionID:     session,
		Level:         level,
		LevelName:     "static target",
		Completed:     true,
		Success:       success,
		Score:         score,
		Hits:          4,
		Misses:        1,
		Precision:     80,
		MaxCombo:      2,
		AvgVelocity:   210.5,
		MovementRange: 420,
		AvgReactionMs: 900,
		Consistency:   75,
		PathLength:    5000,
		Elapsed:       60 * time.Second,
		StartedAt:     ended.Add(-time.Minute),
		EndedAt:       ended,
	}
}

func TestRegisterPatientRejectsDuplicates(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	p, err := st.RegisterPatient(ctx, "  Ana Perez ", 54)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if p.Name != "Ana Perez" || p.ID == "" {
		t.Fatalf("unexpected patient: %+v", p)
	}
	if _, err := st.RegisterPatient(ctx, "ana perez", 54); !errors.Is(err, ErrPatientExists) {
		t.Fatalf("expected ErrPatientExists, got %v", err)
	}
	if _, err := st.RegisterPatient(ctx, "Ana Perez", 30); err != nil {
		t.Fatalf("same name with different age should register: %v", err)
	}
	if _, err := st.RegisterPatient(ctx, "", 30); err == nil {
		t.Fatalf("expected error for empty name")
	}

	patients, err := st.ListPatients(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(patients) != 2 {
		t.Fatalf("expected 2 patients, got %d", len(patients))
	}
}

func TestResolvePatient(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	p, err := st.RegisterPatient(ctx, "Luis", 61)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	got, err := st.ResolvePatient(ctx, "LUIS")
	if err != nil || got.ID != p.ID {
		t.Fatalf("resolve by name: %+v, %v", got, err)
	}
	got, err = st.ResolvePatient(ctx, p.ID)
	if err != nil || got.Name != "Luis" {
		t.Fatalf("resolve by id: %+v, %v", got, err)
	}
	if _, err := st.ResolvePatient(ctx, "nobody"); !errors.Is(err, ErrPatientNotFound) {
		t.Fatalf("expected ErrPatientNotFound, got %v", err)
	}
	if _, err := st.RegisterPatient(ctx, "luis", 40); err != nil {
		t.Fatalf("register second: %v", err)
	}
	if _, err := st.ResolvePatient(ctx, "Luis"); err == nil {
		t.Fatalf("expected ambiguous name error")
	}
}

func TestRecordAndListResults(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	p, err := st.RegisterPatient(ctx, "Marta", 70)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		level := 1
		if i >= 3 {
			level = 2
		}
		res := sampleResult("s"+string(rune('a'+i)), level, i%2 == 0, 100+i, base.Add(time.Duration(i)*time.Hour))
		if err := st.Record(ctx, p.ID, level, res); err != nil {
			t.Fatalf("record %d: %v", i, err)
		}
	}

	all, err := st.ListResults(ctx, model.HistoryConfig{PatientID: p.ID})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 5 {
		t.Fatalf("expected 5 results, got %d", len(all))
	}
	if all[0].SessionID != "sa" || all[4].SessionID != "se" {
		t.Fatalf("expected oldest first, got %s..%s", all[0].SessionID, all[4].SessionID)
	}
	if all[0].Elapsed != 60*time.Second || !all[0].Completed || !all[0].Success || all[0].AvgVelocity != 210.5 {
		t.Fatalf("unexpected round trip: %+v", all[0])
	}
	if !all[0].EndedAt.Equal(base) {
		t.Fatalf("expected ended at %v, got %v", base, all[0].EndedAt)
	}

	last, err := st.ListResults(ctx, model.HistoryConfig{PatientID: p.ID, Last: 2})
	if err != nil {
		t.Fatalf("list last: %v", err)
	}
	if len(last) != 2 || last[0].SessionID != "sd" || last[1].SessionID != "se" {
		t.Fatalf("unexpected last results: %+v", last)
	}

	since := base.Add(90 * time.Minute)
	filtered, err := st.ListResults(ctx, model.HistoryConfig{PatientID: p.ID, Level: 1, Since: &since})
	if err != nil {
		t.Fatalf("list filtered: %v", err)
	}
	if len(filtered) != 1 || filtered[0].SessionID != "sc" {
		t.Fatalf("unexpected filtered results: %+v", filtered)
	}

	aggs, err := st.LevelAggregates(ctx, p.ID)
	if err != nil {
		t.Fatalf("aggregates: %v", err)
	}
	if len(aggs) != 2 {
		t.Fatalf("expected 2 levels, got %d", len(aggs))
	}
	if aggs[0].Sessions != 3 || aggs[0].Successful != 2 || aggs[0].BestScore != 102 {
		t.Fatalf("unexpected level 1 aggregate: %+v", aggs[0])
	}
	if aggs[1].Sessions != 2 || aggs[1].Successful != 1 {
		t.Fatalf("unexpected level 2 aggregate: %+v", aggs[1])
	}
}

func TestRecordUnknownPatient(t *testing.T) {
	st := openTestStore(t)
	err := st.Record(context.Background(), "missing", 1, sampleResult("x", 1, true, 10, time.Now()))
	if !errors.Is(err, ErrPatientNotFound) {
		t.Fatalf("expected ErrPatientNotFound, got %v", err)
	}
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rehab.db")
	st, err := Open(path, nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := st.RegisterPatient(context.Background(), "Rosa", 45); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := st.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	st, err = Open(path, nil)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer func() {
		if err := st.Close(); err != nil {
			t.Fatalf("close: %v", err)
		}
	}()
	patients, err := st.ListPatients(context.Background())
	if err != nil || len(patients) != 1 {
		t.Fatalf("expected 1 patient after reopen, got %d (%v)", len(patients), err)
	}
}
