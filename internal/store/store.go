// Package store handles SQLite persistence of patients and exercise results.
package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"

	"github.com/verte-zerg/rehab/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// timeLayout has a fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

//go:embed migrations/*.sql
var migrations embed.FS

var (
	// ErrPatientExists reports a duplicate name and age registration.
	ErrPatientExists = errors.New("patient already registered")
	// ErrPatientNotFound reports an unknown patient id or name.
	ErrPatientNotFound = errors.New("patient not found")
)

// Store wraps SQLite access for patients and results.
type Store struct {
	db  *sql.DB
	log *zap.Logger
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string, log *zap.Logger) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, err
	}
	store := &Store{db: db, log: log}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, fmt.Errorf("migrate %s: %w", path, err)
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	goose.SetBaseFS(migrations)
	goose.SetLogger(gooseLogger{log: s.log.Named("migrate")})
	if err := goose.SetDialect("sqlite3"); err != nil {
		return err
	}
	return goose.Up(s.db, "migrations")
}

// gooseLogger forwards migration output to zap. Fatalf does not exit so
// the error returned by goose reaches the caller.
type gooseLogger struct {
	log *zap.Logger
}

func (l gooseLogger) Printf(format string, v ...interface{}) {
	l.log.Debug(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (l gooseLogger) Fatalf(format string, v ...interface{}) {
	l.log.Error(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

// RegisterPatient stores a new patient. Names compare case-insensitively.
func (s *Store) RegisterPatient(ctx context.Context, name string, age int) (model.Patient, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Patient{}, fmt.Errorf("patient name is required")
	}
	if age <= 0 || age > 150 {
		return model.Patient{}, fmt.Errorf("patient age must be between 1 and 150, got %d", age)
	}

	var exists int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM patients WHERE name = ? COLLATE NOCASE AND age = ?`, name, age).Scan(&exists)
	if err != nil {
		return model.Patient{}, err
	}
	if exists > 0 {
		return model.Patient{}, fmt.Errorf("%w: %s (%d)", ErrPatientExists, name, age)
	}

	p := model.Patient{
		ID:        uuid.NewString(),
		Name:      name,
		Age:       age,
		CreatedAt: time.Now().UTC(),
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO patients (id, name, age, created_at) VALUES (?, ?, ?, ?)`,
		p.ID, p.Name, p.Age, p.CreatedAt.Format(timeLayout))
	if err != nil {
		return model.Patient{}, err
	}
	s.log.Info("patient registered", zap.String("patient", p.ID))
	return p, nil
}

// GetPatient returns the patient with the given id.
func (s *Store) GetPatient(ctx context.Context, id string) (model.Patient, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, age, created_at FROM patients WHERE id = ?`, id)
	p, err := scanPatient(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Patient{}, fmt.Errorf("%w: %s", ErrPatientNotFound, id)
	}
	return p, err
}

// FindPatients returns patients whose name matches case-insensitively.
func (s *Store) FindPatients(ctx context.Context, name string) ([]model.Patient, error) {
	return s.queryPatients(ctx,
		`SELECT id, name, age, created_at FROM patients WHERE name = ? COLLATE NOCASE ORDER BY created_at ASC`,
		strings.TrimSpace(name))
}

// ListPatients returns every patient ordered by name.
func (s *Store) ListPatients(ctx context.Context) ([]model.Patient, error) {
	return s.queryPatients(ctx,
		`SELECT id, name, age, created_at FROM patients ORDER BY name COLLATE NOCASE ASC, age ASC`)
}

// ResolvePatient looks a patient up by id, then by unique name.
func (s *Store) ResolvePatient(ctx context.Context, ref string) (model.Patient, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return model.Patient{}, fmt.Errorf("%w: empty reference", ErrPatientNotFound)
	}
	if _, err := uuid.Parse(ref); err == nil {
		return s.GetPatient(ctx, ref)
	}
	matches, err := s.FindPatients(ctx, ref)
	if err != nil {
		return model.Patient{}, err
	}
	switch len(matches) {
	case 0:
		return model.Patient{}, fmt.Errorf("%w: %s", ErrPatientNotFound, ref)
	case 1:
		return matches[0], nil
	}
	ids := make([]string, len(matches))
	for i, p := range matches {
		ids[i] = fmt.Sprintf("%s (age %d)", p.ID, p.Age)
	}
	return model.Patient{}, fmt.Errorf("patient name %q is ambiguous, use an id: %s", ref, strings.Join(ids, ", "))
}

func (s *Store) queryPatients(ctx context.Context, query string, args ...any) ([]model.Patient, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var patients []model.Patient
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, err
		}
		patients = append(patients, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return patients, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPatient(row scanner) (model.Patient, error) {
	var p model.Patient
	var created string
	if err := row.Scan(&p.ID, &p.Name, &p.Age, &created); err != nil {
		return model.Patient{}, err
	}
	parsed, err := time.Parse(timeLayout, created)
	if err != nil {
		return model.Patient{}, err
	}
	p.CreatedAt = parsed
	return p, nil
}
