// Package sqlite implements the task store as a standalone board kept in a
// local SQLite database, for use without Taskwarrior.
//
// Urgency is the stored base urgency plus the registered coefficient of the
// task's rank key, mirroring how Taskwarrior applies value-specific UDA
// coefficients.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/taskban/taskban/internal/errors"
	"github.com/taskban/taskban/internal/taskstore"
	"github.com/taskban/taskban/internal/taskstore/sqlite/migrations"
)

// BackendName identifies this backend in errors and logs.
const BackendName = "sqlite"

// DefaultFileName is the database file created in the data directory.
const DefaultFileName = "board.db"

const timeFormat = time.RFC3339

// Store is a SQLite-backed task board.
type Store struct {
	sqlDB *sql.DB
	now   func() time.Time
}

// Open opens (creating if needed) the board at path and applies pending
// migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.NewValidationError("storage path is required").WithField("path")
	}

	cleanPath := filepath.Clean(path)
	if err := runMigrations(cleanPath); err != nil {
		return nil, errors.NewStoreError("failed to migrate board", err).WithBackend(BackendName)
	}

	sqlDB, err := sql.Open("sqlite", dsn(cleanPath))
	if err != nil {
		return nil, errors.NewStoreError("failed to open board", err).WithBackend(BackendName)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, errors.NewStoreError("failed to open board", err).WithBackend(BackendName)
	}

	return &Store{sqlDB: sqlDB, now: time.Now}, nil
}

func dsn(path string) string {
	return path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
}

// runMigrations applies the embedded migrations on a dedicated connection;
// closing the migrator closes the database it was given.
func runMigrations(path string) error {
	db, err := sql.Open("sqlite", dsn(path))
	if err != nil {
		return err
	}
	driver, err := migratesqlite.WithInstance(db, &migratesqlite.Config{})
	if err != nil {
		_ = db.Close()
		return err
	}
	source, err := iofs.New(migrations.FS, ".")
	if err != nil {
		_ = db.Close()
		return err
	}
	m, err := migrate.NewWithInstance("iofs", source, "sqlite", driver)
	if err != nil {
		_ = db.Close()
		return err
	}
	defer m.Close()

	err = m.Up()
	if err == migrate.ErrNoChange {
		return nil
	}
	return err
}

// Close closes the underlying SQLite database.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func (s *Store) storeErr(message string, err error) error {
	return errors.NewStoreError(message, err).WithBackend(BackendName)
}

const taskColumns = `id, uuid, description, project, lane, status, base_urgency, rank_key, estimate`

type rowScanner interface {
	Scan(dest ...any) error
}

type taskRow struct {
	task        taskstore.Task
	baseUrgency float64
}

func scanTask(row rowScanner) (taskRow, error) {
	var (
		r        taskRow
		rankKey  sql.NullFloat64
		estimate sql.NullFloat64
	)
	err := row.Scan(&r.task.ID, &r.task.UUID, &r.task.Description, &r.task.Project,
		&r.task.Lane, &r.task.Status, &r.baseUrgency, &rankKey, &estimate)
	if err != nil {
		return taskRow{}, err
	}
	if rankKey.Valid {
		v := rankKey.Float64
		r.task.RankKey = &v
	}
	if estimate.Valid {
		v := estimate.Float64
		r.task.Estimate = &v
	}
	return r, nil
}

// ListTasks returns the pending tasks matching f sorted by urgency.
func (s *Store) ListTasks(ctx context.Context, f taskstore.Filter) ([]taskstore.Task, error) {
	coefficients, err := s.Coefficients(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE status = ? AND (? = '' OR lane = ?) ORDER BY id`,
		taskstore.StatusPending, f.Lane, f.Lane)
	if err != nil {
		return nil, s.storeErr("failed to list tasks", err)
	}
	defer rows.Close()

	var tasks []taskstore.Task
	for rows.Next() {
		r, err := scanTask(rows)
		if err != nil {
			return nil, s.storeErr("failed to scan task", err)
		}
		if !f.MatchesProject(r.task.Project) {
			continue
		}
		r.task.Urgency = r.baseUrgency + coefficientFor(coefficients, r.task.RankKey)
		tasks = append(tasks, r.task)
	}
	if err := rows.Err(); err != nil {
		return nil, s.storeErr("failed to list tasks", err)
	}

	taskstore.SortByUrgency(tasks)
	return tasks, nil
}

// GetTask returns one task by id.
func (s *Store) GetTask(ctx context.Context, id int) (taskstore.Task, error) {
	coefficients, err := s.Coefficients(ctx)
	if err != nil {
		return taskstore.Task{}, err
	}

	r, err := scanTask(s.sqlDB.QueryRowContext(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return taskstore.Task{}, errors.NewNotFoundError("task", strconv.Itoa(id))
	}
	if err != nil {
		return taskstore.Task{}, s.storeErr("failed to get task", err)
	}
	r.task.Urgency = r.baseUrgency + coefficientFor(coefficients, r.task.RankKey)
	return r.task, nil
}

// SetRankKey updates the rank key of task id.
func (s *Store) SetRankKey(ctx context.Context, id int, value float64) error {
	res, err := s.sqlDB.ExecContext(ctx,
		`UPDATE tasks SET rank_key = ?, modified_at = ? WHERE id = ?`,
		value, s.now().UTC().Format(timeFormat), id)
	if err != nil {
		return s.storeErr("failed to set rank key", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return errors.NewNotFoundError("task", strconv.Itoa(id))
	}
	return nil
}

// RegisterCoefficient records the urgency contribution of rank key value
// under each of its textual encodings.
func (s *Store) RegisterCoefficient(ctx context.Context, value float64) error {
	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return s.storeErr("failed to register coefficient", err)
	}
	defer func() { _ = tx.Rollback() }()

	coefficient := taskstore.FormatRankKey(value)
	for _, key := range taskstore.CoefficientKeys(value) {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO coefficients (key, value) VALUES (?, ?)
			 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
			key, coefficient); err != nil {
			return s.storeErr("failed to register coefficient", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return s.storeErr("failed to register coefficient", err)
	}
	return nil
}

// Coefficients loads the coefficient table. A value that does not parse as a
// number is a configuration error.
func (s *Store) Coefficients(ctx context.Context) (map[string]float64, error) {
	rows, err := s.sqlDB.QueryContext(ctx, `SELECT key, value FROM coefficients`)
	if err != nil {
		return nil, s.storeErr("failed to read coefficients", err)
	}
	defer rows.Close()

	coefficients := make(map[string]float64)
	for rows.Next() {
		var key, raw string
		if err := rows.Scan(&key, &raw); err != nil {
			return nil, s.storeErr("failed to read coefficients", err)
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, errors.NewConfigError(fmt.Sprintf("malformed urgency coefficient %q", raw), err).
				WithKey(key)
		}
		coefficients[key] = v
	}
	if err := rows.Err(); err != nil {
		return nil, s.storeErr("failed to read coefficients", err)
	}
	return coefficients, nil
}

func coefficientFor(coefficients map[string]float64, rankKey *float64) float64 {
	if rankKey == nil {
		return 0
	}
	for _, key := range taskstore.CoefficientKeys(*rankKey) {
		if v, ok := coefficients[key]; ok {
			return v
		}
	}
	return 0
}

// ListProjects returns the distinct non-empty projects of pending tasks.
func (s *Store) ListProjects(ctx context.Context) ([]string, error) {
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT DISTINCT project FROM tasks WHERE status = ? AND project <> ''`,
		taskstore.StatusPending)
	if err != nil {
		return nil, s.storeErr("failed to list projects", err)
	}
	defer rows.Close()

	var projects []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, s.storeErr("failed to list projects", err)
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, s.storeErr("failed to list projects", err)
	}
	sort.Strings(projects)
	return projects, nil
}

// AddTask inserts a pending task.
func (s *Store) AddTask(ctx context.Context, nt taskstore.NewTask) (taskstore.Task, error) {
	if strings.TrimSpace(nt.Description) == "" {
		return taskstore.Task{}, errors.NewValidationError("task description must not be empty").
			WithField("description")
	}

	now := s.now().UTC().Format(timeFormat)
	var estimate sql.NullFloat64
	if nt.Estimate != nil {
		estimate = sql.NullFloat64{Float64: *nt.Estimate, Valid: true}
	}

	res, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO tasks (uuid, description, project, lane, status, base_urgency, estimate, created_at, modified_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		uuid.NewString(), nt.Description, nt.Project, nt.Lane, taskstore.StatusPending,
		nt.BaseUrgency, estimate, now, now)
	if err != nil {
		return taskstore.Task{}, s.storeErr("failed to add task", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return taskstore.Task{}, s.storeErr("failed to add task", err)
	}
	return s.GetTask(ctx, int(id))
}
