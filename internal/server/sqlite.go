package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3" // registers the sqlite3 driver

	"github.com/todolite/todolite/internal/models"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS todos (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	title       TEXT    NOT NULL,
	description TEXT,
	completed   BOOLEAN NOT NULL DEFAULT 0
);`

// SQLiteStore keeps todos in a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens path and creates the todos table if needed.
func NewSQLiteStore(ctx context.Context, path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// One connection serializes writers and keeps :memory: databases shared.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create todos table: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) List(ctx context.Context) ([]models.Task, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, title, description, completed FROM todos ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}
	defer rows.Close()

	todos := []models.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		todos = append(todos, task)
	}
	return todos, rows.Err()
}

func (s *SQLiteStore) Get(ctx context.Context, id int64) (models.Task, error) {
	row := s.db.QueryRowContext(ctx, "SELECT id, title, description, completed FROM todos WHERE id = ?", id)
	task, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Task{}, ErrNotFound
	}
	return task, err
}

func (s *SQLiteStore) Create(ctx context.Context, task models.Task) (models.Task, error) {
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO todos (title, description, completed) VALUES (?, ?, ?)",
		task.Title, nullable(task.Description), task.Completed)
	if err != nil {
		return models.Task{}, fmt.Errorf("insert todo: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.Task{}, fmt.Errorf("insert todo: %w", err)
	}
	task.ID = id
	return task, nil
}

func (s *SQLiteStore) Update(ctx context.Context, id int64, task models.Task) (models.Task, error) {
	res, err := s.db.ExecContext(ctx,
		"UPDATE todos SET title = ?, description = ?, completed = ? WHERE id = ?",
		task.Title, nullable(task.Description), task.Completed, id)
	if err != nil {
		return models.Task{}, fmt.Errorf("update todo %d: %w", id, err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return models.Task{}, fmt.Errorf("update todo %d: %w", id, err)
	} else if n == 0 {
		return models.Task{}, ErrNotFound
	}
	task.ID = id
	return task, nil
}

func (s *SQLiteStore) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM todos WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete todo %d: %w", id, err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("delete todo %d: %w", id, err)
	} else if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTask(row scanner) (models.Task, error) {
	var task models.Task
	var desc sql.NullString
	if err := row.Scan(&task.ID, &task.Title, &desc, &task.Completed); err != nil {
		return models.Task{}, err
	}
	if desc.Valid && desc.String != "" {
		task.Description = &desc.String
	}
	return task, nil
}

func nullable(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
