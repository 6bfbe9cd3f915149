package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"

	// Pure-Go SQLite driver.
	_ "modernc.org/sqlite"

	"github.com/amirenger/My-Final-Telegram-Bot/internal/models"
)

// SQLiteStorage persists the project mapping in SQLite.
type SQLiteStorage struct {
	path string
	db   *sql.DB
}

// NewSQLiteStorage creates a new SQLite storage.
func NewSQLiteStorage(path string) *SQLiteStorage {
	return &SQLiteStorage{path: path}
}

// Open initializes the database connection and applies migrations.
func (s *SQLiteStorage) Open() error {
	ctx := context.Background()

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return fmt.Errorf("open database: %v: %w", err, ErrUnavailable)
	}

	// SQLite is single-writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return fmt.Errorf("ping database: %v: %w", err, ErrUnavailable)
	}

	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
	}
	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return fmt.Errorf("execute %s: %w", pragma, err)
		}
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return fmt.Errorf("migrate database: %w", err)
	}

	s.db = db
	return nil
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Load reads the full project mapping.
func (s *SQLiteStorage) Load(ctx context.Context) (ProjectMap, error) {
	projects := ProjectMap{}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, client_chat_id, editor_chat_id, created_at, updated_at
		FROM projects
	`)
	if err != nil {
		return nil, fmt.Errorf("list projects: %v: %w", err, ErrUnavailable)
	}
	defer rows.Close()

	for rows.Next() {
		p := &models.Project{}
		err := rows.Scan(&p.ID, &p.Name, &p.ClientID, &p.EditorID, &p.CreatedAt, &p.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		projects[p.ID] = p
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}

	subRows, err := s.db.QueryContext(ctx, `
		SELECT id, project_id, client_message_id, media_kind, media_file_id,
		       caption, feedback_json, status, created_at, updated_at
		FROM submissions ORDER BY project_id, position
	`)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %v: %w", err, ErrUnavailable)
	}
	defer subRows.Close()

	for subRows.Next() {
		sub := &models.Submission{}
		var projectID int
		var caption sql.NullString
		var feedbackJSON string
		err := subRows.Scan(
			&sub.ID, &projectID, &sub.ClientMessageID,
			&sub.Media.Kind, &sub.Media.FileID,
			&caption, &feedbackJSON, &sub.Status,
			&sub.CreatedAt, &sub.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan submission: %w", err)
		}
		sub.Caption = caption.String
		if err := json.Unmarshal([]byte(feedbackJSON), &sub.Feedback); err != nil {
			return nil, fmt.Errorf("decode feedback for submission %s: %w", sub.ID, err)
		}
		if sub.Feedback == nil {
			sub.Feedback = []string{}
		}

		p, ok := projects[projectID]
		if !ok {
			continue
		}
		p.Submissions = append(p.Submissions, sub)
	}
	return projects, subRows.Err()
}

// Save writes the full project mapping in one transaction, replacing
// previous contents.
func (s *SQLiteStorage) Save(ctx context.Context, projects ProjectMap) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %v: %w", err, ErrUnavailable)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM projects"); err != nil {
		return fmt.Errorf("clear projects: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM submissions"); err != nil {
		return fmt.Errorf("clear submissions: %w", err)
	}

	// Stable insert order keeps saves deterministic.
	ids := make([]int, 0, len(projects))
	for id := range projects {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	for _, id := range ids {
		p := projects[id]
		_, err := tx.ExecContext(ctx, `
			INSERT INTO projects (id, name, client_chat_id, editor_chat_id, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?)
		`, p.ID, p.Name, p.ClientID, p.EditorID, p.CreatedAt, p.UpdatedAt)
		if err != nil {
			return fmt.Errorf("insert project %d: %w", p.ID, err)
		}

		for i, sub := range p.Submissions {
			feedbackJSON, err := json.Marshal(sub.Feedback)
			if err != nil {
				return fmt.Errorf("encode feedback for submission %s: %w", sub.ID, err)
			}
			_, err = tx.ExecContext(ctx, `
				INSERT INTO submissions (id, project_id, position, client_message_id,
					media_kind, media_file_id, caption, feedback_json, status,
					created_at, updated_at)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			`, sub.ID, p.ID, i, sub.ClientMessageID,
				sub.Media.Kind, sub.Media.FileID, sub.Caption,
				string(feedbackJSON), sub.Status, sub.CreatedAt, sub.UpdatedAt)
			if err != nil {
				return fmt.Errorf("insert submission %s: %w", sub.ID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save: %v: %w", err, ErrUnavailable)
	}
	return nil
}
