package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/mateoias/lingochat/internal/domain"
	"github.com/mateoias/lingochat/internal/shared"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements UserStore using SQLite. Records live in a
// single users table with the personalization blob stored as JSON.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite creates a new SQLite-backed user store.
func NewSQLite(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	// Open database with WAL mode for better concurrency.
	dsn := dbPath + "?_journal=WAL&_sync=NORMAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	query := `
	PRAGMA busy_timeout = 5000;
	CREATE TABLE IF NOT EXISTS users (
		email TEXT PRIMARY KEY,
		password TEXT NOT NULL,
		native_lang TEXT,
		target_lang TEXT,
		personalization_json TEXT,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Ping verifies database connectivity.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Load returns every stored record. Query or scan failures are treated
// as an empty store by policy; they are logged, never surfaced.
func (s *SQLiteStore) Load(ctx context.Context) (map[string]*domain.UserRecord, error) {
	query := `
		SELECT email, password, native_lang, target_lang,
		       personalization_json, created_at, updated_at
		FROM users`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		slog.Warn("user store unreadable, treating as empty", "error", err)
		return map[string]*domain.UserRecord{}, nil
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			slog.Warn("failed to close user rows", "error", closeErr)
		}
	}()

	users := map[string]*domain.UserRecord{}
	for rows.Next() {
		rec, err := scanUser(rows)
		if err != nil {
			slog.Warn("user store row malformed, treating store as empty", "error", err)
			return map[string]*domain.UserRecord{}, nil
		}
		users[rec.Email] = rec
	}
	if err := rows.Err(); err != nil {
		slog.Warn("user store iteration failed, treating as empty", "error", err)
		return map[string]*domain.UserRecord{}, nil
	}
	return users, nil
}

// Save overwrites the entire store in one transaction, so readers see
// either the old contents or the new, never a mix. SQLITE_BUSY
// conflicts are retried with backoff before giving up.
func (s *SQLiteStore) Save(ctx context.Context, users map[string]*domain.UserRecord) error {
	maxRetries := 3
	baseDelay := 100 * time.Millisecond

	var err error
	for i := 0; i < maxRetries; i++ {
		err = s.saveOnce(ctx, users)
		if err == nil {
			return nil
		}
		if shared.IsSQLiteConflictError(err) && i < maxRetries-1 {
			delay := baseDelay * time.Duration(1<<i)
			slog.Debug("Save hit SQLITE_BUSY, retrying", "attempt", i+1, "delay", delay)
			time.Sleep(delay)
			continue
		}
		break
	}
	return fmt.Errorf("%w: %v", domain.ErrStoreIO, err)
}

func (s *SQLiteStore) saveOnce(ctx context.Context, users map[string]*domain.UserRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM users`); err != nil {
		return fmt.Errorf("clear users: %w", err)
	}

	insert := `
		INSERT INTO users (email, password, native_lang, target_lang,
		                   personalization_json, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`
	for email, rec := range users {
		blobJSON, err := marshalBlob(rec.Personalization)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, insert,
			email, rec.Password, rec.NativeLang, rec.TargetLang,
			blobJSON, rec.CreatedAt.Unix(), rec.UpdatedAt.Unix(),
		); err != nil {
			return fmt.Errorf("insert user %s: %w", email, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save transaction: %w", err)
	}
	return nil
}

// Create registers a new user record.
func (s *SQLiteStore) Create(ctx context.Context, email, password, nativeLang, targetLang string) error {
	now := time.Now().Unix()
	query := `
		INSERT INTO users (email, password, native_lang, target_lang, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(email) DO NOTHING`

	result, err := s.db.ExecContext(ctx, query, email, password, nativeLang, targetLang, now, now)
	if err != nil {
		return fmt.Errorf("%w: create user: %v", domain.ErrStoreIO, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: create user rows affected: %v", domain.ErrStoreIO, err)
	}
	if rows == 0 {
		return domain.ErrAlreadyExists
	}
	return nil
}

// Verify checks the stored password for email.
func (s *SQLiteStore) Verify(ctx context.Context, email, password string) (bool, error) {
	var stored string
	err := s.db.QueryRowContext(ctx, `SELECT password FROM users WHERE email = ?`, email).Scan(&stored)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query password: %w", err)
	}
	return stored == password, nil
}

// Get returns the record for email, or nil if absent.
func (s *SQLiteStore) Get(ctx context.Context, email string) (*domain.UserRecord, error) {
	query := `
		SELECT email, password, native_lang, target_lang,
		       personalization_json, created_at, updated_at
		FROM users WHERE email = ?`

	rec, err := scanUser(s.db.QueryRowContext(ctx, query, email))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// UpdatePersonalization replaces the blob for email and marks
// onboarding completed.
func (s *SQLiteStore) UpdatePersonalization(ctx context.Context, email string, blob domain.PersonalizationBlob) error {
	merged := domain.PersonalizationBlob{}
	for k, v := range blob {
		merged[k] = v
	}
	merged[domain.CompletedKey] = true

	blobJSON, err := marshalBlob(merged)
	if err != nil {
		return err
	}

	query := `UPDATE users SET personalization_json = ?, updated_at = ? WHERE email = ?`
	result, err := s.db.ExecContext(ctx, query, blobJSON, time.Now().Unix(), email)
	if err != nil {
		return fmt.Errorf("%w: update personalization: %v", domain.ErrStoreIO, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: personalization rows affected: %v", domain.ErrStoreIO, err)
	}
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*domain.UserRecord, error) {
	var rec domain.UserRecord
	var nativeLang, targetLang, blobJSON sql.NullString
	var createdAt, updatedAt int64

	err := row.Scan(
		&rec.Email, &rec.Password, &nativeLang, &targetLang,
		&blobJSON, &createdAt, &updatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("scan user row: %w", err)
	}

	rec.NativeLang = nativeLang.String
	rec.TargetLang = targetLang.String
	rec.CreatedAt = time.Unix(createdAt, 0)
	rec.UpdatedAt = time.Unix(updatedAt, 0)

	if blobJSON.Valid && blobJSON.String != "" {
		if err := json.Unmarshal([]byte(blobJSON.String), &rec.Personalization); err != nil {
			return nil, fmt.Errorf("decode personalization: %w", err)
		}
	}
	return &rec, nil
}

func marshalBlob(blob domain.PersonalizationBlob) (any, error) {
	if blob == nil {
		return nil, nil
	}
	data, err := json.Marshal(blob)
	if err != nil {
		return nil, fmt.Errorf("%w: encode personalization: %v", domain.ErrStoreIO, err)
	}
	return string(data), nil
}
