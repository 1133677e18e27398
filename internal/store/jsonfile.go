package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/mateoias/lingochat/internal/domain"
)

// JSONFileStore implements UserStore on a single JSON file mapping
// email to record. The whole file is read and rewritten on every
// mutation; a mutex keeps the read-modify-write sequence single-writer
// within this process.
type JSONFileStore struct {
	path string
	mu   sync.Mutex
}

// NewJSONFile creates a file-backed store at path. The file is created
// lazily on first save.
func NewJSONFile(path string) (*JSONFileStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}
	return &JSONFileStore{path: path}, nil
}

// Load reads the whole store. Missing, unreadable, or malformed files
// are treated as an empty store by policy.
func (s *JSONFileStore) Load(ctx context.Context) (map[string]*domain.UserRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked(ctx)
}

func (s *JSONFileStore) loadLocked(_ context.Context) (map[string]*domain.UserRecord, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("user store unreadable, treating as empty", "path", s.path, "error", err)
		}
		return map[string]*domain.UserRecord{}, nil
	}

	users := map[string]*domain.UserRecord{}
	if len(data) == 0 {
		return users, nil
	}
	if err := json.Unmarshal(data, &users); err != nil {
		slog.Warn("user store malformed, treating as empty", "path", s.path, "error", err)
		return map[string]*domain.UserRecord{}, nil
	}
	return users, nil
}

// Save rewrites the whole store atomically: the records are written to
// a temp file in the same directory and renamed over the target, so a
// concurrent Load sees either the old or the new contents, never a
// partial write.
func (s *JSONFileStore) Save(ctx context.Context, users map[string]*domain.UserRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked(ctx, users)
}

func (s *JSONFileStore) saveLocked(_ context.Context, users map[string]*domain.UserRecord) error {
	data, err := json.MarshalIndent(users, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encode users: %v", domain.ErrStoreIO, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".users-*.json")
	if err != nil {
		return fmt.Errorf("%w: create temp file: %v", domain.ErrStoreIO, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("%w: write temp file: %v", domain.ErrStoreIO, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("%w: close temp file: %v", domain.ErrStoreIO, err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("%w: replace store file: %v", domain.ErrStoreIO, err)
	}
	return nil
}

// Create registers a new user record.
func (s *JSONFileStore) Create(ctx context.Context, email, password, nativeLang, targetLang string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.loadLocked(ctx)
	if err != nil {
		return err
	}
	if _, exists := users[email]; exists {
		return domain.ErrAlreadyExists
	}

	now := time.Now().UTC()
	users[email] = &domain.UserRecord{
		Email:      email,
		Password:   password,
		NativeLang: nativeLang,
		TargetLang: targetLang,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	return s.saveLocked(ctx, users)
}

// Verify checks the stored password for email.
func (s *JSONFileStore) Verify(ctx context.Context, email, password string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.loadLocked(ctx)
	if err != nil {
		return false, err
	}
	rec, ok := users[email]
	return ok && rec.Password == password, nil
}

// Get returns the record for email, or nil if absent.
func (s *JSONFileStore) Get(ctx context.Context, email string) (*domain.UserRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.loadLocked(ctx)
	if err != nil {
		return nil, err
	}
	return users[email], nil
}

// UpdatePersonalization replaces the blob for email and marks
// onboarding completed.
func (s *JSONFileStore) UpdatePersonalization(ctx context.Context, email string, blob domain.PersonalizationBlob) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.loadLocked(ctx)
	if err != nil {
		return err
	}
	rec, ok := users[email]
	if !ok {
		return domain.ErrNotFound
	}

	merged := domain.PersonalizationBlob{}
	for k, v := range blob {
		merged[k] = v
	}
	merged[domain.CompletedKey] = true

	rec.Personalization = merged
	rec.UpdatedAt = time.Now().UTC()
	return s.saveLocked(ctx, users)
}

// Close is a no-op for the file-backed store.
func (s *JSONFileStore) Close() error {
	return nil
}
