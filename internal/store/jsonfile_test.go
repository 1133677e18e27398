package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mateoias/lingochat/internal/domain"
)

func newTestJSONStore(t *testing.T) *JSONFileStore {
	t.Helper()
	s, err := NewJSONFile(filepath.Join(t.TempDir(), "users.json"))
	if err != nil {
		t.Fatalf("NewJSONFile failed: %v", err)
	}
	return s
}

func TestJSONFileLoadMissingFile(t *testing.T) {
	s := newTestJSONStore(t)

	users, err := s.Load(context.Background())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(users) != 0 {
		t.Errorf("Expected empty store, got %d users", len(users))
	}
}

func TestJSONFileLoadCorruptFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "users.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write corrupt file: %v", err)
	}

	s, err := NewJSONFile(path)
	if err != nil {
		t.Fatalf("NewJSONFile failed: %v", err)
	}

	users, err := s.Load(context.Background())
	if err != nil {
		t.Fatalf("Expected corrupt store treated as empty, got error: %v", err)
	}
	if len(users) != 0 {
		t.Errorf("Expected empty store for corrupt file, got %d users", len(users))
	}
}

func TestJSONFileCreateAndVerify(t *testing.T) {
	s := newTestJSONStore(t)
	ctx := context.Background()

	if err := s.Create(ctx, "a@x.com", "pw", "en", "es"); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	ok, err := s.Verify(ctx, "a@x.com", "pw")
	if err != nil || !ok {
		t.Errorf("Expected matching credentials to verify, got ok=%v err=%v", ok, err)
	}

	ok, err = s.Verify(ctx, "a@x.com", "wrong")
	if err != nil || ok {
		t.Errorf("Expected mismatched password to fail, got ok=%v err=%v", ok, err)
	}

	ok, err = s.Verify(ctx, "b@x.com", "pw")
	if err != nil || ok {
		t.Errorf("Expected unknown user to fail, got ok=%v err=%v", ok, err)
	}
}

func TestJSONFileDuplicateSignupKeepsOriginal(t *testing.T) {
	s := newTestJSONStore(t)
	ctx := context.Background()

	if err := s.Create(ctx, "a@x.com", "pw", "en", "es"); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	err := s.Create(ctx, "a@x.com", "pw2", "en", "es")
	if !errors.Is(err, domain.ErrAlreadyExists) {
		t.Fatalf("Expected ErrAlreadyExists, got %v", err)
	}

	// Original password survives the rejected signup.
	ok, err := s.Verify(ctx, "a@x.com", "pw")
	if err != nil || !ok {
		t.Errorf("Expected original password to survive, got ok=%v err=%v", ok, err)
	}
}

func TestJSONFileSaveLoadRoundTrip(t *testing.T) {
	s := newTestJSONStore(t)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Second)
	in := map[string]*domain.UserRecord{
		"a@x.com": {
			Email:      "a@x.com",
			Password:   "pw",
			NativeLang: "en",
			TargetLang: "es",
			Personalization: domain.PersonalizationBlob{
				"name":      "Ana",
				"completed": true,
			},
			CreatedAt: now,
			UpdatedAt: now,
		},
	}

	if err := s.Save(ctx, in); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	out, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	rec := out["a@x.com"]
	if rec == nil {
		t.Fatal("Expected record after round trip")
	}
	if rec.Password != "pw" || rec.NativeLang != "en" || rec.TargetLang != "es" {
		t.Errorf("Record fields lost in round trip: %+v", rec)
	}
	if rec.Personalization["name"] != "Ana" {
		t.Errorf("Personalization lost in round trip: %+v", rec.Personalization)
	}
	if !rec.Personalization.Completed() {
		t.Error("Expected completed flag to round trip")
	}
}

func TestJSONFileUpdatePersonalization(t *testing.T) {
	s := newTestJSONStore(t)
	ctx := context.Background()

	if err := s.Create(ctx, "a@x.com", "pw", "en", "es"); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	blob := domain.PersonalizationBlob{"name": "Ana", "hobby": "no"}
	if err := s.UpdatePersonalization(ctx, "a@x.com", blob); err != nil {
		t.Fatalf("UpdatePersonalization failed: %v", err)
	}

	rec, err := s.Get(ctx, "a@x.com")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if rec.Personalization["name"] != "Ana" {
		t.Errorf("Expected blob saved, got %+v", rec.Personalization)
	}
	if !rec.Personalization.Completed() {
		t.Error("Expected completed=true set unconditionally")
	}

	err = s.UpdatePersonalization(ctx, "nobody@x.com", blob)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for unknown user, got %v", err)
	}
}

func TestJSONFileSaveIsAtomicOnDisk(t *testing.T) {
	s := newTestJSONStore(t)
	ctx := context.Background()

	if err := s.Create(ctx, "a@x.com", "pw", "en", "es"); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	// No temp files left behind after a successful save.
	entries, err := os.ReadDir(filepath.Dir(s.path))
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	if len(entries) != 1 {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("Expected only the store file, found %v", names)
	}
}
