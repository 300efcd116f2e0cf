package profile

import (
	"context"
	"errors"
	"testing"

	"github.com/ziadkadry99/docchat/internal/db"
)

func TestLoadAbsentReturnsEmpty(t *testing.T) {
	s := NewStore(NewMemoryKV())

	p, err := s.Load(t.Context())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if p != (Profile{}) {
		t.Errorf("expected empty profile, got %+v", p)
	}
}

func TestSaveThenLoadPartialProfile(t *testing.T) {
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	ctx := t.Context()
	s := NewStore(database)
	if err := s.Save(ctx, Profile{Name: "Ada"}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	// A fresh store over the same storage sees the saved record.
	p, err := NewStore(database).Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if p.Name != "Ada" {
		t.Errorf("name: got %q, want %q", p.Name, "Ada")
	}
	if p.Email != "" || p.Phone != "" || p.Bio != "" {
		t.Errorf("expected other fields empty, got %+v", p)
	}
}

func TestSaveOverwritesWholesale(t *testing.T) {
	kv := NewMemoryKV()
	s := NewStore(kv)
	ctx := t.Context()

	if err := s.Save(ctx, Profile{Name: "Ada", Email: "ada@example.com", Bio: "math"}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := s.Save(ctx, Profile{Name: "Grace"}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	p, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if p != (Profile{Name: "Grace"}) {
		t.Errorf("expected wholesale overwrite, got %+v", p)
	}
}

func TestLoadFillsMissingFields(t *testing.T) {
	kv := NewMemoryKV()
	kv.Set(context.Background(), StorageKey, `{"email":"x@y.z"}`)

	p, err := NewStore(kv).Load(t.Context())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if p.Email != "x@y.z" || p.Name != "" {
		t.Errorf("got %+v", p)
	}
}

func TestLoadMalformed(t *testing.T) {
	kv := NewMemoryKV()
	kv.Set(context.Background(), StorageKey, `{not json`)

	if _, err := NewStore(kv).Load(t.Context()); err == nil {
		t.Error("expected error for malformed profile")
	}
}

type failingKV struct{}

func (failingKV) Get(context.Context, string) (string, bool, error) {
	return "", false, errors.New("disk gone")
}
func (failingKV) Set(context.Context, string, string) error { return errors.New("disk gone") }

func TestStorageErrorsPropagate(t *testing.T) {
	s := NewStore(failingKV{})
	if _, err := s.Load(t.Context()); err == nil {
		t.Error("expected Load error")
	}
	if err := s.Save(t.Context(), Profile{}); err == nil {
		t.Error("expected Save error")
	}
}

func TestDisplayNameAndInitial(t *testing.T) {
	tests := []struct {
		name        string
		wantDisplay string
		wantInitial string
	}{
		{"", "Profile", ""},
		{"ada lovelace", "ada", "A"},
		{"  Grace Hopper ", "Grace", "G"},
		{"élodie", "élodie", "É"},
	}
	for _, tt := range tests {
		p := Profile{Name: tt.name}
		if got := DisplayName(p); got != tt.wantDisplay {
			t.Errorf("DisplayName(%q) = %q, want %q", tt.name, got, tt.wantDisplay)
		}
		if got := Initial(p); got != tt.wantInitial {
			t.Errorf("Initial(%q) = %q, want %q", tt.name, got, tt.wantInitial)
		}
	}
}

func TestValidateEmail(t *testing.T) {
	if err := validateEmail(""); err != nil {
		t.Errorf("empty email should be allowed: %v", err)
	}
	if err := validateEmail("ada@example.com"); err != nil {
		t.Errorf("valid email rejected: %v", err)
	}
	if err := validateEmail("nope"); err == nil {
		t.Error("expected error for invalid email")
	}
}
