package profile

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"
)

// StorageKey is the fixed key the profile blob is stored under.
const StorageKey = "userProfile"

// Profile holds the user's contact details. Fields are never nil; an
// unset field is the empty string.
type Profile struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
	Bio   string `json:"bio"`
}

// KV is the key-value storage a Store persists to.
type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// Store loads and saves the profile as a single JSON blob.
type Store struct {
	kv KV
}

// NewStore creates a profile store backed by kv.
func NewStore(kv KV) *Store {
	return &Store{kv: kv}
}

// Load returns the saved profile, or an empty profile if none was saved.
func (s *Store) Load(ctx context.Context) (Profile, error) {
	raw, ok, err := s.kv.Get(ctx, StorageKey)
	if err != nil {
		return Profile{}, fmt.Errorf("loading profile: %w", err)
	}
	if !ok || strings.TrimSpace(raw) == "" {
		return Profile{}, nil
	}

	var p Profile
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return Profile{}, fmt.Errorf("decoding profile: %w", err)
	}
	return p, nil
}

// Save overwrites the stored profile with p.
func (s *Store) Save(ctx context.Context, p Profile) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encoding profile: %w", err)
	}
	if err := s.kv.Set(ctx, StorageKey, string(data)); err != nil {
		return fmt.Errorf("saving profile: %w", err)
	}
	return nil
}

// DisplayName is the short name shown in the header: the first word of
// the name, or "Profile" when no name is set.
func DisplayName(p Profile) string {
	fields := strings.Fields(p.Name)
	if len(fields) == 0 {
		return "Profile"
	}
	return fields[0]
}

// Initial returns the upper-cased first letter of the name, or "" when no
// name is set.
func Initial(p Profile) string {
	name := strings.TrimSpace(p.Name)
	if name == "" {
		return ""
	}
	r, _ := utf8.DecodeRuneInString(name)
	return string(unicode.ToUpper(r))
}

// MemoryKV is an in-process KV, used when no database is configured.
type MemoryKV struct {
	mu   sync.Mutex
	data map[string]string
}

// NewMemoryKV returns an empty in-memory KV.
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{data: make(map[string]string)}
}

func (m *MemoryKV) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *MemoryKV) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}
