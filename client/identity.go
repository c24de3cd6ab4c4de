package client

import (
	"encoding/base64"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	deviceIDKey  = "device_id"
	sessionIDKey = "session_id"
	deviceIDLen  = 32
)

// Store persists identity values. FileStore survives restarts (the durable
// device identity); MemoryStore lives for one process (the session
// identity, and the fallback when durable storage is unusable).
type Store interface {
	Get(key string) (string, bool)
	Set(key, value string) error
}

type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

func (s *MemoryStore) Get(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok
}

func (s *MemoryStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

// FileStore keeps one file per key under dir.
type FileStore struct {
	dir string
}

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create identity dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) Get(key string) (string, bool) {
	data, err := os.ReadFile(filepath.Join(s.dir, key))
	if err != nil {
		return "", false
	}
	value := strings.TrimSpace(string(data))
	return value, value != ""
}

func (s *FileStore) Set(key, value string) error {
	return os.WriteFile(filepath.Join(s.dir, key), []byte(value), 0o600)
}

// Identity resolves the device and session identifiers. The device ID is
// only stable because it is cached after first synthesis: the raw
// fingerprint includes the generation timestamp, so losing the durable
// store means a fresh, unrelated ID and a duplicate device record
// server-side. That trade-off is inherited deliberately; content-only
// fingerprinting is out of scope.
type Identity struct {
	mu      sync.Mutex
	durable Store
	session Store

	// in-memory fallback once a durable write has failed
	memDeviceID string

	now func() time.Time
}

func NewIdentity(durable, session Store) *Identity {
	if durable == nil {
		durable = NewMemoryStore()
	}
	if session == nil {
		session = NewMemoryStore()
	}
	return &Identity{
		durable: durable,
		session: session,
		now:     time.Now,
	}
}

// DeviceID returns the persisted identifier, synthesizing and persisting
// one from the snapshot on first use. When the durable store cannot be
// written the ID is held in memory for the rest of the process life.
func (id *Identity) DeviceID(snap *Snapshot) string {
	id.mu.Lock()
	defer id.mu.Unlock()

	if id.memDeviceID != "" {
		return id.memDeviceID
	}
	if v, ok := id.durable.Get(deviceIDKey); ok {
		return v
	}

	deviceID := synthesizeDeviceID(snap, id.now())
	if err := id.durable.Set(deviceIDKey, deviceID); err != nil {
		id.memDeviceID = deviceID
	}
	return deviceID
}

// SessionID returns the session-scoped identifier, generating one per
// session-store lifetime.
func (id *Identity) SessionID() string {
	id.mu.Lock()
	defer id.mu.Unlock()

	if v, ok := id.session.Get(sessionIDKey); ok {
		return v
	}

	sessionID := fmt.Sprintf("session_%d_%s", id.now().UnixMilli(), randBase36(9))
	if err := id.session.Set(sessionIDKey, sessionID); err == nil {
		return sessionID
	}
	return sessionID
}

// synthesizeDeviceID concatenates the fingerprint properties with the
// current epoch, base64-encodes the result and truncates to 32 chars.
func synthesizeDeviceID(snap *Snapshot, now time.Time) string {
	parts := []string{
		snap.Browser.Name,
		snap.OS.Name,
		snap.Device.Type,
		snap.Language,
		snap.UserAgent,
		strconv.Itoa(snap.Screen.Width),
		strconv.Itoa(snap.Screen.Height),
		strconv.FormatInt(now.UnixMilli(), 10),
	}
	encoded := base64.StdEncoding.EncodeToString([]byte(strings.Join(parts, "|")))
	if len(encoded) > deviceIDLen {
		encoded = encoded[:deviceIDLen]
	}
	return encoded
}

const base36Alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

func randBase36(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = base36Alphabet[rand.Intn(len(base36Alphabet))]
	}
	return string(b)
}
