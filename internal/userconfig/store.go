package userconfig

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	ferrors "git.home.luguber.info/inful/vpndesk/internal/foundation/errors"
	"git.home.luguber.info/inful/vpndesk/internal/store/storeapi"
)

// FileStore is a YAML-backed key-value document.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore creates a store persisting to path. The file is created on first Set.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the backing file path.
func (s *FileStore) Path() string {
	return s.path
}

// Load reads the whole document. A missing file is an empty document.
func (s *FileStore) Load(ctx context.Context) (map[string]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read()
}

// Set stores value at the dotted key and rewrites the file.
func (s *FileStore) Set(ctx context.Context, key string, value any) error {
	if key == "" {
		return ferrors.ValidationError("user config key cannot be empty").Build()
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return err
	}
	setPath(doc, key, value)
	return s.write(doc)
}

func (s *FileStore) read() (map[string]any, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]any{}, nil
	}
	if err != nil {
		return nil, ferrors.StorageError("failed to read user config").
			WithCause(err).
			WithContext("path", s.path).
			Build()
	}
	doc := map[string]any{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, ferrors.StorageError("failed to parse user config").
			WithCause(err).
			WithContext("path", s.path).
			Build()
	}
	if doc == nil {
		doc = map[string]any{}
	}
	return doc, nil
}

// write replaces the file atomically via a temp file in the same directory.
func (s *FileStore) write(doc map[string]any) error {
	data, err := yaml.Marshal(doc)
	if err != nil {
		return ferrors.InternalError("failed to encode user config").WithCause(err).Build()
	}
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return ferrors.StorageError("failed to create user config directory").
			WithCause(err).
			WithContext("path", dir).
			Build()
	}
	tmp, err := os.CreateTemp(dir, ".userconfig-*.yaml")
	if err != nil {
		return ferrors.StorageError("failed to create temp file").WithCause(err).Build()
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return ferrors.StorageError("failed to write user config").WithCause(err).Build()
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return ferrors.StorageError("failed to close user config").WithCause(err).Build()
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)
		return ferrors.StorageError("failed to replace user config").
			WithCause(err).
			WithContext("path", s.path).
			Build()
	}
	return nil
}

// Memory is an in-process document, used by the headless commands and tests.
type Memory struct {
	mu  sync.Mutex
	doc map[string]any
}

// NewMemory returns an empty in-memory document.
func NewMemory() *Memory {
	return &Memory{doc: map[string]any{}}
}

func (m *Memory) Load(ctx context.Context) (map[string]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return clone(m.doc), nil
}

func (m *Memory) Set(ctx context.Context, key string, value any) error {
	if key == "" {
		return ferrors.ValidationError("user config key cannot be empty").Build()
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	setPath(m.doc, key, value)
	return nil
}

var (
	_ storeapi.UserConfigService = (*FileStore)(nil)
	_ storeapi.UserConfigService = (*Memory)(nil)
)
