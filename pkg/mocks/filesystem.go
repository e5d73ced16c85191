package mocks

import (
	"fmt"
	"io/fs"
	"path"
	"sort"
	"sync"

	"github.com/user/lanecrop/pkg/ports"
)

// FileSystem keeps files and directories in memory. Paths are compared
// verbatim; WriteFile also marks every parent directory as present, the
// way the disk-backed implementation creates them.
type FileSystem struct {
	mu       sync.RWMutex
	files    map[string][]byte
	dirs     map[string]bool
	failures map[string]error
}

func NewFileSystem() *FileSystem {
	return &FileSystem{
		files:    make(map[string][]byte),
		dirs:     make(map[string]bool),
		failures: make(map[string]error),
	}
}

// Fail makes every operation on p return err.
func (m *FileSystem) Fail(p string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[p] = err
}

func (m *FileSystem) ReadFile(p string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.failures[p]; err != nil {
		return nil, err
	}
	data, ok := m.files[p]
	if !ok {
		return nil, fmt.Errorf("open %s: %w", p, fs.ErrNotExist)
	}
	return data, nil
}

func (m *FileSystem) WriteFile(p string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failures[p]; err != nil {
		return err
	}
	m.files[p] = append([]byte(nil), data...)
	for dir := path.Dir(p); dir != "." && dir != "/"; dir = path.Dir(dir) {
		m.dirs[dir] = true
	}
	return nil
}

func (m *FileSystem) MkdirAll(p string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failures[p]; err != nil {
		return err
	}
	m.dirs[p] = true
	return nil
}

func (m *FileSystem) Exists(p string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.failures[p]; err != nil {
		return false, err
	}
	_, isFile := m.files[p]
	return isFile || m.dirs[p], nil
}

func (m *FileSystem) Size(p string) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.failures[p]; err != nil {
		return 0, err
	}
	data, ok := m.files[p]
	if !ok {
		return 0, fmt.Errorf("stat %s: %w", p, fs.ErrNotExist)
	}
	return int64(len(data)), nil
}

// GetFile returns what was last written to p.
func (m *FileSystem) GetFile(p string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.files[p]
	return data, ok
}

// Files lists every stored file path in sorted order.
func (m *FileSystem) Files() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	paths := make([]string, 0, len(m.files))
	for p := range m.files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

var _ ports.FileSystem = (*FileSystem)(nil)
