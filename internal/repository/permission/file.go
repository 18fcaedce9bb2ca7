package permission

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/Soumi0401/SimpleNotification/internal/config"
	domain "github.com/Soumi0401/SimpleNotification/internal/domain/alarm"
)

// Repository defines persistence operations for the permission state.
type Repository interface {
	Load(ctx context.Context) (*domain.PermissionState, error)
	Save(ctx context.Context, state *domain.PermissionState) error
}

// FileRepository persists the permission state to a YAML file on disk.
type FileRepository struct {
	// path is the filesystem location of the state file.
	path string
	// mu serialises access to the state file within the process.
	mu sync.Mutex
}

var (
	// ErrNotFound is returned when the state file does not exist yet.
	ErrNotFound = errors.New("permission state not found")
	// errNilState is returned when Save is called without a state.
	errNilState = errors.New("permission state is nil")
)

// NewFileRepository creates a repository that reads/writes YAML at the provided path.
func NewFileRepository(path string) *FileRepository {
	return &FileRepository{
		path: filepath.Clean(path),
	}
}

// Path returns the location of the state file.
func (r *FileRepository) Path() string {
	return r.path
}

// Load reads the state from disk.
func (r *FileRepository) Load(_ context.Context) (*domain.PermissionState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	contents, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("read permission file: %w", err)
	}

	var state domain.PermissionState
	if err = yaml.Unmarshal(contents, &state); err != nil {
		return nil, fmt.Errorf("decode permission file: %w", err)
	}

	return &state, nil
}

// Save writes the state to disk. The file is replaced atomically so that a
// concurrent reader in another process never sees a partial document.
func (r *FileRepository) Save(_ context.Context, state *domain.PermissionState) error {
	if state == nil {
		return errNilState
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := yaml.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode permission state: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(r.path), filepath.Base(r.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temporary permission file: %w", err)
	}

	tmpName := tmp.Name()

	defer func() {
		_ = os.Remove(tmpName)
	}()

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()

		return fmt.Errorf("write permission file: %w", err)
	}

	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close permission file: %w", err)
	}

	if err = os.Chmod(tmpName, config.DefaultFilePermissions); err != nil {
		return fmt.Errorf("chmod permission file: %w", err)
	}

	if err = os.Rename(tmpName, r.path); err != nil {
		return fmt.Errorf("replace permission file: %w", err)
	}

	return nil
}
