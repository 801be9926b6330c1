package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pysugar/codex-accounts/internal/db"
	"github.com/pysugar/codex-accounts/internal/models"
	"gorm.io/gorm"
)

// StateKey is the config row holding the state document in SQLite.
const StateKey = "app_state"

// Persister loads and saves the whole aggregate.
type Persister interface {
	// Load returns found=false when nothing has been saved yet.
	Load() (data models.AppData, found bool, err error)
	Save(data models.AppData) error
	// Location is a human-readable path of the backing storage.
	Location() string
}

// JSONFile keeps the aggregate as pretty-printed JSON.
type JSONFile struct {
	Path string
}

// NewJSONFile returns a persister writing to path.
func NewJSONFile(path string) *JSONFile {
	return &JSONFile{Path: path}
}

func (p *JSONFile) Location() string { return p.Path }

func (p *JSONFile) Load() (models.AppData, bool, error) {
	raw, err := os.ReadFile(p.Path)
	if errors.Is(err, os.ErrNotExist) {
		return models.AppData{}, false, nil
	}
	if err != nil {
		return models.AppData{}, false, fmt.Errorf("Failed to read state file: %w", err)
	}
	data, err := decode(raw)
	if err != nil {
		return models.AppData{}, false, err
	}
	return data, true, nil
}

// Save writes through a temp file and rename so a crash never leaves a
// truncated state file behind.
func (p *JSONFile) Save(data models.AppData) error {
	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("Failed to serialize state: %w", err)
	}
	dir := filepath.Dir(p.Path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("Failed to create data directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".state-*.json")
	if err != nil {
		return fmt.Errorf("Failed to write state file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return fmt.Errorf("Failed to write state file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("Failed to write state file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return fmt.Errorf("Failed to write state file: %w", err)
	}
	if err := os.Rename(tmpName, p.Path); err != nil {
		return fmt.Errorf("Failed to write state file: %w", err)
	}
	return nil
}

// SQLite keeps the aggregate as one JSON document in a config row.
type SQLite struct {
	db   *gorm.DB
	path string
}

// OpenSQLite opens (and migrates) the database at path.
func OpenSQLite(path string, verbose bool) (*SQLite, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("Failed to create data directory: %w", err)
	}
	conn, err := db.InitDB(path, verbose)
	if err != nil {
		return nil, err
	}
	return &SQLite{db: conn, path: path}, nil
}

func (p *SQLite) Location() string { return p.path }

func (p *SQLite) Load() (models.AppData, bool, error) {
	value, _, err := db.GetConfig(p.db, StateKey)
	if errors.Is(err, db.ErrNoConfig) {
		return models.AppData{}, false, nil
	}
	if err != nil {
		return models.AppData{}, false, fmt.Errorf("Failed to read state: %w", err)
	}
	data, err := decode([]byte(value))
	if err != nil {
		return models.AppData{}, false, err
	}
	return data, true, nil
}

func (p *SQLite) Save(data models.AppData) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("Failed to serialize state: %w", err)
	}
	if err := db.SetConfig(p.db, StateKey, string(raw)); err != nil {
		return fmt.Errorf("Failed to write state: %w", err)
	}
	return nil
}

func decode(raw []byte) (models.AppData, error) {
	data := models.NewAppData()
	if err := json.Unmarshal(raw, &data); err != nil {
		return models.AppData{}, fmt.Errorf("Failed to parse state file: %w", err)
	}
	return data, nil
}
