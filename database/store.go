package database

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Data files the store is allowed to touch.
const (
	FileConfig     = "config.csv"
	FileProducts   = "products.csv"
	FileCategories = "categories.csv"
	FileShipping   = "shipping.csv"
	FileDiscounts  = "discounts.csv"
	FileTaxes      = "taxes.csv"
	FileSEO        = "seo.csv"
	FileOrders     = "orders.csv"
)

// AllowedFiles is the write whitelist.
var AllowedFiles = []string{
	FileConfig, FileProducts, FileCategories, FileShipping,
	FileDiscounts, FileTaxes, FileSEO, FileOrders,
}

// IsAllowedFile reports whether name is one of the whitelisted data files.
func IsAllowedFile(name string) bool {
	for _, f := range AllowedFiles {
		if f == name {
			return true
		}
	}
	return false
}

// WriteResult describes a completed write.
type WriteResult struct {
	FileName  string `json:"fileName"`
	Backup    string `json:"backup,omitempty"`
	Sanitized bool   `json:"sanitized"`
}

// TableStore reads and writes whole data files. Every write replaces the
// file; concurrent writers are not coordinated and the last one wins.
type TableStore interface {
	ReadRaw(name string) (string, error)
	WriteRaw(name, content string) (*WriteResult, error)
	ReadTable(name string) (*Table, error)
	WriteTable(name string, table *Table) (*WriteResult, error)
	OnWrite(fn func(name string))
}

// FileStore is a TableStore over a directory of CSV files.
type FileStore struct {
	dataDir   string
	backupDir string
	sanitizer *Sanitizer
	now       func() time.Time

	mu       sync.Mutex
	fileMu   map[string]*sync.Mutex
	watchers []func(name string)
}

// NewFileStore opens (and creates if needed) the data and backup directories.
func NewFileStore(dataDir, backupDir string, sanitizer *Sanitizer) (*FileStore, error) {
	if backupDir == "" {
		backupDir = filepath.Join(dataDir, "backups")
	}
	if sanitizer == nil {
		sanitizer = NewSanitizer()
	}
	for _, dir := range []string{dataDir, backupDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}

	return &FileStore{
		dataDir:   dataDir,
		backupDir: backupDir,
		sanitizer: sanitizer,
		now:       time.Now,
		fileMu:    make(map[string]*sync.Mutex),
	}, nil
}

// DataDir returns the directory holding the data files.
func (s *FileStore) DataDir() string {
	return s.dataDir
}

// BackupDir returns the directory holding backups.
func (s *FileStore) BackupDir() string {
	return s.backupDir
}

// Sanitizer returns the image URL sanitizer applied on write.
func (s *FileStore) Sanitizer() *Sanitizer {
	return s.sanitizer
}

// OnWrite registers a callback invoked after each successful write.
func (s *FileStore) OnWrite(fn func(name string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.watchers = append(s.watchers, fn)
}

func (s *FileStore) lockFor(name string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.fileMu[name]
	if !ok {
		m = &sync.Mutex{}
		s.fileMu[name] = m
	}
	return m
}

// ReadRaw returns the file content; a missing file reads as empty.
func (s *FileStore) ReadRaw(name string) (string, error) {
	if !IsAllowedFile(name) {
		return "", fmt.Errorf("%s: %w", name, ErrUnauthorizedFile)
	}
	data, err := os.ReadFile(filepath.Join(s.dataDir, name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read %s: %w", name, err)
	}
	return string(data), nil
}

// ReadTable parses a data file; a missing file is an empty table.
func (s *FileStore) ReadTable(name string) (*Table, error) {
	content, err := s.ReadRaw(name)
	if err != nil {
		return nil, err
	}
	table, err := ParseTable(content)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return table, nil
}

// WriteTable sanitizes the rows, serializes them and writes the file.
func (s *FileStore) WriteTable(name string, table *Table) (*WriteResult, error) {
	clean := table.Clone()
	for _, row := range clean.Rows {
		s.sanitizer.Row(row)
	}
	content, err := clean.Serialize()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return s.WriteRaw(name, content)
}

// WriteRaw backs up the current file, sanitizes the content and replaces
// the file. Failures are returned as *WriteFailure carrying the content.
func (s *FileStore) WriteRaw(name, content string) (*WriteResult, error) {
	if !IsAllowedFile(name) {
		return nil, fmt.Errorf("%s: %w", name, ErrUnauthorizedFile)
	}

	sanitized, changed := s.sanitizer.Content(content)
	if changed {
		log.Printf("🔧 Normalized local image URLs to relative paths in %s", name)
	}

	lock := s.lockFor(name)
	lock.Lock()
	result, err := s.write(name, sanitized)
	lock.Unlock()
	if err != nil {
		return nil, &WriteFailure{FileName: name, Content: sanitized, Err: err}
	}
	result.Sanitized = changed

	log.Printf("✅ Saved %s (backup: %s)", name, result.Backup)

	s.mu.Lock()
	watchers := append([]func(string){}, s.watchers...)
	s.mu.Unlock()
	for _, fn := range watchers {
		fn(name)
	}
	return result, nil
}

func (s *FileStore) write(name, content string) (*WriteResult, error) {
	path := filepath.Join(s.dataDir, name)
	result := &WriteResult{FileName: name}

	backup, err := s.backup(name, path)
	if err != nil {
		return nil, err
	}
	result.Backup = backup

	tmp, err := os.CreateTemp(s.dataDir, "."+name+".*.tmp")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return nil, fmt.Errorf("failed to chmod temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return nil, fmt.Errorf("failed to replace %s: %w", name, err)
	}
	return result, nil
}

// backup copies the current file to <name>.<timestamp>.bak. Backups are
// never pruned.
func (s *FileStore) backup(name, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read %s for backup: %w", name, err)
	}

	stamp := strings.NewReplacer(":", "-", ".", "-").Replace(s.now().UTC().Format("2006-01-02T15:04:05.000Z"))
	base := fmt.Sprintf("%s.%s", name, stamp)
	candidate := base + ".bak"
	for i := 1; ; i++ {
		if _, err := os.Stat(filepath.Join(s.backupDir, candidate)); errors.Is(err, fs.ErrNotExist) {
			break
		}
		candidate = fmt.Sprintf("%s-%d.bak", base, i)
	}

	if err := os.WriteFile(filepath.Join(s.backupDir, candidate), data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write backup: %w", err)
	}
	return candidate, nil
}

// Backups lists the backup files taken for one data file, oldest first.
func (s *FileStore) Backups(name string) ([]string, error) {
	entries, err := os.ReadDir(s.backupDir)
	if err != nil {
		return nil, fmt.Errorf("failed to list backups: %w", err)
	}
	var out []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasPrefix(e.Name(), name+".") && strings.HasSuffix(e.Name(), ".bak") {
			out = append(out, e.Name())
		}
	}
	return out, nil
}
