package blobstore

import (
	"os"
	"path/filepath"
)

// FileManager exposes opaque save/load plus JSON text variants, optionally
// chaining an EncryptionStrategy over every payload (spec.md §6).
type FileManager struct {
	baseDir    string
	encryption EncryptionStrategy
}

// Option configures a FileManager at construction time.
type Option func(*FileManager)

// WithEncryption overrides the default byte-identity strategy.
func WithEncryption(strategy EncryptionStrategy) Option {
	return func(fm *FileManager) { fm.encryption = strategy }
}

// NewFileManager builds a FileManager rooted at baseDir.
func NewFileManager(baseDir string, opts ...Option) *FileManager {
	fm := &FileManager{baseDir: baseDir, encryption: NoEncryption{}}
	for _, o := range opts {
		o(fm)
	}
	return fm
}

func (fm *FileManager) resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(fm.baseDir, path)
}

// Save encrypts data (NoEncryption by default) and writes it to path.
func (fm *FileManager) Save(path string, data []byte) error {
	full := fm.resolve(path)
	encoded, err := fm.encryption.Encrypt(data)
	if err != nil {
		return &IoError{Op: "save", Path: path, Cause: err}
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return &IoError{Op: "save", Path: path, Cause: err}
	}
	if err := os.WriteFile(full, encoded, 0o644); err != nil {
		return &IoError{Op: "save", Path: path, Cause: err}
	}
	return nil
}

// Load reads path and decrypts it with the configured strategy.
func (fm *FileManager) Load(path string) ([]byte, error) {
	full := fm.resolve(path)
	raw, err := os.ReadFile(full)
	if err != nil {
		return nil, &IoError{Op: "load", Path: path, Cause: err}
	}
	decoded, err := fm.encryption.Decrypt(raw)
	if err != nil {
		return nil, &IoError{Op: "load", Path: path, Cause: err}
	}
	return decoded, nil
}

// SaveJSON writes text, a caller-formatted JSON document, through Save.
func (fm *FileManager) SaveJSON(path, text string) error {
	return fm.Save(path, []byte(text))
}

// LoadJSON reads path and returns its contents as a JSON text string.
func (fm *FileManager) LoadJSON(path string) (string, error) {
	data, err := fm.Load(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Exists reports whether path exists, swallowing stat errors other than
// "not exists" the same way os.Stat's caller normally would.
func (fm *FileManager) Exists(path string) bool {
	_, err := os.Stat(fm.resolve(path))
	return err == nil
}

// Remove deletes path; removing a non-existent path is not an error.
func (fm *FileManager) Remove(path string) error {
	full := fm.resolve(path)
	if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
		return &IoError{Op: "remove", Path: path, Cause: err}
	}
	return nil
}
