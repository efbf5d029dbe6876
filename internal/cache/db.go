// Package cache provides a persistent, gorm-backed signature cache so a
// second run over an unchanged repository at the same commit can reuse the
// MinHash signature of every region whose shingle content is unchanged.
// Parsing and shingling still run on every file; only sketching is skipped.
package cache

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// openDB opens (creating if absent) a sqlite database at dbPath through
// gorm, auto-migrating the cache's own models. Single connection: sqlite
// only supports one writer at a time and this cache's write volume doesn't
// warrant the teacher's dual-pool read/write split.
func openDB(dbPath string) (*gorm.DB, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("cache: create %s: %w", dir, err)
		}
	}

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("cache: open %s: %w", dbPath, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("cache: underlying sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := sqlDB.Exec(pragma); err != nil {
			return nil, fmt.Errorf("cache: %s: %w", pragma, err)
		}
	}

	if err := db.AutoMigrate(&SignatureRecord{}); err != nil {
		return nil, fmt.Errorf("cache: migrate: %w", err)
	}
	return db, nil
}

// DefaultPath returns the per-user cache database path, mirroring the
// teacher's ~/.cache/<tool>/ convention.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cache: home directory: %w", err)
	}
	return filepath.Join(home, ".cache", "simhound", "signatures.db"), nil
}

var (
	defaultOnce     sync.Once
	defaultInstance *SignatureCache
	defaultErr      error
)

// Default returns the process-wide SignatureCache rooted at DefaultPath,
// opened once per process.
func Default() (*SignatureCache, error) {
	defaultOnce.Do(func() {
		path, err := DefaultPath()
		if err != nil {
			defaultErr = err
			return
		}
		defaultInstance, defaultErr = Open(path)
	})
	return defaultInstance, defaultErr
}
