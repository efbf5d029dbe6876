package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/arch-sim/simhound/models"
)

// writeBurst bounds how many signature writes may land back-to-back
// before the limiter starts spacing them out. The cache's single sqlite
// connection (openDB's SetMaxOpenConns(1)) is already serialized by mu,
// but a large scan's per-file worker pool can still queue up a burst of
// Put calls the instant the region pass finishes; throttling smooths that
// burst the same way the teacher throttles its own outbound calls
// (analysis/resolution_service.go's rate.NewLimiter(rate.Every(time.Second), 10)).
const writeBurst = 50

// SignatureRecord is the gorm model backing the cache's one table: a
// MinHash signature keyed by a region's shingle-content hash and namespaced
// by repository root and commit, so a stale cache from a different
// checkout or an edited-but-uncommitted file never matches.
type SignatureRecord struct {
	ID           uint   `gorm:"primarykey"`
	RepoRoot     string `gorm:"uniqueIndex:idx_identity,priority:1"`
	CommitHash   string `gorm:"uniqueIndex:idx_identity,priority:2"`
	Path         string `gorm:"uniqueIndex:idx_identity,priority:3"`
	ContentHash  string `gorm:"index"`
	NumPerm      int
	Empty        bool
	SignatureRaw string `gorm:"column:signature_json"`
	ShingleCount int
	UpdatedAt    time.Time
}

func (SignatureRecord) TableName() string { return "signatures" }

// SignatureCache is a content-hash-keyed, repo+commit-namespaced cache of
// per-region MinHash signatures, guarded by a mutex since gorm's sqlite
// driver is not safe for unsynchronized concurrent writes from this
// module's per-file worker pool.
type SignatureCache struct {
	db      *gorm.DB
	mu      sync.Mutex
	limiter *rate.Limiter
}

// Open opens or creates the sqlite-backed cache at dbPath.
func Open(dbPath string) (*SignatureCache, error) {
	db, err := openDB(dbPath)
	if err != nil {
		return nil, err
	}
	return &SignatureCache{db: db, limiter: rate.NewLimiter(rate.Limit(500), writeBurst)}, nil
}

// Namespace identifies the repository + commit a lookup is scoped to.
// RepoRoot and CommitHash are usually produced by RepoIdentity; a caller
// outside a git checkout can pass an empty CommitHash, which disables
// cross-run reuse for that tree (every run recomputes) but still lets
// Get/Put share state within a single run.
type Namespace struct {
	RepoRoot   string
	CommitHash string
}

// Get returns the cached signature for path if its content hash matches
// what's stored, within ns's repo+commit namespace.
func (c *SignatureCache) Get(ns Namespace, path, contentHash string) (models.MinHashSignature, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var rec SignatureRecord
	err := c.db.Where("repo_root = ? AND commit_hash = ? AND path = ? AND content_hash = ?",
		ns.RepoRoot, ns.CommitHash, path, contentHash).First(&rec).Error
	if err == gorm.ErrRecordNotFound {
		return models.MinHashSignature{}, false, nil
	}
	if err != nil {
		return models.MinHashSignature{}, false, fmt.Errorf("cache: get %s: %w", path, err)
	}

	if rec.Empty {
		return models.MinHashSignature{Empty: true}, true, nil
	}
	var values []uint64
	if err := json.Unmarshal([]byte(rec.SignatureRaw), &values); err != nil {
		return models.MinHashSignature{}, false, fmt.Errorf("cache: decode %s: %w", path, err)
	}
	return models.MinHashSignature{Values: values}, true, nil
}

// Put stores sig for path under ns, replacing any prior entry for the
// same (repo, commit, path) regardless of content hash. Waits on the
// write-rate limiter first, so a burst of concurrent per-file workers
// finishing at once doesn't all pile onto the single sqlite connection
// in the same instant.
func (c *SignatureCache) Put(ns Namespace, path, contentHash string, sig models.MinHashSignature, shingleCount int) error {
	_ = c.limiter.Wait(context.Background())

	c.mu.Lock()
	defer c.mu.Unlock()

	raw, err := json.Marshal(sig.Values)
	if err != nil {
		return fmt.Errorf("cache: encode %s: %w", path, err)
	}
	rec := SignatureRecord{
		RepoRoot:     ns.RepoRoot,
		CommitHash:   ns.CommitHash,
		Path:         path,
		ContentHash:  contentHash,
		NumPerm:      sig.NumPerm(),
		Empty:        sig.Empty,
		SignatureRaw: string(raw),
		ShingleCount: shingleCount,
		UpdatedAt:    time.Now(),
	}

	return c.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "repo_root"}, {Name: "commit_hash"}, {Name: "path"}},
		DoUpdates: clause.AssignmentColumns([]string{"content_hash", "num_perm", "empty", "signature_json", "shingle_count", "updated_at"}),
	}).Create(&rec).Error
}

// ClearNamespace removes every entry cached for ns, so the next run over
// that checkout re-sketches every region.
func (c *SignatureCache) ClearNamespace(ns Namespace) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.db.Where("repo_root = ? AND commit_hash = ?", ns.RepoRoot, ns.CommitHash).
		Delete(&SignatureRecord{}).Error
}

// Close releases the underlying sqlite connection.
func (c *SignatureCache) Close() error {
	sqlDB, err := c.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
