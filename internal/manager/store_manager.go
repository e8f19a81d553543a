package manager

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/duynguyendang/termgraph/pkg/common/errors"
	"github.com/duynguyendang/termgraph/pkg/store"
)

// ReleaseMetadata represents one terminology release exposed by the API.
type ReleaseMetadata struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// MemoryProfile defines the memory optimization strategy
type MemoryProfile string

const (
	MemoryProfileDefault MemoryProfile = "default"
	MemoryProfileLow     MemoryProfile = "low"
	MaxOpenStores                      = 10
	ReleaseListTTL                     = 1 * time.Minute
)

// StoreManager manages one ConceptStore per terminology release, each in its
// own directory under baseDir. Open handles are LRU-bounded.
type StoreManager struct {
	baseDir       string
	releases      *lru.Cache[string, *store.ConceptStore]
	mu            sync.RWMutex
	profile       MemoryProfile
	readOnly      bool
	cachedList    []ReleaseMetadata
	lastListBuild time.Time
}

// NewStoreManager creates a new StoreManager.
func NewStoreManager(baseDir string, profile MemoryProfile, readOnly bool) *StoreManager {
	// Create LRU cache with eviction callback to close stores
	cache, _ := lru.NewWithEvict[string, *store.ConceptStore](MaxOpenStores, func(key string, value *store.ConceptStore) {
		_ = value.Close()
	})

	return &StoreManager{
		baseDir:  baseDir,
		releases: cache,
		profile:  profile,
		readOnly: readOnly,
	}
}

// GetStore retrieves a store by release ID, opening it if necessary. An empty
// ID resolves to the latest release.
func (sm *StoreManager) GetStore(releaseID string) (*store.ConceptStore, error) {
	if releaseID == "" {
		latest, err := sm.LatestRelease()
		if err != nil {
			return nil, err
		}
		releaseID = latest
	}

	// Fast path: lru.Get updates recency
	if s, ok := sm.releases.Get(releaseID); ok {
		return s, nil
	}

	sm.mu.Lock()
	defer sm.mu.Unlock()

	// Double-check under lock
	if s, ok := sm.releases.Get(releaseID); ok {
		return s, nil
	}

	releaseDir := filepath.Join(sm.baseDir, releaseID)
	if _, err := os.Stat(releaseDir); os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: release %s", errors.ErrNotFound, releaseID)
	}

	cfg := store.DefaultConfig(releaseDir)
	cfg.ReadOnly = sm.readOnly
	// Bypass the lock guard so the server can read a store while an ingest
	// run holds the write lock.
	cfg.BypassLockGuard = true

	if sm.profile == MemoryProfileLow {
		cfg.BlockCacheSize = 64 << 20 // 64 MB
		cfg.IndexCacheSize = 64 << 20 // 64 MB
		cfg.Profile = "Safe-Serving"
	} else {
		cfg.BlockCacheSize = 128 << 20 // 128 MB
		cfg.IndexCacheSize = 128 << 20 // 128 MB
		cfg.Profile = "Safe-Serving"
	}

	s, err := store.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open store for release %s: %w", releaseID, err)
	}

	sm.releases.Add(releaseID, s)
	return s, nil
}

// LatestRelease returns the lexically last release directory name. Release
// dirs are named after their version (e.g. 24.01e), so this is the newest.
func (sm *StoreManager) LatestRelease() (string, error) {
	releases, err := sm.ListReleases()
	if err != nil {
		return "", err
	}
	if len(releases) == 0 {
		return "", fmt.Errorf("%w: no releases in %s", errors.ErrNotFound, sm.baseDir)
	}
	ids := make([]string, len(releases))
	for i, r := range releases {
		ids[i] = r.ID
	}
	sort.Strings(ids)
	return ids[len(ids)-1], nil
}

// ListReleases returns the available releases.
func (sm *StoreManager) ListReleases() ([]ReleaseMetadata, error) {
	sm.mu.RLock()
	if time.Since(sm.lastListBuild) < ReleaseListTTL && sm.cachedList != nil {
		// Return copy to be safe
		list := make([]ReleaseMetadata, len(sm.cachedList))
		copy(list, sm.cachedList)
		sm.mu.RUnlock()
		return list, nil
	}
	sm.mu.RUnlock()

	sm.mu.Lock()
	defer sm.mu.Unlock()

	// Double-check
	if time.Since(sm.lastListBuild) < ReleaseListTTL && sm.cachedList != nil {
		list := make([]ReleaseMetadata, len(sm.cachedList))
		copy(list, sm.cachedList)
		return list, nil
	}

	entries, err := os.ReadDir(sm.baseDir)
	if err != nil {
		return nil, err
	}

	var releases []ReleaseMetadata
	for _, entry := range entries {
		if entry.IsDir() {
			id := entry.Name()
			meta := ReleaseMetadata{
				ID:   id,
				Name: id, // Default name is directory name
			}

			// Try to read metadata.json
			metaPath := filepath.Join(sm.baseDir, id, "metadata.json")
			if data, err := os.ReadFile(metaPath); err == nil {
				var jsonMeta ReleaseMetadata
				if err := json.Unmarshal(data, &jsonMeta); err == nil {
					if jsonMeta.Name != "" {
						meta.Name = jsonMeta.Name
					}
					meta.Description = jsonMeta.Description
				}
			}
			releases = append(releases, meta)
		}
	}

	sm.cachedList = releases
	sm.lastListBuild = time.Now()

	return releases, nil
}

// CloseAll closes all open stores.
func (sm *StoreManager) CloseAll() {
	sm.releases.Purge()
}
