// Copyright 2024-2025 NetCracker Technology Corporation
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package disk_cache

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/Netcracker/qubership-apihub-capture-manager/view"
	"github.com/akrylysov/pogreb"
	log "github.com/sirupsen/logrus"
)

const (
	ErrorCacheIsNil         = "current cache for %s is nil"
	ErrorCacheLookup        = "cache %s lookup failed for key %s. Error %v"
	ErrorCacheDelete        = "cache %s failed to delete key %s. Error %v"
	ErrorCacheStore         = "cache %s failed to store item under key %s. Error %v"
	ErrorCacheIterate       = "cache %s iteration failed. Error %v"
	ErrorCacheKeyNotInvalid = "invalid cache key for %s"
)

// DiskCache
// a small persistent key/value store
type DiskCache interface {
	StoreItem(cacheKey string, value []byte) error
	// GetItem returns nil without error when the key is absent
	GetItem(cacheKey string) ([]byte, error)
	DeleteItem(cacheKey string) error
	// Items returns a snapshot of every stored item
	Items() (map[string][]byte, error)
	Sync() int
	Count() int
	// Close flushes and closes the store, files are kept
	Close() error
	// Destroy closes the store and removes its files
	Destroy() error
}

// diskCache
// implementation for public interface
type diskCache struct {
	lock      sync.Mutex
	db        *pogreb.DB
	cacheName string
	cacheDir  string
}

// NewDiskCache
// opens (or creates) the store at cacheDir/cacheName
func NewDiskCache(cacheName string, cacheDir string) (DiskCache, error) {
	if cacheName == view.EmptyString {
		return nil, fmt.Errorf("cache name must not be empty")
	}
	if cacheDir == view.EmptyString {
		cacheDir = os.TempDir()
	}
	cachePath := filepath.Join(cacheDir, cacheName)
	db, err := pogreb.Open(cachePath, nil)
	if err != nil {
		return nil, fmt.Errorf("unable to open cache %s at '%s': %w", cacheName, cachePath, err)
	}
	log.Debugf("cache %s opened at '%s' with %d item(s)", cacheName, cachePath, db.Count())
	return &diskCache{db: db, cacheName: cacheName, cacheDir: cachePath}, nil
}

// StoreItem
// store item in cache, replaces a previous value
func (cache *diskCache) StoreItem(cacheKey string, value []byte) error {
	if cacheKey == view.EmptyString {
		return fmt.Errorf(ErrorCacheKeyNotInvalid, cache.cacheName)
	}
	cache.lock.Lock()
	defer cache.lock.Unlock()
	if cache.db == nil {
		return fmt.Errorf(ErrorCacheIsNil, cache.cacheName)
	}
	if err := cache.db.Put([]byte(cacheKey), value); err != nil {
		return fmt.Errorf(ErrorCacheStore, cache.cacheName, cacheKey, err)
	}
	return nil
}

// GetItem
// returns item value as byte array
func (cache *diskCache) GetItem(cacheKey string) ([]byte, error) {
	if cacheKey == view.EmptyString {
		return nil, fmt.Errorf(ErrorCacheKeyNotInvalid, cache.cacheName)
	}
	cache.lock.Lock()
	defer cache.lock.Unlock()
	if cache.db == nil {
		return nil, fmt.Errorf(ErrorCacheIsNil, cache.cacheName)
	}
	val, err := cache.db.Get([]byte(cacheKey))
	if err != nil {
		return nil, fmt.Errorf(ErrorCacheLookup, cache.cacheName, cacheKey, err)
	}
	return val, nil
}

// DeleteItem
// removes the key, a missing key is not an error
func (cache *diskCache) DeleteItem(cacheKey string) error {
	if cacheKey == view.EmptyString {
		return fmt.Errorf(ErrorCacheKeyNotInvalid, cache.cacheName)
	}
	cache.lock.Lock()
	defer cache.lock.Unlock()
	if cache.db == nil {
		return fmt.Errorf(ErrorCacheIsNil, cache.cacheName)
	}
	if err := cache.db.Delete([]byte(cacheKey)); err != nil {
		return fmt.Errorf(ErrorCacheDelete, cache.cacheName, cacheKey, err)
	}
	return nil
}

func (cache *diskCache) Items() (map[string][]byte, error) {
	cache.lock.Lock()
	defer cache.lock.Unlock()
	if cache.db == nil {
		return nil, fmt.Errorf(ErrorCacheIsNil, cache.cacheName)
	}
	ret := make(map[string][]byte)
	it := cache.db.Items()
	for {
		key, val, err := it.Next()
		if errors.Is(err, pogreb.ErrIterationDone) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf(ErrorCacheIterate, cache.cacheName, err)
		}
		ret[string(key)] = val
	}
	return ret, nil
}

// Sync
// flush cache data on disk, returns item count or -1
func (cache *diskCache) Sync() int {
	cache.lock.Lock()
	defer cache.lock.Unlock()
	if cache.db != nil && cache.db.Sync() == nil {
		return int(cache.db.Count())
	}
	return -1
}

// Count
// returns cached item count
func (cache *diskCache) Count() int {
	cache.lock.Lock()
	defer cache.lock.Unlock()
	if cache.db != nil {
		return int(cache.db.Count())
	}
	return -1
}

func (cache *diskCache) Close() error {
	cache.lock.Lock()
	defer cache.lock.Unlock()
	if cache.db == nil {
		return fmt.Errorf(ErrorCacheIsNil, cache.cacheName)
	}
	recCnt := cache.db.Count()
	err := cache.db.Close()
	cache.db = nil
	if err != nil {
		return fmt.Errorf("unable to close cache %s: %w", cache.cacheName, err)
	}
	log.Debugf("Cache %s closed (%d)", cache.cacheName, recCnt)
	return nil
}

func (cache *diskCache) Destroy() error {
	if err := cache.Close(); err != nil {
		log.Debugf("cache %s close before removal: %v", cache.cacheName, err)
	}
	if _, err := os.Stat(cache.cacheDir); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("cache path is not accessible '%s'. Error: %v", cache.cacheDir, err)
	}
	if err := os.RemoveAll(cache.cacheDir); err != nil {
		return fmt.Errorf("unable to delete cache files at '%s'. Error: %v", cache.cacheDir, err)
	}
	return nil
}
