// Package permutation pre-generates the per-cluster data permutations consumed by the training binary, and caches
// them on disk so each permutation is only computed once.
package permutation

import (
	"fmt"
	"github.com/hscells/wildbench/grid"
	"github.com/peterbourgon/diskv"
	"path/filepath"
	"sync"
)

// Cache stores permutations under <dir>/<dataset>/<clusters>_<threads>.txt.
type Cache struct {
	Dir string

	mu     sync.Mutex
	stores map[string]*diskv.Diskv
}

// NewCache creates a permutation cache rooted at dir.
func NewCache(dir string) *Cache {
	return &Cache{
		Dir:    dir,
		stores: make(map[string]*diskv.Diskv),
	}
}

// flatTransform keeps every permutation of a dataset in the same directory.
func flatTransform(string) []string {
	return []string{}
}

func (c *Cache) store(dataset string) *diskv.Diskv {
	c.mu.Lock()
	defer c.mu.Unlock()
	if d, ok := c.stores[dataset]; ok {
		return d
	}
	d := diskv.New(diskv.Options{
		BasePath:     c.DatasetDir(dataset),
		Transform:    flatTransform,
		CacheSizeMax: 0,
	})
	c.stores[dataset] = d
	return d
}

// Key is the file name of a permutation.
func Key(clusters, threads int) string {
	return fmt.Sprintf("%d_%d.txt", clusters, threads)
}

// DatasetDir is the directory holding the permutations of a dataset.
func (c *Cache) DatasetDir(dataset string) string {
	return filepath.Join(c.Dir, dataset)
}

// Path is where the permutation of a dataset is stored, whether or not it exists yet.
func (c *Cache) Path(dataset string, clusters, threads int) string {
	return filepath.Join(c.DatasetDir(dataset), Key(clusters, threads))
}

// Has reports whether a permutation has been generated.
func (c *Cache) Has(dataset string, clusters, threads int) bool {
	return c.store(dataset).Has(Key(clusters, threads))
}

// Lookup returns the path of a cached permutation, or grid.PermutationNone when it has not been generated.
func (c *Cache) Lookup(dataset string, clusters, threads int) string {
	if !c.Has(dataset, clusters, threads) {
		return grid.PermutationNone
	}
	return c.Path(dataset, clusters, threads)
}

// Import moves a freshly generated permutation file into the cache.
func (c *Cache) Import(dataset string, clusters, threads int, src string) error {
	return c.store(dataset).Import(src, Key(clusters, threads), true)
}

// Erase removes a cached permutation so it is generated again.
func (c *Cache) Erase(dataset string, clusters, threads int) error {
	return c.store(dataset).Erase(Key(clusters, threads))
}
