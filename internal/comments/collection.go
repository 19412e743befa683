package comments

import (
	"sync"

	"group-gallery-client/internal/models"
)

// CollectionSnapshot is an immutable copy of the confirmed comment list
type CollectionSnapshot struct {
	Comments []models.Comment
	Version  uint64
}

// Collection is the exclusively-owned confirmed comment list of a post.
// Callers never mutate a shared slice in place; every change goes through
// Append or Replace and hands back a fresh versioned snapshot.
type Collection struct {
	mu      sync.Mutex
	items   []models.Comment
	version uint64
}

// NewCollection creates an empty collection
func NewCollection() *Collection {
	return &Collection{}
}

// Append adds one confirmed comment and returns the new snapshot
func (c *Collection) Append(comment models.Comment) CollectionSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = append(c.items, comment)
	c.version++
	return c.snapshotLocked()
}

// Replace swaps in a full server-confirmed list and returns the new snapshot
func (c *Collection) Replace(items []models.Comment) CollectionSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = append([]models.Comment(nil), items...)
	c.version++
	return c.snapshotLocked()
}

// Snapshot returns a copy of the current list
func (c *Collection) Snapshot() CollectionSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Collection) snapshotLocked() CollectionSnapshot {
	return CollectionSnapshot{
		Comments: append([]models.Comment(nil), c.items...),
		Version:  c.version,
	}
}
