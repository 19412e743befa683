package feed

import (
	"context"
	"fmt"
	"sync"

	"group-gallery-client/internal/models"

	"github.com/rs/zerolog/log"
)

// Fetcher retrieves one page of the group feed
type Fetcher interface {
	ListMedia(ctx context.Context, groupID string, page int) (models.PageResult, error)
}

// Snapshot is an immutable copy of the pager's state. The version counter
// increments on every mutation, so renderers can cheaply detect change.
type Snapshot struct {
	Items     []models.MediaItem
	Page      int
	HasMore   bool
	IsLoading bool
	Version   uint64
}

// Pager owns the ordered list of media items for a group and drives
// forward-only incremental loading plus a full-refresh mode. All
// mutation of the item list goes through its operations; Snapshot hands
// out copies, never the backing slice.
type Pager struct {
	mu       sync.Mutex
	fetch    Fetcher
	items    []models.MediaItem
	page     int
	hasMore  bool
	loading  bool
	version  uint64
	sentinel *Sentinel
}

// NewPager creates a pager backed by the given fetcher
func NewPager(fetch Fetcher) *Pager {
	return &Pager{fetch: fetch}
}

// Snapshot returns a copy of the current state
func (p *Pager) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Snapshot{
		Items:     append([]models.MediaItem(nil), p.items...),
		Page:      p.page,
		HasMore:   p.hasMore,
		IsLoading: p.loading,
		Version:   p.version,
	}
}

// Load fetches page one and replaces the item list
func (p *Pager) Load(ctx context.Context, groupID string) error {
	p.mu.Lock()
	p.page = 1
	p.loading = true
	p.version++
	p.mu.Unlock()

	result, err := p.fetch.ListMedia(ctx, groupID, 1)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.loading = false
	p.version++

	if err != nil {
		// Fail loud: clear the list and show the empty state rather than
		// keeping possibly stale items around.
		p.items = nil
		return fmt.Errorf("failed to load feed: %w", err)
	}

	p.items = result.Media
	p.hasMore = result.HasMore
	return nil
}

// LoadMore fetches the next page and appends it. It is a no-op while a
// fetch is in flight or once the last page has been reached; the bool
// reports whether a fetch was actually started.
func (p *Pager) LoadMore(ctx context.Context, groupID string) (bool, error) {
	p.mu.Lock()
	if p.loading || !p.hasMore {
		p.mu.Unlock()
		return false, nil
	}
	p.loading = true
	p.page++
	page := p.page
	p.version++
	p.mu.Unlock()

	result, err := p.fetch.ListMedia(ctx, groupID, page)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.loading = false
	p.version++

	if err != nil {
		p.items = nil
		return true, fmt.Errorf("failed to load page %d: %w", page, err)
	}

	p.items = append(p.items, result.Media...)
	p.hasMore = result.HasMore
	return true, nil
}

// Refresh re-fetches every page loaded so far, in order, and replaces the
// item list with the concatenation. Used after an upload so new items
// appear without losing previously loaded pages; hasMore is recomputed
// from the last page's response.
func (p *Pager) Refresh(ctx context.Context, groupID string) error {
	p.mu.Lock()
	pages := p.page
	if pages < 1 {
		pages = 1
	}
	p.loading = true
	p.version++
	p.mu.Unlock()

	var all []models.MediaItem
	var hasMore bool
	var fetchErr error

	for n := 1; n <= pages; n++ {
		result, err := p.fetch.ListMedia(ctx, groupID, n)
		if err != nil {
			fetchErr = fmt.Errorf("failed to refresh page %d: %w", n, err)
			break
		}
		all = append(all, result.Media...)
		hasMore = result.HasMore
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.loading = false
	p.version++

	if fetchErr != nil {
		p.items = nil
		return fetchErr
	}

	p.items = all
	p.page = pages
	p.hasMore = hasMore
	log.Debug().Int("pages", pages).Int("items", len(all)).Msg("Feed refreshed")
	return nil
}

// ArmSentinel attaches a fresh load-more sentinel for the current last
// rendered item and detaches the previous one, so a stale sentinel from
// an earlier render can never trigger a duplicate fetch.
func (p *Pager) ArmSentinel(onVisible func()) *Sentinel {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.sentinel != nil {
		p.sentinel.Detach()
	}
	p.sentinel = NewSentinel(onVisible)
	return p.sentinel
}
