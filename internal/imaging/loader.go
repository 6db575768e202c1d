package imaging

import (
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"os"
	"slices"
	"sync"

	_ "github.com/spakin/netpbm" // Register PBM/PGM/PPM/PAM decoders
)

// PageCache provides thread-safe caching of decoded page rasters.
//
// Rasterizers hand pages over as image files; a page is usually analyzed by
// several tools in a row (staff detection, note detection, overlay), so the
// decoded Raster is kept keyed by its path until evicted.
//
// # Memory Management
//
// A 300 dpi letter page is roughly 35 MB as RGBA. A cache built with a
// positive capacity drops the oldest page when a new one would exceed it;
// long-running processes should still Evict pages once a document is
// finished.
type PageCache struct {
	mu       sync.RWMutex
	pages    map[string]*cachedPage
	order    []string // insertion order, oldest first
	capacity int
}

type cachedPage struct {
	raster *Raster
	format string
}

// NewPageCache creates an empty cache holding at most capacity pages
// (0 means unbounded).
func NewPageCache(capacity int) *PageCache {
	return &PageCache{
		pages:    make(map[string]*cachedPage),
		capacity: max(0, capacity),
	}
}

// Load returns the raster for path, decoding it on first use.
//
// Supported formats are PNG, JPEG, GIF and the netpbm family (PBM, PGM, PPM,
// PAM). The returned Raster is shared between callers and must be treated as
// read-only.
func (c *PageCache) Load(path string) (*Raster, error) {
	p, err := c.load(path)
	if err != nil {
		return nil, err
	}
	return p.raster, nil
}

func (c *PageCache) load(path string) (*cachedPage, error) {
	c.mu.RLock()
	if p, ok := c.pages[path]; ok {
		c.mu.RUnlock()
		return p, nil
	}
	c.mu.RUnlock()

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open page: %w", err)
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode page: %w", err)
	}

	p := &cachedPage{raster: FromImage(img), format: format}

	c.mu.Lock()
	defer c.mu.Unlock()
	if cached, ok := c.pages[path]; ok {
		return cached, nil
	}
	if c.capacity > 0 && len(c.order) >= c.capacity {
		delete(c.pages, c.order[0])
		c.order = c.order[1:]
	}
	c.pages[path] = p
	c.order = append(c.order, path)
	return p, nil
}

// Clear drops every cached page.
func (c *PageCache) Clear() {
	c.mu.Lock()
	c.pages = make(map[string]*cachedPage)
	c.order = nil
	c.mu.Unlock()
}

// Evict drops a single page. Unknown paths are ignored.
func (c *PageCache) Evict(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.pages[path]; !ok {
		return
	}
	delete(c.pages, path)
	c.order = slices.DeleteFunc(c.order, func(p string) bool { return p == path })
}

// Len reports how many pages are cached.
func (c *PageCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.pages)
}

// PageInfo describes a loaded page raster.
type PageInfo struct {
	// Width is the page width in pixels.
	Width int `json:"width"`

	// Height is the page height in pixels.
	Height int `json:"height"`

	// Format is the decoder that recognized the file ("png", "jpeg", "gif",
	// "pbm", "pgm", "ppm" or "pam").
	Format string `json:"format"`

	// FileSizeBytes is the size of the file on disk.
	FileSizeBytes int64 `json:"file_size_bytes"`
}

// LoadPageInfo loads a page through the cache and reports its metadata.
func LoadPageInfo(cache *PageCache, path string) (*PageInfo, error) {
	p, err := cache.load(path)
	if err != nil {
		return nil, err
	}

	stat, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	return &PageInfo{
		Width:         p.raster.Width,
		Height:        p.raster.Height,
		Format:        p.format,
		FileSizeBytes: stat.Size(),
	}, nil
}
