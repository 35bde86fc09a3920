package viewer

import (
	"github.com/gogpu/drape/scene"
)

// frameKey identifies a rendered frame: canvas size, camera pose and layer
// visibility.
type frameKey struct {
	cols, rows int
	yaw        float32
	pitch      float32
	distance   float32
	visible    uint64 // bit i set when layer i is visible
}

func keyOf(s *scene.Scene, cols, rows int) frameKey {
	k := frameKey{
		cols:     cols,
		rows:     rows,
		yaw:      s.Camera.Yaw,
		pitch:    s.Camera.Pitch,
		distance: s.Camera.Distance,
	}
	for i, l := range s.Layers {
		if l.Visible && i < 64 {
			k.visible |= 1 << i
		}
	}
	return k
}

// frameCache keeps recently rendered frames. When it holds more than limit
// frames the least recently used one is evicted. It is used only from the
// bubbletea update loop and needs no locking.
type frameCache struct {
	entries map[frameKey]*frameEntry
	limit   int
	tick    int64

	hits, misses int
}

type frameEntry struct {
	frame string
	atime int64
}

func newFrameCache(limit int) *frameCache {
	return &frameCache{
		entries: make(map[frameKey]*frameEntry),
		limit:   limit,
	}
}

func (c *frameCache) get(k frameKey) (string, bool) {
	e, ok := c.entries[k]
	if !ok {
		c.misses++
		return "", false
	}
	c.hits++
	c.tick++
	e.atime = c.tick
	return e.frame, true
}

func (c *frameCache) put(k frameKey, frame string) {
	c.tick++
	c.entries[k] = &frameEntry{frame: frame, atime: c.tick}
	if c.limit > 0 && len(c.entries) > c.limit {
		c.evictOldest()
	}
}

func (c *frameCache) evictOldest() {
	var (
		oldest  frameKey
		minTime int64 = -1
	)
	for k, e := range c.entries {
		if minTime < 0 || e.atime < minTime {
			oldest, minTime = k, e.atime
		}
	}
	if minTime >= 0 {
		delete(c.entries, oldest)
	}
}

func (c *frameCache) size() int {
	return len(c.entries)
}
