package cache

import (
	"encoding/binary"
	"strconv"

	"github.com/VictoriaMetrics/fastcache"
)

// MetadataCache caches NodeClient's scale-codec decimals introspection
// result and other small per-connection-generation facts (spec.md
// §4.1 token_decimals()), avoiding a repeat metadata walk on every
// retry attempt against the same connection generation.
type MetadataCache struct {
	fc *fastcache.Cache
}

// NewMetadataCache allocates a cache of approximately maxBytes.
func NewMetadataCache(maxBytes int) *MetadataCache {
	return &MetadataCache{fc: fastcache.New(maxBytes)}
}

func decimalsKey(network string, generation uint64) []byte {
	key := make([]byte, 0, len(network)+9)
	key = append(key, []byte(network)...)
	key = append(key, ':')
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], generation)
	return append(key, buf[:]...)
}

// PutDecimals records the introspected native decimals for a given
// connection generation (bumped on every reset, so a stale metadata
// read is never served after a reconnect).
func (c *MetadataCache) PutDecimals(network string, generation uint64, decimals int32) {
	c.fc.Set(decimalsKey(network, generation), []byte(strconv.Itoa(int(decimals))))
}

// GetDecimals returns the cached decimals for (network, generation), if
// any.
func (c *MetadataCache) GetDecimals(network string, generation uint64) (int32, bool) {
	v, ok := c.fc.HasGet(nil, decimalsKey(network, generation))
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(string(v))
	if err != nil {
		return 0, false
	}
	return int32(n), true
}

// Reset drops all cached entries, called whenever NodeClient performs a
// full connection reset (spec.md §4.1).
func (c *MetadataCache) Reset() {
	c.fc.Reset()
}
