package models

import "time"

// CacheEntry is the durable-tier representation of a cached response.
type CacheEntry struct {
	InsertedAt time.Time      `json:"inserted_at"`
	Response   InvokeResponse `json:"response"`
}

// CacheStats reports cache occupancy and effectiveness.
type CacheStats struct {
	Enabled     bool  `json:"enabled"`
	Entries     int   `json:"entries"`
	MaxSize     int   `json:"max_size"`
	Hits        int64 `json:"hits"`
	Misses      int64 `json:"misses"`
	Evictions   int64 `json:"evictions"`
	Expirations int64 `json:"expirations"`
}
