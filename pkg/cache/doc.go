// Package cache provides a bounded, concurrency-safe LRU cache with an
// eviction hook for releasing resources held by evicted values.
package cache
