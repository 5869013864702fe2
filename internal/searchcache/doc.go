// Package searchcache persists federated search results on disk, keyed by
// (provider, media type, normalized query). Hits skip network calls entirely,
// which both respects provider rate limits and keeps runs reproducible.
package searchcache
