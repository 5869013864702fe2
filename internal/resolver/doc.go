// Package resolver fans strategic queries out across the configured search
// providers with disk caching, per-provider throttling, bounded concurrency,
// and a partial-failure policy: one provider failing never fails a query,
// and a query with no surviving providers yields zero candidates, which
// downstream stages treat as a normal state.
package resolver
