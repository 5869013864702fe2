// Package director deduplicates sanitized queries across scenes, assigns
// priorities and visual types, and derives per-type coverage requirements.
package director
