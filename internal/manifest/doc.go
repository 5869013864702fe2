// Package manifest assembles the SourcePack: the per-scene asset
// assignment handed to the renderer. Scenes receive their recommended
// assets first, then visual-type affinity picks as texture, and finally
// safety-pack fallbacks for scenes that would otherwise run empty. The
// coverage invariant holds whenever the fallback pool is non-empty: no
// scene leaves this stage without at least one entry.
package manifest
