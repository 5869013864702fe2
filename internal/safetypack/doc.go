// Package safetypack is the terminal never-fail guarantee: a pool of local
// evergreen assets scanned from disk, with a deterministic pick per scene
// and narration block. Selection hashes the scene and block ids instead of
// drawing randomly so repeated runs assign the same fallback footage.
package safetypack
