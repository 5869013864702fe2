// Package framecheck is the perceptual quality gate for candidate media.
//
// A MediaProbe inspects container metadata and samples frames; the real
// implementation shells out to ffprobe and ffmpeg with timeouts. Sampled
// frames are classified by a small rule table (near-black, platform UI
// chrome, caption overlay) and the verdict is taken by vote so a single
// odd frame cannot reject genuinely good footage.
//
// The gate is a heuristic pre-filter. Any probe failure means
// "insufficient data" and the candidate passes unverified; only positive
// evidence rejects.
package framecheck
