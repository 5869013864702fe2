package curator

import (
	"crypto/sha1"
	"encoding/hex"
	"strings"

	"shotscout/internal/provider"
	"shotscout/internal/textutil"
)

// fingerprint derives the dedup identity for a candidate: the stable source
// item id when present, else a hash of the canonical URL, else a hash of the
// normalized title. An empty return marks the candidate unidentifiable.
func fingerprint(c provider.Candidate) string {
	if id := strings.TrimSpace(c.ItemID); id != "" {
		source := strings.TrimSpace(c.Source)
		if source == "" {
			source = "unknown"
		}
		return source + "/" + id
	}
	if url := strings.TrimSpace(c.URL); url != "" {
		return hashToken("url", url)
	}
	if title := textutil.NormalizeQuery(c.Title); title != "" {
		return hashToken("title", title)
	}
	return ""
}

func hashToken(kind, value string) string {
	sum := sha1.Sum([]byte(value))
	return kind + ":" + hex.EncodeToString(sum[:])
}
