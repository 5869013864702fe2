package safetypack

import (
	"errors"
	"fmt"
	"hash/fnv"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"shotscout/internal/provider"
)

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
	".tif":  true,
	".tiff": true,
}

var videoExtensions = map[string]bool{
	".mp4":  true,
	".mov":  true,
	".mkv":  true,
	".webm": true,
	".avi":  true,
}

// Asset is one local fallback file.
type Asset struct {
	LocalPath string `json:"local_path"`
	MediaType string `json:"media_type"`
}

// Pool is an immutable, sorted collection of local fallback assets.
type Pool struct {
	assets []Asset
}

// ScanDir builds a pool from the media files directly under dir, sorted by
// filename so the pool ordering, and with it every pick, is reproducible.
// A missing or empty directory yields an empty pool, not an error.
func ScanDir(dir string) (*Pool, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return &Pool{}, nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &Pool{}, nil
		}
		return nil, fmt.Errorf("scan fallback directory: %w", err)
	}

	assets := make([]Asset, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		mediaType := ""
		switch {
		case imageExtensions[ext]:
			mediaType = provider.MediaImage
		case videoExtensions[ext]:
			mediaType = provider.MediaVideo
		default:
			continue
		}
		assets = append(assets, Asset{
			LocalPath: filepath.Join(dir, entry.Name()),
			MediaType: mediaType,
		})
	}
	sort.Slice(assets, func(i, j int) bool { return assets[i].LocalPath < assets[j].LocalPath })
	return &Pool{assets: assets}, nil
}

// NewPool builds a pool from explicit assets, sorted the same way ScanDir
// sorts. Used by tests and by callers with preassembled pools.
func NewPool(assets []Asset) *Pool {
	sorted := make([]Asset, len(assets))
	copy(sorted, assets)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].LocalPath < sorted[j].LocalPath })
	return &Pool{assets: sorted}
}

// Size returns the number of assets in the pool.
func (p *Pool) Size() int {
	if p == nil {
		return 0
	}
	return len(p.assets)
}

// Pick returns the fallback asset for a scene and narration block, or nil
// when the pool is empty. The choice is a pure function of the ids: an
// FNV-1a hash of "sceneID::blockID" modulo the pool size.
func (p *Pool) Pick(sceneID, blockID string) *Asset {
	if p.Size() == 0 {
		return nil
	}
	h := fnv.New32a()
	h.Write([]byte(sceneID + "::" + blockID))
	asset := p.assets[int(h.Sum32()%uint32(len(p.assets)))]
	return &asset
}
