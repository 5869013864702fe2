package framecheck

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/png"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// MediaInfo carries the container metadata the gate decides on.
type MediaInfo struct {
	Width       int
	Height      int
	DurationSec float64
}

// MediaProbe inspects media and samples frames for classification.
type MediaProbe interface {
	Inspect(ctx context.Context, url string) (MediaInfo, error)
	SampleFrames(ctx context.Context, url string, count int) ([]image.Image, error)
}

// FFProbe implements MediaProbe by shelling out to ffprobe and ffmpeg.
// Remote URLs are handed to the binaries directly; both tools read HTTP
// sources natively.
type FFProbe struct {
	ffprobeBin string
	ffmpegBin  string
	timeout    time.Duration
}

// NewFFProbe builds the probe. Empty binary names fall back to the
// commands on PATH.
func NewFFProbe(ffprobeBin, ffmpegBin string, timeout time.Duration) *FFProbe {
	ffprobeBin = strings.TrimSpace(ffprobeBin)
	if ffprobeBin == "" {
		ffprobeBin = "ffprobe"
	}
	ffmpegBin = strings.TrimSpace(ffmpegBin)
	if ffmpegBin == "" {
		ffmpegBin = "ffmpeg"
	}
	return &FFProbe{ffprobeBin: ffprobeBin, ffmpegBin: ffmpegBin, timeout: timeout}
}

type probeOutput struct {
	Streams []struct {
		CodecType string `json:"codec_type"`
		Width     int    `json:"width"`
		Height    int    `json:"height"`
	} `json:"streams"`
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// Inspect executes ffprobe against the URL and decodes the JSON response.
func (p *FFProbe) Inspect(ctx context.Context, url string) (MediaInfo, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return MediaInfo{}, errors.New("ffprobe inspect: empty url")
	}
	ctx, cancel := p.callContext(ctx)
	defer cancel()

	cmd := exec.CommandContext(ctx, p.ffprobeBin,
		"-v", "error", "-hide_banner", "-show_format", "-show_streams", "-of", "json", url)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return MediaInfo{}, fmt.Errorf("ffprobe inspect: %w: %s", err, strings.TrimSpace(string(output)))
	}

	var parsed probeOutput
	if err := json.Unmarshal(output, &parsed); err != nil {
		return MediaInfo{}, fmt.Errorf("ffprobe parse: %w", err)
	}

	info := MediaInfo{}
	for _, stream := range parsed.Streams {
		if strings.EqualFold(stream.CodecType, "video") && stream.Width > 0 {
			info.Width = stream.Width
			info.Height = stream.Height
			break
		}
	}
	if duration, err := strconv.ParseFloat(strings.TrimSpace(parsed.Format.Duration), 64); err == nil && duration > 0 {
		info.DurationSec = duration
	}
	return info, nil
}

// SampleFrames extracts count frames spread evenly across the media's
// duration. Still images always yield a single frame at offset zero.
func (p *FFProbe) SampleFrames(ctx context.Context, url string, count int) ([]image.Image, error) {
	if count < 1 {
		count = 1
	}
	info, err := p.Inspect(ctx, url)
	if err != nil {
		return nil, err
	}
	if info.DurationSec <= 0 {
		count = 1
	}

	frames := make([]image.Image, 0, count)
	for i := 0; i < count; i++ {
		offset := 0.0
		if info.DurationSec > 0 {
			offset = info.DurationSec * float64(i+1) / float64(count+1)
		}
		frame, err := p.extractFrame(ctx, url, offset)
		if err != nil {
			return nil, err
		}
		frames = append(frames, frame)
	}
	return frames, nil
}

func (p *FFProbe) extractFrame(ctx context.Context, url string, offsetSec float64) (image.Image, error) {
	ctx, cancel := p.callContext(ctx)
	defer cancel()

	args := []string{"-v", "error", "-hide_banner"}
	if offsetSec > 0 {
		args = append(args, "-ss", strconv.FormatFloat(offsetSec, 'f', 2, 64))
	}
	args = append(args, "-i", url, "-frames:v", "1", "-c:v", "png", "-f", "image2pipe", "-")

	cmd := exec.CommandContext(ctx, p.ffmpegBin, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffmpeg frame extract: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	frame, err := png.Decode(&stdout)
	if err != nil {
		return nil, fmt.Errorf("decode sampled frame: %w", err)
	}
	return frame, nil
}

func (p *FFProbe) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if p.timeout > 0 {
		return context.WithTimeout(ctx, p.timeout)
	}
	return context.WithCancel(ctx)
}
