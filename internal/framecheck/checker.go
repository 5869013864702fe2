package framecheck

import (
	"context"
	"image"
	"log/slog"

	"shotscout/internal/logging"
	"shotscout/internal/provider"
)

// Verdict statuses. Unverified candidates continue downstream; the gate
// only blocks on positive evidence.
const (
	StatusAccepted   = "accepted"
	StatusRejected   = "rejected"
	StatusUnverified = "unverified"
)

// Rejection reasons.
const (
	ReasonBelowResolution  = "below_resolution_floor"
	ReasonChrome           = "ui_chrome"
	ReasonNearBlack        = "near_black_majority"
	ReasonCaption          = "caption_supermajority"
	ReasonProbeFailed      = "probe_failed"
	ReasonSamplingFailed   = "frame_sampling_failed"
	ReasonCheckingDisabled = "checking_disabled"
)

// Verdict is the gate outcome for one candidate.
type Verdict struct {
	Status        string `json:"status"`
	Reason        string `json:"reason,omitempty"`
	FramesSampled int    `json:"frames_sampled,omitempty"`
	Width         int    `json:"width,omitempty"`
	Height        int    `json:"height,omitempty"`
}

// Options controls the gate.
type Options struct {
	Enabled   bool
	MinWidth  int
	MinHeight int
	// LongDurationSec is the cutoff above which three frames are sampled
	// instead of one.
	LongDurationSec float64
}

// DefaultOptions returns the stock gate settings.
func DefaultOptions() Options {
	return Options{
		Enabled:         true,
		MinWidth:        480,
		MinHeight:       360,
		LongDurationSec: 30,
	}
}

// Checker runs the perceptual gate over candidates with retrievable media.
type Checker struct {
	probe  MediaProbe
	opts   Options
	logger *slog.Logger
}

// New builds a checker. A nil probe disables checking; every candidate
// then passes unverified.
func New(probe MediaProbe, opts Options, logger *slog.Logger) *Checker {
	if opts.LongDurationSec <= 0 {
		opts.LongDurationSec = DefaultOptions().LongDurationSec
	}
	return &Checker{
		probe:  probe,
		opts:   opts,
		logger: logging.NewComponentLogger(logger, "framecheck"),
	}
}

// Check gates one candidate. Probe and sampling failures are insufficient
// data, not rejections.
func (c *Checker) Check(ctx context.Context, candidate provider.Candidate) Verdict {
	if !c.opts.Enabled || c.probe == nil {
		return Verdict{Status: StatusUnverified, Reason: ReasonCheckingDisabled}
	}

	info, err := c.probe.Inspect(ctx, candidate.URL)
	if err != nil {
		c.logger.Debug("probe failed, passing unverified",
			logging.String("item_id", candidate.ItemID),
			logging.Error(err))
		return Verdict{Status: StatusUnverified, Reason: ReasonProbeFailed}
	}

	verdict := Verdict{Width: info.Width, Height: info.Height}
	if info.Width > 0 && info.Height > 0 &&
		(info.Width < c.opts.MinWidth || info.Height < c.opts.MinHeight) {
		verdict.Status = StatusRejected
		verdict.Reason = ReasonBelowResolution
		return verdict
	}

	frameCount := 1
	if candidate.MediaType == provider.MediaVideo && info.DurationSec >= c.opts.LongDurationSec {
		frameCount = 3
	}
	frames, err := c.probe.SampleFrames(ctx, candidate.URL, frameCount)
	if err != nil || len(frames) == 0 {
		if err != nil {
			c.logger.Debug("frame sampling failed, passing unverified",
				logging.String("item_id", candidate.ItemID),
				logging.Error(err))
		}
		verdict.Status = StatusUnverified
		verdict.Reason = ReasonSamplingFailed
		return verdict
	}

	verdict.FramesSampled = len(frames)
	verdict.Status, verdict.Reason = vote(frames)
	return verdict
}

// vote tallies frame classes. Any chrome hit rejects outright; near-black
// needs a majority and caption overlay a supermajority, so one bad frame
// in otherwise good footage is forgiven.
func vote(frames []image.Image) (string, string) {
	black, caption := 0, 0
	for _, frame := range frames {
		switch classifyFrame(frame) {
		case frameChrome:
			return StatusRejected, ReasonChrome
		case frameNearBlack:
			black++
		case frameCaption:
			caption++
		}
	}
	n := len(frames)
	if black > n/2 {
		return StatusRejected, ReasonNearBlack
	}
	if caption*3 >= n*2 {
		return StatusRejected, ReasonCaption
	}
	return StatusAccepted, ""
}
