package framecheck

import "image"

type frameClass int

const (
	frameClean frameClass = iota
	frameNearBlack
	frameChrome
	frameCaption
)

// Classification thresholds. Tuned against archival footage samples; the
// rule table keeps each signal independently testable.
const (
	nearBlackMeanLuma = 28.0

	chromeBandHeightFrac = 0.10
	chromeRedMinFrac     = 0.55

	captionBrightLuma    = 210.0
	captionBrightMinFrac = 0.05
	captionBrightMaxFrac = 0.45
	captionDarkLuma      = 80.0
	captionDarkMinFrac   = 0.35
)

func (c frameClass) String() string {
	switch c {
	case frameNearBlack:
		return "near_black"
	case frameChrome:
		return "ui_chrome"
	case frameCaption:
		return "caption_overlay"
	default:
		return "clean"
	}
}

// classifyFrame applies the rules in specificity order: a platform UI bar
// is the strongest signal, then whole-frame darkness, then a caption band.
func classifyFrame(frame image.Image) frameClass {
	bounds := frame.Bounds()
	if bounds.Dx() == 0 || bounds.Dy() == 0 {
		return frameClean
	}
	if hasChromeBar(frame) {
		return frameChrome
	}
	if meanLuma(frame, bounds) < nearBlackMeanLuma {
		return frameNearBlack
	}
	if hasCaptionBand(frame) {
		return frameCaption
	}
	return frameClean
}

// hasChromeBar looks for a saturated red horizontal band at the top or
// bottom edge, the signature of video-platform player chrome baked into
// screen recordings.
func hasChromeBar(frame image.Image) bool {
	bounds := frame.Bounds()
	bandHeight := int(float64(bounds.Dy()) * chromeBandHeightFrac)
	if bandHeight < 1 {
		bandHeight = 1
	}
	top := image.Rect(bounds.Min.X, bounds.Min.Y, bounds.Max.X, bounds.Min.Y+bandHeight)
	bottom := image.Rect(bounds.Min.X, bounds.Max.Y-bandHeight, bounds.Max.X, bounds.Max.Y)
	return redFraction(frame, top) >= chromeRedMinFrac || redFraction(frame, bottom) >= chromeRedMinFrac
}

// hasCaptionBand looks for burned-in subtitles: a lower third that mixes a
// meaningful share of bright text pixels into a mostly dark background.
func hasCaptionBand(frame image.Image) bool {
	bounds := frame.Bounds()
	lower := image.Rect(bounds.Min.X, bounds.Max.Y-bounds.Dy()/3, bounds.Max.X, bounds.Max.Y)
	bright, dark, total := 0, 0, 0
	for y := lower.Min.Y; y < lower.Max.Y; y++ {
		for x := lower.Min.X; x < lower.Max.X; x++ {
			luma := pixelLuma(frame, x, y)
			if luma >= captionBrightLuma {
				bright++
			} else if luma < captionDarkLuma {
				dark++
			}
			total++
		}
	}
	if total == 0 {
		return false
	}
	brightFrac := float64(bright) / float64(total)
	darkFrac := float64(dark) / float64(total)
	return brightFrac >= captionBrightMinFrac &&
		brightFrac <= captionBrightMaxFrac &&
		darkFrac >= captionDarkMinFrac
}

func meanLuma(frame image.Image, region image.Rectangle) float64 {
	var sum float64
	count := 0
	for y := region.Min.Y; y < region.Max.Y; y++ {
		for x := region.Min.X; x < region.Max.X; x++ {
			sum += pixelLuma(frame, x, y)
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}

func redFraction(frame image.Image, region image.Rectangle) float64 {
	red, total := 0, 0
	for y := region.Min.Y; y < region.Max.Y; y++ {
		for x := region.Min.X; x < region.Max.X; x++ {
			r, g, b := pixelRGB(frame, x, y)
			if r >= 170 && r > 2*g && r > 2*b {
				red++
			}
			total++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(red) / float64(total)
}

func pixelLuma(frame image.Image, x, y int) float64 {
	r, g, b := pixelRGB(frame, x, y)
	return 0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b)
}

func pixelRGB(frame image.Image, x, y int) (uint32, uint32, uint32) {
	r, g, b, _ := frame.At(x, y).RGBA()
	return r >> 8, g >> 8, b >> 8
}
