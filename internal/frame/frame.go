package frame

import (
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

const (
	// ModeStretch resamples to the exact frame size, ignoring aspect ratio.
	ModeStretch = "stretch"
	// ModeFit keeps the aspect ratio and letterboxes onto black.
	ModeFit = "fit"
)

// Normalize decodes src with its EXIF orientation applied, resamples it to
// width x height with a Lanczos filter, flattens it onto an opaque black
// canvas and writes the result to dst. The format follows dst's extension.
func Normalize(src, dst string, width, height int, mode string) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("invalid frame size %dx%d", width, height)
	}

	img, err := imaging.Open(src, imaging.AutoOrientation(true))
	if err != nil {
		return fmt.Errorf("decode image %s: %w", src, err)
	}

	canvas := imaging.New(width, height, color.Black)

	var out *image.NRGBA
	switch mode {
	case ModeFit:
		out = imaging.OverlayCenter(canvas, imaging.Fit(img, width, height, imaging.Lanczos), 1.0)
	case ModeStretch, "":
		out = imaging.Overlay(canvas, imaging.Resize(img, width, height, imaging.Lanczos), image.Pt(0, 0), 1.0)
	default:
		return fmt.Errorf("unknown frame mode %q", mode)
	}

	if err := imaging.Save(out, dst); err != nil {
		return fmt.Errorf("write frame %s: %w", dst, err)
	}
	return nil
}
