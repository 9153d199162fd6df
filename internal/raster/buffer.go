package raster

import (
	"image"

	"github.com/chewxy/math32"
)

// FrameBuffer is the render target: RGBA colour and a depth value per
// pixel, where larger depth is nearer.
type FrameBuffer struct {
	Width, Height int
	Color         []uint8
	ZBuf          []float32
}

// NewFrameBuffer returns a transparent w×h buffer with every depth at -Inf.
func NewFrameBuffer(w, h int) *FrameBuffer {
	fb := &FrameBuffer{
		Width:  w,
		Height: h,
		Color:  make([]uint8, w*h*4),
		ZBuf:   make([]float32, w*h),
	}
	far := math32.Inf(-1)
	for i := range fb.ZBuf {
		fb.ZBuf[i] = far
	}
	return fb
}

// Image wraps the colour buffer without copying it.
func (fb *FrameBuffer) Image() *image.NRGBA {
	return &image.NRGBA{
		Pix:    fb.Color,
		Stride: fb.Width * 4,
		Rect:   image.Rect(0, 0, fb.Width, fb.Height),
	}
}
