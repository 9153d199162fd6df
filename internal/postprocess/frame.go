package postprocess

import (
	"image"
	"image/draw"

	xdraw "golang.org/x/image/draw"
)

// DefaultFillRatio is the share of the canvas the longest side occupies.
const DefaultFillRatio = 0.9

// opaqueBounds returns the bounding box of pixels with non-zero alpha.
func opaqueBounds(img *image.NRGBA) image.Rectangle {
	b := img.Bounds()
	r := image.Rectangle{}
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if img.Pix[img.PixOffset(x, y)+3] == 0 {
				continue
			}
			r = r.Union(image.Rect(x, y, x+1, y+1))
		}
	}
	return r
}

// Frame crops img to its opaque content, scales it so the longer side spans
// fillRatio of a size×size canvas and centres it there. A fully
// transparent image yields a blank canvas.
func Frame(img *image.NRGBA, size int, fillRatio float32) *image.NRGBA {
	canvas := image.NewNRGBA(image.Rect(0, 0, size, size))
	content := opaqueBounds(img)
	if content.Empty() {
		return canvas
	}
	if fillRatio <= 0 || fillRatio > 1 {
		fillRatio = DefaultFillRatio
	}

	w, h := content.Dx(), content.Dy()
	scale := float32(size) * fillRatio / float32(max(w, h))
	nw := max(int(float32(w)*scale+0.5), 1)
	nh := max(int(float32(h)*scale+0.5), 1)

	offX, offY := (size-nw)/2, (size-nh)/2
	dst := image.Rect(offX, offY, offX+nw, offY+nh)
	if nw == w && nh == h {
		draw.Draw(canvas, dst, img, content.Min, draw.Src)
		return canvas
	}
	xdraw.CatmullRom.Scale(canvas, dst, img, content, xdraw.Src, nil)
	return canvas
}
