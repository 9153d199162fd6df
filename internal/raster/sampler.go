package raster

import (
	"image"

	"github.com/chewxy/math32"
)

// wrap maps a texture coordinate into [0, 1).
func wrap(t float32) float32 {
	t -= math32.Floor(t)
	if t >= 1 {
		return 0
	}
	return t
}

// SampleTexture returns the bilinearly filtered texel at (u, v), repeating
// the texture outside [0, 1].
func SampleTexture(tex *image.NRGBA, u, v float32) (r, g, b, a uint8) {
	w, h := tex.Rect.Dx(), tex.Rect.Dy()
	if w == 0 || h == 0 {
		return 0, 0, 0, 0
	}

	fx, fy := wrap(u)*float32(w-1), wrap(v)*float32(h-1)
	x, y := int(fx), int(fy)
	tx, ty := fx-float32(x), fy-float32(y)

	offset := func(px, py int) int { return (py%h)*tex.Stride + (px%w)*4 }
	corners := [4]int{offset(x, y), offset(x+1, y), offset(x, y+1), offset(x+1, y+1)}
	weights := [4]float32{(1 - tx) * (1 - ty), tx * (1 - ty), (1 - tx) * ty, tx * ty}

	var out [4]uint8
	for c := range out {
		var sum float32
		for k, off := range corners {
			sum += float32(tex.Pix[off+c]) * weights[k]
		}
		out[c] = uint8(sum + 0.5)
	}
	return out[0], out[1], out[2], out[3]
}
