package postprocess

import "image"

var neighbours = [8][2]int{{-1, -1}, {0, -1}, {1, -1}, {-1, 0}, {1, 0}, {-1, 1}, {0, 1}, {1, 1}}

// label assigns an 8-connected component id to every opaque pixel, -1 to
// transparent ones, and returns the per-component pixel counts.
func label(img *image.NRGBA) ([]int, []int) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	labels := make([]int, w*h)
	for i := range labels {
		labels[i] = -1
	}
	opaque := func(x, y int) bool { return img.Pix[y*img.Stride+x*4+3] > 0 }

	var sizes []int
	stack := make([]int, 0, 256)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if labels[y*w+x] >= 0 || !opaque(x, y) {
				continue
			}
			id := len(sizes)
			size := 0
			labels[y*w+x] = id
			stack = append(stack[:0], y*w+x)
			for len(stack) > 0 {
				cur := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				size++
				cx, cy := cur%w, cur/w
				for _, d := range neighbours {
					nx, ny := cx+d[0], cy+d[1]
					if nx < 0 || nx >= w || ny < 0 || ny >= h {
						continue
					}
					if n := ny*w + nx; labels[n] < 0 && opaque(nx, ny) {
						labels[n] = id
						stack = append(stack, n)
					}
				}
			}
			sizes = append(sizes, size)
		}
	}
	return labels, sizes
}

// RemoveIslands clears connected pixel groups smaller than minRatio of all
// opaque pixels. img is returned unchanged when it has one group or none.
func RemoveIslands(img *image.NRGBA, minRatio float32) *image.NRGBA {
	labels, sizes := label(img)
	if len(sizes) <= 1 {
		return img
	}
	total := 0
	for _, s := range sizes {
		total += s
	}
	minSize := int(float32(total) * minRatio)

	b := img.Bounds()
	w := b.Dx()
	out := image.NewNRGBA(b)
	copy(out.Pix, img.Pix)
	for i, l := range labels {
		if l < 0 || sizes[l] >= minSize {
			continue
		}
		off := (i/w)*out.Stride + (i%w)*4
		copy(out.Pix[off:off+4], []uint8{0, 0, 0, 0})
	}
	return out
}
