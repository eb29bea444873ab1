package tasks

import (
	"image"

	"gorgonia.org/tensor"
)

// ImageTensor converts an image into a (height, width, 3) tensor of
// uint8 RGB values
func ImageTensor(img image.Image) *tensor.Dense {
	b := img.Bounds()
	h, w := b.Dy(), b.Dx()
	data := make([]uint8, h*w*3)

	if rgba, ok := img.(*image.RGBA); ok {
		for y := 0; y < h; y++ {
			row := rgba.Pix[rgba.PixOffset(b.Min.X, b.Min.Y+y):]
			for x := 0; x < w; x++ {
				copy(data[(y*w+x)*3:(y*w+x)*3+3], row[x*4:x*4+3])
			}
		}
	} else {
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				r, g, bl, _ := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
				i := (y*w + x) * 3
				data[i], data[i+1], data[i+2] = uint8(r>>8), uint8(g>>8),
					uint8(bl>>8)
			}
		}
	}

	return tensor.New(tensor.WithShape(h, w, 3), tensor.WithBacking(data))
}
