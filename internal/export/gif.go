package export

import (
	"errors"
	"image"
	"image/color"
	"image/gif"
	"io"

	"github.com/san-kum/rigidsim/internal/viz"
	"golang.org/x/image/draw"
)

var palette = color.Palette{
	color.RGBA{0x0a, 0x0a, 0x0a, 0xff},
	color.RGBA{0x00, 0xff, 0x00, 0xff},
}

// CanvasToImage returns canvas as an image with one pixel per dot.
func CanvasToImage(canvas *viz.Canvas) *image.Paletted {
	pw, ph := canvas.PixelSize()
	img := image.NewPaletted(image.Rect(0, 0, pw, ph), palette)
	for y := range ph {
		for x := range pw {
			if canvas.IsSet(x, y) {
				img.SetColorIndex(x, y, 1)
			}
		}
	}
	return img
}

// Animation collects canvas frames into an animated GIF.
type Animation struct {
	scale int
	delay int
	anim  gif.GIF
}

// NewAnimation scales every frame up by scale and shows each for delay
// hundredths of a second.
func NewAnimation(scale, delay int) *Animation {
	return &Animation{scale: max(1, scale), delay: max(1, delay)}
}

func (a *Animation) AddCanvas(canvas *viz.Canvas) {
	src := CanvasToImage(canvas)
	b := src.Bounds()
	dst := image.NewPaletted(image.Rect(0, 0, b.Dx()*a.scale, b.Dy()*a.scale), palette)
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)
	a.anim.Image = append(a.anim.Image, dst)
	a.anim.Delay = append(a.anim.Delay, a.delay)
}

func (a *Animation) Len() int { return len(a.anim.Image) }

func (a *Animation) Encode(w io.Writer) error {
	if len(a.anim.Image) == 0 {
		return errors.New("export: animation has no frames")
	}
	return gif.EncodeAll(w, &a.anim)
}
