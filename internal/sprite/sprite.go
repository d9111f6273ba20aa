// Package sprite rasterises the duck animation frames. Frames are 16x16
// pixel art; the overlay scales them up without smoothing.
package sprite

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"

	"github.com/oukeidos/typoduck/internal/anim"
)

// Size is the edge length of a frame in pixels.
const Size = 16

var (
	transparent = color.NRGBA{}
	head        = color.NRGBA{R: 34, G: 139, B: 34, A: 255}
	ring        = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	chest       = color.NRGBA{R: 139, G: 69, B: 19, A: 255}
	body        = color.NRGBA{R: 160, G: 160, B: 160, A: 255}
	beak        = color.NRGBA{R: 255, G: 140, B: 0, A: 255}
	eye         = color.NRGBA{A: 255}
	ground      = color.NRGBA{R: 80, G: 80, B: 80, A: 255}
	smoke       = color.NRGBA{R: 210, G: 210, B: 230, A: 180}
	star        = color.NRGBA{R: 255, G: 215, B: 0, A: 255}
)

type pose int

const (
	standing pose = iota
	runLeft
	runRight
)

type canvas struct{ img *image.NRGBA }

func newCanvas() canvas {
	return canvas{img: image.NewNRGBA(image.Rect(0, 0, Size, Size))}
}

func (c canvas) set(x, y int, col color.NRGBA) {
	if x < 0 || x >= Size || y < 0 || y >= Size {
		return
	}
	c.img.SetNRGBA(x, y, col)
}

func (c canvas) fill(x0, y0, x1, y1 int, col color.NRGBA) {
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			c.set(x, y, col)
		}
	}
}

func (c canvas) halfLine() { c.fill(4, 14, 12, 15, ground) }
func (c canvas) fullLine() { c.fill(0, 14, Size, 15, ground) }

// duck draws the mallard with its head at (6, 2+dy).
func (c canvas) duck(dy int, p pose) {
	hx, hy := 6, 2+dy
	c.fill(hx, hy, hx+4, hy+4, head)
	c.set(hx+3, hy+1, eye)
	c.fill(hx-3, hy+2, hx, hy+3, beak)
	c.fill(hx, hy+4, hx+4, hy+5, ring)

	by := hy + 5
	c.fill(hx-2, by, hx+1, by+4, chest)
	c.fill(hx+1, by, hx+7, by+4, body)

	fy := by + 4
	switch p {
	case standing:
		c.set(hx, fy, beak)
		c.set(hx+4, fy, beak)
	case runLeft:
		c.set(hx-1, fy, beak)
		c.set(hx+3, fy-1, beak)
	case runRight:
		c.set(hx, fy-1, beak)
		c.set(hx+5, fy, beak)
	}
}

var builders = [anim.FrameCount]func(c canvas){
	// intro: line, peeking head, jump, land, crouch
	func(c canvas) { c.halfLine() },
	func(c canvas) {
		c.fullLine()
		c.fill(7, 11, 11, 14, head)
		c.set(10, 12, eye)
		c.fill(4, 13, 7, 14, beak)
	},
	func(c canvas) { c.halfLine(); c.duck(-2, standing) },
	func(c canvas) { c.duck(1, standing) },
	func(c canvas) { c.duck(2, standing) },
	// running cycle
	func(c canvas) { c.duck(1, runLeft) },
	func(c canvas) { c.duck(0, runRight) },
	// outro: last stride, then the puff
	func(c canvas) { c.duck(1, runLeft) },
	func(c canvas) { c.fill(5, 6, 11, 12, smoke) },
	func(c canvas) { c.fill(2, 3, 14, 13, smoke) },
	func(c canvas) {
		c.set(4, 4, star)
		c.set(12, 2, star)
		c.set(13, 10, star)
		c.set(8, 7, smoke)
		c.set(7, 8, smoke)
	},
}

// Frames returns a freshly drawn frame set, always anim.FrameCount long.
func Frames() []image.Image {
	out := make([]image.Image, 0, len(builders))
	for _, build := range builders {
		c := newCanvas()
		build(c)
		out = append(out, c.img)
	}
	return out
}

// Validate checks a frame set against the controller's frame layout.
func Validate(frames []image.Image) error {
	if len(frames) != anim.FrameCount {
		return fmt.Errorf("frame set has %d frames, want %d", len(frames), anim.FrameCount)
	}
	for i, f := range frames {
		if f == nil {
			return fmt.Errorf("frame %d is missing", i)
		}
		b := f.Bounds()
		if b.Dx() != b.Dy() || b.Dx() == 0 {
			return fmt.Errorf("frame %d is %dx%d, want a square", i, b.Dx(), b.Dy())
		}
	}
	return nil
}

// PNG encodes one frame, scaled by an integer factor with nearest-neighbour
// sampling. The tray icon and the exported assets use it.
func PNG(frame image.Image, scale int) ([]byte, error) {
	if scale < 1 {
		scale = 1
	}
	b := frame.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx()*scale, b.Dy()*scale))
	for y := 0; y < dst.Rect.Dy(); y++ {
		for x := 0; x < dst.Rect.Dx(); x++ {
			dst.Set(x, y, frame.At(b.Min.X+x/scale, b.Min.Y+y/scale))
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	return buf.Bytes(), nil
}

// IconFrame is the frame used for the application and tray icon.
const IconFrame = 4
