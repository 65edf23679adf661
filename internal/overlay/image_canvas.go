package overlay

import (
	"image"
	"image/color"
)

// ImageCanvas is a Canvas backed by an in-memory RGBA image, used by
// the offline analyzer to export annotated frames. Browser-side
// rendering uses its own surface; this one only needs the three
// primitives the renderer calls.
type ImageCanvas struct {
	img         *image.RGBA
	markerColor color.RGBA
	lineColor   color.RGBA
}

// NewImageCanvas creates a transparent canvas sized to the frame's
// native dimensions.
func NewImageCanvas(width, height int) *ImageCanvas {
	return &ImageCanvas{
		img:         image.NewRGBA(image.Rect(0, 0, width, height)),
		markerColor: color.RGBA{R: 0, G: 200, B: 90, A: 255},
		lineColor:   color.RGBA{R: 255, G: 255, B: 255, A: 255},
	}
}

// Image exposes the rendered overlay.
func (c *ImageCanvas) Image() *image.RGBA {
	return c.img
}

// Clear resets every pixel to transparent.
func (c *ImageCanvas) Clear() {
	pix := c.img.Pix
	for i := range pix {
		pix[i] = 0
	}
}

// FillCircle draws a filled disc centered at (x, y).
func (c *ImageCanvas) FillCircle(x, y, r float64) {
	cx, cy := int(x+0.5), int(y+0.5)
	ri := int(r + 0.5)
	for dy := -ri; dy <= ri; dy++ {
		for dx := -ri; dx <= ri; dx++ {
			if dx*dx+dy*dy <= ri*ri {
				c.img.SetRGBA(cx+dx, cy+dy, c.markerColor)
			}
		}
	}
}

// Line draws a one-pixel segment between the two points.
func (c *ImageCanvas) Line(x1, y1, x2, y2 float64) {
	// Integer Bresenham over the segment endpoints.
	ax, ay := int(x1+0.5), int(y1+0.5)
	bx, by := int(x2+0.5), int(y2+0.5)

	dx := abs(bx - ax)
	dy := -abs(by - ay)
	sx, sy := 1, 1
	if ax > bx {
		sx = -1
	}
	if ay > by {
		sy = -1
	}
	err := dx + dy
	for {
		c.img.SetRGBA(ax, ay, c.lineColor)
		if ax == bx && ay == by {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			ax += sx
		}
		if e2 <= dx {
			err += dx
			ay += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
