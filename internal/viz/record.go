package viz

import (
	"image"
	"image/color"
	"image/gif"
	"os"
)

// gifRecorder rasterises canvas frames for an animated GIF.
type gifRecorder struct {
	frames []*image.Paletted
}

func newGIFRecorder() *gifRecorder {
	return &gifRecorder{}
}

const (
	cellW = 8
	cellH = 16
)

func (r *gifRecorder) capture(c *Canvas) {
	img := image.NewPaletted(image.Rect(0, 0, c.Width*cellW, c.Height*cellH), color.Palette{color.Black, color.White})
	dotW, dotH := cellW/2, cellH/4

	sw, sh := c.Pixels()
	for y := 0; y < sh; y++ {
		for x := 0; x < sw; x++ {
			if !c.IsSet(x, y) {
				continue
			}
			for py := 0; py < dotH; py++ {
				for px := 0; px < dotW; px++ {
					img.SetColorIndex(x*dotW+px, y*dotH+py, 1)
				}
			}
		}
	}
	r.frames = append(r.frames, img)
}

func (r *gifRecorder) save(path string) error {
	if len(r.frames) == 0 {
		return nil
	}
	anim := gif.GIF{}
	for _, frame := range r.frames {
		anim.Image = append(anim.Image, frame)
		anim.Delay = append(anim.Delay, 10)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return gif.EncodeAll(f, &anim)
}
