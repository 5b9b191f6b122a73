// Package tensor holds the host-side array layout for images and masks:
// float32 samples in [0,1], images laid out (batch, height, width, channel),
// masks (batch, height, width). Conversions to and from the stdlib image
// types live here so the pixel operations can stay library-native.
package tensor

import (
	"image"
	"image/color"
)

type Image struct {
	Data     []float32
	Batch    int
	Height   int
	Width    int
	Channels int
}

type Mask struct {
	Data   []float32
	Batch  int
	Height int
	Width  int
}

func NewImage(batch, height, width, channels int) *Image {
	return &Image{
		Data:     make([]float32, batch*height*width*channels),
		Batch:    batch,
		Height:   height,
		Width:    width,
		Channels: channels,
	}
}

func (t *Image) At(b, y, x, c int) float32 {
	return t.Data[((b*t.Height+y)*t.Width+x)*t.Channels+c]
}

func (t *Image) Set(b, y, x, c int, v float32) {
	t.Data[((b*t.Height+y)*t.Width+x)*t.Channels+c] = v
}

// FromImage converts a decoded image into a single-frame tensor (batch=1, 3 channels).
func FromImage(img image.Image) *Image {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	t := NewImage(1, h, w, 3)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, b, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			t.Set(0, y, x, 0, float32(r>>8)/255)
			t.Set(0, y, x, 1, float32(g>>8)/255)
			t.Set(0, y, x, 2, float32(b>>8)/255)
		}
	}
	return t
}

// FromFrames stacks equally-sized frames into one batched tensor.
func FromFrames(frames []*image.NRGBA) *Image {
	if len(frames) == 0 {
		return nil
	}
	w := frames[0].Bounds().Dx()
	h := frames[0].Bounds().Dy()

	t := NewImage(len(frames), h, w, 3)
	for b, f := range frames {
		t.PutFrame(b, f)
	}
	return t
}

// Frame renders one batch entry as NRGBA for handing to the image library.
func (t *Image) Frame(b int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, t.Width, t.Height))
	for y := 0; y < t.Height; y++ {
		for x := 0; x < t.Width; x++ {
			img.SetNRGBA(x, y, color.NRGBA{
				R: toByte(t.At(b, y, x, 0)),
				G: toByte(t.At(b, y, x, 1)),
				B: toByte(t.At(b, y, x, 2)),
				A: 255,
			})
		}
	}
	return img
}

// PutFrame writes an NRGBA raster into batch entry b. The raster must match
// the tensor's spatial dimensions.
func (t *Image) PutFrame(b int, img *image.NRGBA) {
	bounds := img.Bounds()
	for y := 0; y < t.Height; y++ {
		for x := 0; x < t.Width; x++ {
			px := img.NRGBAAt(bounds.Min.X+x, bounds.Min.Y+y)
			t.Set(b, y, x, 0, float32(px.R)/255)
			t.Set(b, y, x, 1, float32(px.G)/255)
			t.Set(b, y, x, 2, float32(px.B)/255)
		}
	}
}

func NewMask(batch, height, width int) *Mask {
	return &Mask{
		Data:   make([]float32, batch*height*width),
		Batch:  batch,
		Height: height,
		Width:  width,
	}
}

// SolidMask returns a single-frame mask uniformly filled with v.
func SolidMask(width, height int, v float32) *Mask {
	m := NewMask(1, height, width)
	if v != 0 {
		for i := range m.Data {
			m.Data[i] = v
		}
	}
	return m
}

func (m *Mask) At(b, y, x int) float32 {
	return m.Data[(b*m.Height+y)*m.Width+x]
}

func (m *Mask) Set(b, y, x int, v float32) {
	m.Data[(b*m.Height+y)*m.Width+x] = v
}

// Frame renders one mask entry as an 8-bit grayscale raster.
func (m *Mask) Frame(b int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, m.Width, m.Height))
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			img.SetGray(x, y, color.Gray{Y: toByte(m.At(b, y, x))})
		}
	}
	return img
}

// MaskFromImage rebuilds a mask frame from a resampled raster, reading the
// red channel as coverage.
func MaskFromImage(img image.Image) *Mask {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	m := NewMask(1, h, w)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, _, _, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			m.Set(0, y, x, float32(r>>8)/255)
		}
	}
	return m
}

func toByte(v float32) uint8 {
	s := v*255 + 0.5
	if s <= 0 {
		return 0
	}
	if s >= 255 {
		return 255
	}
	return uint8(s)
}
