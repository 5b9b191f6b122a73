package tensor

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFromImageRoundTrip(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 4, 3))
	for y := 0; y < 3; y++ {
		for x := 0; x < 4; x++ {
			src.SetNRGBA(x, y, color.NRGBA{R: uint8(40 * x), G: uint8(80 * y), B: 200, A: 255})
		}
	}

	ts := FromImage(src)
	require.Equal(t, 1, ts.Batch)
	require.Equal(t, 3, ts.Height)
	require.Equal(t, 4, ts.Width)
	require.Equal(t, 3, ts.Channels)

	back := ts.Frame(0)
	for y := 0; y < 3; y++ {
		for x := 0; x < 4; x++ {
			require.Equal(t, src.NRGBAAt(x, y), back.NRGBAAt(x, y))
		}
	}
}

func TestFromImageNormalized(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	src.SetNRGBA(0, 0, color.NRGBA{R: 255, G: 0, B: 51, A: 255})

	ts := FromImage(src)
	require.InDelta(t, 1.0, ts.At(0, 0, 0, 0), 1e-6)
	require.InDelta(t, 0.0, ts.At(0, 0, 0, 1), 1e-6)
	require.InDelta(t, 0.2, ts.At(0, 0, 0, 2), 1e-2)
}

func TestFromFrames(t *testing.T) {
	a := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	b := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	a.SetNRGBA(0, 0, color.NRGBA{R: 255, A: 255})
	b.SetNRGBA(1, 1, color.NRGBA{G: 255, A: 255})

	ts := FromFrames([]*image.NRGBA{a, b})
	require.Equal(t, 2, ts.Batch)
	require.InDelta(t, 1.0, ts.At(0, 0, 0, 0), 1e-6)
	require.InDelta(t, 1.0, ts.At(1, 1, 1, 1), 1e-6)
}

func TestSolidMask(t *testing.T) {
	m := SolidMask(5, 3, 1)
	require.Equal(t, 1, m.Batch)
	require.Equal(t, 3, m.Height)
	require.Equal(t, 5, m.Width)
	for _, v := range m.Data {
		require.Equal(t, float32(1), v)
	}

	empty := SolidMask(2, 2, 0)
	for _, v := range empty.Data {
		require.Equal(t, float32(0), v)
	}
}

func TestMaskFrameRoundTrip(t *testing.T) {
	m := NewMask(1, 2, 2)
	m.Set(0, 0, 0, 1)
	m.Set(0, 1, 1, 0.5)

	img := m.Frame(0)
	back := MaskFromImage(img)

	require.InDelta(t, 1.0, back.At(0, 0, 0), 1e-2)
	require.InDelta(t, 0.5, back.At(0, 1, 1), 1e-2)
	require.InDelta(t, 0.0, back.At(0, 0, 1), 1e-2)
}
