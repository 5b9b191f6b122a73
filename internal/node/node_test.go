package node

import (
	"image"
	"image/color"
	"testing"

	"github.com/fnodes/ImageScaler/internal/imageproc"
	"github.com/fnodes/ImageScaler/internal/planner"
	"github.com/fnodes/ImageScaler/internal/tensor"
	"github.com/stretchr/testify/require"
)

func testImage(t *testing.T, w, h int) *tensor.Image {
	t.Helper()

	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 120, G: 140, B: 160, A: 255})
		}
	}
	return tensor.FromImage(img)
}

func TestGetImageSize(t *testing.T) {
	res, err := GetImageSize{}.Execute(&Request{Image: testImage(t, 640, 480)})
	require.NoError(t, err)
	require.Equal(t, 640, res.Width)
	require.Equal(t, 480, res.Height)
	require.Equal(t, 1, res.BatchCount)

	_, err = GetImageSize{}.Execute(&Request{})
	require.ErrorIs(t, err, imageproc.ErrEmptyImage)
}

func TestSDModelScaler(t *testing.T) {
	tests := []struct {
		name    string
		preset  planner.ModelPreset
		w, h    int
		wantW   int
		wantH   int
	}{
		{
			name:   "sdxl on 800x600",
			preset: planner.PresetSDXL,
			w:      800,
			h:      600,
			wantW:  1182,
			wantH:  887,
		},
		{
			name:   "unknown preset defaults to sdxl",
			preset: planner.ModelPreset("future-model"),
			w:      800,
			h:      600,
			wantW:  1182,
			wantH:  887,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := NewSDModelScaler(DefaultMethod, tt.preset)
			require.NoError(t, err)

			res, err := n.Execute(&Request{Image: testImage(t, tt.w, tt.h)})
			require.NoError(t, err)
			require.Equal(t, tt.wantW, res.Width)
			require.Equal(t, tt.wantH, res.Height)
			require.Equal(t, min(tt.wantW, tt.wantH), res.MinDimension)
			require.Equal(t, tt.wantW, res.Image.Width)
			require.Equal(t, tt.wantW, res.Mask.Width)
			require.Equal(t, tt.wantH, res.Mask.Height)
		})
	}
}

func TestSDModelScaler_UnknownMethod(t *testing.T) {
	_, err := NewSDModelScaler("mitchell", planner.PresetSD15)
	require.ErrorIs(t, err, imageproc.ErrUnknownMethod)
}

func TestSideScaler(t *testing.T) {
	n, err := NewSideScaler("bilinear", 256, true)
	require.NoError(t, err)

	res, err := n.Execute(&Request{Image: testImage(t, 1000, 500)})
	require.NoError(t, err)
	require.Equal(t, 512, res.Width)
	require.Equal(t, 256, res.Height)
	require.Equal(t, 256, res.MinDimension)
}

func TestSideScaler_OptionBounds(t *testing.T) {
	_, err := NewSideScaler(DefaultMethod, 100000, false)
	require.ErrorIs(t, err, ErrOptionRange)
}

func TestSideScaler_ZeroSizeImage(t *testing.T) {
	n, err := NewSideScaler(DefaultMethod, 0, false)
	require.NoError(t, err)

	_, err = n.Execute(&Request{Image: testImage(t, 100, 100)})
	require.ErrorIs(t, err, planner.ErrDegenerateInput)
}

func TestScaleRatio(t *testing.T) {
	n, err := NewScaleRatio(DefaultTargetMaxSize)
	require.NoError(t, err)

	res, err := n.Execute(&Request{Image: testImage(t, 1000, 500)})
	require.NoError(t, err)
	require.InDelta(t, 1.92, res.Ratio, 1e-9)
	require.Equal(t, 1920, res.Width)
	require.Equal(t, 960, res.Height)
	require.Nil(t, res.Image)
}

func TestRotateNode(t *testing.T) {
	n, err := NewRotate(90, true)
	require.NoError(t, err)

	res, err := n.Execute(&Request{Image: testImage(t, 100, 50)})
	require.NoError(t, err)
	require.Equal(t, 50, res.Width)
	require.Equal(t, 100, res.Height)

	_, err = NewRotate(20000, true)
	require.ErrorIs(t, err, ErrOptionRange)
}

func TestTrimBordersNode(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 60, 60))
	for y := 0; y < 60; y++ {
		for x := 0; x < 60; x++ {
			img.SetNRGBA(x, y, color.NRGBA{A: 255})
		}
	}
	for y := 10; y < 50; y++ {
		for x := 20; x < 40; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 250, G: 250, B: 250, A: 255})
		}
	}

	n, err := NewTrimBorders(DefaultThreshold)
	require.NoError(t, err)

	res, err := n.Execute(&Request{Image: tensor.FromImage(img)})
	require.NoError(t, err)
	require.Equal(t, 20, res.Width)
	require.Equal(t, 40, res.Height)

	_, err = NewTrimBorders(-1)
	require.ErrorIs(t, err, ErrOptionRange)
}

func TestAddBorderNode(t *testing.T) {
	n, err := NewAddBorder(10, 0, 255, 0, 0)
	require.NoError(t, err)

	res, err := n.Execute(&Request{Image: testImage(t, 100, 100)})
	require.NoError(t, err)
	require.Equal(t, 120, res.Width)
	require.Equal(t, 120, res.Height)
	require.NotNil(t, res.Mask)
	require.Equal(t, float32(1), res.Mask.At(0, 0, 0))
	require.Equal(t, float32(0), res.Mask.At(0, 60, 60))

	_, err = NewAddBorder(10, 1.5, 0, 0, 0)
	require.ErrorIs(t, err, ErrOptionRange)

	_, err = NewAddBorder(10, 0, 300, 0, 0)
	require.ErrorIs(t, err, ErrOptionRange)
}

func TestDisplayNamesCoverAllNodes(t *testing.T) {
	for _, name := range []string{
		GetImageSize{}.Name(),
		(*SDModelScaler)(nil).Name(),
		(*SideScaler)(nil).Name(),
		(*ScaleRatio)(nil).Name(),
		(*Rotate)(nil).Name(),
		(*TrimBorders)(nil).Name(),
		(*AddBorder)(nil).Name(),
	} {
		require.Contains(t, DisplayNames, name)
	}
}
