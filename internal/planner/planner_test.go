package planner

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPlanForModel(t *testing.T) {
	tests := []struct {
		name       string
		w, h       int
		preset     ModelPreset
		wantW      int
		wantH      int
		wantErr    bool
	}{
		{
			name:   "sdxl budget on 800x600",
			w:      800,
			h:      600,
			preset: PresetSDXL,
			wantW:  1182,
			wantH:  887,
		},
		{
			name:   "sd15 square stays square",
			w:      256,
			h:      256,
			preset: PresetSD15,
			wantW:  512,
			wantH:  512,
		},
		{
			name:   "sd15+ portrait budget",
			w:      512,
			h:      768,
			preset: PresetSD15Plus,
			wantW:  512,
			wantH:  768,
		},
		{
			name:   "unknown preset falls back to sdxl",
			w:      800,
			h:      600,
			preset: ModelPreset("sd99"),
			wantW:  1182,
			wantH:  887,
		},
		{
			name:    "zero-area image",
			w:       0,
			h:       600,
			preset:  PresetSDXL,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h, err := PlanForModel(tt.w, tt.h, tt.preset)

			if tt.wantErr {
				require.ErrorIs(t, err, ErrDegenerateInput)
				return
			}

			require.NoError(t, err)
			require.Equal(t, tt.wantW, w)
			require.Equal(t, tt.wantH, h)
		})
	}
}

func TestPlanForModel_PreservesAspectRatio(t *testing.T) {
	w, h, err := PlanForModel(1920, 1080, PresetSDXL)
	require.NoError(t, err)
	require.InDelta(t, 1920.0/1080.0, float64(w)/float64(h), 0.01)
}

func TestPlanBySide(t *testing.T) {
	tests := []struct {
		name    string
		w, h    int
		size    int
		shorter bool
		wantW   int
		wantH   int
		wantErr bool
	}{
		{
			name:    "shorter side to 256",
			w:       1000,
			h:       500,
			size:    256,
			shorter: true,
			wantW:   512,
			wantH:   256,
		},
		{
			name:  "longer side to 500",
			w:     1000,
			h:     500,
			size:  500,
			wantW: 500,
			wantH: 250,
		},
		{
			name:    "odd outputs rounded down to even",
			w:       999,
			h:       333,
			size:    333,
			shorter: true,
			wantW:   998,
			wantH:   332,
		},
		{
			name:    "zero size",
			w:       100,
			h:       100,
			size:    0,
			wantErr: true,
		},
		{
			name:    "zero-area image",
			w:       0,
			h:       0,
			size:    512,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h, err := PlanBySide(tt.w, tt.h, tt.size, tt.shorter)

			if tt.wantErr {
				require.ErrorIs(t, err, ErrDegenerateInput)
				return
			}

			require.NoError(t, err)
			require.Equal(t, tt.wantW, w)
			require.Equal(t, tt.wantH, h)
			require.Zero(t, w%2)
			require.Zero(t, h%2)
		})
	}
}

func TestPlanByMaxDim(t *testing.T) {
	ratio, w, h, err := PlanByMaxDim(1000, 500, 1920)
	require.NoError(t, err)
	require.InDelta(t, 1.92, ratio, 1e-9)
	require.Equal(t, 1920, w)
	require.Equal(t, 960, h)

	ratio, w, h, err = PlanByMaxDim(3840, 2160, 1920)
	require.NoError(t, err)
	require.InDelta(t, 0.5, ratio, 1e-9)
	require.Equal(t, 1920, w)
	require.Equal(t, 1080, h)
	require.Zero(t, w%2)
	require.Zero(t, h%2)

	_, _, _, err = PlanByMaxDim(0, 100, 1920)
	require.ErrorIs(t, err, ErrDegenerateInput)
}

func TestPresetDimensions_Fallback(t *testing.T) {
	w, h := PresetDimensions(ModelPreset("nope"))
	require.Equal(t, 1024, w)
	require.Equal(t, 1024, h)
}
