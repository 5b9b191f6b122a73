// Package planner computes target dimensions for the scaling nodes. Pure
// arithmetic, no pixel work.
package planner

import (
	"errors"
	"math"
)

// ErrDegenerateInput is returned when a zero-area image or a zero target
// size would force a division by zero.
var ErrDegenerateInput = errors.New("zero-sized image or target dimension")

type ModelPreset string

const (
	PresetSD15     ModelPreset = "sd15"
	PresetSD15Plus ModelPreset = "sd15+"
	PresetSDXL     ModelPreset = "sdxl"
	PresetSDXLPlus ModelPreset = "sdxl+"
)

// Pixel budgets per model family. Unknown presets fall back to the largest
// square budget (sdxl).
var presetDimensions = map[ModelPreset][2]int{
	PresetSD15:     {512, 512},
	PresetSD15Plus: {512, 768},
	PresetSDXL:     {1024, 1024},
	PresetSDXLPlus: {1024, 1280},
}

var ModelPresets = []ModelPreset{PresetSD15, PresetSD15Plus, PresetSDXL, PresetSDXLPlus}

func PresetDimensions(p ModelPreset) (int, int) {
	dims, ok := presetDimensions[p]
	if !ok {
		dims = presetDimensions[PresetSDXL]
	}
	return dims[0], dims[1]
}

// PlanForModel scales (width, height) so the output pixel count matches the
// preset budget. Aspect ratio is preserved; no parity adjustment here.
func PlanForModel(width, height int, preset ModelPreset) (int, int, error) {
	if width <= 0 || height <= 0 {
		return 0, 0, ErrDegenerateInput
	}

	targetW, targetH := PresetDimensions(preset)
	scale := math.Sqrt(float64(targetW*targetH) / float64(width*height))

	return int(math.Round(float64(width) * scale)), int(math.Round(float64(height) * scale)), nil
}

// PlanBySide scales so the reference side (shorter or longer) lands on size.
// Both output dimensions are rounded down to even.
func PlanBySide(width, height, size int, shorter bool) (int, int, error) {
	if width <= 0 || height <= 0 || size <= 0 {
		return 0, 0, ErrDegenerateInput
	}

	reference := max(width, height)
	if shorter {
		reference = min(width, height)
	}
	scale := float64(reference) / float64(size)

	return makeEven(int(math.Round(float64(width) / scale))),
		makeEven(int(math.Round(float64(height) / scale))),
		nil
}

// PlanByMaxDim scales so the larger dimension lands on target, returning the
// applied ratio alongside the even-rounded dimensions.
func PlanByMaxDim(width, height, target int) (float64, int, int, error) {
	if width <= 0 || height <= 0 {
		return 0, 0, 0, ErrDegenerateInput
	}

	ratio := float64(target) / float64(max(width, height))

	return ratio,
		makeEven(int(math.Round(float64(width) * ratio))),
		makeEven(int(math.Round(float64(height) * ratio))),
		nil
}

func makeEven(v int) int {
	return v - v%2
}
