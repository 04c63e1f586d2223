package dashui

import (
	"math"

	"github.com/verte-zerg/launchdash/internal/model"
)

const (
	focusSite = iota
	focusLow
	focusHigh
	focusCount
)

var focusNames = []string{"Site", "Min payload", "Max payload"}

// stepPayload moves v one slider step in dir (+1 or -1), snapping to the
// step grid and clamping to the slider domain.
func stepPayload(v float64, dir int) float64 {
	step := float64(model.PayloadSliderStep)
	var next float64
	if dir > 0 {
		next = (math.Floor(v/step) + 1) * step
	} else {
		next = (math.Ceil(v/step) - 1) * step
	}
	return clampPayload(next)
}

func clampPayload(v float64) float64 {
	return math.Min(math.Max(v, model.PayloadSliderMin), model.PayloadSliderMax)
}

// adjustRange moves the focused handle of p. The handles never cross.
func adjustRange(p model.PayloadRange, focus, dir int) model.PayloadRange {
	switch focus {
	case focusLow:
		p.Low = math.Min(stepPayload(p.Low, dir), p.High)
	case focusHigh:
		p.High = math.Max(stepPayload(p.High, dir), p.Low)
	}
	return p
}

// cycleIndex moves idx by delta within [0, n), wrapping around.
func cycleIndex(idx, delta, n int) int {
	if n == 0 {
		return 0
	}
	idx = (idx + delta) % n
	if idx < 0 {
		idx += n
	}
	return idx
}

func indexOf(options []string, value string) int {
	for i, opt := range options {
		if opt == value {
			return i
		}
	}
	return -1
}
