package pages

import (
	"strconv"

	twmerge "github.com/Oudwins/tailwind-merge-go"
)

// canvasClass lets the image shrink with the layout while keeping its
// intrinsic (logical) size as the upper bound.
var canvasClass = twmerge.Merge("block h-auto max-w-full touch-none select-none cursor-grab", "rounded-md shadow")

func formatStep(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
