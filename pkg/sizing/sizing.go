// Package sizing maps platform and aspect ratio to output pixel dimensions.
package sizing

import (
	"fmt"

	"github.com/acemetillidie0001/obd-premium-apps-sub006/pkg/types"
)

// Size is an output image size in pixels.
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// String renders the size as WIDTHxHEIGHT.
func (s Size) String() string {
	return fmt.Sprintf("%dx%d", s.Width, s.Height)
}

var table = map[types.Aspect]Size{
	types.AspectSquare:   {Width: 1024, Height: 1024},
	types.AspectPortrait: {Width: 1024, Height: 1280},
	types.AspectWide:     {Width: 1344, Height: 768},
	types.AspectClassic:  {Width: 1152, Height: 864},
}

// Resolve returns the pixel size for an aspect ratio. The platform is part of
// the contract so that platform-specific sizes can be introduced without
// changing callers; today the table is keyed by aspect only.
//
// Resolve panics on an aspect the decision resolver cannot produce.
func Resolve(platform types.Platform, aspect types.Aspect) Size {
	s, ok := table[aspect]
	if !ok {
		panic(fmt.Sprintf("sizing: unknown aspect %q for platform %q", aspect, platform))
	}
	return s
}
