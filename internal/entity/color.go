package entity

import (
	"errors"
	"image/color"
	"strconv"
	"strings"
)

// ParseHexColor converts "#RRGGBB" or "RRGGBB" to an opaque color.
func ParseHexColor(hex string) (color.RGBA, error) {
	h := strings.TrimPrefix(hex, "#")
	if len(h) != 6 {
		return color.RGBA{}, errors.New("cannot parse RGB values " + hex)
	}

	values, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return color.RGBA{}, errors.New("cannot parse RGB values " + hex)
	}

	return color.RGBA{
		R: uint8(values >> 16),
		G: uint8((values >> 8) & 0xFF),
		B: uint8(values & 0xFF),
		A: 0xff,
	}, nil
}
