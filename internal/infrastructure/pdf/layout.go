package pdf

import (
	"math"

	"github.com/andreyxaxa/oral-screening/internal/entity"
)

// Page geometry in points.
const (
	pageWidth    = 595.28
	pageHeight   = 841.89
	margin       = 40.0
	contentWidth = pageWidth - 2*margin

	imageWidth     = 165.0
	imageMaxHeight = 110.0
	imageGap       = 15.0
	captionOffset  = 115.0
	imageSection   = 145.0

	swatchSize     = 10.0
	swatchLabelGap = 15.0
)

// ImagePlacement is where one image lands on the page and the overlay shapes to draw on it,
// already scaled and translated to page coordinates.
type ImagePlacement struct {
	Index   int
	Label   string
	X, Y    float64
	Width   float64
	Height  float64
	Scale   float64
	Shapes  []entity.ScaledShape
	Caption CaptionPlacement
}

type CaptionPlacement struct {
	X, Y  float64
	Width float64
}

// PlaceImages lays images left to right from (left, top), at most MaxImages of them.
// Each image is fitted into the fixed cell keeping its aspect ratio, and its annotations are
// scaled by renderedWidth / sourceWidth.
func PlaceImages(images []entity.ReportImage, left, top float64) []ImagePlacement {
	placements := make([]ImagePlacement, 0, len(images))

	for i, img := range images {
		if i >= entity.MaxImages {
			break
		}
		if img.Width <= 0 || img.Height <= 0 {
			continue
		}

		fit := math.Min(imageWidth/float64(img.Width), imageMaxHeight/float64(img.Height))
		w := float64(img.Width) * fit
		h := float64(img.Height) * fit

		x := left + float64(len(placements))*(imageWidth+imageGap) + (imageWidth-w)/2
		y := top

		scale := entity.ScaleFactor(w, img.Width)

		shapes := make([]entity.ScaledShape, 0, len(img.Annotations))
		for _, a := range img.Annotations {
			s := a.Scale(scale)
			s.X += x
			s.Y += y
			s.CX += x
			s.CY += y
			shapes = append(shapes, s)
		}

		placements = append(placements, ImagePlacement{
			Index:  i,
			Label:  img.Label,
			X:      x,
			Y:      y,
			Width:  w,
			Height: h,
			Scale:  scale,
			Shapes: shapes,
			Caption: CaptionPlacement{
				X:     left + float64(len(placements))*(imageWidth+imageGap),
				Y:     top + captionOffset,
				Width: imageWidth,
			},
		})
	}

	return placements
}

// LegendSwatch is one colored square and its label.
type LegendSwatch struct {
	entity.LegendEntry
	X      float64
	LabelX float64
}

// PlaceLegend advances each swatch by a fixed per-character width of its label.
func PlaceLegend(entries []entity.LegendEntry, left float64) []LegendSwatch {
	swatches := make([]LegendSwatch, 0, len(entries))

	x := left
	for _, e := range entries {
		swatches = append(swatches, LegendSwatch{
			LegendEntry: e,
			X:           x,
			LabelX:      x + swatchLabelGap,
		})
		x += float64(len(e.Label))*5 + 40
	}

	return swatches
}
