package entity

import (
	"github.com/andreyxaxa/oral-screening/pkg/types/errs"
)

// ShapeType is the closed set of shapes an admin can draw on an image.
// Adding a shape means adding a case to every switch in this file and in legend.go.
type ShapeType string

const (
	Rectangle ShapeType = "rectangle"
	Square    ShapeType = "square"
	Circle    ShapeType = "circle"
)

var ShapeTypes = []ShapeType{Rectangle, Square, Circle}

func ParseShapeType(s string) (ShapeType, error) {
	switch t := ShapeType(s); t {
	case Rectangle, Square, Circle:
		return t, nil
	}
	return "", errs.Validation("unknown annotation type %q", s)
}

const DefaultStrokeWidth = 2.0

// Annotation is one marking drawn on one image, in source-image pixels with a top-left origin.
type Annotation struct {
	Type        ShapeType `json:"type"`
	X           float64   `json:"x"`
	Y           float64   `json:"y"`
	Width       float64   `json:"width,omitempty"`
	Height      float64   `json:"height,omitempty"`
	Radius      float64   `json:"radius,omitempty"`
	Stroke      string    `json:"stroke,omitempty"`
	StrokeWidth float64   `json:"strokeWidth,omitempty"`
}

func (a Annotation) Validate() error {
	if _, err := ParseShapeType(string(a.Type)); err != nil {
		return err
	}

	if a.X < 0 || a.Y < 0 {
		return errs.Validation("%s: x and y must be non-negative", a.Type)
	}
	if a.StrokeWidth < 0 {
		return errs.Validation("%s: strokeWidth must be non-negative", a.Type)
	}
	if a.Stroke != "" {
		if _, err := ParseHexColor(a.Stroke); err != nil {
			return errs.Validation("%s: invalid stroke color %q", a.Type, a.Stroke)
		}
	}

	switch a.Type {
	case Rectangle, Square:
		if a.Width <= 0 || a.Height <= 0 {
			return errs.Validation("%s: width and height are required", a.Type)
		}
	case Circle:
		if a.Radius <= 0 {
			return errs.Validation("%s: radius is required", a.Type)
		}
	}

	return nil
}

// StrokeColor returns the stroke, falling back to the legend color of the shape.
func (a Annotation) StrokeColor() string {
	if a.Stroke != "" {
		return a.Stroke
	}
	if item, ok := LegendFor(a.Type); ok {
		return item.Color
	}
	return "#000000"
}

func (a Annotation) LineWidth() float64 {
	if a.StrokeWidth > 0 {
		return a.StrokeWidth
	}
	return DefaultStrokeWidth
}

// ScaledShape is an annotation transformed into the coordinate space of a rendered image.
// Rectangles and squares use X, Y, Width, Height; circles use CX, CY, Radius.
type ScaledShape struct {
	Type        ShapeType
	X, Y        float64
	Width       float64
	Height      float64
	CX, CY      float64
	Radius      float64
	Stroke      string
	StrokeWidth float64
}

// Scale applies one uniform factor to position and size. Circles are stored by their
// bounding-box corner, so the centre is the corner plus the radius.
func (a Annotation) Scale(factor float64) ScaledShape {
	s := ScaledShape{
		Type:        a.Type,
		X:           a.X * factor,
		Y:           a.Y * factor,
		Stroke:      a.StrokeColor(),
		StrokeWidth: a.LineWidth(),
	}

	switch a.Type {
	case Circle:
		s.Radius = a.Radius * factor
		s.CX = (a.X + a.Radius) * factor
		s.CY = (a.Y + a.Radius) * factor
		s.Width = 2 * s.Radius
		s.Height = 2 * s.Radius
	default:
		s.Width = a.Width * factor
		s.Height = a.Height * factor
	}

	return s
}

// ScaleFactor is renderedWidth / sourceWidth.
func ScaleFactor(renderedWidth float64, sourceWidth int) float64 {
	if sourceWidth <= 0 {
		return 0
	}
	return renderedWidth / float64(sourceWidth)
}

// AnnotationSet holds one annotation slice per image, aligned by index to the image list.
type AnnotationSet [][]Annotation

func (s AnnotationSet) Validate(imageCount int) error {
	if len(s) > imageCount {
		return errs.Validation("annotations given for %d images, submission has %d", len(s), imageCount)
	}

	for i, image := range s {
		for j, a := range image {
			if err := a.Validate(); err != nil {
				return errs.Validation("image %d annotation %d: %s", i, j, errs.MessageOf(err))
			}
		}
	}

	return nil
}

// ForImage returns the annotations of image i, or nil.
func (s AnnotationSet) ForImage(i int) []Annotation {
	if i < 0 || i >= len(s) {
		return nil
	}
	return s[i]
}

// Types flattens the set and returns each shape type once, in first-encounter order.
func (s AnnotationSet) Types() []ShapeType {
	seen := make(map[ShapeType]bool, len(ShapeTypes))
	var types []ShapeType

	for _, image := range s {
		for _, a := range image {
			if seen[a.Type] {
				continue
			}
			seen[a.Type] = true
			types = append(types, a.Type)
		}
	}

	return types
}

// Clone deep-copies the set so stored submissions never share slices with callers.
func (s AnnotationSet) Clone() AnnotationSet {
	if s == nil {
		return nil
	}
	out := make(AnnotationSet, len(s))
	for i, image := range s {
		out[i] = append([]Annotation(nil), image...)
	}
	return out
}
