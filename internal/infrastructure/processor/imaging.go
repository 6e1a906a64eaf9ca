package processor

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/andreyxaxa/oral-screening/internal/entity"
	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"
)

const (
	DefaultJPEGQuality = 85

	labelPadding = 3
)

type ImageProcessor struct {
	quality int
}

func New(opts ...Option) *ImageProcessor {
	p := &ImageProcessor{
		quality: DefaultJPEGQuality,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

func (p *ImageProcessor) NormalizeJPEG(ctx context.Context, data []byte) ([]byte, error) {
	img, err := decodeImage(data)
	if err != nil {
		return nil, fmt.Errorf("ImageProcessor - NormalizeJPEG - decodeImage: %w", err)
	}

	res, err := p.encodeJPEG(img)
	if err != nil {
		return nil, fmt.Errorf("ImageProcessor - NormalizeJPEG - p.encodeJPEG: %w", err)
	}

	return res, nil
}

// DrawAnnotations outlines every annotation in its stroke color and writes the legend label
// above the shape. Coordinates are source pixels, so no scaling is applied.
func (p *ImageProcessor) DrawAnnotations(ctx context.Context, data []byte, annotations []entity.Annotation) ([]byte, error) {
	img, err := decodeImage(data)
	if err != nil {
		return nil, fmt.Errorf("ImageProcessor - DrawAnnotations - decodeImage: %w", err)
	}

	canvas := imaging.Clone(img)

	for _, a := range annotations {
		c, err := entity.ParseHexColor(a.StrokeColor())
		if err != nil {
			return nil, fmt.Errorf("ImageProcessor - DrawAnnotations - entity.ParseHexColor: %w", err)
		}

		shape := a.Scale(1)
		width := math.Max(1, shape.StrokeWidth)

		switch shape.Type {
		case entity.Circle:
			strokeCircle(canvas, shape.CX, shape.CY, shape.Radius, width, c)
		default:
			strokeRect(canvas, shape.X, shape.Y, shape.Width, shape.Height, width, c)
		}

		if item, ok := entity.LegendFor(a.Type); ok {
			drawLabel(canvas, item.Label, int(shape.X), int(shape.Y)-labelPadding, c)
		}
	}

	res, err := p.encodeJPEG(canvas)
	if err != nil {
		return nil, fmt.Errorf("ImageProcessor - DrawAnnotations - p.encodeJPEG: %w", err)
	}

	return res, nil
}

func (p *ImageProcessor) PrepareForReport(ctx context.Context, data []byte) ([]byte, int, int, error) {
	img, err := decodeImage(data)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("ImageProcessor - PrepareForReport - decodeImage: %w", err)
	}

	res, err := p.encodeJPEG(img)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("ImageProcessor - PrepareForReport - p.encodeJPEG: %w", err)
	}

	b := img.Bounds()

	return res, b.Dx(), b.Dy(), nil
}

func decodeImage(data []byte) (image.Image, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("ImageProcessor - decodeImage - imaging.Decode: %w", err)
	}

	return img, nil
}

func (p *ImageProcessor) encodeJPEG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer

	err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(p.quality))
	if err != nil {
		return nil, fmt.Errorf("ImageProcessor - encodeJPEG - imaging.Encode: %w", err)
	}

	return buf.Bytes(), nil
}

// kappa places cubic control points so four segments approximate a quarter circle each.
const kappa = 0.5522847498

// outline builds a closed stroke band for the rasterizer. The inner contour runs against
// the outer one, so its area cancels out and only the band is painted.
type outline struct {
	z      *vector.Rasterizer
	origin image.Point
}

func newOutline(dst draw.Image) *outline {
	b := dst.Bounds()
	return &outline{z: vector.NewRasterizer(b.Dx(), b.Dy()), origin: b.Min}
}

func (o *outline) pt(x, y float64) (float32, float32) {
	return float32(x - float64(o.origin.X)), float32(y - float64(o.origin.Y))
}

func (o *outline) moveTo(x, y float64) { o.z.MoveTo(o.pt(x, y)) }

func (o *outline) lineTo(x, y float64) { o.z.LineTo(o.pt(x, y)) }

func (o *outline) cubeTo(x1, y1, x2, y2, x3, y3 float64) {
	bx, by := o.pt(x1, y1)
	cx, cy := o.pt(x2, y2)
	dx, dy := o.pt(x3, y3)
	o.z.CubeTo(bx, by, cx, cy, dx, dy)
}

func (o *outline) rect(x0, y0, x1, y1 float64, reverse bool) {
	o.moveTo(x0, y0)
	if reverse {
		o.lineTo(x0, y1)
		o.lineTo(x1, y1)
		o.lineTo(x1, y0)
	} else {
		o.lineTo(x1, y0)
		o.lineTo(x1, y1)
		o.lineTo(x0, y1)
	}
	o.z.ClosePath()
}

func (o *outline) circle(cx, cy, r float64, reverse bool) {
	k := r * kappa

	o.moveTo(cx+r, cy)
	if reverse {
		o.cubeTo(cx+r, cy-k, cx+k, cy-r, cx, cy-r)
		o.cubeTo(cx-k, cy-r, cx-r, cy-k, cx-r, cy)
		o.cubeTo(cx-r, cy+k, cx-k, cy+r, cx, cy+r)
		o.cubeTo(cx+k, cy+r, cx+r, cy+k, cx+r, cy)
	} else {
		o.cubeTo(cx+r, cy+k, cx+k, cy+r, cx, cy+r)
		o.cubeTo(cx-k, cy+r, cx-r, cy+k, cx-r, cy)
		o.cubeTo(cx-r, cy-k, cx-k, cy-r, cx, cy-r)
		o.cubeTo(cx+k, cy-r, cx+r, cy-k, cx+r, cy)
	}
	o.z.ClosePath()
}

func (o *outline) paint(dst draw.Image, c color.Color) {
	o.z.Draw(dst, dst.Bounds(), image.NewUniform(c), image.Point{})
}

// strokeRect draws a w pixels thick outline centred on the rectangle edge.
func strokeRect(dst draw.Image, x, y, width, height, w float64, c color.Color) {
	half := w / 2

	o := newOutline(dst)
	o.rect(x-half, y-half, x+width+half, y+height+half, false)
	if width > w && height > w {
		o.rect(x+half, y+half, x+width-half, y+height-half, true)
	}
	o.paint(dst, c)
}

// strokeCircle draws a w pixels thick ring centred on the circle.
func strokeCircle(dst draw.Image, cx, cy, radius, w float64, c color.Color) {
	half := w / 2

	o := newOutline(dst)
	o.circle(cx, cy, radius+half, false)
	if radius > half {
		o.circle(cx, cy, radius-half, true)
	}
	o.paint(dst, c)
}

func drawLabel(dst draw.Image, text string, x, y int, c color.Color) {
	face := basicfont.Face7x13
	if y < face.Ascent {
		y = face.Ascent
	}

	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P(x, y),
	}

	d.DrawString(text)
}
