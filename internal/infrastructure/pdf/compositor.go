package pdf

import (
	"bytes"
	"context"
	"fmt"

	"github.com/andreyxaxa/oral-screening/internal/entity"
	"github.com/andreyxaxa/oral-screening/pkg/types/errs"
	"github.com/go-pdf/fpdf"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

const (
	ReportTitle = "Oral Health Screening Report"

	fontFamily = "GoSans"

	defaultDateLayout = "January 2, 2006"
	minLineWidth      = 0.5
)

// Compositor renders a ReportDocument into a single PDF. One call runs the whole layout
// synchronously on its own document, so a Compositor is safe for concurrent use.
type Compositor struct {
	dateLayout string
	creator    string
}

func New(opts ...Option) *Compositor {
	c := &Compositor{
		dateLayout: defaultDateLayout,
		creator:    "oral-screening",
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

func (c *Compositor) Compose(ctx context.Context, doc *entity.ReportDocument) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("Compositor - Compose: %w", err)
	}

	pdf, err := c.render(doc)
	if err != nil {
		return nil, fmt.Errorf("Compositor - Compose - c.render: %w", errs.ReportGeneration(err))
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("Compositor - Compose - pdf.Output: %w", errs.ReportGeneration(err))
	}

	return buf.Bytes(), nil
}

func (c *Compositor) render(doc *entity.ReportDocument) (*fpdf.Fpdf, error) {
	pdf := fpdf.New("P", "pt", "A4", "")
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(true, margin)
	pdf.SetTitle(ReportTitle, true)
	pdf.SetCreator(c.creator, true)
	pdf.SetCreationDate(doc.GeneratedAt)

	// Go fonts are embedded as UTF-8 so names and notes outside Latin-1 survive.
	pdf.AddUTF8FontFromBytes(fontFamily, "", goregular.TTF)
	pdf.AddUTF8FontFromBytes(fontFamily, "B", gobold.TTF)

	r := &renderer{
		pdf: pdf,
		doc: doc,
	}

	pdf.AddPage()

	r.header(c.dateLayout)
	r.divider()
	r.images()
	r.legend()
	r.divider()
	r.recommendations()
	r.notes()

	if pdf.Err() {
		return nil, pdf.Error()
	}

	return pdf, nil
}

type renderer struct {
	pdf *fpdf.Fpdf
	doc *entity.ReportDocument
}

// ensureSpace starts a new page when h points do not fit above the bottom margin.
func (r *renderer) ensureSpace(h float64) {
	if r.pdf.GetY()+h > pageHeight-margin {
		r.pdf.AddPage()
	}
}

func (r *renderer) heading(text string, size float64) {
	r.pdf.SetFont(fontFamily, "B", size)
	r.pdf.CellFormat(0, size+4, text, "", 1, "L", false, 0, "")
}

func (r *renderer) header(dateLayout string) {
	r.pdf.SetFont(fontFamily, "B", 18)
	r.pdf.CellFormat(0, 22, ReportTitle, "", 1, "C", false, 0, "")
	r.pdf.Ln(20)

	fields := [][2]string{
		{"Patient Name:", r.doc.PatientName},
		{"Patient ID:", r.doc.ExternalPatientID},
		{"Report Date:", r.doc.GeneratedAt.Format(dateLayout)},
	}

	for _, f := range fields {
		label := f[0]

		r.pdf.SetFont(fontFamily, "B", 11)
		r.pdf.CellFormat(r.pdf.GetStringWidth(label), 14, label, "", 0, "L", false, 0, "")
		r.pdf.SetFont(fontFamily, "", 11)
		r.pdf.CellFormat(0, 14, " "+f[1], "", 1, "L", false, 0, "")
	}

	r.pdf.Ln(20)
}

func (r *renderer) divider() {
	y := r.pdf.GetY()

	r.pdf.SetDrawColor(170, 170, 170)
	r.pdf.SetLineWidth(1)
	r.pdf.Line(margin, y, pageWidth-margin, y)
	r.pdf.Ln(20)
}

func (r *renderer) images() {
	if len(PlaceImages(r.doc.Images, margin, 0)) == 0 {
		r.ensureSpace(44)
		r.heading("SCREENING IMAGES", 14)
		r.pdf.Ln(26)
		return
	}

	r.ensureSpace(imageSection + 24)

	r.heading("SCREENING IMAGES", 14)
	r.pdf.Ln(6)

	top := r.pdf.GetY()
	for _, p := range PlaceImages(r.doc.Images, margin, top) {
		img := r.doc.Images[p.Index]
		name := fmt.Sprintf("screening-image-%d", p.Index)
		opts := fpdf.ImageOptions{ImageType: "JPG"}

		r.pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(img.Data))
		r.pdf.ImageOptions(name, p.X, p.Y, p.Width, p.Height, false, opts, 0, "")

		r.overlay(p)

		r.pdf.SetFont(fontFamily, "B", 10)
		r.pdf.SetTextColor(51, 51, 51)
		r.pdf.SetXY(p.Caption.X, p.Caption.Y)
		r.pdf.CellFormat(p.Caption.Width, 12, p.Label, "", 0, "C", false, 0, "")
		r.pdf.SetTextColor(0, 0, 0)
	}

	r.pdf.SetXY(margin, top+imageSection)
}

func (r *renderer) overlay(p ImagePlacement) {
	for _, s := range p.Shapes {
		c, err := entity.ParseHexColor(s.Stroke)
		if err != nil {
			r.pdf.SetError(fmt.Errorf("overlay stroke %q: %w", s.Stroke, err))
			return
		}

		lw := s.StrokeWidth * p.Scale
		if lw < minLineWidth {
			lw = minLineWidth
		}

		r.pdf.SetDrawColor(int(c.R), int(c.G), int(c.B))
		r.pdf.SetLineWidth(lw)

		switch s.Type {
		case entity.Circle:
			r.pdf.Circle(s.CX, s.CY, s.Radius, "D")
		default:
			r.pdf.Rect(s.X, s.Y, s.Width, s.Height, "D")
		}
	}
}

func (r *renderer) legend() {
	if len(r.doc.Legend.Entries) == 0 {
		r.pdf.Ln(20)
		return
	}

	r.ensureSpace(50)

	r.heading("Legend:", 11)
	r.pdf.Ln(4)

	y := r.pdf.GetY()
	r.pdf.SetFont(fontFamily, "", 10)

	for _, s := range PlaceLegend(r.doc.Legend.Entries, margin) {
		c, err := entity.ParseHexColor(s.Color)
		if err != nil {
			r.pdf.SetError(fmt.Errorf("legend color %q: %w", s.Color, err))
			return
		}

		r.pdf.SetFillColor(int(c.R), int(c.G), int(c.B))
		r.pdf.Rect(s.X, y, swatchSize, swatchSize, "F")

		r.pdf.SetXY(s.LabelX, y)
		r.pdf.CellFormat(r.pdf.GetStringWidth(s.Label), swatchSize, s.Label, "", 0, "L", false, 0, "")
	}

	r.pdf.SetXY(margin, y+swatchSize)
	r.pdf.Ln(20)
}

func (r *renderer) recommendations() {
	r.ensureSpace(60)

	r.heading("TREATMENT RECOMMENDATIONS", 14)
	r.pdf.Ln(6)

	if r.doc.Legend.Placeholder != "" || len(r.doc.Legend.Recommendations) == 0 {
		text := r.doc.Legend.Placeholder
		if text == "" {
			text = entity.NoFindingsRecommendation
		}

		r.pdf.SetFont(fontFamily, "", 10)
		r.pdf.MultiCell(contentWidth-15, 13, text, "", "L", false)
		return
	}

	for _, rec := range r.doc.Legend.Recommendations {
		r.ensureSpace(32)

		r.pdf.SetFont(fontFamily, "B", 11)
		r.pdf.MultiCell(contentWidth, 14, "- "+rec.Label+":", "", "L", false)

		r.pdf.SetX(margin + 15)
		r.pdf.SetFont(fontFamily, "", 10)
		r.pdf.MultiCell(contentWidth-15, 13, rec.Text, "", "L", false)
		r.pdf.Ln(6)
	}
}

// notes puts free-text notes on a fresh page so long text never splits the findings.
func (r *renderer) notes() {
	if r.doc.PatientNote == "" && r.doc.AdminNotes == "" {
		return
	}

	r.pdf.AddPage()
	r.heading("NOTES", 14)
	r.pdf.Ln(6)

	for _, n := range [][2]string{
		{"Patient Note:", r.doc.PatientNote},
		{"Admin Notes:", r.doc.AdminNotes},
	} {
		if n[1] == "" {
			continue
		}

		r.pdf.SetFont(fontFamily, "B", 11)
		r.pdf.CellFormat(0, 14, n[0], "", 1, "L", false, 0, "")
		r.pdf.SetFont(fontFamily, "", 10)
		r.pdf.MultiCell(contentWidth, 13, n[1], "", "L", false)
		r.pdf.Ln(10)
	}
}
