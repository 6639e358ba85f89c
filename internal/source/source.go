package source

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gen2brain/go-fitz"

	"github.com/ivlev/kenburns/internal/renderer"
)

// Source yields one canvas per page. A plain image counts as a single
// page; a PDF or an image directory may have many.
type Source interface {
	PageCount() int
	Canvas(page int) (*renderer.Canvas, error)
	Close() error
}

// ForSpec builds a source from a CLI-style input spec: "qr:<content>"
// and "gradient:<palette>" produce synthetic canvases, a .pdf path is
// rasterized, anything else is treated as an image file or directory.
// targetPx bounds the long edge of rasterized pages.
func ForSpec(spec string, targetPx int) (Source, error) {
	switch {
	case strings.HasPrefix(spec, "qr:"):
		return NewQRSource(strings.TrimPrefix(spec, "qr:"), targetPx)
	case strings.HasPrefix(spec, "gradient:"):
		return NewGradientSource(strings.TrimPrefix(spec, "gradient:"), targetPx)
	case strings.EqualFold(filepath.Ext(spec), ".pdf"):
		return NewPDFSource(spec, targetPx)
	default:
		return NewImageSource(spec)
	}
}

// PDFSource rasterizes PDF pages at a resolution matched to targetPx.
type PDFSource struct {
	doc      *fitz.Document
	path     string
	targetPx int
}

func NewPDFSource(path string, targetPx int) (*PDFSource, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("pdf open error: %w", err)
	}
	if targetPx <= 0 {
		targetPx = 1920
	}
	return &PDFSource{doc: doc, path: path, targetPx: targetPx}, nil
}

func (p *PDFSource) PageCount() int {
	return p.doc.NumPage()
}

// Canvas rasterizes one page. go-fitz documents are not safe for
// concurrent use, so each render opens its own handle; the shared doc
// is only used for metadata.
func (p *PDFSource) Canvas(page int) (*renderer.Canvas, error) {
	if page < 0 || page >= p.doc.NumPage() {
		return nil, fmt.Errorf("page %d out of range (document has %d)", page, p.doc.NumPage())
	}

	bound, err := p.doc.Bound(page)
	if err != nil {
		return nil, fmt.Errorf("pdf bound error: %w", err)
	}
	dpi := p.pageDPI(float64(bound.Dx()), float64(bound.Dy()))

	workerDoc, err := fitz.New(p.path)
	if err != nil {
		return nil, fmt.Errorf("pdf open error: %w", err)
	}
	defer workerDoc.Close()

	img, err := workerDoc.ImageDPI(page, dpi)
	if err != nil {
		return nil, fmt.Errorf("pdf render error: %w", err)
	}
	return renderer.FromImage(img), nil
}

// pageDPI scales the page so its long edge lands near targetPx.
// Page bounds are in points (72 per inch).
func (p *PDFSource) pageDPI(pointsW, pointsH float64) float64 {
	longEdge := pointsW
	if pointsH > longEdge {
		longEdge = pointsH
	}
	if longEdge <= 0 {
		return 150
	}
	dpi := float64(p.targetPx) * 72 / longEdge
	if dpi < 72 {
		dpi = 72
	}
	if dpi > 600 {
		dpi = 600
	}
	return dpi
}

func (p *PDFSource) Close() error {
	return p.doc.Close()
}
