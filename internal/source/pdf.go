package source

import (
	"fmt"
	"image"

	"github.com/gen2brain/go-fitz"
)

// PDFDocument exposes the pages of a PDF as slideshow sources.
type PDFDocument struct {
	doc  *fitz.Document
	path string
}

func OpenPDF(path string) (*PDFDocument, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrDecode, path, err)
	}
	return &PDFDocument{doc: doc, path: path}, nil
}

func (p *PDFDocument) PageCount() int {
	return p.doc.NumPage()
}

// PageRefs returns one reference per page, usable with Loader.Load.
func (p *PDFDocument) PageRefs() []string {
	refs := make([]string, p.PageCount())
	for i := range refs {
		refs[i] = PageRef(p.path, i)
	}
	return refs
}

func (p *PDFDocument) Close() error {
	return p.doc.Close()
}

// Для параллельной работы открываем новый документ на каждую страницу,
// чтобы не блокировать воркеров
func renderPDFPage(path string, index, dpi int) (image.Image, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, err
	}
	defer doc.Close()
	if index < 0 || index >= doc.NumPage() {
		return nil, fmt.Errorf("page %d out of range (%d pages)", index+1, doc.NumPage())
	}
	return doc.ImageDPI(index, float64(dpi))
}
