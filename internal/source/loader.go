// Package source turns string references into decoded images.
//
// A reference is a file path, an http(s) URL, a data: URL or a PDF page
// written as "deck.pdf#page=3" (1-based).
package source

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"

	"github.com/ivlev/pinstudio/internal/system"
)

var ErrDecode = errors.New("source: decode failure")

const pageMarker = "#page="

// Loader fetches and decodes references.
type Loader struct {
	Client *http.Client
	// DPI used for PDF pages.
	DPI int
	// MaxBytes caps remote downloads.
	MaxBytes int64
}

func NewLoader(dpi int) *Loader {
	return &Loader{
		Client:   &http.Client{Timeout: 30 * time.Second},
		DPI:      dpi,
		MaxBytes: 32 << 20,
	}
}

func PageRef(path string, index int) string {
	return fmt.Sprintf("%s%s%d", path, pageMarker, index+1)
}

func (l *Loader) Load(ctx context.Context, ref string) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	img, err := l.load(ctx, ref)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrDecode, Describe(ref), err)
	}
	return img, nil
}

func (l *Loader) load(ctx context.Context, ref string) (image.Image, error) {
	switch {
	case ref == "":
		return nil, errors.New("empty reference")
	case strings.HasPrefix(ref, "data:"):
		data, err := decodeDataURL(ref)
		if err != nil {
			return nil, err
		}
		return decode(bytes.NewReader(data))
	case strings.HasPrefix(ref, "http://"), strings.HasPrefix(ref, "https://"):
		return l.fetch(ctx, ref)
	case strings.Contains(ref, pageMarker):
		i := strings.LastIndex(ref, pageMarker)
		page, err := strconv.Atoi(ref[i+len(pageMarker):])
		if err != nil {
			return nil, fmt.Errorf("bad page number: %v", err)
		}
		dpi := l.DPI
		if dpi <= 0 {
			dpi = 150
		}
		return renderPDFPage(ref[:i], page-1, dpi)
	default:
		f, err := os.Open(ref)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return decode(f)
	}
}

func decode(r io.Reader) (image.Image, error) {
	return imaging.Decode(r, imaging.AutoOrientation(true))
}

func (l *Loader) fetch(ctx context.Context, ref string) (image.Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
	if err != nil {
		return nil, err
	}
	client := l.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("http status %s", resp.Status)
	}
	var body io.Reader = resp.Body
	if l.MaxBytes > 0 {
		body = io.LimitReader(resp.Body, l.MaxBytes)
	}
	return decode(body)
}

// decodeDataURL handles base64 and percent-encoded payloads.
func decodeDataURL(ref string) ([]byte, error) {
	comma := strings.IndexByte(ref, ',')
	if comma < 0 {
		return nil, errors.New("malformed data URL")
	}
	meta, payload := ref[len("data:"):comma], ref[comma+1:]
	if strings.HasSuffix(meta, ";base64") {
		return base64.StdEncoding.DecodeString(payload)
	}
	s, err := url.PathUnescape(payload)
	return []byte(s), err
}

// Describe shortens a reference for logs; data URLs can be megabytes long.
func Describe(ref string) string {
	if strings.HasPrefix(ref, "data:") {
		if i := strings.IndexByte(ref, ','); i > 0 && i < 64 {
			return ref[:i] + ",..."
		}
		return "data:..."
	}
	return ref
}

// Expand turns an input path into slide references: every image of a
// directory in name order, every page of a PDF, or the file itself.
func Expand(path string) ([]string, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if fi.IsDir() {
		return system.ListImages(path)
	}
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		doc, err := OpenPDF(path)
		if err != nil {
			return nil, err
		}
		defer doc.Close()
		return doc.PageRefs(), nil
	}
	return []string{path}, nil
}
