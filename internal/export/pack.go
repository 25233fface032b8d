package export

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/ivlev/pinstudio/internal/overlay"
)

var ErrEmptyPack = errors.New("export: no assets with images")

const rule = "------------------------------------------------"

// Asset is one finished still with its copy.
type Asset struct {
	Title       string
	Description string
	Tags        []string
	Link        string
	PNG         []byte
}

// Pack is a project archive: the images plus a plain-text plan describing
// each of them.
type Pack struct {
	Topic  string
	Assets []Asset
	// Watermark, when set, is stamped on every image.
	Watermark string
	// QRLink, when set, adds qr.png pointing at it.
	QRLink string
	Date   time.Time
}

// FileName is the suggested archive name.
func (p *Pack) FileName() string {
	slug := Slug(p.Topic, 60)
	if slug == "" {
		slug = "pinstudio"
	}
	return slug + "_PROJECT_PACK.zip"
}

// Write streams the archive to w. Assets without an image are skipped.
func (p *Pack) Write(w io.Writer) error {
	var assets []Asset
	for _, a := range p.Assets {
		if len(a.PNG) > 0 {
			assets = append(assets, a)
		}
	}
	if len(assets) == 0 {
		return ErrEmptyPack
	}

	date := p.Date
	if date.IsZero() {
		date = time.Now()
	}

	zw := zip.NewWriter(w)
	var plan strings.Builder
	fmt.Fprintf(&plan, "# PROJECT STRATEGY: %s\n\n", strings.ToUpper(p.Topic))
	fmt.Fprintf(&plan, "Generated by pinstudio\nDate: %s\n\n%s\n\n", date.Format("02.01.2006"), rule)

	for i, a := range assets {
		name := fmt.Sprintf("%s_%d.png", Slug(a.Title, 40), i+1)
		data := a.PNG
		if p.Watermark != "" {
			var err error
			if data, err = overlay.WatermarkPNG(data, p.Watermark); err != nil {
				return fmt.Errorf("asset %d: %w", i+1, err)
			}
		}
		if err := writeFile(zw, "images/"+name, data); err != nil {
			return err
		}

		link := a.Link
		if link == "" {
			link = "N/A"
		}
		fmt.Fprintf(&plan, "[ASSET %d]: %s\nFILE: %s\nDESCRIPTION:\n%s\nTAGS: %s\nLINK: %s\n\n%s\n\n",
			i+1, a.Title, name, a.Description, hashtags(a.Tags), link, rule)
	}

	if err := writeFile(zw, "strategy_plan.txt", []byte(plan.String())); err != nil {
		return err
	}
	if p.QRLink != "" {
		qr, err := QRCode(p.QRLink, DefaultQRSize)
		if err != nil {
			return err
		}
		if err := writeFile(zw, "qr.png", qr); err != nil {
			return err
		}
	}
	return zw.Close()
}

func writeFile(zw *zip.Writer, name string, data []byte) error {
	f, err := zw.Create(name)
	if err != nil {
		return fmt.Errorf("zip %s: %w", name, err)
	}
	_, err = f.Write(data)
	return err
}

func hashtags(tags []string) string {
	out := make([]string, len(tags))
	for i, t := range tags {
		out[i] = "#" + strings.ReplaceAll(t, "#", "")
	}
	return strings.Join(out, " ")
}
