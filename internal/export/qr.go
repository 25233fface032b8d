package export

import (
	"fmt"

	qrcode "github.com/skip2/go-qrcode"
)

const DefaultQRSize = 512

// QRCode renders url as a square PNG of size pixels.
func QRCode(url string, size int) ([]byte, error) {
	if url == "" {
		return nil, fmt.Errorf("qr: empty url")
	}
	if size <= 0 {
		size = DefaultQRSize
	}
	data, err := qrcode.Encode(url, qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("qr: %w", err)
	}
	return data, nil
}
