// Package analyzer finds busy and calm regions of a picture so text can be
// placed where it stays readable.
package analyzer

import "image"

// Block is a detected region of visual detail.
type Block struct {
	Rect image.Rectangle
	// Coverage is the share of edge pixels inside Rect, 0.0-1.0.
	Coverage float64
}
