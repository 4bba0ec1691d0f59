package imgqa

import (
	"image"
	"log/slog"
)

const (
	// whiteLevel is the lowest intensity counted as white on the perimeter.
	whiteLevel = 254

	// sceneFraction is the non-white perimeter share above which an image is a scene.
	sceneFraction = 0.9
)

// Detection is the output of the boundary scan and perimeter classification.
type Detection struct {
	Box              Rect
	Scene            bool
	NonWhiteFraction float64
}

// Detect runs the two-pass boundary scan over g and classifies the result.
func Detect(g *image.Gray, tolerance int) Detection {
	box := FindBounds(g, tolerance)
	hist, total := perimeterHistogram(g, box)
	frac := nonWhiteFraction(hist, total)

	slog.Debug("imgqa: perimeter sampled", "box", box, "pixels", total, "non_white", frac)

	return Detection{
		Box:              box,
		Scene:            frac > sceneFraction,
		NonWhiteFraction: frac,
	}
}

// ClassifyPerimeter reports whether the content box r of g is a scene: its
// perimeter is overwhelmingly non-white, meaning the content runs into every
// edge rather than sitting on a white background. r is returned unchanged.
func ClassifyPerimeter(g *image.Gray, r Rect) (Rect, bool) {
	hist, total := perimeterHistogram(g, r)
	return r, isScene(hist, total)
}

// perimeterHistogram counts intensities on the edges of r. Columns are sampled
// for rows [Upper, Lower) and rows for columns [Left, Right). total is the
// nominal perimeter 2*(h+1) + 2*(w+1), so the four unsampled corner slots
// count as non-white.
func perimeterHistogram(g *image.Gray, r Rect) (map[uint8]int, int) {
	hist := make(map[uint8]int)
	for y := r.Upper; y < r.Lower; y++ {
		off := y * g.Stride
		hist[g.Pix[off+r.Left]]++
		hist[g.Pix[off+r.Right]]++
	}
	top, bottom := r.Upper*g.Stride, r.Lower*g.Stride
	for x := r.Left; x < r.Right; x++ {
		hist[g.Pix[top+x]]++
		hist[g.Pix[bottom+x]]++
	}
	total := 2*(r.Lower-r.Upper+1) + 2*(r.Right-r.Left+1)
	return hist, total
}

func nonWhiteFraction(hist map[uint8]int, total int) float64 {
	if total <= 0 {
		return 0
	}
	white := 0
	for v, n := range hist {
		if v >= whiteLevel {
			white += n
		}
	}
	return float64(total-white) / float64(total)
}

func isScene(hist map[uint8]int, total int) bool {
	return nonWhiteFraction(hist, total) > sceneFraction
}
